package studio

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"barrot/backend/storage"
	"barrot/features/media"
	"barrot/features/media/mediatest"
	"barrot/features/notify"
)

type fakeAnalyser struct {
	mu      sync.Mutex
	bins    int
	level   byte
	fftSize int
	closed  bool
}

func (a *fakeAnalyser) FrequencyBinCount() int { return a.bins }

func (a *fakeAnalyser) TimeDomain(dst []byte) {
	for i := range dst {
		dst[i] = a.level
	}
}

func (a *fakeAnalyser) Frequency(dst []byte) {
	for i := range dst {
		dst[i] = a.level
	}
}

func (a *fakeAnalyser) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closed = true
	return nil
}

func (a *fakeAnalyser) isClosed() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.closed
}

type fakeGraph struct {
	err  error
	last *fakeAnalyser
}

func (g *fakeGraph) NewAnalyser(_ media.Stream, fftSize int) (Analyser, error) {
	if g.err != nil {
		return nil, g.err
	}
	g.last = &fakeAnalyser{bins: fftSize / 2, level: 128, fftSize: fftSize}
	return g.last, nil
}

type fakeRecorder struct {
	mu       sync.Mutex
	mimeType string
	onChunk  func([]byte)
	final    []byte
	startErr error
	paused   bool
	stopped  bool
}

func (r *fakeRecorder) Start(onChunk func([]byte)) error {
	if r.startErr != nil {
		return r.startErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onChunk = onChunk
	return nil
}

func (r *fakeRecorder) emit(b string) {
	r.mu.Lock()
	fn := r.onChunk
	r.mu.Unlock()
	fn([]byte(b))
}

func (r *fakeRecorder) Pause() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paused = true
	return nil
}

func (r *fakeRecorder) Resume() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paused = false
	return nil
}

func (r *fakeRecorder) Stop() error {
	r.mu.Lock()
	r.stopped = true
	fn, final := r.onChunk, r.final
	r.mu.Unlock()
	fn(final)
	return nil
}

type fakeFactory struct {
	err      error
	startErr error
	final    string
	last     *fakeRecorder
}

func (f *fakeFactory) NewRecorder(_ media.Stream, mimeType string) (Recorder, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.last = &fakeRecorder{mimeType: mimeType, final: []byte(f.final), startErr: f.startErr}
	return f.last, nil
}

type fakeCanvas struct {
	mu      sync.Mutex
	frames  int
	prompts []string
}

func (c *fakeCanvas) Size() (int, int) { return 800, 200 }

func (c *fakeCanvas) Draw(Frame) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames++
}

func (c *fakeCanvas) Prompt(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prompts = append(c.prompts, msg)
}

func (c *fakeCanvas) frameCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frames
}

type fakePlayer struct {
	played []string
	err    error
}

func (p *fakePlayer) Play(a Artifact) error {
	if p.err != nil {
		return p.err
	}
	p.played = append(p.played, a.Name)
	return nil
}

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type rig struct {
	c       *Controller
	devices *mediatest.Devices
	graph   *fakeGraph
	recs    *fakeFactory
	canvas  *fakeCanvas
	player  *fakePlayer
	notes   *notify.Recorder
	clock   *clock
}

func newRig(t *testing.T, opts ...Option) *rig {
	t.Helper()
	r := &rig{
		devices: &mediatest.Devices{},
		graph:   &fakeGraph{},
		recs:    &fakeFactory{},
		canvas:  &fakeCanvas{},
		player:  &fakePlayer{},
		notes:   &notify.Recorder{},
		clock:   &clock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)},
	}
	base := []Option{WithNotifier(r.notes), WithPlayer(r.player), WithFrameInterval(time.Millisecond)}
	r.c = New(r.devices, r.graph, r.recs, r.canvas, append(base, opts...)...)
	r.c.now = r.clock.now
	ids := 0
	r.c.newID = func() string {
		ids++
		return fmt.Sprintf("take-%d", ids)
	}
	t.Cleanup(r.c.Close)
	return r
}

func (r *rig) lastNote(t *testing.T) notify.Note {
	t.Helper()
	n, ok := r.notes.Last()
	require.True(t, ok)
	return n
}

func TestNew_PaintsIdlePrompt(t *testing.T) {
	r := newRig(t)
	assert.Equal(t, []string{IdlePrompt}, r.canvas.prompts)
	assert.Equal(t, Idle, r.c.State())
	assert.False(t, r.c.CanPlayback())
}

func TestRecordPauseResumeStop(t *testing.T) {
	r := newRig(t)
	r.recs.final = "gh"

	require.NoError(t, r.c.Start(context.Background()))
	assert.Equal(t, Recording, r.c.State())
	assert.Equal(t, notify.Note{Msg: "Recording started!", Level: notify.Success}, r.lastNote(t))

	s := r.devices.Last()
	require.NotNil(t, s.Constraints.Audio)
	assert.Nil(t, s.Constraints.Video)
	assert.Equal(t, FFTSize, r.graph.last.fftSize)
	assert.Equal(t, MimeType, r.recs.last.mimeType)

	require.Eventually(t, func() bool { return r.canvas.frameCount() > 0 }, time.Second, time.Millisecond)

	rec := r.recs.last
	rec.emit("ab")
	rec.emit("")
	r.clock.advance(10 * time.Second)

	require.NoError(t, r.c.Pause())
	assert.Equal(t, Paused, r.c.State())
	assert.True(t, rec.paused)
	r.clock.advance(5 * time.Second)

	require.NoError(t, r.c.Resume())
	assert.Equal(t, Recording, r.c.State())
	assert.False(t, rec.paused)
	rec.emit("cd")
	r.clock.advance(2 * time.Second)

	a, err := r.c.Stop()
	require.NoError(t, err)
	assert.Equal(t, Idle, r.c.State())
	assert.Equal(t, Artifact{
		ID:        "take-1",
		Name:      "Recording 1",
		MimeType:  "audio/webm",
		Data:      []byte("abcdgh"),
		Duration:  12 * time.Second,
		CreatedAt: r.clock.now(),
	}, a)
	assert.Equal(t, "Recording 1.webm", a.Filename())

	assert.True(t, rec.stopped)
	assert.True(t, s.AllStopped())
	assert.True(t, r.graph.last.isClosed())
	assert.Equal(t, notify.Note{Msg: "Recording stopped!", Level: notify.Info}, r.lastNote(t))
	assert.True(t, r.c.CanPlayback())
	assert.Len(t, r.c.Recordings(), 1)

	// the visualizer is no longer drawing
	n := r.canvas.frameCount()
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, n, r.canvas.frameCount())
}

func TestStopWhilePaused(t *testing.T) {
	r := newRig(t)
	require.NoError(t, r.c.Start(context.Background()))
	r.clock.advance(3 * time.Second)
	require.NoError(t, r.c.Pause())
	r.clock.advance(time.Minute)

	a, err := r.c.Stop()
	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, a.Duration)
	assert.Empty(t, a.Data)
}

func TestTogglePause(t *testing.T) {
	r := newRig(t)

	st, err := r.c.TogglePause()
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.Equal(t, Idle, st)

	require.NoError(t, r.c.Start(context.Background()))
	st, err = r.c.TogglePause()
	require.NoError(t, err)
	assert.Equal(t, Paused, st)

	st, err = r.c.TogglePause()
	require.NoError(t, err)
	assert.Equal(t, Recording, st)
	assert.Equal(t, "recording", st.String())
}

func TestInvalidTransitions(t *testing.T) {
	r := newRig(t)

	_, err := r.c.Stop()
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.ErrorIs(t, r.c.Pause(), ErrInvalidState)
	assert.ErrorIs(t, r.c.Resume(), ErrInvalidState)

	require.NoError(t, r.c.Start(context.Background()))
	assert.ErrorIs(t, r.c.Start(context.Background()), ErrInvalidState)
	assert.ErrorIs(t, r.c.Resume(), ErrInvalidState)
	assert.Len(t, r.devices.Streams(), 1)
}

func TestStart_Failures(t *testing.T) {
	t.Run("permission denied", func(t *testing.T) {
		r := newRig(t)
		r.devices.SetErr(media.ErrPermissionDenied)

		err := r.c.Start(context.Background())
		require.ErrorIs(t, err, media.ErrPermissionDenied)
		assert.Equal(t, Idle, r.c.State())
		assert.Equal(t, notify.Note{Msg: "Failed to start recording: permission denied", Level: notify.Error}, r.lastNote(t))
	})

	t.Run("analyser", func(t *testing.T) {
		r := newRig(t)
		r.graph.err = errors.New("no audio context")

		require.Error(t, r.c.Start(context.Background()))
		assert.Equal(t, Idle, r.c.State())
		assert.True(t, r.devices.Last().AllStopped())
	})

	t.Run("recorder", func(t *testing.T) {
		r := newRig(t)
		r.recs.startErr = errors.New("unsupported mime type")

		require.Error(t, r.c.Start(context.Background()))
		assert.Equal(t, Idle, r.c.State())
		assert.True(t, r.devices.Last().AllStopped())
		assert.True(t, r.graph.last.isClosed())
		assert.Zero(t, r.canvas.frameCount())
	})
}

func recordTakes(t *testing.T, r *rig, n int) []Artifact {
	t.Helper()
	for i := 0; i < n; i++ {
		r.recs.final = fmt.Sprintf("take %d", i+1)
		require.NoError(t, r.c.Start(context.Background()))
		_, err := r.c.Stop()
		require.NoError(t, err)
	}
	return r.c.Recordings()
}

func TestPlayback(t *testing.T) {
	r := newRig(t)
	assert.ErrorIs(t, r.c.Playback(), ErrNoRecording)

	takes := recordTakes(t, r, 2)
	require.Len(t, takes, 2)
	assert.Equal(t, "Recording 2", takes[1].Name)

	require.NoError(t, r.c.Playback())
	assert.Equal(t, notify.Note{Msg: "Playing recording...", Level: notify.Info}, r.lastNote(t))

	require.NoError(t, r.c.PlayByID(takes[0].ID))
	assert.Equal(t, []string{"Recording 2", "Recording 1"}, r.player.played)

	assert.ErrorIs(t, r.c.PlayByID("missing"), ErrNoRecording)

	r.player.err = errors.New("device busy")
	assert.Error(t, r.c.Playback())
}

func TestDownload_SavesThroughSink(t *testing.T) {
	sink, err := storage.NewFileStore(filepath.Join(t.TempDir(), "downloads"))
	require.NoError(t, err)
	r := newRig(t, WithSink(sink))

	_, err = r.c.Download()
	assert.ErrorIs(t, err, ErrNoRecording)

	takes := recordTakes(t, r, 2)

	d, err := r.c.Download()
	require.NoError(t, err)
	assert.Equal(t, "Recording 2.webm", d.Name)
	assert.Equal(t, []byte("take 2"), d.Data)
	assert.Equal(t, notify.Note{Msg: "Downloading recording...", Level: notify.Success}, r.lastNote(t))

	onDisk, err := os.ReadFile(d.Path)
	require.NoError(t, err)
	assert.Equal(t, []byte("take 2"), onDisk)

	d, err = r.c.DownloadByID(takes[0].ID)
	require.NoError(t, err)
	stored, err := sink.Load("Recording 1.webm")
	require.NoError(t, err)
	assert.Equal(t, []byte("take 1"), stored)
	assert.Equal(t, filepath.Join(sink.BasePath, "Recording 1.webm"), d.Path)

	_, err = r.c.DownloadByID("missing")
	assert.ErrorIs(t, err, ErrNoRecording)
}

func TestDownload_WithoutSink(t *testing.T) {
	r := newRig(t)
	recordTakes(t, r, 1)

	d, err := r.c.Download()
	require.NoError(t, err)
	assert.Equal(t, "Recording 1.webm", d.Name)
	assert.Empty(t, d.Path)
}

func TestMix(t *testing.T) {
	r := newRig(t)
	assert.Equal(t, DefaultMix, r.c.Mix())

	assert.Equal(t, "100%", r.c.SetVolume(150))
	assert.Equal(t, "0%", r.c.SetReverb(-5))
	assert.Equal(t, "30%", r.c.SetDelay(30))
	assert.Equal(t, Mix{Volume: 100, Reverb: 0, Delay: 30}, r.c.Mix())
}

func TestClose_DiscardsTakeInProgress(t *testing.T) {
	r := newRig(t)
	require.NoError(t, r.c.Start(context.Background()))
	r.recs.last.emit("partial")

	r.c.Close()
	assert.Equal(t, Idle, r.c.State())
	assert.Empty(t, r.c.Recordings())
	assert.True(t, r.devices.Last().AllStopped())
	assert.True(t, r.recs.last.stopped)

	// usable again afterwards
	require.NoError(t, r.c.Start(context.Background()))
	a, err := r.c.Stop()
	require.NoError(t, err)
	assert.Equal(t, "Recording 1", a.Name)
	assert.Empty(t, a.Data)
}
