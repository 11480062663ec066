// Package studio is the audio recording controller: capture, a live
// waveform/spectrum view, and an in-memory list of finished takes.
package studio

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"barrot/backend/tasks"
	"barrot/features/media"
	"barrot/features/notify"
)

const MimeType = "audio/webm"

var (
	ErrInvalidState = errors.New("studio: invalid state")
	ErrNoRecording  = errors.New("studio: no recording")
)

type State int

const (
	Idle State = iota
	Recording
	Paused
)

func (s State) String() string {
	switch s {
	case Recording:
		return "recording"
	case Paused:
		return "paused"
	default:
		return "idle"
	}
}

// AudioGraph builds analysis nodes on top of a live stream.
type AudioGraph interface {
	NewAnalyser(s media.Stream, fftSize int) (Analyser, error)
}

// Recorder encodes a stream into chunks.
type Recorder interface {
	// Start begins capture; onChunk may be called from any goroutine.
	Start(onChunk func([]byte)) error
	Pause() error
	Resume() error
	// Stop flushes the final chunk before returning.
	Stop() error
}

type RecorderFactory interface {
	NewRecorder(s media.Stream, mimeType string) (Recorder, error)
}

// Player plays a finished take.
type Player interface {
	Play(a Artifact) error
}

// Sink stores downloaded takes.
type Sink interface {
	Save(name string, content []byte) (string, error)
}

// Artifact is one finished take.
type Artifact struct {
	ID        string
	Name      string
	MimeType  string
	Data      []byte
	Duration  time.Duration
	CreatedAt time.Time
}

// Filename is the download name.
func (a Artifact) Filename() string { return a.Name + ".webm" }

// Download is a take handed to the user.
type Download struct {
	Name string
	Data []byte
	// Path is set when a Sink stored the file.
	Path string
}

// Mix holds the effect sliders. They are display values only and do not
// touch the signal.
type Mix struct {
	Volume int
	Reverb int
	Delay  int
}

var DefaultMix = Mix{Volume: 100}

type Option func(*Controller)

func WithNotifier(n notify.Notifier) Option { return func(c *Controller) { c.notifier = n } }
func WithPlayer(p Player) Option            { return func(c *Controller) { c.player = p } }
func WithSink(s Sink) Option                { return func(c *Controller) { c.sink = s } }
func WithFrameInterval(d time.Duration) Option {
	return func(c *Controller) { c.frameInterval = d }
}

// Controller owns the studio panel.
//
// ops serialises lifecycle calls (Start, Stop, Pause, Resume, Close) so
// device and recorder calls can run without holding mu, which the frame
// loop and chunk callback also take.
type Controller struct {
	devices       media.Devices
	graph         AudioGraph
	recorders     RecorderFactory
	canvas        Canvas
	player        Player
	sink          Sink
	notifier      notify.Notifier
	frameInterval time.Duration
	now           func() time.Time
	newID         func() string

	ops sync.Mutex

	mu        sync.Mutex
	state     State
	stream    media.Stream
	analyser  Analyser
	vis       *visualizer
	recorder  Recorder
	loop      *tasks.FrameLoop
	chunks    [][]byte
	started   time.Time
	pausedAt  time.Time
	paused    time.Duration
	artifacts []Artifact
	mix       Mix
}

// New builds an idle studio and paints the idle prompt.
func New(devices media.Devices, graph AudioGraph, recorders RecorderFactory, canvas Canvas, opts ...Option) *Controller {
	c := &Controller{
		devices:       devices,
		graph:         graph,
		recorders:     recorders,
		canvas:        canvas,
		notifier:      notify.Discard,
		frameInterval: tasks.DefaultFrameInterval,
		now:           time.Now,
		newID:         uuid.NewString,
		mix:           DefaultMix,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.canvas.Prompt(IdlePrompt)
	return c
}

// Start captures the microphone, wires the analyser and recorder and
// starts the visualizer. On any failure everything acquired so far is
// released and the studio stays idle.
func (c *Controller) Start(ctx context.Context) error {
	c.ops.Lock()
	defer c.ops.Unlock()

	if c.State() != Idle {
		return fmt.Errorf("%w: already recording", ErrInvalidState)
	}
	if err := c.start(ctx); err != nil {
		c.notifier.Notify("Failed to start recording: "+err.Error(), notify.Error)
		return fmt.Errorf("studio: start: %w", err)
	}
	c.notifier.Notify("Recording started!", notify.Success)
	return nil
}

func (c *Controller) start(ctx context.Context) error {
	// audio only, default processing
	s, err := c.devices.GetUserMedia(ctx, media.Constraints{Audio: &media.AudioConstraints{}})
	if err != nil {
		return err
	}
	analyser, err := c.graph.NewAnalyser(s, FFTSize)
	if err != nil {
		media.StopAll(s)
		return err
	}
	rec, err := c.recorders.NewRecorder(s, MimeType)
	if err != nil {
		_ = analyser.Close()
		media.StopAll(s)
		return err
	}

	c.mu.Lock()
	c.chunks = nil
	c.mu.Unlock()

	if err := rec.Start(c.addChunk); err != nil {
		_ = analyser.Close()
		media.StopAll(s)
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = Recording
	c.stream = s
	c.analyser = analyser
	c.vis = newVisualizer(analyser)
	c.recorder = rec
	c.started = c.now()
	c.paused = 0
	c.loop = tasks.StartFrameLoop(context.Background(), c.frameInterval, func(int) { c.drawFrame() })
	return nil
}

func (c *Controller) addChunk(b []byte) {
	if len(b) == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.chunks = append(c.chunks, append([]byte(nil), b...))
}

func (c *Controller) drawFrame() {
	c.mu.Lock()
	vis := c.vis
	c.mu.Unlock()
	if vis == nil {
		return
	}
	w, h := c.canvas.Size()
	c.canvas.Draw(vis.frame(w, h))
}

// Pause suspends capture. Buffered chunks are kept.
func (c *Controller) Pause() error {
	c.ops.Lock()
	defer c.ops.Unlock()

	c.mu.Lock()
	state, rec := c.state, c.recorder
	c.mu.Unlock()
	if state != Recording {
		return fmt.Errorf("%w: not recording", ErrInvalidState)
	}
	if err := rec.Pause(); err != nil {
		return fmt.Errorf("studio: pause: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = Paused
	c.pausedAt = c.now()
	return nil
}

// Resume continues a paused take.
func (c *Controller) Resume() error {
	c.ops.Lock()
	defer c.ops.Unlock()

	c.mu.Lock()
	state, rec := c.state, c.recorder
	c.mu.Unlock()
	if state != Paused {
		return fmt.Errorf("%w: not paused", ErrInvalidState)
	}
	if err := rec.Resume(); err != nil {
		return fmt.Errorf("studio: resume: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = Recording
	c.paused += c.now().Sub(c.pausedAt)
	return nil
}

// TogglePause is the single pause/resume button.
func (c *Controller) TogglePause() (State, error) {
	var err error
	switch c.State() {
	case Recording:
		err = c.Pause()
	case Paused:
		err = c.Resume()
	default:
		err = fmt.Errorf("%w: not recording", ErrInvalidState)
	}
	return c.State(), err
}

// Stop finishes the take and appends it to Recordings.
func (c *Controller) Stop() (Artifact, error) {
	c.ops.Lock()
	defer c.ops.Unlock()

	if s := c.State(); s != Recording && s != Paused {
		return Artifact{}, fmt.Errorf("%w: not recording", ErrInvalidState)
	}

	stopErr := c.teardown()

	c.mu.Lock()
	a := Artifact{
		ID:        c.newID(),
		Name:      fmt.Sprintf("Recording %d", len(c.artifacts)+1),
		MimeType:  MimeType,
		Data:      join(c.chunks),
		Duration:  c.elapsedLocked(),
		CreatedAt: c.now().UTC(),
	}
	c.chunks = nil
	c.artifacts = append(c.artifacts, a)
	c.state = Idle
	c.mu.Unlock()

	c.notifier.Notify("Recording stopped!", notify.Info)
	if stopErr != nil {
		return a, fmt.Errorf("studio: stop recorder: %w", stopErr)
	}
	return a, nil
}

// teardown ends the visualizer, flushes the recorder and releases the
// devices. Called with ops held and mu free.
func (c *Controller) teardown() error {
	c.mu.Lock()
	loop, rec, analyser, s := c.loop, c.recorder, c.analyser, c.stream
	c.loop, c.recorder, c.analyser, c.vis, c.stream = nil, nil, nil, nil, nil
	if c.state == Paused {
		c.paused += c.now().Sub(c.pausedAt)
	}
	c.mu.Unlock()

	if loop != nil {
		loop.Cancel()
	}
	var err error
	if rec != nil {
		err = rec.Stop()
	}
	media.StopAll(s)
	if analyser != nil {
		_ = analyser.Close()
	}
	return err
}

func (c *Controller) elapsedLocked() time.Duration {
	d := c.now().Sub(c.started) - c.paused
	if d < 0 {
		return 0
	}
	return d
}

func join(chunks [][]byte) []byte {
	n := 0
	for _, b := range chunks {
		n += len(b)
	}
	out := make([]byte, 0, n)
	for _, b := range chunks {
		out = append(out, b...)
	}
	return out
}

// Playback plays the most recent take.
func (c *Controller) Playback() error {
	a, err := c.latest()
	if err != nil {
		return err
	}
	if err := c.play(a); err != nil {
		return err
	}
	c.notifier.Notify("Playing recording...", notify.Info)
	return nil
}

// PlayByID plays one entry of Recordings.
func (c *Controller) PlayByID(id string) error {
	a, err := c.byID(id)
	if err != nil {
		return err
	}
	return c.play(a)
}

func (c *Controller) play(a Artifact) error {
	if c.player == nil {
		return errors.New("studio: no player")
	}
	if err := c.player.Play(a); err != nil {
		return fmt.Errorf("studio: play %s: %w", a.Name, err)
	}
	return nil
}

// Download hands out the most recent take as "<name>.webm".
func (c *Controller) Download() (Download, error) {
	a, err := c.latest()
	if err != nil {
		return Download{}, err
	}
	d, err := c.download(a)
	if err != nil {
		return Download{}, err
	}
	c.notifier.Notify("Downloading recording...", notify.Success)
	return d, nil
}

// DownloadByID hands out one entry of Recordings.
func (c *Controller) DownloadByID(id string) (Download, error) {
	a, err := c.byID(id)
	if err != nil {
		return Download{}, err
	}
	return c.download(a)
}

func (c *Controller) download(a Artifact) (Download, error) {
	d := Download{Name: a.Filename(), Data: a.Data}
	if c.sink != nil {
		path, err := c.sink.Save(d.Name, d.Data)
		if err != nil {
			return Download{}, fmt.Errorf("studio: save %s: %w", d.Name, err)
		}
		d.Path = path
	}
	return d, nil
}

func (c *Controller) latest() (Artifact, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.artifacts) == 0 {
		return Artifact{}, ErrNoRecording
	}
	return c.artifacts[len(c.artifacts)-1], nil
}

func (c *Controller) byID(id string) (Artifact, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, a := range c.artifacts {
		if a.ID == id {
			return a, nil
		}
	}
	return Artifact{}, fmt.Errorf("%w: %s", ErrNoRecording, id)
}

// Recordings lists finished takes, oldest first.
func (c *Controller) Recordings() []Artifact {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Artifact(nil), c.artifacts...)
}

// CanPlayback reports whether playback/download have a take to act on.
func (c *Controller) CanPlayback() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.artifacts) > 0
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) SetVolume(v int) string { return c.setMix(&c.mix.Volume, v) }
func (c *Controller) SetReverb(v int) string { return c.setMix(&c.mix.Reverb, v) }
func (c *Controller) SetDelay(v int) string  { return c.setMix(&c.mix.Delay, v) }

// setMix stores a 0..100 slider and returns its label.
func (c *Controller) setMix(field *int, v int) string {
	if v < 0 {
		v = 0
	}
	if v > 100 {
		v = 100
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	*field = v
	return fmt.Sprintf("%d%%", v)
}

func (c *Controller) Mix() Mix {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mix
}

// Close abandons any take in progress without keeping it.
func (c *Controller) Close() {
	c.ops.Lock()
	defer c.ops.Unlock()

	if c.State() == Idle {
		return
	}
	_ = c.teardown()
	c.mu.Lock()
	c.chunks = nil
	c.state = Idle
	c.mu.Unlock()
}
