// Package stream is the live camera/microphone preview controller.
package stream

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"barrot/backend/tasks"
	"barrot/features/media"
	"barrot/features/notify"
)

// SettleDelay is the pause between stop and restart on a quality change.
const SettleDelay = 500 * time.Millisecond

var (
	ErrInvalidState = errors.New("stream: invalid state")
	ErrClosed       = errors.New("stream: closed")
)

type State int

const (
	Offline State = iota
	Starting
	Live
	Failed
)

func (s State) String() string {
	switch s {
	case Starting:
		return "starting"
	case Live:
		return "live"
	case Failed:
		return "error"
	default:
		return "offline"
	}
}

// Quality is one of the fixed capture presets.
type Quality string

const (
	Q1080p Quality = "1080p"
	Q720p  Quality = "720p"
	Q480p  Quality = "480p"

	DefaultQuality = Q720p
)

var presets = map[Quality]media.VideoConstraints{
	Q1080p: {Width: 1920, Height: 1080, FrameRate: 30},
	Q720p:  {Width: 1280, Height: 720, FrameRate: 30},
	Q480p:  {Width: 854, Height: 480, FrameRate: 24},
}

// ConstraintsFor builds capture constraints for q. Unknown presets ask for
// video with no dimension hints.
func ConstraintsFor(q Quality) media.Constraints {
	c := media.Constraints{
		Audio: &media.AudioConstraints{EchoCancellation: true, NoiseSuppression: true, AutoGainControl: true},
		Video: &media.VideoConstraints{},
	}
	if v, ok := presets[q]; ok {
		c.Video = &v
	}
	return c
}

// Preview shows the live feed.
type Preview interface {
	Attach(s media.Stream) error
	Detach()
}

// FormatDuration renders whole seconds as HH:MM:SS.
func FormatDuration(d time.Duration) string {
	secs := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", secs/3600, secs/60%60, secs%60)
}

type Option func(*Controller)

func WithNotifier(n notify.Notifier) Option { return func(c *Controller) { c.notifier = n } }

// WithSettleDelay overrides SettleDelay.
func WithSettleDelay(d time.Duration) Option { return func(c *Controller) { c.settle = d } }

// Controller owns one stream panel.
type Controller struct {
	devices   media.Devices
	preview   Preview
	scheduler *tasks.Scheduler
	notifier  notify.Notifier
	settle    time.Duration
	now       func() time.Time

	mu        sync.Mutex
	state     State
	quality   Quality
	stream    media.Stream
	started   time.Time
	display   string
	counter   tasks.Handle
	lastError error
	closed    bool

	// restart is the pending re-acquire after a quality change; restartSeq
	// invalidates a timer that already fired but has not taken mu yet.
	restart    *time.Timer
	restartSeq uint64
}

// New builds an offline controller. The scheduler drives the duration
// counter and is not owned by the controller.
func New(devices media.Devices, preview Preview, scheduler *tasks.Scheduler, opts ...Option) *Controller {
	c := &Controller{
		devices:   devices,
		preview:   preview,
		scheduler: scheduler,
		notifier:  notify.Discard,
		settle:    SettleDelay,
		now:       time.Now,
		quality:   DefaultQuality,
		display:   FormatDuration(0),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start acquires the camera and microphone at the current quality. It is
// accepted only while offline or after a failure; a second Start while the
// first is still waiting on the devices is rejected.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	quality, err := c.beginLocked()
	c.mu.Unlock()
	if err != nil {
		return err
	}
	return c.acquire(ctx, quality)
}

// beginLocked moves to Starting. An explicit Start supersedes a pending
// quality restart.
func (c *Controller) beginLocked() (Quality, error) {
	switch {
	case c.closed:
		return "", ErrClosed
	case c.state == Starting:
		return "", fmt.Errorf("%w: already starting", ErrInvalidState)
	case c.state == Live:
		return "", fmt.Errorf("%w: already live", ErrInvalidState)
	}
	c.cancelRestartLocked()
	c.state = Starting
	return c.quality, nil
}

func (c *Controller) acquire(ctx context.Context, quality Quality) error {
	s, err := c.devices.GetUserMedia(ctx, ConstraintsFor(quality))
	if err == nil {
		if err = c.preview.Attach(s); err != nil {
			media.StopAll(s)
		}
	}

	c.mu.Lock()
	if c.closed {
		c.state = Offline
		c.mu.Unlock()
		if err == nil {
			c.preview.Detach()
			media.StopAll(s)
		}
		return ErrClosed
	}
	if err != nil {
		c.state = Failed
		c.lastError = err
		c.mu.Unlock()
		c.notifier.Notify("Failed to start stream: "+err.Error(), notify.Error)
		return fmt.Errorf("stream: start: %w", err)
	}
	c.state = Live
	c.stream = s
	c.lastError = nil
	c.started = c.now()
	c.display = FormatDuration(0)
	c.counter = c.scheduler.Every(time.Second, c.tick)
	c.mu.Unlock()

	c.notifier.Notify("Stream started successfully!", notify.Success)
	return nil
}

func (c *Controller) tick() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Live {
		return
	}
	c.display = FormatDuration(c.now().Sub(c.started))
}

// Stop releases the devices and resets the counter. It is valid while live
// and during the settle delay of a quality change, which it cancels.
func (c *Controller) Stop() error {
	c.mu.Lock()
	switch {
	case c.state == Live:
		c.stopLocked()
	case c.restart != nil:
		c.cancelRestartLocked()
	default:
		c.mu.Unlock()
		return fmt.Errorf("%w: not live", ErrInvalidState)
	}
	c.mu.Unlock()

	c.notifier.Notify("Stream stopped", notify.Info)
	return nil
}

func (c *Controller) stopLocked() {
	media.StopAll(c.stream)
	c.stream = nil
	c.preview.Detach()
	if c.counter != nil {
		c.counter.Cancel()
		c.counter = nil
	}
	c.display = FormatDuration(0)
	c.state = Offline
}

// ChangeQuality switches preset. While live this is a full stop and, after
// the settle delay, a fresh Start; there is no in-place renegotiation.
func (c *Controller) ChangeQuality(q Quality) error {
	if _, ok := presets[q]; !ok {
		return fmt.Errorf("stream: unknown quality %q", q)
	}

	c.mu.Lock()
	c.quality = q
	if c.state != Live {
		c.mu.Unlock()
		return nil
	}
	c.stopLocked()
	c.cancelRestartLocked()
	seq := c.restartSeq
	c.restart = time.AfterFunc(c.settle, func() { c.restartAfterSettle(seq) })
	c.mu.Unlock()
	return nil
}

func (c *Controller) restartAfterSettle(seq uint64) {
	c.mu.Lock()
	if seq != c.restartSeq || c.restart == nil {
		c.mu.Unlock()
		return
	}
	c.restart = nil
	quality, err := c.beginLocked()
	c.mu.Unlock()
	if err != nil {
		return
	}
	_ = c.acquire(context.Background(), quality)
}

func (c *Controller) cancelRestartLocked() {
	if c.restart != nil {
		c.restart.Stop()
		c.restart = nil
	}
	c.restartSeq++
}

// Restarting reports whether a quality change is waiting to re-acquire.
func (c *Controller) Restarting() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.restart != nil
}

// ToggleAudio flips the microphone track and reports its new state.
func (c *Controller) ToggleAudio() (enabled bool, err error) {
	return c.toggle(media.Audio)
}

// ToggleVideo flips the camera track and reports its new state.
func (c *Controller) ToggleVideo() (enabled bool, err error) {
	return c.toggle(media.Video)
}

func (c *Controller) toggle(k media.Kind) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Live {
		return false, fmt.Errorf("%w: not live", ErrInvalidState)
	}
	t := media.FirstTrack(c.stream, k)
	if t == nil {
		return false, fmt.Errorf("stream: no %s track", k)
	}
	t.SetEnabled(!t.Enabled())
	return t.Enabled(), nil
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) Quality() Quality {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.quality
}

// Duration is the HH:MM:SS counter as last updated.
func (c *Controller) Duration() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.display
}

// Err is the reason for the last failed Start, if any.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastError
}

// Close releases everything, whatever the state. Used on page unload. A
// Start still waiting on the devices releases what it gets and returns
// ErrClosed.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.cancelRestartLocked()
	if c.state == Live {
		c.stopLocked()
	}
}
