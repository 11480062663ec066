// Package mediatest provides in-memory capture devices for tests.
package mediatest

import (
	"context"
	"sync"

	"barrot/features/media"
)

// Track is an in-memory media.Track.
type Track struct {
	mu      sync.Mutex
	kind    media.Kind
	enabled bool
	stopped bool
}

func NewTrack(kind media.Kind) *Track {
	return &Track{kind: kind, enabled: true}
}

func (t *Track) Kind() media.Kind { return t.kind }

func (t *Track) Enabled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.enabled
}

func (t *Track) SetEnabled(enabled bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.enabled = enabled
}

func (t *Track) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
}

func (t *Track) Stopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped
}

// Stream is an in-memory media.Stream.
type Stream struct {
	Constraints media.Constraints
	tracks      []*Track
}

func (s *Stream) Tracks() []media.Track {
	out := make([]media.Track, len(s.tracks))
	for i, t := range s.tracks {
		out[i] = t
	}
	return out
}

// AllStopped reports whether every track has been stopped.
func (s *Stream) AllStopped() bool {
	for _, t := range s.tracks {
		if !t.Stopped() {
			return false
		}
	}
	return true
}

// Devices grants a fresh Stream per call unless Err is set.
type Devices struct {
	mu      sync.Mutex
	Err     error
	streams []*Stream
}

func (d *Devices) GetUserMedia(ctx context.Context, c media.Constraints) (media.Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Err != nil {
		return nil, d.Err
	}
	s := &Stream{Constraints: c}
	if c.Audio != nil {
		s.tracks = append(s.tracks, NewTrack(media.Audio))
	}
	if c.Video != nil {
		s.tracks = append(s.tracks, NewTrack(media.Video))
	}
	d.streams = append(d.streams, s)
	return s, nil
}

// SetErr changes the grant outcome for later calls.
func (d *Devices) SetErr(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Err = err
}

// Streams returns every stream granted so far.
func (d *Devices) Streams() []*Stream {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*Stream(nil), d.streams...)
}

// Last returns the most recently granted stream, or nil.
func (d *Devices) Last() *Stream {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.streams) == 0 {
		return nil
	}
	return d.streams[len(d.streams)-1]
}
