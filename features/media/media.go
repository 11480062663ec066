// Package media describes capture-device access. The concrete devices live
// outside this module; controllers only see these interfaces.
package media

import (
	"context"
	"errors"
)

// ErrPermissionDenied is what a Devices implementation should return when
// the user refuses access.
var ErrPermissionDenied = errors.New("permission denied")

type Kind string

const (
	Audio Kind = "audio"
	Video Kind = "video"
)

// AudioConstraints are processing hints for the microphone.
type AudioConstraints struct {
	EchoCancellation bool
	NoiseSuppression bool
	AutoGainControl  bool
}

// VideoConstraints are ideal (not exact) capture dimensions.
type VideoConstraints struct {
	Width     int
	Height    int
	FrameRate int
}

// Constraints select which kinds to capture; a nil member means "not wanted".
type Constraints struct {
	Audio *AudioConstraints
	Video *VideoConstraints
}

// Track is one live feed inside a stream.
type Track interface {
	Kind() Kind
	Enabled() bool
	SetEnabled(enabled bool)
	Stop()
}

// Stream is a granted capture session.
type Stream interface {
	Tracks() []Track
}

// Devices grants capture streams. GetUserMedia may block on a user prompt.
type Devices interface {
	GetUserMedia(ctx context.Context, c Constraints) (Stream, error)
}

// FirstTrack returns the first track of kind k, or nil.
func FirstTrack(s Stream, k Kind) Track {
	if s == nil {
		return nil
	}
	for _, t := range s.Tracks() {
		if t.Kind() == k {
			return t
		}
	}
	return nil
}

// StopAll stops every track of s.
func StopAll(s Stream) {
	if s == nil {
		return
	}
	for _, t := range s.Tracks() {
		t.Stop()
	}
}
