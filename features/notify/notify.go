// Package notify is the user-facing notification callback shared by the
// feature controllers.
package notify

import (
	"context"
	"log/slog"
	"sync"
)

type Level string

const (
	Success Level = "success"
	Info    Level = "info"
	Error   Level = "error"
)

// Notifier shows a transient message to the user.
type Notifier interface {
	Notify(msg string, level Level)
}

// Func adapts a plain function to Notifier.
type Func func(msg string, level Level)

func (f Func) Notify(msg string, level Level) { f(msg, level) }

// Discard drops every notification.
var Discard Notifier = Func(func(string, Level) {})

// SlogNotifier writes notifications to a structured logger.
type SlogNotifier struct {
	Log *slog.Logger
}

func (n SlogNotifier) Notify(msg string, level Level) {
	lvl := slog.LevelInfo
	if level == Error {
		lvl = slog.LevelError
	}
	n.Log.Log(context.Background(), lvl, msg, "kind", string(level))
}

// Note is one recorded notification.
type Note struct {
	Msg   string
	Level Level
}

// Recorder keeps every notification in order. Safe for concurrent use.
type Recorder struct {
	mu    sync.Mutex
	notes []Note
}

func (r *Recorder) Notify(msg string, level Level) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, Note{Msg: msg, Level: level})
}

// Notes returns a copy of what has been recorded so far.
func (r *Recorder) Notes() []Note {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Note(nil), r.notes...)
}

// Last returns the most recent notification, if any.
func (r *Recorder) Last() (Note, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notes) == 0 {
		return Note{}, false
	}
	return r.notes[len(r.notes)-1], true
}
