package notify

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlogNotifier(t *testing.T) {
	var buf bytes.Buffer
	n := SlogNotifier{Log: slog.New(slog.NewTextHandler(&buf, nil))}

	n.Notify("Stream started successfully!", Success)
	n.Notify("Failed to start stream: denied", Error)

	out := buf.String()
	assert.Contains(t, out, "level=INFO")
	assert.Contains(t, out, "kind=success")
	assert.Contains(t, out, "level=ERROR")
	assert.Contains(t, out, "denied")
}

func TestRecorder(t *testing.T) {
	var r Recorder
	_, ok := r.Last()
	assert.False(t, ok)

	var n Notifier = &r
	n.Notify("a", Info)
	n.Notify("b", Error)

	last, ok := r.Last()
	assert.True(t, ok)
	assert.Equal(t, Note{Msg: "b", Level: Error}, last)
	assert.Len(t, r.Notes(), 2)
}

func TestFunc(t *testing.T) {
	var got string
	Func(func(msg string, _ Level) { got = msg }).Notify("x", Info)
	assert.Equal(t, "x", got)
	Discard.Notify("ignored", Error)
}
