// Package responder maps free-text chat input onto canned replies.
package responder

import (
	"math/rand"
	"strings"
	"sync"
	"time"
)

type rule struct {
	keywords []string
	reply    string
}

// rules are checked in order; the first keyword hit wins.
var rules = []rule{
	{
		keywords: []string{"stream", "streaming"},
		reply:    "To start streaming, navigate to the Streaming section and click the 'Start Stream' button. Make sure to grant camera and microphone permissions when prompted. You can adjust the quality settings and toggle audio/video as needed.",
	},
	{
		keywords: []string{"record", "recording"},
		reply:    "The Recording Studio allows you to record high-quality audio with real-time visualization. Click the Record button to start, and you can pause, stop, and download your recordings. All recordings are saved locally in your browser.",
	},
	{
		keywords: []string{"render", "3d"},
		reply:    "Our 3D Rendering tool uses Three.js to create interactive 3D visualizations. You can choose different shapes, adjust rotation speed, change colors, and export your renders as images. Try dragging the object with your mouse to rotate it manually!",
	},
	{
		keywords: []string{"feature", "what can"},
		reply:    "Barrot offers several powerful features: Live Streaming with WebRTC, a Recording Studio with audio visualization, 3D Rendering with interactive controls, real-time chat assistance, and cloud storage capabilities. All features work directly in your browser with no additional software needed!",
	},
	{
		keywords: []string{"help", "how"},
		reply:    "I'm here to help! You can ask me about streaming, recording, 3D rendering, or any other features. Just type your question and I'll do my best to assist you. You can also use the quick question buttons for common queries.",
	},
	{
		keywords: []string{"audio", "sound"},
		reply:    "Our audio production tools include a full recording studio with real-time visualization, volume control, reverb, and delay effects. You can record, pause, playback, and download your audio creations. The Web Audio API provides professional-grade audio processing.",
	},
	{
		keywords: []string{"video"},
		reply:    "Video streaming is powered by WebRTC technology, allowing you to stream directly from your camera. You can control video quality (480p, 720p, 1080p), toggle video on/off, and monitor stream duration. All processing happens in real-time with minimal latency.",
	},
	{
		keywords: []string{"thank", "thanks"},
		reply:    "You're welcome! I'm always here to help. Feel free to explore all the features Barrot has to offer. If you have any other questions, just ask!",
	},
	{
		keywords: []string{"hello", "hi"},
		reply:    "Hello! Welcome to Barrot! I'm your AI assistant, ready to help you explore our multimedia platform. What would you like to know about?",
	},
}

// Fallbacks is the generic reply set used when no keyword matches.
var Fallbacks = []string{
	"That's an interesting question! Barrot is designed to provide powerful multimedia tools right in your browser. Would you like to know more about a specific feature?",
	"I can help you with streaming, recording, 3D rendering, and more. What would you like to explore?",
	"Barrot combines cutting-edge web technologies to deliver a seamless creative experience. Ask me about any of our features!",
	"Great question! Our platform offers streaming, recording studio, 3D rendering, and AI chat capabilities. Which one interests you most?",
}

// Responder picks replies. The zero value is not usable; call New.
type Responder struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// New returns a Responder drawing fallbacks from src.
func New(src rand.Source) *Responder {
	return &Responder{rnd: rand.New(src)}
}

// Generate returns the reply for text.
func (r *Responder) Generate(text string) string {
	if reply, ok := Match(text); ok {
		return reply
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return Fallbacks[r.rnd.Intn(len(Fallbacks))]
}

// Match reports the keyword reply for text, if any rule applies.
func Match(text string) (string, bool) {
	lower := strings.ToLower(text)
	for _, rl := range rules {
		for _, kw := range rl.keywords {
			if strings.Contains(lower, kw) {
				return rl.reply, true
			}
		}
	}
	return "", false
}

var std = New(rand.NewSource(time.Now().UnixNano()))

// Generate uses the package-level Responder.
func Generate(text string) string { return std.Generate(text) }
