package studio

import "image/color"

const (
	// FFTSize is the analyser transform size; it yields FFTSize/2 bins.
	FFTSize = 2048

	IdlePrompt = "Click Record to start"

	barScale = 2.5
	barGap   = 1
)

// WaveColor is the stroke for the time-domain trace.
var WaveColor = color.RGBA{R: 0x00, G: 0xff, B: 0x88, A: 0xff}

// Analyser exposes byte snapshots of the live signal.
type Analyser interface {
	// FrequencyBinCount is half the transform size.
	FrequencyBinCount() int
	// TimeDomain fills dst with samples centred on 128.
	TimeDomain(dst []byte)
	// Frequency fills dst with magnitudes in 0..255.
	Frequency(dst []byte)
	Close() error
}

type Point struct{ X, Y float64 }

// Bar is one spectrum column, anchored to the bottom edge.
type Bar struct {
	X, Y, Width, Height float64
	// Hue in degrees; saturation 100%, lightness 50%.
	Hue float64
}

// Frame is one visualizer paint: waveform on top of the spectrum, on a
// black background.
type Frame struct {
	Width, Height float64
	Waveform      []Point
	Bars          []Bar
}

// Canvas paints visualizer frames.
type Canvas interface {
	Size() (width, height int)
	Draw(f Frame)
	// Prompt clears the canvas and centres msg on it.
	Prompt(msg string)
}

// Waveform maps time-domain samples onto the canvas. Each sample v lands at
// y = v/128 * h/2, the x step is w/len(samples), and the trace closes at
// the vertical midpoint of the right edge.
func Waveform(samples []byte, w, h float64) []Point {
	if len(samples) == 0 {
		return nil
	}
	step := w / float64(len(samples))
	pts := make([]Point, 0, len(samples)+1)
	x := 0.0
	for _, v := range samples {
		pts = append(pts, Point{X: x, Y: float64(v) / 128 * h / 2})
		x += step
	}
	return append(pts, Point{X: w, Y: h / 2})
}

// Spectrum lays out frequency magnitudes as bars. Bars are 2.5 bins wide
// with a one pixel gap and stop once they run past the right edge.
func Spectrum(magnitudes []byte, w, h float64) []Bar {
	n := len(magnitudes)
	if n == 0 {
		return nil
	}
	width := w / float64(n) * barScale
	var bars []Bar
	x := 0.0
	for i, v := range magnitudes {
		height := float64(v) / 255 * h / 2
		bars = append(bars, Bar{
			X:      x,
			Y:      h - height,
			Width:  width,
			Height: height,
			Hue:    float64(i) / float64(n) * 360,
		})
		x += width + barGap
		if x > w {
			break
		}
	}
	return bars
}

// visualizer reads one analyser into reusable buffers.
type visualizer struct {
	analyser Analyser
	wave     []byte
	freq     []byte
}

func newVisualizer(a Analyser) *visualizer {
	n := a.FrequencyBinCount()
	return &visualizer{analyser: a, wave: make([]byte, n), freq: make([]byte, n)}
}

func (v *visualizer) frame(width, height int) Frame {
	w, h := float64(width), float64(height)
	v.analyser.TimeDomain(v.wave)
	v.analyser.Frequency(v.freq)
	return Frame{
		Width:    w,
		Height:   h,
		Waveform: Waveform(v.wave, w, h),
		Bars:     Spectrum(v.freq, w, h),
	}
}
