// Package render drives the 3D viewer: one rotating primitive, recolorable,
// draggable and exportable as a PNG frame.
package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/color"
	"image/png"
	"sync"
	"time"

	"barrot/backend/tasks"
	"barrot/features/notify"
)

const (
	DefaultShape  = Cube
	DefaultSlider = 50
	DefaultColor  = "#00ff88"

	// maxSpeed is the per-frame x rotation (radians) at slider 100.
	maxSpeed   = 0.02
	yRatio     = 1.5
	dragFactor = 0.01
)

var ErrInvalidState = errors.New("render: invalid state")

var background = color.RGBA{A: 0xff}

// DefaultCamera sits five units back on the z axis.
func DefaultCamera() Camera {
	return Camera{Position: Vec3{Z: 5}, FOV: 75, Near: 0.1, Far: 1000, Aspect: 1}
}

// SpeedForSlider maps a 0..100 slider onto radians per frame.
func SpeedForSlider(v int) float64 {
	return float64(clamp(v, 0, 100)) / 100 * maxSpeed
}

// Sink stores exported frames.
type Sink interface {
	Save(name string, content []byte) (string, error)
}

// Export is one captured frame.
type Export struct {
	Name string
	PNG  []byte
	// Path is set when a Sink stored the file.
	Path string
}

// State is a read-only snapshot of the viewer.
type State struct {
	Shape    Shape
	Color    string
	Slider   int
	Speed    float64
	Rotation Vec3
	Camera   Camera
	Running  bool
	Dragging bool
	// DrawErr is the error of the last animation frame, if it failed.
	DrawErr  error
}

type Option func(*Controller)

func WithNotifier(n notify.Notifier) Option { return func(c *Controller) { c.notifier = n } }
func WithSink(s Sink) Option               { return func(c *Controller) { c.sink = s } }

// WithFrameInterval overrides the animation tick.
func WithFrameInterval(d time.Duration) Option { return func(c *Controller) { c.frameInterval = d } }

// Controller owns the scene. All methods are safe for concurrent use.
type Controller struct {
	device        Device
	notifier      notify.Notifier
	sink          Sink
	frameInterval time.Duration
	now           func() time.Time

	mu       sync.Mutex
	shape    Shape
	color    color.RGBA
	slider   int
	speed    float64
	rotation Vec3
	camera   Camera
	mesh     Mesh
	loop     *tasks.FrameLoop
	dragging bool
	lastX    float64
	lastY    float64
	drawErr  error
}

// New builds the scene with the default cube.
func New(device Device, opts ...Option) (*Controller, error) {
	c := &Controller{
		device:        device,
		notifier:      notify.Discard,
		frameInterval: tasks.DefaultFrameInterval,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.resetLocked(); err != nil {
		return nil, err
	}
	return c, nil
}

// Start runs the animation loop until Stop or ctx ends.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.runningLocked() {
		return fmt.Errorf("%w: already animating", ErrInvalidState)
	}
	c.loop = tasks.StartFrameLoop(ctx, c.frameInterval, func(int) { c.Tick() })
	return nil
}

func (c *Controller) runningLocked() bool {
	if c.loop == nil {
		return false
	}
	select {
	case <-c.loop.Done():
		return false
	default:
		return true
	}
}

// Stop cancels the animation loop. Stopping an idle viewer is a no-op.
func (c *Controller) Stop() {
	c.mu.Lock()
	loop := c.loop
	c.loop = nil
	c.mu.Unlock()

	if loop != nil {
		loop.Cancel()
	}
}

// Tick advances one frame of continuous rotation and presents it. A draw
// failure is kept for Snapshot and notified once until a frame succeeds.
func (c *Controller) Tick() {
	c.mu.Lock()
	if c.mesh == nil {
		c.mu.Unlock()
		return
	}
	c.rotation.X += c.speed
	c.rotation.Y += c.speed * yRatio
	c.mesh.SetRotation(c.rotation)
	_, err := c.device.Draw(c.camera, defaultLights(), background, c.mesh)
	failed := err != nil && c.drawErr == nil
	c.drawErr = err
	c.mu.Unlock()

	if failed {
		c.notifier.Notify("Failed to render frame: "+err.Error(), notify.Error)
	}
}

// SetShape swaps the mesh, releasing the previous one first.
func (c *Controller) SetShape(name string) error {
	shape := ParseShape(name)

	c.mu.Lock()
	err := c.replaceMeshLocked(shape)
	c.mu.Unlock()

	if err != nil {
		c.notifier.Notify("Failed to change shape", notify.Error)
		return err
	}
	c.notifier.Notify(fmt.Sprintf("Shape changed to %s", shape), notify.Success)
	return nil
}

func (c *Controller) replaceMeshLocked(shape Shape) error {
	if c.mesh != nil {
		c.mesh.Release()
		c.mesh = nil
	}
	mesh, err := c.device.CreateMesh(GeometryFor(shape), newMaterial(c.color))
	if err != nil {
		return fmt.Errorf("render: create %s: %w", shape, err)
	}
	c.mesh = mesh
	c.shape = shape
	c.rotation = Vec3{}
	return nil
}

// SetSpeed applies the rotation slider (0..100).
func (c *Controller) SetSpeed(slider int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.slider = clamp(slider, 0, 100)
	c.speed = SpeedForSlider(c.slider)
}

// SetColor recolors the live mesh.
func (c *Controller) SetColor(hex string) error {
	col, err := ParseHexColor(hex)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.color = col
	if c.mesh != nil {
		c.mesh.SetColor(col)
	}
	return nil
}

// PointerDown starts a manual drag at (x, y).
func (c *Controller) PointerDown(x, y float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dragging = true
	c.lastX, c.lastY = x, y
}

// PointerMove rotates the mesh by the pointer delta while dragging. The
// manual rotation adds onto the continuous one.
func (c *Controller) PointerMove(x, y float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	dx, dy := x-c.lastX, y-c.lastY
	c.lastX, c.lastY = x, y
	if !c.dragging || c.mesh == nil {
		return
	}
	c.rotation.Y += dx * dragFactor
	c.rotation.X += dy * dragFactor
	c.mesh.SetRotation(c.rotation)
}

// PointerUp ends a drag; also used for pointer-leave and touch-end.
func (c *Controller) PointerUp() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dragging = false
}

// Resize updates the camera aspect ratio.
func (c *Controller) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.camera.Aspect = float64(width) / float64(height)
}

// Export draws the current frame and encodes it as PNG.
func (c *Controller) Export() (Export, error) {
	exp, err := c.export()
	if err != nil {
		c.notifier.Notify("Failed to export rendering", notify.Error)
		return Export{}, err
	}
	c.notifier.Notify("Rendering exported successfully!", notify.Success)
	return exp, nil
}

func (c *Controller) export() (Export, error) {
	c.mu.Lock()
	img, err := c.device.Draw(c.camera, defaultLights(), background, c.mesh)
	c.mu.Unlock()
	if err != nil {
		return Export{}, fmt.Errorf("render: draw: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return Export{}, fmt.Errorf("render: encode png: %w", err)
	}
	exp := Export{
		Name: fmt.Sprintf("barrot-render-%d.png", c.now().UnixMilli()),
		PNG:  buf.Bytes(),
	}
	if c.sink != nil {
		path, err := c.sink.Save(exp.Name, exp.PNG)
		if err != nil {
			return Export{}, fmt.Errorf("render: save: %w", err)
		}
		exp.Path = path
	}
	return exp, nil
}

// Reset restores shape, speed, color and camera in one step.
func (c *Controller) Reset() error {
	c.mu.Lock()
	err := c.resetLocked()
	c.mu.Unlock()
	if err != nil {
		return err
	}
	c.notifier.Notify("Rendering reset to defaults", notify.Info)
	return nil
}

func (c *Controller) resetLocked() error {
	col, _ := ParseHexColor(DefaultColor)
	aspect := c.camera.Aspect

	c.color = col
	c.slider = DefaultSlider
	c.speed = SpeedForSlider(DefaultSlider)
	c.camera = DefaultCamera()
	if aspect > 0 {
		c.camera.Aspect = aspect
	}
	c.dragging = false
	return c.replaceMeshLocked(DefaultShape)
}

// Snapshot returns the current viewer state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{
		Shape:    c.shape,
		Color:    HexColor(c.color),
		Slider:   c.slider,
		Speed:    c.speed,
		Rotation: c.rotation,
		Camera:   c.camera,
		Running:  c.runningLocked(),
		Dragging: c.dragging,
		DrawErr:  c.drawErr,
	}
}

// Close stops the loop and releases the mesh.
func (c *Controller) Close() {
	c.Stop()
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mesh != nil {
		c.mesh.Release()
		c.mesh = nil
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
