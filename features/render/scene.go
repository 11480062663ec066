package render

import (
	"fmt"
	"image"
	"image/color"
	"strconv"
	"strings"
)

// Shape is one of the selectable primitives.
type Shape string

const (
	Cube   Shape = "cube"
	Sphere Shape = "sphere"
	Torus  Shape = "torus"
	Cone   Shape = "cone"
)

// ParseShape maps a selector value onto a Shape; unknown values are cubes.
func ParseShape(s string) Shape {
	switch Shape(strings.ToLower(s)) {
	case Sphere:
		return Sphere
	case Torus:
		return Torus
	case Cone:
		return Cone
	default:
		return Cube
	}
}

// Geometry carries the construction parameters for a primitive. Unused
// fields stay zero.
type Geometry struct {
	Shape          Shape
	Width          float64
	Height         float64
	Depth          float64
	Radius         float64
	Tube           float64
	RadialSegments int
	Segments       int
}

// GeometryFor returns the fixed geometry used for each shape.
func GeometryFor(s Shape) Geometry {
	switch s {
	case Sphere:
		return Geometry{Shape: Sphere, Radius: 1.5, RadialSegments: 32, Segments: 32}
	case Torus:
		return Geometry{Shape: Torus, Radius: 1.2, Tube: 0.5, RadialSegments: 16, Segments: 100}
	case Cone:
		return Geometry{Shape: Cone, Radius: 1.5, Height: 3, RadialSegments: 32}
	default:
		return Geometry{Shape: Cube, Width: 2, Height: 2, Depth: 2}
	}
}

// Material is a shiny surface of one color.
type Material struct {
	Color     color.RGBA
	Shininess float64
	Specular  color.RGBA
}

func newMaterial(c color.RGBA) Material {
	return Material{Color: c, Shininess: 100, Specular: color.RGBA{R: 0x44, G: 0x44, B: 0x44, A: 0xff}}
}

// Vec3 is a point or rotation in scene space.
type Vec3 struct{ X, Y, Z float64 }

// Camera is a perspective camera looking at LookAt.
type Camera struct {
	Position Vec3
	LookAt   Vec3
	FOV      float64
	Near     float64
	Far      float64
	Aspect   float64
}

// Light is an ambient (no position) or point light.
type Light struct {
	Color     color.RGBA
	Intensity float64
	Position  *Vec3
}

// Mesh is a device-side object. Release frees its geometry and material.
type Mesh interface {
	SetRotation(r Vec3)
	SetColor(c color.RGBA)
	Release()
}

// Device is the rasterizer the renderer drives.
type Device interface {
	CreateMesh(g Geometry, m Material) (Mesh, error)
	// Draw renders one frame of the scene as seen from cam.
	Draw(cam Camera, lights []Light, background color.RGBA, mesh Mesh) (image.Image, error)
}

// ParseHexColor parses "#rrggbb" (the leading # is optional).
func ParseHexColor(s string) (color.RGBA, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return color.RGBA{}, fmt.Errorf("render: bad color %q", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("render: bad color %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}

// HexColor formats c as "#rrggbb".
func HexColor(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func defaultLights() []Light {
	white := color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	return []Light{
		{Color: white, Intensity: 0.5},
		{Color: white, Intensity: 1, Position: &Vec3{X: 5, Y: 5, Z: 5}},
		{Color: color.RGBA{R: 0x00, G: 0xff, B: 0x88, A: 0xff}, Intensity: 0.5, Position: &Vec3{X: -5, Y: -5, Z: 5}},
	}
}
