// Package visual owns the Visualizer interface, the registry of
// available visualizers (native, plugin, and script-backed), and the
// orchestrator that selects a primary plus overlays and drives their
// per-frame update/draw.
package visual

import "github.com/pozitronik/dj-viz-go/internal/features"

// Rect is the surface region a visualizer is asked to draw into.
type Rect struct {
	X, Y, W, H float32
}

// Point is a single vertex in a Polyline/Polygon point list.
type Point struct {
	X, Y float32
}

// DrawSurface is the drawing capability visualizers render through,
// mirroring nannou's Draw vocabulary (rect, ellipse, line, background,
// tri, quad, polyline, polygon) that the plugin ABI in
// original_source/crates/dj-viz-api/src/draw.rs exposes; the GPU
// compositor provides the concrete implementation and native/plugin/
// script visualizers only ever see this interface. Text is an addition
// beyond that vocabulary, available to native and script visualizers
// only — see DESIGN.md for why the plugin ABI doesn't carry it.
type DrawSurface interface {
	Rect(r Rect, rgba [4]float32)
	Ellipse(r Rect, rgba [4]float32)
	Line(x1, y1, x2, y2, stroke float32, rgba [4]float32)
	Background(rgba [4]float32)
	Tri(x1, y1, x2, y2, x3, y3 float32, rgba [4]float32)
	Quad(x1, y1, x2, y2, x3, y3, x4, y4 float32, rgba [4]float32)
	Polyline(points []Point, stroke float32, rgba [4]float32)
	Polygon(points []Point, rgba [4]float32)
	Text(x, y float32, content string, size int, rgba [4]float32)
}

// Visualizer is the capability set every variant (native, plugin,
// script) implements. Visualizers own their state privately; Update is
// called once per frame before Draw.
type Visualizer interface {
	Update(a *features.Analysis)
	Draw(surface DrawSurface, area Rect)
}

// Kind identifies which variant produced a Visualizer, surfaced through
// Descriptor for UI/picker consumers.
type Kind int

const (
	KindNative Kind = iota
	KindPlugin
	KindScript
)

func (k Kind) String() string {
	switch k {
	case KindNative:
		return "native"
	case KindPlugin:
		return "plugin"
	case KindScript:
		return "script"
	default:
		return "unknown"
	}
}

// Descriptor is the read-only summary of a registered visualizer,
// supplemented from the reference implementation's UI picker (dropped
// by the distilled spec, restored here as a thin, UI-toolkit-free
// capability any front end can build a picker from).
type Descriptor struct {
	Name    string
	Kind    Kind
	Broken  bool
}

// Param is an optional tunable a visualizer may expose; native built-ins
// typically expose none.
type Param struct {
	Name  string
	Value float64
}

// Tunable is implemented by visualizers that want to expose adjustable
// parameters beyond Update/Draw.
type Tunable interface {
	Params() []Param
}
