package plugin

import (
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/ebitengine/purego"

	"github.com/pozitronik/dj-viz-go/internal/features"
	"github.com/pozitronik/dj-viz-go/internal/visual"
)

// pluginVisualizer adapts a loadedPlugin's ABI entry points to the host
// visual.Visualizer interface, marshaling Analysis/DrawSurface into
// their C-layout FFI counterparts on every call.
type pluginVisualizer struct {
	plugin   *loadedPlugin
	instance uintptr
}

func newPluginVisualizer(lp *loadedPlugin) *pluginVisualizer {
	return &pluginVisualizer{plugin: lp, instance: lp.createVisualization()}
}

func toFFI(a *features.Analysis) AudioAnalysisFFI {
	var ffi AudioAnalysisFFI
	for i := 0; i < numBands && i < features.NumBands; i++ {
		ffi.Bands[i] = float32(a.Bands[i])
		ffi.BandsNormalized[i] = float32(a.BandsNormalized[i])
	}
	ffi.Energy = float32(a.Energy)
	ffi.Bass = float32(a.Bass)
	ffi.Mids = float32(a.Mids)
	ffi.Treble = float32(a.Treble)
	ffi.SpectralCentroid = float32(a.SpectralCentroid)
	ffi.DominantBand = int32(a.DominantBand)
	ffi.KickConfidence = float32(a.KickConfidence)
	ffi.BPM = float32(a.BPM)
	if a.KickDetected {
		ffi.KickDetected = 1
	}
	if a.TransitionDetected {
		ffi.TransitionDetected = 1
	}
	if a.PunchDetected {
		ffi.PunchDetected = 1
	}
	if a.BreakDetected {
		ffi.BreakDetected = 1
	}
	for i := 0; i < spectrumSize && i < features.SpectrumSize; i++ {
		ffi.Spectrum[i] = float32(a.Spectrum[i])
	}
	return ffi
}

func (p *pluginVisualizer) Update(a *features.Analysis) {
	ffi := toFFI(a)
	p.plugin.updateFn(p.instance, &ffi)
}

// drawHandles maps the uintptr handle a plugin receives back to the
// live DrawSurface for the call currently in flight. Every vtable
// callback looks the surface up here; entries exist only for the
// duration of one Draw call.
var (
	drawHandles   sync.Map // uintptr -> visual.DrawSurface
	nextDrawHandle uint64
)

var sharedVtable = buildVtable()

type vtable struct {
	rect, ellipse, line, background, tri, quad, polyline, polygon uintptr
}

// ffiPoints reinterprets an interleaved x,y float32 buffer crossing the
// boundary as a []visual.Point, for the two variable-length primitives.
func ffiPoints(ptr uintptr, count int32) []visual.Point {
	if count <= 0 {
		return nil
	}
	floats := unsafe.Slice((*float32)(unsafe.Pointer(ptr)), int(count)*2)
	pts := make([]visual.Point, count)
	for i := range pts {
		pts[i] = visual.Point{X: floats[i*2], Y: floats[i*2+1]}
	}
	return pts
}

// buildVtable registers the host-side primitive callbacks once; the
// resulting function pointers are shared by every plugin instance since
// only the per-call Handle distinguishes which surface they target.
func buildVtable() vtable {
	rectCb := purego.NewCallback(func(handle uintptr, x, y, w, h, r, g, b, a float32) {
		if s, ok := drawHandles.Load(handle); ok {
			s.(visual.DrawSurface).Rect(visual.Rect{X: x, Y: y, W: w, H: h}, [4]float32{r, g, b, a})
		}
	})
	ellipseCb := purego.NewCallback(func(handle uintptr, x, y, w, h, r, g, b, a float32) {
		if s, ok := drawHandles.Load(handle); ok {
			s.(visual.DrawSurface).Ellipse(visual.Rect{X: x, Y: y, W: w, H: h}, [4]float32{r, g, b, a})
		}
	})
	lineCb := purego.NewCallback(func(handle uintptr, x1, y1, x2, y2, stroke, r, g, b, a float32) {
		if s, ok := drawHandles.Load(handle); ok {
			s.(visual.DrawSurface).Line(x1, y1, x2, y2, stroke, [4]float32{r, g, b, a})
		}
	})
	backgroundCb := purego.NewCallback(func(handle uintptr, r, g, b, a float32) {
		if s, ok := drawHandles.Load(handle); ok {
			s.(visual.DrawSurface).Background([4]float32{r, g, b, a})
		}
	})
	triCb := purego.NewCallback(func(handle uintptr, x1, y1, x2, y2, x3, y3, r, g, b, a float32) {
		if s, ok := drawHandles.Load(handle); ok {
			s.(visual.DrawSurface).Tri(x1, y1, x2, y2, x3, y3, [4]float32{r, g, b, a})
		}
	})
	quadCb := purego.NewCallback(func(handle uintptr, x1, y1, x2, y2, x3, y3, x4, y4, r, g, b, a float32) {
		if s, ok := drawHandles.Load(handle); ok {
			s.(visual.DrawSurface).Quad(x1, y1, x2, y2, x3, y3, x4, y4, [4]float32{r, g, b, a})
		}
	})
	polylineCb := purego.NewCallback(func(handle, points uintptr, pointCount int32, stroke, r, g, b, a float32) {
		if s, ok := drawHandles.Load(handle); ok {
			s.(visual.DrawSurface).Polyline(ffiPoints(points, pointCount), stroke, [4]float32{r, g, b, a})
		}
	})
	polygonCb := purego.NewCallback(func(handle, points uintptr, pointCount int32, r, g, b, a float32) {
		if s, ok := drawHandles.Load(handle); ok {
			s.(visual.DrawSurface).Polygon(ffiPoints(points, pointCount), [4]float32{r, g, b, a})
		}
	})
	return vtable{
		rect:       rectCb,
		ellipse:    ellipseCb,
		line:       lineCb,
		background: backgroundCb,
		tri:        triCb,
		quad:       quadCb,
		polyline:   polylineCb,
		polygon:    polygonCb,
	}
}

func (p *pluginVisualizer) Draw(surface visual.DrawSurface, area visual.Rect) {
	handle := uintptr(atomic.AddUint64(&nextDrawHandle, 1))
	drawHandles.Store(handle, surface)
	defer drawHandles.Delete(handle)

	ffi := DrawFFI{
		Handle:     handle,
		Rect:       sharedVtable.rect,
		Ellipse:    sharedVtable.ellipse,
		Line:       sharedVtable.line,
		Background: sharedVtable.background,
		Tri:        sharedVtable.tri,
		Quad:       sharedVtable.quad,
		Polyline:   sharedVtable.polyline,
		Polygon:    sharedVtable.polygon,
	}
	p.plugin.drawFn(p.instance, &ffi, RectFFI{X: area.X, Y: area.Y, W: area.W, H: area.H})
}
