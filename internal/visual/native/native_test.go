package native

import (
	"testing"

	"github.com/pozitronik/dj-viz-go/internal/features"
	"github.com/pozitronik/dj-viz-go/internal/visual"
)

// recordingSurface is a DrawSurface test double that counts calls by
// kind instead of rendering anything, mirroring the recording surface
// used for script engine tests.
type recordingSurface struct {
	rects    []visual.Rect
	ellipses []visual.Rect
	lines    int
	texts    int
}

func (r *recordingSurface) Rect(rect visual.Rect, rgba [4]float32)    { r.rects = append(r.rects, rect) }
func (r *recordingSurface) Ellipse(rect visual.Rect, rgba [4]float32) { r.ellipses = append(r.ellipses, rect) }
func (r *recordingSurface) Line(x1, y1, x2, y2, stroke float32, rgba [4]float32) { r.lines++ }
func (r *recordingSurface) Background(rgba [4]float32)                          {}
func (r *recordingSurface) Tri(x1, y1, x2, y2, x3, y3 float32, rgba [4]float32)  {}
func (r *recordingSurface) Quad(x1, y1, x2, y2, x3, y3, x4, y4 float32, rgba [4]float32) {
}
func (r *recordingSurface) Polyline(points []visual.Point, stroke float32, rgba [4]float32) {}
func (r *recordingSurface) Polygon(points []visual.Point, rgba [4]float32)                  {}
func (r *recordingSurface) Text(x, y float32, content string, size int, rgba [4]float32) {
	r.texts++
}

var fullArea = visual.Rect{X: 0, Y: 0, W: 100, H: 100}

func TestBarsDrawsOneRectPerBandAndDominantIsTaller(t *testing.T) {
	b := NewBars()
	a := &features.Analysis{DominantBand: 2}
	a.Bands[0] = 0.1
	a.Bands[1] = 0.5
	a.Bands[2] = 0.9

	b.Update(a)

	surface := &recordingSurface{}
	b.Draw(surface, fullArea)

	if len(surface.rects) != features.NumBands {
		t.Fatalf("expected %d bars drawn, got %d", features.NumBands, len(surface.rects))
	}

	dominant := surface.rects[2]
	if dominant.H <= surface.rects[0].H {
		t.Fatal("expected the louder dominant band to draw a taller bar than a quiet one")
	}
}

func TestBarsZeroBandsDrawsZeroHeightBars(t *testing.T) {
	b := NewBars()
	b.Update(&features.Analysis{})

	surface := &recordingSurface{}
	b.Draw(surface, fullArea)

	for i, r := range surface.rects {
		if r.H != 0 {
			t.Fatalf("bar %d: expected zero height on silence, got %v", i, r.H)
		}
	}
}

func TestPulseGrowsOnKickAndDecaysOtherwise(t *testing.T) {
	p := NewPulse()

	p.Update(&features.Analysis{KickDetected: true, KickConfidence: 1.0, Energy: 0.5})
	surface := &recordingSurface{}
	p.Draw(surface, fullArea)
	if len(surface.ellipses) != 1 {
		t.Fatalf("expected one ellipse drawn, got %d", len(surface.ellipses))
	}
	grown := surface.ellipses[0]

	p.Update(&features.Analysis{KickDetected: false, Energy: 0.5})
	surface2 := &recordingSurface{}
	p.Draw(surface2, fullArea)
	decayed := surface2.ellipses[0]

	if decayed.W >= grown.W || decayed.H >= grown.H {
		t.Fatal("expected pulse radius to shrink on a frame with no kick")
	}
}

func TestPulseDrawsOneEllipseAtHighEnergy(t *testing.T) {
	p := NewPulse()
	p.Update(&features.Analysis{Energy: 0.9})

	surface := &recordingSurface{}
	p.Draw(surface, fullArea)
	if len(surface.ellipses) != 1 {
		t.Fatalf("expected one ellipse drawn, got %d", len(surface.ellipses))
	}
}
