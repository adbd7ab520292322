package script

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pozitronik/dj-viz-go/internal/features"
	"github.com/pozitronik/dj-viz-go/internal/visual"
)

type recordingSurface struct {
	rects    int
	ellipses int
	lines    int
	texts    []string
}

func (r *recordingSurface) Rect(visual.Rect, [4]float32)    { r.rects++ }
func (r *recordingSurface) Ellipse(visual.Rect, [4]float32) { r.ellipses++ }
func (r *recordingSurface) Line(float32, float32, float32, float32, float32, [4]float32) {
	r.lines++
}
func (r *recordingSurface) Background([4]float32)                                     {}
func (r *recordingSurface) Tri(float32, float32, float32, float32, float32, float32, [4]float32) {
}
func (r *recordingSurface) Quad(float32, float32, float32, float32, float32, float32, float32, float32, [4]float32) {
}
func (r *recordingSurface) Polyline([]visual.Point, float32, [4]float32) {}
func (r *recordingSurface) Polygon([]visual.Point, [4]float32)           {}
func (r *recordingSurface) Text(_, _ float32, content string, _ int, _ [4]float32) {
	r.texts = append(r.texts, content)
}

func writeScript(t *testing.T, dir, name, source string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(source), 0o644); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return path
}

func TestEngineDrawsQueuedRectOnEnergy(t *testing.T) {
	dir := t.TempDir()
	path := writeScript(t, dir, "bars.lua", `
function update()
  rect(0, 0, bands[1] * 10, 10, 1, 1, 1, 1)
end
`)

	eng, err := NewEngine(path)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	defer eng.Close()

	a := &features.Analysis{}
	a.Bands[0] = 0.5
	eng.Update(a)

	surface := &recordingSurface{}
	eng.Draw(surface, visual.Rect{W: 100, H: 100})
	if surface.rects != 1 {
		t.Fatalf("rects drawn = %d, want 1", surface.rects)
	}
}

func TestEngineSurvivesRuntimeError(t *testing.T) {
	dir := t.TempDir()
	path := writeScript(t, dir, "broken.lua", `
function update()
  nonexistent_function_call()
end
`)

	eng, err := NewEngine(path)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	defer eng.Close()

	a := &features.Analysis{}
	eng.Update(a) // must not panic despite the runtime error
	eng.Update(a)
}

func TestLoaderScansAndInstallsScripts(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "a.lua", `function update() end`)
	writeScript(t, dir, "b.lua", `function update() end`)
	writeScript(t, dir, "ignored.txt", `not lua`)

	reg := visual.NewRegistry()
	loader := NewLoader(dir, reg)

	if loader.Count() != 2 {
		t.Fatalf("loaded script count = %d, want 2", loader.Count())
	}
	if _, ok := reg.Get("a"); !ok {
		t.Fatal("expected script \"a\" registered")
	}
	if _, ok := reg.Get("b"); !ok {
		t.Fatal("expected script \"b\" registered")
	}
}

func TestEngineReloadsOnlyAfterMtimeAdvance(t *testing.T) {
	dir := t.TempDir()
	path := writeScript(t, dir, "swap.lua", `function update() rect(0, 0, 1, 1, 1, 1, 1, 1) end`)

	eng, err := NewEngine(path)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	defer eng.Close()

	a := &features.Analysis{}
	drive := func(n int) {
		for i := 0; i < n; i++ {
			eng.Update(a)
		}
	}

	// Re-stat without changing mtime or bytes: no reload, same behavior.
	drive(ReloadCheckInterval)
	surface := &recordingSurface{}
	eng.Draw(surface, visual.Rect{W: 10, H: 10})
	if surface.rects != 1 || surface.ellipses != 0 {
		t.Fatalf("expected unchanged rect-drawing behavior before any edit, got rects=%d ellipses=%d", surface.rects, surface.ellipses)
	}

	// Overwrite with different source and push mtime forward; after
	// ReloadCheckInterval more Update calls the new source must be live.
	if err := os.WriteFile(path, []byte(`function update() ellipse(0, 0, 1, 1, 1, 1, 1, 1) end`), 0o644); err != nil {
		t.Fatalf("rewrite script: %v", err)
	}
	future := time.Now().Add(time.Hour)
	if err := os.Chtimes(path, future, future); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	drive(ReloadCheckInterval)
	surface2 := &recordingSurface{}
	eng.Draw(surface2, visual.Rect{W: 10, H: 10})
	if surface2.ellipses != 1 || surface2.rects != 0 {
		t.Fatalf("expected reloaded source to draw an ellipse instead, got rects=%d ellipses=%d", surface2.rects, surface2.ellipses)
	}
}

func TestHueToRGBCollapsesWhenPEqualsQ(t *testing.T) {
	r := hueToRGB(0.3, 0.3, 0.5)
	if r != 0.3 {
		t.Fatalf("hueToRGB(0.3, 0.3, 0.5) = %v, want 0.3", r)
	}
}
