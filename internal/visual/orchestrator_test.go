package visual

import (
	"testing"

	"github.com/pozitronik/dj-viz-go/internal/features"
)

type fakeViz struct {
	panicOnUpdate bool
	updates       int
}

func (f *fakeViz) Update(a *features.Analysis) {
	f.updates++
	if f.panicOnUpdate {
		panic("boom")
	}
}

func (f *fakeViz) Draw(surface DrawSurface, area Rect) {}

func newTestRegistry(names ...string) *Registry {
	r := &Registry{
		instances: make(map[string]Visualizer),
		kinds:     make(map[string]Kind),
		broken:    make(map[string]bool),
	}
	for _, n := range names {
		r.Add(n, &fakeViz{}, KindNative)
	}
	return r
}

func TestOrchestratorContainsPanickingVisualizer(t *testing.T) {
	reg := newTestRegistry("a", "b")
	o := NewOrchestrator(reg)
	o.SetLocked(true)
	o.SetVisualization("a")

	v, _ := reg.Get("a")
	v.(*fakeViz).panicOnUpdate = true

	o.Update(&features.Analysis{})

	if _, ok := reg.Get("a"); ok {
		t.Fatal("expected panicking visualizer to be marked broken")
	}
	if o.Notification() == "" {
		t.Fatal("expected a notification after containment")
	}
}

func TestOrchestratorToggleOverlayBoundsAndIgnoresPrimary(t *testing.T) {
	reg := newTestRegistry("p", "o1", "o2", "o3", "o4")
	o := NewOrchestrator(reg)
	o.SetVisualization("p")

	o.ToggleOverlay("p") // ignored: is primary
	o.ToggleOverlay("o1")
	o.ToggleOverlay("o2")
	o.ToggleOverlay("o3")
	o.ToggleOverlay("o4") // should be dropped: bound is MaxOverlays=3

	o.mu.Lock()
	n := len(o.overlays)
	o.mu.Unlock()
	if n != MaxOverlays {
		t.Fatalf("overlay count = %d, want %d", n, MaxOverlays)
	}
}

func TestOrchestratorAutoCycleRespectsLock(t *testing.T) {
	reg := newTestRegistry("a", "b")
	o := NewOrchestrator(reg)
	o.SetVisualization("a")
	o.SetLocked(true)

	o.Update(&features.Analysis{VizChangeTriggered: true})

	o.mu.Lock()
	primary := o.primary
	o.mu.Unlock()
	if primary != "a" {
		t.Fatalf("expected locked orchestrator not to cycle, primary = %q", primary)
	}
}
