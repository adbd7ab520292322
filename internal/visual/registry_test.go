package visual

import (
	"fmt"
	"testing"

	"github.com/pozitronik/dj-viz-go/internal/features"
)

type stubVisualizer struct{ updates int }

func (s *stubVisualizer) Update(a *features.Analysis) { s.updates++ }
func (s *stubVisualizer) Draw(surface DrawSurface, area Rect) {}

func TestRegistryAddGetRemove(t *testing.T) {
	r := NewRegistry()
	v := &stubVisualizer{}
	r.Add("stub", v, KindPlugin)

	got, ok := r.Get("stub")
	if !ok || got != v {
		t.Fatal("expected Get to return the added visualizer")
	}
	if kind, ok := r.Kind("stub"); !ok || kind != KindPlugin {
		t.Fatalf("Kind() = %v, %v, want KindPlugin, true", kind, ok)
	}

	r.Remove("stub")
	if _, ok := r.Get("stub"); ok {
		t.Fatal("expected Get to fail after Remove")
	}
}

func TestRegistryMarkBrokenHidesFromNamesAndGet(t *testing.T) {
	r := NewRegistry()
	r.Add("flaky", &stubVisualizer{}, KindScript)
	r.MarkBroken("flaky")

	if _, ok := r.Get("flaky"); ok {
		t.Fatal("expected broken visualizer to be hidden from Get")
	}
	for _, n := range r.Names() {
		if n == "flaky" {
			t.Fatal("expected broken visualizer to be excluded from Names")
		}
	}

	r.Add("flaky", &stubVisualizer{}, KindScript)
	if _, ok := r.Get("flaky"); !ok {
		t.Fatal("expected Add to reinstate a previously broken slot")
	}
}

func TestRegisterDuplicateNameLogsWarningButKeepsLatest(t *testing.T) {
	name := fmt.Sprintf("dup-%p", t)
	Register(name, func() (Visualizer, error) { return &stubVisualizer{}, nil })
	Register(name, func() (Visualizer, error) { return &stubVisualizer{updates: 7}, nil })

	r := NewRegistry()
	v, ok := r.Get(name)
	if !ok {
		t.Fatal("expected the re-registered factory to be present")
	}
	if v.(*stubVisualizer).updates != 7 {
		t.Fatal("expected the second Register call to win")
	}
}
