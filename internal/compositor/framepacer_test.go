package compositor

import "testing"

func TestFramePacerRejectsReentrantAcquire(t *testing.T) {
	p := NewFramePacer()
	if !p.TryAcquire() {
		t.Fatal("first TryAcquire should succeed")
	}
	if p.TryAcquire() {
		t.Fatal("second TryAcquire should be rejected while busy")
	}
	if p.Skipped() != 1 {
		t.Fatalf("Skipped() = %d, want 1", p.Skipped())
	}

	p.Release()
	if !p.TryAcquire() {
		t.Fatal("TryAcquire should succeed again after Release")
	}
}

func TestFramePacerShouldCompositeRequiresContent(t *testing.T) {
	p := NewFramePacer()
	if p.ShouldComposite(false, 0) {
		t.Fatal("expected no composite when there is no primary and no overlays")
	}
	if !p.ShouldComposite(true, 0) {
		t.Fatal("expected composite when a primary is set")
	}
	if !p.ShouldComposite(false, 2) {
		t.Fatal("expected composite when overlays are present")
	}
}

func TestFadeAndScaleRespondToBass(t *testing.T) {
	quiet := fadeFromBass(0)
	loud := fadeFromBass(1)
	if loud >= quiet {
		t.Fatalf("fadeFromBass(1) = %v should be less than fadeFromBass(0) = %v", loud, quiet)
	}

	if scaleFromBass(1) <= scaleFromBass(0) {
		t.Fatal("scaleFromBass should increase with bass energy")
	}
}
