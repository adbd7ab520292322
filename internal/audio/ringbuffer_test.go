package audio

import "testing"

func TestRingBufferOverwritesOldest(t *testing.T) {
	rb := NewRingBuffer(4)
	rb.PushAll([]float32{1, 2, 3, 4, 5})

	if !rb.IsFull() {
		t.Fatal("expected buffer to be full")
	}
	got := rb.Snapshot()
	want := []float32{2, 3, 4, 5}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Snapshot()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestRingBufferClear(t *testing.T) {
	rb := NewRingBuffer(4)
	rb.PushAll([]float32{1, 2, 3})
	rb.Clear()

	if rb.Len() != 0 {
		t.Fatalf("Len() = %d after Clear, want 0", rb.Len())
	}
	if rb.Snapshot() != nil {
		t.Fatal("expected nil snapshot after Clear")
	}
}

func TestCaptureSnapshotZeroPadsUntilFull(t *testing.T) {
	c := NewCapture([]Backend{NewDemoBackend()}, &State{})
	c.ring.PushAll([]float32{1, 2, 3})

	snap := c.Snapshot()
	if len(snap) != BufferSize {
		t.Fatalf("len(snap) = %d, want %d", len(snap), BufferSize)
	}
	if snap[BufferSize-1] != 3 {
		t.Fatalf("last sample = %v, want 3", snap[BufferSize-1])
	}
	for i := 0; i < BufferSize-3; i++ {
		if snap[i] != 0 {
			t.Fatalf("expected zero padding at index %d, got %v", i, snap[i])
		}
	}
}
