package audio

import (
	"errors"
	"testing"
	"time"
)

type slowBackend struct {
	delay   time.Duration
	succeed bool
}

func (b *slowBackend) Name() string { return "slow" }
func (b *slowBackend) ListDevices() ([]DeviceInfo, error) {
	return []DeviceInfo{{Name: "slow-device", IsInput: true}}, nil
}
func (b *slowBackend) Open(device DeviceInfo, sampleRate float64) (Stream, error) {
	time.Sleep(b.delay)
	if b.succeed {
		return &fakeStream{sampleRate: sampleRate}, nil
	}
	return nil, errors.New("should never be reached before the caller gives up")
}

type fakeStream struct{ sampleRate float64 }

func (f *fakeStream) Read() ([]float32, error) { return nil, nil }
func (f *fakeStream) SampleRate() float64       { return f.sampleRate }
func (f *fakeStream) Close() error              { return nil }

func TestOpenWithTimeoutGivesUpBeforeSlowBackendReturns(t *testing.T) {
	backend := &slowBackend{delay: 200 * time.Millisecond}
	device := DeviceInfo{Name: "slow-device", IsInput: true}

	start := time.Now()
	_, err := OpenWithTimeout(backend, device, 44100, 20*time.Millisecond)
	elapsed := time.Since(start)

	if err == nil {
		t.Fatal("expected timeout error, got nil")
	}
	if elapsed >= backend.delay {
		t.Fatalf("OpenWithTimeout waited %s, expected to give up well before the backend's %s delay", elapsed, backend.delay)
	}
}

func TestOpenWithTimeoutUsesDefaultWhenNonPositive(t *testing.T) {
	backend := &slowBackend{delay: 10 * time.Millisecond, succeed: true}
	device := DeviceInfo{Name: "slow-device", IsInput: true}

	start := time.Now()
	_, err := OpenWithTimeout(backend, device, 44100, 0)
	elapsed := time.Since(start)

	if err != nil {
		t.Fatalf("expected backend to return before the default timeout elapses, got error: %v", err)
	}
	if elapsed >= DefaultDeviceTimeout {
		t.Fatalf("expected a quick backend to return well under the default timeout, took %s", elapsed)
	}
}
