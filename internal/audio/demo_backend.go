package audio

import (
	"math"
	"time"
)

// DemoBackend synthesizes a simple tone-plus-noise signal. It is the
// last-resort backend when no real capture device can be opened, so the
// rest of the pipeline (feature extraction, visualizers) always has
// something to run against instead of propagating a hard failure up to
// the caller.
type DemoBackend struct{}

func NewDemoBackend() *DemoBackend { return &DemoBackend{} }

func (b *DemoBackend) Name() string { return "demo" }

func (b *DemoBackend) ListDevices() ([]DeviceInfo, error) {
	return []DeviceInfo{{Index: 0, Name: "demo signal", IsInput: true, MaxChannels: 1, DefaultSampleRate: 44100}}, nil
}

func (b *DemoBackend) Open(device DeviceInfo, sampleRate float64) (Stream, error) {
	if sampleRate <= 0 {
		sampleRate = 44100
	}
	return &demoStream{sampleRate: sampleRate, start: time.Now()}, nil
}

type demoStream struct {
	sampleRate float64
	start      time.Time
	phase      float64
}

func (s *demoStream) Read() ([]float32, error) {
	const chunk = 512
	out := make([]float32, chunk)
	step := 2 * math.Pi * 110 / s.sampleRate
	elapsed := time.Since(s.start).Seconds()
	beat := 0.5 + 0.5*math.Sin(2*math.Pi*0.5*elapsed)
	for i := range out {
		s.phase += step
		out[i] = float32(beat * 0.4 * math.Sin(s.phase))
	}
	time.Sleep(time.Duration(float64(chunk) / s.sampleRate * float64(time.Second)))
	return out, nil
}

func (s *demoStream) SampleRate() float64 { return s.sampleRate }
func (s *demoStream) Close() error        { return nil }
