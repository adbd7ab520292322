package audio

import (
	"fmt"
	"log"
	"sync"

	"github.com/gordonklaus/portaudio"
)

// PortAudioBackend captures audio via PortAudio. It is the primary
// cross-platform Backend; callers fall back to a subprocess-based
// backend only when no usable PortAudio host API is present.
type PortAudioBackend struct {
	initOnce sync.Once
	initErr  error
}

// NewPortAudioBackend returns a backend that lazily initializes the
// PortAudio runtime on first use.
func NewPortAudioBackend() *PortAudioBackend {
	return &PortAudioBackend{}
}

func (b *PortAudioBackend) init() error {
	b.initOnce.Do(func() {
		b.initErr = portaudio.Initialize()
	})
	return b.initErr
}

// Name identifies this backend for logging and persisted-state lookups.
func (b *PortAudioBackend) Name() string { return "portaudio" }

// ListDevices enumerates all PortAudio-visible input-capable devices.
func (b *PortAudioBackend) ListDevices() ([]DeviceInfo, error) {
	if err := b.init(); err != nil {
		return nil, fmt.Errorf("portaudio init: %w", err)
	}

	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("portaudio enumerate devices: %w", err)
	}

	out := make([]DeviceInfo, 0, len(devices))
	for i, d := range devices {
		if d.MaxInputChannels <= 0 {
			continue
		}
		out = append(out, DeviceInfo{
			Index:             i,
			Name:              d.Name,
			IsInput:           true,
			MaxChannels:       d.MaxInputChannels,
			DefaultSampleRate: d.DefaultSampleRate,
		})
	}
	return out, nil
}

// portaudioStream adapts a portaudio.Stream with a callback-filled ring
// buffer into the Stream interface's blocking Read.
type portaudioStream struct {
	stream     *portaudio.Stream
	sampleRate float64

	mu  sync.Mutex
	buf []float32
	cv  chan struct{}

	done      chan struct{}
	closeOnce sync.Once
}

// Open starts an input stream on device, mixing multi-channel input down
// to mono in the audio callback. The callback never blocks on the mutex
// for more than a buffer copy, keeping the PortAudio real-time thread
// free of anything that could underrun it.
func (b *PortAudioBackend) Open(device DeviceInfo, sampleRate float64) (Stream, error) {
	if err := b.init(); err != nil {
		return nil, fmt.Errorf("portaudio init: %w", err)
	}

	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("portaudio enumerate devices: %w", err)
	}
	if device.Index < 0 || device.Index >= len(devices) {
		return nil, fmt.Errorf("device index %d out of range", device.Index)
	}
	dev := devices[device.Index]

	channels := dev.MaxInputChannels
	if channels > 2 {
		channels = 2
	}
	if channels < 1 {
		channels = 1
	}

	const framesPerBuffer = 1024
	ps := &portaudioStream{sampleRate: sampleRate, cv: make(chan struct{}, 1), done: make(chan struct{})}

	params := portaudio.LowLatencyParameters(dev, nil)
	params.Input.Channels = channels
	params.SampleRate = sampleRate
	params.FramesPerBuffer = framesPerBuffer

	callback := func(in []float32) {
		mono := make([]float32, len(in)/channels)
		for i := range mono {
			var sum float32
			for c := 0; c < channels; c++ {
				sum += in[i*channels+c]
			}
			mono[i] = sum / float32(channels)
		}

		ps.mu.Lock()
		ps.buf = append(ps.buf, mono...)
		ps.mu.Unlock()

		select {
		case ps.cv <- struct{}{}:
		default:
		}
	}

	stream, err := portaudio.OpenStream(params, callback)
	if err != nil {
		return nil, fmt.Errorf("portaudio open stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		return nil, fmt.Errorf("portaudio start stream: %w", err)
	}

	ps.stream = stream
	log.Printf("[AC] portaudio stream opened on %q (%d ch -> mono, %.0f Hz)", dev.Name, channels, sampleRate)
	return ps, nil
}

func (s *portaudioStream) Read() ([]float32, error) {
	select {
	case <-s.cv:
	case <-s.done:
		return nil, fmt.Errorf("portaudio stream closed")
	}
	s.mu.Lock()
	out := s.buf
	s.buf = nil
	s.mu.Unlock()
	return out, nil
}

func (s *portaudioStream) SampleRate() float64 { return s.sampleRate }

func (s *portaudioStream) Close() error {
	s.closeOnce.Do(func() { close(s.done) })
	return s.stream.Close()
}
