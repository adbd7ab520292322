package audio

import (
	"fmt"
	"log"
	"strings"
	"time"
)

// BufferSize is the length, in samples, of the PCM snapshot handed to
// the feature extractor each frame.
const BufferSize = 2048

// Capture owns device selection, the live stream, auto-gain, and the
// sliding PCM window the rest of the engine reads from.
type Capture struct {
	backends []Backend
	state    *State

	stream     Stream
	backend    Backend
	device     DeviceInfo
	gain       *AutoGain
	ring       *RingBuffer
	sampleRate float64
}

// NewCapture builds a Capture trying backends in the given priority
// order (first that opens a device wins), following the persisted
// device-selection priority: remembered device name, then the first
// backend's first input device, finally the demo backend.
func NewCapture(backends []Backend, state *State) *Capture {
	if len(backends) == 0 {
		backends = []Backend{NewDemoBackend()}
	}
	return &Capture{
		backends: backends,
		state:    state,
		gain:     NewAutoGain(),
		ring:     NewRingBuffer(BufferSize),
	}
}

// Start opens the first device it can, preferring the remembered device
// from persisted state, and begins the gain-and-buffer pump goroutine.
func (c *Capture) Start(sampleRate float64) error {
	timeout := time.Duration(c.state.TimeoutSeconds()) * time.Second

	var lastErr error
	for _, backend := range c.backends {
		devices, err := backend.ListDevices()
		if err != nil || len(devices) == 0 {
			lastErr = err
			continue
		}

		device := devices[0]
		if c.state.LastDevice != nil {
			for _, d := range devices {
				if d.Name == *c.state.LastDevice {
					device = d
					break
				}
			}
		}

		stream, err := OpenWithTimeout(backend, device, sampleRate, timeout)
		if err != nil {
			log.Printf("[AC] backend %q unavailable: %v", backend.Name(), err)
			lastErr = err
			continue
		}

		c.stream = stream
		c.backend = backend
		c.device = device
		c.sampleRate = stream.SampleRate()
		c.state.SetDevice(device.Name, device.IsInput)
		go c.pump()

		log.Printf("[AC] capturing from %q via %s backend", device.Name, backend.Name())
		return nil
	}

	return fmt.Errorf("no capture backend could open a device: %w", lastErr)
}

// SelectDeviceByName switches the active stream to the first device,
// trying backends in priority order, whose name contains name
// (case-insensitively), persisting the choice.
func (c *Capture) SelectDeviceByName(name string) error {
	timeout := time.Duration(c.state.TimeoutSeconds()) * time.Second
	needle := strings.ToLower(name)

	for _, backend := range c.backends {
		devices, err := backend.ListDevices()
		if err != nil {
			continue
		}
		for _, d := range devices {
			if !strings.Contains(strings.ToLower(d.Name), needle) {
				continue
			}
			stream, err := OpenWithTimeout(backend, d, c.sampleRate, timeout)
			if err != nil {
				return err
			}
			if c.stream != nil {
				c.stream.Close()
			}
			c.stream = stream
			c.backend = backend
			c.device = d
			c.ring.Clear()
			c.state.SetDevice(d.Name, d.IsInput)
			return nil
		}
	}
	return fmt.Errorf("device %q not found on any backend", name)
}

// pump continuously reads from the active stream, applies auto-gain,
// and feeds the sliding PCM window. It exits when Read returns an error
// (stream closed).
func (c *Capture) pump() {
	for {
		samples, err := c.stream.Read()
		if err != nil {
			log.Printf("[AC] stream read ended: %v", err)
			return
		}
		c.ring.PushAll(c.gain.Process(samples))
	}
}

// Snapshot returns a copy of the current PCM window. If fewer than
// BufferSize samples have been captured yet, the result is
// zero-padded at the front so callers always see a fixed-length window.
func (c *Capture) Snapshot() []float32 {
	samples := c.ring.Snapshot()
	if len(samples) == BufferSize {
		return samples
	}
	out := make([]float32, BufferSize)
	copy(out[BufferSize-len(samples):], samples)
	return out
}

// SampleRate returns the active stream's sample rate.
func (c *Capture) SampleRate() float64 { return c.sampleRate }

// Device returns the currently active device.
func (c *Capture) Device() DeviceInfo { return c.device }

// Close releases the active stream.
func (c *Capture) Close() error {
	if c.stream == nil {
		return nil
	}
	return c.stream.Close()
}
