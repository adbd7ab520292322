// Package audio implements capture, auto-gain, and persisted device
// selection for the engine's input stage.
package audio

import "time"

// DeviceInfo describes an enumerable audio endpoint.
type DeviceInfo struct {
	Index             int
	Name              string
	IsInput           bool
	MaxChannels       int
	DefaultSampleRate float64
}

// Stream is an open audio capture stream. Read blocks until at least one
// sample period is available or the stream is closed.
type Stream interface {
	Read() ([]float32, error)
	SampleRate() float64
	Close() error
}

// Backend discovers and opens audio devices. Implementations must never
// panic; a backend that cannot find a usable device returns an error so
// the caller can fall back to another backend or to demo mode.
type Backend interface {
	Name() string
	ListDevices() ([]DeviceInfo, error)
	Open(device DeviceInfo, sampleRate float64) (Stream, error)
}

// DefaultDeviceTimeout is the open timeout OpenWithTimeout falls back to
// when it is given a non-positive timeout, matching the 3s default the
// persisted-state config template documents.
const DefaultDeviceTimeout = 3 * time.Second
