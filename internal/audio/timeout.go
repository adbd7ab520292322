package audio

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/shirou/gopsutil/v4/process"
)

// openResult carries the outcome of an Open call across goroutines.
type openResult struct {
	stream Stream
	err    error
}

// OpenWithTimeout opens a device on a backend, bounding the wait to
// timeout. Some backends (notably the subprocess-based Linux fallback)
// can hang indefinitely probing PipeWire/PulseAudio, so the open always
// runs in its own goroutine and the caller gives up after timeout even
// if that goroutine never returns — matching the original capture path's
// bounded device-open wait.
func OpenWithTimeout(backend Backend, device DeviceInfo, sampleRate float64, timeout time.Duration) (Stream, error) {
	if timeout <= 0 {
		timeout = DefaultDeviceTimeout
	}

	resultCh := make(chan openResult, 1)
	go func() {
		stream, err := backend.Open(device, sampleRate)
		resultCh <- openResult{stream: stream, err: err}
	}()

	select {
	case res := <-resultCh:
		if res.err != nil {
			return nil, fmt.Errorf("open device %q on backend %q: %w", device.Name, backend.Name(), res.err)
		}
		return res.stream, nil
	case <-time.After(timeout):
		logProcessDiagnostics(device.Name, backend.Name())
		return nil, fmt.Errorf("open device %q on backend %q: timed out after %s", device.Name, backend.Name(), timeout)
	}
}

// logProcessDiagnostics logs this process's own memory footprint when a
// device open hangs, the same diagnostic gopsutil gave the teacher's
// widget metrics path — useful for telling "the backend is wedged" apart
// from "this process itself is thrashing" when triaging a hung capture.
func logProcessDiagnostics(deviceName, backendName string) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		log.Printf("[AC] open timeout on %q/%q: process lookup failed: %v", deviceName, backendName, err)
		return
	}
	mem, err := proc.MemoryInfo()
	if err != nil {
		log.Printf("[AC] open timeout on %q/%q: memory lookup failed: %v", deviceName, backendName, err)
		return
	}
	log.Printf("[AC] open timeout on %q/%q: process RSS=%d bytes (ruling out self-thrash before blaming the backend)", deviceName, backendName, mem.RSS)
}
