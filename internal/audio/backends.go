package audio

// DefaultBackends returns the backend priority order Capture.Start
// tries: PortAudio first (cross-platform, covers the common case),
// then any OS-specific fallback, then the demo backend last so the
// rest of the engine always has a signal to run against instead of
// failing startup outright.
func DefaultBackends() []Backend {
	backends := []Backend{NewPortAudioBackend()}
	backends = append(backends, platformBackends()...)
	backends = append(backends, NewDemoBackend())
	return backends
}
