//go:build !linux

package audio

// platformBackends returns OS-specific fallback backends tried after
// PortAudio. PortAudio's own host APIs (WASAPI, CoreAudio) cover device
// capture on these platforms, so there is no subprocess shim to add.
func platformBackends() []Backend {
	return nil
}
