//go:build linux

package audio

// platformBackends returns OS-specific fallback backends tried after
// PortAudio. On Linux this is the pw-record/parec subprocess shim,
// useful in containers and minimal installs where no PortAudio host API
// plugin is present.
func platformBackends() []Backend {
	return []Backend{NewSubprocessBackend()}
}
