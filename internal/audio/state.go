package audio

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

const defaultDeviceTimeoutSecs = 3

const stateTemplate = `# dj-viz-go configuration file

# Timeout in seconds when switching audio devices (default: 3)
# device_timeout_secs = 3

# Last selected audio device (auto-saved)
# last_device = "Device Name"
# last_device_is_input = false

# Last selected PipeWire stream target (auto-saved)
# pw_link_target = "Spotify:output_FL"
`

// State is the small set of user preferences persisted across runs:
// which device to reopen automatically, how long to wait for it, and
// (on Linux/PipeWire) which stream to route into the capture sink.
// Field names match the .toml keys directly, following the original
// config file this one replaces.
type State struct {
	LastDevice        *string `toml:"last_device"`
	LastDeviceIsInput *bool   `toml:"last_device_is_input"`
	DeviceTimeoutSecs *int    `toml:"device_timeout_secs"`
	PwLinkTarget      *string `toml:"pw_link_target"`

	path string
}

// statePath returns $HOME/.dj-viz.toml.
func statePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".dj-viz.toml"), nil
}

// LoadState reads the persisted state, writing a commented template on
// first run. Any read or parse failure falls back to an empty State
// rather than propagating an error — a corrupt preferences file should
// never block startup.
func LoadState() *State {
	path, err := statePath()
	if err != nil {
		return &State{}
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if writeErr := os.WriteFile(path, []byte(stateTemplate), 0644); writeErr == nil {
			fmt.Printf("Created config template at %s\n", path)
		}
	}

	var s State
	if _, err := toml.DecodeFile(path, &s); err != nil {
		s = State{}
	}
	s.path = path
	return &s
}

// TimeoutSeconds returns the configured device-open timeout, or the
// default if unset.
func (s *State) TimeoutSeconds() int {
	if s.DeviceTimeoutSecs != nil {
		return *s.DeviceTimeoutSecs
	}
	return defaultDeviceTimeoutSecs
}

// Save writes the current state back to disk. Failures are swallowed
// (preferences are a convenience, not a correctness requirement) but
// logged by the caller if desired via the returned error.
func (s *State) Save() error {
	path := s.path
	if path == "" {
		p, err := statePath()
		if err != nil {
			return err
		}
		path = p
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create state file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(s); err != nil {
		return fmt.Errorf("encode state file: %w", err)
	}
	return nil
}

// SetDevice records the given device as the last-selected one and
// persists it immediately.
func (s *State) SetDevice(name string, isInput bool) {
	s.LastDevice = &name
	s.LastDeviceIsInput = &isInput
	_ = s.Save()
}
