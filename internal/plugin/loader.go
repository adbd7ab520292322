package plugin

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/ebitengine/purego"

	"github.com/pozitronik/dj-viz-go/internal/visual"
)

// ReloadCheckInterval is how many frames elapse between plugin mtime
// checks (~0.5s at 60fps), matching the hot-reload contract's rate
// limit on filesystem stats.
const ReloadCheckInterval = 30

// settleDelay is the brief pause before reloading a plugin whose file
// was just modified, giving a still-in-progress write time to finish.
const settleDelay = 100 * time.Millisecond

// loadedPlugin is one open shared library plus its resolved symbols.
type loadedPlugin struct {
	handle       uintptr
	metadata     PluginMetadata
	path         string
	lastModified time.Time

	abiVersion        func() uint32
	pluginMetadata    func() PluginMetadata
	createVisualization func() uintptr // opaque instance pointer
	updateFn          func(instance uintptr, analysis *AudioAnalysisFFI)
	drawFn            func(instance uintptr, draw *DrawFFI, area RectFFI)
}

// Loader scans a directory for shared-library visualizers, verifies
// their ABI, and hot-reloads them when their file changes. Discovered
// visualizers are installed into a visual.Registry under the plugin's
// metadata name.
type Loader struct {
	dir      string
	registry *visual.Registry

	mu      sync.Mutex
	plugins map[string]*loadedPlugin
	counter int
}

// NewLoader scans dir immediately and installs every plugin that passes
// ABI verification into reg. A directory that doesn't exist yet is not
// an error — it simply yields zero plugins, matching the "plugins are
// optional" failure semantics used throughout this engine.
func NewLoader(dir string, reg *visual.Registry) *Loader {
	l := &Loader{dir: dir, registry: reg, plugins: make(map[string]*loadedPlugin)}
	l.scan()
	return l
}

func libExtension() string {
	switch runtime.GOOS {
	case "darwin":
		return ".dylib"
	case "windows":
		return ".dll"
	default:
		return ".so"
	}
}

func (l *Loader) scan() {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("[PL] cannot read plugins directory %q: %v", l.dir, err)
		}
		return
	}

	ext := libExtension()
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ext {
			continue
		}
		path := filepath.Join(l.dir, e.Name())
		if err := l.load(path); err != nil {
			log.Printf("[PL] failed to load plugin %q: %v", path, err)
		}
	}
}

// load opens path, verifies its ABI version, resolves symbols, and
// installs it into the registry under its metadata name.
func (l *Loader) load(path string) error {
	handle, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		return fmt.Errorf("dlopen: %w", err)
	}

	lp := &loadedPlugin{handle: handle, path: path}

	purego.RegisterLibFunc(&lp.abiVersion, handle, "abi_version")
	purego.RegisterLibFunc(&lp.pluginMetadata, handle, "plugin_metadata")
	purego.RegisterLibFunc(&lp.createVisualization, handle, "create_visualization")
	purego.RegisterLibFunc(&lp.updateFn, handle, "visualization_update")
	purego.RegisterLibFunc(&lp.drawFn, handle, "visualization_draw")

	if v := lp.abiVersion(); v != ABIVersion {
		return fmt.Errorf("incompatible ABI: found %d, expected %d", v, ABIVersion)
	}

	lp.metadata = lp.pluginMetadata()
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat: %w", err)
	}
	lp.lastModified = info.ModTime()

	name := lp.metadata.NameString()
	if name == "" {
		name = filepath.Base(path)
	}

	l.mu.Lock()
	l.plugins[name] = lp
	l.mu.Unlock()

	l.registry.Add(name, newPluginVisualizer(lp), visual.KindPlugin)
	log.Printf("[PL] loaded plugin %q v%s from %s", name, lp.metadata.VersionString(), path)
	return nil
}

// CheckReload rate-limits itself to once every ReloadCheckInterval
// calls (one call expected per frame) and reloads any plugin whose
// backing file's mtime has advanced since it was loaded.
func (l *Loader) CheckReload() {
	l.counter++
	if l.counter < ReloadCheckInterval {
		return
	}
	l.counter = 0

	l.mu.Lock()
	toReload := make([]string, 0)
	for name, lp := range l.plugins {
		info, err := os.Stat(lp.path)
		if err != nil {
			continue
		}
		if info.ModTime().After(lp.lastModified) {
			toReload = append(toReload, name)
		}
	}
	l.mu.Unlock()

	for _, name := range toReload {
		if err := l.reload(name); err != nil {
			log.Printf("[PL] reload failed for %q: %v", name, err)
		}
	}
}

func (l *Loader) reload(name string) error {
	l.mu.Lock()
	lp, ok := l.plugins[name]
	l.mu.Unlock()
	if !ok {
		return fmt.Errorf("plugin %q not loaded", name)
	}

	l.registry.Remove(name)
	l.mu.Lock()
	delete(l.plugins, name)
	l.mu.Unlock()

	if err := purego.Dlclose(lp.handle); err != nil {
		log.Printf("[PL] closing library for %q: %v", name, err)
	}

	time.Sleep(settleDelay)

	if err := l.load(lp.path); err != nil {
		return err
	}
	log.Printf("[PL] reloaded plugin %q", name)
	return nil
}

// Count returns the number of currently loaded plugins.
func (l *Loader) Count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.plugins)
}
