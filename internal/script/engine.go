// Package script runs Lua-authored visualizers: each .lua file under a
// scripts directory is compiled once and re-run every frame against a
// fresh snapshot of the current feature analysis, its queued drawing
// calls replayed onto the real surface afterward.
package script

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/pozitronik/dj-viz-go/internal/features"
	"github.com/pozitronik/dj-viz-go/internal/visual"
)

// ReloadCheckInterval mirrors the plugin loader's frame-counted mtime
// check: once every 30 Update calls (~0.5s at 60fps).
const ReloadCheckInterval = 30

// errorLogThrottle suppresses repeated script-error log lines to once
// per 60 frames, matching the original's last_error_frame bookkeeping.
const errorLogThrottle = 60

// perFrameBudget bounds how long a single script run may take. gopher-lua
// has no native operation counter (unlike Rhai's set_max_operations), so
// a context deadline checked via L.SetContext is the idiomatic Go
// substitute for the same "don't let one bad script hang the frame"
// guarantee.
const perFrameBudget = 20 * time.Millisecond

// Engine runs one compiled Lua script as a visual.Visualizer.
type Engine struct {
	path         string
	name         string
	state        *lua.LState
	queue        []DrawCommand
	lastModified time.Time
	frame        uint64
	checkCounter int
	lastErrFrame uint64
	bounds       visual.Rect
}

// NewEngine compiles path and returns a ready-to-run Engine.
func NewEngine(path string) (*Engine, error) {
	e := &Engine{
		path: path,
		name: scriptName(path),
	}
	if err := e.reload(); err != nil {
		return nil, err
	}
	return e, nil
}

func scriptName(path string) string {
	base := filepath.Base(path)
	return base[:len(base)-len(filepath.Ext(base))]
}

func (e *Engine) reload() error {
	source, err := os.ReadFile(e.path)
	if err != nil {
		return fmt.Errorf("read script: %w", err)
	}

	if e.state != nil {
		e.state.Close()
	}
	L := lua.NewState(lua.Options{SkipOpenLibs: false})
	registerDrawAPI(L, &e.queue)
	registerMathAPI(L)

	if err := L.DoString(string(source)); err != nil {
		L.Close()
		return fmt.Errorf("compile/run script: %w", err)
	}
	e.state = L

	if info, statErr := os.Stat(e.path); statErr == nil {
		e.lastModified = info.ModTime()
	}
	return nil
}

// checkReload rate-limits its own mtime stat to once every
// ReloadCheckInterval calls.
func (e *Engine) checkReload() {
	e.checkCounter++
	if e.checkCounter < ReloadCheckInterval {
		return
	}
	e.checkCounter = 0

	info, err := os.Stat(e.path)
	if err != nil {
		return
	}
	if info.ModTime().After(e.lastModified) {
		if err := e.reload(); err != nil {
			log.Printf("[SE] reload failed for %q: %v", e.name, err)
		} else {
			log.Printf("[SE] reloaded script %q", e.name)
		}
	}
}

// pushAnalysis sets (not pushes-and-leaks) one global per analysis field,
// overwriting the previous frame's value. Lua globals persist across
// calls the same way Rhai's scope does, so user-declared globals survive
// between frames without any scope-rewind trick.
func (e *Engine) pushAnalysis(a *features.Analysis, bounds visual.Rect) {
	L := e.state
	L.SetGlobal("energy", lua.LNumber(a.Energy))
	L.SetGlobal("bass", lua.LNumber(a.Bass))
	L.SetGlobal("mids", lua.LNumber(a.Mids))
	L.SetGlobal("treble", lua.LNumber(a.Treble))

	bands := L.NewTable()
	bandsNorm := L.NewTable()
	for i := 0; i < features.NumBands; i++ {
		bands.Append(lua.LNumber(a.Bands[i]))
		bandsNorm.Append(lua.LNumber(a.BandsNormalized[i]))
	}
	L.SetGlobal("bands", bands)
	L.SetGlobal("bands_normalized", bandsNorm)

	L.SetGlobal("bpm", lua.LNumber(a.BPM))
	L.SetGlobal("dominant_band", lua.LNumber(a.DominantBand))
	L.SetGlobal("energy_diff", lua.LNumber(a.EnergyDiff))
	L.SetGlobal("rise_rate", lua.LNumber(a.RiseRate))
	L.SetGlobal("spectral_centroid", lua.LNumber(a.SpectralCentroid))

	L.SetGlobal("transition_detected", lua.LBool(a.TransitionDetected))
	L.SetGlobal("punch_detected", lua.LBool(a.PunchDetected))
	L.SetGlobal("break_detected", lua.LBool(a.BreakDetected))
	L.SetGlobal("instrument_added", lua.LBool(a.InstrumentAdded))
	L.SetGlobal("instrument_removed", lua.LBool(a.InstrumentRemoved))
	L.SetGlobal("viz_change_triggered", lua.LBool(a.VizChangeTriggered))

	L.SetGlobal("bounds_w", lua.LNumber(bounds.W))
	L.SetGlobal("bounds_h", lua.LNumber(bounds.H))
	L.SetGlobal("bounds_left", lua.LNumber(bounds.X))
	L.SetGlobal("bounds_top", lua.LNumber(bounds.Y))
	L.SetGlobal("bounds_right", lua.LNumber(bounds.X+bounds.W))
	L.SetGlobal("bounds_bottom", lua.LNumber(bounds.Y+bounds.H))

	L.SetGlobal("frame", lua.LNumber(e.frame))
}

// Update calls the script's global update() function once (the script
// body itself runs only at load), with a bounded-runtime context
// guarding against an accidental infinite loop in the script.
func (e *Engine) Update(a *features.Analysis) {
	e.frame++
	e.checkReload()
	e.queue = e.queue[:0]

	e.pushAnalysis(a, e.bounds)

	ctx, cancel := context.WithTimeout(context.Background(), perFrameBudget)
	defer cancel()
	e.state.SetContext(ctx)

	fn := e.state.GetGlobal("update")
	if fn.Type() != lua.LTFunction {
		return
	}
	if err := e.state.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true}); err != nil {
		if e.frame-e.lastErrFrame > errorLogThrottle {
			log.Printf("[SE] script %q error: %v", e.name, err)
			e.lastErrFrame = e.frame
		}
	}
}

// Draw replays the command queue the last Update call accumulated.
func (e *Engine) Draw(surface visual.DrawSurface, area visual.Rect) {
	e.bounds = area
	for _, cmd := range e.queue {
		cmd.execute(surface)
	}
}

// Close releases the underlying Lua state.
func (e *Engine) Close() {
	if e.state != nil {
		e.state.Close()
	}
}

// Loader scans a directory for .lua visualizers and installs each into
// a visual.Registry under its file-stem name, mirroring the plugin
// loader's scan/install/hot-reload shape for a scripting backend instead
// of a compiled shared library.
type Loader struct {
	dir      string
	registry *visual.Registry

	mu      sync.Mutex
	engines map[string]*Engine
}

// NewLoader scans dir immediately; a missing directory yields zero
// scripts rather than an error, matching the plugin loader's "optional
// extension point" semantics.
func NewLoader(dir string, reg *visual.Registry) *Loader {
	l := &Loader{dir: dir, registry: reg, engines: make(map[string]*Engine)}
	l.scan()
	return l
}

func (l *Loader) scan() {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("[SE] cannot read scripts directory %q: %v", l.dir, err)
		}
		return
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".lua" {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		path := filepath.Join(l.dir, name)
		if err := l.load(path); err != nil {
			log.Printf("[SE] failed to load script %q: %v", path, err)
		}
	}
}

func (l *Loader) load(path string) error {
	eng, err := NewEngine(path)
	if err != nil {
		return err
	}

	l.mu.Lock()
	l.engines[eng.name] = eng
	l.mu.Unlock()

	l.registry.Add(eng.name, eng, visual.KindScript)
	log.Printf("[SE] loaded script %q from %s", eng.name, path)
	return nil
}

// Count returns the number of currently loaded scripts.
func (l *Loader) Count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.engines)
}
