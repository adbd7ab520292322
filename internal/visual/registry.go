package visual

import (
	"fmt"
	"log"
	"sort"
	"sync"
)

// Factory constructs a native visualizer instance. Native visualizers
// self-register via init() the same way the engine's other extension
// points do.
type Factory func() (Visualizer, error)

type entry struct {
	factory Factory
	kind    Kind
}

var (
	registry   = make(map[string]entry)
	registryMu sync.RWMutex
)

// Register adds a native visualizer factory under name. Call from an
// init() function in the visualizer's package.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, exists := registry[name]; exists {
		log.Printf("WARNING: visualizer %q is being re-registered", name)
	}
	registry[name] = entry{factory: factory, kind: KindNative}
}

// RegisteredNames returns all statically-registered native visualizer
// names, sorted.
func RegisteredNames() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Registry is the live set of instantiated visualizers (native plus any
// discovered via plugin/script), keyed by name. It is the source VO's
// Orchestrator selects primary/overlays from.
type Registry struct {
	mu        sync.RWMutex
	instances map[string]Visualizer
	kinds     map[string]Kind
	broken    map[string]bool
}

// NewRegistry creates every statically-registered native visualizer.
// A native visualizer that fails to construct is logged and skipped —
// one failure never prevents the rest from becoming available,
// following the "continue past a single failure" rule used elsewhere
// in this engine's factory code.
func NewRegistry() *Registry {
	r := &Registry{
		instances: make(map[string]Visualizer),
		kinds:     make(map[string]Kind),
		broken:    make(map[string]bool),
	}

	registryMu.RLock()
	defer registryMu.RUnlock()
	for name, e := range registry {
		v, err := e.factory()
		if err != nil {
			log.Printf("visualizer %q failed to construct: %v", name, err)
			continue
		}
		r.instances[name] = v
		r.kinds[name] = e.kind
	}
	return r
}

// Add installs a dynamically discovered (plugin or script) visualizer.
func (r *Registry) Add(name string, v Visualizer, kind Kind) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.instances[name] = v
	r.kinds[name] = kind
	delete(r.broken, name)
}

// Remove uninstalls a visualizer, e.g. before a plugin is reloaded.
func (r *Registry) Remove(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.instances, name)
	delete(r.kinds, name)
	delete(r.broken, name)
}

// Get returns the visualizer by name and whether it exists and is not
// quarantined as broken.
func (r *Registry) Get(name string) (Visualizer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.broken[name] {
		return nil, false
	}
	v, ok := r.instances[name]
	return v, ok
}

// Kind returns the Kind a registered visualizer was installed under.
func (r *Registry) Kind(name string) (Kind, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	k, ok := r.kinds[name]
	return k, ok
}

// MarkBroken quarantines a visualizer slot after a contained panic so it
// is skipped by future selection until Add reinstates it (e.g. on
// successful plugin reload; a script reload happens inside its Engine
// and does not call Add).
func (r *Registry) MarkBroken(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.broken[name] = true
}

// Names returns all usable (non-broken) visualizer names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.instances))
	for n := range r.instances {
		if !r.broken[n] {
			names = append(names, n)
		}
	}
	sort.Strings(names)
	return names
}

// Describe returns a Descriptor per registered visualizer, including
// broken ones, for a picker UI.
func (r *Registry) Describe() []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Descriptor, 0, len(r.instances))
	for n, v := range r.instances {
		_ = v
		out = append(out, Descriptor{Name: n, Kind: r.kinds[n], Broken: r.broken[n]})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// errNotFound is returned by operations that need a named, usable
// visualizer that isn't present.
func errNotFound(name string) error {
	return fmt.Errorf("visualizer %q not found or broken", name)
}
