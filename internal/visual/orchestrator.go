package visual

import (
	"fmt"
	"log"
	"math/rand"
	"sync"

	"github.com/pozitronik/dj-viz-go/internal/features"
)

const (
	// MaxOverlays is K from the orchestrator's overlay bound.
	MaxOverlays = 3
	// CooldownFrames is the refractory window after any primary switch.
	CooldownFrames = 120
	// NotificationFrames is how long a transient message stays on screen.
	NotificationFrames = 180
)

// Orchestrator owns the live registry, the current primary/overlay
// selection, and auto-cycle policy. Update must be called exactly once
// per frame, strictly after FX.Analyze for that frame and strictly
// before any Draw calls.
type Orchestrator struct {
	registry *Registry

	mu              sync.Mutex
	primary         string
	overlays        []string
	locked          bool
	cooldown        int
	notification    string
	notificationTTL int
}

// NewOrchestrator creates an Orchestrator over reg, selecting an
// arbitrary initial primary if any visualizer is registered.
func NewOrchestrator(reg *Registry) *Orchestrator {
	o := &Orchestrator{registry: reg}
	names := reg.Names()
	if len(names) > 0 {
		o.primary = names[0]
	}
	return o
}

// Update advances orchestrator state for one frame: decrement cooldown
// and notification timers, evaluate auto-cycle, then dispatch Update to
// the primary and every overlay with panic containment.
func (o *Orchestrator) Update(a *features.Analysis) {
	o.mu.Lock()
	if o.cooldown > 0 {
		o.cooldown--
	}
	if o.notificationTTL > 0 {
		o.notificationTTL--
	}

	if !o.locked && o.cooldown == 0 && a.VizChangeTriggered {
		o.cycleNextLocked()
	}

	primary := o.primary
	overlays := append([]string(nil), o.overlays...)
	o.mu.Unlock()

	o.dispatchUpdate(primary, a)
	for _, name := range overlays {
		o.dispatchUpdate(name, a)
	}
}

func (o *Orchestrator) dispatchUpdate(name string, a *features.Analysis) {
	if name == "" {
		return
	}
	v, ok := o.registry.Get(name)
	if !ok {
		return
	}
	defer o.containPanic(name)
	v.Update(a)
}

// containPanic quarantines a visualizer slot when its Update or Draw
// panics, so a single broken plugin or script never takes down the
// render loop.
func (o *Orchestrator) containPanic(name string) {
	if r := recover(); r != nil {
		log.Printf("[VO] visualizer %q panicked: %v", name, r)
		o.registry.MarkBroken(name)
		o.Notify(fmt.Sprintf("%s disabled after an error", name))
	}
}

// CycleNext manually advances the primary to a new uniformly-random
// choice from the registry (excluding the current primary), resetting
// cooldown. Used for both manual user cycling and viz_change_triggered
// auto-cycle.
func (o *Orchestrator) CycleNext() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.cycleNextLocked()
}

func (o *Orchestrator) cycleNextLocked() {
	names := o.registry.Names()
	var candidates []string
	for _, n := range names {
		if n != o.primary {
			candidates = append(candidates, n)
		}
	}
	if len(candidates) == 0 {
		return
	}
	o.primary = candidates[rand.Intn(len(candidates))]
	o.cooldown = CooldownFrames
}

// ToggleOverlay adds or removes name from the overlay set, enforcing the
// MaxOverlays bound and ignoring the request if name is the primary.
func (o *Orchestrator) ToggleOverlay(name string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if name == o.primary {
		return
	}
	for i, n := range o.overlays {
		if n == name {
			o.overlays = append(o.overlays[:i], o.overlays[i+1:]...)
			return
		}
	}
	if len(o.overlays) >= MaxOverlays {
		return
	}
	o.overlays = append(o.overlays, name)
}

// SetVisualization immediately changes the primary by name, with no
// cooldown, returning the name for UI feedback.
func (o *Orchestrator) SetVisualization(name string) (string, error) {
	if _, ok := o.registry.Get(name); !ok {
		return "", errNotFound(name)
	}
	o.mu.Lock()
	o.primary = name
	o.mu.Unlock()
	return name, nil
}

// SetLocked suppresses or re-enables auto-cycle.
func (o *Orchestrator) SetLocked(locked bool) {
	o.mu.Lock()
	o.locked = locked
	o.mu.Unlock()
}

// Notify sets a transient message retained for NotificationFrames and
// rendered directly to the output, bypassing the feedback buffer.
func (o *Orchestrator) Notify(message string) {
	o.mu.Lock()
	o.notification = message
	o.notificationTTL = NotificationFrames
	o.mu.Unlock()
}

// Notification returns the current notification text, or "" if none is
// active.
func (o *Orchestrator) Notification() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.notificationTTL <= 0 {
		return ""
	}
	return o.notification
}

// DrawPrimary dispatches Draw to the current primary, containing panics.
func (o *Orchestrator) DrawPrimary(surface DrawSurface, area Rect) {
	o.mu.Lock()
	primary := o.primary
	o.mu.Unlock()
	o.dispatchDraw(primary, surface, area)
}

// DrawOverlays dispatches Draw to every active overlay, containing
// panics independently so one broken overlay never skips the rest.
func (o *Orchestrator) DrawOverlays(surface DrawSurface, area Rect) {
	o.mu.Lock()
	overlays := append([]string(nil), o.overlays...)
	o.mu.Unlock()
	for _, name := range overlays {
		o.dispatchDraw(name, surface, area)
	}
}

// OverlayNames returns the active overlay names in composition order, a
// copy safe for the caller to range over without holding the lock —
// used by GC to burn-blend each overlay into its own scratch texture one
// at a time rather than all onto a single shared surface.
func (o *Orchestrator) OverlayNames() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.overlays...)
}

// DrawOverlayByName dispatches Draw to a single named overlay, with the
// same panic containment as DrawOverlays.
func (o *Orchestrator) DrawOverlayByName(name string, surface DrawSurface, area Rect) {
	o.dispatchDraw(name, surface, area)
}

func (o *Orchestrator) dispatchDraw(name string, surface DrawSurface, area Rect) {
	if name == "" {
		return
	}
	v, ok := o.registry.Get(name)
	if !ok {
		return
	}
	defer o.containPanic(name)
	v.Draw(surface, area)
}

// Registry exposes the underlying visualizer registry, e.g. for PL/SE
// to install discovered instances into.
func (o *Orchestrator) Registry() *Registry { return o.registry }

// PrimaryName returns the current primary visualizer's name.
func (o *Orchestrator) PrimaryName() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.primary
}
