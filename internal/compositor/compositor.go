package compositor

import (
	"fmt"
	"log"
	"os"
	"runtime/debug"
	"time"

	"github.com/pozitronik/dj-viz-go/internal/features"
	"github.com/pozitronik/dj-viz-go/internal/visual"
)

// Compositor drives the render thread's last stage: it owns the window,
// the feedback pipeline, and the frame pacer, and is invoked once per
// frame strictly after VO.Update for that frame, per spec.md §5's
// ordering guarantee.
type Compositor struct {
	window   *Window
	feedback *Feedback
	pacer    *FramePacer
}

// New opens a window sized width x height and allocates every GPU
// resource the feedback pipeline needs.
func New(title string, width, height int) (*Compositor, error) {
	win, err := OpenWindow(title, width, height)
	if err != nil {
		return nil, fmt.Errorf("open window: %w", err)
	}

	fb, err := NewFeedback(width, height)
	if err != nil {
		win.Close()
		return nil, fmt.Errorf("feedback pipeline: %w", err)
	}

	return &Compositor{window: win, feedback: fb, pacer: NewFramePacer()}, nil
}

// logPanic writes panic information to panic.log, same diagnostic shape
// the teacher uses for its own ticker-driven goroutines.
func logPanic(context string) {
	if r := recover(); r != nil {
		logFile, err := os.OpenFile("panic.log", os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			log.Printf("Failed to open panic.log: %v", err)
			return
		}
		defer func() {
			if closeErr := logFile.Close(); closeErr != nil {
				log.Printf("Failed to close panic.log: %v", closeErr)
			}
		}()

		panicMsg := fmt.Sprintf("\n=== PANIC at %s ===\nContext: %s\nError: %v\n\nStack trace:\n%s\n",
			time.Now().Format("2006-01-02 15:04:05"), context, r, debug.Stack())

		if _, err := logFile.WriteString(panicMsg); err != nil {
			log.Printf("Failed to write to panic.log: %v", err)
		}
		log.Print(panicMsg)
	}
}

// RenderFrame composites one frame and presents it. a.Bass drives the
// feedback pipeline's zoom per spec.md §4.6's "Dynamic scale" note.
// The caller (the main loop) has already run the Orchestrator's Update
// for this frame; RenderFrame only issues Draw calls. An active
// notification is drawn last, straight onto the output.
//
// Bypass path: when the primary visualizer is script-backed, GC is
// skipped entirely and the primary draws straight into the default
// framebuffer, per spec.md §4.6's bypass note — a scripted visualizer
// owns its whole frame, which a fade/scale trail would otherwise muddy.
// No clear is issued on this path.
func (c *Compositor) RenderFrame(orch *visual.Orchestrator, a *features.Analysis) {
	defer logPanic("compositor.RenderFrame")

	if !c.pacer.TryAcquire() {
		return
	}
	defer c.pacer.Release()

	width, height := c.window.Size()
	if width != c.feedback.width || height != c.feedback.height {
		if err := c.feedback.Resize(width, height); err != nil {
			log.Printf("[GC] resize failed: %v", err)
			return
		}
	}

	c.feedback.SetDynamics(fadeFromBass(a.Bass), scaleFromBass(a.Bass))

	if c.bypassed(orch) {
		area := visual.Rect{X: 0, Y: 0, W: float32(width), H: float32(height)}
		orch.DrawPrimary(c.feedback.surface, area)
		orch.DrawOverlays(c.feedback.surface, area)
	} else if c.pacer.ShouldComposite(orch.PrimaryName() != "", len(orch.OverlayNames())) {
		area := visual.Rect{X: 0, Y: 0, W: float32(width), H: float32(height)}
		c.feedback.Render(orch, area)
		c.feedback.Present(width, height)
	}

	if msg := orch.Notification(); msg != "" {
		c.feedback.surface.setViewport(width, height)
		c.feedback.surface.Text(8, 8, msg, 16, [4]float32{1, 1, 1, 1})
	}

	c.window.SwapBuffers()
}

// ShouldClose reports whether the user requested the window be closed.
func (c *Compositor) ShouldClose() bool { return c.window.ShouldClose() }

// RequestClose marks the window for closing on the next frame, e.g.
// from a signal handler.
func (c *Compositor) RequestClose() { c.window.RequestClose() }

func (c *Compositor) bypassed(orch *visual.Orchestrator) bool {
	kind, ok := orch.Registry().Kind(orch.PrimaryName())
	return ok && kind == visual.KindScript
}

// fadeFromBass/scaleFromBass implement spec.md §4.6's bass-driven zoom:
// heavier bass shortens the trail slightly (faster fade, so the image
// doesn't smear as much under a loud kick) and widens the outward scale,
// producing a visible "push" synced to the beat.
func fadeFromBass(bass float64) float64 {
	return DefaultFade - bass*0.03
}

func scaleFromBass(bass float64) float64 {
	return DefaultScale + bass*0.01
}

// Close releases every GPU and window resource.
func (c *Compositor) Close() {
	c.feedback.Destroy()
	c.window.Close()
}
