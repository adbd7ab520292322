// Package compositor implements the GPU feedback compositor: a
// ping-pong fade/scale trail effect with burn-blended overlay
// composition, presented to an OpenGL window via go-gl/glfw.
package compositor

import (
	"fmt"
	"runtime"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
)

func init() {
	// GLFW and the GL context it creates must only ever be touched from
	// the thread that created them.
	runtime.LockOSThread()
}

// Window owns the GLFW window and GL context the compositor renders
// into. Title and size are cosmetic; the actual drawable surface is
// resized by the OS, tracked by the framebuffer-size callback, and
// picked up when RenderFrame compares Size() with the feedback targets.
type Window struct {
	handle *glfw.Window
	width  int
	height int
}

// OpenWindow creates a window and makes its GL context current on the
// calling (locked OS) thread.
func OpenWindow(title string, width, height int) (*Window, error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("glfw init: %w", err)
	}

	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.Resizable, glfw.True)

	handle, err := glfw.CreateWindow(width, height, title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("create window: %w", err)
	}
	handle.MakeContextCurrent()
	glfw.SwapInterval(1)

	if err := gl.Init(); err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("gl init: %w", err)
	}

	w := &Window{handle: handle, width: width, height: height}
	handle.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		w.width, w.height = width, height
	})
	return w, nil
}

// ShouldClose reports whether the user requested the window be closed.
func (w *Window) ShouldClose() bool { return w.handle.ShouldClose() }

// RequestClose marks the window for closing on the next ShouldClose
// check, e.g. from a signal handler reacting to SIGINT/SIGTERM.
func (w *Window) RequestClose() { w.handle.SetShouldClose(true) }

// SwapBuffers presents the default framebuffer and polls OS events.
func (w *Window) SwapBuffers() {
	w.handle.SwapBuffers()
	glfw.PollEvents()
}

// Size returns the current framebuffer size.
func (w *Window) Size() (int, int) { return w.width, w.height }

// Close destroys the window and terminates GLFW.
func (w *Window) Close() {
	w.handle.Destroy()
	glfw.Terminate()
}
