package compositor

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/pozitronik/dj-viz-go/internal/visual"
)

// renderTarget is a texture plus the framebuffer object that renders
// into it, the basic unit the ping-pong trail and the per-overlay
// scratch texture are both built from.
type renderTarget struct {
	texture uint32
	fbo     uint32
	width   int
	height  int
}

func newRenderTarget(width, height int) (*renderTarget, error) {
	var tex uint32
	gl.GenTextures(1, &tex)
	gl.BindTexture(gl.TEXTURE_2D, tex)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(width), int32(height), 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)

	var fbo uint32
	gl.GenFramebuffers(1, &fbo)
	gl.BindFramebuffer(gl.FRAMEBUFFER, fbo)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, tex, 0)
	if status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER); status != gl.FRAMEBUFFER_COMPLETE {
		gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
		return nil, fmt.Errorf("framebuffer incomplete: 0x%x", status)
	}
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)

	return &renderTarget{texture: tex, fbo: fbo, width: width, height: height}, nil
}

func (t *renderTarget) bind() {
	gl.BindFramebuffer(gl.FRAMEBUFFER, t.fbo)
	gl.Viewport(0, 0, int32(t.width), int32(t.height))
}

func (t *renderTarget) clear() {
	t.bind()
	gl.ClearColor(0, 0, 0, 0)
	gl.Clear(gl.COLOR_BUFFER_BIT)
}

func (t *renderTarget) destroy() {
	gl.DeleteFramebuffers(1, &t.fbo)
	gl.DeleteTextures(1, &t.texture)
}

// Feedback owns the ping-pong trail texture pair, the per-overlay
// scratch texture, and the fade/scale and burn-blend shader programs.
// It implements spec.md §4.6's pipeline: fade/scale the previous trail,
// let the primary visualizer draw on top, then burn-blend each overlay
// in turn before presenting to the default framebuffer.
type Feedback struct {
	width, height int

	trail   [2]*renderTarget // ping-pong; trail[readIdx] is the previous frame
	scratch *renderTarget    // single overlay render target, reused per overlay
	readIdx int

	fadeProgram    uint32
	burnProgram    uint32
	presentProgram uint32
	quad           *fullscreenQuad
	surface        *glSurface

	fade  float64
	scale float64
}

// DefaultFade and DefaultScale match spec.md §4.6's pseudo-pipeline
// ("≈0.97" / "≈1.003").
const (
	DefaultFade  = 0.97
	DefaultScale = 1.003
)

// NewFeedback allocates every GPU resource for a width x height output.
func NewFeedback(width, height int) (*Feedback, error) {
	f := &Feedback{width: width, height: height, fade: DefaultFade, scale: DefaultScale}
	if err := f.allocate(); err != nil {
		return nil, err
	}

	var err error
	f.fadeProgram, err = linkProgram(fadeScaleVertexSrc, fadeScaleFragSrc)
	if err != nil {
		return nil, fmt.Errorf("fade/scale program: %w", err)
	}
	f.burnProgram, err = linkProgram(fadeScaleVertexSrc, burnBlendFragSrc)
	if err != nil {
		return nil, fmt.Errorf("burn blend program: %w", err)
	}
	f.presentProgram, err = linkProgram(fadeScaleVertexSrc, passthroughFragSrc)
	if err != nil {
		return nil, fmt.Errorf("present program: %w", err)
	}
	f.quad = newFullscreenQuad()

	f.surface, err = newGLSurface()
	if err != nil {
		return nil, fmt.Errorf("draw surface: %w", err)
	}
	return f, nil
}

func (f *Feedback) allocate() error {
	for i := range f.trail {
		rt, err := newRenderTarget(f.width, f.height)
		if err != nil {
			return err
		}
		f.trail[i] = rt
	}
	rt, err := newRenderTarget(f.width, f.height)
	if err != nil {
		return err
	}
	f.scratch = rt
	return nil
}

func (f *Feedback) free() {
	for _, rt := range f.trail {
		if rt != nil {
			rt.destroy()
		}
	}
	if f.scratch != nil {
		f.scratch.destroy()
	}
}

// SetDynamics updates the per-frame fade/scale driven by bass energy,
// per spec.md §4.6's "Dynamic scale" note.
func (f *Feedback) SetDynamics(fade, scale float64) {
	f.fade = fade
	f.scale = scale
}

// Resize recreates every texture and FBO at a new size and resets
// current_idx to 0. The shader programs, including the passthrough
// reshaper, are kept as they are and are not recreated.
func (f *Feedback) Resize(width, height int) error {
	f.free()
	f.width, f.height = width, height
	f.readIdx = 0
	return f.allocate()
}

// Render executes one full composite pass: fade/scale the previous
// trail into the write target, let the orchestrator's primary draw on
// top, then burn-blend each overlay in turn, swapping the ping-pong
// roles after every blend. The final trail target is left resident,
// ready for Present.
func (f *Feedback) Render(orch *visual.Orchestrator, area visual.Rect) {
	writeIdx := 1 - f.readIdx
	f.fadeScalePass(f.trail[writeIdx], f.trail[f.readIdx])

	f.trail[writeIdx].bind()
	f.surface.setViewport(f.width, f.height)
	orch.DrawPrimary(f.surface, area)
	f.readIdx = writeIdx

	for _, name := range orch.OverlayNames() {
		f.scratch.clear()
		f.surface.setViewport(f.width, f.height)
		orch.DrawOverlayByName(name, f.surface, area)

		writeIdx = 1 - f.readIdx
		f.burnBlendPass(f.trail[writeIdx], f.trail[f.readIdx], f.scratch)
		f.readIdx = writeIdx
	}
}

func (f *Feedback) fadeScalePass(dst, src *renderTarget) {
	dst.bind()
	gl.UseProgram(f.fadeProgram)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, src.texture)
	gl.Uniform1i(gl.GetUniformLocation(f.fadeProgram, gl.Str("uPrev\x00")), 0)
	gl.Uniform1f(gl.GetUniformLocation(f.fadeProgram, gl.Str("uFade\x00")), float32(f.fade))
	gl.Uniform1f(gl.GetUniformLocation(f.fadeProgram, gl.Str("uScale\x00")), float32(f.scale))
	f.quad.draw()
}

func (f *Feedback) burnBlendPass(dst, base, overlay *renderTarget) {
	dst.bind()
	gl.UseProgram(f.burnProgram)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, base.texture)
	gl.Uniform1i(gl.GetUniformLocation(f.burnProgram, gl.Str("uBase\x00")), 0)
	gl.ActiveTexture(gl.TEXTURE1)
	gl.BindTexture(gl.TEXTURE_2D, overlay.texture)
	gl.Uniform1i(gl.GetUniformLocation(f.burnProgram, gl.Str("uOverlay\x00")), 1)
	f.quad.draw()
}

// Present copies the final trail texture into the default framebuffer
// via the passthrough reshaper, per spec.md §4.6 step 4.
func (f *Feedback) Present(outputWidth, outputHeight int) {
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.Viewport(0, 0, int32(outputWidth), int32(outputHeight))
	gl.UseProgram(f.presentProgram)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, f.trail[f.readIdx].texture)
	gl.Uniform1i(gl.GetUniformLocation(f.presentProgram, gl.Str("uTex\x00")), 0)
	f.quad.draw()
}

// Destroy releases every GPU resource the feedback pipeline owns.
func (f *Feedback) Destroy() {
	f.free()
	gl.DeleteProgram(f.fadeProgram)
	gl.DeleteProgram(f.burnProgram)
	gl.DeleteProgram(f.presentProgram)
	if f.quad != nil {
		f.quad.destroy()
	}
	if f.surface != nil {
		f.surface.destroy()
	}
}
