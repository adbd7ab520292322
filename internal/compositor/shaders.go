package compositor

import (
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// fadeScaleVertexSrc/fadeScaleFragSrc sample the previous trail texture
// with a slight outward scale and multiply by fade, implementing visual
// trails without re-rendering any history.
const fadeScaleVertexSrc = `
#version 410 core
layout(location = 0) in vec2 aPos;
layout(location = 1) in vec2 aUV;
out vec2 vUV;
void main() {
	vUV = aUV;
	gl_Position = vec4(aPos, 0.0, 1.0);
}
` + "\x00"

const fadeScaleFragSrc = `
#version 410 core
in vec2 vUV;
out vec4 fragColor;
uniform sampler2D uPrev;
uniform float uFade;
uniform float uScale;
void main() {
	vec2 centered = (vUV - 0.5) / uScale + 0.5;
	vec4 sampled = texture(uPrev, centered);
	fragColor = sampled * uFade;
}
` + "\x00"

// burnBlendFragSrc darkens the base proportionally to how bright the
// overlay is; identity (base unchanged) when the overlay's alpha is
// zero, satisfying the documented property from the burn-blend pseudo-
// pipeline.
const burnBlendFragSrc = `
#version 410 core
in vec2 vUV;
out vec4 fragColor;
uniform sampler2D uBase;
uniform sampler2D uOverlay;
void main() {
	vec4 base = texture(uBase, vUV);
	vec4 over = texture(uOverlay, vUV);
	vec3 burned = base.rgb * (1.0 - over.rgb);
	vec3 result = mix(base.rgb, burned, over.a);
	fragColor = vec4(result, max(base.a, over.a));
}
` + "\x00"

const passthroughFragSrc = `
#version 410 core
in vec2 vUV;
out vec4 fragColor;
uniform sampler2D uTex;
void main() {
	fragColor = texture(uTex, vUV);
}
` + "\x00"

func compileShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csource, free := gl.Strs(source)
	defer free()
	gl.ShaderSource(shader, 1, csource, nil)
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen+1))
		gl.GetShaderInfoLog(shader, logLen, nil, gl.Str(log))
		return 0, fmt.Errorf("compile shader: %s", log)
	}
	return shader, nil
}

// linkProgram compiles and links vert+frag into a usable GL program.
func linkProgram(vertSrc, fragSrc string) (uint32, error) {
	vert, err := compileShader(vertSrc, gl.VERTEX_SHADER)
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(vert)

	frag, err := compileShader(fragSrc, gl.FRAGMENT_SHADER)
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(frag)

	program := gl.CreateProgram()
	gl.AttachShader(program, vert)
	gl.AttachShader(program, frag)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen+1))
		gl.GetProgramInfoLog(program, logLen, nil, gl.Str(log))
		return 0, fmt.Errorf("link program: %s", log)
	}
	return program, nil
}

// fullscreenQuad is the shared two-triangle mesh every full-screen pass
// (fade/scale, burn blend, present) draws through.
type fullscreenQuad struct {
	vao uint32
	vbo uint32
}

var quadVertices = []float32{
	// x, y, u, v
	-1, -1, 0, 0,
	1, -1, 1, 0,
	1, 1, 1, 1,
	-1, -1, 0, 0,
	1, 1, 1, 1,
	-1, 1, 0, 1,
}

func newFullscreenQuad() *fullscreenQuad {
	var vao, vbo uint32
	gl.GenVertexArrays(1, &vao)
	gl.GenBuffers(1, &vbo)

	gl.BindVertexArray(vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(quadVertices)*4, gl.Ptr(quadVertices), gl.STATIC_DRAW)

	gl.VertexAttribPointer(0, 2, gl.FLOAT, false, 4*4, gl.PtrOffset(0))
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(1, 2, gl.FLOAT, false, 4*4, gl.PtrOffset(2*4))
	gl.EnableVertexAttribArray(1)

	gl.BindVertexArray(0)
	return &fullscreenQuad{vao: vao, vbo: vbo}
}

func (q *fullscreenQuad) draw() {
	gl.BindVertexArray(q.vao)
	gl.DrawArrays(gl.TRIANGLES, 0, 6)
	gl.BindVertexArray(0)
}

func (q *fullscreenQuad) destroy() {
	gl.DeleteBuffers(1, &q.vbo)
	gl.DeleteVertexArrays(1, &q.vao)
}
