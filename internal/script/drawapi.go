package script

import (
	"math"
	"math/rand"

	lua "github.com/yuin/gopher-lua"

	"github.com/pozitronik/dj-viz-go/internal/visual"
)

// DrawCommand is one queued drawing call a script made this frame,
// replayed against the real visual.DrawSurface after the script runs.
// Ported one-for-one from the Rhai draw command enum; scripts never
// touch a DrawSurface directly so a misbehaving script can't hold a
// reference across frames.
type DrawCommand struct {
	Kind  string // "rect", "ellipse", "line", "text"
	X, Y  float32
	W, H  float32
	X2, Y2 float32
	Stroke float32
	Text  string
	Size  int
	Color [4]float32
}

func (c DrawCommand) execute(surface visual.DrawSurface) {
	switch c.Kind {
	case "rect":
		surface.Rect(visual.Rect{X: c.X, Y: c.Y, W: c.W, H: c.H}, c.Color)
	case "ellipse":
		surface.Ellipse(visual.Rect{X: c.X, Y: c.Y, W: c.W, H: c.H}, c.Color)
	case "line":
		surface.Line(c.X, c.Y, c.X2, c.Y2, c.Stroke, c.Color)
	case "text":
		surface.Text(c.X, c.Y, c.Text, c.Size, c.Color)
	}
}

// registerDrawAPI installs rect/ellipse/line/text globals that append to
// the engine's command queue instead of drawing immediately.
func registerDrawAPI(L *lua.LState, queue *[]DrawCommand) {
	L.SetGlobal("rect", L.NewFunction(func(L *lua.LState) int {
		*queue = append(*queue, DrawCommand{
			Kind: "rect",
			X:    float32(L.CheckNumber(1)), Y: float32(L.CheckNumber(2)),
			W: float32(L.CheckNumber(3)), H: float32(L.CheckNumber(4)),
			Color: readColor(L, 5),
		})
		return 0
	}))

	L.SetGlobal("ellipse", L.NewFunction(func(L *lua.LState) int {
		*queue = append(*queue, DrawCommand{
			Kind: "ellipse",
			X:    float32(L.CheckNumber(1)), Y: float32(L.CheckNumber(2)),
			W: float32(L.CheckNumber(3)), H: float32(L.CheckNumber(4)),
			Color: readColor(L, 5),
		})
		return 0
	}))

	L.SetGlobal("line", L.NewFunction(func(L *lua.LState) int {
		*queue = append(*queue, DrawCommand{
			Kind: "line",
			X:    float32(L.CheckNumber(1)), Y: float32(L.CheckNumber(2)),
			X2: float32(L.CheckNumber(3)), Y2: float32(L.CheckNumber(4)),
			Stroke: float32(L.CheckNumber(5)),
			Color:  readColor(L, 6),
		})
		return 0
	}))

	L.SetGlobal("text", L.NewFunction(func(L *lua.LState) int {
		*queue = append(*queue, DrawCommand{
			Kind: "text",
			X:    float32(L.CheckNumber(1)), Y: float32(L.CheckNumber(2)),
			Text: L.CheckString(3),
			Size: L.CheckInt(4),
			Color: readColor(L, 5),
		})
		return 0
	}))

	L.SetGlobal("hsla", L.NewFunction(luaHSLA))
}

// readColor pulls four consecutive r,g,b,a number arguments starting at
// argument index start.
func readColor(L *lua.LState, start int) [4]float32 {
	return [4]float32{
		float32(L.CheckNumber(start)),
		float32(L.CheckNumber(start + 1)),
		float32(L.CheckNumber(start + 2)),
		float32(L.CheckNumber(start + 3)),
	}
}

// luaHSLA mirrors the original's manual HSL->RGB conversion, returning
// four values (r, g, b, a) rather than a table, matching gopher-lua's
// idiom for multi-return functions.
func luaHSLA(L *lua.LState) int {
	h := float32(L.CheckNumber(1))
	s := float32(L.CheckNumber(2))
	l := float32(L.CheckNumber(3))
	a := float32(L.CheckNumber(4))

	var r, g, b float32
	if s == 0 {
		r, g, b = l, l, l
	} else {
		var q float32
		if l < 0.5 {
			q = l * (1 + s)
		} else {
			q = l + s - l*s
		}
		p := 2*l - q
		r = hueToRGB(p, q, h+1.0/3.0)
		g = hueToRGB(p, q, h)
		b = hueToRGB(p, q, h-1.0/3.0)
	}

	L.Push(lua.LNumber(r))
	L.Push(lua.LNumber(g))
	L.Push(lua.LNumber(b))
	L.Push(lua.LNumber(a))
	return 4
}

func hueToRGB(p, q, t float32) float32 {
	if t < 0 {
		t += 1
	}
	if t > 1 {
		t -= 1
	}
	switch {
	case t < 1.0/6.0:
		return p + (q-p)*6*t
	case t < 1.0/2.0:
		return q
	case t < 2.0/3.0:
		return p + (q-p)*(2.0/3.0-t)*6
	default:
		return p
	}
}

// registerMathAPI installs the trig/clamp/random globals scripts lean on
// for oscillator-style visuals.
func registerMathAPI(L *lua.LState) {
	unary := map[string]func(float64) float64{
		"sin": math.Sin, "cos": math.Cos, "tan": math.Tan,
		"abs": math.Abs, "sqrt": math.Sqrt,
		"floor": math.Floor, "ceil": math.Ceil,
	}
	for name, fn := range unary {
		fn := fn
		L.SetGlobal(name, L.NewFunction(func(L *lua.LState) int {
			L.Push(lua.LNumber(fn(float64(L.CheckNumber(1)))))
			return 1
		}))
	}

	L.SetGlobal("pow", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LNumber(math.Pow(float64(L.CheckNumber(1)), float64(L.CheckNumber(2)))))
		return 1
	}))
	L.SetGlobal("min", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LNumber(math.Min(float64(L.CheckNumber(1)), float64(L.CheckNumber(2)))))
		return 1
	}))
	L.SetGlobal("max", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LNumber(math.Max(float64(L.CheckNumber(1)), float64(L.CheckNumber(2)))))
		return 1
	}))
	L.SetGlobal("clamp", L.NewFunction(func(L *lua.LState) int {
		x, lo, hi := float64(L.CheckNumber(1)), float64(L.CheckNumber(2)), float64(L.CheckNumber(3))
		L.Push(lua.LNumber(math.Min(math.Max(x, lo), hi)))
		return 1
	}))
	L.SetGlobal("rand", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LNumber(rand.Float64()))
		return 1
	}))
	L.SetGlobal("rand_range", L.NewFunction(func(L *lua.LState) int {
		lo, hi := float64(L.CheckNumber(1)), float64(L.CheckNumber(2))
		L.Push(lua.LNumber(lo + rand.Float64()*(hi-lo)))
		return 1
	}))
	L.SetGlobal("pi", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LNumber(math.Pi))
		return 1
	}))
	L.SetGlobal("tau", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LNumber(2 * math.Pi))
		return 1
	}))
}
