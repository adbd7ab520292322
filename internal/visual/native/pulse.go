package native

import (
	"github.com/pozitronik/dj-viz-go/internal/features"
	"github.com/pozitronik/dj-viz-go/internal/visual"
)

func init() {
	visual.Register("pulse", func() (visual.Visualizer, error) {
		return NewPulse(), nil
	})
}

// Pulse grows an ellipse on kick detection and decays it otherwise,
// a minimal illustrative stand-in for a beat-reactive visualizer.
type Pulse struct {
	radius float64
	energy float64
}

// NewPulse constructs a Pulse visualizer.
func NewPulse() *Pulse { return &Pulse{} }

func (p *Pulse) Update(a *features.Analysis) {
	p.energy = a.Energy
	if a.KickDetected {
		p.radius = 0.5 + 0.5*a.KickConfidence
	} else {
		p.radius *= 0.92
	}
}

func (p *Pulse) Draw(surface visual.DrawSurface, area visual.Rect) {
	cx := area.X + area.W/2
	cy := area.Y + area.H/2
	size := float32(p.radius) * area.H
	color := [4]float32{1.0, 1.0, float32(1 - p.energy), 0.8}
	surface.Ellipse(visual.Rect{X: cx - size/2, Y: cy - size/2, W: size, H: size}, color)
}
