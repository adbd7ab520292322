// Package native holds the small built-in illustrative visualizer set,
// restating the teacher's simplest widgets (clock, hyperspace) as
// OpenGL draw-command producers instead of OLED bitmap writers.
package native

import (
	"github.com/pozitronik/dj-viz-go/internal/features"
	"github.com/pozitronik/dj-viz-go/internal/visual"
)

func init() {
	visual.Register("bars", func() (visual.Visualizer, error) {
		return NewBars(), nil
	})
}

// Bars renders the smoothed band energies as a vertical bar graph,
// colored by dominant band.
type Bars struct {
	bands        [features.NumBands]float64
	dominantBand int
}

// NewBars constructs a Bars visualizer.
func NewBars() *Bars { return &Bars{} }

// Update retains the fields Draw needs; it never touches the surface.
func (b *Bars) Update(a *features.Analysis) {
	b.bands = a.Bands
	b.dominantBand = a.DominantBand
}

// Draw renders one bar per band, scaled to area height.
func (b *Bars) Draw(surface visual.DrawSurface, area visual.Rect) {
	n := float32(len(b.bands))
	barW := area.W / n
	for i, v := range b.bands {
		h := area.H * float32(v)
		x := area.X + float32(i)*barW
		y := area.Y + area.H - h
		color := [4]float32{0.2, 0.6, 1.0, 1.0}
		if i == b.dominantBand {
			color = [4]float32{1.0, 0.4, 0.2, 1.0}
		}
		surface.Rect(visual.Rect{X: x, Y: y, W: barW * 0.8, H: h}, color)
	}
}
