package audio

import "math"

// Auto-gain constants, carried over from the peak/gain smoothing in the
// capture stream this engine's selection logic is modeled on.
const (
	peakAttack  = 0.2
	peakRelease = 0.005
	targetLevel = 0.5
	gainMin     = 0.5
	gainMax     = 10.0
)

// AutoGain tracks a running peak estimate of the incoming signal and
// applies a clamped gain so quiet and loud sources both land near
// targetLevel without the user riding a volume knob.
type AutoGain struct {
	smoothedPeak float64
}

// NewAutoGain returns an AutoGain primed to unity gain.
func NewAutoGain() *AutoGain {
	return &AutoGain{smoothedPeak: targetLevel}
}

// Process updates the peak estimate from samples and returns a new slice
// with gain applied and values clamped to [-1, 1]. The input is not
// modified.
func (g *AutoGain) Process(samples []float32) []float32 {
	if len(samples) == 0 {
		return samples
	}

	peak := 0.0
	for _, s := range samples {
		a := math.Abs(float64(s))
		if a > peak {
			peak = a
		}
	}

	if peak > g.smoothedPeak {
		g.smoothedPeak += (peak - g.smoothedPeak) * peakAttack
	} else {
		g.smoothedPeak += (peak - g.smoothedPeak) * peakRelease
	}

	safePeak := g.smoothedPeak
	if safePeak < 1e-6 {
		safePeak = 1e-6
	}

	gain := targetLevel / safePeak
	if gain < gainMin {
		gain = gainMin
	} else if gain > gainMax {
		gain = gainMax
	}

	out := make([]float32, len(samples))
	for i, s := range samples {
		v := float64(s) * gain
		if v > 1 {
			v = 1
		} else if v < -1 {
			v = -1
		}
		out[i] = float32(v)
	}
	return out
}

// Gain returns the most recently applied gain factor.
func (g *AutoGain) Gain() float64 {
	safePeak := g.smoothedPeak
	if safePeak < 1e-6 {
		safePeak = 1e-6
	}
	gain := targetLevel / safePeak
	if gain < gainMin {
		return gainMin
	} else if gain > gainMax {
		return gainMax
	}
	return gain
}
