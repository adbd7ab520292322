package features

import "math"

// kickBandState tracks one of the three onset-detection bands: its
// smoothed envelope, the flux derived from it, and an adaptive moving
// average. The onset threshold is scaled from the envelope; the moving
// average is maintained but not read. Ported from the reference kick
// detector's per-band bookkeeping.
type kickBandState struct {
	envelope  float64
	prevEnergy float64
	movingAvg  float64
	frameCount int
}

// kickDetector coincidence-matches onsets across the three KickBands to
// fire a single kick event, tracks inter-kick intervals for BPM, and
// exposes per-band envelope/flux for visualizers.
type kickDetector struct {
	bands        [3]kickBandState
	timeSinceKick float64
	intervals    []float64
	bpm          float64
}

func newKickDetector() *kickDetector {
	return &kickDetector{timeSinceKick: 10}
}

// bandEnergyHz sums magnitude-squared energy between loHz and hiHz,
// returning the pseudo-dB-mapped value the same way band energy does.
func bandEnergyHz(mags []float64, sampleRate float64, fftSize int, loHz, hiHz float64) float64 {
	binHz := sampleRate / float64(fftSize)
	start := int(loHz / binHz)
	end := int(hiHz / binHz)
	if start < 0 {
		start = 0
	}
	if end > len(mags) {
		end = len(mags)
	}
	if end <= start {
		end = start + 1
		if end > len(mags) {
			return 0
		}
	}
	var sum float64
	for k := start; k < end; k++ {
		sum += mags[k] * mags[k]
	}
	avg := sum / float64(end-start)
	return clamp01((10*math.Log10(avg+1e-10) + 60) / 60)
}

// process runs one frame of kick detection given raw per-kick-band
// energies and the elapsed time since the previous frame (seconds). It
// returns whether a kick fired, the confidence, and per-band
// envelope/flux for display.
func (kd *kickDetector) process(cfg Config, bandEnergies [3]float64, dt float64) (detected bool, confidence float64, envelopes, flux [3]float64) {
	kd.timeSinceKick += dt

	onsets := 0
	var triggeredWeight, totalWeight float64

	for i, be := range bandEnergies {
		bs := &kd.bands[i]
		totalWeight += KickBands[i].Weight

		var alpha float64
		if be > bs.envelope {
			alpha = cfg.KickEnvelopeAttack
		} else {
			alpha = cfg.KickEnvelopeRelease
		}
		bs.envelope += (be - bs.envelope) * alpha

		f := be - bs.prevEnergy
		if f < 0 {
			f = 0
		}
		bs.prevEnergy = be

		bs.frameCount++
		maAlpha := 0.98
		if bs.frameCount < 30 {
			maAlpha = 0.8
		}
		bs.movingAvg += (be - bs.movingAvg) * (1 - maAlpha)

		threshold := bs.envelope * 0.15
		if threshold < 0.02 {
			threshold = 0.02
		}

		if f > threshold {
			onsets++
			triggeredWeight += KickBands[i].Weight
		}

		envelopes[i] = bs.envelope
		flux[i] = f
	}

	if onsets >= cfg.MinCoincidentBands && kd.timeSinceKick >= cfg.MinKickInterval {
		detected = true
		if totalWeight > 0 {
			confidence = triggeredWeight / totalWeight
		}
		kd.recordKick()
		kd.timeSinceKick = 0
	}

	return detected, confidence, envelopes, flux
}

// recordKick appends the current inter-kick interval and recomputes a
// smoothed BPM estimate from the median of a bounded recent window.
func (kd *kickDetector) recordKick() {
	const maxIntervals = 12
	if kd.timeSinceKick > 0 {
		kd.intervals = append(kd.intervals, kd.timeSinceKick)
		if len(kd.intervals) > maxIntervals {
			kd.intervals = kd.intervals[1:]
		}
	}

	if len(kd.intervals) < 3 {
		return
	}

	sorted := append([]float64(nil), kd.intervals...)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j] < sorted[j-1]; j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}
	median := sorted[len(sorted)/2]
	if median <= 0 {
		return
	}

	target := 60.0 / median
	if kd.bpm == 0 {
		kd.bpm = target
	} else {
		kd.bpm += (target - kd.bpm) * 0.2
	}
}
