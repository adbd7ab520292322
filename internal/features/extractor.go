package features

import (
	"math"
	"time"
)

// Extractor is the pipeline's single entry point: Analyze(samples)
// produces one Analysis per call. The fixed-size working buffers are
// allocated once in NewExtractor, but analyzing a frame still allocates:
// the FFT output, the detected peak and match lists, the history
// slices, and the returned Instruments slice are all built per call.
type Extractor struct {
	cfg Config
	sa  *spectrumAnalyzer

	bandState       *bandState
	aggState        *aggregateState
	transitionState *transitionState
	kick            *kickDetector
	instruments     *instrumentTracker
	punch           punchDetector
	brk             breakDetector
	marks           *markState

	prevBandsRaw [NumBands]float64
	prevSpectrum [SpectrumSize]float64

	lastFrame time.Time
}

// NewExtractor builds an Extractor with the given configuration.
func NewExtractor(cfg Config) *Extractor {
	return &Extractor{
		cfg:             cfg,
		sa:              newSpectrumAnalyzer(cfg),
		bandState:       newBandState(),
		aggState:        &aggregateState{},
		transitionState: newTransitionState(cfg),
		kick:            newKickDetector(),
		instruments:     newInstrumentTracker(cfg),
		marks:           newMarkState(),
	}
}

// Analyze runs the full feature-extraction pipeline against one PCM
// snapshot and returns the resulting Analysis. Degenerate input
// (silence, or NaN/Inf samples) is sanitized before analysis so no NaN
// can propagate into the result; analysis never fails.
func (e *Extractor) Analyze(samples []float32) Analysis {
	samples = sanitize(samples)

	now := time.Now()
	var dt float64
	if e.lastFrame.IsZero() {
		dt = 1.0 / 60.0
	} else {
		dt = now.Sub(e.lastFrame).Seconds()
	}
	e.lastFrame = now

	mags := e.sa.magnitudes(samples)

	var raw [NumBands]float64
	for i := 0; i < NumBands; i++ {
		raw[i] = e.sa.bandEnergy(mags, i)
	}

	smoothed, normalized, mins, maxs := e.bandState.update(e.cfg, raw)
	bass, mids, treble := bassMidsTreble(smoothed)
	energy, energyDiff, riseRate := e.aggState.update(e.cfg, smoothed)

	peak := detectPeak(raw, e.prevBandsRaw)

	e.transitionState.push(e.cfg, energy, highFreqRatio(smoothed))
	transition := e.transitionState.detect(e.cfg)

	var kickEnergies [3]float64
	for i, kb := range KickBands {
		kickEnergies[i] = bandEnergyHz(mags, e.cfg.SampleRate, e.cfg.FFTSize, kb.LowHz, kb.HighHz)
	}
	kickDetected, kickConfidence, kickEnvelopes, kickFlux := e.kick.process(e.cfg, kickEnergies, dt)

	punch := e.punch.process(e.cfg, energy, energyDiff)
	brk := e.brk.process(e.cfg, energy)

	peaks := detectPeaks(e.cfg, smoothed, mags, e.cfg.SampleRate, e.cfg.FFTSize)
	added, removed := e.instruments.update(e.cfg, peaks)

	lastMark, vizChange, zoomShift := e.marks.update(e.cfg, raw, e.prevBandsRaw, energy, transition, punch, brk)

	centroid := spectralCentroid(mags, e.cfg.SampleRate, e.cfg.FFTSize)
	dominant := dominantBand(smoothed)

	var a Analysis
	a.Bands = smoothed
	a.BandsRaw = raw
	a.BandsNormalized = normalized
	a.BandMins = mins
	a.BandMaxs = maxs
	a.Energy = energy
	a.Bass = bass
	a.Mids = mids
	a.Treble = treble
	a.EnergyDiff = energyDiff
	a.RiseRate = riseRate
	a.SpectralCentroid = centroid
	a.DominantBand = dominant

	for i := 0; i < SpectrumSize; i++ {
		if i < len(mags) {
			a.Spectrum[i] = mags[i]
		}
		diff := a.Spectrum[i] - e.prevSpectrum[i]
		if diff > 0 {
			a.SpectrumDiff[i] = diff
		}
	}
	e.prevSpectrum = a.Spectrum

	a.KickDetected = kickDetected
	a.KickConfidence = kickConfidence
	a.KickEnvelopes = kickEnvelopes
	a.KickFlux = kickFlux
	a.KickTimeSince = e.kick.timeSinceKick
	a.BPM = e.kick.bpm

	a.TransitionDetected = transition
	a.PunchDetected = punch
	a.BreakDetected = brk
	a.InstrumentAdded = added
	a.InstrumentRemoved = removed
	a.VizChangeTriggered = vizChange
	a.ZoomDirectionShift = zoomShift
	a.LastMark = lastMark
	a.Peak = peak

	a.Instruments = e.instruments.snapshot()

	e.prevBandsRaw = raw

	return a
}

// sanitize replaces NaN/Inf samples with silence so a malformed input
// chunk can never propagate non-finite values into the pipeline.
func sanitize(samples []float32) []float32 {
	if len(samples) == 0 {
		return samples
	}
	clean := samples
	for i, s := range samples {
		f := float64(s)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			if &clean[0] == &samples[0] {
				clean = append([]float32(nil), samples...)
			}
			clean[i] = 0
		}
	}
	return clean
}
