package features

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func silence(n int) []float32 {
	return make([]float32, n)
}

func tone(n int, freq, sampleRate float64) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = float32(0.8 * math.Sin(2*math.Pi*freq*float64(i)/sampleRate))
	}
	return out
}

func TestAnalyzeSilenceYieldsNoEvents(t *testing.T) {
	e := NewExtractor(DefaultConfig())
	var a Analysis
	for i := 0; i < 10; i++ {
		a = e.Analyze(silence(2048))
	}

	assert.False(t, a.KickDetected, "kick on silence")
	assert.False(t, a.TransitionDetected, "transition on silence")
	assert.False(t, a.PunchDetected, "punch on silence")
	assert.False(t, a.BreakDetected, "break on silence")
	for i, v := range a.Bands {
		assert.GreaterOrEqualf(t, v, 0.0, "bands[%d]", i)
		assert.LessOrEqualf(t, v, 1.0, "bands[%d]", i)
	}
}

func TestAnalyzeInvariantRanges(t *testing.T) {
	e := NewExtractor(DefaultConfig())
	a := e.Analyze(tone(2048, 440, DefaultConfig().SampleRate))

	for i, v := range a.Bands {
		assert.GreaterOrEqualf(t, v, 0.0, "bands[%d]", i)
		assert.LessOrEqualf(t, v, 1.0, "bands[%d]", i)
	}
	for i, v := range a.BandsNormalized {
		assert.GreaterOrEqualf(t, v, 0.0, "bands_normalized[%d]", i)
		assert.LessOrEqualf(t, v, 1.0, "bands_normalized[%d]", i)
	}
	assert.GreaterOrEqual(t, a.KickConfidence, 0.0)
	assert.LessOrEqual(t, a.KickConfidence, 1.0)
	require.Len(t, a.Spectrum, SpectrumSize)
	require.Len(t, a.SpectrumDiff, SpectrumSize)
	assert.GreaterOrEqual(t, a.DominantBand, 0)
	assert.Less(t, a.DominantBand, NumBands)
}

func TestAnalyzeNaNSamplesSanitized(t *testing.T) {
	e := NewExtractor(DefaultConfig())
	samples := tone(1024, 220, DefaultConfig().SampleRate)
	samples[10] = float32(math.NaN())
	samples[20] = float32(math.Inf(1))

	a := e.Analyze(samples)
	for i, v := range a.Bands {
		assert.Falsef(t, math.IsNaN(v), "bands[%d] is NaN", i)
		assert.Falsef(t, math.IsInf(v, 0), "bands[%d] is Inf", i)
	}
}

func TestPearsonCorrelationIdenticalSignatures(t *testing.T) {
	sig := [NumBands]float64{0.1, 0.2, 0.3, 0.1, 0.05, 0.05, 0.1, 0.1}
	require.GreaterOrEqual(t, pearson(sig, sig), 0.99, "identical signatures should correlate near 1")
}

func TestKickDetectorFiresOnCoincidentOnset(t *testing.T) {
	kd := newKickDetector()
	cfg := DefaultConfig()

	// Warm up with low, steady energy so the moving average/envelope settle.
	for i := 0; i < 30; i++ {
		kd.process(cfg, [3]float64{0.01, 0.01, 0.01}, 1.0/60)
	}

	// A sharp coincident spike across at least two bands should fire.
	detected, confidence, _, _ := kd.process(cfg, [3]float64{0.9, 0.8, 0.01}, 1.0/60)
	require.True(t, detected, "expected kick to fire on coincident spike")
	assert.Greater(t, confidence, 0.0)
}

func TestKickDetectorRespectsMinInterval(t *testing.T) {
	kd := newKickDetector()
	cfg := DefaultConfig()
	for i := 0; i < 30; i++ {
		kd.process(cfg, [3]float64{0.01, 0.01, 0.01}, 1.0/60)
	}
	detected, _, _, _ := kd.process(cfg, [3]float64{0.9, 0.9, 0.01}, 1.0/60)
	require.True(t, detected, "expected first kick to fire")

	// Immediately after, well within min_kick_interval, should not re-fire.
	detected, _, _, _ = kd.process(cfg, [3]float64{0.9, 0.9, 0.01}, 1.0/600)
	assert.False(t, detected, "expected cooldown to suppress immediate re-trigger")
}

func TestInstrumentTrackerEstablishesAfterRepeatedMatches(t *testing.T) {
	cfg := DefaultConfig()
	it := newInstrumentTracker(cfg)

	peak := spectralPeak{
		signature:    [NumBands]float64{0, 0.5, 0.5, 0, 0, 0, 0, 0},
		centerFreq:   300,
		dominantBand: 1,
		energy:       0.5,
	}

	var added bool
	for i := 0; i < cfg.EstablishFrames+cfg.ProbeFrames+2; i++ {
		a, _ := it.update(cfg, []spectralPeak{peak})
		if a {
			added = true
		}
	}

	require.True(t, added, "expected instrument_added to fire once the slot establishes")
	snap := it.snapshot()
	require.Len(t, snap, 1)
	assert.True(t, snap[0].Established)
}

func TestInstrumentTrackerDecaysAndClearsWhenUnmatched(t *testing.T) {
	cfg := DefaultConfig()
	it := newInstrumentTracker(cfg)
	peak := spectralPeak{signature: [NumBands]float64{0.5, 0.5, 0, 0, 0, 0, 0, 0}, dominantBand: 0, energy: 0.5}

	it.update(cfg, []spectralPeak{peak})
	require.Len(t, it.snapshot(), 1, "expected slot to be created on first peak")

	for i := 0; i < cfg.DecayStartFrames+int(1/cfg.DecayRate)+5; i++ {
		it.update(cfg, nil)
	}

	assert.Empty(t, it.snapshot(), "expected slot to clear after prolonged absence")
}
