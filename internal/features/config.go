package features

// Config collects the tunable thresholds and smoothing constants used
// throughout the pipeline. Values default to the ones carried over from
// the reference analyzer this package is modeled on; they are fields
// rather than package constants so a deployment can recalibrate without
// a code change.
type Config struct {
	SampleRate float64
	FFTSize    int

	BandAttack float64
	BandDecay  float64

	EnergyAttack float64
	EnergyDecay  float64

	ExtremaAdaptRate float64

	HistorySize             int
	TransitionWindow        int
	TransitionEnergyRatio   float64
	TransitionFreqDelta     float64
	TransitionMagnitude     float64
	TransitionFreqMagnitude float64

	KickEnvelopeAttack  float64
	KickEnvelopeRelease float64
	MinKickInterval     float64
	MinCoincidentBands  int

	MaxInstruments     int
	ProbeFrames        int
	EstablishFrames    int
	DecayStartFrames   int
	DecayRate          float64
	MinConfidence      float64
	MatchThreshold     float64
	EnergyThreshold    float64

	ViZChangeCooldownFrames int
	DrasticBandJump         float64
	ZoomCrossingLevel       float64

	PunchCalmGate      float64
	PunchCalmFrames    int
	PunchDiffThreshold float64

	BreakWindow       int
	BreakVarianceDrop float64
	BreakEnergyGate   float64
}

// DefaultConfig returns the constants this pipeline was grounded on.
func DefaultConfig() Config {
	return Config{
		SampleRate: 44100,
		FFTSize:    512,

		BandAttack: 0.7,
		BandDecay:  0.15,

		EnergyAttack: 0.7,
		EnergyDecay:  0.1,

		ExtremaAdaptRate: 0.995,

		HistorySize:             180,
		TransitionWindow:        30,
		TransitionEnergyRatio:   1.15,
		TransitionFreqDelta:     0.08,
		TransitionMagnitude:     0.15,
		TransitionFreqMagnitude: 0.15,

		KickEnvelopeAttack:  0.8,
		KickEnvelopeRelease: 0.15,
		MinKickInterval:     0.12,
		MinCoincidentBands:  2,

		MaxInstruments:   6,
		ProbeFrames:      8,
		EstablishFrames:  30,
		DecayStartFrames: 90,
		DecayRate:        0.02,
		MinConfidence:    0.1,
		MatchThreshold:   0.7,
		EnergyThreshold:  0.15,

		ViZChangeCooldownFrames: 60,
		DrasticBandJump:         0.5,
		ZoomCrossingLevel:       0.95,

		PunchCalmGate:      0.2,
		PunchCalmFrames:    10,
		PunchDiffThreshold: 0.3,

		BreakWindow:       90,
		BreakVarianceDrop: 0.3,
		BreakEnergyGate:   0.35,
	}
}

// BandEdges are the frequency boundaries (Hz) of the NumBands octave-like
// bands, matching the reference analyzer's band layout.
var BandEdges = [NumBands + 1]float64{20, 60, 250, 500, 2000, 4000, 6000, 12000, 20000}

// KickBand describes one of the three detector bands kick detection
// correlates onsets across.
type KickBand struct {
	LowHz, HighHz float64
	Weight        float64
}

// KickBands are the sub-bass / low-mid / attack bands used for onset
// coincidence detection.
var KickBands = [3]KickBand{
	{LowHz: 20, HighHz: 80, Weight: 1.0},
	{LowHz: 80, HighHz: 200, Weight: 0.8},
	{LowHz: 2000, HighHz: 5000, Weight: 0.5},
}
