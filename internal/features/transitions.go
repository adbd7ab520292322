package features

// transitionState maintains the rolling energy/high-frequency-ratio
// history transition detection reads recent-vs-long-term means from.
type transitionState struct {
	energyHistory []float64
	freqHistory   []float64

	wasHighEnergy bool
	wasHighFreq   bool
}

func newTransitionState(cfg Config) *transitionState {
	return &transitionState{
		energyHistory: make([]float64, 0, cfg.HistorySize),
		freqHistory:   make([]float64, 0, cfg.HistorySize),
	}
}

func (ts *transitionState) push(cfg Config, energy, highFreqRatio float64) {
	ts.energyHistory = append(ts.energyHistory, energy)
	if len(ts.energyHistory) > cfg.HistorySize {
		ts.energyHistory = ts.energyHistory[1:]
	}
	ts.freqHistory = append(ts.freqHistory, highFreqRatio)
	if len(ts.freqHistory) > cfg.HistorySize {
		ts.freqHistory = ts.freqHistory[1:]
	}
}

// detect reports whether a transition fired this frame. It must be
// called once per frame, after push.
func (ts *transitionState) detect(cfg Config) bool {
	n := len(ts.energyHistory)
	if n < cfg.TransitionWindow {
		return false
	}

	recentWindow := cfg.TransitionWindow
	recentEnergy := mean(ts.energyHistory[n-recentWindow:])
	longEnergy := mean(ts.energyHistory)
	recentFreq := mean(ts.freqHistory[n-recentWindow:])
	longFreq := mean(ts.freqHistory)

	isHighEnergy := recentEnergy > longEnergy*cfg.TransitionEnergyRatio
	isHighFreq := recentFreq > longFreq+cfg.TransitionFreqDelta

	energyMagnitude := abs(recentEnergy-longEnergy) / maxFloat(longEnergy, 1e-6)
	freqMagnitude := abs(recentFreq - longFreq)

	energyTransition := isHighEnergy != ts.wasHighEnergy && energyMagnitude > cfg.TransitionMagnitude
	freqTransition := isHighFreq != ts.wasHighFreq && freqMagnitude > cfg.TransitionFreqMagnitude

	ts.wasHighEnergy = isHighEnergy
	ts.wasHighFreq = isHighFreq

	return energyTransition || freqTransition
}

// highFreqRatio computes high-band energy as a fraction of total band
// energy, the quantity transition detection tracks alongside energy.
func highFreqRatio(bands [NumBands]float64) float64 {
	var high, total float64
	for i, v := range bands {
		total += v
		if i >= NumBands/2 {
			high += v
		}
	}
	if total < 1e-9 {
		return 0
	}
	return high / total
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
