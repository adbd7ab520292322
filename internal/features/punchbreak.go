package features

// punchDetector fires when energy spikes sharply from a preceding calm
// period. No direct reference implementation; rather than a rolling
// history it keeps only a count of consecutive calm frames. Its thresholds live on
// Config (PunchCalmGate/PunchCalmFrames/PunchDiffThreshold) rather than
// package constants, the same way kickDetector and transitionState take
// their thresholds, so a deployment can recalibrate without a code
// change.
type punchDetector struct {
	calmFrames int
}

func (pd *punchDetector) process(cfg Config, energy, energyDiff float64) bool {
	wasCalm := pd.calmFrames >= cfg.PunchCalmFrames

	if energy < cfg.PunchCalmGate {
		pd.calmFrames++
	} else {
		pd.calmFrames = 0
	}

	return wasCalm && energyDiff > cfg.PunchDiffThreshold
}

// breakDetector fires on a prolonged low-energy stretch with periodic
// micro-peaks — a deliberate heuristic (see the Open Question this
// resolves to a documented approximation rather than an exact rule):
// implemented as a variance drop over the energy history together with
// a low mean energy; kick cadence is not considered. Its thresholds live on Config
// (BreakWindow/BreakVarianceDrop/BreakEnergyGate).
type breakDetector struct {
	history []float64
}

func (bd *breakDetector) process(cfg Config, energy float64) bool {
	bd.history = append(bd.history, energy)
	if len(bd.history) > cfg.BreakWindow {
		bd.history = bd.history[1:]
	}
	if len(bd.history) < cfg.BreakWindow {
		return false
	}

	half := cfg.BreakWindow / 2
	varOld := variance(bd.history[:half])
	varNew := variance(bd.history[half:])

	if varOld < 1e-9 {
		return false
	}

	dropped := varNew < varOld*(1-cfg.BreakVarianceDrop)
	lowEnergy := mean(bd.history[half:]) < cfg.BreakEnergyGate

	return dropped && lowEnergy
}

func variance(vs []float64) float64 {
	m := mean(vs)
	var sum float64
	for _, v := range vs {
		d := v - m
		sum += d * d
	}
	return sum / float64(len(vs))
}
