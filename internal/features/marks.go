package features

// markState tracks the debounced, higher-level event flags derived from
// the frame's raw detector outputs: frames-since-drastic-change, a
// cooldown-gated visualization-change trigger, and the zoom-direction
// toggle.
//
// zoom_direction_shift resolves the Open Question about which of two
// formulas in the reference implementation is authoritative: the
// edge-triggered "energy crosses 0.95 with positive slope" formulation
// is used here, since it composes cleanly with the other event flags
// (all edge-triggered) rather than reading as a continuous UI gauge.
type markState struct {
	framesSinceDrasticChange int
	cooldownRemaining        int
	prevEnergy               float64
	wasAboveZoomLevel        bool
}

func newMarkState() *markState {
	return &markState{framesSinceDrasticChange: 1 << 30}
}

func (ms *markState) update(cfg Config, bandsRaw, prevBandsRaw [NumBands]float64, energy float64, transition, punch, brk bool) (lastMark int, vizChange, zoomShift bool) {
	drastic := false
	for i := 0; i < NumBands; i++ {
		if abs(bandsRaw[i]-prevBandsRaw[i]) > cfg.DrasticBandJump {
			drastic = true
			break
		}
	}
	if drastic {
		ms.framesSinceDrasticChange = 0
	} else {
		ms.framesSinceDrasticChange++
	}

	if ms.cooldownRemaining > 0 {
		ms.cooldownRemaining--
	}
	if (transition || punch || brk) && ms.cooldownRemaining == 0 {
		vizChange = true
		ms.cooldownRemaining = cfg.ViZChangeCooldownFrames
	}

	isAbove := energy > cfg.ZoomCrossingLevel
	risingCrossing := isAbove && !ms.wasAboveZoomLevel && energy > ms.prevEnergy
	if risingCrossing {
		zoomShift = true
	}
	ms.wasAboveZoomLevel = isAbove
	ms.prevEnergy = energy

	return ms.framesSinceDrasticChange, vizChange, zoomShift
}
