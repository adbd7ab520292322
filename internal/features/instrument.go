package features

// trackedSlot is one instrument-tracker slot: a correlation signature,
// lifecycle counters, and a bounded history of recent band vectors used
// to periodically refine the signature. Ported from the reference
// instrument tracker's slot bookkeeping.
type trackedSlot struct {
	active       bool
	signature    [NumBands]float64
	centerFreq   float64
	dominantBand int
	confidence   float64
	energy       float64
	inactiveFrames int
	established  bool
	patternFrames int
	history      [][NumBands]float64
}

// instrumentTracker owns up to Config.MaxInstruments slots.
type instrumentTracker struct {
	slots []trackedSlot
}

func newInstrumentTracker(cfg Config) *instrumentTracker {
	return &instrumentTracker{slots: make([]trackedSlot, cfg.MaxInstruments)}
}

// spectralPeak is a contiguous band region above the energy threshold,
// the unit instrument matching correlates against existing slots.
type spectralPeak struct {
	signature    [NumBands]float64
	centerFreq   float64
	dominantBand int
	energy       float64
}

// detectPeaks finds contiguous runs of bands above EnergyThreshold and
// turns each into a normalized-signature spectralPeak.
func detectPeaks(cfg Config, bands [NumBands]float64, mags []float64, sampleRate float64, fftSize int) []spectralPeak {
	var peaks []spectralPeak

	i := 0
	for i < NumBands {
		if bands[i] < cfg.EnergyThreshold {
			i++
			continue
		}
		start := i
		for i < NumBands && bands[i] >= cfg.EnergyThreshold {
			i++
		}
		end := i // [start, end)

		var sig [NumBands]float64
		var sum float64
		dominant := start
		for b := start; b < end; b++ {
			sig[b] = bands[b]
			sum += bands[b]
			if bands[b] > bands[dominant] {
				dominant = b
			}
		}
		if sum > 1e-9 {
			for b := start; b < end; b++ {
				sig[b] /= sum
			}
		}

		center := bandCenterFreq(mags, sampleRate, fftSize, dominant)

		peaks = append(peaks, spectralPeak{
			signature:    sig,
			centerFreq:   center,
			dominantBand: dominant,
			energy:       sum / float64(end-start),
		})
	}

	return peaks
}

// bandCenterFreq computes the spectrum-weighted mean frequency within
// the bin range of the given dominant band.
func bandCenterFreq(mags []float64, sampleRate float64, fftSize int, band int) float64 {
	binHz := sampleRate / float64(fftSize)
	lo := BandEdges[band]
	hi := BandEdges[band+1]
	start := int(lo / binHz)
	end := int(hi / binHz)
	if start < 0 {
		start = 0
	}
	if end > len(mags) {
		end = len(mags)
	}
	if end <= start {
		return lo
	}

	var num, den float64
	for k := start; k < end; k++ {
		f := float64(k) * binHz
		num += f * mags[k]
		den += mags[k]
	}
	if den < 1e-9 {
		return lo
	}
	return num / den
}

// pearson computes the Pearson correlation coefficient between two
// equal-length band signatures.
func pearson(a, b [NumBands]float64) float64 {
	var meanA, meanB float64
	for i := 0; i < NumBands; i++ {
		meanA += a[i]
		meanB += b[i]
	}
	meanA /= NumBands
	meanB /= NumBands

	var cov, varA, varB float64
	for i := 0; i < NumBands; i++ {
		da := a[i] - meanA
		db := b[i] - meanB
		cov += da * db
		varA += da * da
		varB += db * db
	}
	if varA < 1e-12 || varB < 1e-12 {
		return 0
	}
	return cov / sqrtApprox(varA*varB)
}

func sqrtApprox(v float64) float64 {
	if v <= 0 {
		return 0
	}
	x := v
	for i := 0; i < 20; i++ {
		x = 0.5 * (x + v/x)
	}
	return x
}

// update matches this frame's peaks to existing slots, advancing
// lifecycle state, and reports the (added, removed) edge events.
func (it *instrumentTracker) update(cfg Config, peaks []spectralPeak) (added, removed bool) {
	matched := make([]bool, len(it.slots))

	for _, peak := range peaks {
		bestSlot := -1
		bestScore := cfg.MatchThreshold
		for si := range it.slots {
			s := &it.slots[si]
			if !s.active || s.patternFrames < cfg.ProbeFrames || matched[si] {
				continue
			}
			score := pearson(s.signature, peak.signature)
			if score > bestScore {
				bestScore = score
				bestSlot = si
			}
		}

		if bestSlot >= 0 {
			matched[bestSlot] = true
			wasEstablished := it.slots[bestSlot].established
			it.updateSlot(cfg, bestSlot, peak)
			if !wasEstablished && it.slots[bestSlot].established {
				added = true
			}
			continue
		}

		slot := it.findFreeOrWeakestSlot()
		if slot >= 0 {
			it.startSlot(slot, peak)
			matched[slot] = true
		}
	}

	for si := range it.slots {
		if matched[si] || !it.slots[si].active {
			continue
		}
		wasActive := it.slots[si].active
		it.decaySlot(cfg, si)
		if wasActive && !it.slots[si].active {
			removed = true
		}
	}

	return added, removed
}

func (it *instrumentTracker) updateSlot(cfg Config, idx int, peak spectralPeak) {
	s := &it.slots[idx]
	s.history = append(s.history, peak.signature)
	if len(s.history) > cfg.EstablishFrames {
		s.history = s.history[1:]
	}

	if len(s.history)%5 == 0 {
		var avg [NumBands]float64
		for _, h := range s.history {
			for i := 0; i < NumBands; i++ {
				avg[i] += h[i]
			}
		}
		for i := 0; i < NumBands; i++ {
			avg[i] /= float64(len(s.history))
		}
		s.signature = avg
	}

	s.centerFreq += (peak.centerFreq - s.centerFreq) * 0.3
	s.energy += (peak.energy - s.energy) * 0.3
	s.dominantBand = peak.dominantBand
	s.patternFrames++
	s.inactiveFrames = 0

	if s.established {
		s.confidence += 0.05
	} else {
		s.confidence += 0.1
	}
	if s.confidence > 1 {
		s.confidence = 1
	}
	if !s.established && s.patternFrames >= cfg.EstablishFrames {
		s.established = true
	}
}

func (it *instrumentTracker) startSlot(idx int, peak spectralPeak) {
	it.slots[idx] = trackedSlot{
		active:       true,
		signature:    peak.signature,
		centerFreq:   peak.centerFreq,
		dominantBand: peak.dominantBand,
		confidence:   0.3,
		energy:       peak.energy,
		patternFrames: 1,
		history:      [][NumBands]float64{peak.signature},
	}
}

func (it *instrumentTracker) decaySlot(cfg Config, idx int) {
	s := &it.slots[idx]
	if !s.active {
		return
	}
	s.inactiveFrames++
	s.energy *= 0.95
	if s.inactiveFrames > cfg.DecayStartFrames {
		s.confidence -= cfg.DecayRate
	}
	if s.confidence < cfg.MinConfidence {
		*s = trackedSlot{}
	}
}

// findFreeOrWeakestSlot returns an inactive slot index, or the index of
// the weakest established slot if all are occupied, or -1 when every
// slot is occupied and none is established.
func (it *instrumentTracker) findFreeOrWeakestSlot() int {
	for i := range it.slots {
		if !it.slots[i].active {
			return i
		}
	}
	weakest := -1
	for i := range it.slots {
		if !it.slots[i].established {
			continue
		}
		if weakest < 0 || it.slots[i].confidence < it.slots[weakest].confidence {
			weakest = i
		}
	}
	return weakest
}

// snapshot returns the public view of all active slots.
func (it *instrumentTracker) snapshot() []Instrument {
	var out []Instrument
	for _, s := range it.slots {
		if !s.active {
			continue
		}
		out = append(out, Instrument{
			Signature:    s.signature,
			CenterFreq:   s.centerFreq,
			DominantBand: s.dominantBand,
			Confidence:   s.confidence,
			Energy:       s.energy,
			Established:  s.established,
		})
	}
	return out
}
