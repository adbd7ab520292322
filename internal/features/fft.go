package features

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// spectrumAnalyzer owns the pre-computed Hann window and per-band bin
// ranges so no per-frame allocation is needed once built.
type spectrumAnalyzer struct {
	fftSize    int
	sampleRate float64
	window     []float64
	bandBins   [NumBands][2]int // [start, end) bin index per band

	fftInput []complex128
	magnitude []float64
}

func newSpectrumAnalyzer(cfg Config) *spectrumAnalyzer {
	n := cfg.FFTSize
	window := make([]float64, n)
	for i := 0; i < n; i++ {
		window[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
	}

	sa := &spectrumAnalyzer{
		fftSize:    n,
		sampleRate: cfg.SampleRate,
		window:     window,
		fftInput:   make([]complex128, n),
		magnitude:  make([]float64, n/2),
	}

	binHz := cfg.SampleRate / float64(n)
	for i := 0; i < NumBands; i++ {
		lo := BandEdges[i]
		hi := BandEdges[i+1]
		start := int(lo / binHz)
		end := int(hi / binHz)
		if start < 0 {
			start = 0
		}
		if end > n/2 {
			end = n / 2
		}
		if end <= start {
			end = start + 1
		}
		sa.bandBins[i] = [2]int{start, end}
	}

	return sa
}

// magnitudes windows the most recent fftSize samples (zero-padding on
// underrun), runs a forward FFT, and returns the bin magnitudes
// (length fftSize/2). The returned slice is owned by the analyzer and
// is overwritten on the next call.
func (sa *spectrumAnalyzer) magnitudes(samples []float32) []float64 {
	n := sa.fftSize
	offset := 0
	if len(samples) > n {
		offset = len(samples) - n
	}

	var mean float64
	count := len(samples) - offset
	for i := offset; i < len(samples); i++ {
		mean += float64(samples[i])
	}
	if count > 0 {
		mean /= float64(count)
	}

	for i := 0; i < n; i++ {
		idx := offset + i
		var s float64
		if idx < len(samples) {
			s = float64(samples[idx]) - mean
		}
		sa.fftInput[i] = complex(s*sa.window[i], 0)
	}

	out := fft.FFT(sa.fftInput)
	for i := range sa.magnitude {
		sa.magnitude[i] = cmplx.Abs(out[i])
	}
	return sa.magnitude
}

// bandEnergy sums |X[k]|^2 over band i's bin range and returns the
// average, converted to a pseudo-dB figure mapped to [0,1].
func (sa *spectrumAnalyzer) bandEnergy(mags []float64, band int) float64 {
	start, end := sa.bandBins[band][0], sa.bandBins[band][1]
	var sum float64
	for k := start; k < end; k++ {
		sum += mags[k] * mags[k]
	}
	avg := sum / float64(end-start)
	db := 10 * math.Log10(avg+1e-10)
	// map [-60, 0] dB -> [0, 1]
	v := (db + 60) / 60
	return clamp01(v)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
