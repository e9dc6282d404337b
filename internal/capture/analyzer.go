// SPDX-License-Identifier: MIT
package capture

import (
	"fmt"
	"math"
	"math/cmplx"
	"strings"
	"sync"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"

	"lightwave/pkg/bitint"
)

// WindowFunc selects the analysis window applied before the FFT.
type WindowFunc int

const (
	Hann WindowFunc = iota
	Hamming
	Blackman
	BlackmanNuttall
	Nuttall
	Lanczos
	BartlettHann
)

// Analyzer performs FFT analysis on fixed-size sample windows and keeps the
// latest magnitude spectrum for readers. All buffers are pre-allocated;
// Process never allocates. The magnitude buffer is guarded so the audio
// callback can write while the update loop reads.
type Analyzer struct {
	fftSize int
	scale   float64 // magnitude normalization to ~[0, 1] amplitude

	fft *fourier.FFT

	input  []float64
	coeffs []complex128
	window []float64

	mu        sync.RWMutex
	magnitude []float64
}

// NewAnalyzer creates an analyzer for fftSize-sample windows. fftSize must
// be a power of two. The output spectrum has fftSize/2 + 1 bins.
func NewAnalyzer(fftSize int, windowType WindowFunc) (*Analyzer, error) {
	if !bitint.IsPowerOfTwo(fftSize) {
		return nil, fmt.Errorf("fft size must be a power of 2, got %d", fftSize)
	}

	coeffs := make([]float64, fftSize)
	windowGain := applyWindow(coeffs, windowType)

	specLen := fftSize/2 + 1

	return &Analyzer{
		fftSize: fftSize,
		// Full-scale sine -> magnitude fftSize*gain/2, so 2/(N*gain)
		// brings magnitudes onto the same ~[0,1] scale the display
		// formula was tuned for.
		scale:     2.0 / (float64(fftSize) * windowGain),
		fft:       fourier.NewFFT(fftSize),
		input:     make([]float64, fftSize),
		coeffs:    make([]complex128, specLen),
		window:    coeffs,
		magnitude: make([]float64, specLen),
	}, nil
}

// SpectrumLen returns the number of magnitude bins produced.
func (a *Analyzer) SpectrumLen() int {
	return len(a.magnitude)
}

// Process windows the samples, runs the FFT and stores normalized
// magnitudes. Input shorter than the FFT size is zero padded.
func (a *Analyzer) Process(samples []int32) {
	const norm = 1.0 / float64(1<<31)

	for i := 0; i < a.fftSize; i++ {
		if i < len(samples) {
			a.input[i] = float64(samples[i]) * norm * a.window[i]
		} else {
			a.input[i] = 0
		}
	}

	a.fft.Coefficients(a.coeffs, a.input)

	a.mu.Lock()
	for i, c := range a.coeffs {
		a.magnitude[i] = cmplx.Abs(c) * a.scale
	}
	a.mu.Unlock()
}

// MagnitudesInto copies the latest magnitudes into dst without allocating.
// dst must have length fftSize/2 + 1.
func (a *Analyzer) MagnitudesInto(dst []float64) error {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if len(dst) != len(a.magnitude) {
		return fmt.Errorf("destination length %d does not match spectrum length %d", len(dst), len(a.magnitude))
	}
	copy(dst, a.magnitude)
	return nil
}

// FrequencyForBin returns the center frequency in Hz of a magnitude bin for
// the given sample rate.
func (a *Analyzer) FrequencyForBin(bin int, sampleRate float64) float64 {
	if bin < 0 || bin >= len(a.magnitude) {
		return 0
	}
	return float64(bin) * sampleRate / float64(a.fftSize)
}

// ParseWindowFunc converts a name (case-insensitive) to a WindowFunc.
// Unknown names return Hann and an error.
func ParseWindowFunc(name string) (WindowFunc, error) {
	switch strings.ToLower(name) {
	case "hann", "hanning", "":
		return Hann, nil
	case "hamming":
		return Hamming, nil
	case "blackman":
		return Blackman, nil
	case "blackmannuttall":
		return BlackmanNuttall, nil
	case "nuttall":
		return Nuttall, nil
	case "lanczos":
		return Lanczos, nil
	case "bartletthann":
		return BartlettHann, nil
	default:
		return Hann, fmt.Errorf("unknown FFT window function: %q", name)
	}
}

// applyWindow fills coeffs with the window coefficients and returns the
// window's coherent gain (mean coefficient), used for normalization.
func applyWindow(coeffs []float64, windowType WindowFunc) float64 {
	for i := range coeffs {
		coeffs[i] = 1.0
	}
	switch windowType {
	case Hamming:
		window.Hamming(coeffs)
	case Blackman:
		window.Blackman(coeffs)
	case BlackmanNuttall:
		window.BlackmanNuttall(coeffs)
	case Nuttall:
		window.Nuttall(coeffs)
	case Lanczos:
		window.Lanczos(coeffs)
	case BartlettHann:
		window.BartlettHann(coeffs)
	default:
		window.Hann(coeffs)
	}

	sum := 0.0
	for _, c := range coeffs {
		sum += c
	}
	gain := sum / float64(len(coeffs))
	if gain <= 0 || math.IsNaN(gain) {
		gain = 1
	}
	return gain
}
