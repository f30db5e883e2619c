// Package response measures the frequency response of a streaming processor
// from its impulse response.
package response

import (
	"errors"
	"fmt"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-reverb/dsp/core"
)

// ErrEmptyIR is returned when an empty impulse response is analyzed.
var ErrEmptyIR = errors.New("response: impulse response is empty")

// ImpulseResponse feeds a unit impulse followed by zeros through p and
// returns the first n output samples.
func ImpulseResponse(p core.SampleProcessor, n int) []float64 {
	if n <= 0 {
		return nil
	}

	out := make([]float64, n)
	out[0] = p.ProcessSample(1)
	for i := 1; i < n; i++ {
		out[i] = p.ProcessSample(0)
	}

	return out
}

// Spectrum returns bins 0..N/2 of the DFT of ir, zero-padded to the next
// power of two N.
func Spectrum(ir []float64) ([]complex128, error) {
	if len(ir) == 0 {
		return nil, ErrEmptyIR
	}

	n := core.NextPowerOfTwo(len(ir))

	plan, err := algofft.NewPlan64(n)
	if err != nil {
		return nil, fmt.Errorf("response: failed to create FFT plan: %w", err)
	}

	buf := make([]complex128, n)
	for i, v := range ir {
		buf[i] = complex(v, 0)
	}

	if err := plan.Forward(buf, buf); err != nil {
		return nil, fmt.Errorf("response: forward FFT: %w", err)
	}

	return buf[:n/2+1], nil
}

// Magnitude returns |H[k]| for bins 0..N/2 of ir's spectrum.
func Magnitude(ir []float64) ([]float64, error) {
	bins, err := Spectrum(ir)
	if err != nil {
		return nil, err
	}

	re, im := split(bins)
	out := make([]float64, len(bins))
	vecmath.Magnitude(out, re, im)

	return out, nil
}

// PowerDB returns 10*log10(|H[k]|²) for bins 0..N/2 of ir's spectrum.
func PowerDB(ir []float64) ([]float64, error) {
	bins, err := Spectrum(ir)
	if err != nil {
		return nil, err
	}

	re, im := split(bins)
	out := make([]float64, len(bins))
	vecmath.Power(out, re, im)

	for i, p := range out {
		out[i] = core.LinearPowerToDB(p)
	}

	return out, nil
}

// BinFrequency returns the center frequency in Hz of bin k for an analysis
// of irLen samples at sampleRate.
func BinFrequency(k, irLen int, sampleRate float64) float64 {
	return float64(k) * sampleRate / float64(core.NextPowerOfTwo(irLen))
}

func split(bins []complex128) (re, im []float64) {
	re = make([]float64, len(bins))
	im = make([]float64, len(bins))
	for i, c := range bins {
		re[i] = real(c)
		im[i] = imag(c)
	}
	return re, im
}
