// Package allpass provides the Schroeder all-pass diffusion filter.
package allpass

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-reverb/dsp/core"
	"github.com/cwbudde/algo-reverb/dsp/delay"
)

// AllPass is a Schroeder all-pass section:
//
//	w[n] = x[n] + g * w[n-D]
//	y[n] = w[n-D] - g * w[n]
//
// Its magnitude response is 1 at every frequency for |g| < 1; it only
// spreads energy in time. A fractional D is read with linear interpolation.
type AllPass struct {
	line  *delay.Line
	delay float64
	age   float64
	gain  float64
}

// New creates an all-pass filter able to hold delays up to maxDelaySamples.
func New(maxDelaySamples int) (*AllPass, error) {
	if maxDelaySamples <= 0 {
		return nil, fmt.Errorf("allpass max delay must be > 0: %d", maxDelaySamples)
	}

	line, err := delay.New(maxDelaySamples)
	if err != nil {
		return nil, fmt.Errorf("allpass: %w", err)
	}

	return &AllPass{line: line, delay: 1}, nil
}

// Prepare sets delay (in samples, may be fractional) and gain, and clears
// the delay buffer.
func (a *AllPass) Prepare(delaySamples, gain float64) error {
	if delaySamples < 1 || delaySamples > float64(a.line.Len()) || !core.IsFinite(delaySamples) {
		return fmt.Errorf("allpass delay must be in [1, %d] samples: %f", a.line.Len(), delaySamples)
	}
	if err := validateGain(gain); err != nil {
		return err
	}

	a.delay = delaySamples
	a.age = delaySamples - 1
	a.gain = gain
	a.line.Clear()

	return nil
}

// SetGain sets the all-pass coefficient, |g| < 1.
func (a *AllPass) SetGain(g float64) error {
	if err := validateGain(g); err != nil {
		return err
	}

	a.gain = g

	return nil
}

// ProcessSample runs one sample through the all-pass.
func (a *AllPass) ProcessSample(input float64) float64 {
	delayed := a.line.ReadInterpolated(a.age)
	current := input + delayed*a.gain
	a.line.Push(current)

	return delayed - current*a.gain
}

// Reset clears the delay buffer.
func (a *AllPass) Reset() {
	a.line.Reset()
}

// Delay returns the delay in samples.
func (a *AllPass) Delay() float64 { return a.delay }

// MaxDelay returns the largest delay in samples Prepare accepts.
func (a *AllPass) MaxDelay() int { return a.line.Len() }

// Gain returns the all-pass coefficient.
func (a *AllPass) Gain() float64 { return a.gain }

func validateGain(g float64) error {
	if math.Abs(g) >= 1 || !core.IsFinite(g) {
		return fmt.Errorf("allpass gain must be in (-1, 1): %f", g)
	}

	return nil
}
