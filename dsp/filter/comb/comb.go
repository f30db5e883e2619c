// Package comb provides a feedback comb filter with optional damping in the
// feedback path.
package comb

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-reverb/dsp/core"
	"github.com/cwbudde/algo-reverb/dsp/delay"
	"github.com/cwbudde/algo-reverb/dsp/filter/onepole"
)

// Comb is a feedback comb filter:
//
//	y[n] = w[n-D]
//	w[n] = x[n] + g * f(y[n])
//
// where D is the delay in samples, g the feedback gain and f either the
// identity or, when damping is enabled, the damping low-pass
//
//	f[n] = y[n] + damping*(1-g) * f[n-1]
//
// The output is the delayed, undamped signal. Resonance peaks are spaced at
// sampleRate/D; the loop is stable for |g| < 1. A fractional D is read with
// linear interpolation, which gently low-passes the loop even without
// damping.
type Comb struct {
	line    *delay.Line
	damper  *onepole.LowPass
	damped  bool
	delay   float64
	age     float64
	gain    float64
	damping float64
}

// New creates a comb filter able to hold delays up to maxDelaySamples.
func New(maxDelaySamples int, damped bool) (*Comb, error) {
	if maxDelaySamples <= 0 {
		return nil, fmt.Errorf("comb max delay must be > 0: %d", maxDelaySamples)
	}

	line, err := delay.New(maxDelaySamples)
	if err != nil {
		return nil, fmt.Errorf("comb: %w", err)
	}

	c := &Comb{
		line:   line,
		damper: onepole.New(),
		damped: damped,
		delay:  1,
	}
	c.updateDamper()

	return c, nil
}

// Prepare sets delay (in samples, may be fractional) and feedback gain, and
// clears the delay buffer and damping state.
func (c *Comb) Prepare(delaySamples, gain float64) error {
	if err := c.validateDelay(delaySamples); err != nil {
		return err
	}
	if err := validateGain(gain); err != nil {
		return err
	}

	c.delay = delaySamples
	c.age = delaySamples - 1
	c.gain = gain
	c.updateDamper()
	c.line.Clear()
	c.damper.Reset()

	return nil
}

// SetGain sets the feedback gain, |g| < 1. Buffer contents are kept.
func (c *Comb) SetGain(g float64) error {
	if err := validateGain(g); err != nil {
		return err
	}

	c.gain = g
	c.updateDamper()

	return nil
}

// SetDamping sets the damping amount in [0, 1). It only affects the output
// of combs created with damping enabled.
func (c *Comb) SetDamping(d float64) error {
	if d < 0 || d >= 1 || !core.IsFinite(d) {
		return fmt.Errorf("comb damping must be in [0, 1): %f", d)
	}

	c.damping = d
	c.updateDamper()

	return nil
}

// ProcessSample runs one sample through the comb.
func (c *Comb) ProcessSample(input float64) float64 {
	yn := c.line.ReadInterpolated(c.age)

	feedback := yn
	if c.damped {
		feedback = c.damper.ProcessSample(yn)
	}

	c.line.Push(input + c.gain*feedback)

	return yn
}

// Reset clears delay and damping state.
func (c *Comb) Reset() {
	c.line.Reset()
	c.damper.Reset()
}

// Delay returns the delay in samples.
func (c *Comb) Delay() float64 { return c.delay }

// MaxDelay returns the largest delay in samples Prepare accepts.
func (c *Comb) MaxDelay() int { return c.line.Len() }

// Gain returns the feedback gain.
func (c *Comb) Gain() float64 { return c.gain }

// Damping returns the damping amount.
func (c *Comb) Damping() float64 { return c.damping }

// Damped reports whether the feedback path is damped.
func (c *Comb) Damped() bool { return c.damped }

func (c *Comb) updateDamper() {
	c.damper.SetCoefficients(1, c.damping*(1-c.gain))
}

func (c *Comb) validateDelay(delaySamples float64) error {
	if delaySamples < 1 || delaySamples > float64(c.line.Len()) || !core.IsFinite(delaySamples) {
		return fmt.Errorf("comb delay must be in [1, %d] samples: %f", c.line.Len(), delaySamples)
	}

	return nil
}

func validateGain(g float64) error {
	if math.Abs(g) >= 1 || !core.IsFinite(g) {
		return fmt.Errorf("comb gain must be in (-1, 1): %f", g)
	}

	return nil
}
