package modulation

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-reverb/dsp/lfo"
)

const defaultModAllPassGain = 0.5

// ModulatedAllPass is a Schroeder all-pass whose delay is a ModulatedDelay.
// Slow modulation smears the fixed echo pattern of a static all-pass.
//
// The read happens before the write, so a delay of D samples gives a loop
// of D+1 samples. At zero depth it matches allpass.AllPass prepared with
// delay D+1.
type ModulatedAllPass struct {
	delay *ModulatedDelay
	gain  float64
}

// NewModulatedAllPass creates a modulated all-pass with gain 0.5.
func NewModulatedAllPass(delayMs, modFreqHz float64, w lfo.Waveform, sampleRate float64) (*ModulatedAllPass, error) {
	d, err := NewModulatedDelay(delayMs, modFreqHz, w, sampleRate)
	if err != nil {
		return nil, err
	}

	return &ModulatedAllPass{delay: d, gain: defaultModAllPassGain}, nil
}

// Prepare reconfigures the underlying delay. See ModulatedDelay.Prepare.
func (a *ModulatedAllPass) Prepare(delayMs, modFreqHz, sampleRate float64) error {
	return a.delay.Prepare(delayMs, modFreqHz, sampleRate)
}

// SetGain sets the all-pass coefficient; |g| must stay below 1.
func (a *ModulatedAllPass) SetGain(g float64) error {
	if math.IsNaN(g) || math.Abs(g) >= 1 {
		return fmt.Errorf("modulated allpass gain must be in (-1, 1): %f", g)
	}

	a.gain = g

	return nil
}

// SetDelay sets the base delay in milliseconds.
func (a *ModulatedAllPass) SetDelay(delayMs float64) error {
	return a.delay.SetDelay(delayMs)
}

// SetDepth scales the modulation width.
func (a *ModulatedAllPass) SetDepth(depth float64) error {
	return a.delay.SetDepth(depth)
}

// SetLFOFreq changes the modulation rate.
func (a *ModulatedAllPass) SetLFOFreq(modFreqHz float64) error {
	return a.delay.SetLFOFreq(modFreqHz)
}

// ProcessSample filters one sample.
func (a *ModulatedAllPass) ProcessSample(input float64) float64 {
	delayed := a.delay.Advance()
	current := input + delayed*a.gain
	a.delay.Push(current)

	return delayed - current*a.gain
}

// Reset clears the buffer and rewinds the LFO.
func (a *ModulatedAllPass) Reset() {
	a.delay.Reset()
}

// Gain returns the all-pass coefficient.
func (a *ModulatedAllPass) Gain() float64 { return a.gain }

// Delay exposes the underlying modulated delay.
func (a *ModulatedAllPass) Delay() *ModulatedDelay { return a.delay }
