package lfo

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-reverb/dsp/core"
)

// Waveform selects the oscillator shape. The set is closed.
type Waveform int

const (
	// Sine produces sin(2π·phase).
	Sine Waveform = iota
	// Triangle produces 2·|2·phase−1| − 1: +1 at phase 0, −1 at phase 0.5.
	Triangle
	// Sawtooth produces 2·phase − 1, a rising ramp from −1.
	Sawtooth
)

// String returns the waveform name.
func (w Waveform) String() string {
	switch w {
	case Sine:
		return "sine"
	case Triangle:
		return "triangle"
	case Sawtooth:
		return "sawtooth"
	default:
		return fmt.Sprintf("Waveform(%d)", int(w))
	}
}

func (w Waveform) valid() bool {
	return w >= Sine && w <= Sawtooth
}

// Oscillator is a phase-accumulator LFO with output bounded to [−1, 1].
// Phase lives in [0, 1); a negative frequency sweeps it backwards.
type Oscillator struct {
	waveform   Waveform
	frequency  float64
	sampleRate float64
	phase      float64
	increment  float64
}

// New creates an oscillator starting at phase 0.
func New(w Waveform, frequencyHz, sampleRate float64) (*Oscillator, error) {
	if !w.valid() {
		return nil, fmt.Errorf("lfo waveform unknown: %v", w)
	}

	o := &Oscillator{waveform: w}
	if err := o.Prepare(frequencyHz, sampleRate); err != nil {
		return nil, err
	}

	return o, nil
}

// Prepare updates frequency and sample rate. The current phase is kept.
func (o *Oscillator) Prepare(frequencyHz, sampleRate float64) error {
	if sampleRate <= 0 || !core.IsFinite(sampleRate) {
		return fmt.Errorf("lfo sample rate must be > 0 and finite: %f", sampleRate)
	}
	if !core.IsFinite(frequencyHz) {
		return fmt.Errorf("lfo frequency must be finite: %f", frequencyHz)
	}

	o.frequency = frequencyHz
	o.sampleRate = sampleRate
	o.increment = frequencyHz / sampleRate

	return nil
}

// SetFrequency changes the frequency at the current sample rate.
func (o *Oscillator) SetFrequency(frequencyHz float64) error {
	return o.Prepare(frequencyHz, o.sampleRate)
}

// Advance returns the waveform value at the current phase, then moves the
// phase forward by one sample.
func (o *Oscillator) Advance() float64 {
	out := o.value()

	p := o.phase + o.increment
	p -= math.Floor(p)
	if p >= 1 {
		// p was a tiny negative number that rounded up to 1.
		p = 0
	}
	o.phase = p

	return out
}

// SetPhase sets the phase, wrapped into [0, 1).
func (o *Oscillator) SetPhase(phase float64) {
	p := phase - math.Floor(phase)
	if p >= 1 || !core.IsFinite(p) {
		p = 0
	}
	o.phase = p
}

// Reset rewinds the phase to 0.
func (o *Oscillator) Reset() {
	o.phase = 0
}

// Phase returns the current phase in [0, 1).
func (o *Oscillator) Phase() float64 { return o.phase }

// Frequency returns the frequency in Hz.
func (o *Oscillator) Frequency() float64 { return o.frequency }

// SampleRate returns the sample rate in Hz.
func (o *Oscillator) SampleRate() float64 { return o.sampleRate }

// Waveform returns the waveform shape.
func (o *Oscillator) Waveform() Waveform { return o.waveform }

func (o *Oscillator) value() float64 {
	switch o.waveform {
	case Triangle:
		return 2*math.Abs(2*o.phase-1) - 1
	case Sawtooth:
		return 2*o.phase - 1
	default:
		return math.Sin(2 * math.Pi * o.phase)
	}
}
