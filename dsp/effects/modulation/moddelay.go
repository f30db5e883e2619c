package modulation

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-reverb/dsp/core"
	"github.com/cwbudde/algo-reverb/dsp/delay"
	"github.com/cwbudde/algo-reverb/dsp/lfo"
)

const (
	modDelayCapacityMs = 100.0
	modWidthRatio      = 0.1
	defaultModDepth    = 1.0
)

// ModulatedDelay is a delay line whose read position swings around a base
// delay under control of an LFO.
//
// The read age in samples follows:
//
//	age = (delayMs + lfo * depth * 0.1 * delayMs) * sampleRate / 1000
//
// Callers drive it as Advance (read) followed by Push (write), so a read
// at age 0 returns the sample pushed on the previous step. The buffer holds
// 100 ms of audio; delays whose swing would leave it are rejected when set.
type ModulatedDelay struct {
	line *delay.Line
	osc  *lfo.Oscillator

	sampleRate float64
	delayMs    float64
	widthMs    float64
	depth      float64
}

// NewModulatedDelay creates a modulated delay with depth 1.
func NewModulatedDelay(delayMs, modFreqHz float64, w lfo.Waveform, sampleRate float64) (*ModulatedDelay, error) {
	if err := validateEffectSampleRate("modulated delay", sampleRate); err != nil {
		return nil, err
	}

	osc, err := lfo.New(w, modFreqHz, sampleRate)
	if err != nil {
		return nil, err
	}

	line, err := delay.New(modDelayCapacity(sampleRate))
	if err != nil {
		return nil, err
	}

	m := &ModulatedDelay{
		line:       line,
		osc:        osc,
		sampleRate: sampleRate,
		depth:      defaultModDepth,
	}
	if err := m.SetDelay(delayMs); err != nil {
		return nil, err
	}

	return m, nil
}

// Prepare reconfigures delay, LFO rate and sample rate, clears the buffer and
// rewinds the LFO. The buffer is reallocated only when the sample rate
// changes. On error nothing is modified.
func (m *ModulatedDelay) Prepare(delayMs, modFreqHz, sampleRate float64) error {
	if err := validateEffectSampleRate("modulated delay", sampleRate); err != nil {
		return err
	}

	capacity := core.NextPowerOfTwo(modDelayCapacity(sampleRate))
	if err := checkSwing(delayMs, m.depth, sampleRate, capacity); err != nil {
		return err
	}
	if !core.IsFinite(modFreqHz) {
		return fmt.Errorf("modulated delay lfo frequency must be finite: %f", modFreqHz)
	}

	if sampleRate != m.sampleRate {
		line, err := delay.New(capacity)
		if err != nil {
			return err
		}
		m.line = line
	} else {
		m.line.Reset()
	}

	if err := m.osc.Prepare(modFreqHz, sampleRate); err != nil {
		return err
	}
	m.osc.Reset()

	m.sampleRate = sampleRate
	m.delayMs = delayMs
	m.widthMs = modWidthRatio * delayMs

	return nil
}

// SetDelay sets the base delay in milliseconds. The modulation width follows
// as a tenth of it.
func (m *ModulatedDelay) SetDelay(delayMs float64) error {
	if err := checkSwing(delayMs, m.depth, m.sampleRate, m.line.Len()); err != nil {
		return err
	}

	m.delayMs = delayMs
	m.widthMs = modWidthRatio * delayMs

	return nil
}

// SetDepth scales the modulation width. 0 disables modulation, 1 swings the
// delay by ±10%.
func (m *ModulatedDelay) SetDepth(depth float64) error {
	if depth < 0 || !core.IsFinite(depth) {
		return fmt.Errorf("modulated delay depth must be >= 0 and finite: %f", depth)
	}
	if err := checkSwing(m.delayMs, depth, m.sampleRate, m.line.Len()); err != nil {
		return err
	}

	m.depth = depth

	return nil
}

// SetLFOFreq changes the modulation rate without touching the phase.
func (m *ModulatedDelay) SetLFOFreq(modFreqHz float64) error {
	return m.osc.SetFrequency(modFreqHz)
}

// Advance steps the LFO and returns the buffer read at the modulated age.
func (m *ModulatedDelay) Advance() float64 {
	mod := m.osc.Advance() * modSwing(m.depth, m.widthMs)
	return m.line.ReadInterpolated(core.MsToSamples(m.delayMs+mod, m.sampleRate))
}

// Push writes one sample into the buffer.
func (m *ModulatedDelay) Push(sample float64) {
	m.line.Push(sample)
}

// Clear zero-fills the buffer. The LFO keeps running.
func (m *ModulatedDelay) Clear() {
	m.line.Clear()
}

// Reset clears the buffer and rewinds the LFO.
func (m *ModulatedDelay) Reset() {
	m.line.Reset()
	m.osc.Reset()
}

// DelayMs returns the base delay in milliseconds.
func (m *ModulatedDelay) DelayMs() float64 { return m.delayMs }

// WidthMs returns the modulation width in milliseconds before depth scaling.
func (m *ModulatedDelay) WidthMs() float64 { return m.widthMs }

// Depth returns the modulation depth.
func (m *ModulatedDelay) Depth() float64 { return m.depth }

// LFOFreq returns the modulation rate in Hz.
func (m *ModulatedDelay) LFOFreq() float64 { return m.osc.Frequency() }

// SampleRate returns the sample rate in Hz.
func (m *ModulatedDelay) SampleRate() float64 { return m.sampleRate }

// Capacity returns the buffer length in samples.
func (m *ModulatedDelay) Capacity() int { return m.line.Len() }

func modDelayCapacity(sampleRate float64) int {
	return max(1, int(math.Ceil(core.MsToSamples(modDelayCapacityMs, sampleRate))))
}

// modSwing is the peak excursion in milliseconds. Advance and checkSwing
// both use it so the checked bounds hold bit for bit at run time.
func modSwing(depth, widthMs float64) float64 {
	return depth * widthMs
}

// checkSwing keeps every read age inside [0, capacity-2], leaving room for
// the upper interpolation neighbour.
func checkSwing(delayMs, depth, sampleRate float64, capacity int) error {
	if delayMs < 0 || !core.IsFinite(delayMs) {
		return fmt.Errorf("modulated delay must be >= 0 and finite: %f", delayMs)
	}

	swing := modSwing(depth, modWidthRatio*delayMs)
	lo := core.MsToSamples(delayMs-swing, sampleRate)
	hi := core.MsToSamples(delayMs+swing, sampleRate)

	if lo < 0 {
		return fmt.Errorf("modulated delay swing goes below zero: delay=%f depth=%f", delayMs, depth)
	}
	if hi > float64(capacity-2) {
		return fmt.Errorf("modulated delay %f ms (depth %f) exceeds buffer of %d samples",
			delayMs, depth, capacity)
	}

	return nil
}
