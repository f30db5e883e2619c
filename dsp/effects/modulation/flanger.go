package modulation

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-reverb/dsp/core"
	"github.com/cwbudde/algo-reverb/dsp/delay"
	"github.com/cwbudde/algo-reverb/dsp/lfo"
)

const (
	defaultFlangerRateHz           = 0.25
	defaultFlangerDepthSeconds     = 0.0015
	defaultFlangerBaseDelaySeconds = 0.001
	defaultFlangerFeedback         = 0.25
	defaultFlangerMix              = 0.5

	minFlangerDelaySeconds = 0.0001 // 0.1 ms
	maxFlangerDelaySeconds = 0.0100 // 10 ms
	maxFlangerFeedback     = 0.99
)

// FlangerOption mutates flanger construction parameters.
type FlangerOption func(*flangerConfig) error

type flangerConfig struct {
	waveform     lfo.Waveform
	rateHz       float64
	depthSeconds float64
	baseDelay    float64
	feedback     float64
	mix          float64
}

// WithFlangerWaveform selects the LFO shape. The default is a sine.
func WithFlangerWaveform(w lfo.Waveform) FlangerOption {
	return func(cfg *flangerConfig) error {
		cfg.waveform = w
		return nil
	}
}

// WithFlangerRateHz sets modulation speed in Hz.
func WithFlangerRateHz(rateHz float64) FlangerOption {
	return func(cfg *flangerConfig) error {
		cfg.rateHz = rateHz
		return validateFlangerRate(rateHz)
	}
}

// WithFlangerDepthSeconds sets modulation depth in seconds.
func WithFlangerDepthSeconds(depth float64) FlangerOption {
	return func(cfg *flangerConfig) error {
		cfg.depthSeconds = depth
		return validateFlangerDepth(depth)
	}
}

// WithFlangerBaseDelaySeconds sets base delay in seconds.
func WithFlangerBaseDelaySeconds(baseDelay float64) FlangerOption {
	return func(cfg *flangerConfig) error {
		cfg.baseDelay = baseDelay
		return validateFlangerBaseDelay(baseDelay)
	}
}

// WithFlangerFeedback sets feedback amount in [-0.99, 0.99].
func WithFlangerFeedback(feedback float64) FlangerOption {
	return func(cfg *flangerConfig) error {
		cfg.feedback = feedback
		return validateFlangerFeedback(feedback)
	}
}

// WithFlangerMix sets wet amount in [0, 1].
func WithFlangerMix(mix float64) FlangerOption {
	return func(cfg *flangerConfig) error {
		cfg.mix = mix
		return validateMix("flanger", mix)
	}
}

// Flanger is a short modulated delay with feedback and wet/dry mix. The
// delay sweeps between baseDelay and baseDelay+depth, never below one
// sample.
type Flanger struct {
	sampleRate float64
	depth      float64
	baseDelay  float64
	feedback   float64
	mix        float64

	osc      *lfo.Oscillator
	line     *delay.Line
	maxDelay int
}

// NewFlanger creates a flanger with practical defaults and optional overrides.
func NewFlanger(sampleRate float64, opts ...FlangerOption) (*Flanger, error) {
	if err := validateEffectSampleRate("flanger", sampleRate); err != nil {
		return nil, err
	}

	cfg := flangerConfig{
		waveform:     lfo.Sine,
		rateHz:       defaultFlangerRateHz,
		depthSeconds: defaultFlangerDepthSeconds,
		baseDelay:    defaultFlangerBaseDelaySeconds,
		feedback:     defaultFlangerFeedback,
		mix:          defaultFlangerMix,
	}

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	osc, err := lfo.New(cfg.waveform, cfg.rateHz, sampleRate)
	if err != nil {
		return nil, err
	}

	f := &Flanger{
		sampleRate: sampleRate,
		depth:      cfg.depthSeconds,
		baseDelay:  cfg.baseDelay,
		feedback:   cfg.feedback,
		mix:        cfg.mix,
		osc:        osc,
	}
	if err := f.resize(sampleRate, f.baseDelay, f.depth); err != nil {
		return nil, err
	}

	return f, nil
}

// SetSampleRate updates sample rate.
func (f *Flanger) SetSampleRate(sampleRate float64) error {
	if err := validateEffectSampleRate("flanger", sampleRate); err != nil {
		return err
	}
	if err := f.resize(sampleRate, f.baseDelay, f.depth); err != nil {
		return err
	}

	return f.osc.Prepare(f.osc.Frequency(), sampleRate)
}

// SetRateHz sets modulation speed in Hz.
func (f *Flanger) SetRateHz(rateHz float64) error {
	if err := validateFlangerRate(rateHz); err != nil {
		return err
	}

	return f.osc.SetFrequency(rateHz)
}

// SetDepthSeconds sets modulation depth in seconds. An invalid base+depth
// combination leaves the flanger unchanged.
func (f *Flanger) SetDepthSeconds(depth float64) error {
	if err := validateFlangerDepth(depth); err != nil {
		return err
	}

	return f.resize(f.sampleRate, f.baseDelay, depth)
}

// SetBaseDelaySeconds sets base delay in seconds. An invalid base+depth
// combination leaves the flanger unchanged.
func (f *Flanger) SetBaseDelaySeconds(baseDelay float64) error {
	if err := validateFlangerBaseDelay(baseDelay); err != nil {
		return err
	}

	return f.resize(f.sampleRate, baseDelay, f.depth)
}

// SetFeedback sets feedback amount in [-0.99, 0.99].
func (f *Flanger) SetFeedback(feedback float64) error {
	if err := validateFlangerFeedback(feedback); err != nil {
		return err
	}

	f.feedback = feedback

	return nil
}

// SetMix sets wet amount in [0, 1].
func (f *Flanger) SetMix(mix float64) error {
	if err := validateMix("flanger", mix); err != nil {
		return err
	}

	f.mix = mix

	return nil
}

// Reset clears delay and LFO state.
func (f *Flanger) Reset() {
	f.line.Reset()
	f.osc.Reset()
}

// ProcessSample processes one sample.
func (f *Flanger) ProcessSample(sample float64) float64 {
	mod := 0.5 * (1 + f.osc.Advance())

	delaySamples := (f.baseDelay + f.depth*mod) * f.sampleRate
	delaySamples = core.Clamp(delaySamples, 1, float64(f.maxDelay))

	// The current input is not pushed yet, so n samples of delay is age n-1.
	delayed := f.line.ReadInterpolated(delaySamples - 1)
	f.line.Push(sample + delayed*f.feedback)

	return sample*(1-f.mix) + delayed*f.mix
}

// ProcessInPlace applies flanging to buf in place.
func (f *Flanger) ProcessInPlace(buf []float64) {
	for i := range buf {
		buf[i] = f.ProcessSample(buf[i])
	}
}

// SampleRate returns sample rate in Hz.
func (f *Flanger) SampleRate() float64 { return f.sampleRate }

// RateHz returns LFO speed in Hz.
func (f *Flanger) RateHz() float64 { return f.osc.Frequency() }

// DepthSeconds returns modulation depth in seconds.
func (f *Flanger) DepthSeconds() float64 { return f.depth }

// BaseDelaySeconds returns base delay in seconds.
func (f *Flanger) BaseDelaySeconds() float64 { return f.baseDelay }

// Feedback returns feedback amount in [-0.99, 0.99].
func (f *Flanger) Feedback() float64 { return f.feedback }

// Mix returns wet amount in [0, 1].
func (f *Flanger) Mix() float64 { return f.mix }

// Waveform returns the LFO shape.
func (f *Flanger) Waveform() lfo.Waveform { return f.osc.Waveform() }

// resize commits sample rate, base delay and depth together, growing the
// line when the longest delay no longer fits.
func (f *Flanger) resize(sampleRate, baseDelay, depth float64) error {
	if baseDelay+depth > maxFlangerDelaySeconds {
		return fmt.Errorf("flanger max delay exceeds %f seconds: base=%f depth=%f",
			maxFlangerDelaySeconds, baseDelay, depth)
	}

	maxDelay := max(int(math.Ceil((baseDelay+depth)*sampleRate)), 1)

	if f.line == nil || f.line.Len() <= maxDelay {
		line, err := delay.New(maxDelay + 1)
		if err != nil {
			return err
		}
		f.line = line
	}

	f.sampleRate = sampleRate
	f.baseDelay = baseDelay
	f.depth = depth
	f.maxDelay = maxDelay

	return nil
}

func validateFlangerRate(rateHz float64) error {
	if rateHz <= 0 || !core.IsFinite(rateHz) {
		return fmt.Errorf("flanger rate must be > 0 and finite: %f", rateHz)
	}
	return nil
}

func validateFlangerDepth(depth float64) error {
	if depth < 0 || !core.IsFinite(depth) {
		return fmt.Errorf("flanger depth must be >= 0 and finite: %f", depth)
	}
	return nil
}

func validateFlangerBaseDelay(baseDelay float64) error {
	if baseDelay < minFlangerDelaySeconds || baseDelay > maxFlangerDelaySeconds || math.IsNaN(baseDelay) {
		return fmt.Errorf("flanger base delay must be in [%f, %f]: %f",
			minFlangerDelaySeconds, maxFlangerDelaySeconds, baseDelay)
	}
	return nil
}

func validateFlangerFeedback(feedback float64) error {
	if feedback < -maxFlangerFeedback || feedback > maxFlangerFeedback || math.IsNaN(feedback) {
		return fmt.Errorf("flanger feedback must be in [-0.99, 0.99]: %f", feedback)
	}
	return nil
}
