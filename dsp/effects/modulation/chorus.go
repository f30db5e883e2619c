package modulation

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-reverb/dsp/core"
	"github.com/cwbudde/algo-reverb/dsp/delay"
	"github.com/cwbudde/algo-reverb/dsp/lfo"
)

const (
	defaultChorusSpeedHz      = 0.35
	defaultChorusDepthSeconds = 0.003
	defaultChorusBaseSeconds  = 0.018
	defaultChorusMix          = 0.18
	defaultChorusStages       = 3
	minChorusDelaySeconds     = 0.001
	maxChorusStages           = 16
)

// ChorusOption mutates chorus construction parameters.
type ChorusOption func(*chorusConfig) error

type chorusConfig struct {
	speedHz      float64
	depthSeconds float64
	baseDelay    float64
	mix          float64
	stages       int
}

func defaultChorusConfig() chorusConfig {
	return chorusConfig{
		speedHz:      defaultChorusSpeedHz,
		depthSeconds: defaultChorusDepthSeconds,
		baseDelay:    defaultChorusBaseSeconds,
		mix:          defaultChorusMix,
		stages:       defaultChorusStages,
	}
}

// WithChorusSpeedHz sets the LFO rate in Hz.
func WithChorusSpeedHz(speedHz float64) ChorusOption {
	return func(cfg *chorusConfig) error {
		if err := validateChorusSpeed(speedHz); err != nil {
			return err
		}
		cfg.speedHz = speedHz
		return nil
	}
}

// WithChorusDepth sets the modulation depth in seconds.
func WithChorusDepth(depth float64) ChorusOption {
	return func(cfg *chorusConfig) error {
		if err := validateChorusDepth(depth); err != nil {
			return err
		}
		cfg.depthSeconds = depth
		return nil
	}
}

// WithChorusBaseDelay sets the base delay in seconds.
func WithChorusBaseDelay(baseDelay float64) ChorusOption {
	return func(cfg *chorusConfig) error {
		if err := validateChorusBaseDelay(baseDelay); err != nil {
			return err
		}
		cfg.baseDelay = baseDelay
		return nil
	}
}

// WithChorusMix sets the wet amount in [0, 1].
func WithChorusMix(mix float64) ChorusOption {
	return func(cfg *chorusConfig) error {
		if err := validateMix("chorus", mix); err != nil {
			return err
		}
		cfg.mix = mix
		return nil
	}
}

// WithChorusStages sets the number of voices.
func WithChorusStages(stages int) ChorusOption {
	return func(cfg *chorusConfig) error {
		if err := validateChorusStages(stages); err != nil {
			return err
		}
		cfg.stages = stages
		return nil
	}
}

// Chorus is a multi-voice modulated-delay chorus.
//
// Every voice reads one shared delay line at
//
//	d(t) = baseDelay + depth * 0.5 * (1 + sin(2π(phase + i/stages)))
//
// through cubic Hermite interpolation, and the voices are averaged.
type Chorus struct {
	sampleRate       float64
	speedHz          float64
	depthSeconds     float64
	baseDelaySeconds float64
	mix              float64
	stages           int

	voices   [maxChorusStages]*lfo.Oscillator
	line     *delay.Line
	maxDelay int
}

// NewChorus creates a chorus with musical defaults and optional overrides.
func NewChorus(sampleRate float64, opts ...ChorusOption) (*Chorus, error) {
	if err := validateEffectSampleRate("chorus", sampleRate); err != nil {
		return nil, err
	}

	cfg := defaultChorusConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	c := &Chorus{
		sampleRate:       sampleRate,
		speedHz:          cfg.speedHz,
		depthSeconds:     cfg.depthSeconds,
		baseDelaySeconds: cfg.baseDelay,
		mix:              cfg.mix,
		stages:           cfg.stages,
	}

	for i := range c.voices {
		osc, err := lfo.New(lfo.Sine, c.speedHz, sampleRate)
		if err != nil {
			return nil, err
		}
		c.voices[i] = osc
	}

	if err := c.reconfigureDelayLine(); err != nil {
		return nil, err
	}
	c.Reset()

	return c, nil
}

// SetSampleRate updates the sample rate.
func (c *Chorus) SetSampleRate(sampleRate float64) error {
	if err := validateEffectSampleRate("chorus", sampleRate); err != nil {
		return err
	}

	c.sampleRate = sampleRate
	for _, osc := range c.voices {
		if err := osc.Prepare(c.speedHz, sampleRate); err != nil {
			return err
		}
	}

	return c.reconfigureDelayLine()
}

// SetSpeedHz updates the LFO rate.
func (c *Chorus) SetSpeedHz(speedHz float64) error {
	if err := validateChorusSpeed(speedHz); err != nil {
		return err
	}

	c.speedHz = speedHz
	for _, osc := range c.voices {
		if err := osc.SetFrequency(speedHz); err != nil {
			return err
		}
	}

	return nil
}

// SetDepth updates the modulation depth in seconds.
func (c *Chorus) SetDepth(depth float64) error {
	if err := validateChorusDepth(depth); err != nil {
		return err
	}

	c.depthSeconds = depth

	return c.reconfigureDelayLine()
}

// SetBaseDelay sets the base delay in seconds.
func (c *Chorus) SetBaseDelay(baseDelay float64) error {
	if err := validateChorusBaseDelay(baseDelay); err != nil {
		return err
	}

	c.baseDelaySeconds = baseDelay

	return c.reconfigureDelayLine()
}

// SetStages updates the number of voices and re-spreads their phases.
func (c *Chorus) SetStages(stages int) error {
	if err := validateChorusStages(stages); err != nil {
		return err
	}

	c.stages = stages
	c.spreadPhases()

	return nil
}

// SetMix updates the wet amount in [0, 1].
func (c *Chorus) SetMix(mix float64) error {
	if err := validateMix("chorus", mix); err != nil {
		return err
	}

	c.mix = mix

	return nil
}

// Reset clears the delay line and restarts the voices.
func (c *Chorus) Reset() {
	c.line.Reset()
	c.spreadPhases()
}

// ProcessSample processes one sample.
func (c *Chorus) ProcessSample(input float64) float64 {
	c.line.Push(input)

	baseDelaySamples := c.baseDelaySeconds * c.sampleRate
	depthSamples := c.depthSeconds * c.sampleRate
	maxDelay := float64(c.maxDelay)

	wetSum := 0.0
	for _, osc := range c.voices[:c.stages] {
		mod := 0.5 * (1 + osc.Advance())
		d := min(baseDelaySamples+depthSamples*mod, maxDelay)
		wetSum += c.line.ReadHermite(d)
	}
	wet := wetSum / float64(c.stages)

	return input*(1-c.mix) + wet*c.mix
}

// ProcessInPlace applies chorus to buf in place.
func (c *Chorus) ProcessInPlace(buf []float64) {
	for i := range buf {
		buf[i] = c.ProcessSample(buf[i])
	}
}

// SampleRate returns the sample rate in Hz.
func (c *Chorus) SampleRate() float64 { return c.sampleRate }

// SpeedHz returns the modulation rate in Hz.
func (c *Chorus) SpeedHz() float64 { return c.speedHz }

// Depth returns the modulation depth in seconds.
func (c *Chorus) Depth() float64 { return c.depthSeconds }

// BaseDelay returns the base delay in seconds.
func (c *Chorus) BaseDelay() float64 { return c.baseDelaySeconds }

// Mix returns the wet amount in [0, 1].
func (c *Chorus) Mix() float64 { return c.mix }

// Stages returns the number of voices.
func (c *Chorus) Stages() int { return c.stages }

func (c *Chorus) spreadPhases() {
	// Unused voices are parked at phase 0 so a later SetStages starts clean.
	for i, osc := range c.voices {
		if i < c.stages {
			osc.SetPhase(float64(i) / float64(c.stages))
		} else {
			osc.Reset()
		}
	}
}

// reconfigureDelayLine grows the line when the longest read no longer fits.
// Shrinking keeps the existing buffer and its history.
func (c *Chorus) reconfigureDelayLine() error {
	neededMax := int(math.Ceil((c.baseDelaySeconds + c.depthSeconds) * c.sampleRate))
	needed := max(neededMax+3, 4)

	if c.line == nil || c.line.Len() < needed {
		line, err := delay.New(needed)
		if err != nil {
			return err
		}
		c.line = line
	}
	c.maxDelay = neededMax

	return nil
}

func validateChorusSpeed(speedHz float64) error {
	if speedHz <= 0 || !core.IsFinite(speedHz) {
		return fmt.Errorf("chorus speed must be > 0: %f", speedHz)
	}
	return nil
}

func validateChorusDepth(depth float64) error {
	if depth < 0 || !core.IsFinite(depth) {
		return fmt.Errorf("chorus depth must be >= 0 and finite: %f", depth)
	}
	return nil
}

func validateChorusBaseDelay(baseDelay float64) error {
	if baseDelay < minChorusDelaySeconds || !core.IsFinite(baseDelay) {
		return fmt.Errorf("chorus base delay must be >= %f: %f", minChorusDelaySeconds, baseDelay)
	}
	return nil
}

func validateChorusStages(stages int) error {
	if stages <= 0 || stages > maxChorusStages {
		return fmt.Errorf("chorus stages must be in [1, %d]: %d", maxChorusStages, stages)
	}
	return nil
}

func validateMix(component string, mix float64) error {
	if mix < 0 || mix > 1 || math.IsNaN(mix) {
		return fmt.Errorf("%s mix must be in [0, 1]: %f", component, mix)
	}
	return nil
}

func validateEffectSampleRate(component string, sampleRate float64) error {
	if sampleRate <= 0 || !core.IsFinite(sampleRate) {
		return fmt.Errorf("%s sample rate must be > 0 and finite: %f", component, sampleRate)
	}
	return nil
}
