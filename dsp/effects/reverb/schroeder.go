package reverb

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-reverb/dsp/core"
	"github.com/cwbudde/algo-reverb/dsp/filter/allpass"
	"github.com/cwbudde/algo-reverb/dsp/filter/comb"
)

// Line counts of the reverberator topology.
const (
	CombCount    = 4
	AllPassCount = 2
)

const (
	// Every line is sized for the longest comb delay.
	maxLineDelayMs = 50.0

	allPassGain = 0.5 * math.Sqrt2

	// Keeps the comb loop gain below 1 when RT60 is so long that the
	// formula rounds to exactly 1.
	maxCombGain = 1 - 1e-12

	defaultRT60Ms    = 1000.0
	defaultDryWetMix = 0.5
	defaultDampening = 0.0
)

// Per-line base delays in milliseconds.
var (
	combDelaysMs    = [CombCount]float64{29.7, 32.2, 38.1, 45.6}
	allPassDelaysMs = [AllPassCount]float64{2.3, 3.7}
)

// FeedbackGain returns the comb loop gain that attenuates by 60 dB after
// rt60Ms of recirculation through a delayMs loop:
//
//	g = 10^(-3 * delayMs / rt60Ms)
//
// It panics if rt60Ms is not positive.
func FeedbackGain(delayMs, rt60Ms float64) float64 {
	if !(rt60Ms > 0) {
		panic(fmt.Sprintf("reverb: rt60 %v must be > 0", rt60Ms))
	}
	return math.Pow(10, -3*delayMs/rt60Ms)
}

// SchroederOption mutates reverberator construction parameters.
type SchroederOption func(*schroederConfig) error

type schroederConfig struct {
	rt60Ms    float64
	dryWetMix float64
	dampening float64
}

// WithRT60Ms sets the reverberation time in milliseconds.
func WithRT60Ms(rt60Ms float64) SchroederOption {
	return func(cfg *schroederConfig) error {
		cfg.rt60Ms = rt60Ms
		return validateRT60(rt60Ms)
	}
}

// WithDryWetMix sets the wet amount in [0, 1].
func WithDryWetMix(mix float64) SchroederOption {
	return func(cfg *schroederConfig) error {
		cfg.dryWetMix = mix
		return validateMix(mix)
	}
}

// WithDampening sets the high-frequency damping of the comb feedback paths
// in [0, 1).
func WithDampening(d float64) SchroederOption {
	return func(cfg *schroederConfig) error {
		cfg.dampening = d
		return validateDampening(d)
	}
}

type combLine struct {
	delayMs float64
	filter  *comb.Comb
}

type allPassLine struct {
	delayMs float64
	filter  *allpass.AllPass
}

// Schroeder is a mono Schroeder reverberator: four damped combs in parallel
// feeding two all-passes in series.
//
// Comb outputs with even index are negated before the four are averaged, and
// the all-pass output is blended with the input:
//
//	out = wet*mix + in*(1-mix)
type Schroeder struct {
	sampleRate float64
	rt60Ms     float64
	dryWetMix  float64
	dampening  float64

	combs     [CombCount]combLine
	allPasses [AllPassCount]allPassLine
}

// NewSchroeder creates a reverberator prepared for sampleRate.
func NewSchroeder(sampleRate float64, opts ...SchroederOption) (*Schroeder, error) {
	if err := validateSampleRate(sampleRate); err != nil {
		return nil, err
	}

	cfg := schroederConfig{
		rt60Ms:    defaultRT60Ms,
		dryWetMix: defaultDryWetMix,
		dampening: defaultDampening,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	s := &Schroeder{
		dryWetMix: cfg.dryWetMix,
		dampening: cfg.dampening,
	}
	if err := s.Prepare(sampleRate, cfg.rt60Ms); err != nil {
		return nil, err
	}

	return s, nil
}

// Prepare recomputes every line's delay and the comb gains for sampleRate
// and rt60Ms, and clears all filter state. Lines are reallocated only when
// the sample rate changes. On error nothing is modified.
func (s *Schroeder) Prepare(sampleRate, rt60Ms float64) error {
	if err := validateSampleRate(sampleRate); err != nil {
		return err
	}
	if err := validateRT60(rt60Ms); err != nil {
		return err
	}

	combs := s.combs
	allPasses := s.allPasses

	if sampleRate != s.sampleRate {
		capacity := max(1, int(math.Ceil(core.MsToSamples(maxLineDelayMs, sampleRate))))

		for i, ms := range combDelaysMs {
			c, err := comb.New(capacity, true)
			if err != nil {
				return fmt.Errorf("schroeder comb %d: %w", i, err)
			}
			if err := c.SetDamping(s.dampening); err != nil {
				return err
			}
			combs[i] = combLine{delayMs: ms, filter: c}
		}

		for i, ms := range allPassDelaysMs {
			a, err := allpass.New(capacity)
			if err != nil {
				return fmt.Errorf("schroeder allpass %d: %w", i, err)
			}
			allPasses[i] = allPassLine{delayMs: ms, filter: a}
		}
	}

	for i, line := range combs {
		err := line.filter.Prepare(lineDelay(line.delayMs, sampleRate), combGain(line.delayMs, rt60Ms))
		if err != nil {
			return fmt.Errorf("schroeder comb %d: %w", i, err)
		}
	}

	for i, line := range allPasses {
		if err := line.filter.Prepare(lineDelay(line.delayMs, sampleRate), allPassGain); err != nil {
			return fmt.Errorf("schroeder allpass %d: %w", i, err)
		}
	}

	s.combs = combs
	s.allPasses = allPasses
	s.sampleRate = sampleRate
	s.rt60Ms = rt60Ms

	return nil
}

// SetDampening sets the comb damping in [0, 1) on every comb line.
func (s *Schroeder) SetDampening(d float64) error {
	if err := validateDampening(d); err != nil {
		return err
	}

	for _, line := range s.combs {
		if err := line.filter.SetDamping(d); err != nil {
			return err
		}
	}
	s.dampening = d

	return nil
}

// SetDryWetMix sets the wet amount in [0, 1].
func (s *Schroeder) SetDryWetMix(mix float64) error {
	if err := validateMix(mix); err != nil {
		return err
	}

	s.dryWetMix = mix

	return nil
}

// UpdateReverbTime recomputes the comb gains for rt60Ms. Delay lengths and
// buffered audio are kept.
func (s *Schroeder) UpdateReverbTime(rt60Ms float64) error {
	if err := validateRT60(rt60Ms); err != nil {
		return err
	}

	for i, line := range s.combs {
		if err := line.filter.SetGain(combGain(line.delayMs, rt60Ms)); err != nil {
			return fmt.Errorf("schroeder comb %d: %w", i, err)
		}
	}
	s.rt60Ms = rt60Ms

	return nil
}

// ProcessSample processes one sample.
func (s *Schroeder) ProcessSample(input float64) float64 {
	wet := 0.0
	for i := range s.combs {
		y := s.combs[i].filter.ProcessSample(input)
		if i%2 == 0 {
			y = -y
		}
		wet += y
	}
	wet /= CombCount

	for i := range s.allPasses {
		wet = s.allPasses[i].filter.ProcessSample(wet)
	}

	return wet*s.dryWetMix + input*(1-s.dryWetMix)
}

// ProcessInPlace applies the reverb to buf in place.
func (s *Schroeder) ProcessInPlace(buf []float64) {
	for i := range buf {
		buf[i] = s.ProcessSample(buf[i])
	}
}

// Reset clears every comb and all-pass without touching parameters.
func (s *Schroeder) Reset() {
	for _, line := range s.combs {
		line.filter.Reset()
	}
	for _, line := range s.allPasses {
		line.filter.Reset()
	}
}

// SampleRate returns the sample rate in Hz.
func (s *Schroeder) SampleRate() float64 { return s.sampleRate }

// RT60Ms returns the reverberation time in milliseconds.
func (s *Schroeder) RT60Ms() float64 { return s.rt60Ms }

// DryWetMix returns the wet amount in [0, 1].
func (s *Schroeder) DryWetMix() float64 { return s.dryWetMix }

// Dampening returns the comb damping in [0, 1).
func (s *Schroeder) Dampening() float64 { return s.dampening }

// CombGain returns the feedback gain of comb line i. It panics if i is not
// in [0, CombCount).
func (s *Schroeder) CombGain(i int) float64 { return s.combs[i].filter.Gain() }

// AllPassGain returns the gain of all-pass line i.
func (s *Schroeder) AllPassGain(i int) float64 { return s.allPasses[i].filter.Gain() }

// CombDelay returns the delay of comb line i in samples.
func (s *Schroeder) CombDelay(i int) float64 { return s.combs[i].filter.Delay() }

// AllPassDelay returns the delay of all-pass line i in samples.
func (s *Schroeder) AllPassDelay(i int) float64 { return s.allPasses[i].filter.Delay() }

// lineDelay converts a line delay to samples, never shorter than one sample.
func lineDelay(delayMs, sampleRate float64) float64 {
	return max(1, core.MsToSamples(delayMs, sampleRate))
}

func combGain(delayMs, rt60Ms float64) float64 {
	return min(FeedbackGain(delayMs, rt60Ms), maxCombGain)
}

func validateSampleRate(sampleRate float64) error {
	if sampleRate <= 0 || !core.IsFinite(sampleRate) {
		return fmt.Errorf("schroeder sample rate must be > 0 and finite: %f", sampleRate)
	}
	return nil
}

func validateRT60(rt60Ms float64) error {
	if rt60Ms <= 0 || !core.IsFinite(rt60Ms) {
		return fmt.Errorf("schroeder rt60 must be > 0 and finite: %f", rt60Ms)
	}
	return nil
}

func validateMix(mix float64) error {
	if mix < 0 || mix > 1 || math.IsNaN(mix) {
		return fmt.Errorf("schroeder dry/wet mix must be in [0, 1]: %f", mix)
	}
	return nil
}

func validateDampening(d float64) error {
	if d < 0 || d >= 1 || !core.IsFinite(d) {
		return fmt.Errorf("schroeder dampening must be in [0, 1): %f", d)
	}
	return nil
}
