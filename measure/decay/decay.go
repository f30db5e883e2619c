package decay

import (
	"errors"

	"github.com/cwbudde/algo-reverb/dsp/core"
	"github.com/cwbudde/algo-reverb/measure/response"
)

// Errors returned by decay analysis.
var (
	ErrEmptyIR           = errors.New("decay: impulse response is empty")
	ErrInvalidSampleRate = errors.New("decay: sample rate must be positive")
	ErrInvalidRange      = errors.New("decay: evaluation range must satisfy 0 >= start > end")
	ErrNoDecay           = errors.New("decay: insufficient decay for RT calculation")
)

const floorDB = -200

// Metrics holds decay-time estimates, all in seconds.
type Metrics struct {
	RT60      float64 // T30 when available, else T20
	EDT       float64 // 0 to -10 dB slope, extrapolated
	T20       float64 // -5 to -25 dB slope, extrapolated
	T30       float64 // -5 to -35 dB slope, extrapolated
	PeakIndex int     // sample index the analysis starts from
}

// Analyzer estimates reverberation decay from impulse responses.
type Analyzer struct {
	SampleRate float64
}

// NewAnalyzer creates an analyzer for the given sample rate.
func NewAnalyzer(sampleRate float64) *Analyzer {
	return &Analyzer{SampleRate: sampleRate}
}

// Capture renders seconds of p's impulse response at the analyzer's rate.
func (a *Analyzer) Capture(p core.SampleProcessor, seconds float64) ([]float64, error) {
	if a.SampleRate <= 0 || !core.IsFinite(a.SampleRate) {
		return nil, ErrInvalidSampleRate
	}

	n := int(seconds * a.SampleRate)
	if n <= 0 {
		return nil, ErrEmptyIR
	}

	return response.ImpulseResponse(p, n), nil
}

// Analyze computes all decay metrics, starting at the IR's absolute peak.
func (a *Analyzer) Analyze(ir []float64) (Metrics, error) {
	if err := a.validate(ir); err != nil {
		return Metrics{}, err
	}

	peak := peakIndex(ir)
	curve := schroederIntegral(ir[peak:])

	m := Metrics{
		PeakIndex: peak,
		EDT:       a.decayTime(curve, 0, -10),
		T20:       a.decayTime(curve, -5, -25),
		T30:       a.decayTime(curve, -5, -35),
	}

	m.RT60 = m.T30
	if m.RT60 <= 0 {
		m.RT60 = m.T20
	}
	if m.RT60 <= 0 {
		return m, ErrNoDecay
	}

	return m, nil
}

// RT60 estimates the time for a 60 dB decay, preferring the T30 range and
// falling back to T20.
func (a *Analyzer) RT60(ir []float64) (float64, error) {
	m, err := a.Analyze(ir)
	if err != nil {
		return 0, err
	}

	return m.RT60, nil
}

// DecayTime fits a line to the Schroeder curve between startDB and endDB and
// extrapolates it to -60 dB.
func (a *Analyzer) DecayTime(ir []float64, startDB, endDB float64) (float64, error) {
	if err := a.validate(ir); err != nil {
		return 0, err
	}
	if startDB > 0 || endDB >= startDB {
		return 0, ErrInvalidRange
	}

	rt := a.decayTime(schroederIntegral(ir[peakIndex(ir):]), startDB, endDB)
	if rt <= 0 {
		return 0, ErrNoDecay
	}

	return rt, nil
}

// SchroederIntegral returns the backward-integrated energy decay curve of ir
// in dB relative to its total energy:
//
//	S(t) = 10*log10( ∫_t^∞ h²(τ) dτ / ∫_0^∞ h²(τ) dτ )
func (a *Analyzer) SchroederIntegral(ir []float64) ([]float64, error) {
	if len(ir) == 0 {
		return nil, ErrEmptyIR
	}

	return schroederIntegral(ir), nil
}

func (a *Analyzer) validate(ir []float64) error {
	if len(ir) == 0 {
		return ErrEmptyIR
	}
	if a.SampleRate <= 0 || !core.IsFinite(a.SampleRate) {
		return ErrInvalidSampleRate
	}
	return nil
}

func schroederIntegral(ir []float64) []float64 {
	curve := make([]float64, len(ir))

	var energy float64
	for i := len(ir) - 1; i >= 0; i-- {
		energy += ir[i] * ir[i]
		curve[i] = energy
	}

	total := curve[0]
	if total <= 0 {
		return curve
	}

	for i, e := range curve {
		if e <= 0 {
			curve[i] = floorDB
			continue
		}
		curve[i] = powerToDB(e / total)
	}

	return curve
}

// decayTime regresses the curve between the first crossings of startDB and
// endDB. Returns 0 when the range is not reached or the slope is not negative.
func (a *Analyzer) decayTime(curve []float64, startDB, endDB float64) float64 {
	start, end := -1, -1
	for i, v := range curve {
		if start < 0 && v <= startDB {
			start = i
		}
		if start >= 0 && v <= endDB {
			end = i
			break
		}
	}

	if start < 0 || end <= start {
		return 0
	}

	var sumX, sumY, sumXX, sumXY float64
	for i := start; i <= end; i++ {
		x := float64(i - start)
		y := curve[i]
		sumX += x
		sumY += y
		sumXX += x * x
		sumXY += x * y
	}

	n := float64(end - start + 1)
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}

	slope := (n*sumXY - sumX*sumY) / denom // dB per sample
	if slope >= 0 {
		return 0
	}

	return -60 / (slope * a.SampleRate)
}

func peakIndex(ir []float64) int {
	idx := 0
	peak := 0.0
	for i, v := range ir {
		if v < 0 {
			v = -v
		}
		if v > peak {
			peak = v
			idx = i
		}
	}
	return idx
}
