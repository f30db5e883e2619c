// Package onepole provides a single-coefficient one-pole low-pass smoother.
package onepole

// LowPass is a one-pole IIR low-pass:
//
//	y[n] = a0*x[n] + b1*y[n-1],  a0 = 1 - b1
//
// The complementary weighting keeps the DC gain at exactly 1.
type LowPass struct {
	a0 float64
	b1 float64
	z1 float64
}

// New returns a pass-through low-pass (b1 = 0).
func New() *LowPass {
	return &LowPass{a0: 1}
}

// SetFeedbackGain sets the pole position b1 = g and a0 = 1 - g.
func (l *LowPass) SetFeedbackGain(g float64) {
	l.b1 = g
	l.a0 = 1 - g
}

// SetCoefficients sets a0 and b1 independently, for feedback paths that need
// a non-normalized pole (a0 != 1-b1).
func (l *LowPass) SetCoefficients(a0, b1 float64) {
	l.a0 = a0
	l.b1 = b1
}

// FeedbackGain returns the feedback coefficient b1.
func (l *LowPass) FeedbackGain() float64 { return l.b1 }

// ProcessSample filters one sample.
func (l *LowPass) ProcessSample(x float64) float64 {
	l.z1 = l.a0*x + l.b1*l.z1
	return l.z1
}

// Reset clears the feedback register.
func (l *LowPass) Reset() {
	l.z1 = 0
}
