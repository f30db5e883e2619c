package lfo

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-reverb/internal/testutil"
)

func mustNew(t *testing.T, w Waveform, freq, sampleRate float64) *Oscillator {
	t.Helper()

	o, err := New(w, freq, sampleRate)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	return o
}

func period(o *Oscillator, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = o.Advance()
	}
	return out
}

func TestSawtoothPeriod(t *testing.T) {
	o := mustNew(t, Sawtooth, 1, 64)
	p := period(o, 64)

	if p[0] != -1 {
		t.Fatalf("start = %v, want -1", p[0])
	}
	if p[32] != 0 {
		t.Fatalf("half period = %v, want 0", p[32])
	}
	if p[63] >= 1 || p[63] < 0.96 {
		t.Fatalf("end = %v, want just below 1", p[63])
	}
	if !testutil.IsStrictlyIncreasing(p) {
		t.Fatalf("sawtooth not increasing over one period: %v", p)
	}
	if next := o.Advance(); next != -1 {
		t.Fatalf("next period start = %v, want -1", next)
	}
}

func TestTrianglePeriod(t *testing.T) {
	o := mustNew(t, Triangle, 1, 64)
	p := period(o, 64)

	if p[0] != 1 {
		t.Fatalf("start = %v, want 1", p[0])
	}
	if p[32] != -1 {
		t.Fatalf("half period = %v, want -1", p[32])
	}
	if !testutil.IsNonIncreasing(p[:33]) {
		t.Fatalf("first half not decreasing: %v", p[:33])
	}
	if !testutil.IsNonDecreasing(p[32:]) {
		t.Fatalf("second half not increasing: %v", p[32:])
	}
	if next := o.Advance(); next != 1 {
		t.Fatalf("next period start = %v, want 1", next)
	}
}

func TestSineQuarterPeriods(t *testing.T) {
	o := mustNew(t, Sine, 1, 100)
	p := period(o, 101)

	for _, tc := range []struct {
		idx  int
		want float64
	}{
		{0, 0}, {25, 1}, {50, 0}, {75, -1}, {100, 0},
	} {
		if math.Abs(p[tc.idx]-tc.want) > 1e-9 {
			t.Fatalf("sample %d = %v, want %v", tc.idx, p[tc.idx], tc.want)
		}
	}
}

func TestWaveformsStayBounded(t *testing.T) {
	for _, w := range []Waveform{Sine, Triangle, Sawtooth} {
		for _, freq := range []float64{0.37, 3.3, -7.1, 1234.5} {
			o := mustNew(t, w, freq, 44100)

			for i := range 200000 {
				v := o.Advance()
				if v < -1 || v > 1 || math.IsNaN(v) {
					t.Fatalf("%v f=%v sample %d: %v outside [-1, 1]", w, freq, i, v)
				}
				if ph := o.Phase(); ph < 0 || ph >= 1 {
					t.Fatalf("%v f=%v sample %d: phase %v outside [0, 1)", w, freq, i, ph)
				}
			}
		}
	}
}

func TestNegativeFrequencySweepsBackwards(t *testing.T) {
	o := mustNew(t, Sawtooth, -1, 64)
	p := period(o, 64)

	if p[0] != -1 {
		t.Fatalf("start = %v, want -1", p[0])
	}
	if p[1] != 2*63.0/64-1 {
		t.Fatalf("second sample = %v, want %v", p[1], 2*63.0/64-1)
	}
	if !testutil.IsStrictlyDecreasing(p[1:]) {
		t.Fatalf("reverse sawtooth not decreasing: %v", p[1:])
	}
}

func TestPrepareKeepsPhase(t *testing.T) {
	o := mustNew(t, Sawtooth, 1, 64)
	period(o, 16)

	if err := o.Prepare(2, 64); err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}

	if o.Phase() != 0.25 {
		t.Fatalf("phase = %v, want 0.25", o.Phase())
	}
	if got := o.Advance(); got != -0.5 {
		t.Fatalf("Advance() = %v, want -0.5", got)
	}
	if o.Phase() != 0.28125 {
		t.Fatalf("phase = %v, want 0.28125", o.Phase())
	}
}

func TestSetPhaseWraps(t *testing.T) {
	o := mustNew(t, Sawtooth, 1, 64)

	for _, tc := range []struct{ in, want float64 }{
		{0.25, 0.25}, {1.5, 0.5}, {-0.25, 0.75}, {3, 0},
	} {
		o.SetPhase(tc.in)
		if o.Phase() != tc.want {
			t.Fatalf("SetPhase(%v): phase = %v, want %v", tc.in, o.Phase(), tc.want)
		}
	}

	o.Reset()
	if o.Phase() != 0 {
		t.Fatalf("phase after Reset = %v, want 0", o.Phase())
	}
}

func TestNewValidation(t *testing.T) {
	if _, err := New(Waveform(7), 1, 48000); err == nil {
		t.Fatal("expected error for unknown waveform")
	}
	if _, err := New(Sine, 1, 0); err == nil {
		t.Fatal("expected error for zero sample rate")
	}
	if _, err := New(Sine, math.NaN(), 48000); err == nil {
		t.Fatal("expected error for NaN frequency")
	}

	o := mustNew(t, Triangle, 2, 48000)
	if err := o.SetFrequency(math.Inf(1)); err == nil {
		t.Fatal("expected error for Inf frequency")
	}
	if o.Frequency() != 2 || o.SampleRate() != 48000 || o.Waveform() != Triangle {
		t.Fatalf("unexpected state after rejected update: f=%v sr=%v w=%v", o.Frequency(), o.SampleRate(), o.Waveform())
	}
}

func TestWaveformString(t *testing.T) {
	for w, want := range map[Waveform]string{
		Sine: "sine", Triangle: "triangle", Sawtooth: "sawtooth", Waveform(9): "Waveform(9)",
	} {
		if got := w.String(); got != want {
			t.Fatalf("String() = %q, want %q", got, want)
		}
	}
}
