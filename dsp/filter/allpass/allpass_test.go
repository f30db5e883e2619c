package allpass

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-reverb/internal/testutil"
	"github.com/cwbudde/algo-reverb/measure/response"
)

func newPrepared(t *testing.T, maxDelay int, delaySamples, gain float64) *AllPass {
	t.Helper()

	a, err := New(maxDelay)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if err := a.Prepare(delaySamples, gain); err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}

	return a
}

func render(a *AllPass, in []float64) []float64 {
	out := make([]float64, len(in))
	for i, x := range in {
		out[i] = a.ProcessSample(x)
	}
	return out
}

func TestAllPassReferenceSequence(t *testing.T) {
	a := newPrepared(t, 16, 2, 0.5)

	got := render(a, testutil.Impulse(7, 0))
	want := []float64{-0.5, 0, 0.75, 0, 0.375, 0, 0.1875}
	testutil.RequireSliceNearlyEqual(t, got, want, 0)
}

func TestAllPassFlatMagnitude(t *testing.T) {
	for _, tc := range []struct {
		delay, gain float64
	}{
		{delay: 3, gain: 0.5},
		{delay: 17, gain: -0.7},
		{delay: 101, gain: 0.5 * math.Sqrt2},
	} {
		a := newPrepared(t, 128, tc.delay, tc.gain)
		ir := render(a, testutil.Impulse(1<<14, 0))

		mag, err := response.Magnitude(ir)
		if err != nil {
			t.Fatalf("Magnitude() error = %v", err)
		}

		for k, m := range mag {
			if math.Abs(m-1) > 1e-6 {
				t.Fatalf("delay=%v gain=%v bin %d: |H| = %v, want 1", tc.delay, tc.gain, k, m)
			}
		}
	}
}

func TestAllPassPreservesEnergy(t *testing.T) {
	a := newPrepared(t, 64, 23, 0.6)

	in := append(testutil.DeterministicNoise(5, 1, 512), make([]float64, 8192)...)
	out := render(a, in)

	var eIn, eOut float64
	for i := range in {
		eIn += in[i] * in[i]
		eOut += out[i] * out[i]
	}

	if math.Abs(eOut/eIn-1) > 1e-9 {
		t.Fatalf("energy ratio = %v, want 1", eOut/eIn)
	}
}

func TestAllPassPrepareClearsState(t *testing.T) {
	a := newPrepared(t, 16, 5, 0.5)
	render(a, testutil.DeterministicNoise(2, 1, 30))

	if err := a.Prepare(5, 0.5); err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}

	got := render(a, testutil.Impulse(3, 0))
	testutil.RequireSliceNearlyEqual(t, got, []float64{-0.5, 0, 0}, 0)
}

func TestAllPassValidation(t *testing.T) {
	if _, err := New(0); err == nil {
		t.Fatal("expected error for max delay 0")
	}

	a, err := New(4)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	for _, d := range []float64{0, 4.5, math.NaN()} {
		if err := a.Prepare(d, 0.5); err == nil {
			t.Fatalf("expected error for delay %v", d)
		}
	}

	for _, g := range []float64{1, -1.2, math.Inf(1)} {
		if err := a.SetGain(g); err == nil {
			t.Fatalf("expected error for gain %v", g)
		}
	}

	if err := a.SetGain(-0.3); err != nil || a.Gain() != -0.3 {
		t.Fatalf("SetGain(-0.3) err=%v gain=%v", err, a.Gain())
	}
}

func TestAllPassProcessDoesNotAllocate(t *testing.T) {
	a := newPrepared(t, 256, 101.43, 0.7)

	allocs := testing.AllocsPerRun(200, func() {
		_ = a.ProcessSample(0.1)
	})
	if allocs != 0 {
		t.Fatalf("allocs = %v, want 0", allocs)
	}
}
