package delay

import (
	"math"
	"testing"
)

func mustNew(t *testing.T, capacity int) *Line {
	t.Helper()

	d, err := New(capacity)
	if err != nil {
		t.Fatalf("New(%d) error = %v", capacity, err)
	}

	return d
}

func expectPanic(t *testing.T, name string, fn func()) {
	t.Helper()

	defer func() {
		if recover() == nil {
			t.Fatalf("%s: expected panic", name)
		}
	}()

	fn()
}

// --- construction ---

func TestNewValidation(t *testing.T) {
	if _, err := New(0); err == nil {
		t.Fatal("expected error for capacity=0")
	}

	if _, err := New(-1); err == nil {
		t.Fatal("expected error for capacity=-1")
	}
}

func TestNewRoundsUpToPowerOfTwo(t *testing.T) {
	for _, tc := range []struct{ in, want int }{
		{1, 1}, {2, 2}, {17, 32}, {62, 64}, {670, 1024}, {4096, 4096},
	} {
		if got := mustNew(t, tc.in).Len(); got != tc.want {
			t.Fatalf("New(%d).Len() = %d, want %d", tc.in, got, tc.want)
		}
	}
}

// --- integer reads ---

func TestFreshLineReadsZero(t *testing.T) {
	for _, capacity := range []int{1, 2, 17, 62, 670} {
		d := mustNew(t, capacity)
		for n := 0; n < d.Len(); n++ {
			for age := 0; age < d.Len(); age++ {
				if age >= n && d.Read(age) != 0 {
					t.Fatalf("capacity %d after %d pushes: Read(%d) = %v, want 0", capacity, n, age, d.Read(age))
				}
			}
			d.Push(float64(n + 1))
		}
	}
}

func TestReadRoundTrip(t *testing.T) {
	d := mustNew(t, 8)

	for i := range 8 {
		d.Push(float64(i))
	}

	for k := range 8 {
		if got, want := d.Read(k), float64(7-k); got != want {
			t.Fatalf("Read(%d) = %v, want %v", k, got, want)
		}
	}
}

func TestReadWraparound(t *testing.T) {
	for _, m := range []int{0, 1, 3, 7, 100, 1001} {
		d := mustNew(t, 16)
		total := d.Len() + m

		for i := range total {
			d.Push(float64(i))
		}

		if got, want := d.Read(0), float64(total-1); got != want {
			t.Fatalf("m=%d: Read(0) = %v, want %v", m, got, want)
		}
		if got, want := d.Read(d.Len()-1), float64(total-d.Len()); got != want {
			t.Fatalf("m=%d: Read(oldest) = %v, want %v", m, got, want)
		}
	}
}

func TestReadOutOfRangePanics(t *testing.T) {
	d := mustNew(t, 4)

	expectPanic(t, "Read(Len)", func() { d.Read(d.Len()) })
	expectPanic(t, "Read(-1)", func() { d.Read(-1) })
}

// --- fractional reads ---

func TestReadInterpolatedIntegerAges(t *testing.T) {
	d := mustNew(t, 16)
	for i := range 16 {
		d.Push(math.Sin(float64(i)))
	}

	for k := range d.Len() {
		if got, want := d.ReadInterpolated(float64(k)), d.Read(k); got != want {
			t.Fatalf("ReadInterpolated(%d) = %v, want %v", k, got, want)
		}
	}
}

func TestReadInterpolatedHalfway(t *testing.T) {
	d := mustNew(t, 16)
	for i := range 16 {
		d.Push(float64(i * i))
	}

	for k := 0; k < d.Len()-1; k++ {
		want := (d.Read(k) + d.Read(k+1)) / 2
		if got := d.ReadInterpolated(float64(k) + 0.5); got != want {
			t.Fatalf("ReadInterpolated(%v) = %v, want %v", float64(k)+0.5, got, want)
		}
	}
}

func TestReadInterpolatedLinearRamp(t *testing.T) {
	d := mustNew(t, 16)
	for i := range 16 {
		d.Push(float64(i))
	}

	// age 3.25 sits between 12 (age 3) and 11 (age 4).
	if got := d.ReadInterpolated(3.25); math.Abs(got-11.75) > 1e-12 {
		t.Fatalf("got %v want 11.75", got)
	}
}

func TestReadInterpolatedOutOfRangePanics(t *testing.T) {
	d := mustNew(t, 8)

	expectPanic(t, "age=Len", func() { d.ReadInterpolated(8) })
	expectPanic(t, "age between oldest and Len", func() { d.ReadInterpolated(7.5) })
	expectPanic(t, "negative age", func() { d.ReadInterpolated(-0.25) })
	expectPanic(t, "NaN age", func() { d.ReadInterpolated(math.NaN()) })

	if got := d.ReadInterpolated(7); got != 0 {
		t.Fatalf("ReadInterpolated(7) = %v, want 0", got)
	}
}

func TestReadHermiteLinearRamp(t *testing.T) {
	d := mustNew(t, 32)
	for i := range 32 {
		d.Push(float64(i))
	}

	for _, age := range []float64{1.5, 4.25, 10.75} {
		want := 31 - age
		if got := d.ReadHermite(age); math.Abs(got-want) > 1e-12 {
			t.Fatalf("ReadHermite(%v) = %v, want %v", age, got, want)
		}
	}
}

// --- clearing ---

func TestClearKeepsCursor(t *testing.T) {
	d := mustNew(t, 4)

	d.Push(1)
	d.Push(2)
	d.Clear()

	for i := range d.Len() {
		if got := d.Read(i); got != 0 {
			t.Fatalf("after Clear Read(%d) = %v, want 0", i, got)
		}
	}

	d.Push(5)
	// cursor was 2 before the push, so slot 2 holds the new sample.
	if d.buffer[2] != 5 {
		t.Fatalf("buffer = %v, want 5 at slot 2", d.buffer)
	}
}

func TestResetRewindsCursor(t *testing.T) {
	d := mustNew(t, 4)

	d.Push(1)
	d.Push(2)
	d.Reset()
	d.Push(5)

	if d.buffer[0] != 5 {
		t.Fatalf("buffer = %v, want 5 at slot 0", d.buffer)
	}
}

func TestPushDoesNotAllocate(t *testing.T) {
	d := mustNew(t, 64)

	allocs := testing.AllocsPerRun(100, func() {
		d.Push(1)
		_ = d.ReadInterpolated(12.5)
	})
	if allocs != 0 {
		t.Fatalf("allocs = %v, want 0", allocs)
	}
}

func BenchmarkLinePushReadInterpolated(b *testing.B) {
	d, err := New(4096)
	if err != nil {
		b.Fatal(err)
	}

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		d.Push(float64(i))
		_ = d.ReadInterpolated(1309.77)
	}
}
