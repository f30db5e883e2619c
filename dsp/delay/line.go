package delay

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-reverb/dsp/core"
	"github.com/cwbudde/algo-reverb/dsp/interp"
)

// Line is a circular delay buffer whose capacity is always a power of two, so
// every tap offset is a subtraction plus a bitmask.
//
// Reads are addressed by age: age 0 is the most recently pushed sample and
// age Len()-1 the oldest one still held. Asking for an age outside that range
// is a programming error and panics.
type Line struct {
	buffer []float64
	mask   uint64
	cursor uint64
}

// New returns a zero-filled delay line holding at least capacity samples.
func New(capacity int) (*Line, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("delay capacity must be > 0: %d", capacity)
	}

	size := core.NextPowerOfTwo(capacity)

	return &Line{
		buffer: make([]float64, size),
		mask:   uint64(size - 1),
	}, nil
}

// Len returns the buffer capacity (a power of two).
func (d *Line) Len() int {
	return len(d.buffer)
}

// Push writes one sample and advances the write cursor.
func (d *Line) Push(sample float64) {
	d.buffer[d.cursor&d.mask] = sample
	d.cursor++
}

// Read returns the sample pushed age+1 calls ago.
func (d *Line) Read(age int) float64 {
	if age < 0 || age >= len(d.buffer) {
		panic(fmt.Sprintf("delay: age %d out of range [0, %d)", age, len(d.buffer)))
	}

	return d.buffer[(d.cursor-uint64(age)-1)&d.mask]
}

// ReadInterpolated reads a fractional age by linear interpolation between the
// two neighbouring integer ages. Integral ages return Read exactly.
func (d *Line) ReadInterpolated(age float64) float64 {
	i, frac := d.split(age)
	if frac == 0 {
		return d.Read(i)
	}

	return interp.Linear2(frac, d.Read(i), d.Read(i+1))
}

// ReadHermite reads a fractional age with 4-point cubic Hermite
// interpolation. The neighbour below age 0 is taken as age 0; ages i+1 and
// i+2 must be addressable.
func (d *Line) ReadHermite(age float64) float64 {
	i, frac := d.split(age)
	if frac == 0 {
		return d.Read(i)
	}

	return interp.Hermite4(frac, d.Read(max(0, i-1)), d.Read(i), d.Read(i+1), d.Read(i+2))
}

// Clear zero-fills the buffer without moving the cursor.
func (d *Line) Clear() {
	core.Zero(d.buffer)
}

// Reset zero-fills the buffer and rewinds the cursor.
func (d *Line) Reset() {
	d.Clear()
	d.cursor = 0
}

func (d *Line) split(age float64) (int, float64) {
	if !(age >= 0) || age >= float64(len(d.buffer)) {
		panic(fmt.Sprintf("delay: age %v out of range [0, %d)", age, len(d.buffer)))
	}

	whole := math.Floor(age)

	return int(whole), age - whole
}
