// Package delay provides a power-of-two circular delay buffer with integer
// and fractional (interpolated) read access by sample age.
package delay
