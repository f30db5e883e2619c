// Package decay estimates reverberation decay times (RT60, EDT, T20, T30)
// from impulse responses by Schroeder backward integration and linear
// regression on the resulting energy decay curve.
//
// Build with the fastmath tag to use the approximate logarithm from
// algo-approx when converting the decay curve to dB.
package decay
