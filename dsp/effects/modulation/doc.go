// Package modulation provides LFO-driven delay processors.
//
// Included processors:
//   - ModulatedDelay: delay line read at an LFO-swept age.
//   - ModulatedAllPass: Schroeder all-pass around a ModulatedDelay.
//   - Chorus: Multi-voice modulated delay.
//   - Flanger: Short modulated delay with feedback.
//
// None of the processors allocate once constructed.
package modulation
