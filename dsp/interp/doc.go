// Package interp provides the fractional-read kernels used by delay-based
// DSP blocks:
//
//   - [Linear2]:  2-point linear blend (fractional delay taps, modulated delays)
//   - [Hermite4]: 4-point cubic Hermite (smoother chorus voices)
package interp
