// Package lfo provides a low-frequency oscillator used as a modulation
// source by the modulated delay effects.
//
// Supported waveforms: [Sine], [Triangle], [Sawtooth]. Outputs are bounded to
// [−1, 1] for any run length.
package lfo
