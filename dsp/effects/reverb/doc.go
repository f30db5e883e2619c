// Package reverb provides a Schroeder reverberator.
//
// Four damped comb filters run in parallel on the input. Their outputs, with
// alternating polarity, are averaged and diffused by two all-pass filters in
// series. Comb feedback gains follow from the reverberation time so every
// line decays by 60 dB over RT60:
//
//	g = 10^(-3 * delayMs / rt60Ms)
//
// Processing allocates nothing; buffers are sized when the sample rate is
// set.
package reverb
