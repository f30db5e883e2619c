package core

// SampleProcessor is the streaming contract shared by every filter and effect
// in this module: one sample in, one sample out, in submission order.
//
// Implementations are not safe for concurrent use; confine an instance to the
// audio thread that drives it.
type SampleProcessor interface {
	ProcessSample(x float64) float64
}

// SampleProcessorFunc adapts a plain function to [SampleProcessor].
type SampleProcessorFunc func(x float64) float64

// ProcessSample calls f(x).
func (f SampleProcessorFunc) ProcessSample(x float64) float64 { return f(x) }
