// Package core holds small numeric and slice helpers shared by the DSP
// packages, plus the [SampleProcessor] streaming contract.
package core
