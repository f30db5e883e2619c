//go:build !fastmath

package decay

import "github.com/cwbudde/algo-reverb/dsp/core"

// powerToDB converts a power ratio to dB.
func powerToDB(ratio float64) float64 {
	return core.LinearPowerToDB(ratio)
}
