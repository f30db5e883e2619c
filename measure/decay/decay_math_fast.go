//go:build fastmath

package decay

import "github.com/meko-christian/algo-approx"

// ln10 is the natural logarithm of 10.
const ln10 = 2.302585092994045684017991454684

// powerToDB converts a power ratio to dB using the fast log approximation.
// Decay fitting only needs a few tenths of a dB of accuracy. Unity maps to
// exactly 0 dB so normalised curves start at the reference level.
func powerToDB(ratio float64) float64 {
	if ratio == 1 {
		return 0
	}
	return 10 * approx.FastLog(ratio) / ln10
}
