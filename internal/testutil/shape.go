package testutil

// IsBounded reports whether every value lies in [lo, hi].
func IsBounded(data []float64, lo, hi float64) bool {
	for _, v := range data {
		if !(v >= lo && v <= hi) {
			return false
		}
	}
	return true
}

// IsNonDecreasing reports whether data[i] <= data[i+1] for all i.
func IsNonDecreasing(data []float64) bool {
	return pairwise(data, func(a, b float64) bool { return a <= b })
}

// IsNonIncreasing reports whether data[i] >= data[i+1] for all i.
func IsNonIncreasing(data []float64) bool {
	return pairwise(data, func(a, b float64) bool { return a >= b })
}

// IsStrictlyIncreasing reports whether data[i] < data[i+1] for all i.
func IsStrictlyIncreasing(data []float64) bool {
	return pairwise(data, func(a, b float64) bool { return a < b })
}

// IsStrictlyDecreasing reports whether data[i] > data[i+1] for all i.
func IsStrictlyDecreasing(data []float64) bool {
	return pairwise(data, func(a, b float64) bool { return a > b })
}

func pairwise(data []float64, ok func(a, b float64) bool) bool {
	for i := 1; i < len(data); i++ {
		if !ok(data[i-1], data[i]) {
			return false
		}
	}
	return true
}
