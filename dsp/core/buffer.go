package core

// Zero sets all values in buf to 0.
func Zero(buf []float64) {
	clear(buf)
}

// NextPowerOfTwo returns the smallest power of two >= n. Values below 1
// yield 1. It panics if the result would overflow int.
func NextPowerOfTwo(n int) int {
	size := 1
	for size < n {
		size <<= 1
		if size <= 0 {
			panic("core: next power of two overflows int")
		}
	}
	return size
}
