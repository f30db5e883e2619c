package lfo_test

import (
	"fmt"

	"github.com/cwbudde/algo-reverb/dsp/lfo"
)

func ExampleOscillator() {
	o, err := lfo.New(lfo.Triangle, 1, 8)
	if err != nil {
		panic(err)
	}

	for range 8 {
		fmt.Printf("%.2f ", o.Advance())
	}
	fmt.Println()

	// Output:
	// 1.00 0.50 0.00 -0.50 -1.00 -0.50 0.00 0.50
}
