package modulation_test

import (
	"fmt"

	"github.com/cwbudde/algo-reverb/dsp/effects/modulation"
)

func ExampleFlanger_ProcessInPlace() {
	flanger, err := modulation.NewFlanger(1000,
		modulation.WithFlangerBaseDelaySeconds(0.002),
		modulation.WithFlangerDepthSeconds(0),
		modulation.WithFlangerFeedback(0.5),
		modulation.WithFlangerMix(0.5),
	)
	if err != nil {
		fmt.Println("error")
		return
	}

	buf := []float64{1, 0, 0, 0, 0, 0}
	flanger.ProcessInPlace(buf)

	fmt.Println(buf)
	// Output:
	// [0.5 0 0.5 0 0.25 0]
}
