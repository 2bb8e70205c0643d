package onepole_test

import (
	"fmt"

	"github.com/cwbudde/algo-envfollow/dsp/filter/onepole"
)

// ExampleFilter demonstrates lowpass smoothing of a step input.
func ExampleFilter() {
	f, err := onepole.New(44100)
	if err != nil {
		panic(err)
	}

	if err := f.SetCutoff(500); err != nil {
		panic(err)
	}

	var out float64
	for i := 0; i < 44100; i++ {
		out = f.ProcessLowpass(1.0)
	}

	fmt.Printf("settled: %.3f\n", out)
	// Output:
	// settled: 1.000
}
