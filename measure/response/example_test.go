package response_test

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-envfollow/measure/response"
)

// ExampleMagnitude locates the -3 dB point of a 1 kHz lowpass.
func ExampleMagnitude() {
	mag, err := response.Magnitude(response.ModeLowpass, 1000, 40960, 4096)
	if err != nil {
		panic(err)
	}

	bin := 100 // 1 kHz at this size and rate
	db := 20 * math.Log10(mag[bin])

	fmt.Printf("%.0f Hz: %.1f dB\n", response.BinFrequency(bin, 4096, 40960), db)
	// Output:
	// 1000 Hz: -3.0 dB
}
