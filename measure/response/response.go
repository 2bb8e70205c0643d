package response

import (
	"errors"
	"fmt"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-envfollow/dsp/filter/onepole"
)

// Errors returned by response analysis functions.
var (
	ErrInvalidSize = errors.New("response: size must be a positive power of two")
	ErrInvalidMode = errors.New("response: unknown filter mode")
)

// Mode selects which filter path to measure.
type Mode int

const (
	// ModeLowpass measures the lowpass path.
	ModeLowpass Mode = iota
	// ModeHighpass measures the highpass path.
	ModeHighpass
)

// Magnitude measures the magnitude response of a first-order filter
// configuration by impulse excitation and FFT. It returns size/2+1 bins
// covering DC to Nyquist; BinFrequency converts a bin index back to Hz.
//
// size bounds the measured impulse response and must be a power of two.
// Sizes much longer than the filter's decay keep the truncation error
// negligible; 4096 is plenty for audio-band cutoffs.
func Magnitude(mode Mode, cutoffHz, sampleRate float64, size int) ([]float64, error) {
	if size <= 0 || size&(size-1) != 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}

	if mode != ModeLowpass && mode != ModeHighpass {
		return nil, fmt.Errorf("%w: %d", ErrInvalidMode, mode)
	}

	f, err := onepole.New(sampleRate)
	if err != nil {
		return nil, fmt.Errorf("response: %w", err)
	}

	if err := f.SetCutoff(cutoffHz); err != nil {
		return nil, fmt.Errorf("response: %w", err)
	}

	// Impulse response, truncated to size samples.
	impulse := make([]complex128, size)

	for n := 0; n < size; n++ {
		var x float64
		if n == 0 {
			x = 1
		}

		if mode == ModeLowpass {
			impulse[n] = complex(f.ProcessLowpass(x), 0)
		} else {
			impulse[n] = complex(f.ProcessHighpass(x), 0)
		}
	}

	plan, err := algofft.NewPlan64(size)
	if err != nil {
		return nil, fmt.Errorf("response: failed to create FFT plan: %w", err)
	}

	freq := make([]complex128, size)
	if err := plan.Forward(freq, impulse); err != nil {
		return nil, fmt.Errorf("response: forward FFT failed: %w", err)
	}

	half := size/2 + 1
	re := make([]float64, half)
	im := make([]float64, half)

	for i := 0; i < half; i++ {
		re[i] = real(freq[i])
		im[i] = imag(freq[i])
	}

	out := make([]float64, half)
	vecmath.Magnitude(out, re, im)

	return out, nil
}

// BinFrequency returns the center frequency in Hz of an FFT bin for the
// given transform size and sample rate.
func BinFrequency(bin, size int, sampleRate float64) float64 {
	return float64(bin) * sampleRate / float64(size)
}
