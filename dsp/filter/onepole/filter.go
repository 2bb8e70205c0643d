package onepole

import (
	"fmt"
	"math"
)

const (
	// defaultCutoffHz is the cutoff applied until the caller configures one.
	defaultCutoffHz = 1000.0

	// nyquistGuardRatio bounds the effective cutoff used for coefficient
	// derivation. tan(theta/2) has a pole at the Nyquist frequency, so the
	// coefficients are computed from min(cutoff, 0.49*sampleRate). The
	// configured cutoff is preserved for read-back.
	nyquistGuardRatio = 0.49
)

// Filter is a first-order bilinear-transform IIR filter that can run as a
// lowpass or a highpass. Both modes share one coefficient set derived from
// the cutoff and sample rate; they differ only in the numerator.
//
// The filter is stateful: each Process call consumes exactly one sample and
// updates the previous input/output memory. State is cleared only by Reset,
// never by a parameter change, so a live cutoff sweep does not click.
//
// Not safe for concurrent use.
type Filter struct {
	sampleRate float64
	cutoffHz   float64

	// Derived coefficients, always consistent with the current cutoff and
	// sample rate before the next sample is processed.
	theta float64
	k     float64
	alpha float64

	prevInput  float64
	prevOutput float64
}

// New creates a filter with a 1 kHz default cutoff.
// Sample rate must be positive and finite.
func New(sampleRate float64) (*Filter, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("onepole: sample rate must be positive and finite: %f", sampleRate)
	}

	f := &Filter{
		sampleRate: sampleRate,
		cutoffHz:   defaultCutoffHz,
	}

	f.updateCoefficients()

	return f, nil
}

// SetSampleRate sets the expected input sample rate in Hz and recomputes the
// coefficients immediately. Filter memory is not reset; call Reset when the
// stream restarts.
func (f *Filter) SetSampleRate(sampleRate float64) error {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return fmt.Errorf("onepole: sample rate must be positive and finite: %f", sampleRate)
	}

	f.sampleRate = sampleRate
	f.updateCoefficients()

	return nil
}

// SetCutoff sets the cutoff frequency in Hz and recomputes the coefficients
// immediately. A cutoff of 0 degenerates the lowpass to silence and the
// highpass to a near-unity pass-through; both are accepted. Cutoffs at or
// above Nyquist are clamped to 0.49*sampleRate for coefficient derivation.
func (f *Filter) SetCutoff(hz float64) error {
	if hz < 0 || math.IsNaN(hz) || math.IsInf(hz, 0) {
		return fmt.Errorf("onepole: cutoff must be non-negative and finite: %f", hz)
	}

	f.cutoffHz = hz
	f.updateCoefficients()

	return nil
}

// ProcessLowpass consumes one sample and returns the lowpass output.
func (f *Filter) ProcessLowpass(sample float64) float64 {
	b := f.k / f.alpha
	output := b*sample + b*f.prevInput + ((1.0-f.k)/f.alpha)*f.prevOutput

	f.prevInput = sample
	f.prevOutput = output

	return output
}

// ProcessHighpass consumes one sample and returns the highpass output.
func (f *Filter) ProcessHighpass(sample float64) float64 {
	b := 1.0 / f.alpha
	output := b*sample - b*f.prevInput + ((1.0-f.k)/f.alpha)*f.prevOutput

	f.prevInput = sample
	f.prevOutput = output

	return output
}

// Reset clears the previous input/output memory. Coefficients and configured
// frequencies are untouched.
func (f *Filter) Reset() {
	f.prevInput = 0
	f.prevOutput = 0
}

// Cutoff returns the configured cutoff frequency in Hz.
func (f *Filter) Cutoff() float64 { return f.cutoffHz }

// SampleRate returns the configured sample rate in Hz.
func (f *Filter) SampleRate() float64 { return f.sampleRate }

// Coefficients returns the derived theta, k and alpha values.
func (f *Filter) Coefficients() (theta, k, alpha float64) {
	return f.theta, f.k, f.alpha
}

func (f *Filter) updateCoefficients() {
	cutoff := f.cutoffHz
	if limit := nyquistGuardRatio * f.sampleRate; cutoff > limit {
		cutoff = limit
	}

	f.theta = 2.0 * math.Pi * cutoff / f.sampleRate
	f.k = math.Tan(f.theta / 2.0)
	f.alpha = 1.0 + f.k
}
