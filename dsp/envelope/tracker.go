package envelope

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-envfollow/dsp/core"
)

const (
	// minRecoverySeconds floors the configured recovery time. A recovery time
	// of 0 would degenerate the decay coefficient to 0 and reduce the tracker
	// to a rectifier, so sub-millisecond values are silently clamped.
	minRecoverySeconds = 0.001

	// defaultRecoverySeconds is used until the caller configures a recovery
	// time.
	defaultRecoverySeconds = 0.1
)

// Tracker is an instantaneous-attack, exponential-release peak follower.
//
// Each input sample first decays the level geometrically, then lifts it to
// the sample magnitude if that is larger. The decay coefficient is derived
// from a half-life: after recovery-time seconds without a new peak, the level
// has halved exactly (closed form, not an approximation).
//
// The level is non-negative and, for inputs in [-1, 1], stays in roughly
// [0, 1]. It is not hard-clamped; hotter inputs produce hotter levels.
//
// Not safe for concurrent use.
type Tracker struct {
	sampleRate      float64
	recoverySeconds float64
	decayCoeff      float64
	level           float64
}

// New creates a tracker with a 100 ms recovery time.
// Sample rate must be positive and finite.
func New(sampleRate float64) (*Tracker, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("envelope: sample rate must be positive and finite: %f", sampleRate)
	}

	tr := &Tracker{
		sampleRate:      sampleRate,
		recoverySeconds: defaultRecoverySeconds,
	}

	tr.updateCoefficients()

	return tr, nil
}

// SetRecoveryTime sets the envelope half-life in seconds. Values below 1 ms
// are clamped to 1 ms, not rejected. Negative or non-finite values are an
// error.
func (tr *Tracker) SetRecoveryTime(seconds float64) error {
	if seconds < 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return fmt.Errorf("envelope: recovery time must be non-negative and finite: %f", seconds)
	}

	tr.recoverySeconds = math.Max(seconds, minRecoverySeconds)
	tr.updateCoefficients()

	return nil
}

// SetSampleRate sets the expected input sample rate in Hz. The decay
// coefficient is recomputed from the stored recovery time strictly after the
// rate is updated, so a rate change can never pair a new rate with a stale
// coefficient.
func (tr *Tracker) SetSampleRate(sampleRate float64) error {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return fmt.Errorf("envelope: sample rate must be positive and finite: %f", sampleRate)
	}

	tr.sampleRate = sampleRate
	tr.updateCoefficients()

	return nil
}

// ProcessSample folds one (filtered, gain-scaled) sample into the level.
func (tr *Tracker) ProcessSample(sample float64) {
	tr.level = core.FlushDenormals(tr.level * tr.decayCoeff)

	if abs := math.Abs(sample); abs > tr.level {
		tr.level = abs
	}
}

// Level returns the current envelope level.
func (tr *Tracker) Level() float64 { return tr.level }

// RecoveryTime returns the effective (floored) recovery time in seconds.
func (tr *Tracker) RecoveryTime() float64 { return tr.recoverySeconds }

// SampleRate returns the configured sample rate in Hz.
func (tr *Tracker) SampleRate() float64 { return tr.sampleRate }

// DecayCoeff returns the per-sample decay multiplier.
func (tr *Tracker) DecayCoeff() float64 { return tr.decayCoeff }

// Reset zeroes the level. Configuration is untouched.
func (tr *Tracker) Reset() {
	tr.level = 0
}

// updateCoefficients derives the per-sample decay from the half-life:
// decay^(recovery*rate) = 0.5, so decay = 2^(-1/(recovery*rate)).
func (tr *Tracker) updateCoefficients() {
	samples := tr.recoverySeconds * tr.sampleRate
	tr.decayCoeff = math.Exp2(-1.0 / samples)
}
