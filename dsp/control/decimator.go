package control

import (
	"fmt"
	"math"
)

// DefaultEventRate is the control-event rate applied until the caller
// configures one, in events per second.
const DefaultEventRate = 10.0

// Decimator downsamples a per-audio-sample value stream into discrete
// emission instants at a much lower, fixed rate, decoupling the audio sample
// rate from the outbound control-message rate.
//
// Not safe for concurrent use.
type Decimator struct {
	sampleRate      float64
	eventsPerSecond float64

	samplesPerEvent int
	elapsed         int
}

// NewDecimator creates a decimator emitting at the default 10 events/s.
// Sample rate must be positive and finite.
func NewDecimator(sampleRate float64) (*Decimator, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("control: sample rate must be positive and finite: %f", sampleRate)
	}

	d := &Decimator{
		sampleRate:      sampleRate,
		eventsPerSecond: DefaultEventRate,
	}

	d.updatePeriod()

	return d, nil
}

// SetSampleRate sets the input sample rate in Hz, recomputes the emission
// period and resets the elapsed counter so it can never sit out of range
// relative to the new period.
func (d *Decimator) SetSampleRate(sampleRate float64) error {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return fmt.Errorf("control: sample rate must be positive and finite: %f", sampleRate)
	}

	d.sampleRate = sampleRate
	d.updatePeriod()

	return nil
}

// SetEventRate sets the target emission rate in events per second. The
// period is recomputed and the elapsed counter reset.
func (d *Decimator) SetEventRate(eventsPerSecond float64) error {
	if eventsPerSecond <= 0 || math.IsNaN(eventsPerSecond) || math.IsInf(eventsPerSecond, 0) {
		return fmt.Errorf("control: event rate must be positive and finite: %f", eventsPerSecond)
	}

	d.eventsPerSecond = eventsPerSecond
	d.updatePeriod()

	return nil
}

// Tick counts one processed sample and reports whether an emission is due.
// It returns true exactly once every SamplesPerEvent calls.
func (d *Decimator) Tick() bool {
	d.elapsed++
	if d.elapsed >= d.samplesPerEvent {
		d.elapsed = 0
		return true
	}

	return false
}

// SamplesPerEvent returns the current emission period in samples.
func (d *Decimator) SamplesPerEvent() int { return d.samplesPerEvent }

// EventRate returns the configured emission rate in events per second.
func (d *Decimator) EventRate() float64 { return d.eventsPerSecond }

// Reset zeroes the elapsed counter. Configuration is untouched.
func (d *Decimator) Reset() {
	d.elapsed = 0
}

func (d *Decimator) updatePeriod() {
	period := int(d.sampleRate / d.eventsPerSecond)
	if period < 1 {
		period = 1
	}

	d.samplesPerEvent = period
	d.elapsed = 0
}
