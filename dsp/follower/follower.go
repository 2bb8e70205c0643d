package follower

import (
	"errors"
	"fmt"
	"math"
	"sync/atomic"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-envfollow/dsp/control"
	"github.com/cwbudde/algo-envfollow/dsp/core"
	"github.com/cwbudde/algo-envfollow/dsp/envelope"
	"github.com/cwbudde/algo-envfollow/dsp/filter/onepole"
)

// Default parameter values applied by New.
const (
	defaultGain         = 1.0
	defaultMinOutput    = 0.0
	defaultMaxOutput    = 127.0
	defaultLowpassHz    = 20000.0
	defaultHighpassHz   = 0.0
	defaultRecoverySecs = 0.1
)

// ErrNotPrepared is returned when processing is attempted before a
// successful Prepare call. Processing on zero-initialized coefficients would
// be indistinguishable from legitimate zero-cutoff behavior, so it is
// rejected instead.
var ErrNotPrepared = errors.New("follower: not prepared")

// Emitter receives the mapped control value at each decimated emission
// instant. Emit is called synchronously on the processing goroutine, so
// implementations must not block; hand off to a channel or ring buffer for
// anything slow.
type Emitter interface {
	Emit(value int)
}

// EmitterFunc adapts a plain function to the Emitter interface.
type EmitterFunc func(value int)

// Emit calls fn(value).
func (fn EmitterFunc) Emit(value int) { fn(value) }

type state int

const (
	stateUninitialized state = iota
	statePrepared
	stateRunning
)

// Follower converts an audio sample stream into a rate-limited integer
// control-value stream: channel average -> gain -> lowpass -> highpass ->
// envelope tracking -> range mapping -> decimation.
//
// Concurrency contract: Prepare, ProcessSample and ProcessBuffer belong to
// a single processing goroutine and must be serialized by the caller. The
// Set* methods may be called from any other goroutine at any time without
// blocking the processing goroutine; each parameter is published atomically
// and folded in at the start of the next buffer (or the next sample for
// standalone ProcessSample use). CurrentValue and PendingEmission may be
// read from any goroutine.
type Follower struct {
	// Control-path parameters, published atomically.
	gain         param
	minOutput    param
	maxOutput    param
	lowpassHz    param
	highpassHz   param
	recoverySecs param
	eventRate    param
	dirty        atomic.Bool

	// Processing-goroutine state.
	st          state
	sampleRate  float64
	lowpass     *onepole.Filter
	highpass    *onepole.Filter
	env         *envelope.Tracker
	decimator   *control.Decimator
	outputRange control.Range
	appliedGain float64
	mix         []float64
	emitter     Emitter

	// Shared outputs.
	lastValue atomic.Int64
	pending   atomic.Bool
}

// New creates an unprepared follower with the default parameters: unity
// gain, output range 0..127, lowpass 20 kHz, highpass 0 Hz, 100 ms recovery,
// 10 events/s. Call Prepare before processing.
func New() *Follower {
	f := &Follower{}
	f.gain.Store(defaultGain)
	f.minOutput.Store(defaultMinOutput)
	f.maxOutput.Store(defaultMaxOutput)
	f.lowpassHz.Store(defaultLowpassHz)
	f.highpassHz.Store(defaultHighpassHz)
	f.recoverySecs.Store(defaultRecoverySecs)
	f.eventRate.Store(control.DefaultEventRate)

	return f
}

// Prepare binds the follower to a sample rate and buffer size hint and fully
// resets the stream state: filter memory, envelope level and the emission
// counter are cleared, and every derived coefficient is recomputed from the
// current parameter values (sample rates first, dependents after).
//
// Prepare is also the sample-rate-change path: calling it on a prepared
// follower repeats the full reset, an accepted discontinuity since a rate
// change invalidates filter continuity anyway.
//
// samplesPerBuffer sizes the internal mono mix buffer. Larger buffers are
// tolerated at the cost of one allocation on the first oversized call.
//
// Prepare must not run concurrently with ProcessSample or ProcessBuffer;
// the caller pauses the stream first.
func (f *Follower) Prepare(sampleRate float64, samplesPerBuffer int) error {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return fmt.Errorf("follower: sample rate must be positive and finite: %f", sampleRate)
	}

	if samplesPerBuffer <= 0 {
		return fmt.Errorf("follower: samples per buffer must be positive: %d", samplesPerBuffer)
	}

	if f.lowpass == nil {
		var err error

		f.lowpass, err = onepole.New(sampleRate)
		if err != nil {
			return err
		}

		f.highpass, err = onepole.New(sampleRate)
		if err != nil {
			return err
		}

		f.env, err = envelope.New(sampleRate)
		if err != nil {
			return err
		}

		f.decimator, err = control.NewDecimator(sampleRate)
		if err != nil {
			return err
		}
	} else {
		if err := f.lowpass.SetSampleRate(sampleRate); err != nil {
			return err
		}

		if err := f.highpass.SetSampleRate(sampleRate); err != nil {
			return err
		}

		if err := f.env.SetSampleRate(sampleRate); err != nil {
			return err
		}

		if err := f.decimator.SetSampleRate(sampleRate); err != nil {
			return err
		}
	}

	f.sampleRate = sampleRate
	f.mix = core.EnsureLen(f.mix, samplesPerBuffer)

	f.lowpass.Reset()
	f.highpass.Reset()
	f.env.Reset()
	f.decimator.Reset()
	f.lastValue.Store(0)
	f.pending.Store(false)

	f.applyParameters()
	f.dirty.Store(false)

	f.st = statePrepared

	return nil
}

// PrepareConfig is Prepare with shared processor options; omitted options
// fall back to core.DefaultProcessorConfig.
func (f *Follower) PrepareConfig(opts ...core.ProcessorOption) error {
	cfg := core.ApplyProcessorOptions(opts...)

	return f.Prepare(cfg.SampleRate, cfg.BlockSize)
}

// SetGain publishes the linear input gain. Must be positive and finite.
func (f *Follower) SetGain(linear float64) error {
	if linear <= 0 || math.IsNaN(linear) || math.IsInf(linear, 0) {
		return fmt.Errorf("follower: gain must be positive and finite: %f", linear)
	}

	f.gain.Store(linear)
	f.dirty.Store(true)

	return nil
}

// SetOutputRange publishes the output value bounds. min greater than max is
// valid and produces an inverted mapping.
func (f *Follower) SetOutputRange(min, max float64) error {
	if math.IsNaN(min) || math.IsInf(min, 0) || math.IsNaN(max) || math.IsInf(max, 0) {
		return fmt.Errorf("follower: output range must be finite: [%f, %f]", min, max)
	}

	f.minOutput.Store(min)
	f.maxOutput.Store(max)
	f.dirty.Store(true)

	return nil
}

// SetLowpassCutoff publishes the lowpass cutoff frequency in Hz.
func (f *Follower) SetLowpassCutoff(hz float64) error {
	if hz < 0 || math.IsNaN(hz) || math.IsInf(hz, 0) {
		return fmt.Errorf("follower: lowpass cutoff must be non-negative and finite: %f", hz)
	}

	f.lowpassHz.Store(hz)
	f.dirty.Store(true)

	return nil
}

// SetHighpassCutoff publishes the highpass cutoff frequency in Hz.
func (f *Follower) SetHighpassCutoff(hz float64) error {
	if hz < 0 || math.IsNaN(hz) || math.IsInf(hz, 0) {
		return fmt.Errorf("follower: highpass cutoff must be non-negative and finite: %f", hz)
	}

	f.highpassHz.Store(hz)
	f.dirty.Store(true)

	return nil
}

// SetRecoveryTime publishes the envelope half-life in seconds. Values below
// 1 ms are applied floored to 1 ms; the configured value is preserved for
// read-back.
func (f *Follower) SetRecoveryTime(seconds float64) error {
	if seconds < 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return fmt.Errorf("follower: recovery time must be non-negative and finite: %f", seconds)
	}

	f.recoverySecs.Store(seconds)
	f.dirty.Store(true)

	return nil
}

// SetEventRate publishes the control emission rate in events per second.
func (f *Follower) SetEventRate(eventsPerSecond float64) error {
	if eventsPerSecond <= 0 || math.IsNaN(eventsPerSecond) || math.IsInf(eventsPerSecond, 0) {
		return fmt.Errorf("follower: event rate must be positive and finite: %f", eventsPerSecond)
	}

	f.eventRate.Store(eventsPerSecond)
	f.dirty.Store(true)

	return nil
}

// SetEmitter installs the emission callback. Install before Prepare or while
// the stream is paused; the emitter is invoked from the processing
// goroutine.
func (f *Follower) SetEmitter(e Emitter) {
	f.emitter = e
}

// Gain returns the published linear gain.
func (f *Follower) Gain() float64 { return f.gain.Load() }

// OutputRange returns the published output bounds.
func (f *Follower) OutputRange() (min, max float64) {
	return f.minOutput.Load(), f.maxOutput.Load()
}

// LowpassCutoff returns the published lowpass cutoff in Hz.
func (f *Follower) LowpassCutoff() float64 { return f.lowpassHz.Load() }

// HighpassCutoff returns the published highpass cutoff in Hz.
func (f *Follower) HighpassCutoff() float64 { return f.highpassHz.Load() }

// RecoveryTime returns the published recovery time in seconds, as
// configured (before the 1 ms floor).
func (f *Follower) RecoveryTime() float64 { return f.recoverySecs.Load() }

// EventRate returns the published emission rate in events per second.
func (f *Follower) EventRate() float64 { return f.eventRate.Load() }

// SampleRate returns the prepared sample rate, 0 before Prepare.
func (f *Follower) SampleRate() float64 { return f.sampleRate }

// CurrentValue returns the most recently mapped control value. Valid at any
// time from any goroutine; 0 before the first processed sample.
func (f *Follower) CurrentValue() int {
	return int(f.lastValue.Load())
}

// PendingEmission reports whether an emission instant has passed since the
// last call, consuming the flag. It observes true exactly once per
// decimation period.
func (f *Follower) PendingEmission() bool {
	return f.pending.Swap(false)
}

// ProcessSample feeds one raw (already channel-summed) sample through the
// pipeline. Returns ErrNotPrepared before Prepare; after valid preparation
// it cannot fail.
func (f *Follower) ProcessSample(raw float64) error {
	if f.st == stateUninitialized {
		return ErrNotPrepared
	}

	if f.dirty.CompareAndSwap(true, false) {
		f.applyParameters()
	}

	f.st = stateRunning
	f.processOne(raw)

	return nil
}

// ProcessBuffer feeds one block of planar channel data through the pipeline.
// All channels must share one length. Channels are averaged into the
// internal mono buffer before the per-sample path runs; pending parameter
// updates are folded in once at the top of the block.
//
// Returns ErrNotPrepared before Prepare; otherwise it only fails on
// malformed channel layouts.
func (f *Follower) ProcessBuffer(channels [][]float64) error {
	if f.st == stateUninitialized {
		return ErrNotPrepared
	}

	if len(channels) == 0 {
		return fmt.Errorf("follower: no input channels")
	}

	n := len(channels[0])
	for i, ch := range channels[1:] {
		if len(ch) != n {
			return fmt.Errorf("follower: channel %d length %d does not match channel 0 length %d", i+1, len(ch), n)
		}
	}

	if f.dirty.CompareAndSwap(true, false) {
		f.applyParameters()
	}

	f.st = stateRunning

	if n == 0 {
		return nil
	}

	f.mix = core.EnsureLen(f.mix, n)
	core.CopyInto(f.mix, channels[0])

	if len(channels) > 1 {
		for _, ch := range channels[1:] {
			vecmath.AddBlockInPlace(f.mix, ch)
		}

		vecmath.ScaleBlock(f.mix, f.mix, 1.0/float64(len(channels)))
	}

	for _, sample := range f.mix {
		f.processOne(sample)
	}

	return nil
}

// processOne is the hot path: one sample in, one mapped value out, one
// decimator tick. No allocations, no locks.
func (f *Follower) processOne(raw float64) {
	s := raw * f.appliedGain
	s = f.lowpass.ProcessLowpass(s)
	s = f.highpass.ProcessHighpass(s)
	f.env.ProcessSample(s)

	value := f.outputRange.Map(f.env.Level())
	f.lastValue.Store(int64(value))

	if f.decimator.Tick() {
		f.pending.Store(true)

		if f.emitter != nil {
			f.emitter.Emit(value)
		}
	}
}

// applyParameters folds the latest published parameter values into the
// processing components. Values were validated at publish time, so the
// component setters cannot fail here.
func (f *Follower) applyParameters() {
	f.appliedGain = f.gain.Load()
	f.outputRange = control.Range{Min: f.minOutput.Load(), Max: f.maxOutput.Load()}

	_ = f.lowpass.SetCutoff(f.lowpassHz.Load())
	_ = f.highpass.SetCutoff(f.highpassHz.Load())
	_ = f.env.SetRecoveryTime(f.recoverySecs.Load())

	if rate := f.eventRate.Load(); rate != f.decimator.EventRate() {
		_ = f.decimator.SetEventRate(rate)
	}
}
