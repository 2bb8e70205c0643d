// Package follower wires the envelope-following pipeline: channel averaging,
// gain, lowpass/highpass prefiltering, amplitude envelope tracking, range
// mapping and control-rate decimation, behind a prepare/process surface that
// a host audio callback can drive without locks or allocations.
//
// The package owns the lock-free parameter hand-off between a non-real-time
// control path (user interaction, automation) and the processing goroutine:
// setters publish atomically, the processing path folds updates in at block
// boundaries.
package follower
