// Package envelope provides an amplitude envelope tracker with instantaneous
// attack and exponential half-life release, the detector stage of the
// audio-to-control-value pipeline.
package envelope
