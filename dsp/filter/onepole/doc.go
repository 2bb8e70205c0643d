// Package onepole provides a first-order bilinear-transform IIR filter with
// lowpass and highpass modes sharing a single coefficient derivation.
//
// The filter is intentionally minimal: one pole, one zero, per-sample
// processing with no allocations, suitable for sidechain and detector paths
// where phase accuracy matters less than cost and stability.
package onepole
