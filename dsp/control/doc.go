// Package control turns a continuous envelope level into a bounded,
// rate-limited control-value stream.
//
// Included components:
//   - Range: rescales a normalized level into a possibly inverted output
//     span and quantizes it to an integer control value.
//   - Decimator: emits at a fixed low event rate regardless of the audio
//     sample rate.
package control
