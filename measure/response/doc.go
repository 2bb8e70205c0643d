// Package response measures the frequency response of the pipeline's
// first-order filters offline, for verification and display. It is not part
// of the real-time path.
package response
