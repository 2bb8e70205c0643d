// Package midi encodes control-change messages and adapts the pipeline's
// emission callback to an outbound Sender. The actual transport (device,
// driver bus, network) stays behind the Sender interface.
package midi
