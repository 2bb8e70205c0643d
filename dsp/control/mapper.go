package control

import "github.com/cwbudde/algo-envfollow/dsp/core"

// Range maps a normalized envelope level onto a user-configured output span.
//
// Min may exceed Max: the mapping then runs inverted (level 0 produces Min,
// level 1 produces Max, with Min > Max), which is a valid configuration and
// is honored, not corrected. The output is always clamped to the sorted
// bounds, so levels outside [0, 1] cannot escape the output domain.
type Range struct {
	Min float64
	Max float64
}

// Map rescales level into the range and quantizes it. Scaling first, then
// clamping to the sorted bounds, then truncation toward zero.
func (r Range) Map(level float64) int {
	scaled := level*(r.Max-r.Min) + r.Min
	return int(core.Clamp(scaled, r.Min, r.Max))
}
