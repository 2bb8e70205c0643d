package follower

import (
	"math"
	"sync/atomic"
)

// param is an independently published float64 parameter. The control path
// stores the latest value with a single atomic write; the audio path reads
// it with a single atomic load. A reader can observe a one-buffer-old value,
// but never a torn one.
type param struct {
	bits atomic.Uint64
}

func (p *param) Store(v float64) {
	p.bits.Store(math.Float64bits(v))
}

func (p *param) Load() float64 {
	return math.Float64frombits(p.bits.Load())
}
