package lighter

import "sync/atomic"

// RedrawFlags selects the parts of a progress display to refresh
type RedrawFlags uint8

const (
	DrawProgress RedrawFlags = 1 << iota
	DrawRaycore
	DrawStats
)

// Progress receives task progress in percent
type Progress interface {
	IncTaskProgress(amount float32)
	Redraw(flags RedrawFlags)
}

type nopProgress struct{}

func (nopProgress) IncTaskProgress(float32) {}
func (nopProgress) Redraw(RedrawFlags)      {}

// Counters collects totals of a lighting run. Safe for concurrent use.
type Counters struct {
	Lights           atomic.Int64
	LightsSkipped    atomic.Int64
	Primitives       atomic.Int64
	Elements         atomic.Int64
	ElementsCulled   atomic.Int64
	ElementsShadowed atomic.Int64
}

// CounterSnapshot is a point in time copy of Counters
type CounterSnapshot struct {
	Lights           int64
	LightsSkipped    int64
	Primitives       int64
	Elements         int64
	ElementsCulled   int64
	ElementsShadowed int64
}

func (c *Counters) Snapshot() CounterSnapshot {
	return CounterSnapshot{
		Lights:           c.Lights.Load(),
		LightsSkipped:    c.LightsSkipped.Load(),
		Primitives:       c.Primitives.Load(),
		Elements:         c.Elements.Load(),
		ElementsCulled:   c.ElementsCulled.Load(),
		ElementsShadowed: c.ElementsShadowed.Load(),
	}
}
