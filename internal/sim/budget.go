// Package sim runs the coordination layer against a world, one metered step
// per tick.
package sim

// Costs of the expensive operations a step can perform, in budget units.
// Cheap bookkeeping (state machine steps, cache reads) is not metered.
const (
	CostScan   = 1.0 // One zone observation graded and cached
	CostSurvey = 5.0 // One discovery walk from a home zone
)

// Budget meters compute within a single step. Every step starts with a fresh
// budget; expensive work asks first and backs off when the well is dry.
type Budget struct {
	limit float64
	used  float64
}

// NewBudget returns a budget holding limit units.
func NewBudget(limit float64) *Budget {
	return &Budget{limit: limit}
}

// Spend charges cost against the budget. It reports false, charging
// nothing, when less than cost remains.
func (b *Budget) Spend(cost float64) bool {
	if b.Remaining() < cost {
		return false
	}
	b.used += cost
	return true
}

// Cap returns how many operations of the given cost still fit.
func (b *Budget) Cap(cost float64) int {
	if cost <= 0 {
		return 0
	}
	return int(b.Remaining() / cost)
}

// Used returns the units spent so far.
func (b *Budget) Used() float64 { return b.used }

// Remaining returns the units left.
func (b *Budget) Remaining() float64 {
	if b.used >= b.limit {
		return 0
	}
	return b.limit - b.used
}
