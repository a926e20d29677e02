package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBudgetSpend(t *testing.T) {
	b := NewBudget(10)

	assert.True(t, b.Spend(4))
	assert.True(t, b.Spend(4))
	assert.InDelta(t, 8, b.Used(), 0.001)
	assert.InDelta(t, 2, b.Remaining(), 0.001)

	// Not enough left: nothing is charged.
	assert.False(t, b.Spend(4))
	assert.InDelta(t, 8, b.Used(), 0.001)

	assert.True(t, b.Spend(2))
	assert.Zero(t, b.Remaining())
}

func TestBudgetCap(t *testing.T) {
	b := NewBudget(10)
	assert.Equal(t, 10, b.Cap(CostScan))
	assert.Equal(t, 2, b.Cap(CostSurvey))

	b.Spend(9)
	assert.Equal(t, 1, b.Cap(CostScan))
	assert.Equal(t, 0, b.Cap(CostSurvey))
	assert.Equal(t, 0, b.Cap(0))
}
