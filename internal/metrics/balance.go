package metrics

import (
	"math"

	"github.com/san-kum/matflow/internal/particle"
	"github.com/san-kum/matflow/internal/sim"
)

// ColorBalance tracks the worst deviation of any colour class share from an
// even split, across all observed ticks.
type ColorBalance struct {
	name     string
	maxDrift float64
}

func NewColorBalance() *ColorBalance {
	return &ColorBalance{name: "color_balance"}
}

func (c *ColorBalance) Name() string { return c.name }

func (c *ColorBalance) Observe(store *particle.Store, recycled int, tick int) {
	n := store.Len()
	if n == 0 {
		return
	}

	even := 1.0 / particle.NumClasses
	for _, count := range store.ClassCounts() {
		drift := math.Abs(float64(count)/float64(n) - even)
		c.maxDrift = math.Max(c.maxDrift, drift)
	}
}

func (c *ColorBalance) Value() float64 { return c.maxDrift }

func (c *ColorBalance) Reset() {
	c.maxDrift = 0
}

// Defaults returns a fresh set of the standard run metrics.
func Defaults() []sim.Metric {
	return []sim.Metric{
		NewRecycleRate(),
		NewMeanSpeed(),
		NewColorBalance(),
	}
}
