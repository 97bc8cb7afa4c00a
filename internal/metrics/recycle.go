package metrics

import "github.com/san-kum/matflow/internal/particle"

// RecycleRate is the mean number of particles recycled per tick.
type RecycleRate struct {
	name     string
	recycles int
	ticks    int
}

func NewRecycleRate() *RecycleRate {
	return &RecycleRate{name: "recycle_rate"}
}

func (r *RecycleRate) Name() string { return r.name }

func (r *RecycleRate) Observe(store *particle.Store, recycled int, tick int) {
	r.recycles += recycled
	r.ticks++
}

func (r *RecycleRate) Value() float64 {
	if r.ticks == 0 {
		return 0
	}
	return float64(r.recycles) / float64(r.ticks)
}

func (r *RecycleRate) Reset() {
	r.recycles = 0
	r.ticks = 0
}
