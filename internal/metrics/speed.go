package metrics

import (
	"math"

	"github.com/san-kum/matflow/internal/particle"
)

// MeanSpeed averages particle speed over every observed particle-tick.
type MeanSpeed struct {
	name    string
	total   float64
	samples int
}

func NewMeanSpeed() *MeanSpeed {
	return &MeanSpeed{name: "mean_speed"}
}

func (m *MeanSpeed) Name() string { return m.name }

func (m *MeanSpeed) Observe(store *particle.Store, recycled int, tick int) {
	for _, p := range store.All() {
		m.total += math.Hypot(p.VX, p.VY)
		m.samples++
	}
}

func (m *MeanSpeed) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.total / float64(m.samples)
}

func (m *MeanSpeed) Reset() {
	m.total = 0
	m.samples = 0
}
