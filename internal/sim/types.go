package sim

import (
	"fmt"

	"github.com/san-kum/matflow/internal/particle"
)

// Metric accumulates a scalar over the ticks of a run.
type Metric interface {
	Name() string
	Observe(store *particle.Store, recycled int, tick int)
	Value() float64
	Reset()
}

// Observer is notified after every simulation step.
type Observer interface {
	OnTick(store *particle.Store, recycled int, tick int)
}

type Config struct {
	Width  float64
	Height float64
	Ticks  int
	Count  int
	Margin float64
	Seed   int64
}

func DefaultConfig() Config {
	return Config{
		Width:  1280,
		Height: 720,
		Ticks:  600,
		Count:  particle.DefaultCount,
		Margin: particle.Margin,
	}
}

func (c Config) Validate() error {
	if c.Ticks <= 0 {
		return fmt.Errorf("ticks must be positive, got %d", c.Ticks)
	}
	if c.Count <= 0 {
		return fmt.Errorf("count must be positive, got %d", c.Count)
	}
	if c.Margin < 0 {
		return fmt.Errorf("margin must not be negative, got %f", c.Margin)
	}
	return nil
}

// Sample is the per-tick summary of a run.
type Sample struct {
	Tick     int
	Recycles int
	MeanX    float64
	MeanY    float64
}

type Result struct {
	Samples    []Sample
	Final      []particle.Particle
	Metrics    map[string]float64
	Recycles   int
	TicksTaken int
}

func SampleOf(store *particle.Store, recycled, tick int) Sample {
	s := Sample{Tick: tick, Recycles: recycled}
	n := store.Len()
	if n == 0 {
		return s
	}
	for _, p := range store.All() {
		s.MeanX += p.X
		s.MeanY += p.Y
	}
	s.MeanX /= float64(n)
	s.MeanY /= float64(n)
	return s
}
