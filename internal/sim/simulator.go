package sim

import (
	"context"
	"fmt"

	"github.com/san-kum/matflow/internal/particle"
)

type Simulator struct {
	metrics   []Metric
	observers []Observer
}

func New() *Simulator {
	return &Simulator{
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// Run creates a store from cfg and steps it headlessly for cfg.Ticks ticks.
func (s *Simulator) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	spawner := particle.NewSpawnerWithMargin(cfg.Seed, cfg.Margin)
	store := particle.NewStore(cfg.Count, spawner, cfg.Width, cfg.Height)
	return s.RunStore(ctx, store, cfg)
}

// RunStore steps an existing store. cfg.Count and cfg.Seed are ignored.
func (s *Simulator) RunStore(ctx context.Context, store *particle.Store, cfg Config) (*Result, error) {
	if cfg.Ticks <= 0 {
		return nil, fmt.Errorf("ticks must be positive, got %d", cfg.Ticks)
	}

	trace := NewTrace(cfg.Ticks, s.metrics...)
	trace.Begin()

	for i := 1; i <= cfg.Ticks; i++ {
		select {
		case <-ctx.Done():
			return trace.Result(store), ctx.Err()
		default:
		}

		recycled := Step(store, cfg.Width, cfg.Height)

		trace.OnTick(store, recycled, i)
		for _, obs := range s.observers {
			obs.OnTick(store, recycled, i)
		}
	}

	return trace.Result(store), nil
}

// Trace is an Observer that records samples and feeds metrics. Any frame
// loop can attach one to produce a Result.
type Trace struct {
	samples  []Sample
	metrics  []Metric
	recycles int
	ticks    int
}

func NewTrace(capacity int, metrics ...Metric) *Trace {
	if capacity < 0 {
		capacity = 0
	}
	return &Trace{
		samples: make([]Sample, 0, capacity),
		metrics: metrics,
	}
}

// Begin resets the trace and its metrics.
func (t *Trace) Begin() {
	t.samples = t.samples[:0]
	t.recycles = 0
	t.ticks = 0
	for _, m := range t.metrics {
		m.Reset()
	}
}

func (t *Trace) OnTick(store *particle.Store, recycled int, tick int) {
	t.samples = append(t.samples, SampleOf(store, recycled, tick))
	t.recycles += recycled
	t.ticks++
	for _, m := range t.metrics {
		m.Observe(store, recycled, tick)
	}
}

func (t *Trace) Result(store *particle.Store) *Result {
	res := &Result{
		Samples:    append([]Sample(nil), t.samples...),
		Metrics:    make(map[string]float64, len(t.metrics)),
		Recycles:   t.recycles,
		TicksTaken: t.ticks,
	}
	if store != nil {
		res.Final = store.Snapshot()
	}
	for _, m := range t.metrics {
		res.Metrics[m.Name()] = m.Value()
	}
	return res
}
