package sim

import (
	"context"
	"testing"

	"github.com/san-kum/matflow/internal/particle"
)

type testMetric struct {
	count    int
	recycles int
}

func (t *testMetric) Name() string { return "test" }
func (t *testMetric) Observe(store *particle.Store, recycled int, tick int) {
	t.count++
	t.recycles += recycled
}
func (t *testMetric) Value() float64 { return float64(t.recycles) }
func (t *testMetric) Reset() {
	t.count = 0
	t.recycles = 0
}

type countingObserver struct{ ticks []int }

func (c *countingObserver) OnTick(store *particle.Store, recycled int, tick int) {
	c.ticks = append(c.ticks, tick)
}

func TestSimulatorRun(t *testing.T) {
	s := New()
	cfg := Config{Width: 200, Height: 100, Ticks: 300, Count: 25, Margin: 20, Seed: 4}

	result, err := s.Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if len(result.Samples) != 300 {
		t.Errorf("expected 300 samples, got %d", len(result.Samples))
	}
	if result.TicksTaken != 300 {
		t.Errorf("expected 300 ticks, got %d", result.TicksTaken)
	}
	if len(result.Final) != 25 {
		t.Errorf("expected 25 final particles, got %d", len(result.Final))
	}
	if result.Recycles == 0 {
		t.Error("expected recycles over 300 ticks on a 200px surface")
	}

	sum := 0
	for _, sm := range result.Samples {
		sum += sm.Recycles
	}
	if sum != result.Recycles {
		t.Errorf("sample recycles %d do not add up to %d", sum, result.Recycles)
	}
}

func TestSimulatorDeterministic(t *testing.T) {
	cfg := Config{Width: 640, Height: 480, Ticks: 100, Count: 10, Margin: 20, Seed: 77}

	a, err := New().Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	b, err := New().Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	for i := range a.Final {
		if a.Final[i] != b.Final[i] {
			t.Fatalf("particle %d differs between identical runs", i)
		}
	}
}

func TestSimulatorInvalidConfig(t *testing.T) {
	s := New()

	tests := []struct {
		name string
		cfg  Config
	}{
		{"zero ticks", Config{Ticks: 0, Count: 10}},
		{"negative ticks", Config{Ticks: -5, Count: 10}},
		{"zero count", Config{Ticks: 10, Count: 0}},
		{"negative margin", Config{Ticks: 10, Count: 10, Margin: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Run(context.Background(), tt.cfg)
			if err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestSimulatorMetricsAndObservers(t *testing.T) {
	s := New()
	metric := &testMetric{}
	obs := &countingObserver{}
	s.AddMetric(metric)
	s.AddObserver(obs)

	cfg := Config{Width: 100, Height: 100, Ticks: 50, Count: 10, Margin: 20, Seed: 1}
	result, err := s.Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if _, ok := result.Metrics["test"]; !ok {
		t.Error("metric not found in result")
	}
	if metric.count != 50 {
		t.Errorf("expected 50 observations, got %d", metric.count)
	}
	if len(obs.ticks) != 50 || obs.ticks[0] != 1 || obs.ticks[49] != 50 {
		t.Errorf("unexpected observer ticks: %v", obs.ticks)
	}
}

func TestSimulatorCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := New().Run(ctx, Config{Width: 100, Height: 100, Ticks: 10, Count: 5})
	if err == nil {
		t.Fatal("expected context error")
	}
	if result == nil || result.TicksTaken != 0 {
		t.Errorf("expected empty partial result, got %+v", result)
	}
}

func TestEnsemble(t *testing.T) {
	ens := NewEnsemble(4, 100, func() []Metric { return []Metric{&testMetric{}} })
	results, err := ens.Run(context.Background(), Config{Width: 300, Height: 200, Ticks: 120, Count: 20, Margin: 20})
	if err != nil {
		t.Fatalf("ensemble failed: %v", err)
	}
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}
	if results[0].Final[0] == results[1].Final[0] {
		t.Error("expected different seeds to produce different runs")
	}
}
