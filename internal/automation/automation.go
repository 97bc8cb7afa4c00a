package automation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/san-kum/matflow/internal/export"
	"github.com/san-kum/matflow/internal/lifecycle"
	"github.com/san-kum/matflow/internal/metrics"
	"github.com/san-kum/matflow/internal/particle"
	"github.com/san-kum/matflow/internal/render"
	"github.com/san-kum/matflow/internal/scheduler"
	"github.com/san-kum/matflow/internal/sim"
	"gonum.org/v1/gonum/stat"
	"gopkg.in/yaml.v3"
)

var ErrInvalidScenario = errors.New("invalid scenario")

// Scenario is a scripted sequence of viewport sizes played against one
// mounted background.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Count       int            `yaml:"count"`
	Seed        int64          `yaml:"seed"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep resizes the viewport to Width x Height and then runs Ticks
// frames. SaveAs, when set, writes the last frame of the step as SVG.
type ScenarioStep struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Ticks  int    `yaml:"ticks"`
	SaveAs string `yaml:"save_as"`
}

type StepResult struct {
	Index    int
	Width    float64
	Height   float64
	Ticks    int
	Recycles int
	// OutOfBounds counts particles past the recycle threshold after the
	// step's last frame. It is always zero for a healthy loop.
	OutOfBounds int
}

type ScenarioResult struct {
	Steps []StepResult
	Run   *sim.Result
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if err := scenario.Validate(); err != nil {
		return nil, err
	}

	return &scenario, nil
}

func (s *Scenario) Validate() error {
	if len(s.Steps) == 0 {
		return fmt.Errorf("%w: no steps", ErrInvalidScenario)
	}
	if s.Count < 0 {
		return fmt.Errorf("%w: negative count %d", ErrInvalidScenario, s.Count)
	}
	for i, step := range s.Steps {
		if step.Ticks <= 0 {
			return fmt.Errorf("%w: step %d: ticks must be positive", ErrInvalidScenario, i+1)
		}
		if step.Width < 0 || step.Height < 0 {
			return fmt.Errorf("%w: step %d: negative size", ErrInvalidScenario, i+1)
		}
	}
	return nil
}

// RunScenario mounts a controller against a recording surface sized to the
// first step and plays every step in order. Scenario count and seed override
// opts when set.
func RunScenario(ctx context.Context, scenario *Scenario, opts lifecycle.Options) (*ScenarioResult, error) {
	if err := scenario.Validate(); err != nil {
		return nil, err
	}
	if scenario.Count > 0 {
		opts.Count = scenario.Count
	}
	if scenario.Seed != 0 {
		opts.Seed = scenario.Seed
	}

	first := scenario.Steps[0]
	sched := scheduler.New()
	view := scheduler.NewViewport(first.Width, first.Height)
	rec := render.NewRecorder(first.Width, first.Height)
	ctrl := lifecycle.New(lifecycle.NewLocalHost(sched, view, lifecycle.StaticSurface(rec)), opts)

	total := 0
	for _, step := range scenario.Steps {
		total += step.Ticks
	}
	trace := sim.NewTrace(total, metrics.Defaults()...)
	trace.Begin()
	ctrl.AddObserver(trace)

	if err := ctrl.Mount(); err != nil {
		return nil, fmt.Errorf("mount: %w", err)
	}
	defer ctrl.Unmount()

	results := make([]StepResult, 0, len(scenario.Steps))
	for i, step := range scenario.Steps {
		log.Printf("scenario %s: step %d/%d %dx%d for %d ticks", scenario.Name, i+1, len(scenario.Steps), step.Width, step.Height, step.Ticks)

		view.Resize(step.Width, step.Height)
		before := ctrl.Recycles()
		for t := 0; t < step.Ticks; t++ {
			if err := ctx.Err(); err != nil {
				return &ScenarioResult{Steps: results, Run: trace.Result(ctrl.Store())}, fmt.Errorf("step %d: %w", i+1, err)
			}
			sched.Pump()
		}

		w, h := ctrl.Size()
		results = append(results, StepResult{
			Index:       i,
			Width:       w,
			Height:      h,
			Ticks:       step.Ticks,
			Recycles:    ctrl.Recycles() - before,
			OutOfBounds: outOfBounds(ctrl.Store(), w),
		})

		if step.SaveAs != "" {
			svg := export.FrameToSVG(rec, "#000000")
			if err := os.WriteFile(step.SaveAs, []byte(svg), 0644); err != nil {
				return &ScenarioResult{Steps: results, Run: trace.Result(ctrl.Store())}, fmt.Errorf("step %d save: %w", i+1, err)
			}
		}
	}

	return &ScenarioResult{Steps: results, Run: trace.Result(ctrl.Store())}, nil
}

func outOfBounds(store *particle.Store, width float64) int {
	if store == nil {
		return 0
	}
	n := 0
	for _, p := range store.All() {
		if p.X > width+store.Margin() {
			n++
		}
	}
	return n
}

// CountSweep runs headless simulations across a range of particle counts.
type CountSweep struct {
	MinCount int
	MaxCount int
	NumSteps int
	Config   sim.Config
}

type SweepResult struct {
	Count       int
	Recycles    int
	RecycleRate float64
	MeanSpeed   float64
	Elapsed     time.Duration
}

func RunSweep(ctx context.Context, sweep *CountSweep) ([]SweepResult, error) {
	if sweep.NumSteps < 1 {
		return nil, fmt.Errorf("sweep needs at least one step, got %d", sweep.NumSteps)
	}
	if sweep.MinCount <= 0 || sweep.MaxCount < sweep.MinCount {
		return nil, fmt.Errorf("invalid count range %d..%d", sweep.MinCount, sweep.MaxCount)
	}

	results := make([]SweepResult, 0, sweep.NumSteps)
	stride := 0.0
	if sweep.NumSteps > 1 {
		stride = float64(sweep.MaxCount-sweep.MinCount) / float64(sweep.NumSteps-1)
	}

	for i := 0; i < sweep.NumSteps; i++ {
		cfg := sweep.Config
		cfg.Count = sweep.MinCount + int(float64(i)*stride+0.5)

		rate := metrics.NewRecycleRate()
		speed := metrics.NewMeanSpeed()
		s := sim.New()
		s.AddMetric(rate)
		s.AddMetric(speed)

		start := time.Now()
		result, err := s.Run(ctx, cfg)
		if err != nil {
			return results, fmt.Errorf("count %d: %w", cfg.Count, err)
		}

		results = append(results, SweepResult{
			Count:       cfg.Count,
			Recycles:    result.Recycles,
			RecycleRate: rate.Value(),
			MeanSpeed:   speed.Value(),
			Elapsed:     time.Since(start),
		})
		log.Printf("sweep %d/%d: count=%d recycles=%d", i+1, sweep.NumSteps, cfg.Count, result.Recycles)
	}

	return results, nil
}

// SeedTrials runs the same configuration under NumTrials consecutive seeds
// and checks that every run stays inside the flow bounds.
type SeedTrials struct {
	Config    sim.Config
	NumTrials int
	SeedStart int64
}

type TrialResult struct {
	Seed     int64
	Recycles int
	Final    []particle.Particle
	Bounded  bool
}

func RunTrials(ctx context.Context, cfg *SeedTrials) ([]TrialResult, error) {
	if cfg.NumTrials < 1 {
		return nil, fmt.Errorf("trials must be positive, got %d", cfg.NumTrials)
	}

	ens := sim.NewEnsemble(cfg.NumTrials, cfg.SeedStart, nil)
	runs, err := ens.Run(ctx, cfg.Config)
	if err != nil {
		return nil, err
	}

	results := make([]TrialResult, 0, len(runs))
	for i, run := range runs {
		results = append(results, TrialResult{
			Seed:     cfg.SeedStart + int64(i),
			Recycles: run.Recycles,
			Final:    run.Final,
			Bounded:  bounded(run.Final, cfg.Config),
		})
	}
	return results, nil
}

// bounded reports whether every particle is inside the horizontal flow band.
// Y is not checked since vertical drift never wraps.
func bounded(ps []particle.Particle, cfg sim.Config) bool {
	for _, p := range ps {
		if p.X < -cfg.Margin || p.X > cfg.Width+cfg.Margin {
			return false
		}
	}
	return true
}

func TrialStats(results []TrialResult) (ok int, failed int) {
	for _, r := range results {
		if r.Bounded {
			ok++
		} else {
			failed++
		}
	}
	return
}

// RecycleSpread is the mean and sample standard deviation of recycles
// across trials.
func RecycleSpread(results []TrialResult) (mean, std float64) {
	if len(results) == 0 {
		return 0, 0
	}
	xs := make([]float64, len(results))
	for i, r := range results {
		xs[i] = float64(r.Recycles)
	}
	if len(xs) == 1 {
		return xs[0], 0
	}
	return stat.MeanStdDev(xs, nil)
}
