package main

import (
	"context"
	"fmt"
	"image/color"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/matflow/internal/analysis"
	"github.com/san-kum/matflow/internal/automation"
	"github.com/san-kum/matflow/internal/config"
	"github.com/san-kum/matflow/internal/export"
	"github.com/san-kum/matflow/internal/lifecycle"
	"github.com/san-kum/matflow/internal/metrics"
	"github.com/san-kum/matflow/internal/render"
	"github.com/san-kum/matflow/internal/scheduler"
	"github.com/san-kum/matflow/internal/sim"
	"github.com/san-kum/matflow/internal/storage"
	"github.com/san-kum/matflow/internal/viz"
)

var (
	dataDir    string
	configFile string
	preset     string
	debug      bool

	count  int
	margin float64
	seed   int64
	width  int
	height int
	ticks  int
	fps    int
	blur   float64

	// live
	theme   string
	scale   float64
	gifPath string

	// render
	runName   string
	pngOut    string
	gifOut    string
	svgOut    string
	gifEvery  int
	gifWidth  int
	resizes   []string
	noSave    bool
	svgSeries string

	// bench
	minCount  int
	maxCount  int
	numSteps  int
	numTrials int

	addr string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "matflow",
		Short: "drifting particle background",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(debug)
		},
		RunE: runLive,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".matflow", "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "use preset configuration")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run the background in the terminal",
		RunE:  runLive,
	}
	addBackgroundFlags(liveCmd)
	liveCmd.Flags().StringVar(&theme, "theme", "industrial", "colour theme")
	liveCmd.Flags().Float64Var(&scale, "scale", 4, "surface pixels per braille dot")
	liveCmd.Flags().StringVar(&gifPath, "gif", "matflow.gif", "output path for GIF recording (g key)")
	addBackgroundFlags(rootCmd)
	rootCmd.Flags().StringVar(&theme, "theme", "industrial", "colour theme")
	rootCmd.Flags().Float64Var(&scale, "scale", 4, "surface pixels per braille dot")
	rootCmd.Flags().StringVar(&gifPath, "gif", "matflow.gif", "output path for GIF recording (g key)")

	renderCmd := &cobra.Command{
		Use:   "render",
		Short: "run headlessly and export frames",
		RunE:  runRender,
	}
	addBackgroundFlags(renderCmd)
	addSizeFlags(renderCmd)
	renderCmd.Flags().StringVar(&runName, "name", "background", "run name")
	renderCmd.Flags().StringVar(&pngOut, "png", "", "write the final frame as PNG")
	renderCmd.Flags().StringVar(&gifOut, "gif", "", "write an animated GIF")
	renderCmd.Flags().StringVar(&svgOut, "svg", "", "write the final frame as SVG")
	renderCmd.Flags().IntVar(&gifEvery, "gif-every", 2, "capture every Nth frame into the GIF")
	renderCmd.Flags().IntVar(&gifWidth, "gif-width", 640, "downscale GIF frames to this width (0 keeps full size)")
	renderCmd.Flags().StringSliceVar(&resizes, "resize", nil, "resize at a tick, as tick:WxH (repeatable)")
	renderCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run results",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&svgSeries, "svg", "", "also write the mean x series as SVG")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "recycle period analysis",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return storage.New(dataDir).ExportJSON(os.Stdout, args[0])
		},
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run samples to CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return storage.New(dataDir).CopySamples(os.Stdout, args[0])
		},
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tCOUNT\tMARGIN\tFPS\tBLUR")
			for _, name := range config.ListPresets() {
				p := config.Presets[name]
				fmt.Fprintf(w, "%s\t%d\t%.0f\t%d\t%.0f\n", name, p.Count, p.Margin, p.FPS, p.Blur)
			}
			return w.Flush()
		},
	}

	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "write a config file with the current settings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := config.Save(args[0], cfg); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", args[0])
			return nil
		},
	}
	addBackgroundFlags(initCmd)
	addSizeFlags(initCmd)

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "play a yaml resize scenario headlessly",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "benchmark particle counts",
		RunE:  runBench,
	}
	addSizeFlags(benchCmd)
	benchCmd.Flags().IntVar(&minCount, "min", 80, "smallest particle count")
	benchCmd.Flags().IntVar(&maxCount, "max", 2000, "largest particle count")
	benchCmd.Flags().IntVar(&numSteps, "steps", 5, "number of counts to try")
	benchCmd.Flags().IntVar(&numTrials, "trials", 0, "also run N seeded bounds checks")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "serve the background stream and mail relay over http",
		RunE:  runServe,
	}
	addBackgroundFlags(serveCmd)
	serveCmd.Flags().StringVar(&addr, "addr", config.DefaultAddr, "listen address")

	rootCmd.AddCommand(liveCmd, renderCmd, listCmd, plotCmd, analyzeCmd, exportJSONCmd, exportCSVCmd, presetsCmd, initCmd, scenarioCmd, benchCmd, serveCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addBackgroundFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&count, "count", 80, "number of particles")
	cmd.Flags().Float64Var(&margin, "margin", 20, "off-screen margin in pixels")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 picks one)")
	cmd.Flags().IntVar(&fps, "fps", config.DefaultFPS, "frame rate")
	cmd.Flags().Float64Var(&blur, "blur", render.DefaultBlur, "glow radius (0 disables)")
}

func addSizeFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&width, "width", config.DefaultWidth, "surface width")
	cmd.Flags().IntVar(&height, "height", config.DefaultHeight, "surface height")
	cmd.Flags().IntVar(&ticks, "ticks", config.DefaultTicks, "number of frames")
}

// setupLogging silences the standard logger unless debug is set.
func setupLogging(debug bool) {
	if !debug {
		log.SetOutput(io.Discard)
		return
	}
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ltime | log.Lmicroseconds)
}

// loadConfig resolves preset, then config file, then explicitly set flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	bg := &cfg.Background
	if cmd.Flags().Changed("count") {
		bg.Count = count
	}
	if cmd.Flags().Changed("margin") {
		bg.Margin = margin
	}
	if cmd.Flags().Changed("seed") {
		bg.Seed = seed
	}
	if cmd.Flags().Changed("fps") {
		bg.FPS = fps
	}
	if cmd.Flags().Changed("blur") {
		bg.Blur = blur
	}
	if cmd.Flags().Changed("width") {
		bg.Width = width
	}
	if cmd.Flags().Changed("height") {
		bg.Height = height
	}
	if cmd.Flags().Changed("ticks") {
		bg.Ticks = ticks
	}
	if cmd.Flags().Changed("addr") {
		cfg.Server.Addr = addr
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if debug {
		f, err := tea.LogToFile("matflow-debug.log", "matflow")
		if err != nil {
			return err
		}
		defer f.Close()
	}

	m := viz.NewModel(viz.Options{
		Controller: cfg.ControllerOptions(),
		FPS:        cfg.Background.FPS,
		Scale:      scale,
		Theme:      theme,
		GIFPath:    gifPath,
	})

	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()
	return err
}

type resizeAt struct {
	tick          int
	width, height int
}

// parseResizes reads "tick:WxH" entries.
func parseResizes(specs []string) ([]resizeAt, error) {
	out := make([]resizeAt, 0, len(specs))
	for _, s := range specs {
		tickPart, sizePart, ok := strings.Cut(s, ":")
		if !ok {
			return nil, fmt.Errorf("invalid resize %q, expected tick:WxH", s)
		}
		wPart, hPart, ok := strings.Cut(sizePart, "x")
		if !ok {
			return nil, fmt.Errorf("invalid resize %q, expected tick:WxH", s)
		}
		t, err1 := strconv.Atoi(tickPart)
		w, err2 := strconv.Atoi(wPart)
		h, err3 := strconv.Atoi(hPart)
		if err1 != nil || err2 != nil || err3 != nil || t < 0 || w < 0 || h < 0 {
			return nil, fmt.Errorf("invalid resize %q", s)
		}
		out = append(out, resizeAt{tick: t, width: w, height: h})
	}
	return out, nil
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Background.Ticks <= 0 {
		return fmt.Errorf("ticks must be positive, got %d", cfg.Background.Ticks)
	}
	plan, err := parseResizes(resizes)
	if err != nil {
		return err
	}

	opts := cfg.ControllerOptions()
	if opts.Seed == 0 {
		opts.Seed = time.Now().UnixNano()
	}

	bg := color.RGBA{A: 255}
	sched := scheduler.New()
	view := scheduler.NewViewport(cfg.Background.Width, cfg.Background.Height)
	raster := render.NewRaster(cfg.Background.Width, cfg.Background.Height)
	ctrl := lifecycle.New(lifecycle.NewLocalHost(sched, view, lifecycle.StaticSurface(raster)), opts)

	trace := sim.NewTrace(cfg.Background.Ticks, metrics.Defaults()...)
	trace.Begin()
	ctrl.AddObserver(trace)

	if err := ctrl.Mount(); err != nil {
		return err
	}
	defer ctrl.Unmount()

	var anim *export.Animation
	if gifOut != "" {
		anim = export.NewAnimation(max(100*max(gifEvery, 1)/cfg.Background.FPS, 2), 0)
		anim.MaxWidth = gifWidth
	}

	fmt.Printf("rendering %d frames of %d particles...\n", cfg.Background.Ticks, opts.Count)
	start := time.Now()

	for t := 1; t <= cfg.Background.Ticks; t++ {
		for _, r := range plan {
			if r.tick == t {
				view.Resize(r.width, r.height)
			}
		}
		sched.Pump()
		if anim != nil && t%max(gifEvery, 1) == 0 {
			anim.Add(export.Flatten(raster.Image(), bg))
		}
	}
	elapsed := time.Since(start)

	if pngOut != "" {
		if err := export.SavePNG(pngOut, export.Flatten(raster.Image(), bg)); err != nil {
			return err
		}
		fmt.Printf("png: %s\n", pngOut)
	}
	if anim != nil {
		if err := anim.Save(gifOut); err != nil {
			return err
		}
		fmt.Printf("gif: %s (%d frames)\n", gifOut, anim.Len())
	}
	if svgOut != "" {
		w, h := raster.Size()
		rec := render.NewRecorder(w, h)
		opts.Renderer.Render(rec, ctrl.Store())
		if err := os.WriteFile(svgOut, []byte(export.FrameToSVG(rec, "#000000")), 0644); err != nil {
			return err
		}
		fmt.Printf("svg: %s\n", svgOut)
	}

	result := trace.Result(ctrl.Store())
	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("frames: %d\n", ctrl.Frames())
	fmt.Printf("recycles: %d\n", ctrl.Recycles())
	fmt.Println("\nmetrics:")
	for _, m := range metrics.Defaults() {
		fmt.Printf("  %s: %.6f\n", m.Name(), result.Metrics[m.Name()])
	}

	if noSave {
		return nil
	}
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	simCfg := cfg.SimConfig()
	simCfg.Seed = opts.Seed
	runID, err := st.Save(runName, simCfg, result)
	if err != nil {
		return err
	}
	fmt.Printf("run id: %s\n", runID)
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tSIZE\tCOUNT\tTICKS\tRECYCLES\tSEED")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%.0fx%.0f\t%d\t%d\t%d\t%d\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Width, run.Height,
			run.Count,
			run.Ticks,
			run.Recycles,
			run.Seed,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	samples, err := st.LoadSamples(runID)
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("size: %.0fx%.0f, %d particles\n", meta.Width, meta.Height, meta.Count)
	fmt.Printf("samples: %d\n\n", len(samples))

	meanX := make([]float64, len(samples))
	meanY := make([]float64, len(samples))
	recycled := make([]float64, len(samples))
	for i, s := range samples {
		meanX[i] = s.MeanX
		meanY[i] = s.MeanY
		recycled[i] = float64(s.Recycles)
	}

	series := []struct {
		caption string
		data    []float64
	}{
		{"mean x", meanX},
		{"mean y", meanY},
		{"recycled per tick", recycled},
	}
	for _, s := range series {
		graph := asciigraph.Plot(s.data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(s.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	if svgSeries != "" {
		svg := export.SeriesToSVG(meanX, 800, 200, "#ffaa00")
		if err := os.WriteFile(svgSeries, []byte(svg), 0644); err != nil {
			return err
		}
		fmt.Printf("svg: %s\n", svgSeries)
	}
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	samples, err := st.LoadSamples(runID)
	if err != nil {
		return err
	}
	if len(samples) < 4 {
		return fmt.Errorf("not enough samples")
	}

	meanX := make([]float64, len(samples))
	for i, s := range samples {
		meanX[i] = s.MeanX
	}

	ps := analysis.PowerSpectrum(meanX)
	plotData := ps[:max(len(ps)/4, 1)]
	fmt.Printf("recycle analysis: %s\n\n", meta.ID)
	fmt.Println(asciigraph.Plot(plotData,
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption("power spectrum (mean x)"),
	))
	fmt.Println()

	period := analysis.DominantPeriod(meanX)
	if period == 0 {
		fmt.Println("no dominant period")
		return nil
	}
	fmt.Printf("dominant period: %.1f ticks\n", period)
	if meta.Ticks > 0 {
		fmt.Printf("recycles per period: %.1f\n", float64(meta.Recycles)/float64(meta.Ticks)*period)
	}
	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	fmt.Printf("scenario: %s\n", sc.Name)
	if sc.Description != "" {
		fmt.Printf("%s\n", sc.Description)
	}

	res, err := automation.RunScenario(context.Background(), sc, cfg.ControllerOptions())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tSIZE\tTICKS\tRECYCLES\tOUT OF BOUNDS")
	for _, st := range res.Steps {
		fmt.Fprintf(w, "%d\t%.0fx%.0f\t%d\t%d\t%d\n", st.Index+1, st.Width, st.Height, st.Ticks, st.Recycles, st.OutOfBounds)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Println("\nmetrics:")
	for _, m := range metrics.Defaults() {
		fmt.Printf("  %s: %.6f\n", m.Name(), res.Run.Metrics[m.Name()])
	}
	return nil
}

func runBench(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	simCfg := cfg.SimConfig()
	if simCfg.Seed == 0 {
		simCfg.Seed = time.Now().UnixNano()
	}

	fmt.Printf("benchmarking %dx%d for %d ticks\n\n", int(simCfg.Width), int(simCfg.Height), simCfg.Ticks)

	results, err := automation.RunSweep(context.Background(), &automation.CountSweep{
		MinCount: minCount,
		MaxCount: maxCount,
		NumSteps: numSteps,
		Config:   simCfg,
	})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "COUNT\tTIME\tTICKS/SEC\tRECYCLES\tMEAN SPEED")
	for _, r := range results {
		tps := float64(simCfg.Ticks) / r.Elapsed.Seconds()
		fmt.Fprintf(w, "%d\t%v\t%.0f\t%d\t%.3f\n", r.Count, r.Elapsed, tps, r.Recycles, r.MeanSpeed)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if numTrials <= 0 {
		return nil
	}
	trials, err := automation.RunTrials(context.Background(), &automation.SeedTrials{
		Config:    simCfg,
		NumTrials: numTrials,
		SeedStart: simCfg.Seed,
	})
	if err != nil {
		return err
	}
	ok, failed := automation.TrialStats(trials)
	fmt.Printf("\nbounds check: %d/%d seeds bounded, %d failed\n", ok, len(trials), failed)
	mean, std := automation.RecycleSpread(trials)
	fmt.Printf("recycles per run: %.1f ± %.1f\n", mean, std)
	return nil
}
