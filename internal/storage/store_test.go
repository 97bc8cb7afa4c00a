package storage

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/matflow/internal/particle"
	"github.com/san-kum/matflow/internal/sim"
)

func testResult() (sim.Config, *sim.Result) {
	cfg := sim.Config{Width: 640, Height: 480, Ticks: 2, Count: 2, Margin: 20, Seed: 42}
	result := &sim.Result{
		Samples: []sim.Sample{
			{Tick: 1, Recycles: 0, MeanX: -18.5, MeanY: 100},
			{Tick: 2, Recycles: 1, MeanX: -17.25, MeanY: 101.5},
		},
		Final: []particle.Particle{
			{X: 10, Y: 20, VX: 1.5, VY: -0.1, Class: particle.Cyan, Radius: 4},
			{X: -20, Y: 300, VX: 0.75, VY: 0.2, Class: particle.Blue, Radius: 6.5},
		},
		Metrics:    map[string]float64{"recycle_rate": 0.25},
		Recycles:   1,
		TicksTaken: 2,
	}
	return cfg, result
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	cfg, result := testResult()
	runID, err := st.Save("test", cfg, result)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if !strings.HasPrefix(runID, "test_") {
		t.Errorf("unexpected run id %q", runID)
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Name != "test" || meta.Seed != 42 || meta.Width != 640 || meta.Count != 2 {
		t.Errorf("unexpected metadata %+v", meta)
	}
	if meta.Ticks != 2 || meta.Recycles != 1 {
		t.Errorf("expected 2 ticks and 1 recycle, got %d and %d", meta.Ticks, meta.Recycles)
	}
	if meta.Metrics["recycle_rate"] != 0.25 {
		t.Errorf("expected recycle_rate 0.25, got %f", meta.Metrics["recycle_rate"])
	}

	samples, err := st.LoadSamples(runID)
	if err != nil {
		t.Fatalf("load samples failed: %v", err)
	}
	if len(samples) != 2 {
		t.Fatalf("expected 2 samples, got %d", len(samples))
	}
	for i, s := range samples {
		if s != result.Samples[i] {
			t.Errorf("sample %d: expected %+v, got %+v", i, result.Samples[i], s)
		}
	}

	parts, err := st.LoadParticles(runID)
	if err != nil {
		t.Fatalf("load particles failed: %v", err)
	}
	for i, p := range parts {
		if p != result.Final[i] {
			t.Errorf("particle %d: expected %+v, got %+v", i, result.Final[i], p)
		}
	}
}

func TestStoreList(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	cfg, result := testResult()
	first, _ := st.Save("a", cfg, result)
	second, _ := st.Save("b", cfg, result)
	os.Mkdir(filepath.Join(st.baseDir, "junk"), 0755)

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID != first || runs[1].ID != second {
		t.Errorf("expected oldest first, got %s, %s", runs[0].ID, runs[1].ID)
	}
}

func TestStoreListMissingDir(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "missing"))
	runs, err := st.List()
	if err != nil || len(runs) != 0 {
		t.Errorf("expected empty list, got %v, %v", runs, err)
	}
}

func TestStoreFileStructure(t *testing.T) {
	st := New(t.TempDir())
	cfg, result := testResult()
	runID, err := st.Save("test", cfg, result)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	for _, name := range []string{metadataFile, samplesFile, particlesFile} {
		if _, err := os.Stat(filepath.Join(st.baseDir, runID, name)); os.IsNotExist(err) {
			t.Errorf("%s not created", name)
		}
	}

	var buf bytes.Buffer
	if err := st.CopySamples(&buf, runID); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(buf.String(), "tick,recycles,mean_x,mean_y\n") {
		t.Errorf("unexpected csv header: %q", buf.String())
	}
}

func TestExportJSON(t *testing.T) {
	st := New(t.TempDir())
	cfg, result := testResult()
	runID, err := st.Save("test", cfg, result)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := st.ExportJSON(&buf, runID); err != nil {
		t.Fatal(err)
	}
	var data ExportData
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatal(err)
	}
	if data.Run.ID != runID || len(data.Samples) != 2 || len(data.Particles) != 2 {
		t.Errorf("unexpected export %+v", data)
	}

	if err := st.ExportJSON(&buf, "nope"); err == nil {
		t.Error("expected error for missing run")
	}
}
