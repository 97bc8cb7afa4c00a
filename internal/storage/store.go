package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/matflow/internal/particle"
	"github.com/san-kum/matflow/internal/sim"
)

const (
	metadataFile  = "metadata.json"
	samplesFile   = "samples.csv"
	particlesFile = "particles.csv"
)

var (
	samplesHeader   = []string{"tick", "recycles", "mean_x", "mean_y"}
	particlesHeader = []string{"x", "y", "vx", "vy", "class", "radius"}
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Timestamp time.Time          `json:"timestamp"`
	Seed      int64              `json:"seed"`
	Width     float64            `json:"width"`
	Height    float64            `json:"height"`
	Count     int                `json:"count"`
	Margin    float64            `json:"margin"`
	Ticks     int                `json:"ticks"`
	Recycles  int                `json:"recycles"`
	Metrics   map[string]float64 `json:"metrics"`
}

// Save writes a run directory holding metadata, per-tick samples and the
// final particle state.
func (s *Store) Save(name string, cfg sim.Config, result *sim.Result) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("%s_%d", name, now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:        runID,
		Name:      name,
		Timestamp: now,
		Seed:      cfg.Seed,
		Width:     cfg.Width,
		Height:    cfg.Height,
		Count:     cfg.Count,
		Margin:    cfg.Margin,
		Ticks:     result.TicksTaken,
		Recycles:  result.Recycles,
		Metrics:   result.Metrics,
	}
	if err := writeJSONFile(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}

	samples := make([][]string, 0, len(result.Samples))
	for _, smp := range result.Samples {
		samples = append(samples, []string{
			strconv.Itoa(smp.Tick),
			strconv.Itoa(smp.Recycles),
			formatFloat(smp.MeanX),
			formatFloat(smp.MeanY),
		})
	}
	if err := writeCSVFile(filepath.Join(runDir, samplesFile), samplesHeader, samples); err != nil {
		return "", err
	}

	parts := make([][]string, 0, len(result.Final))
	for _, p := range result.Final {
		parts = append(parts, []string{
			formatFloat(p.X),
			formatFloat(p.Y),
			formatFloat(p.VX),
			formatFloat(p.VY),
			strconv.Itoa(int(p.Class)),
			formatFloat(p.Radius),
		})
	}
	if err := writeCSVFile(filepath.Join(runDir, particlesFile), particlesHeader, parts); err != nil {
		return "", err
	}

	return runID, nil
}

// List returns every readable run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })

	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (s *Store) LoadSamples(runID string) ([]sim.Sample, error) {
	records, err := readCSVFile(filepath.Join(s.baseDir, runID, samplesFile))
	if err != nil {
		return nil, err
	}

	samples := make([]sim.Sample, 0, len(records))
	for _, rec := range records {
		if len(rec) < len(samplesHeader) {
			continue
		}
		tick, err1 := strconv.Atoi(rec[0])
		recycles, err2 := strconv.Atoi(rec[1])
		mx, err3 := strconv.ParseFloat(rec[2], 64)
		my, err4 := strconv.ParseFloat(rec[3], 64)
		if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
			continue
		}
		samples = append(samples, sim.Sample{Tick: tick, Recycles: recycles, MeanX: mx, MeanY: my})
	}
	return samples, nil
}

func (s *Store) LoadParticles(runID string) ([]particle.Particle, error) {
	records, err := readCSVFile(filepath.Join(s.baseDir, runID, particlesFile))
	if err != nil {
		return nil, err
	}

	ps := make([]particle.Particle, 0, len(records))
	for _, rec := range records {
		if len(rec) < len(particlesHeader) {
			continue
		}
		var vals [6]float64
		ok := true
		for i := range vals {
			v, err := strconv.ParseFloat(rec[i], 64)
			if err != nil {
				ok = false
				break
			}
			vals[i] = v
		}
		if !ok {
			continue
		}
		ps = append(ps, particle.Particle{
			X: vals[0], Y: vals[1], VX: vals[2], VY: vals[3],
			Class:  particle.ColorClass(vals[4]),
			Radius: vals[5],
		})
	}
	return ps, nil
}

// CopySamples streams a run's samples.csv to w.
func (s *Store) CopySamples(w io.Writer, runID string) error {
	f, err := os.Open(filepath.Join(s.baseDir, runID, samplesFile))
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(w, f)
	return err
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

func writeJSONFile(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeCSVFile(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	if err := w.WriteAll(rows); err != nil {
		return err
	}
	return f.Close()
}

// readCSVFile returns the records after the header row.
func readCSVFile(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return [][]string{}, nil
	}
	return records[1:], nil
}
