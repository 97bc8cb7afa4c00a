package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/matflow/internal/particle"
	"github.com/san-kum/matflow/internal/sim"
)

type ExportData struct {
	Run       RunMetadata         `json:"run"`
	Samples   []sim.Sample        `json:"samples"`
	Particles []particle.Particle `json:"particles"`
}

// ExportJSON writes a run's metadata, samples and final particles as one
// indented JSON document.
func (s *Store) ExportJSON(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	samples, err := s.LoadSamples(runID)
	if err != nil {
		return err
	}
	parts, err := s.LoadParticles(runID)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(ExportData{Run: *meta, Samples: samples, Particles: parts})
}
