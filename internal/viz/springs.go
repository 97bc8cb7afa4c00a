package viz

import "github.com/charmbracelet/harmonica"

// springField eases a row of sidebar values toward their targets so the
// class bars glide instead of jumping between frames.
type springField struct {
	spring harmonica.Spring
	pos    []float64
	vel    []float64
}

func newSpringField(fps int, n int) *springField {
	return &springField{
		spring: harmonica.NewSpring(harmonica.FPS(fps), 6.0, 1.0),
		pos:    make([]float64, n),
		vel:    make([]float64, n),
	}
}

func (s *springField) step(i int, target float64) float64 {
	p, v := s.spring.Update(s.pos[i], s.vel[i], target)
	s.pos[i] = p
	s.vel[i] = v
	return p
}

func (s *springField) value(i int) float64 { return s.pos[i] }

// snap jumps every value to its target, used after a remount.
func (s *springField) snap(targets []float64) {
	copy(s.pos, targets)
	clear(s.vel)
}
