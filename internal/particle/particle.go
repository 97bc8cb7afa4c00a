package particle

import "math/rand/v2"

const (
	DefaultCount = 80
	Margin       = 20.0

	MinVX      = 0.5
	VXSpan     = 1.5
	VYSpan     = 0.5
	MinRadius  = 3.0
	RadiusSpan = 4.0
)

// ColorClass is one of the three tints a particle can carry.
type ColorClass uint8

const (
	Orange ColorClass = iota
	Cyan
	Blue
)

// NumClasses is the number of distinct colour classes.
const NumClasses = 3

func (c ColorClass) String() string {
	switch c {
	case Orange:
		return "orange"
	case Cyan:
		return "cyan"
	case Blue:
		return "blue"
	}
	return "unknown"
}

// Particle is a point drifting rightward across the surface.
type Particle struct {
	X, Y   float64
	VX, VY float64
	Class  ColorClass
	Radius float64
}

// Spawner draws fresh particles from a seeded PCG source.
type Spawner struct {
	r      *rand.Rand
	margin float64
}

// NewSpawner creates a deterministic spawner using the default margin.
func NewSpawner(seed int64) *Spawner {
	return NewSpawnerWithMargin(seed, Margin)
}

func NewSpawnerWithMargin(seed int64, margin float64) *Spawner {
	return &Spawner{
		r:      rand.New(rand.NewPCG(uint64(seed), 0)),
		margin: margin,
	}
}

func (s *Spawner) Margin() float64 { return s.margin }

// New returns a particle at the left edge with randomized velocity, class and
// radius. Only height affects the spawn; width is accepted so callers can pass
// the surface dimensions as a pair.
func (s *Spawner) New(_, height float64) Particle {
	p := Particle{
		X:  -s.margin,
		Y:  s.r.Float64() * height,
		VX: MinVX + s.r.Float64()*VXSpan,
		VY: (s.r.Float64() - 0.5) * VYSpan,
	}

	u := s.r.Float64()
	switch {
	case u < 0.33:
		p.Class = Orange
	case u < 0.66:
		p.Class = Cyan
	default:
		p.Class = Blue
	}

	p.Radius = MinRadius + s.r.Float64()*RadiusSpan
	return p
}
