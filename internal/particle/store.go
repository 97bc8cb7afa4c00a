package particle

// Store is a fixed-size arena of particles. Its length never changes after
// construction; particles are replaced in place by Recycle.
type Store struct {
	particles []Particle
	spawner   *Spawner
}

func NewStore(n int, spawner *Spawner, width, height float64) *Store {
	if n < 0 {
		n = 0
	}
	s := &Store{
		particles: make([]Particle, n),
		spawner:   spawner,
	}
	for i := range s.particles {
		s.particles[i] = spawner.New(width, height)
	}
	return s
}

func (s *Store) Len() int           { return len(s.particles) }
func (s *Store) Margin() float64    { return s.spawner.Margin() }
func (s *Store) At(i int) *Particle { return &s.particles[i] }

// All exposes the backing slice for in-place iteration. Callers must not
// append to or reslice it.
func (s *Store) All() []Particle { return s.particles }

// Snapshot returns a copy of the current particle state.
func (s *Store) Snapshot() []Particle {
	c := make([]Particle, len(s.particles))
	copy(c, s.particles)
	return c
}

// Recycle re-creates particle i at the left edge with freshly drawn state.
func (s *Store) Recycle(i int, width, height float64) {
	s.particles[i] = s.spawner.New(width, height)
}

// ClassCounts tallies particles per colour class.
func (s *Store) ClassCounts() [NumClasses]int {
	var counts [NumClasses]int
	for _, p := range s.particles {
		if int(p.Class) < NumClasses {
			counts[p.Class]++
		}
	}
	return counts
}
