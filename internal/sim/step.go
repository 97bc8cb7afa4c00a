package sim

import "github.com/san-kum/matflow/internal/particle"

// Step advances every particle by its velocity and recycles the ones that
// moved past width+margin. It returns the number of recycled particles.
// Non-positive bounds are accepted and simply make particles recycle as soon
// as they cross the margin.
func Step(store *particle.Store, width, height float64) int {
	limit := width + store.Margin()
	ps := store.All()

	recycled := 0
	for i := range ps {
		p := &ps[i]
		p.X += p.VX
		p.Y += p.VY
		if p.X > limit {
			store.Recycle(i, width, height)
			recycled++
		}
	}
	return recycled
}
