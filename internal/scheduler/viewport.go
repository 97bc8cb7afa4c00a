package scheduler

import "sync"

// Viewport holds the current host size and notifies subscribers when it
// changes.
type Viewport struct {
	mu     sync.Mutex
	width  int
	height int
	nextID int
	subs   map[int]func()
}

func NewViewport(w, h int) *Viewport {
	return &Viewport{width: w, height: h, subs: make(map[int]func())}
}

func (v *Viewport) Size() (int, int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.width, v.height
}

// Resize stores the new size and calls every subscriber synchronously.
// Subscribers re-read the size themselves.
func (v *Viewport) Resize(w, h int) {
	v.mu.Lock()
	v.width, v.height = w, h
	subs := make([]func(), 0, len(v.subs))
	for id := 0; id < v.nextID; id++ {
		if fn, ok := v.subs[id]; ok {
			subs = append(subs, fn)
		}
	}
	v.mu.Unlock()

	for _, fn := range subs {
		fn()
	}
}

// Subscribe registers fn for size changes. The returned function removes it
// and may be called more than once.
func (v *Viewport) Subscribe(fn func()) (unsubscribe func()) {
	v.mu.Lock()
	defer v.mu.Unlock()
	id := v.nextID
	v.nextID++
	v.subs[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			v.mu.Lock()
			delete(v.subs, id)
			v.mu.Unlock()
		})
	}
}

func (v *Viewport) Subscribers() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.subs)
}
