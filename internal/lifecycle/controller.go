// Package lifecycle drives the particle background on a host: it acquires a
// surface, seeds the particle store, tracks viewport size changes and runs
// the self-rescheduling step-then-render frame loop until torn down.
//
// State machine:
//
//	Uninitialized --Mount ok-----> Running
//	Uninitialized --Mount fail---> Disabled
//	Running  --Unmount--> TornDown
//	Disabled --Unmount--> TornDown
//
// A controller is owned by one goroutine, the one pumping its host's
// scheduler. Mount, Unmount and resize notifications must arrive on it.
package lifecycle

import (
	"log"
	"math/rand/v2"

	"github.com/san-kum/matflow/internal/particle"
	"github.com/san-kum/matflow/internal/render"
	"github.com/san-kum/matflow/internal/scheduler"
	"github.com/san-kum/matflow/internal/sim"
)

type State int

const (
	Uninitialized State = iota
	Disabled
	Running
	TornDown
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Disabled:
		return "disabled"
	case Running:
		return "running"
	case TornDown:
		return "torn down"
	}
	return "unknown"
}

type Options struct {
	Count  int
	Margin float64
	// Seed drives particle creation. Zero picks a random seed at mount.
	Seed     int64
	Renderer *render.Renderer
}

func DefaultOptions() Options {
	return Options{
		Count:    particle.DefaultCount,
		Margin:   particle.Margin,
		Renderer: render.NewRenderer(),
	}
}

type Controller struct {
	host Host
	opts Options

	state   State
	surface render.Surface
	store   *particle.Store
	width   float64
	height  float64

	frame       scheduler.Handle
	unsubscribe func()
	observers   []sim.Observer

	frames   int
	recycles int
}

func New(host Host, opts Options) *Controller {
	if opts.Renderer == nil {
		opts.Renderer = render.NewRenderer()
	}
	if opts.Count < 0 {
		opts.Count = 0
	}
	return &Controller{host: host, opts: opts}
}

// AddObserver registers o to be told about every frame's step.
func (c *Controller) AddObserver(o sim.Observer) { c.observers = append(c.observers, o) }

func (c *Controller) State() State { return c.state }
func (c *Controller) Frames() int  { return c.frames }

// Recycles is the total number of particles recycled since mount.
func (c *Controller) Recycles() int { return c.recycles }

// Size reports the surface dimensions the simulation currently runs against.
func (c *Controller) Size() (float64, float64) { return c.width, c.height }

// Store returns the particle store, or nil unless Running.
func (c *Controller) Store() *particle.Store { return c.store }

// Surface returns the drawing surface, or nil unless Running.
func (c *Controller) Surface() render.Surface { return c.surface }

// Mount acquires a surface sized to the viewport, creates the particles and
// queues the first frame. On surface failure the controller becomes Disabled
// and the returned error matches ErrSurfaceUnavailable. Mounting a Running
// or Disabled controller does nothing.
func (c *Controller) Mount() error {
	switch c.state {
	case Running, Disabled:
		return nil
	case TornDown:
		return ErrTornDown
	}

	w, h := c.host.ViewportSize()
	surface, err := c.host.AcquireSurface(w, h)
	if err == nil && surface == nil {
		err = errNoSurface
	}
	if err != nil {
		c.state = Disabled
		serr := &SurfaceError{Width: w, Height: h, Cause: err}
		log.Printf("lifecycle: disabled: %v", serr)
		return serr
	}

	seed := c.opts.Seed
	if seed == 0 {
		seed = rand.Int64()
	}

	c.surface = surface
	c.width, c.height = float64(w), float64(h)
	c.surface.Resize(w, h)
	c.store = particle.NewStore(c.opts.Count, particle.NewSpawnerWithMargin(seed, c.opts.Margin), c.width, c.height)
	c.unsubscribe = c.host.SubscribeResize(c.onResize)
	c.state = Running
	c.frame = c.host.RequestFrame(c.tick)

	log.Printf("lifecycle: mounted %dx%d with %d particles (seed %d)", w, h, c.opts.Count, seed)
	return nil
}

// Unmount cancels the pending frame, drops the resize subscription and
// releases the surface and particles. It is safe to call in any state.
func (c *Controller) Unmount() {
	if c.state == TornDown {
		return
	}
	if c.state == Running {
		c.host.CancelFrame(c.frame)
		c.frame = 0
	}
	if c.unsubscribe != nil {
		c.unsubscribe()
		c.unsubscribe = nil
	}

	log.Printf("lifecycle: torn down from %s after %d frames", c.state, c.frames)
	c.surface = nil
	c.store = nil
	c.observers = nil
	c.state = TornDown
}

func (c *Controller) tick() {
	if c.state != Running {
		return
	}
	recycled := sim.Step(c.store, c.width, c.height)
	c.recycles += recycled
	c.frames++
	for _, o := range c.observers {
		o.OnTick(c.store, recycled, c.frames)
		// An observer may tear the controller down mid-frame.
		if c.state != Running {
			return
		}
	}
	c.opts.Renderer.Render(c.surface, c.store)
	c.frame = c.host.RequestFrame(c.tick)
}

func (c *Controller) onResize() {
	if c.state != Running {
		return
	}
	w, h := c.host.ViewportSize()
	c.width, c.height = float64(w), float64(h)
	c.surface.Resize(w, h)
	log.Printf("lifecycle: resized to %dx%d", w, h)
}
