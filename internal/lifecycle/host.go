package lifecycle

import (
	"errors"

	"github.com/san-kum/matflow/internal/render"
	"github.com/san-kum/matflow/internal/scheduler"
)

// Host is the environment a controller runs in: it hands out a drawing
// surface, reports the viewport size, publishes size changes and schedules
// frame callbacks.
type Host interface {
	AcquireSurface(w, h int) (render.Surface, error)
	ViewportSize() (w, h int)
	SubscribeResize(fn func()) (unsubscribe func())
	RequestFrame(fn func()) scheduler.Handle
	CancelFrame(h scheduler.Handle)
}

// SurfaceFactory creates a surface of the given pixel size.
type SurfaceFactory func(w, h int) (render.Surface, error)

var errNoFactory = errors.New("no surface factory")

// LocalHost backs a controller with an in-process scheduler and viewport.
type LocalHost struct {
	Scheduler  *scheduler.Scheduler
	Viewport   *scheduler.Viewport
	NewSurface SurfaceFactory
}

func NewLocalHost(sched *scheduler.Scheduler, view *scheduler.Viewport, factory SurfaceFactory) *LocalHost {
	return &LocalHost{Scheduler: sched, Viewport: view, NewSurface: factory}
}

// StaticSurface returns a factory that hands out s, resized to the
// requested size.
func StaticSurface(s render.Surface) SurfaceFactory {
	return func(w, h int) (render.Surface, error) {
		s.Resize(w, h)
		return s, nil
	}
}

func (h *LocalHost) AcquireSurface(w, ht int) (render.Surface, error) {
	if h.NewSurface == nil {
		return nil, errNoFactory
	}
	return h.NewSurface(w, ht)
}

func (h *LocalHost) ViewportSize() (int, int)                { return h.Viewport.Size() }
func (h *LocalHost) SubscribeResize(fn func()) func()        { return h.Viewport.Subscribe(fn) }
func (h *LocalHost) RequestFrame(fn func()) scheduler.Handle { return h.Scheduler.RequestFrame(fn) }
func (h *LocalHost) CancelFrame(handle scheduler.Handle)     { h.Scheduler.Cancel(handle) }
