package lifecycle_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/matflow/internal/lifecycle"
	"github.com/san-kum/matflow/internal/particle"
	"github.com/san-kum/matflow/internal/render"
	"github.com/san-kum/matflow/internal/scheduler"
)

var _ = Describe("Controller", func() {
	var (
		sched   *scheduler.Scheduler
		view    *scheduler.Viewport
		raster  *render.Raster
		factory lifecycle.SurfaceFactory
		ctrl    *lifecycle.Controller
	)

	BeforeEach(func() {
		sched = scheduler.New()
		view = scheduler.NewViewport(1000, 600)
		raster = render.NewRaster(0, 0)
		factory = lifecycle.StaticSurface(raster)
	})

	JustBeforeEach(func() {
		opts := lifecycle.DefaultOptions()
		opts.Seed = 7
		ctrl = lifecycle.New(lifecycle.NewLocalHost(sched, view, factory), opts)
	})

	AfterEach(func() {
		ctrl.Unmount()
	})

	It("starts uninitialized with nothing scheduled", func() {
		Expect(ctrl.State()).To(Equal(lifecycle.Uninitialized))
		Expect(sched.Pending()).To(BeZero())
		Expect(view.Subscribers()).To(BeZero())
	})

	Context("when the surface is available", func() {
		JustBeforeEach(func() {
			Expect(ctrl.Mount()).To(Succeed())
		})

		It("runs with N particles sized to the viewport", func() {
			Expect(ctrl.State()).To(Equal(lifecycle.Running))
			Expect(ctrl.Store().Len()).To(Equal(particle.DefaultCount))

			w, h := raster.Size()
			Expect([]int{w, h}).To(Equal([]int{1000, 600}))
		})

		It("steps and renders once per pump", func() {
			for range 5 {
				Expect(sched.Pump()).To(Equal(1))
			}
			Expect(ctrl.Frames()).To(Equal(5))
			Expect(sched.Pending()).To(Equal(1))

			lit := 0
			for i := 3; i < len(raster.Image().Pix); i += 4 {
				if raster.Image().Pix[i] > 0 {
					lit++
				}
			}
			Expect(lit).To(BeNumerically(">", 0))
		})

		It("keeps the particle count across many frames", func() {
			for range 2000 {
				sched.Pump()
			}
			Expect(ctrl.Store().Len()).To(Equal(particle.DefaultCount))
			Expect(ctrl.Recycles()).To(BeNumerically(">", 0))
			for _, p := range ctrl.Store().All() {
				Expect(p.X).To(BeNumerically(">=", -particle.Margin))
				Expect(p.X).To(BeNumerically("<=", 1000+particle.Margin))
			}
		})

		It("follows viewport changes without recreating particles", func() {
			before := ctrl.Store().Snapshot()
			view.Resize(400, 300)

			w, h := ctrl.Size()
			Expect(w).To(Equal(400.0))
			Expect(h).To(Equal(300.0))
			Expect(ctrl.Store().All()).To(Equal(before))

			rw, rh := raster.Size()
			Expect([]int{rw, rh}).To(Equal([]int{400, 300}))
		})

		Context("and then torn down", func() {
			JustBeforeEach(func() {
				sched.Pump()
				ctrl.Unmount()
			})

			It("cancels the pending frame and the resize subscription", func() {
				Expect(ctrl.State()).To(Equal(lifecycle.TornDown))
				Expect(sched.Pending()).To(BeZero())
				Expect(view.Subscribers()).To(BeZero())
				Expect(ctrl.Store()).To(BeNil())
			})

			It("ignores a second teardown", func() {
				Expect(func() { ctrl.Unmount() }).NotTo(Panic())
				Expect(ctrl.State()).To(Equal(lifecycle.TornDown))
			})

			It("refuses to mount again", func() {
				Expect(ctrl.Mount()).To(MatchError(lifecycle.ErrTornDown))
			})
		})
	})

	Context("when the surface cannot be acquired", func() {
		BeforeEach(func() {
			factory = func(w, h int) (render.Surface, error) {
				return nil, errors.New("context lost")
			}
		})

		It("is disabled and schedules nothing", func() {
			err := ctrl.Mount()
			Expect(err).To(MatchError(lifecycle.ErrSurfaceUnavailable))
			Expect(ctrl.State()).To(Equal(lifecycle.Disabled))
			Expect(sched.Pending()).To(BeZero())
			Expect(view.Subscribers()).To(BeZero())
			Expect(sched.Pump()).To(BeZero())
		})

		It("tears down quietly", func() {
			_ = ctrl.Mount()
			ctrl.Unmount()
			ctrl.Unmount()
			Expect(ctrl.State()).To(Equal(lifecycle.TornDown))
		})
	})
})
