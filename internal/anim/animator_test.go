package anim_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/particlefield/internal/anim"
	"github.com/san-kum/particlefield/internal/field"
)

// captureScheduler keeps the last requested callback so a test can fire it
// after the animator was stopped.
type captureScheduler struct {
	last      anim.FrameFunc
	cancelled []anim.FrameHandle
	next      anim.FrameHandle
}

func (c *captureScheduler) RequestFrame(fn anim.FrameFunc) anim.FrameHandle {
	c.next++
	c.last = fn
	return c.next
}

func (c *captureScheduler) CancelFrame(h anim.FrameHandle) {
	c.cancelled = append(c.cancelled, h)
}

var _ = Describe("Animator", func() {
	var (
		surface *countingSurface
		host    *anim.StaticHost
		queue   *anim.FrameQueue
		a       *anim.Animator
		t0      time.Time
	)

	pump := func(n int) {
		for i := 0; i < n; i++ {
			queue.Pump(t0.Add(time.Duration(i) * 16 * time.Millisecond))
		}
	}

	BeforeEach(func() {
		surface = &countingSurface{}
		host = anim.NewStaticHost(surface, 640, 480)
		queue = anim.NewFrameQueue()
		t0 = time.Unix(1700000000, 0)
		var err error
		a, err = anim.New(host, queue, field.Baseline(), anim.WithSeed(42))
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		a.Stop()
	})

	It("starts stopped", func() {
		Expect(a.State()).To(Equal(anim.Stopped))
		Expect(queue.Pending()).To(BeZero())
	})

	Context("when the host has no drawing surface", func() {
		BeforeEach(func() {
			host = anim.NewStaticHost(nil, 640, 480)
			var err error
			a, err = anim.New(host, queue, field.Baseline())
			Expect(err).NotTo(HaveOccurred())
		})

		It("does not start and schedules nothing", func() {
			Expect(a.Start()).To(MatchError(field.ErrNoSurface))
			Expect(a.State()).To(Equal(anim.Stopped))
			Expect(queue.Pending()).To(BeZero())
			resize, pointer := host.Subscribers()
			Expect(resize).To(BeZero())
			Expect(pointer).To(BeZero())
		})
	})

	Context("when running", func() {
		BeforeEach(func() {
			Expect(a.Start()).To(Succeed())
		})

		It("seeds the field from the host size", func() {
			Expect(a.State()).To(Equal(anim.Running))
			Expect(a.Particles()).To(HaveLen(field.DefaultCount))
			w, h := a.Bounds()
			Expect(w).To(Equal(640.0))
			Expect(h).To(Equal(480.0))
		})

		It("keeps exactly one frame pending", func() {
			Expect(queue.Pending()).To(Equal(1))
			pump(5)
			Expect(queue.Pending()).To(Equal(1))
		})

		It("steps and renders once per frame", func() {
			pump(10)
			Expect(a.Frames()).To(Equal(uint64(10)))
			Expect(surface.Fades()).To(Equal(10))
		})

		It("ignores a second Start", func() {
			Expect(a.Start()).To(Succeed())
			Expect(queue.Pending()).To(Equal(1))
		})

		It("reseeds on resize with the count for the new area", func() {
			host.Resize(320, 200)
			w, h := a.Bounds()
			Expect(w).To(Equal(320.0))
			Expect(h).To(Equal(200.0))
			for _, p := range a.Particles() {
				Expect(p.Pos.X).To(BeNumerically(">=", 0))
				Expect(p.Pos.X).To(BeNumerically("<=", 320))
				Expect(p.Pos.Y).To(BeNumerically(">=", 0))
				Expect(p.Pos.Y).To(BeNumerically("<=", 200))
			}
		})

		It("does not subscribe to the pointer for the baseline variant", func() {
			_, pointer := host.Subscribers()
			Expect(pointer).To(BeZero())
		})

		Describe("Stop", func() {
			It("stops the frame counter", func() {
				pump(3)
				Expect(a.Frames()).To(Equal(uint64(3)))
				fades := surface.Fades()

				a.Stop()
				pump(10)

				Expect(a.State()).To(Equal(anim.Stopped))
				Expect(surface.Fades()).To(Equal(fades))
				Expect(queue.Pending()).To(BeZero())
			})

			It("deregisters the resize handler", func() {
				resize, _ := host.Subscribers()
				Expect(resize).To(Equal(1))
				a.Stop()
				resize, _ = host.Subscribers()
				Expect(resize).To(BeZero())
			})

			It("drops the particles", func() {
				a.Stop()
				Expect(a.Particles()).To(BeEmpty())
			})

			It("is idempotent", func() {
				a.Stop()
				a.Stop()
				Expect(a.State()).To(Equal(anim.Stopped))
			})

			It("can be restarted", func() {
				pump(4)
				a.Stop()
				Expect(a.Start()).To(Succeed())
				Expect(a.Frames()).To(BeZero())
				pump(2)
				Expect(a.Frames()).To(Equal(uint64(2)))
			})
		})
	})

	Context("with an interactive field", func() {
		BeforeEach(func() {
			var err error
			a, err = anim.New(host, queue, field.Enhanced(), anim.WithSeed(1))
			Expect(err).NotTo(HaveOccurred())
			Expect(a.Start()).To(Succeed())
		})

		It("subscribes to the pointer and releases it on stop", func() {
			_, pointer := host.Subscribers()
			Expect(pointer).To(Equal(1))
			a.Stop()
			_, pointer = host.Subscribers()
			Expect(pointer).To(BeZero())
		})

		It("uses the area-derived count", func() {
			Expect(a.Particles()).To(HaveLen(field.Enhanced().CountFor(640, 480)))
		})

		It("keeps particles in bounds while the pointer pushes", func() {
			host.MovePointer(320, 240)
			pump(200)
			for _, p := range a.Particles() {
				Expect(p.Pos.X).To(BeNumerically(">=", 0))
				Expect(p.Pos.X).To(BeNumerically("<=", 640))
				Expect(p.Pos.Y).To(BeNumerically(">=", 0))
				Expect(p.Pos.Y).To(BeNumerically("<=", 480))
			}
			host.LeavePointer()
		})
	})

	Context("with a frame already in flight", func() {
		It("discards the callback after Stop", func() {
			sched := &captureScheduler{}
			a, err := anim.New(host, sched, field.Baseline(), anim.WithSeed(3))
			Expect(err).NotTo(HaveOccurred())
			Expect(a.Start()).To(Succeed())
			inFlight := sched.last

			a.Stop()
			Expect(sched.cancelled).To(ConsistOf(anim.FrameHandle(1)))

			inFlight(time.Now())
			Expect(a.Frames()).To(BeZero())
			Expect(surface.Fades()).To(BeZero())
		})
	})

	Context("with a frame hook", func() {
		It("reports every frame", func() {
			var seen []uint64
			a, err := anim.New(host, queue, field.Baseline(), anim.WithSeed(9),
				anim.WithFrameHook(func(info anim.FrameInfo) {
					seen = append(seen, info.Frame)
					Expect(info.Stats.Particles).To(Equal(field.DefaultCount))
					Expect(info.Particles).To(HaveLen(field.DefaultCount))
				}))
			Expect(err).NotTo(HaveOccurred())
			Expect(a.Start()).To(Succeed())
			defer a.Stop()
			pump(3)
			Expect(seen).To(Equal([]uint64{1, 2, 3}))
		})
	})

	Context("with two instances", func() {
		It("keeps their state separate", func() {
			otherSurface := &countingSurface{}
			otherHost := anim.NewStaticHost(otherSurface, 200, 100)
			other, err := anim.New(otherHost, queue, field.Baseline(), anim.WithSeed(5))
			Expect(err).NotTo(HaveOccurred())

			Expect(a.Start()).To(Succeed())
			Expect(other.Start()).To(Succeed())
			pump(3)
			other.Stop()
			pump(3)

			Expect(a.Frames()).To(Equal(uint64(6)))
			Expect(otherSurface.Fades()).To(Equal(3))
			w, _ := a.Bounds()
			Expect(w).To(Equal(640.0))
		})
	})

	Context("with a real-time ticker", func() {
		It("animates until the context is cancelled", func() {
			ticker := anim.NewTickerScheduler(200)
			defer ticker.Close()
			a, err := anim.New(host, ticker, field.Baseline(), anim.WithSeed(11))
			Expect(err).NotTo(HaveOccurred())

			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan error, 1)
			go func() { done <- a.Run(ctx) }()

			Eventually(a.Frames).Should(BeNumerically(">=", 3))
			cancel()
			Eventually(done).Should(Receive(MatchError(context.Canceled)))

			Expect(a.State()).To(Equal(anim.Stopped))
			frames := surface.Fades()
			Consistently(surface.Fades, 100*time.Millisecond).Should(Equal(frames))
			Expect(ticker.Pending()).To(BeZero())
		})
	})
})
