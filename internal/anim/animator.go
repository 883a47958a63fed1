package anim

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/san-kum/particlefield/internal/field"
)

type State int

const (
	Stopped State = iota
	Running
)

func (s State) String() string {
	if s == Running {
		return "running"
	}
	return "stopped"
}

// FrameInfo describes one rendered frame. Particles is a copy.
type FrameInfo struct {
	Frame     uint64
	Elapsed   time.Duration
	Stats     field.RenderStats
	Particles []field.Particle
}

// FrameHook observes every rendered frame. It runs inside the frame and
// must not call back into the Animator.
type FrameHook func(FrameInfo)

type Option func(*Animator)

func WithSeed(seed int64) Option {
	return func(a *Animator) { a.rng = rand.New(rand.NewSource(seed)) }
}

func WithLogger(l *log.Logger) Option {
	return func(a *Animator) {
		if l != nil {
			a.logger = l
		}
	}
}

func WithFrameHook(h FrameHook) Option {
	return func(a *Animator) { a.hook = h }
}

// Animator owns one field and runs it against one host surface.
type Animator struct {
	mu      sync.Mutex
	host    Host
	sched   Scheduler
	opts    field.Options
	rng     *rand.Rand
	logger  *log.Logger
	hook    FrameHook
	field   *field.Field
	surface field.Surface
	state   State
	handle  FrameHandle
	gen     uint64
	start   time.Time
	frames  uint64
	unsubs  []func()
}

func New(host Host, sched Scheduler, opts field.Options, options ...Option) (*Animator, error) {
	a := &Animator{
		host:   host,
		sched:  sched,
		opts:   opts,
		logger: log.New(io.Discard),
	}
	for _, o := range options {
		o(a)
	}
	f, err := field.New(opts, a.rng)
	if err != nil {
		return nil, fmt.Errorf("anim: %w", err)
	}
	a.field = f
	return a, nil
}

// Start moves the animator to Running. Without a drawing surface it stays
// Stopped and returns field.ErrNoSurface; hosts treat that as a no-op.
func (a *Animator) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state == Running {
		return nil
	}
	surf, ok := a.host.Surface()
	if !ok || surf == nil {
		a.logger.Debug("no drawing surface, not starting")
		return field.ErrNoSurface
	}
	w, h := a.host.Size()
	if err := a.field.HandleResize(w, h); err != nil {
		return fmt.Errorf("anim: seed field: %w", err)
	}

	a.surface = surf
	a.state = Running
	a.gen++
	a.start = time.Time{}
	a.frames = 0
	a.unsubs = append(a.unsubs, a.host.OnResize(a.resize))
	if ph, ok := a.host.(PointerHost); ok && a.opts.Interactive {
		a.unsubs = append(a.unsubs, ph.OnPointer(a.pointer))
	}
	a.schedule()
	a.logger.Debug("animator started", "width", w, "height", h, "particles", a.field.Len())
	return nil
}

// Stop cancels the pending frame, drops every subscription and discards the
// particles. Safe to call more than once.
func (a *Animator) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state == Stopped {
		return
	}
	a.sched.CancelFrame(a.handle)
	a.handle = 0
	for _, unsub := range a.unsubs {
		unsub()
	}
	a.unsubs = nil
	a.field.Clear()
	a.field.ClearPointer()
	a.surface = nil
	a.state = Stopped
	a.gen++
	a.logger.Debug("animator stopped", "frames", a.frames)
}

// Run starts the animator and stops it when ctx is done.
func (a *Animator) Run(ctx context.Context) error {
	if err := a.Start(); err != nil {
		return err
	}
	defer a.Stop()
	<-ctx.Done()
	return ctx.Err()
}

func (a *Animator) schedule() {
	gen := a.gen
	a.handle = a.sched.RequestFrame(func(now time.Time) { a.frame(gen, now) })
}

func (a *Animator) frame(gen uint64, now time.Time) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state != Running || gen != a.gen {
		return
	}
	if a.start.IsZero() {
		a.start = now
	}
	elapsed := now.Sub(a.start)
	a.field.Step(elapsed)
	stats := a.field.Render(a.surface)
	a.frames++
	if a.hook != nil {
		a.hook(FrameInfo{
			Frame:     a.frames,
			Elapsed:   elapsed,
			Stats:     stats,
			Particles: a.field.Particles(),
		})
	}
	a.schedule()
}

func (a *Animator) resize(w, h float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state != Running {
		return
	}
	if err := a.field.HandleResize(w, h); err != nil {
		a.logger.Warn("resize ignored", "width", w, "height", h, "err", err)
		return
	}
	a.logger.Debug("field reseeded", "width", w, "height", h, "particles", a.field.Len())
}

func (a *Animator) pointer(x, y float64, inside bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state != Running {
		return
	}
	if inside {
		a.field.SetPointer(x, y)
	} else {
		a.field.ClearPointer()
	}
}

// Reseed replaces the particles without changing the bounds.
func (a *Animator) Reseed() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state != Running {
		return nil
	}
	return a.field.Reseed()
}

func (a *Animator) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Frames reports frames rendered since the last Start.
func (a *Animator) Frames() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.frames
}

func (a *Animator) Particles() []field.Particle {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.field.Particles()
}

func (a *Animator) Bounds() (w, h float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.field.Bounds()
}

func (a *Animator) Options() field.Options { return a.opts }
