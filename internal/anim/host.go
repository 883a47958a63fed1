package anim

import (
	"sync"

	"github.com/san-kum/particlefield/internal/field"
)

// Host provides the drawing surface and its size. Subscription callbacks
// must not be invoked from inside OnResize/OnPointer themselves.
type Host interface {
	// Surface returns false when no drawing context is available.
	Surface() (field.Surface, bool)
	Size() (w, h float64)
	OnResize(fn func(w, h float64)) (unsubscribe func())
}

// PointerHost is implemented by hosts that can report a pointer position.
type PointerHost interface {
	OnPointer(fn func(x, y float64, inside bool)) (unsubscribe func())
}

// StaticHost is an in-memory host for headless rendering. Resize and pointer
// events are pushed by the owner.
type StaticHost struct {
	mu       sync.Mutex
	surface  field.Surface
	w, h     float64
	nextID   int
	resize   map[int]func(w, h float64)
	pointers map[int]func(x, y float64, inside bool)
}

// NewStaticHost returns a host of the given size. A nil surface makes
// Surface report unavailable.
func NewStaticHost(surface field.Surface, w, h float64) *StaticHost {
	return &StaticHost{
		surface:  surface,
		w:        w,
		h:        h,
		resize:   make(map[int]func(w, h float64)),
		pointers: make(map[int]func(x, y float64, inside bool)),
	}
}

func (s *StaticHost) Surface() (field.Surface, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.surface, s.surface != nil
}

func (s *StaticHost) Size() (float64, float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w, s.h
}

func (s *StaticHost) OnResize(fn func(w, h float64)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := s.nextID
	s.resize[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.resize, id)
	}
}

func (s *StaticHost) OnPointer(fn func(x, y float64, inside bool)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := s.nextID
	s.pointers[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.pointers, id)
	}
}

// SetSurface attaches or replaces the drawing surface. Hosts that only learn
// their size later start with a nil surface and attach it here.
func (s *StaticHost) SetSurface(surface field.Surface) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.surface = surface
}

// Resize updates the size and notifies subscribers.
func (s *StaticHost) Resize(w, h float64) {
	s.mu.Lock()
	s.w, s.h = w, h
	fns := make([]func(w, h float64), 0, len(s.resize))
	for _, fn := range s.resize {
		fns = append(fns, fn)
	}
	s.mu.Unlock()
	for _, fn := range fns {
		fn(w, h)
	}
}

// MovePointer reports a pointer inside the surface; LeavePointer reports it
// left.
func (s *StaticHost) MovePointer(x, y float64) { s.notifyPointer(x, y, true) }

func (s *StaticHost) LeavePointer() { s.notifyPointer(0, 0, false) }

func (s *StaticHost) notifyPointer(x, y float64, inside bool) {
	s.mu.Lock()
	fns := make([]func(x, y float64, inside bool), 0, len(s.pointers))
	for _, fn := range s.pointers {
		fns = append(fns, fn)
	}
	s.mu.Unlock()
	for _, fn := range fns {
		fn(x, y, inside)
	}
}

// Subscribers reports live resize and pointer subscriptions.
func (s *StaticHost) Subscribers() (resize, pointer int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.resize), len(s.pointers)
}
