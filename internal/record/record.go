// Package record renders a field headlessly into an animated GIF and
// collects per-frame stats.
package record

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"io"
	"math"
	"time"

	"github.com/charmbracelet/log"
	"github.com/san-kum/particlefield/internal/anim"
	"github.com/san-kum/particlefield/internal/field"
	"github.com/san-kum/particlefield/internal/metrics"
	"github.com/san-kum/particlefield/internal/raster"
	"github.com/san-kum/particlefield/internal/storage"
)

var ErrNoFrames = errors.New("record: frame count must be positive")

type Options struct {
	Field  field.Options
	Width  int
	Height int
	Frames int
	FPS    int
	// Seed fixes the layout; zero seeds from the clock.
	Seed int64
	// Orbit moves the pointer in a circle around the centre. Only
	// interactive fields react to it.
	Orbit  bool
	Logger *log.Logger
}

type Result struct {
	GIF     []byte
	Frames  []storage.FrameRecord
	Metrics map[string]float64
}

// Recorder quantizes surface snapshots into GIF frames.
type Recorder struct {
	surface *raster.Surface
	delay   int
	anim    gif.GIF
}

// NewRecorder captures from surface at fps frames per second.
func NewRecorder(surface *raster.Surface, fps int) *Recorder {
	if fps <= 0 {
		fps = 30
	}
	delay := int(math.Round(100 / float64(fps)))
	if delay < 2 {
		// most viewers clamp anything shorter
		delay = 2
	}
	return &Recorder{surface: surface, delay: delay}
}

// Capture appends the current surface contents as a frame.
func (r *Recorder) Capture() {
	src := r.surface.Image()
	dst := image.NewPaletted(src.Bounds(), palette.Plan9)
	draw.Draw(dst, dst.Bounds(), src, src.Bounds().Min, draw.Src)
	r.anim.Image = append(r.anim.Image, dst)
	r.anim.Delay = append(r.anim.Delay, r.delay)
}

func (r *Recorder) Len() int { return len(r.anim.Image) }

// Encode writes a looping GIF.
func (r *Recorder) Encode(w io.Writer) error {
	if len(r.anim.Image) == 0 {
		return ErrNoFrames
	}
	r.anim.LoopCount = 0
	return gif.EncodeAll(w, &r.anim)
}

// Run animates the field for o.Frames frames on an in-memory surface.
func Run(ctx context.Context, o Options) (*Result, error) {
	if o.Frames <= 0 {
		return nil, ErrNoFrames
	}
	if o.FPS <= 0 {
		o.FPS = 30
	}
	bg, err := field.ParseColor(o.Field.Background)
	if err != nil {
		return nil, fmt.Errorf("record: background: %w", err)
	}

	surface := raster.New(o.Width, o.Height, bg)
	host := anim.NewStaticHost(surface, float64(o.Width), float64(o.Height))
	queue := anim.NewFrameQueue()
	rec := NewRecorder(surface, o.FPS)
	set := metrics.Default(float64(o.Width), float64(o.Height))
	res := &Result{Frames: make([]storage.FrameRecord, 0, o.Frames)}

	hook := func(info anim.FrameInfo) {
		rec.Capture()
		set.Observe(info)
		res.Frames = append(res.Frames, storage.FrameRecord{
			Frame:     int(info.Frame),
			Elapsed:   info.Elapsed.Seconds(),
			Particles: info.Stats.Particles,
			Links:     info.Stats.Links,
			MeanAlpha: info.Stats.MeanAlpha,
		})
	}
	options := []anim.Option{anim.WithFrameHook(hook), anim.WithLogger(o.Logger)}
	if o.Seed != 0 {
		options = append(options, anim.WithSeed(o.Seed))
	}
	a, err := anim.New(host, queue, o.Field, options...)
	if err != nil {
		return nil, err
	}
	if err := a.Start(); err != nil {
		return nil, err
	}
	defer a.Stop()

	interval := time.Second / time.Duration(o.FPS)
	t0 := time.Now()
	for i := 0; i < o.Frames; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if o.Orbit {
			host.MovePointer(orbit(float64(o.Width), float64(o.Height), i, o.Frames))
		}
		queue.Pump(t0.Add(time.Duration(i) * interval))
	}

	var buf bytes.Buffer
	if err := rec.Encode(&buf); err != nil {
		return nil, err
	}
	res.GIF = buf.Bytes()
	res.Metrics = set.Values()
	return res, nil
}

// orbit returns the pointer position for frame i of n: one full turn on a
// circle a quarter of the smaller side in radius.
func orbit(w, h float64, i, n int) (x, y float64) {
	r := math.Min(w, h) / 4
	th := 2 * math.Pi * float64(i) / float64(n)
	return w/2 + r*math.Cos(th), h/2 + r*math.Sin(th)
}
