package record

import (
	"bytes"
	"context"
	"errors"
	"image/color"
	"image/gif"
	"testing"

	"github.com/san-kum/particlefield/internal/field"
	"github.com/san-kum/particlefield/internal/raster"
)

func TestRunProducesGIF(t *testing.T) {
	res, err := Run(context.Background(), Options{
		Field:  field.Baseline(),
		Width:  160,
		Height: 120,
		Frames: 12,
		FPS:    25,
		Seed:   7,
	})
	if err != nil {
		t.Fatal(err)
	}

	g, err := gif.DecodeAll(bytes.NewReader(res.GIF))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(g.Image) != 12 {
		t.Errorf("gif frames = %d, want 12", len(g.Image))
	}
	if g.Delay[0] != 4 {
		t.Errorf("delay = %d, want 4", g.Delay[0])
	}
	if b := g.Image[0].Bounds(); b.Dx() != 160 || b.Dy() != 120 {
		t.Errorf("bounds = %v", b)
	}

	if len(res.Frames) != 12 {
		t.Fatalf("frame records = %d", len(res.Frames))
	}
	for i, fr := range res.Frames {
		if fr.Frame != i+1 || fr.Particles != field.DefaultCount {
			t.Errorf("frame %d = %+v", i, fr)
		}
	}
	if res.Metrics["containment"] != 1 {
		t.Errorf("containment = %v", res.Metrics["containment"])
	}
}

func TestRunDeterministicWithSeed(t *testing.T) {
	opts := Options{Field: field.Baseline(), Width: 80, Height: 60, Frames: 3, Seed: 99}
	a, err := Run(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Run(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	for i := range a.Frames {
		if a.Frames[i].Links != b.Frames[i].Links {
			t.Errorf("frame %d links differ: %d vs %d", i, a.Frames[i].Links, b.Frames[i].Links)
		}
	}
}

func TestRunOrbitInteractive(t *testing.T) {
	res, err := Run(context.Background(), Options{
		Field:  field.Enhanced(),
		Width:  300,
		Height: 200,
		Frames: 30,
		Seed:   3,
		Orbit:  true,
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Metrics["containment"] != 1 {
		t.Error("pointer pushed particles out of bounds")
	}
	if res.Frames[0].Particles != field.Enhanced().CountFor(300, 200) {
		t.Errorf("particles = %d", res.Frames[0].Particles)
	}
}

func TestRunErrors(t *testing.T) {
	if _, err := Run(context.Background(), Options{Field: field.Baseline(), Width: 10, Height: 10}); !errors.Is(err, ErrNoFrames) {
		t.Errorf("expected ErrNoFrames, got %v", err)
	}
	if _, err := Run(context.Background(), Options{Field: field.Baseline(), Width: 0, Height: 10, Frames: 1}); !errors.Is(err, field.ErrInvalidBounds) {
		t.Errorf("expected ErrInvalidBounds, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Run(ctx, Options{Field: field.Baseline(), Width: 10, Height: 10, Frames: 5}); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestRecorderEncodeEmpty(t *testing.T) {
	r := NewRecorder(raster.New(4, 4, color.Black), 0)
	var buf bytes.Buffer
	if err := r.Encode(&buf); !errors.Is(err, ErrNoFrames) {
		t.Errorf("expected ErrNoFrames, got %v", err)
	}
	r.Capture()
	if r.Len() != 1 {
		t.Errorf("len = %d", r.Len())
	}
	if err := r.Encode(&buf); err != nil {
		t.Fatal(err)
	}
}
