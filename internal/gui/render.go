package gui

import (
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"
)

const glowTexSize = 64

// windowSurface draws field primitives into a persistent render texture so
// the trail fade accumulates across frames. Every method must be called
// between BeginTextureMode and EndTextureMode.
type windowSurface struct {
	target rl.RenderTexture2D
	glow   rl.Texture2D
	w, h   int32
	bg     rl.Color
}

func newWindowSurface(w, h int32, bg color.NRGBA) *windowSurface {
	s := &windowSurface{bg: toColor(bg)}

	// Soft radial falloff, tinted per particle at draw time.
	img := rl.GenImageGradientRadial(glowTexSize, glowTexSize, 0.0, rl.White, rl.NewColor(255, 255, 255, 0))
	s.glow = rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)
	rl.SetTextureFilter(s.glow, rl.FilterBilinear)

	s.resize(w, h)
	return s
}

// resize recreates the render texture. Must be called outside texture mode.
func (s *windowSurface) resize(w, h int32) {
	if s.target.ID != 0 {
		rl.UnloadRenderTexture(s.target)
	}
	s.w, s.h = w, h
	s.target = rl.LoadRenderTexture(w, h)
	rl.BeginTextureMode(s.target)
	rl.ClearBackground(s.bg)
	rl.EndTextureMode()
}

func (s *windowSurface) unload() {
	rl.UnloadRenderTexture(s.target)
	rl.UnloadTexture(s.glow)
}

// present blits the render texture to the screen. Render textures are
// stored upside down.
func (s *windowSurface) present() {
	src := rl.NewRectangle(0, 0, float32(s.w), -float32(s.h))
	rl.DrawTextureRec(s.target.Texture, src, rl.NewVector2(0, 0), rl.White)
}

func (s *windowSurface) Fade(c color.NRGBA) {
	if c.A == 0 {
		return
	}
	rl.DrawRectangle(0, 0, s.w, s.h, toColor(c))
}

func (s *windowSurface) Glow(x, y, r float64, c color.NRGBA) {
	if c.A == 0 || r <= 0 {
		return
	}
	rl.BeginBlendMode(rl.BlendAdditive)
	pos := rl.NewVector2(float32(x-r), float32(y-r))
	rl.DrawTextureEx(s.glow, pos, 0, float32(2*r/glowTexSize), toColor(c))
	rl.EndBlendMode()
}

func (s *windowSurface) FillCircle(x, y, r float64, c color.NRGBA) {
	if c.A == 0 {
		return
	}
	rl.DrawCircleV(rl.NewVector2(float32(x), float32(y)), float32(r), toColor(c))
}

func (s *windowSurface) Line(x0, y0, x1, y1 float64, c color.NRGBA) {
	if c.A == 0 {
		return
	}
	rl.DrawLineEx(rl.NewVector2(float32(x0), float32(y0)), rl.NewVector2(float32(x1), float32(y1)), 1, toColor(c))
}

func toColor(c color.NRGBA) rl.Color {
	return rl.NewColor(c.R, c.G, c.B, c.A)
}
