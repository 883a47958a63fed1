// Package gui hosts a particle field in a resizable desktop window.
package gui

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/san-kum/particlefield/internal/anim"
	"github.com/san-kum/particlefield/internal/field"
)

var (
	ColText    = rl.NewColor(140, 140, 140, 255)
	ColTextDim = rl.NewColor(60, 60, 60, 255)
)

type Settings struct {
	Title  string
	Width  int
	Height int
	FPS    int
	Seed   int64
	Logger *log.Logger
}

// App owns the window, its surface and the animator running on it.
type App struct {
	settings Settings
	logger   *log.Logger
	surface  *windowSurface
	host     *anim.StaticHost
	queue    *anim.FrameQueue
	animator *anim.Animator
	paused   bool
	showHUD  bool
	inside   bool
	last     anim.FrameInfo
}

// initWindow opens a resizable window and disables the default exit key.
func initWindow(s Settings) {
	rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagMsaa4xHint)
	rl.InitWindow(int32(s.Width), int32(s.Height), s.Title)
	rl.SetTargetFPS(int32(s.FPS))
	rl.SetExitKey(0)
}

// Run opens the window and animates until it is closed or q is pressed.
// The animator is stopped before the window goes away.
func Run(opts field.Options, s Settings) error {
	if s.Width <= 0 || s.Height <= 0 {
		return fmt.Errorf("gui: window %dx%d: %w", s.Width, s.Height, field.ErrInvalidBounds)
	}
	if s.FPS <= 0 {
		s.FPS = 60
	}
	if s.Title == "" {
		s.Title = "particlefield"
	}
	if s.Logger == nil {
		s.Logger = log.New(io.Discard)
	}
	bg, err := field.ParseColor(opts.Background)
	if err != nil {
		return fmt.Errorf("gui: background: %w", err)
	}

	initWindow(s)
	defer rl.CloseWindow()

	app := &App{
		settings: s,
		logger:   s.Logger,
		surface:  newWindowSurface(int32(s.Width), int32(s.Height), bg),
		queue:    anim.NewFrameQueue(),
		showHUD:  true,
	}
	defer app.surface.unload()
	app.host = anim.NewStaticHost(app.surface, float64(s.Width), float64(s.Height))

	options := []anim.Option{anim.WithLogger(s.Logger), anim.WithFrameHook(func(info anim.FrameInfo) { app.last = info })}
	if s.Seed != 0 {
		options = append(options, anim.WithSeed(s.Seed))
	}
	app.animator, err = anim.New(app.host, app.queue, opts, options...)
	if err != nil {
		return err
	}
	if err := app.animator.Start(); err != nil {
		return err
	}
	defer app.animator.Stop()

	app.RunLoop()
	return nil
}

func (a *App) RunLoop() {
	for !rl.WindowShouldClose() {
		if !a.Update() {
			return
		}
		a.Draw()
	}
}

// Update handles input and window events. It returns false to quit.
func (a *App) Update() bool {
	if rl.IsKeyPressed(rl.KeyQ) || rl.IsKeyPressed(rl.KeyEscape) {
		return false
	}
	if rl.IsKeyPressed(rl.KeySpace) {
		a.paused = !a.paused
	}
	if rl.IsKeyPressed(rl.KeyR) {
		if err := a.animator.Reseed(); err != nil {
			a.logger.Warn("reseed failed", "err", err)
		}
	}
	if rl.IsKeyPressed(rl.KeyH) {
		a.showHUD = !a.showHUD
	}

	if rl.IsWindowResized() {
		w, h := int32(rl.GetScreenWidth()), int32(rl.GetScreenHeight())
		if w > 0 && h > 0 {
			a.surface.resize(w, h)
			a.host.Resize(float64(w), float64(h))
		}
	}

	if rl.IsCursorOnScreen() {
		m := rl.GetMousePosition()
		a.host.MovePointer(float64(m.X), float64(m.Y))
		a.inside = true
	} else if a.inside {
		a.host.LeavePointer()
		a.inside = false
	}
	return true
}

func (a *App) Draw() {
	if !a.paused {
		rl.BeginTextureMode(a.surface.target)
		a.queue.Pump(time.Now())
		rl.EndTextureMode()
	}

	rl.BeginDrawing()
	rl.ClearBackground(a.surface.bg)
	a.surface.present()
	if a.showHUD {
		a.drawHUD()
	}
	rl.EndDrawing()
}

func (a *App) drawHUD() {
	status := "RUNNING"
	if a.paused {
		status = "PAUSED"
	}
	rl.DrawText(status, 16, 16, 18, ColText)
	stats := fmt.Sprintf("particles %d  links %d  alpha %.2f  frame %d",
		a.last.Stats.Particles, a.last.Stats.Links, a.last.Stats.MeanAlpha, a.last.Frame)
	rl.DrawText(stats, 16, 40, 14, ColText)
	rl.DrawText("SPACE pause  R reseed  H hud  Q quit", 16, a.surface.h-28, 14, ColTextDim)
	rl.DrawFPS(a.surface.w-96, 16)
}
