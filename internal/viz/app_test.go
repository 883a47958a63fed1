package viz

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/particlefield/internal/anim"
	"github.com/san-kum/particlefield/internal/field"
)

func newTestApp(t *testing.T, opts field.Options) *App {
	t.Helper()
	app, err := NewApp(opts, Settings{Seed: 1, FPS: 60, Scale: DefaultScale})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(app.Stop)
	return app
}

func key(s string) tea.KeyMsg {
	if s == " " {
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func tickN(app *App, n int) {
	t0 := time.Unix(1700000000, 0)
	for i := 0; i < n; i++ {
		app.Update(TickMsg(t0.Add(time.Duration(i) * 16 * time.Millisecond)))
	}
}

func TestAppStartsOnFirstSize(t *testing.T) {
	app := newTestApp(t, field.Baseline())
	if app.Animator().State() != anim.Stopped {
		t.Fatal("animator running before the terminal size is known")
	}
	if !strings.Contains(app.View(), "waiting") {
		t.Error("expected a placeholder view before sizing")
	}

	app.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	if app.Animator().State() != anim.Running {
		t.Fatal("animator did not start")
	}
	w, h := app.Animator().Bounds()
	if w != 62*2*DefaultScale || h != 28*4*DefaultScale {
		t.Errorf("field bounds = %vx%v", w, h)
	}

	tickN(app, 3)
	if app.Animator().Frames() != 3 {
		t.Errorf("frames = %d, want 3", app.Animator().Frames())
	}
	if !strings.Contains(app.View(), "RUNNING") {
		t.Error("sidebar missing running status")
	}
}

func TestAppResizeReseeds(t *testing.T) {
	app := newTestApp(t, field.Enhanced())
	app.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	before := len(app.Animator().Particles())

	app.Update(tea.WindowSizeMsg{Width: 40, Height: 12})
	w, h := app.Animator().Bounds()
	if w != float64(minCols*2)*DefaultScale || h != 10*4*DefaultScale {
		t.Errorf("bounds after shrink = %vx%v", w, h)
	}
	if after := len(app.Animator().Particles()); after >= before {
		t.Errorf("particle count %d should drop below %d", after, before)
	}
	if resize, _ := app.Subscribers(); resize != 1 {
		t.Errorf("resize subscribers = %d, want 1", resize)
	}
}

func TestAppPause(t *testing.T) {
	app := newTestApp(t, field.Baseline())
	app.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	app.Update(key(" "))
	if !app.Paused() {
		t.Fatal("space should pause")
	}
	tickN(app, 5)
	if app.Animator().Frames() != 0 {
		t.Error("paused app rendered frames")
	}
	app.Update(key(" "))
	tickN(app, 2)
	if app.Animator().Frames() != 2 {
		t.Errorf("frames = %d after resume, want 2", app.Animator().Frames())
	}
}

func TestAppQuitStopsAnimator(t *testing.T) {
	app := newTestApp(t, field.Enhanced())
	app.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	tickN(app, 2)

	_, cmd := app.Update(key("q"))
	if cmd == nil {
		t.Fatal("quit returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("quit did not return tea.Quit")
	}
	if app.Animator().State() != anim.Stopped {
		t.Error("animator still running after quit")
	}
	if resize, pointer := app.Subscribers(); resize != 0 || pointer != 0 {
		t.Errorf("subscribers left: resize=%d pointer=%d", resize, pointer)
	}

	app.Update(tea.WindowSizeMsg{Width: 90, Height: 24})
	if app.Animator().State() != anim.Stopped {
		t.Error("resize after quit restarted the animator")
	}
}

func TestAppMouseDrivesPointer(t *testing.T) {
	app := newTestApp(t, field.Enhanced())
	app.Update(tea.WindowSizeMsg{Width: 100, Height: 30})

	app.Update(tea.MouseMsg{X: 10, Y: 5, Action: tea.MouseActionMotion})
	if !app.pointerInside {
		t.Error("pointer over the canvas not reported")
	}
	app.Update(tea.MouseMsg{X: 95, Y: 5, Action: tea.MouseActionMotion})
	if app.pointerInside {
		t.Error("pointer over the sidebar should leave the field")
	}
}

func TestAppMouseBelowHelp(t *testing.T) {
	app := newTestApp(t, field.Enhanced())
	app.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	app.Update(key("?"))

	app.Update(tea.MouseMsg{X: 10, Y: 5, Action: tea.MouseActionMotion})
	if app.pointerInside {
		t.Error("pointer over the help box should not reach the field")
	}

	// help box, blank line, header, blank line, then the canvas
	lines := strings.Split(app.View(), "\n")
	top := app.canvasTop()
	if top >= len(lines) || !strings.Contains(lines[top-4], "╚") || !strings.Contains(lines[top-2], "theme") {
		t.Fatalf("canvas top %d does not follow the help box and header", top)
	}
	app.Update(tea.MouseMsg{X: 10, Y: top + 2, Action: tea.MouseActionMotion})
	if !app.pointerInside {
		t.Error("pointer over the canvas below the help box not reported")
	}

	app.Update(key("?"))
	if app.canvasTop() != headerRows {
		t.Errorf("canvas top = %d after closing help, want %d", app.canvasTop(), headerRows)
	}
}

func TestAppThemeAndHelp(t *testing.T) {
	app := newTestApp(t, field.Baseline())
	app.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	first := app.Theme().Name
	app.Update(key("t"))
	if app.Theme().Name == first {
		t.Error("t did not change the theme")
	}
	app.Update(key("?"))
	if !strings.Contains(app.View(), "KEYBOARD SHORTCUTS") {
		t.Error("help overlay missing")
	}
}

func TestPickerLaunchesChoice(t *testing.T) {
	p := NewPicker([]Choice{
		{Name: "hero", Description: "baseline", Options: field.Baseline()},
		{Name: "enhanced", Description: "interactive", Options: field.Enhanced()},
	}, Settings{Seed: 3})
	p.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	p.Update(key("j"))
	if !strings.Contains(p.View(), "enhanced") {
		t.Error("menu missing preset")
	}
	p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if p.App() == nil {
		t.Fatal("enter did not launch the app")
	}
	defer p.App().Stop()
	if !p.App().opts.Interactive {
		t.Error("picker launched the wrong preset")
	}
	if p.App().Animator().State() != anim.Running {
		t.Error("app should start with the remembered size")
	}
}

func TestThemes(t *testing.T) {
	if GetTheme("nope").Name != "nebula" {
		t.Error("unknown theme should fall back to nebula")
	}
	seen := map[string]bool{}
	name := Themes[0].Name
	for range Themes {
		seen[name] = true
		name = NextTheme(name).Name
	}
	if len(seen) != len(Themes) {
		t.Errorf("cycle visited %d themes, want %d", len(seen), len(Themes))
	}
	if ThemeRetroGreen.RenderOptions().Mono == nil {
		t.Error("retro theme should render mono")
	}
	if ThemeNebula.RenderOptions().Mono != nil {
		t.Error("nebula theme should keep particle hues")
	}
}
