package viz

import (
	"fmt"
	"io"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/particlefield/internal/anim"
	"github.com/san-kum/particlefield/internal/field"
	"github.com/san-kum/particlefield/internal/metrics"
)

const (
	sidebarWidth    = 38
	headerRows      = 2
	minCols         = 10
	minRows         = 4
	historyCapacity = 120
)

var helpText = `
╔══════════════════════════════════════╗
║           KEYBOARD SHORTCUTS         ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume animation   ║
║  R        - Reseed particles         ║
║  T        - Cycle themes             ║
║  Mouse    - Push particles away      ║
║  ?        - Toggle this help         ║
║  Q        - Quit                     ║
╚══════════════════════════════════════╝
`

type TickMsg time.Time

// Settings configures the terminal host.
type Settings struct {
	Title string
	Theme string
	FPS   int
	// Seed fixes the particle layout; zero seeds from the clock.
	Seed   int64
	Scale  float64
	Logger *log.Logger
}

// App is a bubbletea model that hosts one animator on a Braille canvas. The
// terminal is the drawing surface, so App is also the animator's Host.
type App struct {
	*anim.StaticHost
	settings      Settings
	opts          field.Options
	logger        *log.Logger
	surface       *BrailleSurface
	queue         *anim.FrameQueue
	animator      *anim.Animator
	theme         Theme
	paused        bool
	showHelp      bool
	pointerInside bool
	quitting      bool
	width, height int
	last          anim.FrameInfo
	links         *metrics.History
	alpha         *metrics.History
	energy        *metrics.KineticEnergy
}

func NewApp(opts field.Options, s Settings) (*App, error) {
	if s.FPS <= 0 {
		s.FPS = 30
	}
	if s.Title == "" {
		s.Title = "particle field"
	}
	if s.Logger == nil {
		s.Logger = log.New(io.Discard)
	}
	a := &App{
		StaticHost: anim.NewStaticHost(nil, 0, 0),
		settings:   s,
		opts:       opts,
		logger:     s.Logger,
		queue:      anim.NewFrameQueue(),
		theme:      GetTheme(s.Theme),
		links:      metrics.NewHistory(historyCapacity),
		alpha:      metrics.NewHistory(historyCapacity),
		energy:     metrics.NewKineticEnergy(),
	}
	options := []anim.Option{anim.WithLogger(s.Logger), anim.WithFrameHook(a.observe)}
	if s.Seed != 0 {
		options = append(options, anim.WithSeed(s.Seed))
	}
	animator, err := anim.New(a, a.queue, opts, options...)
	if err != nil {
		return nil, err
	}
	a.animator = animator
	return a, nil
}

func (a *App) Animator() *anim.Animator { return a.animator }

func (a *App) Theme() Theme { return a.theme }

func (a *App) Paused() bool { return a.paused }

// Stop tears the animator down. Safe to call after quitting.
func (a *App) Stop() { a.animator.Stop() }

func (a *App) observe(info anim.FrameInfo) {
	a.last = info
	a.links.Push(float64(info.Stats.Links))
	a.alpha.Push(info.Stats.MeanAlpha)
	a.energy.Reset()
	a.energy.Observe(info)
}

func (a *App) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(a.settings.FPS), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (a *App) Init() tea.Cmd { return a.tick() }

// Update handles input events and pumps animation frames.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.resize(msg.Width, msg.Height)
	case tea.MouseMsg:
		a.mouse(msg)
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			a.quitting = true
			a.animator.Stop()
			return a, tea.Quit
		case " ":
			a.paused = !a.paused
		case "r":
			if err := a.animator.Reseed(); err != nil {
				a.logger.Warn("reseed failed", "err", err)
			}
			if a.surface != nil {
				a.surface.Clear()
			}
		case "t":
			a.theme = NextTheme(a.theme.Name)
		case "?":
			a.showHelp = !a.showHelp
		}
	case TickMsg:
		if !a.paused {
			a.queue.Pump(time.Time(msg))
		}
		return a, a.tick()
	}
	return a, nil
}

func (a *App) resize(width, height int) {
	a.width, a.height = width, height
	cols := max(width-sidebarWidth, minCols)
	rows := max(height-headerRows, minRows)
	if a.surface == nil {
		a.surface = NewBrailleSurface(cols, rows, a.settings.Scale)
		a.SetSurface(a.surface)
	} else {
		a.surface.Resize(cols, rows)
	}
	w, h := a.surface.FieldSize()
	a.StaticHost.Resize(w, h)

	if !a.quitting && a.animator.State() == anim.Stopped {
		if err := a.animator.Start(); err != nil {
			a.logger.Warn("animator did not start", "err", err)
		}
	}
}

func (a *App) mouse(msg tea.MouseMsg) {
	if a.surface == nil {
		return
	}
	col, row := msg.X, msg.Y-a.canvasTop()
	c := a.surface.Canvas()
	if col < 0 || row < 0 || col >= c.Width || row >= c.Height {
		if a.pointerInside {
			a.LeavePointer()
			a.pointerInside = false
		}
		return
	}
	x, y := a.surface.CellToField(col, row)
	a.MovePointer(x, y)
	a.pointerInside = true
}

// View renders the canvas beside the stats sidebar.
func (a *App) View() string {
	if a.surface == nil {
		return "\n  waiting for terminal size..."
	}
	header := GradientText(strings.ToUpper(a.settings.Title), a.theme.Primary, a.theme.Accent) +
		"  " + Subtle.Render(fmt.Sprintf("%s theme", a.theme.Name)) + "\n"
	canvasView := a.surface.Canvas().Render(a.theme.RenderOptions())
	sidebar := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(a.theme.Muted).
		Padding(0, 1).
		Width(sidebarWidth - 2).
		Render(a.sidebar())
	main := header + "\n" + lipgloss.JoinHorizontal(lipgloss.Top, canvasView, sidebar)
	if a.showHelp {
		return helpText + "\n" + main
	}
	return main
}

func (a *App) sidebar() string {
	var s strings.Builder
	status := StatusRunning.Render("RUNNING")
	switch {
	case a.animator.State() == anim.Stopped:
		status = StatusPaused.Render("STOPPED")
	case a.paused:
		status = StatusPaused.Render("PAUSED")
	}
	s.WriteString(status + "\n\n")

	if a.links.Len() > 1 {
		chart := asciigraph.Plot(a.links.Values(),
			asciigraph.Height(5),
			asciigraph.Width(sidebarWidth-12),
			asciigraph.Caption("links"))
		s.WriteString(lipgloss.NewStyle().Foreground(a.theme.Primary).Render(chart) + "\n\n")
	}

	w, h := a.animator.Bounds()
	row := func(label, value string) {
		s.WriteString(MetricLabel.Render(label) + MetricValue.Render(value) + "\n")
	}
	row("Particles", fmt.Sprintf("%d", a.last.Stats.Particles))
	row("Links", fmt.Sprintf("%d", a.last.Stats.Links))
	row("Alpha", fmt.Sprintf("%.3f", a.last.Stats.MeanAlpha))
	row("Energy", fmt.Sprintf("%.3f", a.energy.Value()))
	row("Frame", fmt.Sprintf("%d", a.last.Frame))
	row("Field", fmt.Sprintf("%.0fx%.0f", w, h))
	pointer := "off"
	if a.opts.Interactive {
		pointer = "idle"
		if a.pointerInside {
			pointer = "active"
		}
	}
	row("Pointer", pointer)

	s.WriteString("\n" + MetricLabel.Render("Alpha") + SparklineChart(a.alpha.Values(), sidebarWidth-16) + "\n")
	s.WriteString("\n" + Separator(sidebarWidth-4) + "\n")
	s.WriteString(KeyHint.Render("SP:Pause R:Reseed T:Theme\n?:Help   Q:Quit"))
	return s.String()
}

// Run takes over the terminal until the user quits. The animator is always
// stopped on the way out.
func Run(opts field.Options, s Settings) error {
	app, err := NewApp(opts, s)
	if err != nil {
		return err
	}
	defer app.Stop()
	_, err = tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseAllMotion()).Run()
	return err
}
