package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/particlefield/internal/field"
)

// Choice is one entry of the preset picker.
type Choice struct {
	Name        string
	Description string
	Options     field.Options
}

var (
	pickTitle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#00cccc")).Bold(true)
	pickSub      = lipgloss.NewStyle().Foreground(lipgloss.Color("#666688"))
	pickCursor   = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ffff")).Bold(true)
	pickSelected = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Bold(true)
	pickDesc     = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff88ff"))
	pickIdle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#555566"))
	pickIdleDesc = lipgloss.NewStyle().Foreground(lipgloss.Color("#444455"))
	pickKey      = lipgloss.NewStyle().Foreground(lipgloss.Color("#00aaaa")).Bold(true)
)

// Picker lists presets and hands over to an App once one is chosen.
type Picker struct {
	choices  []Choice
	cursor   int
	settings Settings
	app      *App
	size     *tea.WindowSizeMsg
	err      error
}

func NewPicker(choices []Choice, s Settings) *Picker {
	return &Picker{choices: choices, settings: s}
}

// App returns the running app, nil while still picking.
func (p *Picker) App() *App { return p.app }

func (p *Picker) Err() error { return p.err }

func (p *Picker) Init() tea.Cmd { return nil }

func (p *Picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if p.app != nil {
		_, cmd := p.app.Update(msg)
		return p, cmd
	}
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.size = &msg
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return p, tea.Quit
		case "up", "k":
			if p.cursor > 0 {
				p.cursor--
			}
		case "down", "j":
			if p.cursor < len(p.choices)-1 {
				p.cursor++
			}
		case "enter", " ":
			return p.start()
		}
	}
	return p, nil
}

func (p *Picker) start() (tea.Model, tea.Cmd) {
	if len(p.choices) == 0 {
		return p, tea.Quit
	}
	choice := p.choices[p.cursor]
	s := p.settings
	s.Title = choice.Name
	app, err := NewApp(choice.Options, s)
	if err != nil {
		p.err = err
		return p, tea.Quit
	}
	p.app = app
	if p.size != nil {
		app.resize(p.size.Width, p.size.Height)
	}
	return p, app.Init()
}

func (p *Picker) View() string {
	if p.app != nil {
		return p.app.View()
	}
	var b strings.Builder
	b.WriteString("\n\n    " + pickTitle.Render("PARTICLE FIELD") + "\n    " + pickSub.Render("animated backdrop presets") + "\n    " + pickSub.Render("─────────────────────────") + "\n\n")
	for i, c := range p.choices {
		desc := c.Description
		if len(desc) > 40 {
			desc = desc[:37] + "..."
		}
		if i == p.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n", pickCursor.Render("▸"), pickSelected.Render(fmt.Sprintf("%-12s", c.Name)), pickDesc.Render(desc)))
		} else {
			b.WriteString(fmt.Sprintf("    %s  %s\n", pickIdle.Render(fmt.Sprintf("  %-12s", c.Name)), pickIdleDesc.Render(desc)))
		}
	}
	b.WriteString("\n    " + pickKey.Render("j/k") + pickIdle.Render(" navigate  ") + pickKey.Render("enter") + pickIdle.Render(" select  ") + pickKey.Render("q") + pickIdle.Render(" quit") + "\n")
	return b.String()
}

// RunPicker shows the preset menu, then animates the chosen preset.
func RunPicker(choices []Choice, s Settings) error {
	p := NewPicker(choices, s)
	_, err := tea.NewProgram(p, tea.WithAltScreen(), tea.WithMouseAllMotion()).Run()
	if p.app != nil {
		p.app.Stop()
	}
	if err != nil {
		return err
	}
	return p.err
}
