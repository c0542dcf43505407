package cli

import (
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/frops/planner/pkg/domain/calendar"
	"github.com/frops/planner/pkg/domain/navigation"
	"github.com/frops/planner/pkg/domain/timeline"
	"github.com/frops/planner/pkg/render"
)

var (
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

const timelineHelp = "[←/→] Month  [g] Week/Month  [t] Today  [q] Quit"

// timelineModel is the interactive timeline. Every move rebuilds the view
// from storage so edits made elsewhere show up.
type timelineModel struct {
	nav     *navigation.Navigator
	build   func(timeline.ViewConfig) (*timeline.View, error)
	today   calendar.Date
	noColor bool

	view   *timeline.View
	status string
	err    error
}

func newTimelineModel(nav *navigation.Navigator, build func(timeline.ViewConfig) (*timeline.View, error), today calendar.Date, noColor bool) (timelineModel, error) {
	m := timelineModel{nav: nav, build: build, today: today, noColor: noColor}
	if err := m.refresh(); err != nil {
		return m, err
	}
	return m, nil
}

func (m *timelineModel) refresh() error {
	view, err := m.build(m.nav.ViewConfig())
	if err != nil {
		m.err = err
		return err
	}
	m.view = view
	m.err = nil
	return nil
}

func (m timelineModel) Init() tea.Cmd { return nil }

func (m timelineModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	m.status = ""
	switch key.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "left", "h":
		m.nav.Previous()
	case "right", "l":
		m.nav.Next()
	case "t":
		m.nav.Today(m.today)
	case "g":
		if err := m.nav.Toggle(); err != nil {
			if errors.Is(err, navigation.ErrTransitionNotAllowed) {
				m.status = err.Error()
				return m, nil
			}
			m.err = err
			return m, nil
		}
	default:
		return m, nil
	}

	_ = m.refresh()
	return m, nil
}

func (m timelineModel) View() string {
	var b strings.Builder

	b.WriteString(heading(windowLabel(m.nav)+" ("+string(m.nav.Granularity())+" view)", m.noColor))
	b.WriteString("\n\n")

	switch {
	case m.err != nil:
		b.WriteString("Error: " + m.err.Error() + "\n")
	case m.view != nil:
		b.WriteString(render.Terminal(m.view, render.TerminalOptions{NoColor: m.noColor}))
	}

	if m.status != "" {
		b.WriteString("\n")
		if m.noColor {
			b.WriteString(m.status)
		} else {
			b.WriteString(statusStyle.Render(m.status))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.noColor {
		b.WriteString(timelineHelp)
	} else {
		b.WriteString(helpStyle.Render(timelineHelp))
	}
	b.WriteString("\n")
	return b.String()
}
