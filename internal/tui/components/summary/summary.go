package summary

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/zsy-dream/HabitMaster-pioneer/internal/render"
	"github.com/zsy-dream/HabitMaster-pioneer/internal/stats"
)

// CyclePeriodMsg asks the dashboard to reload with the next chart period.
type CyclePeriodMsg struct {
	Period stats.Period
}

type KeyMap struct {
	Period key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Period: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "chart period"),
		),
	}
}

type Model struct {
	viewport   viewport.Model
	keys       KeyMap
	period     stats.Period
	chartWidth int
	loaded     bool
}

func New(period stats.Period, chartWidth, width, height int) Model {
	return Model{
		viewport:   viewport.New(width, height),
		keys:       DefaultKeyMap(),
		period:     period,
		chartWidth: chartWidth,
	}
}

func (m Model) Period() stats.Period {
	return m.period
}

func (m Model) Keys() KeyMap {
	return m.keys
}

func (m *Model) SetSummary(s stats.Summary) {
	m.period = s.Period
	m.loaded = true
	m.viewport.SetContent(render.Summary(s, m.chartWidth))
}

func (m *Model) SetError(err error) {
	m.loaded = true
	m.viewport.SetContent("Statistics unavailable: " + err.Error())
}

func nextPeriod(p stats.Period) stats.Period {
	for i, candidate := range stats.Periods {
		if candidate == p {
			return stats.Periods[(i+1)%len(stats.Periods)]
		}
	}
	return stats.PeriodWeek
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && key.Matches(msg, m.keys.Period) {
		next := nextPeriod(m.period)
		return m, func() tea.Msg { return CyclePeriodMsg{Period: next} }
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if !m.loaded {
		return "\n  Loading statistics..."
	}
	return m.viewport.View()
}

func (m *Model) SetSize(width, height int) {
	m.viewport.Width = width
	m.viewport.Height = height
}
