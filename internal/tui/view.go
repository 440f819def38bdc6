package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.state {
	case StateHabits:
		content = docStyle.Render(m.habitsModel.View())
	case StateStats:
		content = docStyle.Render(m.summaryModel.View())
	case StateAddHabit:
		content = docStyle.Render(m.form.View())
	case StateConfirmArchive:
		content = m.viewConfirmArchive()
	}

	var status string
	if m.status != "" {
		status = statusStyle.Render(m.status)
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewTabs(),
		content,
		status,
		m.help.View(m),
	)
}

func (m Model) viewTabs() string {
	active := m.state
	switch active {
	case StateAddHabit, StateConfirmArchive:
		active = StateHabits
	}

	var tabs []string
	for i, title := range []string{"Habits", "Stats"} {
		if active == SessionState(i) {
			tabs = append(tabs, activeTabStyle.Render(title))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(title))
		}
	}
	tabs = append(tabs, inactiveTabStyle.Render(m.habitsModel.Today()))
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) viewConfirmArchive() string {
	return lipgloss.Place(m.width, m.height-4,
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center,
			dangerStyle.Render(fmt.Sprintf("Archive habit %q?", m.habitToArchive.Name)),
			"Its history stays in the statistics.",
			"",
			"[y] Yes",
			"[n] No",
		),
	)
}
