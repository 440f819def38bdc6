package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/google/uuid"

	"github.com/zsy-dream/HabitMaster-pioneer/internal/models"
	"github.com/zsy-dream/HabitMaster-pioneer/internal/storage"
	"github.com/zsy-dream/HabitMaster-pioneer/internal/tui/components/habits"
	"github.com/zsy-dream/HabitMaster-pioneer/internal/tui/components/summary"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		h, v := docStyle.GetFrameSize()
		// tabs, status and help lines
		m.habitsModel.SetSize(msg.Width-h, msg.Height-v-3)
		m.summaryModel.SetSize(msg.Width-h, msg.Height-v-3)
		return m, nil
	case summaryLoadedMsg:
		if msg.err != nil {
			m.summaryModel.SetError(msg.err)
		} else {
			m.summaryModel.SetSummary(msg.summary)
		}
		return m, nil
	}

	switch m.state {
	case StateAddHabit:
		return m.updateAddHabit(msg)
	case StateConfirmArchive:
		return m.updateConfirmArchive(msg)
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Tab), key.Matches(msg, m.keys.ShiftTab):
			if m.state == StateHabits {
				m.state = StateStats
			} else {
				m.state = StateHabits
			}
			return m, nil
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}
	}

	if handled, cmd := m.handleComponentMsg(msg); handled {
		return m, cmd
	}

	var cmd tea.Cmd
	switch m.state {
	case StateHabits:
		m.habitsModel, cmd = m.habitsModel.Update(msg)
	case StateStats:
		m.summaryModel, cmd = m.summaryModel.Update(msg)
	}
	return m, cmd
}

// handleComponentMsg applies the requests emitted by the habits and summary views.
func (m *Model) handleComponentMsg(msg tea.Msg) (bool, tea.Cmd) {
	switch msg := msg.(type) {
	case habits.AddHabitMsg:
		m.habitForm = &HabitFormModel{}
		m.form = huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Habit name").
					Value(&m.habitForm.Name).
					Validate(func(s string) error {
						if strings.TrimSpace(s) == "" {
							return errors.New("name is required")
						}
						return nil
					}),
			),
		)
		m.state = StateAddHabit
		return true, m.form.Init()
	case habits.MarkHabitMsg:
		event := models.CompletionEvent{
			ID:         uuid.New().String(),
			OwnerID:    m.opts.OwnerID,
			HabitID:    msg.ID,
			Day:        m.habitsModel.Today(),
			RecordedAt: m.opts.Now(),
		}
		if _, err := m.store.MarkCompletion(event); err != nil {
			m.status = "Failed to mark habit: " + err.Error()
			return true, nil
		}
		return true, m.afterChange("")
	case habits.UnmarkHabitMsg:
		err := m.store.UnmarkCompletion(m.opts.OwnerID, msg.ID, m.habitsModel.Today())
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			m.status = "Failed to unmark habit: " + err.Error()
			return true, nil
		}
		return true, m.afterChange("")
	case habits.ArchiveHabitMsg:
		m.habitToArchive = msg
		m.state = StateConfirmArchive
		return true, nil
	case summary.CyclePeriodMsg:
		return true, m.loadSummary(msg.Period)
	}
	return false, nil
}

// afterChange refreshes both views once a habit or completion was written.
func (m *Model) afterChange(status string) tea.Cmd {
	m.status = status
	m.refreshHabits()
	return m.loadSummary(m.summaryModel.Period())
}

func (m Model) updateAddHabit(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEsc {
		m.state = StateHabits
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		name := strings.TrimSpace(m.habitForm.Name)
		m.state = StateHabits
		if _, err := m.store.GetHabitByName(m.opts.OwnerID, name); err == nil {
			m.status = fmt.Sprintf("Habit %q already exists", name)
			return m, nil
		}
		habit := models.Habit{
			ID:        uuid.New().String(),
			OwnerID:   m.opts.OwnerID,
			Name:      name,
			CreatedAt: m.opts.Now(),
		}
		if err := m.store.AddHabit(habit); err != nil {
			m.status = "Failed to add habit: " + err.Error()
			return m, nil
		}
		return m, m.afterChange(fmt.Sprintf("Added habit %q", name))
	case huh.StateAborted:
		m.state = StateHabits
	}
	return m, cmd
}

func (m Model) updateConfirmArchive(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch keyMsg.String() {
	case "y", "Y":
		m.state = StateHabits
		if err := m.store.ArchiveHabit(m.opts.OwnerID, m.habitToArchive.ID); err != nil {
			m.status = "Failed to archive habit: " + err.Error()
			return m, nil
		}
		return m, m.afterChange(fmt.Sprintf("Archived habit %q", m.habitToArchive.Name))
	case "n", "N", "esc":
		m.state = StateHabits
	}
	return m, nil
}
