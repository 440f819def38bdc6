package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/zsy-dream/HabitMaster-pioneer/internal/constants"
	"github.com/zsy-dream/HabitMaster-pioneer/internal/stats"
	"github.com/zsy-dream/HabitMaster-pioneer/internal/storage"
	"github.com/zsy-dream/HabitMaster-pioneer/internal/tui/components/habits"
	"github.com/zsy-dream/HabitMaster-pioneer/internal/tui/components/summary"
)

type SessionState int

const (
	StateHabits SessionState = iota
	StateStats
	StateAddHabit
	StateConfirmArchive
)

// Options scopes the dashboard to one owner and clock.
type Options struct {
	OwnerID    string
	Location   *time.Location
	Now        func() time.Time
	Window     int
	Period     stats.Period
	ChartWidth int
}

type HabitFormModel struct {
	Name string
}

type summaryLoadedMsg struct {
	summary stats.Summary
	err     error
}

type KeyMap struct {
	Tab      key.Binding
	ShiftTab key.Binding
	Quit     key.Binding
	Help     key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Tab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next view"),
		),
		ShiftTab: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "previous view"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
	}
}

type Model struct {
	store          storage.Provider
	svc            *stats.Service
	opts           Options
	state          SessionState
	keys           KeyMap
	help           help.Model
	habitsModel    habits.Model
	summaryModel   summary.Model
	form           *huh.Form
	habitForm      *HabitFormModel
	habitToArchive habits.ArchiveHabitMsg
	status         string
	quitting       bool
	width          int
	height         int
}

func NewModel(store storage.Provider, svc *stats.Service, opts Options) Model {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Window <= 0 {
		opts.Window = constants.DefaultHeatmapWindowDays
	}
	if opts.Period == "" {
		opts.Period = stats.PeriodWeek
	}
	if opts.ChartWidth <= 0 {
		opts.ChartWidth = constants.DefaultChartWidth
	}

	m := Model{
		store:        store,
		svc:          svc,
		opts:         opts,
		state:        StateHabits,
		keys:         DefaultKeyMap(),
		help:         help.New(),
		habitsModel:  habits.New("", nil, nil, 0, 0),
		summaryModel: summary.New(opts.Period, opts.ChartWidth, 0, 0),
	}
	m.refreshHabits()
	return m
}

func (m Model) scope() stats.Scope {
	return stats.Scope{
		OwnerID:  m.opts.OwnerID,
		Now:      m.opts.Now(),
		Location: m.opts.Location,
	}
}

// refreshHabits reloads active habits and today's marks.
func (m *Model) refreshHabits() {
	today := m.scope().Today()
	list, err := m.store.GetAllHabits(m.opts.OwnerID, false, false)
	if err != nil {
		m.status = "Failed to load habits: " + err.Error()
		return
	}
	entries, err := m.store.GetCompletionsForDay(m.opts.OwnerID, today)
	if err != nil {
		m.status = "Failed to load completions: " + err.Error()
		return
	}
	m.habitsModel.SetHabits(today, list, entries)
}

func (m Model) loadSummary(period stats.Period) tea.Cmd {
	svc, sc, window := m.svc, m.scope(), m.opts.Window
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), constants.StatsQueryTimeout)
		defer cancel()
		s, err := svc.Summary(ctx, sc, window, period)
		return summaryLoadedMsg{summary: s, err: err}
	}
}

func (m Model) ShortHelp() []key.Binding {
	keys := []key.Binding{m.keys.Tab, m.keys.Quit, m.keys.Help}
	switch m.state {
	case StateHabits:
		hk := habits.DefaultKeyMap()
		keys = append(keys, hk.Add, hk.Toggle, hk.Archive)
	case StateStats:
		keys = append(keys, m.summaryModel.Keys().Period)
	}
	return keys
}

func (m Model) FullHelp() [][]key.Binding {
	global := []key.Binding{m.keys.Tab, m.keys.ShiftTab, m.keys.Quit, m.keys.Help}
	hk := habits.DefaultKeyMap()
	return [][]key.Binding{
		global,
		{hk.Add, hk.Toggle, hk.Archive},
		{m.summaryModel.Keys().Period},
	}
}

func (m Model) Init() tea.Cmd {
	return m.loadSummary(m.opts.Period)
}
