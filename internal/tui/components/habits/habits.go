package habits

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/zsy-dream/HabitMaster-pioneer/internal/models"
)

type AddHabitMsg struct{}

type MarkHabitMsg struct {
	ID string
}

type UnmarkHabitMsg struct {
	ID string
}

type ArchiveHabitMsg struct {
	ID   string
	Name string
}

type Item struct {
	Habit    models.Habit
	IsMarked bool
}

func (i Item) Title() string {
	if i.IsMarked {
		return "✓ " + i.Habit.Name
	}
	return "○ " + i.Habit.Name
}

func (i Item) Description() string {
	if i.IsMarked {
		return "completed today"
	}
	return "not completed today"
}

func (i Item) FilterValue() string { return i.Habit.Name }

type KeyMap struct {
	Add     key.Binding
	Toggle  key.Binding
	Archive key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" ", "m"),
			key.WithHelp("space", "mark/unmark"),
		),
		Archive: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "archive"),
		),
	}
}

type Model struct {
	list  list.Model
	keys  KeyMap
	today string
}

// New lists active habits; entries are the completions recorded for today.
func New(today string, habits []models.Habit, entries []models.CompletionEvent, width, height int) Model {
	l := list.New(nil, list.NewDefaultDelegate(), width, height)
	l.Title = "Habits"
	l.SetShowTitle(false)
	l.SetShowHelp(false)

	keys := DefaultKeyMap()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Add, keys.Toggle, keys.Archive}
	}

	m := Model{list: l, keys: keys}
	m.SetHabits(today, habits, entries)
	return m
}

func (m *Model) SetHabits(today string, habits []models.Habit, entries []models.CompletionEvent) {
	m.today = today
	marked := make(map[string]bool, len(entries))
	for _, e := range entries {
		marked[e.HabitID] = true
	}

	items := make([]list.Item, 0, len(habits))
	for _, h := range habits {
		if h.DeletedAt != nil || h.ArchivedAt != nil {
			continue
		}
		items = append(items, Item{Habit: h, IsMarked: marked[h.ID]})
	}
	m.list.SetItems(items)
}

// Today is the day the marks refer to.
func (m Model) Today() string {
	return m.today
}

func (m Model) Items() []Item {
	items := make([]Item, 0, len(m.list.Items()))
	for _, it := range m.list.Items() {
		if i, ok := it.(Item); ok {
			items = append(items, i)
		}
	}
	return items
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	if msg, ok := msg.(tea.KeyMsg); ok && m.list.FilterState() != list.Filtering {
		switch {
		case key.Matches(msg, m.keys.Add):
			return m, func() tea.Msg { return AddHabitMsg{} }
		case key.Matches(msg, m.keys.Toggle):
			if i, ok := m.list.SelectedItem().(Item); ok {
				if i.IsMarked {
					return m, func() tea.Msg { return UnmarkHabitMsg{ID: i.Habit.ID} }
				}
				return m, func() tea.Msg { return MarkHabitMsg{ID: i.Habit.ID} }
			}
			return m, nil
		case key.Matches(msg, m.keys.Archive):
			if i, ok := m.list.SelectedItem().(Item); ok {
				return m, func() tea.Msg { return ArchiveHabitMsg{ID: i.Habit.ID, Name: i.Habit.Name} }
			}
			return m, nil
		}
	}

	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 && m.list.FilterState() != list.Filtering {
		return "\n  No habits yet.\n  Press 'a' to add one."
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}
