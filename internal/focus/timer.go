package focus

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/zsy-dream/HabitMaster-pioneer/internal/constants"
	"github.com/zsy-dream/HabitMaster-pioneer/internal/models"
)

var (
	workStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	breakStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	pausedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Italic(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	docStyle    = lipgloss.NewStyle().Padding(1, 2)
)

type Config struct {
	OwnerID      string
	WorkMinutes  int
	BreakMinutes int
	// Cycles stops the timer after this many work phases; 0 runs until quit.
	Cycles int
}

// TickMsg advances the timer by one tick interval.
type TickMsg time.Time

type KeyMap struct {
	Pause key.Binding
	Skip  key.Binding
	Quit  key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Pause: key.NewBinding(
			key.WithKeys(" ", "p"),
			key.WithHelp("space", "pause/resume"),
		),
		Skip: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "skip phase"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c", "esc"),
			key.WithHelp("q", "quit"),
		),
	}
}

func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Pause, k.Skip, k.Quit}
}

func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

// Model is a Pomodoro timer alternating work and break phases. Every phase
// that runs to the end produces a FocusSession; skipped or abandoned phases
// record nothing.
type Model struct {
	cfg       Config
	keys      KeyMap
	help      help.Model
	progress  progress.Model
	mode      models.FocusMode
	length    time.Duration
	remaining time.Duration
	paused    bool
	workDone  int
	completed []models.FocusSession
	err       error
	quitting  bool

	// OnComplete persists a finished phase; an error is shown but does not stop the timer.
	OnComplete func(models.FocusSession) error
	now        func() time.Time
}

func NewTimer(cfg Config) Model {
	if cfg.WorkMinutes <= 0 {
		cfg.WorkMinutes = constants.DefaultWorkMinutes
	}
	if cfg.BreakMinutes <= 0 {
		cfg.BreakMinutes = constants.DefaultBreakMinutes
	}
	m := Model{
		cfg:      cfg,
		keys:     DefaultKeyMap(),
		help:     help.New(),
		progress: progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		now:      time.Now,
	}
	m.startPhase(models.FocusModeWork)
	return m
}

func (m *Model) startPhase(mode models.FocusMode) {
	minutes := m.cfg.WorkMinutes
	if mode == models.FocusModeBreak {
		minutes = m.cfg.BreakMinutes
	}
	m.mode = mode
	m.length = time.Duration(minutes) * time.Minute
	m.remaining = m.length
}

func tick() tea.Cmd {
	return tea.Tick(constants.FocusTickInterval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Pause):
			m.paused = !m.paused
			return m, nil
		case key.Matches(msg, m.keys.Skip):
			m.nextPhase()
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.progress.Width = max(10, min(msg.Width-8, 60))
		return m, nil

	case TickMsg:
		if m.paused {
			return m, tick()
		}
		m.remaining -= constants.FocusTickInterval
		if m.remaining <= 0 {
			m.finishPhase()
			if m.cfg.Cycles > 0 && m.workDone >= m.cfg.Cycles {
				m.quitting = true
				return m, tea.Quit
			}
		}
		return m, tick()
	}
	return m, nil
}

func (m *Model) finishPhase() {
	session := models.FocusSession{
		ID:              uuid.New().String(),
		OwnerID:         m.cfg.OwnerID,
		DurationMinutes: int(m.length / time.Minute),
		Mode:            m.mode,
		CompletedAt:     m.now(),
	}
	m.completed = append(m.completed, session)
	if m.mode == models.FocusModeWork {
		m.workDone++
	}
	if m.OnComplete != nil {
		m.err = m.OnComplete(session)
	}
	m.nextPhase()
}

func (m *Model) nextPhase() {
	if m.mode == models.FocusModeWork {
		m.startPhase(models.FocusModeBreak)
	} else {
		m.startPhase(models.FocusModeWork)
	}
	m.paused = false
}

// Completed returns the sessions finished so far, oldest first.
func (m Model) Completed() []models.FocusSession {
	return m.completed
}

func (m Model) Mode() models.FocusMode { return m.mode }

func (m Model) Remaining() time.Duration { return m.remaining }

func (m Model) Paused() bool { return m.paused }

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	title := workStyle.Render("● Focus")
	if m.mode == models.FocusModeBreak {
		title = breakStyle.Render("○ Break")
	}
	b.WriteString(title)
	fmt.Fprintf(&b, "  %s", formatRemaining(m.remaining))
	if m.paused {
		b.WriteString("  " + pausedStyle.Render("paused"))
	}
	b.WriteString("\n\n")

	elapsed := 1 - float64(m.remaining)/float64(m.length)
	b.WriteString(m.progress.ViewAs(elapsed))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Work sessions completed: %d", m.workDone)
	if m.cfg.Cycles > 0 {
		fmt.Fprintf(&b, "/%d", m.cfg.Cycles)
	}
	b.WriteString("\n")
	if m.err != nil {
		b.WriteString(errorStyle.Render("Failed to save session: "+m.err.Error()) + "\n")
	}
	b.WriteString("\n" + m.help.View(m.keys))
	return docStyle.Render(b.String())
}

func formatRemaining(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Round(time.Second)
	return fmt.Sprintf("%02d:%02d", int(d/time.Minute), int(d%time.Minute/time.Second))
}
