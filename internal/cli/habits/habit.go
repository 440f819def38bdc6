package habits

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/google/uuid"

	"github.com/zsy-dream/HabitMaster-pioneer/internal/cli"
	"github.com/zsy-dream/HabitMaster-pioneer/internal/models"
	"github.com/zsy-dream/HabitMaster-pioneer/internal/storage"
	"github.com/zsy-dream/HabitMaster-pioneer/internal/utils"
)

type HabitCmd struct {
	Add       HabitAddCmd       `cmd:"" help:"Add a new habit."`
	List      HabitListCmd      `cmd:"" help:"List habits."`
	Mark      HabitMarkCmd      `cmd:"" help:"Mark a habit as done for a day."`
	Unmark    HabitUnmarkCmd    `cmd:"" help:"Remove a habit completion for a day."`
	Today     HabitTodayCmd     `cmd:"" help:"Show today's habit status."`
	Log       HabitLogCmd       `cmd:"" help:"Show habit log (ASCII history)."`
	Archive   HabitArchiveCmd   `cmd:"" help:"Archive a habit."`
	Unarchive HabitUnarchiveCmd `cmd:"" help:"Unarchive a habit."`
	Delete    HabitDeleteCmd    `cmd:"" help:"Delete a habit (soft delete)."`
	Restore   HabitRestoreCmd   `cmd:"" help:"Restore a deleted habit."`
}

// promptName asks for a habit name interactively. Replaced in tests.
var promptName = func() (string, error) {
	var name string
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Habit name").
				Value(&name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("name is required")
					}
					return nil
				}),
		),
	).Run()
	return name, err
}

type HabitAddCmd struct {
	Name string `arg:"" optional:"" help:"Habit name (prompted when omitted)."`
}

func (c *HabitAddCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}
	owner, err := ctx.OwnerID()
	if err != nil {
		return err
	}

	name := strings.TrimSpace(c.Name)
	if name == "" {
		if name, err = promptName(); err != nil {
			return err
		}
		name = strings.TrimSpace(name)
	}

	// Check if habit with same name already exists
	if _, err := ctx.Store.GetHabitByName(owner, name); err == nil {
		return fmt.Errorf("habit with name %q already exists", name)
	} else if !errors.Is(err, storage.ErrNotFound) {
		return err
	}

	now, err := ctx.Clock()
	if err != nil {
		return err
	}
	habit := models.Habit{
		ID:        uuid.New().String(),
		OwnerID:   owner,
		Name:      name,
		CreatedAt: now,
	}
	if err := ctx.Store.AddHabit(habit); err != nil {
		return err
	}

	ctx.Printf("Added habit: %s\n", name)
	return nil
}

type HabitListCmd struct {
	Archived bool `help:"Include archived habits."`
	Deleted  bool `help:"Include deleted habits."`
}

func (c *HabitListCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}
	owner, err := ctx.OwnerID()
	if err != nil {
		return err
	}

	habits, err := ctx.Store.GetAllHabits(owner, c.Archived, c.Deleted)
	if err != nil {
		return err
	}
	if len(habits) == 0 {
		ctx.Println("No habits found.")
		return nil
	}

	for _, habit := range habits {
		status := ""
		if habit.DeletedAt != nil {
			status = " [DELETED]"
		} else if habit.ArchivedAt != nil {
			status = " [ARCHIVED]"
		}
		ctx.Printf("%s%s\n", habit.Name, status)
	}
	return nil
}

type HabitMarkCmd struct {
	Name string `arg:"" help:"Habit name."`
	Date string `help:"Date in YYYY-MM-DD format (default: today)." default:""`
	Note string `help:"Optional note for this entry." default:""`
}

func (c *HabitMarkCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}
	owner, err := ctx.OwnerID()
	if err != nil {
		return err
	}
	habit, err := ctx.FindHabit(owner, c.Name)
	if err != nil {
		return err
	}
	if habit.ArchivedAt != nil {
		return fmt.Errorf("habit %q is archived", c.Name)
	}
	day, err := ctx.ParseDay(c.Date)
	if err != nil {
		return err
	}
	now, err := ctx.Clock()
	if err != nil {
		return err
	}

	created, err := ctx.Store.MarkCompletion(models.CompletionEvent{
		ID:         uuid.New().String(),
		OwnerID:    owner,
		HabitID:    habit.ID,
		Day:        day,
		Note:       c.Note,
		RecordedAt: now,
	})
	if err != nil {
		return err
	}

	if !created {
		ctx.Printf("Habit %q was already marked for %s\n", c.Name, day)
		return nil
	}
	ctx.Printf("Marked habit %q for %s\n", c.Name, day)
	return nil
}

type HabitUnmarkCmd struct {
	Name string `arg:"" help:"Habit name."`
	Date string `help:"Date in YYYY-MM-DD format (default: today)." default:""`
}

func (c *HabitUnmarkCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}
	owner, err := ctx.OwnerID()
	if err != nil {
		return err
	}
	habit, err := ctx.FindHabit(owner, c.Name)
	if err != nil {
		return err
	}
	day, err := ctx.ParseDay(c.Date)
	if err != nil {
		return err
	}

	if err := ctx.Store.UnmarkCompletion(owner, habit.ID, day); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("habit %q is not marked for %s", c.Name, day)
		}
		return err
	}
	ctx.Printf("Unmarked habit %q for %s\n", c.Name, day)
	return nil
}

type HabitTodayCmd struct{}

func (c *HabitTodayCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}
	owner, err := ctx.OwnerID()
	if err != nil {
		return err
	}

	habits, err := ctx.Store.GetAllHabits(owner, false, false)
	if err != nil {
		return err
	}
	if len(habits) == 0 {
		ctx.Println("No habits found.")
		return nil
	}

	today, err := ctx.Today()
	if err != nil {
		return err
	}
	entries, err := ctx.Store.GetCompletionsForDay(owner, today)
	if err != nil {
		return err
	}
	done := make(map[string]bool, len(entries))
	for _, e := range entries {
		done[e.HabitID] = true
	}

	ctx.Printf("Habits for %s:\n\n", today)
	recorded := 0
	for _, habit := range habits {
		status := "[ ]"
		if done[habit.ID] {
			status = "[x]"
			recorded++
		}
		ctx.Printf("%s %s\n", status, habit.Name)
	}

	ctx.Printf("\nRecorded: %d/%d\n", recorded, len(habits))
	return nil
}

type HabitLogCmd struct {
	Days  int    `help:"Number of days to show." default:"14"`
	Habit string `help:"Show log for specific habit only."`
}

const logNameWidth = 20

func (c *HabitLogCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}
	if c.Days <= 0 {
		return fmt.Errorf("days must be positive, got %d", c.Days)
	}
	owner, err := ctx.OwnerID()
	if err != nil {
		return err
	}

	var selected []models.Habit
	if c.Habit != "" {
		h, err := ctx.FindHabit(owner, c.Habit)
		if err != nil {
			return err
		}
		selected = []models.Habit{h}
	} else {
		if selected, err = ctx.Store.GetAllHabits(owner, false, false); err != nil {
			return err
		}
	}
	if len(selected) == 0 {
		ctx.Println("No habits found.")
		return nil
	}

	now, err := ctx.Clock()
	if err != nil {
		return err
	}
	end := utils.CivilDay(now)
	start := utils.AddDays(end, -(c.Days - 1))

	ctx.Printf("Habit log (last %d days):\n\n", c.Days)

	var header strings.Builder
	header.WriteString(pad("Habit", logNameWidth))
	for i := 0; i < c.Days; i++ {
		fmt.Fprintf(&header, " %5s", utils.AddDays(start, i).Format("01/02"))
	}
	ctx.Println(header.String())
	ctx.Println(strings.Repeat("-", logNameWidth+6*c.Days))

	for _, habit := range selected {
		entries, err := ctx.Store.GetCompletionsForHabit(owner, habit.ID, utils.FormatDay(start), utils.FormatDay(end))
		if err != nil {
			return err
		}
		marked := make(map[string]bool, len(entries))
		for _, e := range entries {
			marked[e.Day] = true
		}

		var line strings.Builder
		line.WriteString(pad(habit.Name, logNameWidth))
		for i := 0; i < c.Days; i++ {
			if marked[utils.FormatDay(utils.AddDays(start, i))] {
				line.WriteString("  x   ")
			} else {
				line.WriteString("  .   ")
			}
		}
		ctx.Println(line.String())
	}
	return nil
}

// pad truncates or right-pads name to width runes.
func pad(name string, width int) string {
	r := []rune(name)
	if len(r) > width {
		return string(r[:width-3]) + "..."
	}
	return name + strings.Repeat(" ", width-len(r))
}

type HabitArchiveCmd struct {
	Name string `arg:"" help:"Habit name to archive."`
}

func (c *HabitArchiveCmd) Run(ctx *cli.Context) error {
	return withHabit(ctx, c.Name, func(owner string, h models.Habit) error {
		if err := ctx.Store.ArchiveHabit(owner, h.ID); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return fmt.Errorf("habit %q is already archived", c.Name)
			}
			return err
		}
		ctx.Printf("Archived habit: %s\n", c.Name)
		return nil
	})
}

type HabitUnarchiveCmd struct {
	Name string `arg:"" help:"Habit name to unarchive."`
}

func (c *HabitUnarchiveCmd) Run(ctx *cli.Context) error {
	return withHabit(ctx, c.Name, func(owner string, h models.Habit) error {
		if err := ctx.Store.UnarchiveHabit(owner, h.ID); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return fmt.Errorf("habit %q is not archived", c.Name)
			}
			return err
		}
		ctx.Printf("Unarchived habit: %s\n", c.Name)
		return nil
	})
}

type HabitDeleteCmd struct {
	Name string `arg:"" help:"Habit name to delete."`
}

func (c *HabitDeleteCmd) Run(ctx *cli.Context) error {
	return withHabit(ctx, c.Name, func(owner string, h models.Habit) error {
		if err := ctx.Store.DeleteHabit(owner, h.ID); err != nil {
			return err
		}
		ctx.Printf("Deleted habit: %s\n", c.Name)
		ctx.Println("(This is a soft delete. Use 'habitmaster habit restore' to undo)")
		return nil
	})
}

type HabitRestoreCmd struct {
	Name string `arg:"" help:"Habit name to restore."`
}

func (c *HabitRestoreCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}
	owner, err := ctx.OwnerID()
	if err != nil {
		return err
	}

	// GetHabitByName skips deleted habits
	habits, err := ctx.Store.GetAllHabits(owner, true, true)
	if err != nil {
		return err
	}
	var habit *models.Habit
	for i := range habits {
		if habits[i].Name == c.Name && habits[i].DeletedAt != nil {
			habit = &habits[i]
			break
		}
	}
	if habit == nil {
		return fmt.Errorf("deleted habit %q not found", c.Name)
	}

	if err := ctx.Store.RestoreHabit(owner, habit.ID); err != nil {
		return err
	}
	ctx.Printf("Restored habit: %s\n", c.Name)
	return nil
}

func withHabit(ctx *cli.Context, name string, fn func(owner string, h models.Habit) error) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}
	owner, err := ctx.OwnerID()
	if err != nil {
		return err
	}
	h, err := ctx.FindHabit(owner, name)
	if err != nil {
		return err
	}
	return fn(owner, h)
}
