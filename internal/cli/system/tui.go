package system

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/zsy-dream/HabitMaster-pioneer/internal/cli"
	"github.com/zsy-dream/HabitMaster-pioneer/internal/constants"
	"github.com/zsy-dream/HabitMaster-pioneer/internal/stats"
	"github.com/zsy-dream/HabitMaster-pioneer/internal/tui"
)

// runDashboard is replaced in tests.
var runDashboard = func(m tea.Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

type TuiCmd struct {
	Period string `help:"Initial chart period." enum:"day,week,month,year" default:"week"`
}

func (c *TuiCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}
	owner, err := ctx.OwnerID()
	if err != nil {
		return err
	}
	loc, err := ctx.Location()
	if err != nil {
		return err
	}
	period, err := stats.ParsePeriod(c.Period)
	if err != nil {
		return err
	}

	model := tui.NewModel(ctx.Store, ctx.Stats(), tui.Options{
		OwnerID:    owner,
		Location:   loc,
		Now:        ctx.Now,
		Window:     ctx.HeatmapWindow(),
		Period:     period,
		ChartWidth: constants.DefaultChartWidth,
	})
	if err := runDashboard(model); err != nil {
		return fmt.Errorf("dashboard failed: %w", err)
	}
	return nil
}
