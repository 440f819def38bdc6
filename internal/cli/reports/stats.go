package reports

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/zsy-dream/HabitMaster-pioneer/internal/cli"
	"github.com/zsy-dream/HabitMaster-pioneer/internal/constants"
	"github.com/zsy-dream/HabitMaster-pioneer/internal/render"
	"github.com/zsy-dream/HabitMaster-pioneer/internal/stats"
)

type StatsCmd struct {
	Summary StatsSummaryCmd `cmd:"" help:"Show every statistic." default:"1"`
	Streak  StatsStreakCmd  `cmd:"" help:"Show the current and longest daily streak."`
	Heatmap StatsHeatmapCmd `cmd:"" help:"Show the completion heatmap."`
	Month   StatsMonthCmd   `cmd:"" help:"Show this month's completion rate."`
	Chart   StatsChartCmd   `cmd:"" help:"Show focus minutes per bucket."`
}

func queryContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), constants.StatsQueryTimeout)
}

func prepare(ctx *cli.Context) (stats.Scope, error) {
	if err := ctx.Store.Load(); err != nil {
		return stats.Scope{}, err
	}
	return ctx.Scope()
}

type StatsStreakCmd struct{}

func (c *StatsStreakCmd) Run(ctx *cli.Context) error {
	sc, err := prepare(ctx)
	if err != nil {
		return err
	}
	qctx, cancel := queryContext()
	defer cancel()

	streak, err := ctx.Stats().Streak(qctx, sc)
	if err != nil {
		return err
	}
	ctx.Println(render.Streak(streak))
	return nil
}

type StatsHeatmapCmd struct {
	Window int `help:"Days before today to include (default from config)."`
}

func (c *StatsHeatmapCmd) Run(ctx *cli.Context) error {
	sc, err := prepare(ctx)
	if err != nil {
		return err
	}
	window := c.Window
	if window == 0 {
		window = ctx.HeatmapWindow()
	}
	qctx, cancel := queryContext()
	defer cancel()

	cells, err := ctx.Stats().Heatmap(qctx, sc, window)
	if err != nil {
		return err
	}
	ctx.Println(render.Title(render.HeatmapTitle(cells)))
	ctx.Println(render.Heatmap(cells))
	return nil
}

type StatsMonthCmd struct{}

func (c *StatsMonthCmd) Run(ctx *cli.Context) error {
	sc, err := prepare(ctx)
	if err != nil {
		return err
	}
	qctx, cancel := queryContext()
	defer cancel()

	rate, err := ctx.Stats().Monthly(qctx, sc)
	if err != nil {
		return err
	}
	ctx.Println(render.Monthly(rate))
	return nil
}

type StatsChartCmd struct {
	Period string `help:"Bucket period: day, week, month or year." default:"week" enum:"day,week,month,year"`
	Width  int    `help:"Bar width in columns." default:"40"`
}

func (c *StatsChartCmd) Run(ctx *cli.Context) error {
	period, err := stats.ParsePeriod(c.Period)
	if err != nil {
		return err
	}
	sc, err := prepare(ctx)
	if err != nil {
		return err
	}
	qctx, cancel := queryContext()
	defer cancel()

	points, err := ctx.Stats().Chart(qctx, sc, period)
	if err != nil {
		return err
	}
	if points, err = stats.WithDefaultTemplate(points, period); err != nil {
		return err
	}
	ctx.Println(render.Title(fmt.Sprintf("Focus minutes (%s)", period)))
	ctx.Println(render.Chart(points, chartWidth(c.Width)))
	return nil
}

type StatsSummaryCmd struct {
	Window int    `help:"Heatmap days before today (default from config)."`
	Period string `help:"Chart period: day, week, month or year." default:"week" enum:"day,week,month,year"`
	JSON   bool   `help:"Print JSON instead of a rendered report." name:"json"`
}

func (c *StatsSummaryCmd) Run(ctx *cli.Context) error {
	period, err := stats.ParsePeriod(c.Period)
	if err != nil {
		return err
	}
	sc, err := prepare(ctx)
	if err != nil {
		return err
	}
	window := c.Window
	if window == 0 {
		window = ctx.HeatmapWindow()
	}
	qctx, cancel := queryContext()
	defer cancel()

	sum, err := ctx.Stats().Summary(qctx, sc, window, period)
	if err != nil {
		return err
	}

	if c.JSON {
		enc := json.NewEncoder(ctx.Stdout())
		enc.SetIndent("", "  ")
		return enc.Encode(sum)
	}
	ctx.Println(render.Summary(sum, constants.DefaultChartWidth))
	return nil
}

func chartWidth(w int) int {
	if w <= 0 {
		return constants.DefaultChartWidth
	}
	return w
}
