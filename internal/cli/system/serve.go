package system

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/zsy-dream/HabitMaster-pioneer/internal/api"
	"github.com/zsy-dream/HabitMaster-pioneer/internal/cli"
	"github.com/zsy-dream/HabitMaster-pioneer/internal/constants"
)

// serve is replaced in tests.
var serve = api.Serve

type ServeCmd struct {
	Addr string `help:"Listen address (default from config)."`
}

func (c *ServeCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}
	loc, err := ctx.Location()
	if err != nil {
		return err
	}

	addr := c.Addr
	if addr == "" && ctx.Config != nil {
		addr = ctx.Config.Server.Addr
	}
	if addr == "" {
		addr = constants.DefaultServerAddr
	}

	router := api.NewRouter(ctx.Stats(), api.Options{
		Location:      loc,
		DefaultWindow: ctx.HeatmapWindow(),
	})

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx.Printf("Serving statistics on %s (Ctrl+C to stop)\n", addr)
	return serve(sigCtx, addr, router.Handler())
}
