package system

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/julianstephens/dragonlog/internal/cli"
	"github.com/julianstephens/dragonlog/internal/server"
)

type ServeCmd struct {
	Addr string `help:"Listen address. Defaults to DRAGONLOG_LISTEN_ADDR."`
}

func (c *ServeCmd) Run(ctx *cli.Context) error {
	srv, err := c.build(ctx)
	if err != nil {
		return err
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer holdLock(ctx, "serve")()

	return srv.Run(runCtx)
}

func (c *ServeCmd) build(ctx *cli.Context) (*server.Server, error) {
	addr := c.Addr
	if addr == "" {
		addr = ctx.Config.ListenAddr
	}
	opts, err := ctx.Options()
	if err != nil {
		return nil, err
	}

	return server.New(ctx.Store, server.Config{
		Addr:            addr,
		JWTSecret:       ctx.Config.JWTSecret,
		TokenTTL:        ctx.Config.JWTTTL,
		DefaultGoalDays: ctx.Config.DefaultGoalDays,
		SessionOptions:  opts,
	})
}
