package main

import (
	"context"
	"fmt"
	"net"
	"strconv"

	"github.com/desertthunder/mvx/internal/server"
	"github.com/desertthunder/mvx/internal/shared"
	"github.com/urfave/cli/v3"
)

// DevServe runs the in-memory catalog API until the context is cancelled.
func (r *Runner) DevServe(ctx context.Context, cmd *cli.Command) error {
	cfg := r.config.Server

	if addr := cmd.String("addr"); addr != "" {
		host, port, err := net.SplitHostPort(addr)
		if err != nil {
			return fmt.Errorf("%w: --addr: %w", shared.ErrInvalidArgument, err)
		}
		n, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("%w: --addr port %q", shared.ErrInvalidArgument, port)
		}
		cfg.Host, cfg.Port = host, n
	}
	if ttl := cmd.Duration("token-ttl"); ttl > 0 {
		cfg.TokenTTL = ttl
	}

	srv, err := server.New(cfg, shared.WithLogger(r.logger, "component", "dev-server"))
	if err != nil {
		return err
	}

	ready := make(chan string, 1)
	go func() {
		addr, ok := <-ready
		if ok {
			r.writePlain("Catalog API on http://%s (login %s / %s)\n", addr, server.DemoEmail, server.DemoPassword)
		}
	}()

	err = srv.ListenAndServe(ctx, ready)
	close(ready)
	return err
}
