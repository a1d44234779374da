package cli

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/kurobon/gitgraph/internal/server"
)

const shutdownTimeout = 15 * time.Second

// RunServe serves the session over HTTP until the command's context is
// cancelled, then shuts down gracefully.
func RunServe(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd, "")
	if err != nil {
		return err
	}
	addr, err := OptionalStringFlag(cmd, "addr")
	if err != nil {
		return err
	}
	if addr == "" {
		addr = a.cfg.Addr
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	handler := server.NewServer(a.session, a.logger, a.cfg.ColorPalette())
	handler.Console = a.console
	srv := &http.Server{
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	errc := make(chan error, 2)
	go func() {
		a.logger.Info("server starting", "addr", ln.Addr().String(), "root", a.session.Source().Root())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	if watchRepo, _ := cmd.Flags().GetBool("watch"); watchRepo {
		go func() {
			if err := a.follow(ctx, nil); err != nil {
				errc <- err
			}
		}()
	}

	select {
	case err = <-errc:
		_ = srv.Close()
		return err
	case <-ctx.Done():
	}

	a.logger.Info("shutting down")
	shutCtx, shutCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutCancel()
	return srv.Shutdown(shutCtx)
}
