package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/spotdesk/spotdesk-go/server"
	"github.com/spotdesk/spotdesk-go/session/storage"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the local gateway over the session and booking wizard",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGateway(cmd.Context())
		},
	}
}

func runGateway(ctx context.Context) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	displayAppname(a.cfg.GetAppName())

	gateway, err := server.New(a.cfg, a.session, a.client)
	if err != nil {
		return fmt.Errorf("server.New: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// The initial session check starts before the gateway accepts traffic;
	// the guard blocks on Ready() so nothing races it.
	go a.session.Initialize(ctx)

	// Resync when another process rewrites the credentials file.
	watcher, err := storage.NewWatcher(a.store.Path(), func() {
		wctx, wcancel := context.WithTimeout(context.Background(), a.cfg.GetHTTPTimeout())
		defer wcancel()
		a.session.HandleExternalTokenChange(wctx)
	})
	if err != nil {
		log.Warn().Err(err).Msg("credentials watcher unavailable")
	} else {
		if err := watcher.Start(ctx); err != nil {
			log.Warn().Err(err).Msg("credentials watcher failed to start")
		}
		defer watcher.Close()
	}

	httpServer := &http.Server{Addr: a.cfg.GetPort(), Handler: gateway}
	go listenAndServe(httpServer)
	waitForStopSignal(ctx)
	return shutdown(httpServer)
}

func listenAndServe(httpServer *http.Server) {
	log.Info().Str("addr", httpServer.Addr).Msg("gateway listening")
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error().Err(err).Msg("gateway stopped")
	}
}

func waitForStopSignal(ctx context.Context) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	select {
	case <-stop:
	case <-ctx.Done():
	}
}

func shutdown(httpServer *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
