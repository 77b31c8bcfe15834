// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"wordcats/internal/cache"
	"wordcats/internal/handlers"
	"wordcats/internal/metrics"
	"wordcats/internal/middleware"
	"wordcats/internal/router"
)

var noJanitor bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API and the scheduled janitor",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

func init() {
	serveCmd.Flags().BoolVar(&noJanitor, "no-janitor", false, "do not schedule janitor passes in this process")
}

func serve(parent context.Context) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics.MustRegister(reg)

	limiter := middleware.NewRateLimiter(a.cfg.RateLimitRPS, a.cfg.RateLimitBurst)
	defer limiter.Stop()

	responses := cache.NewResponseCache(a.valkey, a.cfg.ValkeyPrefix, cache.DefaultResponseTTL)
	api := handlers.NewAPI(a.game, a.janitor, responses, a.cfg.HookToken)
	r := router.New(router.Deps{
		API:      api,
		Identity: a.identity,
		Limiter:  limiter,
		Metrics:  reg,
		Health:   pinger{a},
	})

	srv := &http.Server{
		Addr:         a.cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	if !noJanitor {
		go func() {
			if err := a.janitor.Schedule(ctx, a.cfg.JanitorCron); err != nil {
				slog.Error("janitor scheduler failed", "error", err)
			}
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", a.cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	slog.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	slog.Info("server stopped gracefully")
	return nil
}

// pinger checks both backends for the health endpoint.
type pinger struct{ a *app }

func (p pinger) Ping(ctx context.Context) error {
	if err := p.a.valkey.Ping(ctx).Err(); err != nil {
		return err
	}
	if p.a.db != nil {
		return p.a.db.PingContext(ctx)
	}
	return nil
}
