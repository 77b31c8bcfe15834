// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package janitor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/adhocore/gronx"
)

// DefaultCron runs the janitor daily at 03:00 UTC.
const DefaultCron = "0 3 * * *"

// retryDelay is how long the scheduler waits after failing to compute the
// next tick.
const retryDelay = 30 * time.Second

// Schedule runs a pass on every tick of the cron expression until ctx is
// cancelled. Passes never overlap: a tick that falls during a running pass
// is skipped.
func (j *Janitor) Schedule(ctx context.Context, cronExpr string) error {
	if cronExpr == "" {
		cronExpr = DefaultCron
	}
	if !gronx.IsValid(cronExpr) {
		return fmt.Errorf("invalid janitor cron expression: %q", cronExpr)
	}
	slog.Info("janitor scheduled", "cron", cronExpr)

	for {
		next, err := gronx.NextTickAfter(cronExpr, time.Now().UTC(), false)
		if err != nil {
			slog.Error("janitor next tick failed", "cron", cronExpr, "error", err)
			if !sleep(ctx, retryDelay) {
				return nil
			}
			continue
		}

		if !sleep(ctx, time.Until(next)) {
			slog.Info("janitor scheduler stopping")
			return nil
		}
		if _, err := j.RunPass(ctx); err != nil {
			slog.Error("janitor pass failed", "error", err)
		}
	}
}

// sleep waits for d or until ctx is done. It reports whether d elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
