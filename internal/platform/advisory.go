// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package platform

import (
	"log/slog"

	"wordcats/internal/metrics"
)

// Advise records the outcome of a best-effort platform call. Failures are
// logged and counted but never returned to the caller.
func Advise(call string, err error, attrs ...any) {
	if err == nil {
		return
	}
	metrics.AdvisoryFailures.WithLabelValues(call).Inc()
	slog.Warn("advisory platform call failed", append([]any{"call", call, "error", err}, attrs...)...)
}
