// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"wordcats/internal/game"
	"wordcats/internal/handlers"
	"wordcats/internal/index"
	"wordcats/internal/janitor"
	"wordcats/internal/metrics"
	"wordcats/internal/middleware"
	"wordcats/internal/platform"
	"wordcats/internal/store"
	"wordcats/internal/txn"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func newTestRouter(t *testing.T, limiter *middleware.RateLimiter) http.Handler {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	keys := store.NewKeys("")
	st := store.New(client, keys)
	idx := index.NewMaintainer(client, keys)
	coord := txn.New(client, st)
	mem := platform.NewMemory()
	mem.AddUser("t2_alice", "alice")

	svc := game.New(coord, st, idx, mem, mem, game.Options{})
	jan := janitor.New(coord, st, idx, mem, mem, janitor.Options{})

	reg := prometheus.NewRegistry()
	metrics.MustRegister(reg)

	return New(Deps{
		API:      handlers.NewAPI(svc, jan, nil, ""),
		Identity: mem,
		Limiter:  limiter,
		Metrics:  reg,
		Health:   pingFunc(func(ctx context.Context) error { return client.Ping(ctx).Err() }),
	})
}

func TestHealthHandler(t *testing.T) {
	w := httptest.NewRecorder()
	healthHandler(nil)(w, httptest.NewRequest("GET", "/health", nil))

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("content-type: got %q, want %q", ct, "application/json")
	}

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field: got %q, want %q", body["status"], "ok")
	}
}

func TestHealthHandlerStoreDown(t *testing.T) {
	w := httptest.NewRecorder()
	down := pingFunc(func(context.Context) error { return errors.New("connection refused") })
	healthHandler(down)(w, httptest.NewRequest("GET", "/health", nil))

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status: got %d, want 503", w.Code)
	}
}

func TestRoutes(t *testing.T) {
	h := newTestRouter(t, nil)

	tests := []struct {
		method string
		path   string
		user   string
		want   int
	}{
		{"GET", "/health", "", http.StatusOK},
		{"GET", "/metrics", "", http.StatusOK},
		{"GET", "/api/categories", "", http.StatusOK},
		{"GET", "/api/stats", "", http.StatusOK},
		{"GET", "/api/categories/0000001", "", http.StatusNotFound},
		{"POST", "/api/categories", "", http.StatusUnauthorized},
		{"DELETE", "/api/me", "", http.StatusUnauthorized},
		{"DELETE", "/api/me", "t2_alice", http.StatusOK},
		{"GET", "/api/categories", "t2_ghost", http.StatusUnauthorized},
		{"GET", "/nowhere", "", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			r := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.user != "" {
				r.Header.Set(middleware.UserIDHeader, tt.user)
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, r)
			if w.Code != tt.want {
				t.Errorf("got %d, want %d (body %s)", w.Code, tt.want, w.Body.String())
			}
		})
	}
}

func TestAPIResponsesCarryHeaders(t *testing.T) {
	h := newTestRouter(t, nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/api/stats", nil))

	if got := w.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q", got)
	}
	if got := w.Header().Get(middleware.RequestIDHeader); got == "" {
		t.Error("missing request id header")
	}
}

func TestMetricsExposeGameCollectors(t *testing.T) {
	h := newTestRouter(t, nil)

	create := httptest.NewRequest("POST", "/api/categories",
		strings.NewReader(`{"title":"Animals","words":"cat,dog,horse,cow,pig,goat,sheep,duck,hen,sea lion"}`))
	create.Header.Set(middleware.UserIDHeader, "t2_alice")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, create)
	if w.Code != http.StatusCreated {
		t.Fatalf("create: got %d (%s)", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
	if !strings.Contains(w.Body.String(), "wordcats_txn_commits_total") {
		t.Error("metrics output missing wordcats_txn_commits_total")
	}
}

func TestRateLimitedAPI(t *testing.T) {
	limiter := middleware.NewRateLimiter(1, 1)
	t.Cleanup(limiter.Stop)
	h := newTestRouter(t, limiter)

	codes := make([]int, 2)
	for i := range codes {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest("GET", "/api/stats", nil))
		codes[i] = w.Code
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusTooManyRequests {
		t.Errorf("codes = %v, want [200 429]", codes)
	}

	// Health stays outside the limiter.
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))
	if w.Code != http.StatusOK {
		t.Errorf("health: got %d, want 200", w.Code)
	}
}
