// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers implements the JSON API the game client talks to. The
// acting player is resolved by middleware.Identify before any handler runs.
package handlers

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"wordcats/internal/cache"
	"wordcats/internal/game"
	"wordcats/internal/janitor"
	"wordcats/internal/middleware"
)

// maxBodySize bounds request bodies. A maximal word list is well below it.
const maxBodySize = 16 << 10

// API groups the game endpoints.
type API struct {
	game      *game.Service
	janitor   *janitor.Janitor
	cache     *cache.ResponseCache
	hookToken string
}

// NewAPI creates the API handler group. responses may be nil to disable
// listing caching; an empty hookToken accepts unauthenticated webhooks.
func NewAPI(svc *game.Service, jan *janitor.Janitor, responses *cache.ResponseCache, hookToken string) *API {
	return &API{game: svc, janitor: jan, cache: responses, hookToken: hookToken}
}

// errorResponse is the body of every non-2xx reply that is not a typed
// game result.
type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// internalError logs err and answers with a generic 500.
func internalError(w http.ResponseWriter, r *http.Request, op string, err error) {
	slog.Error(op+" failed", "error", err, "request_id", middleware.RequestIDFrom(r.Context()))
	writeError(w, http.StatusInternalServerError, "internal server error")
}

// decodeJSON reads a bounded JSON body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
		case errors.Is(err, io.EOF):
			writeError(w, http.StatusBadRequest, "request body required")
		default:
			writeError(w, http.StatusBadRequest, "invalid JSON body")
		}
		return false
	}
	return true
}

// outcomeStatus maps a game outcome to its HTTP status.
func outcomeStatus(o game.Outcome) int {
	switch o {
	case game.OutcomeOK:
		return http.StatusOK
	case game.OutcomeNotFound:
		return http.StatusNotFound
	case game.OutcomeNotOwner:
		return http.StatusForbidden
	case game.OutcomeBusy:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// invalidate drops cached listings after a committed mutation.
func (a *API) invalidate(r *http.Request) {
	if a.cache != nil {
		a.cache.InvalidateAll(r.Context())
	}
}

// validHookToken compares the webhook token in constant time.
func (a *API) validHookToken(r *http.Request) bool {
	if a.hookToken == "" {
		return true
	}
	got := r.Header.Get("X-Hook-Token")
	return subtle.ConstantTimeCompare([]byte(got), []byte(a.hookToken)) == 1
}
