// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"wordcats/internal/cache"
	"wordcats/internal/game"
	"wordcats/internal/index"
	"wordcats/internal/middleware"
	"wordcats/internal/models"
	"wordcats/internal/sequence"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type createRequest struct {
	Title string `json:"title"`
	Words string `json:"words"`
}

// CreateCategory handles POST /api/categories.
func (a *API) CreateCategory(w http.ResponseWriter, r *http.Request) {
	player := middleware.PlayerFrom(r.Context())

	var req createRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := a.game.Create(r.Context(), player.ID, req.Title, req.Words)
	if err != nil {
		internalError(w, r, "create category", err)
		return
	}

	status := http.StatusOK
	switch res.Status {
	case game.CreateFormed:
		status = http.StatusCreated
		a.invalidate(r)
	case game.CreateInvalid:
		status = http.StatusUnprocessableEntity
	case game.CreateLimit:
		status = http.StatusConflict
	case game.CreateTryAgain:
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, res)
}

type listResponse struct {
	Sort   index.Name         `json:"sort"`
	Offset int64              `json:"offset"`
	Limit  int64              `json:"limit"`
	Items  []*models.Category `json:"items"`
}

// ListCategories handles GET /api/categories?sort=&offset=&limit=.
func (a *API) ListCategories(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	by, err := index.Parse(q.Get("sort"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	offset, ok := queryInt(q.Get("offset"), 0)
	if !ok || offset < 0 {
		writeError(w, http.StatusBadRequest, "offset must be a non-negative integer")
		return
	}
	limit, ok := queryInt(q.Get("limit"), defaultPageSize)
	if !ok || limit < 1 || limit > maxPageSize {
		writeError(w, http.StatusBadRequest, "limit must be between 1 and 100")
		return
	}

	key := cache.ListKey(string(by), offset, limit)
	if a.cache != nil {
		if body, ok := a.cache.Get(r.Context(), key); ok {
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			w.Write(body)
			return
		}
	}

	items, err := a.game.List(r.Context(), by, offset, limit)
	if err != nil {
		internalError(w, r, "list categories", err)
		return
	}
	if items == nil {
		items = []*models.Category{}
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(listResponse{Sort: by, Offset: offset, Limit: limit, Items: items}); err != nil {
		internalError(w, r, "encode listing", err)
		return
	}
	if a.cache != nil {
		a.cache.Set(r.Context(), key, buf.Bytes())
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Write(buf.Bytes())
}

// GetCategory handles GET /api/categories/{code}.
func (a *API) GetCategory(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if sequence.Validate(code) != nil {
		writeError(w, http.StatusNotFound, "category not found")
		return
	}

	view, err := a.game.Get(r.Context(), code)
	if err != nil {
		internalError(w, r, "get category", err)
		return
	}
	if view == nil {
		writeError(w, http.StatusNotFound, "category not found")
		return
	}
	writeJSON(w, http.StatusOK, view)
}

type playRequest struct {
	Score *int64 `json:"score"`
}

// RecordPlay handles POST /api/categories/{code}/plays.
func (a *API) RecordPlay(w http.ResponseWriter, r *http.Request) {
	player := middleware.PlayerFrom(r.Context())
	code := chi.URLParam(r, "code")

	var req playRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Score == nil {
		writeError(w, http.StatusBadRequest, "score is required")
		return
	}

	res, err := a.game.RecordPlay(r.Context(), code, *req.Score, player.ID, player.Username)
	if errors.Is(err, game.ErrInvalidScore) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		internalError(w, r, "record play", err)
		return
	}
	if res.Outcome == game.OutcomeOK {
		a.invalidate(r)
	}
	writeJSON(w, outcomeStatus(res.Outcome), res)
}

// DeleteCategory handles DELETE /api/categories/{code}.
func (a *API) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	player := middleware.PlayerFrom(r.Context())

	res, err := a.game.Delete(r.Context(), chi.URLParam(r, "code"), player.ID)
	if err != nil {
		internalError(w, r, "delete category", err)
		return
	}
	if res.Success {
		a.invalidate(r)
	}
	writeJSON(w, outcomeStatus(res.Outcome), res)
}

// Stats handles GET /api/stats.
func (a *API) Stats(w http.ResponseWriter, r *http.Request) {
	counts, err := a.game.Stats(r.Context())
	if err != nil {
		internalError(w, r, "stats", err)
		return
	}
	writeJSON(w, http.StatusOK, counts)
}

// queryInt parses an optional integer query parameter.
func queryInt(s string, fallback int64) (int64, bool) {
	if s == "" {
		return fallback, true
	}
	n, err := strconv.ParseInt(s, 10, 64)
	return n, err == nil
}
