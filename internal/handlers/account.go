// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"

	"wordcats/internal/middleware"
)

// DeleteAccount handles DELETE /api/me. It removes every category the
// player created and their ledger.
func (a *API) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	player := middleware.PlayerFrom(r.Context())

	res, err := a.janitor.BulkDeleteUser(r.Context(), player.ID)
	if err != nil {
		internalError(w, r, "bulk delete user", err)
		return
	}
	if !res.DeletedAll {
		writeJSON(w, http.StatusServiceUnavailable, res)
		return
	}
	a.invalidate(r)
	writeJSON(w, http.StatusOK, res)
}

type postDeletedRequest struct {
	PostID string `json:"postId"`
}

// PostDeleted handles POST /api/hooks/post-deleted, sent by the host when a
// category post is removed outside the game.
func (a *API) PostDeleted(w http.ResponseWriter, r *http.Request) {
	if !a.validHookToken(r) {
		writeError(w, http.StatusUnauthorized, "invalid hook token")
		return
	}

	var req postDeletedRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.PostID == "" {
		writeError(w, http.StatusBadRequest, "postId is required")
		return
	}

	res, err := a.game.HandlePostDeleted(r.Context(), req.PostID)
	if err != nil {
		internalError(w, r, "post deleted hook", err)
		return
	}
	if res.Success {
		a.invalidate(r)
	}
	writeJSON(w, outcomeStatus(res.Outcome), res)
}
