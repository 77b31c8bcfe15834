// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package game implements the category lifecycle: creating a category,
// recording plays and high scores, and deleting categories. Each operation
// is a single optimistic transaction that keeps the category records,
// ledgers, post links and indexes consistent with each other.
package game

import (
	"context"
	"errors"
	"fmt"
	"time"

	"wordcats/internal/index"
	"wordcats/internal/models"
	"wordcats/internal/platform"
	"wordcats/internal/store"
	"wordcats/internal/txn"
)

// Retry ceilings per operation.
const (
	createAttempts = 5
	playAttempts   = 3
	deleteAttempts = 3
)

// DefaultMaxCategoriesPerUser caps how many live categories one user may own.
const DefaultMaxCategoriesPerUser = 50

var (
	// ErrNotFound is returned when a category code does not exist.
	ErrNotFound = errors.New("category not found")

	// ErrNotOwner is returned when a user acts on a category they did not create.
	ErrNotOwner = errors.New("category not owned by user")

	// ErrInvalidScore is returned for negative scores.
	ErrInvalidScore = errors.New("score must not be negative")

	errLimitReached = errors.New("category limit reached")
)

// Outcome is the terminal state of a mutating request.
type Outcome string

const (
	OutcomeOK       Outcome = "ok"
	OutcomeNotFound Outcome = "not_found"
	OutcomeNotOwner Outcome = "not_owner"
	OutcomeBusy     Outcome = "busy"
)

// outcomeOf maps a unit error to the outcome reported to the caller. Hard
// failures are returned unchanged.
func outcomeOf(err error) (Outcome, error) {
	switch {
	case err == nil:
		return OutcomeOK, nil
	case errors.Is(err, ErrNotFound):
		return OutcomeNotFound, nil
	case errors.Is(err, ErrNotOwner):
		return OutcomeNotOwner, nil
	case errors.Is(err, txn.ErrRetriesExhausted):
		return OutcomeBusy, nil
	}
	return "", err
}

// Options configures a Service.
type Options struct {
	// MaxCategoriesPerUser caps live categories per creator. Zero means
	// DefaultMaxCategoriesPerUser; negative disables the cap.
	MaxCategoriesPerUser int

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// Service runs category lifecycle operations.
type Service struct {
	coord    *txn.Coordinator
	store    *store.Store
	index    *index.Maintainer
	identity platform.Identity
	content  platform.Content
	maxOwned int
	now      func() time.Time
}

// New creates a lifecycle service.
func New(coord *txn.Coordinator, st *store.Store, idx *index.Maintainer, identity platform.Identity, content platform.Content, opts Options) *Service {
	s := &Service{
		coord:    coord,
		store:    st,
		index:    idx,
		identity: identity,
		content:  content,
		maxOwned: opts.MaxCategoriesPerUser,
		now:      opts.Now,
	}
	if s.maxOwned == 0 {
		s.maxOwned = DefaultMaxCategoriesPerUser
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// limitReached reports whether a creator already owns the maximum.
func (s *Service) limitReached(l *models.Ledger) bool {
	return s.maxOwned > 0 && l != nil && len(l.Created) >= s.maxOwned
}

// resolveUser looks up the acting account on the host.
func (s *Service) resolveUser(ctx context.Context, userID string) (*platform.User, error) {
	user, err := s.identity.User(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("resolve user %s: %w", userID, err)
	}
	if user == nil {
		return nil, fmt.Errorf("resolve user %s: %w", userID, platform.ErrUnknownUser)
	}
	return user, nil
}
