// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"wordcats/internal/codec"
	"wordcats/internal/models"
	"wordcats/internal/platform"
	"wordcats/internal/sequence"
	"wordcats/internal/txn"
)

// CreateStatus is the response tag for a create request.
type CreateStatus string

const (
	CreateFormed   CreateStatus = "formedCorrectly"
	CreateLimit    CreateStatus = "exceededLimit"
	CreateInvalid  CreateStatus = "validationFailed"
	CreateTryAgain CreateStatus = "tryAgain"
)

// CreateResult is returned by Create.
type CreateResult struct {
	Status CreateStatus `json:"status"`
	Code   string       `json:"code,omitempty"`
	PostID string       `json:"postId,omitempty"`
	Reason string       `json:"reason,omitempty"`
}

// Create validates and stores a new category for userID. The hosted post is
// created first because its id is part of the record; if that fails nothing
// is written. If the transaction does not commit, the post is removed.
func (s *Service) Create(ctx context.Context, userID, title, wordsCSV string) (*CreateResult, error) {
	title, err := codec.ValidateTitle(title)
	if err != nil {
		return invalid(err)
	}
	words, err := codec.NormalizeWords(wordsCSV)
	if err != nil {
		return invalid(err)
	}

	user, err := s.resolveUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Cheap pre-check so an over-limit user does not get a post created.
	ledger, err := s.store.Ledger(ctx, userID)
	if err != nil {
		return nil, err
	}
	if s.limitReached(ledger) {
		return &CreateResult{Status: CreateLimit, Reason: fmt.Sprintf("You can own at most %d categories.", s.maxOwned)}, nil
	}

	postID, err := s.content.CreatePost(ctx, title)
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}

	var code string
	err = s.coord.Run(ctx, "create", createAttempts, func(ctx context.Context, tx *txn.Tx) error {
		ledger, err := tx.Store().Ledger(ctx, userID)
		if err != nil {
			return err
		}
		if s.limitReached(ledger) {
			return errLimitReached
		}
		if ledger == nil {
			ledger = models.NewLedger(userID, user.Username)
		}
		ledger.Username = user.Username

		next, err := sequence.Next(tx.Sequence())
		if err != nil {
			return err
		}
		rec := &models.Category{
			Code:             next,
			CreatorUsername:  user.Username,
			Title:            title,
			PostID:           postID,
			CreatedAtSeconds: s.now().Unix(),
		}
		ledger.AddCreated(next)

		tx.Advance(next)
		tx.Stage(func(ctx context.Context, pipe redis.Pipeliner) {
			w := tx.Writer(pipe)
			w.PutCategory(ctx, rec)
			w.PutWords(ctx, next, words)
			w.PutLedger(ctx, ledger)
			w.PutPostLink(ctx, &models.PostLink{PostID: postID, Code: next, CreatorUserID: userID})
			s.index.Add(ctx, pipe, rec)
		})
		code = next
		return nil
	})

	switch {
	case err == nil:
	case errors.Is(err, errLimitReached):
		s.removeOrphanPost(ctx, postID)
		return &CreateResult{Status: CreateLimit, Reason: fmt.Sprintf("You can own at most %d categories.", s.maxOwned)}, nil
	case errors.Is(err, txn.ErrRetriesExhausted):
		s.removeOrphanPost(ctx, postID)
		return &CreateResult{Status: CreateTryAgain, Reason: "The game is busy, please try again."}, nil
	default:
		s.removeOrphanPost(ctx, postID)
		return nil, fmt.Errorf("create category: %w", err)
	}

	platform.Advise("approve_post", s.content.ApprovePost(ctx, postID), "post_id", postID)
	slog.Info("category created", "code", code, "user_id", userID, "post_id", postID)
	return &CreateResult{Status: CreateFormed, Code: code, PostID: postID}, nil
}

func (s *Service) removeOrphanPost(ctx context.Context, postID string) {
	platform.Advise("remove_post", s.content.RemovePost(ctx, postID), "post_id", postID)
}

func invalid(err error) (*CreateResult, error) {
	var verr *codec.ValidationError
	if errors.As(err, &verr) {
		return &CreateResult{Status: CreateInvalid, Reason: verr.Reason}, nil
	}
	return nil, err
}
