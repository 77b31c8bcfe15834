// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package game

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"wordcats/internal/models"
	"wordcats/internal/platform"
	"wordcats/internal/txn"
)

// DeleteResult is returned by Delete and HandlePostDeleted.
type DeleteResult struct {
	Outcome Outcome `json:"outcome"`
	Success bool    `json:"success"`
	Code    string  `json:"categoryCode"`
}

// Delete removes a category owned by requesterID from every index, the
// words and post link hashes, the record hash and the ledgers referencing
// it. The hosted post is removed afterwards on a best-effort basis.
func (s *Service) Delete(ctx context.Context, code, requesterID string) (*DeleteResult, error) {
	rec, result, err := s.deleteCategory(ctx, code, requesterID, true)
	if err != nil || !result.Success {
		return result, err
	}
	if rec.PostID != "" {
		platform.Advise("remove_post", s.content.RemovePost(ctx, rec.PostID), "post_id", rec.PostID)
	}
	return result, nil
}

// HandlePostDeleted cleans up the category presented by a post that was
// removed on the host. The post itself is already gone.
func (s *Service) HandlePostDeleted(ctx context.Context, postID string) (*DeleteResult, error) {
	link, err := s.store.PostLink(ctx, postID)
	if err != nil {
		return nil, err
	}
	if link == nil {
		return &DeleteResult{Outcome: OutcomeNotFound}, nil
	}
	_, result, err := s.deleteCategory(ctx, link.Code, link.CreatorUserID, false)
	return result, err
}

// deleteCategory runs the delete transaction. With requireOwner, the code
// must be in the creator's created list.
func (s *Service) deleteCategory(ctx context.Context, code, creatorID string, requireOwner bool) (*models.Category, *DeleteResult, error) {
	var deleted *models.Category
	err := s.coord.Run(ctx, "delete", deleteAttempts, func(ctx context.Context, tx *txn.Tx) error {
		rec, err := tx.Store().Category(ctx, code)
		if err != nil {
			return err
		}
		if rec == nil {
			return ErrNotFound
		}

		owner, err := tx.Store().Ledger(ctx, creatorID)
		if err != nil {
			return err
		}
		if requireOwner && (owner == nil || !owner.HasCreated(code)) {
			return ErrNotOwner
		}

		var ledgers []*models.Ledger
		if owner != nil {
			changed := owner.RemoveCreated(code)
			if owner.RemoveHighScore(code) || changed {
				ledgers = append(ledgers, owner)
			}
		}
		if holder := rec.HighScoreUserID; holder != "" && holder != creatorID {
			hl, err := tx.Store().Ledger(ctx, holder)
			if err != nil {
				return err
			}
			if hl != nil && hl.RemoveHighScore(code) {
				ledgers = append(ledgers, hl)
			}
		}

		tx.Stage(func(ctx context.Context, pipe redis.Pipeliner) {
			w := tx.Writer(pipe)
			for _, l := range ledgers {
				w.PutLedger(ctx, l)
			}
			w.DeleteCategory(ctx, rec)
			s.index.Remove(ctx, pipe, code)
		})
		deleted = rec
		return nil
	})

	outcome, err := outcomeOf(err)
	if err != nil {
		return nil, nil, fmt.Errorf("delete category %s: %w", code, err)
	}
	if outcome != OutcomeOK {
		return nil, &DeleteResult{Outcome: outcome, Code: code}, nil
	}
	slog.Info("category deleted", "code", code, "user_id", creatorID)
	return deleted, &DeleteResult{Outcome: OutcomeOK, Success: true, Code: code}, nil
}
