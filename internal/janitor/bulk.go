// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package janitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"wordcats/internal/models"
	"wordcats/internal/platform"
	"wordcats/internal/txn"
)

// BulkDeleteResult is returned by BulkDeleteUser.
type BulkDeleteResult struct {
	DeletedAll bool     `json:"deletedAll"`
	Deleted    []string `json:"deleted,omitempty"`
}

// BulkDeleteUser removes every category userID created, strips those codes
// from the ledgers of their high scorers, anonymizes the high scores userID
// holds on other players' categories and deletes the user's ledger, all in
// one transaction. The hosted posts are removed afterwards, best effort.
//
// DeletedAll is false when the transaction gave up on conflicts; nothing
// was written in that case.
func (j *Janitor) BulkDeleteUser(ctx context.Context, userID string) (*BulkDeleteResult, error) {
	var (
		deleted []string
		posts   []string
	)
	err := j.coord.Run(ctx, "bulk_delete", bulkAttempts, func(ctx context.Context, tx *txn.Tx) error {
		deleted, posts = nil, nil

		ledger, err := tx.Store().Ledger(ctx, userID)
		if err != nil {
			return err
		}
		if ledger == nil {
			return nil
		}

		created, err := tx.Store().Categories(ctx, ledger.Created)
		if err != nil {
			return err
		}

		// Ledgers of other players who hold the high score on a deleted code.
		holders := make(map[string]*models.Ledger)
		for _, rec := range created {
			holder := rec.HighScoreUserID
			if holder == "" || holder == userID || holder == models.DeletedUserID {
				continue
			}
			hl, ok := holders[holder]
			if !ok {
				hl, err = tx.Store().Ledger(ctx, holder)
				if err != nil {
					return err
				}
				if hl == nil {
					continue
				}
				holders[holder] = hl
			}
			hl.RemoveHighScore(rec.Code)
		}

		// High scores held on categories created by someone else survive
		// with the placeholder holder.
		var held []*models.Category
		others := make([]string, 0, len(ledger.HighScores))
		for _, code := range ledger.HighScores {
			if !ledger.HasCreated(code) {
				others = append(others, code)
			}
		}
		recs, err := tx.Store().Categories(ctx, others)
		if err != nil {
			return err
		}
		for _, rec := range recs {
			if rec.HighScoreUserID == userID {
				rec.AnonymizeHolder()
				held = append(held, rec)
			}
		}

		for _, rec := range created {
			deleted = append(deleted, rec.Code)
			if rec.PostID != "" {
				posts = append(posts, rec.PostID)
			}
		}

		tx.Stage(func(ctx context.Context, pipe redis.Pipeliner) {
			w := tx.Writer(pipe)
			for _, rec := range created {
				w.DeleteCategory(ctx, rec)
			}
			if len(deleted) > 0 {
				j.index.Remove(ctx, pipe, deleted...)
			}
			for _, hl := range holders {
				w.PutLedger(ctx, hl)
			}
			for _, rec := range held {
				w.PutCategory(ctx, rec)
			}
			w.DeleteLedger(ctx, userID)
		})
		return nil
	})

	switch {
	case err == nil:
	case errors.Is(err, txn.ErrRetriesExhausted):
		return &BulkDeleteResult{DeletedAll: false}, nil
	default:
		return nil, fmt.Errorf("bulk delete %s: %w", userID, err)
	}

	for _, postID := range posts {
		platform.Advise("remove_post", j.content.RemovePost(ctx, postID), "post_id", postID, "user_id", userID)
	}
	slog.Info("user data deleted", "user_id", userID, "categories", len(deleted))
	return &BulkDeleteResult{DeletedAll: true, Deleted: deleted}, nil
}
