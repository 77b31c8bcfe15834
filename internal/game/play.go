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

// Feedback tells the player whether their score became the high score.
type Feedback string

const (
	NewHighScore Feedback = "NEWHS"
	NotHighScore Feedback = "NOTHS"
)

// PlayResult is returned by RecordPlay. For NOTHS, Holder and HolderScore
// describe the existing high score.
type PlayResult struct {
	Outcome     Outcome  `json:"outcome"`
	Tag         Feedback `json:"tag,omitempty"`
	Holder      string   `json:"holder,omitempty"`
	HolderScore int64    `json:"score"`
	PlayCount   int64    `json:"playCount"`
}

// RecordPlay counts a finished play of code and, if newScore beats the
// stored high score, moves the high score to the player. The code moves
// from the previous holder's ledger to the new holder's ledger.
func (s *Service) RecordPlay(ctx context.Context, code string, newScore int64, userID, username string) (*PlayResult, error) {
	if newScore < 0 {
		return nil, ErrInvalidScore
	}

	var result PlayResult
	err := s.coord.Run(ctx, "play", playAttempts, func(ctx context.Context, tx *txn.Tx) error {
		rec, err := tx.Store().Category(ctx, code)
		if err != nil {
			return err
		}
		if rec == nil {
			return ErrNotFound
		}

		rec.PlayCount++
		result = PlayResult{PlayCount: rec.PlayCount}

		var ledgers []*models.Ledger
		if newScore > rec.HighScore {
			prevHolder := rec.HighScoreUserID
			rec.HighScore = newScore
			rec.HighScoreUsername = username
			rec.HighScoreUserID = userID

			if prevHolder != "" && prevHolder != userID {
				prev, err := tx.Store().Ledger(ctx, prevHolder)
				if err != nil {
					return err
				}
				if prev != nil && prev.RemoveHighScore(code) {
					ledgers = append(ledgers, prev)
				}
			}

			mine, err := tx.Store().Ledger(ctx, userID)
			if err != nil {
				return err
			}
			if mine == nil {
				mine = models.NewLedger(userID, username)
				mine.AddHighScore(code)
				ledgers = append(ledgers, mine)
			} else if mine.AddHighScore(code) {
				ledgers = append(ledgers, mine)
			}

			result.Tag = NewHighScore
			result.Holder = username
			result.HolderScore = newScore
		} else {
			result.Tag = NotHighScore
			result.Holder = rec.HighScoreUsername
			result.HolderScore = rec.HighScore
		}

		tx.Stage(func(ctx context.Context, pipe redis.Pipeliner) {
			w := tx.Writer(pipe)
			w.PutCategory(ctx, rec)
			for _, l := range ledgers {
				w.PutLedger(ctx, l)
			}
			s.index.SetPlays(ctx, pipe, code, rec.PlayCount)
			if result.Tag == NewHighScore {
				s.index.SetScore(ctx, pipe, code, rec.HighScore)
			}
		})
		return nil
	})

	outcome, err := outcomeOf(err)
	if err != nil {
		return nil, fmt.Errorf("record play %s: %w", code, err)
	}
	if outcome != OutcomeOK {
		return &PlayResult{Outcome: outcome}, nil
	}
	result.Outcome = OutcomeOK

	if result.Tag == NewHighScore {
		s.announceHighScore(ctx, code, username, newScore)
	}
	return &result, nil
}

// announceHighScore comments on the category post. Best effort.
func (s *Service) announceHighScore(ctx context.Context, code, username string, score int64) {
	rec, err := s.store.Category(ctx, code)
	if err != nil || rec == nil || rec.PostID == "" {
		return
	}
	commentID, err := s.content.AddComment(ctx, rec.PostID, fmt.Sprintf("u/%s set a new high score of %d!", username, score))
	if err != nil {
		platform.Advise("add_comment", err, "code", code)
		return
	}
	if commentID == "" {
		return
	}
	platform.Advise("approve_comment", s.content.ApproveComment(ctx, commentID), "code", code)
	slog.Debug("high score announced", "code", code, "comment_id", commentID)
}
