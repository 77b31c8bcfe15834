// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"

	"github.com/redis/go-redis/v9"

	"wordcats/internal/codec"
	"wordcats/internal/models"
)

// Writer queues record mutations on a transaction pipeline. Nothing is
// sent until the owning transaction executes.
type Writer struct {
	pipe redis.Pipeliner
	keys Keys
}

// NewWriter returns a writer queueing on pipe.
func NewWriter(pipe redis.Pipeliner, keys Keys) *Writer {
	return &Writer{pipe: pipe, keys: keys}
}

// SetSequence stores the last issued category code.
func (w *Writer) SetSequence(ctx context.Context, code string) {
	w.pipe.Set(ctx, w.keys.Sequence(), code, 0)
}

// PutCategory stores a category record under its code.
func (w *Writer) PutCategory(ctx context.Context, c *models.Category) {
	w.pipe.HSet(ctx, w.keys.Categories(), c.Code, codec.EncodeCategory(c))
}

// PutWords stores the word list for code.
func (w *Writer) PutWords(ctx context.Context, code string, words []string) {
	w.pipe.HSet(ctx, w.keys.Words(), code, codec.EncodeWords(words))
}

// PutLedger stores a user ledger.
func (w *Writer) PutLedger(ctx context.Context, l *models.Ledger) {
	w.pipe.HSet(ctx, w.keys.Users(), l.UserID, codec.EncodeLedger(l))
}

// PutPostLink stores the post -> category lookup.
func (w *Writer) PutPostLink(ctx context.Context, link *models.PostLink) {
	w.pipe.HSet(ctx, w.keys.Posts(), link.PostID, codec.EncodePostLink(link))
}

// DeleteCategory removes the category record, its words and its post link.
// Index entries are removed separately by the index maintainer.
func (w *Writer) DeleteCategory(ctx context.Context, c *models.Category) {
	w.pipe.HDel(ctx, w.keys.Categories(), c.Code)
	w.pipe.HDel(ctx, w.keys.Words(), c.Code)
	if c.PostID != "" {
		w.pipe.HDel(ctx, w.keys.Posts(), c.PostID)
	}
}

// DeleteLedger removes a user's ledger entry entirely.
func (w *Writer) DeleteLedger(ctx context.Context, userID string) {
	w.pipe.HDel(ctx, w.keys.Users(), userID)
}
