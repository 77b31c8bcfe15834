// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package store provides the record store for categories, words, user
// ledgers and post links, each kept as a hash entry in Valkey. Reads may run
// on the plain client or inside a watched transaction; writes are only ever
// queued on a transaction pipeline handed out by the txn package.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"wordcats/internal/codec"
	"wordcats/internal/models"
	"wordcats/internal/sequence"
)

// Reader is the subset of go-redis commands the store reads with. Both
// *redis.Client and *redis.Tx satisfy it.
type Reader interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	HGet(ctx context.Context, key, field string) *redis.StringCmd
	HMGet(ctx context.Context, key string, fields ...string) *redis.SliceCmd
	HKeys(ctx context.Context, key string) *redis.StringSliceCmd
	HScan(ctx context.Context, key string, cursor uint64, match string, count int64) *redis.ScanCmd
}

// Store reads records from Valkey.
type Store struct {
	rd   Reader
	keys Keys
}

// New returns a store reading through rd.
func New(rd Reader, keys Keys) *Store {
	return &Store{rd: rd, keys: keys}
}

// With returns a copy of the store reading through rd, typically the
// connection of a watched transaction.
func (s *Store) With(rd Reader) *Store {
	return &Store{rd: rd, keys: s.keys}
}

// Keys returns the key set used by the store.
func (s *Store) Keys() Keys {
	return s.keys
}

// Sequence returns the last issued category code, or sequence.Initial when
// no category has been created yet.
func (s *Store) Sequence(ctx context.Context) (string, error) {
	v, err := s.rd.Get(ctx, s.keys.Sequence()).Result()
	if errors.Is(err, redis.Nil) {
		return sequence.Initial, nil
	}
	if err != nil {
		return "", fmt.Errorf("get sequence: %w", err)
	}
	return v, nil
}

// Category returns the record for code. Returns nil if not found.
func (s *Store) Category(ctx context.Context, code string) (*models.Category, error) {
	raw, err := s.rd.HGet(ctx, s.keys.Categories(), code).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get category %s: %w", code, err)
	}
	return codec.DecodeCategory(code, raw)
}

// Categories returns the records for codes in the given order, skipping
// codes that no longer exist. Malformed records are logged and skipped so
// one bad row cannot fail a whole listing.
func (s *Store) Categories(ctx context.Context, codes []string) ([]*models.Category, error) {
	if len(codes) == 0 {
		return nil, nil
	}
	vals, err := s.rd.HMGet(ctx, s.keys.Categories(), codes...).Result()
	if err != nil {
		return nil, fmt.Errorf("get categories: %w", err)
	}
	items := make([]*models.Category, 0, len(codes))
	for i, v := range vals {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		c, err := codec.DecodeCategory(codes[i], raw)
		if err != nil {
			slog.Warn("skipping malformed category", "code", codes[i], "error", err)
			continue
		}
		items = append(items, c)
	}
	return items, nil
}

// CategoryCodes returns every stored category code.
func (s *Store) CategoryCodes(ctx context.Context) ([]string, error) {
	codes, err := s.rd.HKeys(ctx, s.keys.Categories()).Result()
	if err != nil {
		return nil, fmt.Errorf("list category codes: %w", err)
	}
	return codes, nil
}

// Words returns the word list for code. Returns nil if not found.
func (s *Store) Words(ctx context.Context, code string) ([]string, error) {
	raw, err := s.rd.HGet(ctx, s.keys.Words(), code).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get words %s: %w", code, err)
	}
	return codec.DecodeWords(raw), nil
}

// Ledger returns the ledger for userID. Returns nil if not found.
func (s *Store) Ledger(ctx context.Context, userID string) (*models.Ledger, error) {
	raw, err := s.rd.HGet(ctx, s.keys.Users(), userID).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get ledger %s: %w", userID, err)
	}
	return codec.DecodeLedger(userID, raw)
}

// Ledgers returns the ledgers for the given users keyed by user id. Users
// without a ledger are absent from the map.
func (s *Store) Ledgers(ctx context.Context, userIDs []string) (map[string]*models.Ledger, error) {
	out := make(map[string]*models.Ledger, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}
	vals, err := s.rd.HMGet(ctx, s.keys.Users(), userIDs...).Result()
	if err != nil {
		return nil, fmt.Errorf("get ledgers: %w", err)
	}
	for i, v := range vals {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		l, err := codec.DecodeLedger(userIDs[i], raw)
		if err != nil {
			return nil, err
		}
		out[userIDs[i]] = l
	}
	return out, nil
}

// ScanLedgers returns one page of ledgers starting at cursor, and the cursor
// for the next page. A returned cursor of 0 means the scan is complete.
// Malformed ledgers are logged and skipped.
func (s *Store) ScanLedgers(ctx context.Context, cursor uint64, count int64) ([]*models.Ledger, uint64, error) {
	kv, next, err := s.rd.HScan(ctx, s.keys.Users(), cursor, "", count).Result()
	if err != nil {
		return nil, 0, fmt.Errorf("scan ledgers: %w", err)
	}
	items := make([]*models.Ledger, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		l, err := codec.DecodeLedger(kv[i], kv[i+1])
		if err != nil {
			slog.Warn("skipping malformed ledger", "user_id", kv[i], "error", err)
			continue
		}
		items = append(items, l)
	}
	return items, next, nil
}

// PostLink returns the category link for postID. Returns nil if not found.
func (s *Store) PostLink(ctx context.Context, postID string) (*models.PostLink, error) {
	raw, err := s.rd.HGet(ctx, s.keys.Posts(), postID).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get post link %s: %w", postID, err)
	}
	return codec.DecodePostLink(postID, raw)
}
