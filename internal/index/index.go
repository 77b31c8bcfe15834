// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package index maintains the three sorted sets that stand in for queries
// over categories: by creation time, by play count and by high score. Every
// live category code is a member of all three.
package index

import (
	"context"
	"fmt"
	"slices"

	"github.com/redis/go-redis/v9"

	"wordcats/internal/models"
	"wordcats/internal/store"
)

// Name identifies one of the maintained indexes.
type Name string

const (
	ByTime  Name = "time"
	ByPlays Name = "plays"
	ByScore Name = "score"
)

// All lists every maintained index.
var All = []Name{ByTime, ByPlays, ByScore}

// Parse resolves an index name from user input. Empty means ByTime.
func Parse(s string) (Name, error) {
	switch Name(s) {
	case "", ByTime:
		return ByTime, nil
	case ByPlays, ByScore:
		return Name(s), nil
	}
	return "", fmt.Errorf("unknown index %q", s)
}

// Reader is the subset of go-redis commands used to read indexes.
type Reader interface {
	ZCard(ctx context.Context, key string) *redis.IntCmd
	ZRange(ctx context.Context, key string, start, stop int64) *redis.StringSliceCmd
	ZRevRangeWithScores(ctx context.Context, key string, start, stop int64) *redis.ZSliceCmd
}

// Entry is one member of an index with its score.
type Entry struct {
	Code  string  `json:"code"`
	Score float64 `json:"score"`
}

// Maintainer reads indexes and queues index updates on transaction
// pipelines.
type Maintainer struct {
	rd   Reader
	keys store.Keys
}

// NewMaintainer returns a maintainer reading through rd.
func NewMaintainer(rd Reader, keys store.Keys) *Maintainer {
	return &Maintainer{rd: rd, keys: keys}
}

func (m *Maintainer) key(n Name) string {
	return m.keys.Index(string(n))
}

// Add queues insertion of a category into every index.
func (m *Maintainer) Add(ctx context.Context, pipe redis.Pipeliner, c *models.Category) {
	pipe.ZAdd(ctx, m.key(ByTime), redis.Z{Score: float64(c.CreatedAtSeconds), Member: c.Code})
	pipe.ZAdd(ctx, m.key(ByPlays), redis.Z{Score: float64(c.PlayCount), Member: c.Code})
	pipe.ZAdd(ctx, m.key(ByScore), redis.Z{Score: float64(c.HighScore), Member: c.Code})
}

// Remove queues removal of codes from every index.
func (m *Maintainer) Remove(ctx context.Context, pipe redis.Pipeliner, codes ...string) {
	if len(codes) == 0 {
		return
	}
	members := make([]any, len(codes))
	for i, c := range codes {
		members[i] = c
	}
	for _, n := range All {
		pipe.ZRem(ctx, m.key(n), members...)
	}
}

// SetPlays queues an update of the play-count index.
func (m *Maintainer) SetPlays(ctx context.Context, pipe redis.Pipeliner, code string, plays int64) {
	pipe.ZAdd(ctx, m.key(ByPlays), redis.Z{Score: float64(plays), Member: code})
}

// SetScore queues an update of the high-score index.
func (m *Maintainer) SetScore(ctx context.Context, pipe redis.Pipeliner, code string, score int64) {
	pipe.ZAdd(ctx, m.key(ByScore), redis.Z{Score: float64(score), Member: code})
}

// Page returns up to limit entries of the named index, highest score first.
func (m *Maintainer) Page(ctx context.Context, n Name, offset, limit int64) ([]Entry, error) {
	if limit <= 0 {
		return nil, nil
	}
	zs, err := m.rd.ZRevRangeWithScores(ctx, m.key(n), offset, offset+limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("range index %s: %w", n, err)
	}
	entries := make([]Entry, 0, len(zs))
	for _, z := range zs {
		code, ok := z.Member.(string)
		if !ok {
			continue
		}
		entries = append(entries, Entry{Code: code, Score: z.Score})
	}
	return entries, nil
}

// Count returns the number of members of the named index.
func (m *Maintainer) Count(ctx context.Context, n Name) (int64, error) {
	c, err := m.rd.ZCard(ctx, m.key(n)).Result()
	if err != nil {
		return 0, fmt.Errorf("count index %s: %w", n, err)
	}
	return c, nil
}

// Counts returns the cardinality of every index.
func (m *Maintainer) Counts(ctx context.Context) (map[Name]int64, error) {
	out := make(map[Name]int64, len(All))
	for _, n := range All {
		c, err := m.Count(ctx, n)
		if err != nil {
			return nil, err
		}
		out[n] = c
	}
	return out, nil
}

// Report lists codes that break the index invariant.
type Report struct {
	// Missing holds, per index, stored category codes absent from it.
	Missing map[Name][]string
	// Orphaned holds, per index, members without a stored category.
	Orphaned map[Name][]string
}

// Clean reports whether the audit found no discrepancies.
func (r *Report) Clean() bool {
	return len(r.Missing) == 0 && len(r.Orphaned) == 0
}

// Audit compares the stored category codes against every index.
func (m *Maintainer) Audit(ctx context.Context, codes []string) (*Report, error) {
	report := &Report{Missing: map[Name][]string{}, Orphaned: map[Name][]string{}}
	want := make(map[string]bool, len(codes))
	for _, c := range codes {
		want[c] = true
	}
	for _, n := range All {
		members, err := m.rd.ZRange(ctx, m.key(n), 0, -1).Result()
		if err != nil {
			return nil, fmt.Errorf("audit index %s: %w", n, err)
		}
		have := make(map[string]bool, len(members))
		for _, c := range members {
			have[c] = true
			if !want[c] {
				report.Orphaned[n] = append(report.Orphaned[n], c)
			}
		}
		for _, c := range codes {
			if !have[c] {
				report.Missing[n] = append(report.Missing[n], c)
			}
		}
		slices.Sort(report.Missing[n])
		slices.Sort(report.Orphaned[n])
	}
	return report, nil
}
