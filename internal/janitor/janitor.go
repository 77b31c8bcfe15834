// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package janitor cleans up after accounts that left the host platform.
// A pass scans every ledger, checks the host for each account and
// anonymizes the records of the ones that are gone. BulkDeleteUser removes
// everything an account created on request.
package janitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"wordcats/internal/index"
	"wordcats/internal/metrics"
	"wordcats/internal/models"
	"wordcats/internal/platform"
	"wordcats/internal/store"
	"wordcats/internal/txn"
)

const (
	passAttempts = 3
	bulkAttempts = 5

	DefaultPageSize          = 100
	DefaultLookupConcurrency = 8
)

// Options configures a Janitor. Zero values select the defaults.
type Options struct {
	PageSize          int64
	LookupConcurrency int
}

// Janitor runs account cleanup.
type Janitor struct {
	coord       *txn.Coordinator
	store       *store.Store
	index       *index.Maintainer
	identity    platform.Identity
	content     platform.Content
	pageSize    int64
	lookupLimit int
}

// New creates a janitor.
func New(coord *txn.Coordinator, st *store.Store, idx *index.Maintainer, identity platform.Identity, content platform.Content, opts Options) *Janitor {
	j := &Janitor{
		coord:       coord,
		store:       st,
		index:       idx,
		identity:    identity,
		content:     content,
		pageSize:    opts.PageSize,
		lookupLimit: opts.LookupConcurrency,
	}
	if j.pageSize <= 0 {
		j.pageSize = DefaultPageSize
	}
	if j.lookupLimit <= 0 {
		j.lookupLimit = DefaultLookupConcurrency
	}
	return j
}

// PassResult summarizes one janitor pass.
type PassResult struct {
	Scanned    int      `json:"scanned"`
	Anonymized []string `json:"anonymized"`
	Rewritten  int      `json:"rewritten"`
	// Skipped is set when the pass gave up on conflicts. The next scheduled
	// run tries again.
	Skipped bool `json:"skipped"`
}

// RunPass scans all ledgers and anonymizes accounts that no longer exist.
// The scan and the identity lookups run before the transaction so slow host
// calls do not hold the watch. The unit then re-reads only the ledgers of
// gone accounts and rewrites their records in one commit; a conflicting
// writer restarts the unit, not the lookups.
func (j *Janitor) RunPass(ctx context.Context) (*PassResult, error) {
	ledgers, err := j.scan(ctx, j.store)
	if err != nil {
		metrics.JanitorPasses.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("janitor pass: %w", err)
	}
	goneIDs, err := j.lookup(ctx, ledgers)
	if err != nil {
		metrics.JanitorPasses.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("janitor pass: %w", err)
	}

	result := PassResult{Scanned: len(ledgers)}
	if len(goneIDs) > 0 {
		err = j.coord.Run(ctx, "janitor", passAttempts, func(ctx context.Context, tx *txn.Tx) error {
			result.Anonymized, result.Rewritten = nil, 0

			current, err := tx.Store().Ledgers(ctx, goneIDs)
			if err != nil {
				return err
			}
			gone := make([]*models.Ledger, 0, len(current))
			for _, id := range goneIDs {
				if l, ok := current[id]; ok {
					gone = append(gone, l)
				}
			}
			if len(gone) == 0 {
				return nil
			}

			records, err := j.anonymize(ctx, tx.Store(), gone)
			if err != nil {
				return err
			}
			for _, l := range gone {
				result.Anonymized = append(result.Anonymized, l.UserID)
			}
			result.Rewritten = len(records)

			tx.Stage(func(ctx context.Context, pipe redis.Pipeliner) {
				w := tx.Writer(pipe)
				for _, rec := range records {
					w.PutCategory(ctx, rec)
				}
				for _, l := range gone {
					w.DeleteLedger(ctx, l.UserID)
				}
			})
			return nil
		})
	}

	switch {
	case err == nil:
	case errors.Is(err, txn.ErrRetriesExhausted):
		metrics.JanitorPasses.WithLabelValues("skipped").Inc()
		slog.Warn("janitor pass skipped", "error", err)
		return &PassResult{Skipped: true}, nil
	default:
		metrics.JanitorPasses.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("janitor pass: %w", err)
	}

	metrics.JanitorPasses.WithLabelValues("ok").Inc()
	metrics.JanitorAnonymized.Add(float64(len(result.Anonymized)))
	slog.Info("janitor pass complete",
		"scanned", result.Scanned,
		"anonymized", len(result.Anonymized),
		"rewritten", result.Rewritten,
	)

	j.audit(ctx)
	return &result, nil
}

// scan reads every ledger page by page until the cursor wraps to zero.
func (j *Janitor) scan(ctx context.Context, st *store.Store) ([]*models.Ledger, error) {
	var (
		all    []*models.Ledger
		cursor uint64
	)
	for {
		page, next, err := st.ScanLedgers(ctx, cursor, j.pageSize)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		cursor = next
		if cursor == 0 {
			break
		}
	}
	// HSCAN may return an entry more than once.
	seen := make(map[string]bool, len(all))
	out := all[:0]
	for _, l := range all {
		if !seen[l.UserID] {
			seen[l.UserID] = true
			out = append(out, l)
		}
	}
	return out, nil
}

// lookup returns the user ids whose account no longer exists, in scan
// order. Accounts that cannot be checked are kept.
func (j *Janitor) lookup(ctx context.Context, ledgers []*models.Ledger) ([]string, error) {
	exists := make([]bool, len(ledgers))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(j.lookupLimit)
	for i, l := range ledgers {
		i, l := i, l
		g.Go(func() error {
			ok, err := j.identity.Exists(gctx, l.UserID)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				slog.Warn("account lookup failed", "user_id", l.UserID, "error", err)
				ok = true
			}
			exists[i] = ok
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var gone []string
	for i, l := range ledgers {
		if !exists[i] {
			gone = append(gone, l.UserID)
		}
	}
	return gone, nil
}

// anonymize rewrites the records created or held by gone accounts. Records
// touched by several gone accounts are rewritten once.
func (j *Janitor) anonymize(ctx context.Context, st *store.Store, gone []*models.Ledger) ([]*models.Category, error) {
	var codes []string
	for _, l := range gone {
		codes = append(codes, l.Created...)
		codes = append(codes, l.HighScores...)
	}
	recs, err := st.Categories(ctx, codes)
	if err != nil {
		return nil, err
	}
	byCode := make(map[string]*models.Category, len(recs))
	for _, rec := range recs {
		byCode[rec.Code] = rec
	}

	changed := make(map[string]*models.Category)
	for _, l := range gone {
		for _, code := range l.Created {
			if rec, ok := byCode[code]; ok && rec.CreatorUsername != models.DeletedUsername {
				rec.AnonymizeCreator()
				changed[code] = rec
			}
		}
		for _, code := range l.HighScores {
			if rec, ok := byCode[code]; ok && rec.HighScoreUserID == l.UserID {
				rec.AnonymizeHolder()
				changed[code] = rec
			}
		}
	}

	out := make([]*models.Category, 0, len(changed))
	for _, rec := range changed {
		out = append(out, rec)
	}
	slices.SortFunc(out, func(a, b *models.Category) int { return strings.Compare(a.Code, b.Code) })
	return out, nil
}

// audit logs index entries that disagree with the category hash.
func (j *Janitor) audit(ctx context.Context) {
	codes, err := j.store.CategoryCodes(ctx)
	if err != nil {
		slog.Warn("index audit failed", "error", err)
		return
	}
	report, err := j.index.Audit(ctx, codes)
	if err != nil {
		slog.Warn("index audit failed", "error", err)
		return
	}
	if report.Clean() {
		return
	}
	for _, n := range index.All {
		if len(report.Missing[n]) > 0 || len(report.Orphaned[n]) > 0 {
			slog.Warn("index out of sync",
				"index", string(n),
				"missing", report.Missing[n],
				"orphaned", report.Orphaned[n],
			)
		}
	}
}
