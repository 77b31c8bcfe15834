// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package txn runs groups of store and index mutations as optimistic
// WATCH/MULTI/EXEC units guarded by the global sequence key. It is the only
// package that executes transactions.
//
// Every committed unit rewrites the sequence key, advanced or unchanged, so
// any two concurrent writers conflict and exactly one of them retries.
package txn

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"wordcats/internal/metrics"
	"wordcats/internal/store"
)

// ErrRetriesExhausted is returned when every attempt of a unit aborted on
// a conflicting writer. Nothing was written.
var ErrRetriesExhausted = errors.New("transaction retries exhausted")

// Watcher is the go-redis entry point for optimistic transactions.
type Watcher interface {
	Watch(ctx context.Context, fn func(*redis.Tx) error, keys ...string) error
}

// Unit reads the state it needs through tx and stages its writes. It runs
// once per attempt and must not keep state across attempts. Returning an
// error aborts the unit without writing anything.
type Unit func(ctx context.Context, tx *Tx) error

// Coordinator executes units with bounded retry.
type Coordinator struct {
	watcher Watcher
	store   *store.Store
}

// New returns a coordinator. st supplies the key layout and is rebound to
// the watched connection for every attempt.
func New(watcher Watcher, st *store.Store) *Coordinator {
	return &Coordinator{watcher: watcher, store: st}
}

// Tx is the view of one transaction attempt.
type Tx struct {
	store   *store.Store
	keys    store.Keys
	attempt int
	seq     string
	next    string
	staged  []func(ctx context.Context, pipe redis.Pipeliner)
}

// Store returns a store reading through the watched connection.
func (t *Tx) Store() *store.Store { return t.store }

// Attempt returns the 1-based attempt number.
func (t *Tx) Attempt() int { return t.attempt }

// Sequence returns the sequence value observed at the start of the attempt.
func (t *Tx) Sequence() string { return t.seq }

// Advance sets the sequence value written on commit.
func (t *Tx) Advance(code string) { t.next = code }

// Stage queues fn to run inside MULTI. Staged functions only enqueue
// commands; their results are not available to the unit.
func (t *Tx) Stage(fn func(ctx context.Context, pipe redis.Pipeliner)) {
	t.staged = append(t.staged, fn)
}

// Writer returns a record writer for pipe.
func (t *Tx) Writer(pipe redis.Pipeliner) *store.Writer {
	return store.NewWriter(pipe, t.keys)
}

// Run executes unit up to attempts times until it commits. It returns nil
// on commit, the unit's own error if the unit aborted, ErrRetriesExhausted
// when every attempt conflicted, or a wrapped store error.
func (c *Coordinator) Run(ctx context.Context, op string, attempts int, unit Unit) error {
	if attempts < 1 {
		attempts = 1
	}
	keys := c.store.Keys()

	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		metrics.TxAttempts.WithLabelValues(op).Inc()

		err := c.watcher.Watch(ctx, func(rtx *redis.Tx) error {
			view := c.store.With(rtx)
			seq, err := view.Sequence(ctx)
			if err != nil {
				return err
			}
			tx := &Tx{store: view, keys: keys, attempt: attempt, seq: seq, next: seq}
			if err := unit(ctx, tx); err != nil {
				return err
			}
			if len(tx.staged) == 0 {
				return nil
			}
			_, err = rtx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				tx.Writer(pipe).SetSequence(ctx, tx.next)
				for _, fn := range tx.staged {
					fn(ctx, pipe)
				}
				return nil
			})
			return err
		}, keys.Sequence())

		switch {
		case err == nil:
			metrics.TxCommits.WithLabelValues(op).Inc()
			return nil
		case errors.Is(err, redis.TxFailedErr):
			metrics.TxConflicts.WithLabelValues(op).Inc()
			slog.Debug("transaction conflict, retrying", "op", op, "attempt", attempt)
			continue
		default:
			return err
		}
	}

	metrics.TxExhausted.WithLabelValues(op).Inc()
	slog.Warn("transaction retries exhausted", "op", op, "attempts", attempts)
	return fmt.Errorf("%s: %w after %d attempts", op, ErrRetriesExhausted, attempts)
}
