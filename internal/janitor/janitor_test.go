// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package janitor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"

	"wordcats/internal/codec"
	"wordcats/internal/game"
	"wordcats/internal/index"
	"wordcats/internal/metrics"
	"wordcats/internal/models"
	"wordcats/internal/platform"
	"wordcats/internal/sequence"
	"wordcats/internal/store"
	"wordcats/internal/txn"
)

const words = "cat,dog,horse,cow,pig,goat,sheep,duck,hen,sea lion"

type harness struct {
	janitor *Janitor
	game    *game.Service
	mem     *platform.Memory
	client  *redis.Client
	mr      *miniredis.Miniredis
	store   *store.Store
	index   *index.Maintainer
}

func newHarness(t *testing.T, opts Options) *harness {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	keys := store.NewKeys("wc:")
	st := store.New(client, keys)
	idx := index.NewMaintainer(client, keys)
	coord := txn.New(client, st)
	mem := platform.NewMemory()
	mem.AddUser("t2_alice", "alice")
	mem.AddUser("t2_bob", "bob")
	mem.AddUser("t2_carol", "carol")

	return &harness{
		janitor: New(coord, st, idx, mem, mem, opts),
		game:    game.New(coord, st, idx, mem, mem, game.Options{}),
		mem:     mem,
		client:  client,
		mr:      mr,
		store:   st,
		index:   idx,
	}
}

func (h *harness) create(t *testing.T, userID string) *models.Category {
	t.Helper()
	ctx := context.Background()
	res, err := h.game.Create(ctx, userID, "Animals", words)
	if err != nil || res.Status != game.CreateFormed {
		t.Fatalf("Create = %+v, %v", res, err)
	}
	rec, _ := h.store.Category(ctx, res.Code)
	return rec
}

func (h *harness) play(t *testing.T, code string, score int64, userID, username string) {
	t.Helper()
	if _, err := h.game.RecordPlay(context.Background(), code, score, userID, username); err != nil {
		t.Fatalf("RecordPlay: %v", err)
	}
}

func (h *harness) category(t *testing.T, code string) *models.Category {
	t.Helper()
	rec, err := h.store.Category(context.Background(), code)
	if err != nil {
		t.Fatalf("Category: %v", err)
	}
	return rec
}

func (h *harness) assertIndexesClean(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	codes, _ := h.store.CategoryCodes(ctx)
	report, err := h.index.Audit(ctx, codes)
	if err != nil {
		t.Fatalf("Audit: %v", err)
	}
	if !report.Clean() {
		t.Errorf("indexes out of sync: %+v", report)
	}
}

func TestRunPassAnonymizesGoneAccounts(t *testing.T) {
	h := newHarness(t, Options{})
	ctx := context.Background()

	a := h.create(t, "t2_alice")
	b := h.create(t, "t2_bob")
	h.play(t, a.Code, 9, "t2_bob", "bob")
	h.play(t, b.Code, 5, "t2_alice", "alice")

	before := testutil.ToFloat64(metrics.JanitorAnonymized)
	h.mem.RemoveUser("t2_alice")

	res, err := h.janitor.RunPass(ctx)
	if err != nil {
		t.Fatalf("RunPass: %v", err)
	}
	if res.Scanned != 2 || len(res.Anonymized) != 1 || res.Anonymized[0] != "t2_alice" {
		t.Errorf("result = %+v", res)
	}
	if res.Rewritten != 2 {
		t.Errorf("rewritten = %d, want 2", res.Rewritten)
	}

	gotA := h.category(t, a.Code)
	if gotA.CreatorUsername != models.DeletedUsername {
		t.Errorf("creator = %q", gotA.CreatorUsername)
	}
	if gotA.PostID != a.PostID || gotA.CreatedAtSeconds != a.CreatedAtSeconds || gotA.HighScoreUsername != "bob" {
		t.Errorf("other fields changed: %+v", gotA)
	}

	gotB := h.category(t, b.Code)
	if gotB.HighScoreUsername != models.DeletedUsername || gotB.HighScoreUserID != models.DeletedUserID {
		t.Errorf("holder = %q/%q", gotB.HighScoreUsername, gotB.HighScoreUserID)
	}
	if gotB.HighScore != 5 || gotB.CreatorUsername != "bob" || gotB.PostID != b.PostID {
		t.Errorf("other fields changed: %+v", gotB)
	}

	if l, _ := h.store.Ledger(ctx, "t2_alice"); l != nil {
		t.Error("gone account ledger should be deleted")
	}
	if l, _ := h.store.Ledger(ctx, "t2_bob"); l == nil || !l.HasCreated(b.Code) || !l.HoldsHighScore(a.Code) {
		t.Errorf("bob ledger = %+v", l)
	}
	if got := testutil.ToFloat64(metrics.JanitorAnonymized) - before; got != 1 {
		t.Errorf("anonymized counter delta = %v", got)
	}
	h.assertIndexesClean(t)
}

func TestRunPassAnonymizedHolderCanBeBeaten(t *testing.T) {
	h := newHarness(t, Options{})
	ctx := context.Background()
	a := h.create(t, "t2_bob")
	h.play(t, a.Code, 5, "t2_alice", "alice")
	h.mem.RemoveUser("t2_alice")
	if _, err := h.janitor.RunPass(ctx); err != nil {
		t.Fatalf("RunPass: %v", err)
	}

	h.play(t, a.Code, 6, "t2_carol", "carol")
	rec := h.category(t, a.Code)
	if rec.HighScoreUserID != "t2_carol" || rec.HighScore != 6 {
		t.Errorf("record = %+v", rec)
	}
}

func TestRunPassNothingToDo(t *testing.T) {
	h := newHarness(t, Options{})
	ctx := context.Background()
	h.create(t, "t2_alice")
	seq, _ := h.store.Sequence(ctx)

	res, err := h.janitor.RunPass(ctx)
	if err != nil {
		t.Fatalf("RunPass: %v", err)
	}
	if res.Scanned != 1 || len(res.Anonymized) != 0 || res.Skipped {
		t.Errorf("result = %+v", res)
	}
	if got, _ := h.store.Sequence(ctx); got != seq {
		t.Errorf("sequence moved from %q to %q", seq, got)
	}
}

func TestRunPassPagesThroughAllLedgers(t *testing.T) {
	h := newHarness(t, Options{PageSize: 2, LookupConcurrency: 3})
	ctx := context.Background()

	const n = 9
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("t2_user%d", i)
		l := models.NewLedger(id, fmt.Sprintf("user%d", i))
		if err := h.client.HSet(ctx, h.store.Keys().Users(), id, codec.EncodeLedger(l)).Err(); err != nil {
			t.Fatalf("HSet: %v", err)
		}
		if i%3 != 0 {
			h.mem.AddUser(id, l.Username)
		}
	}

	res, err := h.janitor.RunPass(ctx)
	if err != nil {
		t.Fatalf("RunPass: %v", err)
	}
	if res.Scanned != n || len(res.Anonymized) != 3 {
		t.Errorf("result = %+v", res)
	}
	left, _ := h.client.HLen(ctx, h.store.Keys().Users()).Result()
	if left != n-3 {
		t.Errorf("ledgers left = %d, want %d", left, n-3)
	}
}

func TestRunPassKeepsUncheckedAccounts(t *testing.T) {
	h := newHarness(t, Options{})
	h.create(t, "t2_alice")
	h.mem.RemoveUser("t2_alice")
	h.mem.FailOn("exists", errors.New("host unavailable"))

	res, err := h.janitor.RunPass(context.Background())
	if err != nil {
		t.Fatalf("RunPass: %v", err)
	}
	if len(res.Anonymized) != 0 {
		t.Errorf("anonymized = %v, want none", res.Anonymized)
	}
}

func TestBulkDeleteUser(t *testing.T) {
	h := newHarness(t, Options{})
	ctx := context.Background()

	a := h.create(t, "t2_alice")
	b := h.create(t, "t2_alice")
	c := h.create(t, "t2_carol")
	h.play(t, a.Code, 9, "t2_bob", "bob")
	h.play(t, c.Code, 7, "t2_alice", "alice")

	res, err := h.janitor.BulkDeleteUser(ctx, "t2_alice")
	if err != nil {
		t.Fatalf("BulkDeleteUser: %v", err)
	}
	if !res.DeletedAll || len(res.Deleted) != 2 {
		t.Fatalf("result = %+v", res)
	}

	for _, code := range []string{a.Code, b.Code} {
		if rec := h.category(t, code); rec != nil {
			t.Errorf("category %s still present", code)
		}
		if w, _ := h.store.Words(ctx, code); w != nil {
			t.Errorf("words for %s still present", code)
		}
	}
	if link, _ := h.store.PostLink(ctx, a.PostID); link != nil {
		t.Error("post link still present")
	}
	if l, _ := h.store.Ledger(ctx, "t2_alice"); l != nil {
		t.Error("ledger should be deleted")
	}
	if l, _ := h.store.Ledger(ctx, "t2_bob"); l == nil || l.HoldsHighScore(a.Code) {
		t.Errorf("bob ledger = %+v", l)
	}

	surv := h.category(t, c.Code)
	if surv == nil || surv.HighScoreUserID != models.DeletedUserID || surv.HighScore != 7 || surv.CreatorUsername != "carol" {
		t.Errorf("surviving record = %+v", surv)
	}
	if p := h.mem.Post(a.PostID); !p.Removed {
		t.Error("hosted post should be removed")
	}
	if p := h.mem.Post(c.PostID); p.Removed {
		t.Error("another player's post was removed")
	}
	h.assertIndexesClean(t)
}

func TestBulkDeleteUserRemovesRatherThanAnonymizes(t *testing.T) {
	h := newHarness(t, Options{})
	ctx := context.Background()
	a := h.create(t, "t2_alice")
	b := h.create(t, "t2_alice")

	if _, err := h.janitor.BulkDeleteUser(ctx, "t2_alice"); err != nil {
		t.Fatalf("BulkDeleteUser: %v", err)
	}
	codes, _ := h.store.CategoryCodes(ctx)
	if len(codes) != 0 {
		t.Errorf("categories left: %v (created %s, %s)", codes, a.Code, b.Code)
	}
	counts, _ := h.index.Counts(ctx)
	for n, c := range counts {
		if c != 0 {
			t.Errorf("index %s still has %d entries", n, c)
		}
	}
}

func TestBulkDeleteUnknownUser(t *testing.T) {
	h := newHarness(t, Options{})
	res, err := h.janitor.BulkDeleteUser(context.Background(), "t2_nobody")
	if err != nil {
		t.Fatalf("BulkDeleteUser: %v", err)
	}
	if !res.DeletedAll || len(res.Deleted) != 0 {
		t.Errorf("result = %+v", res)
	}
}

func TestBulkDeleteToleratesPostRemovalFailure(t *testing.T) {
	h := newHarness(t, Options{})
	h.create(t, "t2_alice")
	h.mem.FailOn("remove_post", errors.New("host down"))

	res, err := h.janitor.BulkDeleteUser(context.Background(), "t2_alice")
	if err != nil || !res.DeletedAll {
		t.Errorf("BulkDeleteUser = %+v, %v", res, err)
	}
}

func TestScheduleRejectsInvalidCron(t *testing.T) {
	h := newHarness(t, Options{})
	if err := h.janitor.Schedule(context.Background(), "not a cron"); err == nil {
		t.Error("expected error for invalid cron expression")
	}
}

func TestScheduleStopsOnCancel(t *testing.T) {
	h := newHarness(t, Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := h.janitor.Schedule(ctx, "* * * * *"); err != nil {
		t.Errorf("Schedule: %v", err)
	}
}

// contendedWatcher lets a second client advance the sequence right after
// every WATCH, so no attempt ever reaches EXEC unchallenged.
type contendedWatcher struct {
	client *redis.Client
	other  *redis.Client
	key    string
}

func (c *contendedWatcher) Watch(ctx context.Context, fn func(*redis.Tx) error, keys ...string) error {
	return c.client.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := c.other.Get(ctx, c.key).Result()
		if errors.Is(err, redis.Nil) {
			cur = sequence.Initial
		} else if err != nil {
			return err
		}
		next, err := sequence.Next(cur)
		if err != nil {
			return err
		}
		if err := c.other.Set(ctx, c.key, next, 0).Err(); err != nil {
			return err
		}
		return fn(tx)
	}, keys...)
}

// contended returns a janitor over the same store whose transactions
// always lose to a concurrent writer.
func (h *harness) contended(t *testing.T) *Janitor {
	t.Helper()
	other := redis.NewClient(&redis.Options{Addr: h.mr.Addr()})
	t.Cleanup(func() { other.Close() })
	w := &contendedWatcher{client: h.client, other: other, key: h.store.Keys().Sequence()}
	return New(txn.New(w, h.store), h.store, h.index, h.mem, h.mem, Options{})
}

func TestRunPassSkippedWhenBusy(t *testing.T) {
	h := newHarness(t, Options{})
	ctx := context.Background()
	a := h.create(t, "t2_alice")
	h.mem.RemoveUser("t2_alice")

	skipped := metrics.JanitorPasses.WithLabelValues("skipped")
	before := testutil.ToFloat64(skipped)

	res, err := h.contended(t).RunPass(ctx)
	if err != nil {
		t.Fatalf("RunPass: %v", err)
	}
	if !res.Skipped || len(res.Anonymized) != 0 {
		t.Errorf("result = %+v, want skipped", res)
	}
	if got := testutil.ToFloat64(skipped) - before; got != 1 {
		t.Errorf("skipped passes delta = %v, want 1", got)
	}

	if rec := h.category(t, a.Code); rec.CreatorUsername != "alice" {
		t.Errorf("creator rewritten by a skipped pass: %q", rec.CreatorUsername)
	}
	if l, _ := h.store.Ledger(ctx, "t2_alice"); l == nil {
		t.Error("ledger deleted by a skipped pass")
	}

	// The next uncontended pass picks the account up.
	res, err = h.janitor.RunPass(ctx)
	if err != nil || res.Skipped || len(res.Anonymized) != 1 {
		t.Errorf("follow-up pass = %+v, %v", res, err)
	}
}

// commitDuringLookup runs a player write while the janitor checks accounts.
type commitDuringLookup struct {
	platform.Identity
	once   sync.Once
	commit func()
}

func (c *commitDuringLookup) Exists(ctx context.Context, id string) (bool, error) {
	c.once.Do(c.commit)
	return c.Identity.Exists(ctx, id)
}

func TestRunPassChecksAccountsOutsideTransaction(t *testing.T) {
	h := newHarness(t, Options{})
	ctx := context.Background()
	a := h.create(t, "t2_alice")
	b := h.create(t, "t2_bob")
	h.mem.RemoveUser("t2_alice")

	var playErr error
	identity := &commitDuringLookup{
		Identity: h.mem,
		commit: func() {
			_, playErr = h.game.RecordPlay(ctx, b.Code, 4, "t2_carol", "carol")
		},
	}
	jan := New(txn.New(h.client, h.store), h.store, h.index, identity, h.mem, Options{LookupConcurrency: 1})

	conflicts := metrics.TxConflicts.WithLabelValues("janitor")
	before := testutil.ToFloat64(conflicts)

	res, err := jan.RunPass(ctx)
	if err != nil || res.Skipped {
		t.Fatalf("RunPass = %+v, %v", res, err)
	}
	if playErr != nil {
		t.Fatalf("RecordPlay during lookup: %v", playErr)
	}
	if got := testutil.ToFloat64(conflicts) - before; got != 0 {
		t.Errorf("janitor conflicts = %v, want 0", got)
	}
	if rec := h.category(t, a.Code); rec.CreatorUsername != models.DeletedUsername {
		t.Errorf("creator = %q", rec.CreatorUsername)
	}
	if rec := h.category(t, b.Code); rec.PlayCount != 1 || rec.HighScoreUserID != "t2_carol" {
		t.Errorf("concurrent play lost: %+v", rec)
	}
}

func TestBulkDeleteBusyWritesNothing(t *testing.T) {
	h := newHarness(t, Options{})
	ctx := context.Background()
	a := h.create(t, "t2_alice")
	h.play(t, a.Code, 6, "t2_bob", "bob")

	res, err := h.contended(t).BulkDeleteUser(ctx, "t2_alice")
	if err != nil {
		t.Fatalf("BulkDeleteUser: %v", err)
	}
	if res.DeletedAll || len(res.Deleted) != 0 {
		t.Errorf("result = %+v, want deletedAll false", res)
	}

	if rec := h.category(t, a.Code); rec == nil {
		t.Fatal("category removed by a busy bulk delete")
	}
	if l, _ := h.store.Ledger(ctx, "t2_alice"); l == nil || !l.HasCreated(a.Code) {
		t.Errorf("creator ledger = %+v", l)
	}
	if l, _ := h.store.Ledger(ctx, "t2_bob"); l == nil || !l.HoldsHighScore(a.Code) {
		t.Errorf("holder ledger = %+v", l)
	}
	if post := h.mem.Post(a.PostID); post.Removed {
		t.Error("hosted post removed by a busy bulk delete")
	}
	h.assertIndexesClean(t)
}

func TestSeparatorInAccountNames(t *testing.T) {
	h := newHarness(t, Options{})
	ctx := context.Background()
	h.mem.AddUser("t2_eve", "eve:x")
	h.mem.AddUser("t2:odd", "odd:name")

	a := h.create(t, "t2_eve")
	b := h.create(t, "t2:odd")
	h.play(t, b.Code, 3, "t2_eve", "eve:x")
	h.mem.RemoveUser("t2_eve")

	res, err := h.janitor.RunPass(ctx)
	if err != nil || len(res.Anonymized) != 1 || res.Anonymized[0] != "t2_eve" {
		t.Fatalf("RunPass = %+v, %v", res, err)
	}
	if rec := h.category(t, a.Code); rec.CreatorUsername != models.DeletedUsername {
		t.Errorf("creator = %q", rec.CreatorUsername)
	}
	if rec := h.category(t, b.Code); rec.HighScoreUsername != models.DeletedUsername || rec.CreatorUsername != "odd:name" {
		t.Errorf("record = %+v", rec)
	}

	bulk, err := h.janitor.BulkDeleteUser(ctx, "t2:odd")
	if err != nil || !bulk.DeletedAll || len(bulk.Deleted) != 1 || bulk.Deleted[0] != b.Code {
		t.Fatalf("BulkDeleteUser = %+v, %v", bulk, err)
	}
	if rec := h.category(t, b.Code); rec != nil {
		t.Errorf("category survived bulk delete: %+v", rec)
	}
	h.assertIndexesClean(t)
}
