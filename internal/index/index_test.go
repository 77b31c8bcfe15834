// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package index

import (
	"context"
	"reflect"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"wordcats/internal/models"
	"wordcats/internal/store"
)

func testMaintainer(t *testing.T) (*Maintainer, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewMaintainer(client, store.NewKeys("")), client
}

func apply(t *testing.T, client *redis.Client, fn func(pipe redis.Pipeliner)) {
	t.Helper()
	if _, err := client.TxPipelined(context.Background(), func(pipe redis.Pipeliner) error {
		fn(pipe)
		return nil
	}); err != nil {
		t.Fatalf("TxPipelined: %v", err)
	}
}

func codes(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Code
	}
	return out
}

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    Name
		wantErr bool
	}{
		{"", ByTime, false},
		{"time", ByTime, false},
		{"plays", ByPlays, false},
		{"score", ByScore, false},
		{"Score", "", true},
		{"popular", "", true},
	}
	for _, tt := range tests {
		got, err := Parse(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("Parse(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestAddAndPage(t *testing.T) {
	m, client := testMaintainer(t)
	ctx := context.Background()

	cats := []*models.Category{
		{Code: "0000001", CreatedAtSeconds: 100, PlayCount: 5, HighScore: 2},
		{Code: "0000002", CreatedAtSeconds: 200, PlayCount: 1, HighScore: 9},
		{Code: "0000003", CreatedAtSeconds: 300, PlayCount: 3},
	}
	apply(t, client, func(pipe redis.Pipeliner) {
		for _, c := range cats {
			m.Add(ctx, pipe, c)
		}
	})

	want := map[Name][]string{
		ByTime:  {"0000003", "0000002", "0000001"},
		ByPlays: {"0000001", "0000003", "0000002"},
		ByScore: {"0000002", "0000001", "0000003"},
	}
	for n, w := range want {
		got, err := m.Page(ctx, n, 0, 10)
		if err != nil {
			t.Fatalf("Page(%s): %v", n, err)
		}
		if !reflect.DeepEqual(codes(got), w) {
			t.Errorf("Page(%s) = %v, want %v", n, codes(got), w)
		}
	}

	page, _ := m.Page(ctx, ByTime, 1, 1)
	if !reflect.DeepEqual(codes(page), []string{"0000002"}) {
		t.Errorf("offset page = %v", codes(page))
	}
	if empty, _ := m.Page(ctx, ByTime, 0, 0); empty != nil {
		t.Errorf("zero limit page = %v", empty)
	}
}

func TestSetPlaysAndScore(t *testing.T) {
	m, client := testMaintainer(t)
	ctx := context.Background()
	apply(t, client, func(pipe redis.Pipeliner) {
		m.Add(ctx, pipe, &models.Category{Code: "0000001"})
		m.Add(ctx, pipe, &models.Category{Code: "0000002"})
	})
	apply(t, client, func(pipe redis.Pipeliner) {
		m.SetPlays(ctx, pipe, "0000001", 4)
		m.SetScore(ctx, pipe, "0000001", 8)
	})

	plays, _ := m.Page(ctx, ByPlays, 0, 1)
	score, _ := m.Page(ctx, ByScore, 0, 1)
	if len(plays) != 1 || plays[0].Code != "0000001" || plays[0].Score != 4 {
		t.Errorf("plays = %+v", plays)
	}
	if len(score) != 1 || score[0].Score != 8 {
		t.Errorf("score = %+v", score)
	}
}

func TestRemoveAndCounts(t *testing.T) {
	m, client := testMaintainer(t)
	ctx := context.Background()
	apply(t, client, func(pipe redis.Pipeliner) {
		for _, c := range []string{"0000001", "0000002", "0000003"} {
			m.Add(ctx, pipe, &models.Category{Code: c})
		}
	})
	apply(t, client, func(pipe redis.Pipeliner) {
		m.Remove(ctx, pipe, "0000001", "0000003")
		m.Remove(ctx, pipe)
	})

	counts, err := m.Counts(ctx)
	if err != nil {
		t.Fatalf("Counts: %v", err)
	}
	for _, n := range All {
		if counts[n] != 1 {
			t.Errorf("count %s = %d, want 1", n, counts[n])
		}
	}
}

func TestAudit(t *testing.T) {
	m, client := testMaintainer(t)
	ctx := context.Background()
	apply(t, client, func(pipe redis.Pipeliner) {
		m.Add(ctx, pipe, &models.Category{Code: "0000001"})
		m.Add(ctx, pipe, &models.Category{Code: "0000002"})
	})

	report, err := m.Audit(ctx, []string{"0000001", "0000002"})
	if err != nil || !report.Clean() {
		t.Fatalf("Audit = %+v, %v; want clean", report, err)
	}

	apply(t, client, func(pipe redis.Pipeliner) {
		pipe.ZRem(ctx, m.key(ByPlays), "0000001")
	})
	report, _ = m.Audit(ctx, []string{"0000001", "0000003"})
	if report.Clean() {
		t.Fatal("expected discrepancies")
	}
	if got := report.Missing[ByPlays]; !reflect.DeepEqual(got, []string{"0000001", "0000003"}) {
		t.Errorf("missing plays = %v", got)
	}
	if got := report.Orphaned[ByTime]; !reflect.DeepEqual(got, []string{"0000002"}) {
		t.Errorf("orphaned time = %v", got)
	}
}
