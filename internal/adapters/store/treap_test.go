package store

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"testing"
)

func TestRankedIndexOrdering(t *testing.T) {
	idx := newRankedIndex(42)

	idx.upsert("a", 10, 0, false)
	idx.upsert("b", 30, 0, false)
	idx.upsert("c", 20, 0, false)

	entries := idx.entries()
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	want := []string{"b", "c", "a"}
	for i, e := range entries {
		if e.UserID != want[i] {
			t.Errorf("position %d: expected %q, got %q", i, want[i], e.UserID)
		}
	}
}

func TestRankedIndexTieBreak(t *testing.T) {
	idx := newRankedIndex(42)

	// Equal scores order by id ascending, deterministically.
	idx.upsert("zed", 50, 0, false)
	idx.upsert("amy", 50, 0, false)
	idx.upsert("mia", 50, 0, false)

	entries := idx.entries()
	want := []string{"amy", "mia", "zed"}
	for i, e := range entries {
		if e.UserID != want[i] {
			t.Errorf("position %d: expected %q, got %q", i, want[i], e.UserID)
		}
	}
}

func TestRankedIndexUpsertReplaces(t *testing.T) {
	idx := newRankedIndex(42)

	idx.upsert("a", 10, 0, false)
	idx.upsert("a", 99, 10, true)

	if idx.size != 1 {
		t.Fatalf("expected size 1 after re-upsert, got %d", idx.size)
	}
	entries := idx.entries()
	if len(entries) != 1 || entries[0].Average != 99 {
		t.Fatalf("expected single entry with average 99, got %+v", entries)
	}
}

func TestRankedIndexRandomized(t *testing.T) {
	idx := newRankedIndex(42)
	rng := rand.New(rand.NewSource(7))

	current := make(map[string]float64)
	for i := 0; i < 2000; i++ {
		id := fmt.Sprintf("user-%03d", rng.Intn(300))
		score := float64(rng.Intn(400) - 200)
		old, had := current[id]
		idx.upsert(id, score, old, had)
		current[id] = score
	}

	entries := idx.entries()
	if len(entries) != len(current) {
		t.Fatalf("expected %d entries, got %d", len(current), len(entries))
	}
	if !sort.SliceIsSorted(entries, func(i, j int) bool {
		if entries[i].Average != entries[j].Average {
			return entries[i].Average > entries[j].Average
		}
		return entries[i].UserID < entries[j].UserID
	}) {
		t.Error("entries not in (average desc, id asc) order")
	}
	for _, e := range entries {
		if current[e.UserID] != e.Average {
			t.Errorf("user %s: expected %f, got %f", e.UserID, current[e.UserID], e.Average)
		}
	}
}

func TestScaledAverage(t *testing.T) {
	cases := []struct {
		sum, count int64
		want       float64
	}{
		{40, 1, 40.4},
		{20, 2, 10.2},
		{-500, 50, -15},
		{0, 10, 0},
		{100, 100, 2},
	}
	for _, c := range cases {
		if got := ScaledAverage(c.sum, c.count); math.Abs(got-c.want) > 1e-9 {
			t.Errorf("ScaledAverage(%d, %d) = %f, want %f", c.sum, c.count, got, c.want)
		}
	}
}
