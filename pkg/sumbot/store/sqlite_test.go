package store

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/jholhewres/sumbot/pkg/sumbot/config"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	st, err := OpenSQLite(config.DatabaseConfig{
		Path: filepath.Join(t.TempDir(), "test.db"),
	})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func insert(t *testing.T, st *SQLiteStore, name, ts, group, text string) int64 {
	t.Helper()
	id, err := st.Insert(context.Background(), ChatMessage{
		SourceNumber: "+1555",
		SourceName:   name,
		Timestamp:    ts,
		GroupID:      group,
		Text:         text,
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	return id
}

func TestInsert(t *testing.T) {
	st := openTestStore(t)

	t.Run("ids grow with insertion order", func(t *testing.T) {
		a := insert(t, st, "Alice", "0000000000100", "g1", "first")
		b := insert(t, st, "Bob", "0000000000090", "g1", "second") // older timestamp, later insert
		if b <= a {
			t.Errorf("expected id %d > %d", b, a)
		}
	})

	t.Run("safe under concurrent writers", func(t *testing.T) {
		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				insert(t, st, "W", "0000000000200", "g-conc", "x")
			}()
		}
		wg.Wait()

		lines, err := st.RangeAfter(context.Background(), "g-conc", "", 100)
		if err != nil {
			t.Fatalf("range: %v", err)
		}
		if len(lines) != 8 {
			t.Errorf("expected 8 rows, got %d", len(lines))
		}
	})
}

func TestRangeAfter(t *testing.T) {
	st := openTestStore(t)

	// Insert out of timestamp order on purpose.
	insert(t, st, "Alice", "0000000000100", "g1", "topic?")
	insert(t, st, "Carol", "0000000000300", "g1", "late reply")
	insert(t, st, "Bob", "0000000000200", "g1", "yes let's discuss")
	insert(t, st, "Mallory", "0000000000150", "g2", "other group")

	t.Run("anchored range is strictly after, timestamp ascending", func(t *testing.T) {
		lines, err := st.RangeAfter(context.Background(), "g1", "0000000000100", 10)
		if err != nil {
			t.Fatalf("range: %v", err)
		}
		want := []Line{
			{SourceName: "Bob", Text: "yes let's discuss"},
			{SourceName: "Carol", Text: "late reply"},
		}
		assertLines(t, lines, want)
	})

	t.Run("anchor itself is excluded", func(t *testing.T) {
		lines, err := st.RangeAfter(context.Background(), "g1", "0000000000300", 10)
		if err != nil {
			t.Fatalf("range: %v", err)
		}
		if len(lines) != 0 {
			t.Errorf("expected empty range, got %v", lines)
		}
	})

	t.Run("limit caps the anchored range", func(t *testing.T) {
		lines, err := st.RangeAfter(context.Background(), "g1", "0000000000100", 1)
		if err != nil {
			t.Fatalf("range: %v", err)
		}
		assertLines(t, lines, []Line{{SourceName: "Bob", Text: "yes let's discuss"}})
	})

	t.Run("empty anchor returns the recent tail oldest-first", func(t *testing.T) {
		lines, err := st.RangeAfter(context.Background(), "g1", "", 2)
		if err != nil {
			t.Fatalf("range: %v", err)
		}
		want := []Line{
			{SourceName: "Bob", Text: "yes let's discuss"},
			{SourceName: "Carol", Text: "late reply"},
		}
		assertLines(t, lines, want)
	})

	t.Run("results are scoped to the group", func(t *testing.T) {
		lines, err := st.RangeAfter(context.Background(), "g2", "", 10)
		if err != nil {
			t.Fatalf("range: %v", err)
		}
		assertLines(t, lines, []Line{{SourceName: "Mallory", Text: "other group"}})
	})

	t.Run("unknown group is empty, not an error", func(t *testing.T) {
		lines, err := st.RangeAfter(context.Background(), "nope", "", 10)
		if err != nil {
			t.Fatalf("range: %v", err)
		}
		if len(lines) != 0 {
			t.Errorf("expected no rows, got %v", lines)
		}
	})
}

func TestRangeAfterRoundTrip(t *testing.T) {
	st := openTestStore(t)

	// M1..M5 in order; anchor at M2 must return exactly M3..M5.
	tokens := []string{"0000000000010", "0000000000020", "0000000000030", "0000000000040", "0000000000050"}
	for i, ts := range tokens {
		insert(t, st, "U", ts, "g", string(rune('a'+i)))
	}

	lines, err := st.RangeAfter(context.Background(), "g", tokens[1], len(tokens))
	if err != nil {
		t.Fatalf("range: %v", err)
	}
	want := []Line{
		{SourceName: "U", Text: "c"},
		{SourceName: "U", Text: "d"},
		{SourceName: "U", Text: "e"},
	}
	assertLines(t, lines, want)
}

func assertLines(t *testing.T, got, want []Line) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %d lines, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}
