package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/iamwavecut/securebot/internal/db"
)

func TestFloodCounterRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	client, err := NewSQLiteClient(ctx, t.TempDir(), "test.db")
	if err != nil {
		t.Fatalf("new sqlite client: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	if _, err := client.GetFloodCounter(ctx, 42); !errors.Is(err, db.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown user, got %v", err)
	}

	ts := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	if err := client.SetFloodCounter(ctx, &db.FloodCounter{UserID: 42, Count: 3, LastTS: ts}); err != nil {
		t.Fatalf("set flood counter: %v", err)
	}

	counter, err := client.GetFloodCounter(ctx, 42)
	if err != nil {
		t.Fatalf("get flood counter: %v", err)
	}
	if counter.UserID != 42 || counter.Count != 3 {
		t.Fatalf("unexpected counter: %+v", counter)
	}
	if counter.LastTS.Unix() != ts.Unix() {
		t.Fatalf("unexpected last_ts: got %v want %v", counter.LastTS, ts)
	}
}

func TestSetFloodCounterOverwritesExisting(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	client, err := NewSQLiteClient(ctx, t.TempDir(), "test.db")
	if err != nil {
		t.Fatalf("new sqlite client: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	ts := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	if err := client.SetFloodCounter(ctx, &db.FloodCounter{UserID: 42, Count: 1, LastTS: ts}); err != nil {
		t.Fatalf("set flood counter: %v", err)
	}
	if err := client.SetFloodCounter(ctx, &db.FloodCounter{UserID: 42, Count: 2, LastTS: ts.Add(time.Second)}); err != nil {
		t.Fatalf("set flood counter again: %v", err)
	}

	counter, err := client.GetFloodCounter(ctx, 42)
	if err != nil {
		t.Fatalf("get flood counter: %v", err)
	}
	if counter.Count != 2 {
		t.Fatalf("counter not overwritten: %+v", counter)
	}
	if counter.LastTS.Unix() != ts.Add(time.Second).Unix() {
		t.Fatalf("last_ts not overwritten: %v", counter.LastTS)
	}
}
