package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/iamwavecut/securebot/internal/db"
)

func TestUpsertUserFirstWriteWins(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	client, err := NewSQLiteClient(ctx, t.TempDir(), "test.db")
	if err != nil {
		t.Fatalf("new sqlite client: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	added := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	original := &db.User{ID: 42, UserName: "original", FirstName: "First", LastName: "User", AddedAt: added}
	if err := client.UpsertUser(ctx, original); err != nil {
		t.Fatalf("upsert user: %v", err)
	}

	renamed := &db.User{ID: 42, UserName: "renamed", FirstName: "Changed", AddedAt: added.Add(time.Hour)}
	if err := client.UpsertUser(ctx, renamed); err != nil {
		t.Fatalf("upsert user again: %v", err)
	}

	users, err := client.GetRecentUsers(ctx, 10)
	if err != nil {
		t.Fatalf("get recent users: %v", err)
	}
	if len(users) != 1 {
		t.Fatalf("expected 1 user, got %d", len(users))
	}
	if users[0].UserName != "original" || users[0].FirstName != "First" {
		t.Fatalf("second write overwrote the record: %+v", users[0])
	}
}

func TestGetRecentUsersNewestFirst(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	client, err := NewSQLiteClient(ctx, t.TempDir(), "test.db")
	if err != nil {
		t.Fatalf("new sqlite client: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	for i := int64(1); i <= 3; i++ {
		user := &db.User{ID: i, UserName: "user", AddedAt: base.Add(time.Duration(i) * time.Minute)}
		if err := client.UpsertUser(ctx, user); err != nil {
			t.Fatalf("upsert user %d: %v", i, err)
		}
	}

	users, err := client.GetRecentUsers(ctx, 2)
	if err != nil {
		t.Fatalf("get recent users: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}
	if users[0].ID != 3 || users[1].ID != 2 {
		t.Fatalf("unexpected order: got ids %d, %d", users[0].ID, users[1].ID)
	}
}

func TestGetUserIDsReturnsAllRegistered(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	client, err := NewSQLiteClient(ctx, t.TempDir(), "test.db")
	if err != nil {
		t.Fatalf("new sqlite client: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	ids, err := client.GetUserIDs(ctx)
	if err != nil {
		t.Fatalf("get user ids: %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("expected empty registry, got %v", ids)
	}

	added := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	for _, id := range []int64{10, 20, 30} {
		if err := client.UpsertUser(ctx, &db.User{ID: id, AddedAt: added}); err != nil {
			t.Fatalf("upsert user %d: %v", id, err)
		}
	}

	ids, err = client.GetUserIDs(ctx)
	if err != nil {
		t.Fatalf("get user ids: %v", err)
	}
	if len(ids) != 3 {
		t.Fatalf("expected 3 ids, got %v", ids)
	}
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		seen[id] = struct{}{}
	}
	for _, id := range []int64{10, 20, 30} {
		if _, ok := seen[id]; !ok {
			t.Fatalf("id %d missing from %v", id, ids)
		}
	}
}
