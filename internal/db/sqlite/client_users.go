package sqlite

import (
	"context"
	"fmt"

	"github.com/iamwavecut/securebot/internal/db"
)

func (s *sqliteClient) UpsertUser(ctx context.Context, user *db.User) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	// First write wins, later profile changes are not reflected.
	query := `
		INSERT OR IGNORE INTO users (user_id, username, first_name, last_name, added_at)
		VALUES (?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		user.ID,
		user.UserName,
		user.FirstName,
		user.LastName,
		user.AddedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert user %d: %w", user.ID, err)
	}
	return nil
}

func (s *sqliteClient) GetUserIDs(ctx context.Context) ([]int64, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var userIDs []int64
	if err := s.db.SelectContext(ctx, &userIDs, `SELECT user_id FROM users`); err != nil {
		return nil, fmt.Errorf("failed to get user ids: %w", err)
	}
	return userIDs, nil
}

func (s *sqliteClient) GetRecentUsers(ctx context.Context, limit int) ([]*db.User, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var users []*db.User
	query := `
		SELECT user_id, username, first_name, last_name, added_at
		FROM users
		ORDER BY added_at DESC
		LIMIT ?
	`
	if err := s.db.SelectContext(ctx, &users, query, limit); err != nil {
		return nil, fmt.Errorf("failed to get recent users: %w", err)
	}
	return users, nil
}
