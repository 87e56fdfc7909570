package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iamwavecut/securebot/internal/db"
)

func (s *sqliteClient) GetFloodCounter(ctx context.Context, userID int64) (*db.FloodCounter, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var counter db.FloodCounter
	err := s.db.GetContext(ctx, &counter,
		`SELECT user_id, count, last_ts FROM flood_counters WHERE user_id = ?`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, db.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get flood counter for user %d: %w", userID, err)
	}
	return &counter, nil
}

func (s *sqliteClient) SetFloodCounter(ctx context.Context, counter *db.FloodCounter) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	query := `
		INSERT INTO flood_counters (user_id, count, last_ts)
		VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
		count = excluded.count,
		last_ts = excluded.last_ts
	`
	_, err := s.db.ExecContext(ctx, query, counter.UserID, counter.Count, counter.LastTS)
	if err != nil {
		return fmt.Errorf("failed to set flood counter for user %d: %w", counter.UserID, err)
	}
	return nil
}
