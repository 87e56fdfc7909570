package db

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("not found")

type Client interface {
	Close() error

	// User registry methods
	UpsertUser(ctx context.Context, user *User) error
	GetUserIDs(ctx context.Context) ([]int64, error)
	GetRecentUsers(ctx context.Context, limit int) ([]*User, error)

	// Flood counter methods
	GetFloodCounter(ctx context.Context, userID int64) (*FloodCounter, error)
	SetFloodCounter(ctx context.Context, counter *FloodCounter) error
}
