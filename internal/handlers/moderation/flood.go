package handlers

import (
	"context"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/iamwavecut/securebot/internal/config"
	"github.com/iamwavecut/securebot/internal/db"
)

type floodStore interface {
	GetFloodCounter(ctx context.Context, userID int64) (*db.FloodCounter, error)
	SetFloodCounter(ctx context.Context, counter *db.FloodCounter) error
}

// FloodDetector keeps a per-user message counter inside a trailing time
// window. A window gap resets the counter instead of decaying it, which
// keeps the state O(1) per user with no background sweeping.
type FloodDetector struct {
	store  floodStore
	window time.Duration
	limit  int
	logger *log.Entry
}

func NewFloodDetector(store floodStore, cfg config.FloodControl) *FloodDetector {
	return &FloodDetector{
		store:  store,
		window: cfg.Window,
		limit:  cfg.Limit,
		logger: log.WithField("context", "flood_detector"),
	}
}

// Track counts one message from the user at the given time and returns the
// counter value it produced.
func (d *FloodDetector) Track(ctx context.Context, userID int64, now time.Time) (int, error) {
	counter, err := d.store.GetFloodCounter(ctx, userID)
	if err != nil && !errors.Is(err, db.ErrNotFound) {
		return 0, errors.WithMessage(err, "cant get flood counter")
	}

	count := nextCount(counter, now, d.window)
	if err := d.store.SetFloodCounter(ctx, &db.FloodCounter{
		UserID: userID,
		Count:  count,
		LastTS: now,
	}); err != nil {
		return 0, errors.WithMessage(err, "cant set flood counter")
	}
	return count, nil
}

// Exceeded reports whether the count constitutes flooding.
func (d *FloodDetector) Exceeded(count int) bool {
	return d.limit > 0 && count >= d.limit
}

// nextCount applies the window policy. The window expires only when the
// gap strictly exceeds it; a message arriving exactly on the boundary
// still counts toward the current window.
func nextCount(counter *db.FloodCounter, now time.Time, window time.Duration) int {
	if counter == nil {
		return 1
	}
	if now.Sub(counter.LastTS) > window {
		return 1
	}
	return counter.Count + 1
}
