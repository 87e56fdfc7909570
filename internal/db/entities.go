package db

import "time"

type (
	// User is the durable registry record for a Telegram user. It is
	// written once, on first contact, and never updated afterwards.
	User struct {
		ID        int64     `db:"user_id"`
		UserName  string    `db:"username"`
		FirstName string    `db:"first_name"`
		LastName  string    `db:"last_name"`
		AddedAt   time.Time `db:"added_at"`
	}

	// FloodCounter tracks how many messages a user sent inside the
	// current flood window. LastTS is the timestamp of the message
	// that produced Count.
	FloodCounter struct {
		UserID int64     `db:"user_id"`
		Count  int       `db:"count"`
		LastTS time.Time `db:"last_ts"`
	}
)
