package entity

import (
	"time"

	"github.com/google/uuid"
)

type Review struct {
	ID           uuid.UUID  `db:"id"`
	Content      string     `db:"content"`
	Rating       *int       `db:"rating"` // 1-10, optional
	CreatedAtUtc time.Time  `db:"created_at_utc"`
	UpdatedAtUtc *time.Time `db:"updated_at_utc"`
	UserID       uuid.UUID  `db:"user_id"`
	MovieID      uuid.UUID  `db:"movie_id"`
	Version      int        `db:"version"`
}

// LastActivity is the later of creation and last edit
func (r *Review) LastActivity() time.Time {
	if r.UpdatedAtUtc != nil && r.UpdatedAtUtc.After(r.CreatedAtUtc) {
		return *r.UpdatedAtUtc
	}
	return r.CreatedAtUtc
}

type ReviewWithMovie struct {
	Review
	MovieTitle string `db:"movie_title"`
}
