package entity

import (
	"time"

	"github.com/google/uuid"
)

// Record is the id and creation stamp every table row carries.
type Record struct {
	ID        uuid.UUID `db:"id"`
	CreatedAt time.Time `db:"created_at"`
}

func NewRecord(now time.Time) Record {
	return Record{ID: uuid.New(), CreatedAt: now.UTC()}
}

// Audited is a Record that is also edited and soft deleted.
type Audited struct {
	Record
	UpdatedAt time.Time  `db:"updated_at"`
	DeletedAt *time.Time `db:"deleted_at"`
}

func NewAudited(now time.Time) Audited {
	return Audited{Record: NewRecord(now), UpdatedAt: now.UTC()}
}
