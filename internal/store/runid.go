package store

import (
	"github.com/google/uuid"
)

// IDGenerator produces run identifiers.
type IDGenerator interface {
	Generate() string
}

// UUIDv7 generates time-ordered run IDs, so runs sort by creation even
// before started_at is consulted.
type UUIDv7 struct{}

// Generate returns a new UUIDv7 string. It falls back to a random UUIDv4 if
// the v7 clock read fails.
func (UUIDv7) Generate() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
