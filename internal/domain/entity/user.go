package entity

import "time"

// User is the locally registered mirror of a GitHub account. The ID is the
// provider's numeric user id, not a generated key, so upserts on login are
// stable across sessions.
type User struct {
	ID        int64
	Login     string
	Name      string
	Email     *string // nil when the provider withheld the email
	CreatedAt time.Time
	UpdatedAt time.Time
}
