package domain

import "time"

// User is the domain entity for an account. PasswordHash is opaque to
// everything outside the user service.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}
