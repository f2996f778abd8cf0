package credentials

import "time"

// User is a registered account. PasswordHash is a bcrypt hash, never the
// plaintext.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// Identity is the projection handed to callers after authentication; it is
// what gets recorded as the actor on ledger transactions.
type Identity struct {
	ID       int64
	Username string
}
