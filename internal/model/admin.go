package model

import "time"

// Administrator is an account that can manage the catalog and orders through
// the admin API. Passwords are stored as bcrypt hashes. The lockout columns
// are mutated on every login attempt: LoginAttempts counts consecutive
// failures and BlockedUntil, when set, must lie in the future at the moment
// it is written.
type Administrator struct {
	AdminCode     string     `json:"admin_code" db:"admin_code"`
	AccountName   string     `json:"account_name" db:"account_name"`
	PasswordHash  string     `json:"-" db:"password_hash"` // bcrypt hash, never expose
	LoginAttempts int        `json:"-" db:"login_attempts"`
	BlockedUntil  *time.Time `json:"-" db:"blocked_until"`
	LastAttempt   *time.Time `json:"-" db:"last_attempt"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
}

// RevokedToken is a ledger entry for a session token that must no longer be
// accepted even though its signature and expiry may still be valid. Entries
// are written on logout and on refresh replacement.
type RevokedToken struct {
	Token     string    `db:"token"`
	ExpiresAt time.Time `db:"expires_at"`
}
