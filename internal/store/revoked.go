package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// RevokeToken inserts a session token into the revocation ledger with its
// signed expiry. Re-revoking the same token is a no-op.
func (s *Store) RevokeToken(ctx context.Context, token string, expiresAt time.Time) error {
	q := s.rebind(`INSERT INTO revoked_tokens (token, expires_at) VALUES (?, ?)`)
	if _, err := s.db.ExecContext(ctx, q, token, expiresAt); err != nil {
		if isDuplicateKey(err) {
			return nil
		}
		return fmt.Errorf("insert revoked token: %w", err)
	}
	return nil
}

// IsTokenRevoked reports whether the token appears in the revocation ledger.
// A store failure here must be distinguishable from "not revoked": the admin
// gate surfaces it as a server error rather than admitting the request.
func (s *Store) IsTokenRevoked(ctx context.Context, token string) (bool, error) {
	var exists int
	q := s.rebind(`SELECT 1 FROM revoked_tokens WHERE token = ?`)
	if err := s.db.GetContext(ctx, &exists, q, token); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check revoked token: %w", err)
	}
	return true, nil
}

// PurgeExpiredTokens deletes ledger entries whose signed expiry has passed;
// such tokens are rejected by expiry alone so the rows only take up space.
func (s *Store) PurgeExpiredTokens(ctx context.Context, now time.Time) (int64, error) {
	q := s.rebind(`DELETE FROM revoked_tokens WHERE expires_at < ?`)
	res, err := s.db.ExecContext(ctx, q, now)
	if err != nil {
		return 0, fmt.Errorf("purge revoked tokens: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
