package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/antojitos/comanda/internal/model"
)

// CreateAdministrator inserts a new administrator account. AdminCode must be
// set by the caller; CreatedAt is filled in here.
func (s *Store) CreateAdministrator(ctx context.Context, admin *model.Administrator) error {
	admin.CreatedAt = time.Now().UTC()

	q := s.rebind(`INSERT INTO administrators
		(admin_code, account_name, password_hash, login_attempts, created_at)
		VALUES (?, ?, ?, 0, ?)`)
	if _, err := s.db.ExecContext(ctx, q, admin.AdminCode, admin.AccountName, admin.PasswordHash, admin.CreatedAt); err != nil {
		return fmt.Errorf("insert administrator: %w", err)
	}
	return nil
}

// GetAdministratorByName returns an administrator by account name.
func (s *Store) GetAdministratorByName(ctx context.Context, accountName string) (*model.Administrator, error) {
	var admin model.Administrator
	q := s.rebind(`SELECT * FROM administrators WHERE account_name = ?`)
	if err := s.db.GetContext(ctx, &admin, q, accountName); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get administrator by name: %w", err)
	}
	return &admin, nil
}

// ListAdministrators returns all administrator accounts ordered by creation
// time. Only the public columns are selected.
func (s *Store) ListAdministrators(ctx context.Context) ([]model.Administrator, error) {
	var admins []model.Administrator
	const q = `SELECT admin_code, account_name, created_at FROM administrators ORDER BY created_at`
	if err := s.db.SelectContext(ctx, &admins, q); err != nil {
		return nil, fmt.Errorf("list administrators: %w", err)
	}
	return admins, nil
}

// DeleteAdministrator removes an administrator by admin code.
func (s *Store) DeleteAdministrator(ctx context.Context, adminCode string) error {
	q := s.rebind(`DELETE FROM administrators WHERE admin_code = ?`)
	res, err := s.db.ExecContext(ctx, q, adminCode)
	if err != nil {
		return fmt.Errorf("delete administrator: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateLoginState persists the lockout bookkeeping for one administrator
// after a login attempt: the consecutive failure count, the lockout window
// end (nil clears it), and the attempt timestamp.
//
// This is a plain read-then-write from the caller's perspective: two
// concurrent failed attempts may both observe the same pre-increment counter
// and race on this update. The backing store's per-row semantics decide the
// winner.
func (s *Store) UpdateLoginState(ctx context.Context, adminCode string, attempts int, blockedUntil *time.Time, lastAttempt time.Time) error {
	q := s.rebind(`UPDATE administrators
		SET login_attempts = ?, blocked_until = ?, last_attempt = ?
		WHERE admin_code = ?`)
	if _, err := s.db.ExecContext(ctx, q, attempts, blockedUntil, lastAttempt, adminCode); err != nil {
		return fmt.Errorf("update login state: %w", err)
	}
	return nil
}

// HasAnyAdministrator reports whether at least one administrator exists.
// Used at startup to warn about a fresh, unmanageable deployment.
func (s *Store) HasAnyAdministrator(ctx context.Context) (bool, error) {
	var count int
	if err := s.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM administrators`); err != nil {
		return false, fmt.Errorf("count administrators: %w", err)
	}
	return count > 0, nil
}
