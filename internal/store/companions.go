package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/antojitos/comanda/internal/model"
)

// ListCompanions returns all companions ordered by ID.
func (s *Store) ListCompanions(ctx context.Context) ([]model.Companion, error) {
	var companions []model.Companion
	if err := s.db.SelectContext(ctx, &companions, `SELECT * FROM companions ORDER BY companion_id`); err != nil {
		return nil, fmt.Errorf("list companions: %w", err)
	}
	return companions, nil
}

// GetCompanion returns one companion by ID.
func (s *Store) GetCompanion(ctx context.Context, id int64) (*model.Companion, error) {
	var c model.Companion
	q := s.rebind(`SELECT * FROM companions WHERE companion_id = ?`)
	if err := s.db.GetContext(ctx, &c, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get companion: %w", err)
	}
	return &c, nil
}

// CreateCompanion inserts a new companion and fills in its assigned ID.
func (s *Store) CreateCompanion(ctx context.Context, c *model.Companion) error {
	c.CreatedAt = time.Now().UTC()
	q := s.rebind(`INSERT INTO companions (name, price, companion_type, created_at) VALUES (?, ?, ?, ?)`)

	if s.driver == "postgres" {
		row := s.db.QueryRowContext(ctx, q+` RETURNING companion_id`, c.Name, c.Price, c.CompanionType, c.CreatedAt)
		if err := row.Scan(&c.CompanionID); err != nil {
			return fmt.Errorf("insert companion: %w", err)
		}
		return nil
	}

	res, err := s.db.ExecContext(ctx, q, c.Name, c.Price, c.CompanionType, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert companion: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("get companion id: %w", err)
	}
	c.CompanionID = id
	return nil
}

// UpdateCompanion replaces the mutable fields of a companion.
func (s *Store) UpdateCompanion(ctx context.Context, c *model.Companion) error {
	q := s.rebind(`UPDATE companions SET name = ?, price = ?, companion_type = ? WHERE companion_id = ?`)
	res, err := s.db.ExecContext(ctx, q, c.Name, c.Price, c.CompanionType, c.CompanionID)
	if err != nil {
		return fmt.Errorf("update companion: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteCompanion removes a companion by ID.
func (s *Store) DeleteCompanion(ctx context.Context, id int64) error {
	q := s.rebind(`DELETE FROM companions WHERE companion_id = ?`)
	res, err := s.db.ExecContext(ctx, q, id)
	if err != nil {
		return fmt.Errorf("delete companion: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
