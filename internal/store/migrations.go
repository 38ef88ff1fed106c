package store

import (
	"fmt"
	"strings"
)

func (s *Store) migrate() error {
	serial := "INTEGER PRIMARY KEY AUTOINCREMENT"
	boolDefaultFalse := "INTEGER NOT NULL DEFAULT 0"
	boolDefaultTrue := "INTEGER NOT NULL DEFAULT 1"
	switch s.driver {
	case "postgres":
		serial = "BIGSERIAL PRIMARY KEY"
		boolDefaultFalse = "BOOLEAN NOT NULL DEFAULT FALSE"
		boolDefaultTrue = "BOOLEAN NOT NULL DEFAULT TRUE"
	case "mysql":
		serial = "BIGINT AUTO_INCREMENT PRIMARY KEY"
	}

	migrations := []string{
		`CREATE TABLE IF NOT EXISTS administrators (
			admin_code TEXT PRIMARY KEY,
			account_name TEXT UNIQUE NOT NULL,
			password_hash TEXT NOT NULL,
			login_attempts INTEGER NOT NULL DEFAULT 0,
			blocked_until TIMESTAMP,
			last_attempt TIMESTAMP,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS revoked_tokens (
			token TEXT PRIMARY KEY,
			expires_at TIMESTAMP NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS products (
			product_id {{serial}},
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			price REAL NOT NULL,
			product_type TEXT NOT NULL,
			product_sizes TEXT NOT NULL DEFAULT '',
			image_url TEXT NOT NULL DEFAULT '',
			initially_show {{boolFalse}},
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS companions (
			companion_id {{serial}},
			name TEXT NOT NULL,
			price REAL NOT NULL,
			companion_type TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS orders (
			order_id {{serial}},
			client_name TEXT NOT NULL,
			client_email TEXT NOT NULL DEFAULT '',
			client_phone TEXT NOT NULL DEFAULT '',
			delivery_date TEXT NOT NULL DEFAULT '',
			delivery_time TEXT NOT NULL DEFAULT '',
			payment_method TEXT NOT NULL DEFAULT '',
			order_msg TEXT NOT NULL DEFAULT '',
			order_state {{boolFalse}},
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS schedules (
			id {{serial}},
			day TEXT UNIQUE NOT NULL,
			enabled {{boolTrue}},
			start_time TEXT,
			end_time TEXT
		)`,

		`CREATE INDEX IF NOT EXISTS idx_orders_state ON orders(order_state)`,
		`CREATE INDEX IF NOT EXISTS idx_products_type ON products(product_type)`,
	}

	r := strings.NewReplacer(
		"{{serial}}", serial,
		"{{boolFalse}}", boolDefaultFalse,
		"{{boolTrue}}", boolDefaultTrue,
	)
	for _, m := range migrations {
		stmt := r.Replace(m)
		if _, err := s.db.Exec(stmt); err != nil {
			// Re-running CREATE INDEX on MySQL lacks IF NOT EXISTS support
			// in older versions; tolerate duplicates.
			if strings.Contains(strings.ToLower(err.Error()), "duplicate") {
				continue
			}
			return fmt.Errorf("migration failed: %w\nstatement: %s", err, stmt)
		}
	}
	return nil
}
