package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/antojitos/comanda/internal/model"
)

// ProductFilter narrows a product listing. Zero value lists everything.
type ProductFilter struct {
	Type          string // filter by product_type
	HighlightOnly bool   // only products with initially_show set
}

// ListProducts returns products matching the filter, ordered by ID.
func (s *Store) ListProducts(ctx context.Context, filter ProductFilter) ([]model.Product, error) {
	q := `SELECT * FROM products`
	var args []interface{}
	switch {
	case filter.HighlightOnly:
		q += ` WHERE initially_show = ?`
		args = append(args, true)
	case filter.Type != "":
		q += ` WHERE product_type = ?`
		args = append(args, filter.Type)
	}
	q += ` ORDER BY product_id`

	var products []model.Product
	if err := s.db.SelectContext(ctx, &products, s.rebind(q), args...); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

// GetProduct returns one product by ID.
func (s *Store) GetProduct(ctx context.Context, id int64) (*model.Product, error) {
	var p model.Product
	q := s.rebind(`SELECT * FROM products WHERE product_id = ?`)
	if err := s.db.GetContext(ctx, &p, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return &p, nil
}

// CreateProduct inserts a new product and fills in its assigned ID.
func (s *Store) CreateProduct(ctx context.Context, p *model.Product) error {
	p.CreatedAt = time.Now().UTC()
	q := s.rebind(`INSERT INTO products
		(name, description, price, product_type, product_sizes, image_url, initially_show, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)

	if s.driver == "postgres" {
		// LastInsertId is not supported by pgx; use RETURNING instead.
		row := s.db.QueryRowContext(ctx, q+` RETURNING product_id`,
			p.Name, p.Description, p.Price, p.ProductType, p.ProductSizes, p.ImageURL, p.InitiallyShow, p.CreatedAt)
		if err := row.Scan(&p.ProductID); err != nil {
			return fmt.Errorf("insert product: %w", err)
		}
		return nil
	}

	res, err := s.db.ExecContext(ctx, q,
		p.Name, p.Description, p.Price, p.ProductType, p.ProductSizes, p.ImageURL, p.InitiallyShow, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("get product id: %w", err)
	}
	p.ProductID = id
	return nil
}

// UpdateProduct replaces the mutable fields of a product.
func (s *Store) UpdateProduct(ctx context.Context, p *model.Product) error {
	q := s.rebind(`UPDATE products
		SET name = ?, description = ?, price = ?, product_type = ?, product_sizes = ?, image_url = ?
		WHERE product_id = ?`)
	res, err := s.db.ExecContext(ctx, q,
		p.Name, p.Description, p.Price, p.ProductType, p.ProductSizes, p.ImageURL, p.ProductID)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// SetProductHighlight toggles the storefront highlight flag on one product.
func (s *Store) SetProductHighlight(ctx context.Context, id int64, highlight bool) error {
	q := s.rebind(`UPDATE products SET initially_show = ? WHERE product_id = ?`)
	res, err := s.db.ExecContext(ctx, q, highlight, id)
	if err != nil {
		return fmt.Errorf("set product highlight: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// CountHighlightedProducts returns how many products are currently
// highlighted. The handler enforces the maximum of five.
func (s *Store) CountHighlightedProducts(ctx context.Context) (int, error) {
	var count int
	q := s.rebind(`SELECT COUNT(*) FROM products WHERE initially_show = ?`)
	if err := s.db.GetContext(ctx, &count, q, true); err != nil {
		return 0, fmt.Errorf("count highlighted products: %w", err)
	}
	return count, nil
}

// DeleteProduct removes a product by ID.
func (s *Store) DeleteProduct(ctx context.Context, id int64) error {
	q := s.rebind(`DELETE FROM products WHERE product_id = ?`)
	res, err := s.db.ExecContext(ctx, q, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
