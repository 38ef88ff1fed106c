package store

import (
	"context"
	"fmt"
	"time"

	"github.com/antojitos/comanda/internal/model"
)

// OrderFilter narrows an order listing by completion state. Zero value lists
// everything.
type OrderFilter struct {
	State *bool // nil = all, true = completed, false = incomplete
}

// ListOrders returns orders matching the filter, ordered by ID.
func (s *Store) ListOrders(ctx context.Context, filter OrderFilter) ([]model.Order, error) {
	q := `SELECT * FROM orders`
	var args []interface{}
	if filter.State != nil {
		q += ` WHERE order_state = ?`
		args = append(args, *filter.State)
	}
	q += ` ORDER BY order_id`

	var orders []model.Order
	if err := s.db.SelectContext(ctx, &orders, s.rebind(q), args...); err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

// CreateOrder inserts a new order and fills in its assigned ID. New orders
// always start incomplete.
func (s *Store) CreateOrder(ctx context.Context, o *model.Order) error {
	o.CreatedAt = time.Now().UTC()
	o.OrderState = false
	q := s.rebind(`INSERT INTO orders
		(client_name, client_email, client_phone, delivery_date, delivery_time, payment_method, order_msg, order_state, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)

	if s.driver == "postgres" {
		row := s.db.QueryRowContext(ctx, q+` RETURNING order_id`,
			o.ClientName, o.ClientEmail, o.ClientPhone, o.DeliveryDate, o.DeliveryTime, o.PaymentMethod, o.OrderMsg, o.OrderState, o.CreatedAt)
		if err := row.Scan(&o.OrderID); err != nil {
			return fmt.Errorf("insert order: %w", err)
		}
		return nil
	}

	res, err := s.db.ExecContext(ctx, q,
		o.ClientName, o.ClientEmail, o.ClientPhone, o.DeliveryDate, o.DeliveryTime, o.PaymentMethod, o.OrderMsg, o.OrderState, o.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("get order id: %w", err)
	}
	o.OrderID = id
	return nil
}

// UpdateOrderState marks an order completed or pending.
func (s *Store) UpdateOrderState(ctx context.Context, id int64, state bool) error {
	q := s.rebind(`UPDATE orders SET order_state = ? WHERE order_id = ?`)
	res, err := s.db.ExecContext(ctx, q, state, id)
	if err != nil {
		return fmt.Errorf("update order state: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
