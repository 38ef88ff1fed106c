package model

import "time"

// Order is a submitted customer order. OrderMsg holds the formatted text
// that was dispatched over WhatsApp when the order came in, so staff see the
// same summary in both places. OrderState is false while the order is
// pending and true once completed.
type Order struct {
	OrderID       int64     `json:"order_id" db:"order_id"`
	ClientName    string    `json:"client_name" db:"client_name"`
	ClientEmail   string    `json:"client_email" db:"client_email"`
	ClientPhone   string    `json:"client_phone" db:"client_phone"`
	DeliveryDate  string    `json:"delivery_date" db:"delivery_date"`
	DeliveryTime  string    `json:"delivery_time" db:"delivery_time"`
	PaymentMethod string    `json:"payment_method" db:"payment_method"`
	OrderMsg      string    `json:"order_msg" db:"order_msg"`
	OrderState    bool      `json:"order_state" db:"order_state"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// CartItem is one line of an incoming order payload. Complements is a
// comma-separated list of companion names chosen for the item.
type CartItem struct {
	Name        string  `json:"name"`
	ProductSize string  `json:"product_size"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
	Complements string  `json:"complements"`
}
