package model

import "time"

// Product is a menu item. ProductSizes holds the comma-separated size labels
// offered for the product (e.g. "chica,mediana,grande"). InitiallyShow marks
// the product as highlighted on the storefront landing page; at most five
// products may be highlighted at once.
type Product struct {
	ProductID     int64     `json:"product_id" db:"product_id"`
	Name          string    `json:"name" db:"name"`
	Description   string    `json:"description" db:"description"`
	Price         float64   `json:"price" db:"price"`
	ProductType   string    `json:"product_type" db:"product_type"`
	ProductSizes  string    `json:"product_sizes" db:"product_sizes"`
	ImageURL      string    `json:"image_url" db:"image_url"`
	InitiallyShow bool      `json:"initially_show" db:"initially_show"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// Companion is an add-on that can accompany a product in an order.
type Companion struct {
	CompanionID   int64     `json:"companion_id" db:"companion_id"`
	Name          string    `json:"name" db:"name"`
	Price         float64   `json:"price" db:"price"`
	CompanionType string    `json:"companion_type" db:"companion_type"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}
