package domain

import "github.com/shopspring/decimal"

type Category struct {
	ID          string `db:"id" json:"id"`
	Name        string `db:"name" json:"name"`
	Slug        string `db:"slug" json:"slug"`
	Description string `db:"description" json:"description"`
	CreatedAt   string `db:"created_at" json:"created_at"`
	UpdatedAt   string `db:"updated_at" json:"updated_at"`
}

type Product struct {
	ID           string  `db:"id" json:"id"`
	CategoryID   *string `db:"category_id" json:"category_id"`
	CategoryName *string `db:"category_name" json:"category_name,omitempty"`
	CategorySlug *string `db:"category_slug" json:"category_slug,omitempty"`
	Name         string  `db:"name" json:"name"`
	Description  string  `db:"description" json:"description"`
	Price        Money   `db:"price" json:"price"`
	Stock        int     `db:"stock" json:"stock"`
	Available    bool    `db:"available" json:"available"`
	CreatedAt    string  `db:"created_at" json:"created_at"`
	UpdatedAt    string  `db:"updated_at" json:"updated_at"`
}

// ProductFilter narrows catalog listings; zero values mean "no filter".
type ProductFilter struct {
	CategoryID string
	Available  *bool
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	Search     string
	Ordering   string // name | price | created_at, "-" prefix for descending
}

type Cart struct {
	ID        string     `db:"id" json:"id"`
	UserID    string     `db:"user_id" json:"user_id"`
	CreatedAt string     `db:"created_at" json:"created_at"`
	UpdatedAt string     `db:"updated_at" json:"updated_at"`
	Items     []CartItem `db:"-" json:"items"`
	Total     Money      `db:"-" json:"total"`
}

// CartItem carries the product's current price; the cart never freezes prices.
type CartItem struct {
	ID          string `db:"id" json:"id"`
	CartID      string `db:"cart_id" json:"-"`
	ProductID   string `db:"product_id" json:"product_id"`
	ProductName string `db:"product_name" json:"product_name"`
	UnitPrice   Money  `db:"unit_price" json:"unit_price"`
	Quantity    int    `db:"quantity" json:"quantity"`
	AddedAt     string `db:"added_at" json:"added_at"`
}

func (it CartItem) Subtotal() Money {
	return NewMoney(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))))
}

type Order struct {
	ID          string      `db:"id" json:"id"`
	UserID      string      `db:"user_id" json:"user_id"`
	TotalAmount Money       `db:"total_amount" json:"total_amount"`
	Status      OrderStatus `db:"status" json:"status"`
	OrderedAt   string      `db:"ordered_at" json:"ordered_at"`
	UpdatedAt   string      `db:"updated_at" json:"updated_at"`
	Items       []OrderItem `db:"-" json:"items"`
}

// OrderItem.Price is the unit price captured at checkout.
type OrderItem struct {
	ID          string `db:"id" json:"id"`
	OrderID     string `db:"order_id" json:"order_id"`
	ProductID   string `db:"product_id" json:"product_id"`
	ProductName string `db:"product_name" json:"product_name"`
	Quantity    int    `db:"quantity" json:"quantity"`
	Price       Money  `db:"price" json:"price"`
}

// Page is the paginated envelope returned by list endpoints.
type Page[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// Availability is the coarse stock signal shown to shoppers.
type Availability struct {
	ProductID string `json:"product_id"`
	Status    string `json:"status"`
	Qty       int    `json:"qty"`
}
