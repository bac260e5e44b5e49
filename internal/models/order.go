package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is written once per successful checkout and never updated.
type Order struct {
	ID              string          `json:"id" db:"id"`
	UserID          *string         `json:"userId" db:"user_id"`
	CustomerEmail   string          `json:"customerEmail" db:"customer_email"`
	CustomerName    string          `json:"customerName" db:"customer_name"`
	TotalAmount     decimal.Decimal `json:"totalAmount" db:"total_amount"`
	Status          string          `json:"status" db:"status"`
	PaymentIntentID string          `json:"paymentIntentId" db:"payment_intent_id"`
	CreatedAt       time.Time       `json:"createdAt" db:"created_at"`
}

// OrderItem snapshots the product name and unit price at purchase time.
type OrderItem struct {
	ID          string          `json:"id" db:"id"`
	OrderID     string          `json:"orderId" db:"order_id"`
	ProductID   string          `json:"productId" db:"product_id"`
	ProductName string          `json:"productName" db:"product_name"`
	Quantity    int             `json:"quantity" db:"quantity"`
	Price       decimal.Decimal `json:"price" db:"price"`
}

// Subtotal is quantity times the snapshot unit price.
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// OrderDetail is an order together with its line items.
type OrderDetail struct {
	Order Order       `json:"order"`
	Items []OrderItem `json:"items"`
}

// Order statuses
const (
	OrderStatusPending   = "pending"
	OrderStatusCompleted = "completed"
)
