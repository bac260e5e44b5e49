// Package store holds the catalog, order and user collections behind
// interfaces so the checkout flow does not depend on a backend.
package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/matthieukhl/axoshard/internal/apperr"
	"github.com/matthieukhl/axoshard/internal/models"
)

var (
	ErrNotFound          = apperr.New(apperr.KindNotFound, "not found")
	ErrDuplicateEmail    = apperr.New(apperr.KindConflict, "duplicate account")
	ErrInsufficientStock = apperr.New(apperr.KindConflict, "insufficient stock")
	ErrPaymentRecorded   = apperr.New(apperr.KindConflict, "payment already recorded")
)

// CatalogStore holds product records.
type CatalogStore interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	CreateProduct(ctx context.Context, p models.Product) (*models.Product, error)
	// UpdateProduct replaces every mutable field of the product with id.
	UpdateProduct(ctx context.Context, id string, p models.Product) (*models.Product, error)
	// DeleteProduct reports whether a record existed.
	DeleteProduct(ctx context.Context, id string) (bool, error)
	SetProductActive(ctx context.Context, id string, active bool) (*models.Product, error)
	// DecrementStock subtracts qty only if the result stays non-negative.
	DecrementStock(ctx context.Context, id string, qty int) (*models.Product, error)
}

// OrderStore is append-only: there is no update or delete.
type OrderStore interface {
	// CreateOrder fails with ErrPaymentRecorded if another order already
	// carries the same payment intent id.
	CreateOrder(ctx context.Context, o models.Order) (*models.Order, error)
	FindOrderByPaymentIntent(ctx context.Context, intentID string) (*models.Order, error)
	CreateOrderItem(ctx context.Context, item models.OrderItem) (*models.OrderItem, error)
	ListOrders(ctx context.Context) ([]models.Order, error)
	GetOrder(ctx context.Context, id string) (*models.OrderDetail, error)
}

// UserStore holds accounts. Email lookups are case-insensitive.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	GetUser(ctx context.Context, id string) (*models.User, error)
	CreateUser(ctx context.Context, u models.User) (*models.User, error)
	// CreateAccount is CreateUser with IsAdmin decided at insert time: true
	// only when no other account exists.
	CreateAccount(ctx context.Context, u models.User) (*models.User, error)
	CountUsers(ctx context.Context) (int, error)
	SetAdmin(ctx context.Context, id string, admin bool) (*models.User, error)
}

// Store bundles the three collections.
type Store interface {
	CatalogStore
	OrderStore
	UserStore
	HealthCheck(ctx context.Context) error
	Close() error
}

// IDGenerator produces record identities.
type IDGenerator interface {
	NewID() string
}

// UUIDGenerator issues random v4 UUIDs.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID() string {
	return uuid.NewString()
}
