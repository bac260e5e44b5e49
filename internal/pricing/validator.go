// Package pricing computes the authoritative total for a cart from stored
// prices and rejects carts the catalog cannot fill.
package pricing

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/matthieukhl/axoshard/internal/apperr"
	"github.com/matthieukhl/axoshard/internal/models"
	"github.com/matthieukhl/axoshard/internal/store"
)

var (
	ErrEmptyCart          = apperr.New(apperr.KindValidation, "empty cart")
	ErrInvalidQuantity    = apperr.New(apperr.KindValidation, "quantity must be a positive integer")
	ErrUnknownProduct     = apperr.New(apperr.KindNotFound, "unknown product")
	ErrProductUnavailable = apperr.New(apperr.KindConflict, "product unavailable")
	ErrInsufficientStock  = store.ErrInsufficientStock
)

// Line is one cart entry as sent by the client. Size and Price are accepted
// for compatibility and never affect the total.
type Line struct {
	ProductID string           `json:"productId"`
	Quantity  int              `json:"quantity"`
	Size      string           `json:"size,omitempty"`
	Price     *decimal.Decimal `json:"price,omitempty"`
}

// QuotedLine is a cart line priced from the catalog.
type QuotedLine struct {
	Product  models.Product  `json:"product"`
	Quantity int             `json:"quantity"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

type Quote struct {
	Lines []QuotedLine    `json:"lines"`
	Total decimal.Decimal `json:"total"`
}

// ProductReader is the part of the catalog the validator needs.
type ProductReader interface {
	GetProduct(ctx context.Context, id string) (*models.Product, error)
}

type Validator struct {
	products ProductReader
}

func NewValidator(products ProductReader) *Validator {
	return &Validator{products: products}
}

// Validate prices every line from the store and checks active flags and
// stock. It never mutates anything.
func (v *Validator) Validate(ctx context.Context, lines []Line) (*Quote, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	merged, err := merge(lines)
	if err != nil {
		return nil, err
	}

	quote := &Quote{Lines: make([]QuotedLine, 0, len(merged)), Total: decimal.Zero}
	for _, l := range merged {
		p, err := v.products.GetProduct(ctx, l.ProductID)
		if err != nil {
			if apperr.KindOf(err) == apperr.KindNotFound {
				return nil, fmt.Errorf("%w: %s", ErrUnknownProduct, l.ProductID)
			}
			return nil, err
		}
		if !p.IsActive {
			return nil, fmt.Errorf("%w: %s", ErrProductUnavailable, p.Name)
		}
		if l.Quantity > p.Stock {
			return nil, fmt.Errorf("%w: %s", ErrInsufficientStock, p.Name)
		}

		subtotal := p.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
		quote.Lines = append(quote.Lines, QuotedLine{Product: *p, Quantity: l.Quantity, Subtotal: subtotal})
		quote.Total = quote.Total.Add(subtotal)
	}
	return quote, nil
}

// merge sums quantities of repeated product ids, keeping first-seen order,
// so stock is checked against the combined demand.
func merge(lines []Line) ([]Line, error) {
	index := make(map[string]int, len(lines))
	out := make([]Line, 0, len(lines))
	for _, l := range lines {
		if l.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
		if l.ProductID == "" {
			return nil, apperr.New(apperr.KindValidation, "productId is required")
		}
		if i, ok := index[l.ProductID]; ok {
			out[i].Quantity += l.Quantity
			continue
		}
		index[l.ProductID] = len(out)
		out = append(out, Line{ProductID: l.ProductID, Quantity: l.Quantity})
	}
	return out, nil
}

// ToMinorUnits converts a currency amount to integer cents, rounding half up.
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}

// FromMinorUnits is the inverse of ToMinorUnits.
func FromMinorUnits(minor int64) decimal.Decimal {
	return decimal.New(minor, -2)
}
