// Package checkout drives a purchase from cart to recorded order:
// Begin prices the cart and opens a payment intent, Finalize records the
// paid order and takes the goods out of stock.
package checkout

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/matthieukhl/axoshard/internal/apperr"
	"github.com/matthieukhl/axoshard/internal/models"
	"github.com/matthieukhl/axoshard/internal/pricing"
	"github.com/matthieukhl/axoshard/internal/store"
	"github.com/matthieukhl/axoshard/internal/types"
	"github.com/matthieukhl/axoshard/internal/validation"
)

var (
	ErrClientTotalMismatch = apperr.New(apperr.KindConflict, "total mismatch")
	ErrOrderTotalMismatch  = apperr.New(apperr.KindValidation, "order total does not match items")
	ErrPaymentNotCompleted = apperr.New(apperr.KindConflict, "payment not completed")
	ErrPaymentAmount       = apperr.New(apperr.KindConflict, "payment amount does not match order total")
	ErrPaymentRecorded     = store.ErrPaymentRecorded
)

type Options struct {
	Currency             string
	EnforceClientTotal   bool
	VerifyIntent         bool
	RevalidateOnFinalize bool
}

type Orchestrator struct {
	validator *pricing.Validator
	catalog   store.CatalogStore
	orders    store.OrderStore
	gateway   types.PaymentGateway
	events    types.EventPublisher
	opts      Options
}

func NewOrchestrator(catalog store.CatalogStore, orders store.OrderStore, gateway types.PaymentGateway, events types.EventPublisher, opts Options) *Orchestrator {
	if opts.Currency == "" {
		opts.Currency = "usd"
	}
	return &Orchestrator{
		validator: pricing.NewValidator(catalog),
		catalog:   catalog,
		orders:    orders,
		gateway:   gateway,
		events:    events,
		opts:      opts,
	}
}

// BeginRequest is the cart as the client holds it. ExpectedTotal is the
// total the client displayed, if it sent one.
type BeginRequest struct {
	Items         []pricing.Line   `json:"items"`
	ExpectedTotal *decimal.Decimal `json:"expectedTotal,omitempty"`
}

type BeginResult struct {
	ClientSecret    string          `json:"clientSecret"`
	PaymentIntentID string          `json:"paymentIntentId"`
	Amount          decimal.Decimal `json:"amount"`
	AmountMinor     int64           `json:"amountMinor"`
	Currency        string          `json:"currency"`
}

func (r BeginResult) MarshalJSON() ([]byte, error) {
	type plain BeginResult
	return json.Marshal(struct {
		plain
		Amount string `json:"amount"`
	}{plain(r), models.FormatMoney(r.Amount)})
}

// Begin prices the cart from the catalog and opens a payment intent for
// that amount. Nothing is written and no intent is created if the cart is
// rejected.
func (o *Orchestrator) Begin(ctx context.Context, req BeginRequest) (*BeginResult, error) {
	// Step 1: Authoritative total from stored prices
	quote, err := o.validator.Validate(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	// Step 2: The client must have shown the shopper the same amount
	if o.opts.EnforceClientTotal && req.ExpectedTotal != nil && !req.ExpectedTotal.Equal(quote.Total) {
		return nil, fmt.Errorf("%w: expected %s, computed %s", ErrClientTotalMismatch,
			req.ExpectedTotal.StringFixed(2), quote.Total.StringFixed(2))
	}

	// Step 3: Open the intent in minor units
	minor := pricing.ToMinorUnits(quote.Total)
	intent, err := o.gateway.CreateIntent(ctx, minor, o.opts.Currency)
	if err != nil {
		return nil, err
	}

	return &BeginResult{
		ClientSecret:    intent.ClientSecret,
		PaymentIntentID: intent.ID,
		Amount:          quote.Total,
		AmountMinor:     minor,
		Currency:        o.opts.Currency,
	}, nil
}

// OrderInput is the customer part of a finalize request.
type OrderInput struct {
	CustomerEmail   string           `json:"customerEmail" validate:"required,email"`
	CustomerName    string           `json:"customerName" validate:"required"`
	TotalAmount     *decimal.Decimal `json:"totalAmount" validate:"required,money"`
	PaymentIntentID string           `json:"paymentIntentId" validate:"required"`
}

// ItemInput is one purchased line with the name and unit price the shopper saw.
type ItemInput struct {
	ProductID   string           `json:"productId" validate:"required"`
	ProductName string           `json:"productName" validate:"required"`
	Quantity    int              `json:"quantity" validate:"gt=0"`
	Price       *decimal.Decimal `json:"price" validate:"required,money"`
}

type FinalizeRequest struct {
	Order OrderInput  `json:"order" validate:"required"`
	Items []ItemInput `json:"items" validate:"required,min=1,dive"`
	// UserID links the order to a signed-in account; set by the HTTP layer.
	UserID *string `json:"-"`
}

// Finalize records a paid order. Once the order row exists nothing is
// rolled back: a failed stock update is reported for reconciliation.
func (o *Orchestrator) Finalize(ctx context.Context, req FinalizeRequest) (*models.OrderDetail, error) {
	req.Order.CustomerEmail = strings.TrimSpace(req.Order.CustomerEmail)
	req.Order.CustomerName = strings.TrimSpace(req.Order.CustomerName)
	req.Order.PaymentIntentID = strings.TrimSpace(req.Order.PaymentIntentID)

	// Step 1: Payload shape
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	// Step 2: The order total is the sum of its lines
	total := decimal.Zero
	for _, it := range req.Items {
		total = total.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	if !total.Equal(*req.Order.TotalAmount) {
		return nil, fmt.Errorf("%w: items sum to %s", ErrOrderTotalMismatch, total.StringFixed(2))
	}

	// Step 3: A payment pays for one order only
	if _, err := o.orders.FindOrderByPaymentIntent(ctx, req.Order.PaymentIntentID); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrPaymentRecorded, req.Order.PaymentIntentID)
	} else if apperr.KindOf(err) != apperr.KindNotFound {
		return nil, err
	}

	// Step 4: The processor must report the payment as settled
	if o.opts.VerifyIntent {
		intent, err := o.gateway.GetIntent(ctx, req.Order.PaymentIntentID)
		if err != nil {
			return nil, err
		}
		if intent.Status != types.IntentSucceeded {
			return nil, fmt.Errorf("%w: intent is %s", ErrPaymentNotCompleted, intent.Status)
		}
		if intent.Amount != pricing.ToMinorUnits(total) {
			return nil, ErrPaymentAmount
		}
	}

	// Step 5: Stock and availability may have moved since Begin
	if o.opts.RevalidateOnFinalize {
		lines := make([]pricing.Line, 0, len(req.Items))
		for _, it := range req.Items {
			lines = append(lines, pricing.Line{ProductID: it.ProductID, Quantity: it.Quantity})
		}
		if _, err := o.validator.Validate(ctx, lines); err != nil {
			return nil, err
		}
	}

	// Step 6: Record the order and its snapshot lines
	order, err := o.orders.CreateOrder(ctx, models.Order{
		UserID:          req.UserID,
		CustomerEmail:   req.Order.CustomerEmail,
		CustomerName:    req.Order.CustomerName,
		TotalAmount:     total,
		Status:          models.OrderStatusCompleted,
		PaymentIntentID: req.Order.PaymentIntentID,
	})
	if err != nil {
		return nil, err
	}

	detail := &models.OrderDetail{Order: *order, Items: make([]models.OrderItem, 0, len(req.Items))}
	for _, it := range req.Items {
		item, err := o.orders.CreateOrderItem(ctx, models.OrderItem{
			OrderID:     order.ID,
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			Price:       *it.Price,
		})
		if err != nil {
			log.Printf("checkout: order %s recorded without all items, needs reconciliation: %v", order.ID, err)
			return nil, reconciliation(order.ID, "order items", err)
		}
		detail.Items = append(detail.Items, *item)
	}

	// Step 7: Take the goods out of stock, attempting every line
	var failed []string
	var firstErr error
	for _, it := range detail.Items {
		if _, err := o.catalog.DecrementStock(ctx, it.ProductID, it.Quantity); err != nil {
			failed = append(failed, fmt.Sprintf("%s x%d", it.ProductID, it.Quantity))
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	if len(failed) > 0 {
		log.Printf("checkout: order %s recorded but stock not decremented for [%s], needs reconciliation: %v",
			order.ID, strings.Join(failed, ", "), firstErr)
		return nil, reconciliation(order.ID, "stock", firstErr)
	}

	// Step 8: Notify, best-effort
	if o.events != nil {
		if err := o.events.PublishOrderCompleted(ctx, *detail); err != nil {
			log.Printf("checkout: failed to publish order.completed for %s: %v", order.ID, err)
		}
	}

	return detail, nil
}

func reconciliation(orderID, what string, err error) error {
	return apperr.Wrap(apperr.KindPersistence, err,
		fmt.Sprintf("order %s recorded but %s update failed", orderID, what))
}
