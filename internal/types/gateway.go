package types

import (
	"context"
	"io"

	"github.com/matthieukhl/axoshard/internal/models"
)

// PaymentGateway creates and inspects payment intents at the processor
type PaymentGateway interface {
	CreateIntent(ctx context.Context, amountMinor int64, currency string) (*PaymentIntent, error)
	GetIntent(ctx context.Context, id string) (*PaymentIntent, error)
	Name() string
}

// PaymentIntent is the processor's record of a pending or settled charge
type PaymentIntent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"clientSecret"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
	Status       string `json:"status"`
}

// Intent statuses the checkout cares about
const (
	IntentRequiresPayment = "requires_payment_method"
	IntentSucceeded       = "succeeded"
	IntentCanceled        = "canceled"
)

// ImageUploader stores product images and returns a public URL
type ImageUploader interface {
	Upload(ctx context.Context, filename string, r io.Reader) (*UploadedImage, error)
}

type UploadedImage struct {
	URL      string `json:"imageUrl"`
	PublicID string `json:"publicId"`
}

// EventPublisher announces completed orders to downstream consumers
type EventPublisher interface {
	PublishOrderCompleted(ctx context.Context, detail models.OrderDetail) error
	Close() error
}
