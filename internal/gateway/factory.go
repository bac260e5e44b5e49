package gateway

import (
	"fmt"
	"log"

	"github.com/matthieukhl/axoshard/internal/config"
	"github.com/matthieukhl/axoshard/internal/gateway/events"
	"github.com/matthieukhl/axoshard/internal/gateway/images"
	"github.com/matthieukhl/axoshard/internal/gateway/payment"
	"github.com/matthieukhl/axoshard/internal/types"
)

// NewPaymentGateway creates a payment gateway based on configuration
func NewPaymentGateway(cfg *config.PaymentConfig) (types.PaymentGateway, error) {
	switch cfg.Provider {
	case "stripe":
		return payment.NewStripeGateway(config.ResolveSecret(cfg.APIKey, cfg.APIKeyEnv))
	case "mock":
		return payment.NewMockGateway(cfg.MockAutoConfirm), nil
	default:
		return nil, fmt.Errorf("unsupported payment provider: %s", cfg.Provider)
	}
}

// NewImageUploader creates an image uploader based on configuration
func NewImageUploader(cfg *config.ImagesConfig) (types.ImageUploader, error) {
	switch cfg.Provider {
	case "cloudinary":
		return images.NewCloudinaryUploader(config.ResolveSecret(cfg.URL, cfg.URLEnv), cfg.Folder)
	case "none", "":
		return images.Disabled{}, nil
	default:
		return nil, fmt.Errorf("unsupported images provider: %s", cfg.Provider)
	}
}

// NewEventPublisher creates an order event publisher based on configuration
func NewEventPublisher(cfg *config.EventsConfig) (types.EventPublisher, error) {
	switch cfg.Provider {
	case "rabbitmq":
		return events.NewRabbitMQPublisher(cfg.URL, cfg.Exchange)
	case "log":
		return events.NewLogPublisher(log.Default()), nil
	case "none", "":
		return events.Discard{}, nil
	default:
		return nil, fmt.Errorf("unsupported events provider: %s", cfg.Provider)
	}
}
