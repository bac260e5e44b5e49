// Package events announces completed orders. Delivery is best-effort and
// never blocks or undoes a checkout.
package events

import (
	"time"

	"github.com/matthieukhl/axoshard/internal/models"
)

const RoutingOrderCompleted = "order.completed"

// OrderCompleted carries amounts as fixed two-decimal strings.
type OrderCompleted struct {
	Type            string      `json:"type"`
	OrderID         string      `json:"orderId"`
	UserID          *string     `json:"userId,omitempty"`
	CustomerEmail   string      `json:"customerEmail"`
	TotalAmount     string      `json:"totalAmount"`
	PaymentIntentID string      `json:"paymentIntentId"`
	Items           []EventItem `json:"items"`
	OccurredAt      time.Time   `json:"occurredAt"`
}

type EventItem struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
	Price     string `json:"price"`
}

func NewOrderCompleted(detail models.OrderDetail, at time.Time) OrderCompleted {
	items := make([]EventItem, 0, len(detail.Items))
	for _, it := range detail.Items {
		items = append(items, EventItem{ProductID: it.ProductID, Quantity: it.Quantity, Price: models.FormatMoney(it.Price)})
	}
	return OrderCompleted{
		Type:            RoutingOrderCompleted,
		OrderID:         detail.Order.ID,
		UserID:          detail.Order.UserID,
		CustomerEmail:   detail.Order.CustomerEmail,
		TotalAmount:     models.FormatMoney(detail.Order.TotalAmount),
		PaymentIntentID: detail.Order.PaymentIntentID,
		Items:           items,
		OccurredAt:      at.UTC(),
	}
}
