package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/matthieukhl/axoshard/internal/models"
	"github.com/matthieukhl/axoshard/internal/types"
)

// LogPublisher writes events to the process log instead of a broker.
type LogPublisher struct {
	logger *log.Logger
}

func NewLogPublisher(logger *log.Logger) *LogPublisher {
	if logger == nil {
		logger = log.Default()
	}
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) PublishOrderCompleted(ctx context.Context, detail models.OrderDetail) error {
	body, err := json.Marshal(NewOrderCompleted(detail, time.Now()))
	if err != nil {
		return fmt.Errorf("could not marshal order event: %w", err)
	}
	p.logger.Printf("event %s %s", RoutingOrderCompleted, body)
	return nil
}

func (p *LogPublisher) Close() error { return nil }

// Discard drops every event.
type Discard struct{}

func (Discard) PublishOrderCompleted(ctx context.Context, detail models.OrderDetail) error {
	return nil
}

func (Discard) Close() error { return nil }

var (
	_ types.EventPublisher = (*LogPublisher)(nil)
	_ types.EventPublisher = Discard{}
)
