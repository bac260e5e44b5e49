package payment

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/matthieukhl/axoshard/internal/types"
)

// MockGateway keeps intents in memory for development and tests.
type MockGateway struct {
	mu          sync.Mutex
	autoConfirm bool
	intents     map[string]types.PaymentIntent
}

// NewMockGateway returns a gateway whose intents start as succeeded when
// autoConfirm is set, and otherwise wait for Confirm.
func NewMockGateway(autoConfirm bool) *MockGateway {
	return &MockGateway{
		autoConfirm: autoConfirm,
		intents:     make(map[string]types.PaymentIntent),
	}
}

func (g *MockGateway) CreateIntent(ctx context.Context, amountMinor int64, currency string) (*types.PaymentIntent, error) {
	if amountMinor <= 0 {
		return nil, gatewayError(fmt.Errorf("amount must be positive, got %d", amountMinor))
	}

	id := "pi_mock_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:24]
	status := types.IntentRequiresPayment
	if g.autoConfirm {
		status = types.IntentSucceeded
	}
	pi := types.PaymentIntent{
		ID:           id,
		ClientSecret: id + "_secret_mock",
		Amount:       amountMinor,
		Currency:     strings.ToLower(currency),
		Status:       status,
	}

	g.mu.Lock()
	g.intents[id] = pi
	g.mu.Unlock()
	return &pi, nil
}

func (g *MockGateway) GetIntent(ctx context.Context, id string) (*types.PaymentIntent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	pi, ok := g.intents[id]
	if !ok {
		return nil, gatewayError(fmt.Errorf("no such payment intent: %s", id))
	}
	return &pi, nil
}

// Confirm marks an intent as paid, standing in for the client-side step.
func (g *MockGateway) Confirm(id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	pi, ok := g.intents[id]
	if !ok {
		return fmt.Errorf("no such payment intent: %s", id)
	}
	pi.Status = types.IntentSucceeded
	g.intents[id] = pi
	return nil
}

func (g *MockGateway) Name() string {
	return "mock"
}

// Compile-time interface check
var _ types.PaymentGateway = (*MockGateway)(nil)
