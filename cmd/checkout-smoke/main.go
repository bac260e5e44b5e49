// Command checkout-smoke walks the checkout flow end to end against an
// in-process store and the mock payment gateway.
package main

import (
	"context"
	"fmt"
	"log"

	"github.com/matthieukhl/axoshard/internal/apperr"
	"github.com/matthieukhl/axoshard/internal/catalog"
	"github.com/matthieukhl/axoshard/internal/checkout"
	"github.com/matthieukhl/axoshard/internal/gateway/events"
	"github.com/matthieukhl/axoshard/internal/gateway/payment"
	"github.com/matthieukhl/axoshard/internal/models"
	"github.com/matthieukhl/axoshard/internal/pricing"
	"github.com/matthieukhl/axoshard/internal/seed"
	"github.com/matthieukhl/axoshard/internal/store"
)

func main() {
	ctx := context.Background()

	st := store.NewMemoryStore()
	svc := catalog.NewService(st)
	if _, err := seed.Apply(ctx, svc, seed.Default(), false); err != nil {
		log.Fatalf("Failed to seed catalog: %v", err)
	}
	products, err := svc.List(ctx, catalog.Filter{ActiveOnly: true})
	if err != nil {
		log.Fatalf("Failed to list products: %v", err)
	}

	orchestrator := checkout.NewOrchestrator(st, st, payment.NewMockGateway(true), events.NewLogPublisher(nil), checkout.Options{
		Currency:             "usd",
		EnforceClientTotal:   true,
		VerifyIntent:         true,
		RevalidateOnFinalize: true,
	})

	scenarios := []struct {
		name     string
		product  models.Product
		quantity int
	}{
		{name: "Two of a kind", product: products[0], quantity: 2},
		{name: "Whole shelf", product: products[3], quantity: products[3].Stock},
		{name: "More than the shelf", product: products[3], quantity: 1},
	}

	for i, sc := range scenarios {
		fmt.Printf("\n=== Scenario %d: %s ===\n", i+1, sc.name)
		fmt.Printf("Cart: %d x %s @ %s\n", sc.quantity, sc.product.Name, sc.product.Price.StringFixed(2))

		begun, err := orchestrator.Begin(ctx, checkout.BeginRequest{
			Items: []pricing.Line{{ProductID: sc.product.ID, Quantity: sc.quantity}},
		})
		if err != nil {
			fmt.Printf("Rejected (%s): %v\n", apperr.KindOf(err), err)
			continue
		}
		fmt.Printf("Intent %s for %s (%d minor units)\n", begun.PaymentIntentID, begun.Amount.StringFixed(2), begun.AmountMinor)

		price := sc.product.Price
		total := begun.Amount
		detail, err := orchestrator.Finalize(ctx, checkout.FinalizeRequest{
			Order: checkout.OrderInput{
				CustomerEmail:   "smoke@axoshard.test",
				CustomerName:    "Smoke Test",
				TotalAmount:     &total,
				PaymentIntentID: begun.PaymentIntentID,
			},
			Items: []checkout.ItemInput{{ProductID: sc.product.ID, ProductName: sc.product.Name, Quantity: sc.quantity, Price: &price}},
		})
		if err != nil {
			log.Printf("Failed to finalize order: %v", err)
			continue
		}

		after, err := st.GetProduct(ctx, sc.product.ID)
		if err != nil {
			log.Fatalf("Failed to reload product: %v", err)
		}
		fmt.Printf("Order %s %s, total %s, stock now %d\n", detail.Order.ID, detail.Order.Status, detail.Order.TotalAmount.StringFixed(2), after.Stock)
	}

	fmt.Printf("\n=== Orders Summary ===\n")
	orders, err := st.ListOrders(ctx)
	if err != nil {
		log.Fatalf("Failed to list orders: %v", err)
	}
	for i, o := range orders {
		fmt.Printf("%d. %s  %s  %s\n", i+1, o.ID, o.TotalAmount.StringFixed(2), o.PaymentIntentID)
	}

	fmt.Println("\nCheckout smoke test completed successfully!")
}
