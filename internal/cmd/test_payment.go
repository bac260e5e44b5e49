package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/matthieukhl/axoshard/internal/gateway"
	"github.com/matthieukhl/axoshard/internal/pricing"
)

var testAmount string

var testPaymentCmd = &cobra.Command{
	Use:   "test-payment",
	Short: "Test the payment provider connection",
	Long: `Create a payment intent with the configured provider and read it back.
This helps verify API keys and connectivity before taking real orders.`,
	RunE: testPaymentProvider,
}

func init() {
	rootCmd.AddCommand(testPaymentCmd)

	testPaymentCmd.Flags().StringVar(&testAmount, "amount", "1.00", "Amount to open the test intent for")
}

func testPaymentProvider(cmd *cobra.Command, args []string) error {
	fmt.Println("🧪 Testing payment provider connection...")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	amount, err := decimal.NewFromString(testAmount)
	if err != nil {
		return fmt.Errorf("invalid amount %q: %w", testAmount, err)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	fmt.Printf("💳 Creating intent with %s for %s %s...\n", cfg.Payment.Provider, amount.StringFixed(2), cfg.Payment.Currency)
	gw, err := gateway.NewPaymentGateway(&cfg.Payment)
	if err != nil {
		return fmt.Errorf("failed to create payment gateway: %w", err)
	}

	intent, err := gw.CreateIntent(ctx, pricing.ToMinorUnits(amount), cfg.Payment.Currency)
	if err != nil {
		return fmt.Errorf("failed to create intent: %w", err)
	}
	fmt.Printf("   ✅ Created %s (%d minor units, status %s)\n", intent.ID, intent.Amount, intent.Status)

	fetched, err := gw.GetIntent(ctx, intent.ID)
	if err != nil {
		return fmt.Errorf("failed to read intent back: %w", err)
	}
	fmt.Printf("   ✅ Read back %s, status %s\n", fetched.ID, fetched.Status)

	fmt.Println("\n🎉 Payment provider is working correctly!")
	return nil
}
