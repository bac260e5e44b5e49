package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matthieukhl/axoshard/internal/catalog"
	"github.com/matthieukhl/axoshard/internal/models"
)

var (
	stockBelow   int
	showInactive bool
)

var inventoryCmd = &cobra.Command{
	Use:   "inventory",
	Short: "Show catalog stock levels",
	Long: `List products with their price, stock and availability. Use --below
to show only products running low.`,
	RunE: showInventory,
}

func init() {
	rootCmd.AddCommand(inventoryCmd)

	inventoryCmd.Flags().IntVar(&stockBelow, "below", 0, "Only show products with stock below this level (0 shows all)")
	inventoryCmd.Flags().BoolVar(&showInactive, "inactive", true, "Include deactivated products")
}

func showInventory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	products, err := catalog.NewService(st).List(cmd.Context(), catalog.Filter{ActiveOnly: !showInactive})
	if err != nil {
		return fmt.Errorf("failed to list products: %w", err)
	}

	rows := lowStock(products, stockBelow)
	if len(rows) == 0 {
		fmt.Println("📭 No products match")
		return nil
	}

	fmt.Printf("\n📋 %d product%s:\n", len(rows), plural(len(rows)))
	fmt.Println(strings.Repeat("─", 80))
	for _, p := range rows {
		status := "🟢"
		if !p.IsActive {
			status = "⚪"
		} else if p.Stock == 0 {
			status = "🔴"
		}
		fmt.Printf("%s %-36s %8s  stock %4d  %s\n", status, truncateText(p.Name, 36), p.Price.StringFixed(2), p.Stock, p.ID)
	}
	return nil
}

func lowStock(products []models.Product, below int) []models.Product {
	if below <= 0 {
		return products
	}
	out := make([]models.Product, 0, len(products))
	for _, p := range products {
		if p.Stock < below {
			out = append(out, p)
		}
	}
	return out
}

func truncateText(text string, maxLen int) string {
	if len(text) <= maxLen {
		return text
	}
	return text[:maxLen-3] + "..."
}

func plural(count int) string {
	if count == 1 {
		return ""
	}
	return "s"
}
