package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matthieukhl/axoshard/internal/database"
)

var dropFirst bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the storefront database schema",
	Long: `Creates the products, users, orders and order_items tables in the
configured MySQL database. Existing tables are kept unless --drop-first
is given.`,
	RunE: migrateSchema,
}

func init() {
	rootCmd.AddCommand(migrateCmd)

	migrateCmd.Flags().BoolVar(&dropFirst, "drop-first", false, "Drop existing tables before creating")
}

func migrateSchema(cmd *cobra.Command, args []string) error {
	fmt.Println("🔧 Setting up database schema...")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	db, err := database.NewConnection(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()
	if dropFirst {
		fmt.Println("🗑️  Dropping existing tables...")
		if err := db.DropSchema(ctx); err != nil {
			return fmt.Errorf("failed to drop schema: %w", err)
		}
	}

	fmt.Println("📋 Creating schema...")
	if err := db.SetupSchema(ctx); err != nil {
		return fmt.Errorf("failed to setup schema: %w", err)
	}

	fmt.Println("✅ Database schema ready!")
	return nil
}
