package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matthieukhl/axoshard/internal/catalog"
	"github.com/matthieukhl/axoshard/internal/seed"
)

var (
	seedFile  string
	seedForce bool
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the product catalog",
	Long: `Populate the catalog with starter merchandise, either the built-in
Purple Axolotl collection or a YAML file given with --file.

Products go through the same defaults and validation as the admin form.
A catalog that already has products is skipped unless --force is set.`,
	RunE: seedCatalog,
}

func init() {
	rootCmd.AddCommand(seedCmd)

	seedCmd.Flags().StringVar(&seedFile, "file", "", "YAML catalog file (default: built-in catalog)")
	seedCmd.Flags().BoolVar(&seedForce, "force", false, "Add products even if the catalog is not empty")
}

func seedCatalog(cmd *cobra.Command, args []string) error {
	fmt.Println("📦 Seeding product catalog...")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	f := seed.Default()
	if seedFile != "" {
		fmt.Printf("📄 Reading %s...\n", seedFile)
		if f, err = seed.ParseFile(seedFile); err != nil {
			return err
		}
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	if st.ephemeral() {
		fmt.Println("⚠️  Memory store without store.snapshot_path: seeded data will not persist")
	}

	n, seedErr := seed.Apply(cmd.Context(), catalog.NewService(st), f, seedForce)
	if err := st.Close(); err != nil && seedErr == nil {
		seedErr = err
	}
	if seedErr != nil {
		return fmt.Errorf("failed to seed catalog: %w", seedErr)
	}

	if n == 0 {
		fmt.Println("📭 Catalog already has products, nothing to do (use --force to add anyway)")
		return nil
	}
	fmt.Printf("✅ Seeded %d products\n", n)
	return nil
}
