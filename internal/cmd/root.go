package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matthieukhl/axoshard/internal/config"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "storefront",
	Short: "Axoshard storefront backend",
	Long: `Axoshard serves the storefront API: the product catalog, checkout
against a payment processor, accounts, and catalog administration.

Run it as a server, or use the CLI commands to prepare the database,
seed the catalog and manage admin accounts.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: search ./deploy, ., $HOME/.axoshard, /etc/axoshard)")
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadConfigFile(configPath)
	} else {
		cfg, err = config.LoadConfig()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}
