package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/matthieukhl/axoshard/internal/catalog"
	"github.com/matthieukhl/axoshard/internal/checkout"
	"github.com/matthieukhl/axoshard/internal/gateway"
	"github.com/matthieukhl/axoshard/internal/seed"
	"github.com/matthieukhl/axoshard/internal/server"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the storefront API server",
	Long: `Start the storefront API server which provides:
- Public catalog and checkout endpoints
- Account signup, login and sessions
- Admin catalog and order management`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runServer(cmd *cobra.Command, args []string) error {
	fmt.Println("🚀 Axoshard Storefront Starting...")

	fmt.Println("📝 Loading configuration...")
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	gin.SetMode(cfg.Server.Mode)

	fmt.Printf("🔌 Opening %s store...\n", cfg.Store.Driver)
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			log.Printf("failed to close store: %v", err)
		}
	}()
	fmt.Println("✅ Store ready")
	if n, err := st.CountUsers(cmd.Context()); err == nil && n == 0 {
		fmt.Println("👤 No accounts yet: the first signup becomes admin")
	}

	catalogSvc := catalog.NewService(st)
	if st.memory != nil {
		n, err := seed.Apply(cmd.Context(), catalogSvc, seed.Default(), false)
		if err != nil {
			return fmt.Errorf("failed to seed catalog: %w", err)
		}
		if n > 0 {
			fmt.Printf("📦 Seeded %d products into the empty catalog\n", n)
		}
	}

	fmt.Printf("💳 Payment provider: %s\n", cfg.Payment.Provider)
	payments, err := gateway.NewPaymentGateway(&cfg.Payment)
	if err != nil {
		return fmt.Errorf("failed to create payment gateway: %w", err)
	}
	uploader, err := gateway.NewImageUploader(&cfg.Images)
	if err != nil {
		return fmt.Errorf("failed to create image uploader: %w", err)
	}
	publisher, err := gateway.NewEventPublisher(&cfg.Events)
	if err != nil {
		return fmt.Errorf("failed to create event publisher: %w", err)
	}
	defer publisher.Close()

	tokens, err := newTokenIssuer(&cfg.Auth)
	if err != nil {
		return err
	}

	fmt.Println("⚙️  Setting up server...")
	srv := server.NewServer(server.Deps{
		Store:   st,
		Catalog: catalogSvc,
		Auth:    newAuthService(cfg, st),
		Tokens:  tokens,
		Checkout: checkout.NewOrchestrator(st, st, payments, publisher, checkout.Options{
			Currency:             cfg.Payment.Currency,
			EnforceClientTotal:   cfg.Checkout.EnforceClientTotal,
			VerifyIntent:         cfg.Checkout.VerifyIntent,
			RevalidateOnFinalize: cfg.Checkout.RevalidateOnFinalize,
		}),
		Images: uploader,
	}, server.Options{
		ProtectAdminRoutes: cfg.Auth.ProtectAdminRoutes,
		SecureCookie:       cfg.Auth.SecureCookie,
	})
	if !cfg.Auth.ProtectAdminRoutes {
		fmt.Println("⚠️  Admin routes are NOT protected (auth.protect_admin_routes=false)")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	st.flushEvery(ctx, cfg.Store.SnapshotInterval)

	errCh := make(chan error, 1)
	go func() {
		fmt.Printf("🌐 Starting server on %s...\n", cfg.Server.Addr)
		errCh <- srv.Start(cfg.Server.Addr)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	fmt.Println("🛑 Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down cleanly: %w", err)
	}
	return nil
}
