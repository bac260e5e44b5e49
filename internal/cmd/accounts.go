package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matthieukhl/axoshard/internal/auth"
)

var (
	adminEmail    string
	adminPassword string
	adminName     string
	promoteEmail  string
)

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an admin account",
	Long: `Create an account and grant it admin rights. The password can be
given with --password or through AXOSHARD_ADMIN_PASSWORD.`,
	RunE: createAdmin,
}

var promoteCmd = &cobra.Command{
	Use:   "promote",
	Short: "Grant admin rights to an existing account",
	RunE:  promoteAccount,
}

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password <password>",
	Short: "Print the bcrypt hash of a password",
	Long: `Print the bcrypt hash of a password using the configured cost, for
seeding accounts directly into the database.`,
	Args: cobra.ExactArgs(1),
	RunE: hashPassword,
}

func init() {
	rootCmd.AddCommand(createAdminCmd)
	rootCmd.AddCommand(promoteCmd)
	rootCmd.AddCommand(hashPasswordCmd)

	createAdminCmd.Flags().StringVar(&adminEmail, "email", "", "Account email")
	createAdminCmd.Flags().StringVar(&adminPassword, "password", "", "Account password (min 6 characters)")
	createAdminCmd.Flags().StringVar(&adminName, "name", "Admin", "Display name")
	_ = createAdminCmd.MarkFlagRequired("email")

	promoteCmd.Flags().StringVar(&promoteEmail, "email", "", "Email of the account to promote")
	_ = promoteCmd.MarkFlagRequired("email")
}

func createAdmin(cmd *cobra.Command, args []string) error {
	password := adminPassword
	if password == "" {
		password = os.Getenv("AXOSHARD_ADMIN_PASSWORD")
	}
	if password == "" {
		return errors.New("password is required: use --password or AXOSHARD_ADMIN_PASSWORD")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := cmd.Context()
	svc := newAuthService(cfg, st)

	fmt.Printf("👤 Creating account %s...\n", adminEmail)
	u, err := svc.Signup(ctx, auth.SignupInput{Email: adminEmail, Password: password, Name: adminName})
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}
	if !u.IsAdmin {
		if u, err = svc.Promote(ctx, u.ID); err != nil {
			return fmt.Errorf("failed to promote account: %w", err)
		}
	}

	fmt.Printf("✅ Admin %s created (id %s)\n", u.Email, u.ID)
	return nil
}

func promoteAccount(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	u, err := newAuthService(cfg, st).PromoteByEmail(cmd.Context(), promoteEmail)
	if err != nil {
		return fmt.Errorf("failed to promote %s: %w", promoteEmail, err)
	}

	fmt.Printf("✅ %s is now an admin\n", u.Email)
	return nil
}

func hashPassword(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	hash, err := auth.NewBcryptHasher(cfg.Auth.BcryptCost).Hash(args[0])
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	fmt.Println(hash)
	return nil
}
