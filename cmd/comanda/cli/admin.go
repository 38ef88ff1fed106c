package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"

	"github.com/antojitos/comanda/internal/model"
	"github.com/antojitos/comanda/internal/store"
)

func newAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage administrator accounts",
		Long:  "Create, list, and delete the administrator accounts that can log in to the back-office API.",
	}

	cmd.AddCommand(newAdminCreateCmd())
	cmd.AddCommand(newAdminListCmd())
	cmd.AddCommand(newAdminDeleteCmd())

	return cmd
}

// openStore connects to the database named by the active configuration.
func openStore() (*store.Store, error) {
	return store.Open(store.Config{
		Driver: viper.GetString("database.driver"),
		DSN:    viper.GetString("database.dsn"),
	})
}

// ---------- admin create ----------

func newAdminCreateCmd() *cobra.Command {
	var (
		name     string
		password string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new administrator account",
		Example: `  comanda admin create --name chef
  comanda admin create --name chef --password secreto123  # non-interactive`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdminCreate(name, password)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Account name (required)")
	cmd.Flags().StringVar(&password, "password", "", "Password (prompted if omitted)")
	cmd.MarkFlagRequired("name")

	return cmd
}

func runAdminCreate(name, password string) error {
	name = strings.TrimSpace(name)
	if len(name) < 4 || len(name) > 15 {
		return fmt.Errorf("account name must be between 4 and 15 characters")
	}

	if password == "" {
		fmt.Print("Password: ")
		pwBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		fmt.Println()
		password = string(pwBytes)

		fmt.Print("Confirm password: ")
		confirmBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err != nil {
			return fmt.Errorf("failed to read confirmation: %w", err)
		}
		fmt.Println()

		if password != string(confirmBytes) {
			return fmt.Errorf("passwords do not match")
		}
	}

	if len(password) < 8 || len(password) > 25 {
		return fmt.Errorf("password must be between 8 and 25 characters")
	}

	st, err := openStore()
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	admin := &model.Administrator{
		AdminCode:    uuid.NewString(),
		AccountName:  name,
		PasswordHash: string(hash),
	}
	if err := st.CreateAdministrator(context.Background(), admin); err != nil {
		return fmt.Errorf("create administrator: %w", err)
	}

	fmt.Printf("Created administrator %q (admin_code %s)\n", name, admin.AdminCode)
	return nil
}

// ---------- admin list ----------

func newAdminListCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List administrator accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdminList(cmd, jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

func runAdminList(cmd *cobra.Command, jsonOutput bool) error {
	st, err := openStore()
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	admins, err := st.ListAdministrators(context.Background())
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(admins)
	}

	if len(admins) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No administrators found.")
		return nil
	}
	for _, a := range admins {
		fmt.Fprintf(cmd.OutOrStdout(), "%-38s %-16s %s\n", a.AdminCode, a.AccountName, a.CreatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

// ---------- admin delete ----------

func newAdminDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <admin_code>",
		Short: "Delete an administrator account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore()
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer st.Close()

			if err := st.DeleteAdministrator(context.Background(), args[0]); err != nil {
				return fmt.Errorf("delete administrator: %w", err)
			}
			fmt.Printf("Deleted administrator %s\n", args[0])
			return nil
		},
	}
	return cmd
}
