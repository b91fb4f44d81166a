// Command admin is the operator CLI for the back-office API. create-user is
// the only path that can assign ADMIN or SUPER_ADMIN.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"finance-backoffice/internal/adapters/persistence/models"
	"finance-backoffice/internal/app"
	"finance-backoffice/internal/config"
	"finance-backoffice/internal/core/domain"
	"finance-backoffice/internal/core/services"
	"finance-backoffice/internal/pkg/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "admin",
		Short:         "Finance back-office operator commands",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(newCreateUserCmd(), newMigrateCmd(), newPurgeCmd())
	return root
}

// env is what every command needs: config, a logger and a signal-aware context
type env struct {
	cfg *config.Config
	log *zap.Logger
	ctx context.Context
}

func setup(cmd *cobra.Command) (*env, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	zl, err := logger.New(logger.Config{Level: cfg.LogLevel, Dev: cfg.IsDev()})
	if err != nil {
		return nil, nil, err
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	cleanup := func() {
		stop()
		_ = zl.Sync()
	}
	return &env{cfg: cfg, log: zl, ctx: ctx}, cleanup, nil
}

func newCreateUserCmd() *cobra.Command {
	var (
		username string
		role     string
	)
	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create a user with any role",
		Long:  "Create a user with any role. The password is read from BACKOFFICE_PASSWORD or the first argument.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, cleanup, err := setup(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			pass := os.Getenv("BACKOFFICE_PASSWORD")
			if len(args) == 1 {
				pass = args[0]
			}
			if pass == "" {
				return fmt.Errorf("password required: pass it as an argument or set BACKOFFICE_PASSWORD")
			}

			r, ok := domain.ParseRole(strings.ToUpper(role))
			if !ok {
				return fmt.Errorf("unknown role %q", role)
			}

			stores, err := app.OpenStores(e.ctx, e.cfg, e.log)
			if err != nil {
				return err
			}
			defer stores.Close()

			svc, err := app.NewServices(e.cfg, stores, e.log, nil)
			if err != nil {
				return err
			}

			p, err := svc.Auth.CreateUser(e.ctx, services.RegisterInput{Username: username, Password: pass, Role: r})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created user %q (id %d, role %s)\n", p.Username, p.ID, p.Role)
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "username (3-50 of A-Z a-z 0-9 . _ -)")
	cmd.Flags().StringVarP(&role, "role", "r", string(domain.RoleStaff), "STAFF, ADMIN or SUPER_ADMIN")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, cleanup, err := setup(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			if e.cfg.DBDriver != "mysql" {
				return fmt.Errorf("migrate needs DB_DRIVER=mysql, got %q", e.cfg.DBDriver)
			}
			db, err := config.ConnectDatabase(e.ctx, e.cfg, e.log)
			if err != nil {
				return err
			}
			defer config.CloseDatabase(db)

			if err := models.AutoMigrate(db); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migration completed")
			return nil
		},
	}
}

func newPurgeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "purge-revoked",
		Short: "Delete expired refresh token revocations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, cleanup, err := setup(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			stores, err := app.OpenStores(e.ctx, e.cfg, e.log)
			if err != nil {
				return err
			}
			defer stores.Close()

			if stores.Purger == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "revocations expire on their own, nothing to purge")
				return nil
			}
			n, err := stores.Purger.PurgeExpired(e.ctx, time.Now().UTC())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "purged %d expired revocations\n", n)
			return nil
		},
	}
}
