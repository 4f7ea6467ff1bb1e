package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/Astemirdum/digital-library/library/app"
	"github.com/Astemirdum/digital-library/library/migrations"
	"github.com/Astemirdum/digital-library/pkg/logger"
	"github.com/Astemirdum/digital-library/pkg/postgres"
	"github.com/jmoiron/sqlx"
	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "libraryctl",
		Short:        "Maintenance commands for the digital library database",
		SilenceUsage: true,
	}
	root.AddCommand(newMigrateCmd(), newCreateAdminCmd())
	return root
}

func newMigrateCmd() *cobra.Command {
	migrate := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or inspect the embedded schema migrations",
	}
	migrate.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: withDB(func(_ context.Context, db *sqlx.DB) error {
				return postgres.MigrateUp(db, &migrations.MigrationFiles)
			}),
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the latest migration",
			RunE: withDB(func(_ context.Context, db *sqlx.DB) error {
				return postgres.MigrateDown(db, &migrations.MigrationFiles)
			}),
		},
		&cobra.Command{
			Use:   "status",
			Short: "Print the migration status",
			RunE: withDB(func(_ context.Context, db *sqlx.DB) error {
				return postgres.MigrateStatus(db, &migrations.MigrationFiles)
			}),
		},
	)
	return migrate
}

func newCreateAdminCmd() *cobra.Command {
	var email, name, password string
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an admin account unless the email is taken",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if password == "" {
				pw, err := readPassword(cmd, "Password: ")
				if err != nil {
					return err
				}
				password = pw
			}
			return withDB(func(ctx context.Context, db *sqlx.DB) error {
				created, err := app.CreateAdmin(ctx, db, newLogger(), email, password, name)
				if err != nil {
					return err
				}
				if !created {
					cmd.Printf("account %s already exists\n", email)
					return nil
				}
				cmd.Printf("admin %s created\n", email)
				return nil
			})(cmd, nil)
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "admin email")
	cmd.Flags().StringVar(&name, "name", "", "display name, defaults to the email local part")
	cmd.Flags().StringVar(&password, "password", "", "password, prompted when empty")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

// withDB opens the pool from DB_* variables without running migrations.
func withDB(fn func(ctx context.Context, db *sqlx.DB) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		var cfg postgres.DB
		if err := envconfig.Process("", &cfg); err != nil {
			return fmt.Errorf("db config: %w", err)
		}
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		db, err := postgres.Open(ctx, &cfg)
		if err != nil {
			return err
		}
		defer func() {
			if err := db.Close(); err != nil {
				newLogger().Warn("db.Close", zap.Error(err))
			}
		}()
		return fn(ctx, db)
	}
}

func newLogger() *zap.Logger {
	return logger.NewLogger(logger.Log{LogLevel: zapcore.WarnLevel}, "libraryctl")
}

func readPassword(cmd *cobra.Command, prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("stdin is not a terminal, pass --password")
	}
	cmd.Print(prompt)
	b, err := term.ReadPassword(fd)
	cmd.Println()
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimSpace(string(b)), nil
}
