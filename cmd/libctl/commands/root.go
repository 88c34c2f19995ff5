package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/baharkarakas/librarium/internal/auth"
	"github.com/baharkarakas/librarium/internal/config"
	"github.com/baharkarakas/librarium/internal/db"
	"github.com/baharkarakas/librarium/internal/logger"
	"github.com/baharkarakas/librarium/internal/repository/postgres"
	"github.com/baharkarakas/librarium/internal/services"
)

var (
	cfg   config.Config
	dbURL string
)

var rootCmd = &cobra.Command{
	Use:   "libctl",
	Short: "Operator commands for the librarium service",
	Long: `libctl runs privileged operations directly against the database:
schema migrations, superuser creation, permission grants, role changes and
user deletion.

Examples:
  libctl migrate
  libctl createsuperuser --username admin --email admin@example.com --password s3cret-pass
  libctl grant --username alice --perm catalog.can_add_book
  libctl setrole --username bob --role Librarian
  libctl deleteuser --username mallory`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		slog.SetDefault(logger.New(cfg.Env))
	},
}

// Execute runs the root command
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cfg = config.Load()
	rootCmd.PersistentFlags().StringVar(&dbURL, "db", cfg.DatabaseURL, "Database connection URL")
}

func connect(ctx context.Context) (*pgxpool.Pool, error) {
	pool, err := db.NewPool(ctx, dbURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	return pool, nil
}

// withServices opens the database and runs fn against services bound to it.
func withServices(ctx context.Context, fn func(*services.Services) error) error {
	pool, err := connect(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()
	svc := services.New(services.Deps{
		Repos:  postgres.NewRepositories(pool),
		Tokens: auth.NewTokenManager(cfg.JWTAccessSecret, cfg.JWTRefreshSecret, cfg.JWTIssuer, cfg.AccessTTL, cfg.RefreshTTL),
	})
	return fn(svc)
}
