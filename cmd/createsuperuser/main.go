// Command createsuperuser provisions a verified superuser account directly
// in the database, for bootstrapping a fresh deployment.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/KazimFedxD/FinCore/internal/account"
	"github.com/KazimFedxD/FinCore/internal/config"
	"github.com/KazimFedxD/FinCore/internal/repository/postgres"
	"github.com/KazimFedxD/FinCore/migrations"
	"github.com/KazimFedxD/FinCore/pkg/database"
	"github.com/KazimFedxD/FinCore/pkg/logger"
)

func main() {
	email := flag.String("email", "", "email address for the superuser (required)")
	username := flag.String("username", "", "username (optional, derived from email when empty)")
	password := flag.String("password", "", "password (required)")
	flag.Parse()

	if *email == "" || *password == "" {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(*email, *username, *password); err != nil {
		slog.Error("create superuser failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(email, username, password string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New("fincore-createsuperuser", cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pgCfg := database.DefaultPostgresConfig()
	pgCfg.Host = cfg.PostgresHost
	pgCfg.Port = cfg.PostgresPort
	pgCfg.User = cfg.PostgresUser
	pgCfg.Password = cfg.PostgresPass
	pgCfg.DBName = cfg.PostgresDB
	pgCfg.SSLMode = cfg.PostgresSSL

	pool, err := database.NewPostgresPoolWithLogger(ctx, &pgCfg, log)
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer pool.Close()

	if err := database.RunMigrations(ctx, pool, migrations.FS, log); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	manager := account.NewManager(postgres.NewAccountRepository(pool))
	acc, err := manager.CreateSuperuser(ctx, account.CreateInput{
		Email:    email,
		Username: username,
		Password: password,
	})
	if err != nil {
		return err
	}

	log.Info("superuser created",
		slog.String("account_id", acc.ID),
		slog.String("email", acc.Email),
		slog.String("username", acc.Username),
	)
	return nil
}
