// Command fleet-api runs the development auth API the console logs in
// against.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/flotacare/fleet-console/internal/api"
	"github.com/flotacare/fleet-console/internal/core/domain"
	"github.com/flotacare/fleet-console/internal/core/ports"
	"github.com/flotacare/fleet-console/internal/core/service"
	"github.com/flotacare/fleet-console/internal/infrastructure/db/memory"
	mongorepo "github.com/flotacare/fleet-console/internal/infrastructure/db/mongo"
	"github.com/flotacare/fleet-console/internal/infrastructure/http/handlers"
	"github.com/flotacare/fleet-console/internal/pkg/config"
	"github.com/flotacare/fleet-console/internal/pkg/server"
	"github.com/flotacare/fleet-console/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var envFile string
	var pretty bool

	flagSet := pflag.NewFlagSet("fleet-api", pflag.ContinueOnError)
	flagSet.StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	flagSet.BoolVar(&pretty, "pretty", false, "human-readable logs")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", envFile, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  pretty || !cfg.IsProduction(),
		Service: "fleet-api",
	})

	checks := map[string]handlers.Checker{}
	var repo ports.UserRepository
	switch cfg.Backend.UserStore {
	case "mongo":
		client, db, err := mongorepo.Connect(ctx, mongorepo.Config{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
			AppName:  "fleet-api",
		})
		if err != nil {
			return err
		}
		defer func() { _ = client.Disconnect(context.Background()) }()

		users := mongorepo.NewUserRepository(db)
		if err := users.EnsureIndexes(ctx); err != nil {
			return err
		}
		repo = users
		checks["mongodb"] = handlers.CheckFunc(func(ctx context.Context) error {
			return client.Ping(ctx, nil)
		})
	default:
		repo = memory.NewUserRepository()
	}

	auth := service.NewAuthService(repo, cfg.Backend.JWTSecret, cfg.Backend.TokenTTL)
	if err := seedAdmin(ctx, auth, cfg.Backend); err != nil {
		return err
	}

	e := api.NewBackendRouter(api.BackendDeps{
		AuthService: auth,
		JWTSecret:   cfg.Backend.JWTSecret,
		Checks:      checks,
		Log:         log,
	})

	return server.Serve(ctx, e, ":"+cfg.Backend.Port, log.With().Str("user_store", cfg.Backend.UserStore).Logger())
}

// seedAdmin creates the configured administrator once.
func seedAdmin(ctx context.Context, auth ports.AuthService, cfg config.BackendConfig) error {
	if cfg.SeedAdminMail == "" || cfg.SeedAdminPass == "" {
		return nil
	}
	_, err := auth.Register(ctx, ports.RegisterInput{
		Nombre:   "Administrador",
		Correo:   cfg.SeedAdminMail,
		Password: cfg.SeedAdminPass,
		Rol:      domain.RoleAdministrador,
	})
	if err != nil && !errors.Is(err, domain.ErrUserExists) {
		return fmt.Errorf("seed admin: %w", err)
	}
	return nil
}
