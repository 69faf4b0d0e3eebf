// Command fleet-console runs the session shell of the workshop console.
//
// @title        Fleet Console API
// @version      1.0
// @description  Session shell of the fleet workshop console.
// @BasePath     /
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
	"github.com/flotacare/fleet-console/internal/core/ports"
	"github.com/flotacare/fleet-console/internal/core/service"
	"github.com/flotacare/fleet-console/internal/infrastructure/activity"
	"github.com/flotacare/fleet-console/internal/infrastructure/apiclient"
	"github.com/flotacare/fleet-console/internal/infrastructure/db/memory"
	redisstore "github.com/flotacare/fleet-console/internal/infrastructure/db/redis"
	"github.com/flotacare/fleet-console/internal/infrastructure/db/sqlite"
	"github.com/flotacare/fleet-console/internal/infrastructure/http/handlers"
	"github.com/flotacare/fleet-console/internal/infrastructure/routes"
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
	var envFile, routesFile, port string
	var pretty bool

	flagSet := pflag.NewFlagSet("fleet-console", pflag.ContinueOnError)
	flagSet.StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	flagSet.StringVar(&routesFile, "routes", "", "route table YAML (overrides ROUTES_FILE)")
	flagSet.StringVarP(&port, "port", "p", "", "listen port (overrides CONSOLE_PORT)")
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
	if routesFile != "" {
		cfg.Console.RoutesFile = routesFile
	}
	if port != "" {
		cfg.Console.Port = port
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  pretty || !cfg.IsProduction(),
		Service: "fleet-console",
	})

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	client, err := apiclient.New(cfg.Console.APIBaseURL, cfg.Console.APITimeout, apiclient.WithTokenReader(store))
	if err != nil {
		return err
	}

	table, err := routes.Load(cfg.Console.RoutesFile)
	if err != nil {
		return err
	}

	session := service.NewSession(client, store,
		service.WithIdleTimeout(cfg.Console.IdleTimeout),
		service.WithLogger(log.With().Str("component", "session").Logger()),
	)
	defer session.Close()

	feed := activity.NewFeed(0, log.With().Str("component", "activity").Logger())
	feed.Start(ctx)
	if err := session.Attach(feed); err != nil {
		return err
	}

	go func() {
		if err := session.Initialize(ctx); err != nil {
			log.Error().Err(err).Msg("session initialization failed")
		}
	}()

	e := api.NewConsoleRouter(api.ConsoleDeps{
		Session:  session,
		Activity: feed,
		Routes:   table,
		Backend:  client,
		Checks: map[string]handlers.Checker{
			"store":   store,
			"backend": client,
		},
		WSAllowOrigin: cfg.Console.AllowOrigin,
		Log:           log,
	})

	log.Info().Dur("idle_timeout", session.IdleTimeout()).Str("store", cfg.Store.Driver).Msg("session ready")
	return server.Serve(ctx, e, ":"+cfg.Console.Port, log)
}

type credentialStore interface {
	ports.CredentialStore
	ports.Pinger
}

func openStore(ctx context.Context, cfg *config.Config) (credentialStore, func(), error) {
	switch cfg.Store.Driver {
	case "redis":
		client, err := redisstore.Connect(ctx, redisstore.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, nil, err
		}
		return redisstore.NewCredentialStore(client, cfg.Store.Profile, cfg.Store.TTL), func() { _ = client.Close() }, nil
	case "memory":
		return memory.NewCredentialStore(), func() {}, nil
	default:
		db, err := sqlite.Open(cfg.Store.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return sqlite.NewCredentialStore(db, cfg.Store.Profile), func() { _ = db.Close() }, nil
	}
}
