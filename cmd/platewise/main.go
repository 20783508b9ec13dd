package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/terraincognita07/platewise/internal/api"
	"github.com/terraincognita07/platewise/internal/auth"
	"github.com/terraincognita07/platewise/internal/cli"
	"github.com/terraincognita07/platewise/internal/config"
	"github.com/terraincognita07/platewise/internal/logging"
	"github.com/terraincognita07/platewise/internal/metrics"
	"github.com/terraincognita07/platewise/internal/services"
	"github.com/terraincognita07/platewise/internal/store"
)

const usage = `usage: platewise [command]

commands:
  serve                      run the HTTP server (default)
  issue-token -user <id>     print a bearer token for a user
  generate-secret            print a random SECRET_KEY value
  recompute -user <id>       rebuild every stored summary of a user`

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	command, rest := splitCommand(args)

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := logging.New(cfg.AppEnv, os.Stdout)

	switch command {
	case "serve":
		return serve(cfg, logger)
	case "issue-token":
		return cli.RunIssueTokenCommand(cfg.SecretKey, cfg.TokenTTL, rest, stdout)
	case "generate-secret":
		return cli.RunGenerateSecretCommand(stdout)
	case "recompute":
		flags := flag.NewFlagSet("recompute", flag.ContinueOnError)
		flags.SetOutput(io.Discard)
		userID := flags.String("user", "", "user id whose summaries are rebuilt")
		if err := flags.Parse(rest); err != nil {
			return fmt.Errorf("parse recompute flags: %w", err)
		}
		return cli.RunRecomputeCommand(context.Background(), cfg.DBPath, *userID, stdout, logger)
	case "help", "-h", "--help":
		_, err := fmt.Fprintln(stdout, usage)
		return err
	default:
		return fmt.Errorf("unknown command %q\n%s", command, usage)
	}
}

func splitCommand(args []string) (string, []string) {
	if len(args) == 0 || strings.HasPrefix(args[0], "-") && args[0] != "-h" && args[0] != "--help" {
		return "serve", args
	}
	return args[0], args[1:]
}

func resolveSecretKey(cfg config.AppConfig) (string, error) {
	if err := auth.ValidateSecret(cfg.SecretKey); err != nil {
		return "", fmt.Errorf("SECRET_KEY: %w", err)
	}
	return strings.TrimSpace(cfg.SecretKey), nil
}

func resolvePort(cfg config.AppConfig) (string, error) {
	if cfg.Port < 1 || cfg.Port > 65535 {
		return "", fmt.Errorf("PORT must be between 1 and 65535, got %d", cfg.Port)
	}
	return fmt.Sprintf("%d", cfg.Port), nil
}

func newRegistry() *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics.MustRegister(registry)
	return registry
}

func serve(cfg config.AppConfig, logger zerolog.Logger) error {
	secretKey, err := resolveSecretKey(cfg)
	if err != nil {
		return err
	}
	port, err := resolvePort(cfg)
	if err != nil {
		return err
	}
	location := cfg.Location()
	time.Local = location

	database, err := store.OpenSQLite(cfg.DBPath, logger)
	if err != nil {
		return fmt.Errorf("database init failed: %w", err)
	}

	lifecycleCtx, cancelLifecycle := context.WithCancel(context.Background())
	defer cancelLifecycle()

	options := []store.Option{store.WithLogger(logger)}
	var relay *store.RedisRelay
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		defer client.Close()
		relay = store.NewRedisRelay(client, cfg.Redis.Channel, logger)
		options = append(options, store.WithRelay(relay))
	}
	documents := store.New(database, options...)
	if relay != nil {
		go func() {
			if err := relay.Run(lifecycleCtx, documents); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error().Err(err).Msg("change relay stopped")
			}
		}()
	}

	pending := services.NewPendingDays()
	aggregation := services.NewAggregationService(documents, pending, logger)
	meals := services.NewMealService(documents, aggregation, logger)
	targets := services.NewTargetService(documents, logger)

	reconciler := services.NewReconciler(aggregation, pending, logger)
	if err := reconciler.Start(cfg.ReconcileSchedule); err != nil {
		return err
	}
	defer reconciler.Stop()

	issuer, err := auth.NewIssuer(secretKey, cfg.TokenTTL)
	if err != nil {
		return fmt.Errorf("token issuer init failed: %w", err)
	}

	handler, err := api.NewHandler(api.Dependencies{
		Meals:     meals,
		Foods:     services.NewFoodService(documents, aggregation, logger),
		Summaries: aggregation,
		Live:      services.NewLiveQueryService(documents, meals, aggregation, logger),
		Targets:   targets,
		Scores:    services.NewScoringService(targets, aggregation),
		Tokens:    issuer,
		Lifecycle: lifecycleCtx,
		Gatherer:  newRegistry(),
		Logger:    logger,
		Location:  location,
	})
	if err != nil {
		return fmt.Errorf("handler init failed: %w", err)
	}

	app := fiber.New(fiber.Config{
		AppName:               "Platewise",
		DisableStartupMessage: true,
	})
	app.Use(recover.New())
	app.Use(fiberlogger.New())
	api.RegisterRoutes(app, handler)
	app.Use(handler.NotFound)

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	go func() {
		<-sigCtx.Done()
		cancelLifecycle()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("server shutdown failed")
		}
	}()

	logger.Info().
		Str("port", port).
		Str("db", cfg.DBPath).
		Str("tz", location.String()).
		Bool("relay", relay != nil).
		Msg("platewise listening")
	if err := app.Listen(":" + port); err != nil {
		return fmt.Errorf("server exited: %w", err)
	}
	return nil
}
