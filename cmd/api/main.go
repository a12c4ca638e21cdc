// Package main is the entrypoint for the applytrack API server.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"regexp"
	"strings"
	"syscall"

	_ "github.com/lib/pq"
	"github.com/urfave/cli/v3"

	"github.com/applytrack/applytrack/internal/auth"
	"github.com/applytrack/applytrack/internal/cache"
	"github.com/applytrack/applytrack/internal/config"
	"github.com/applytrack/applytrack/internal/handler"
	"github.com/applytrack/applytrack/internal/metrics"
	"github.com/applytrack/applytrack/internal/middleware"
	"github.com/applytrack/applytrack/internal/repository"
	"github.com/applytrack/applytrack/internal/repository/migrations"
	"github.com/applytrack/applytrack/internal/response"
	"github.com/applytrack/applytrack/internal/server"
	"github.com/applytrack/applytrack/internal/service"
	"github.com/applytrack/applytrack/internal/validation"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	envFlag := &cli.StringFlag{
		Name:  "env",
		Usage: "dotenv file loaded before reading the environment",
		Value: ".env",
	}

	app := &cli.Command{
		Name:  "applytrack",
		Usage: "job application tracking API",
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP API",
				Flags:  []cli.Flag{envFlag},
				Action: serveAction,
			},
			{
				Name:   "migrate",
				Usage:  "apply the database schema",
				Flags:  []cli.Flag{envFlag},
				Action: migrateAction,
			},
		},
		// Running without a subcommand serves the API.
		Flags:  []cli.Flag{envFlag},
		Action: serveAction,
	}

	if err := app.Run(ctx, os.Args); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

// serveAction wires dependencies and runs the HTTP server until a signal.
func serveAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := config.Load(cmd.String("env"))
	if err != nil {
		return err
	}
	logger := initLogger(cfg)

	repo, err := repository.New(ctx, cfg.DatabaseURL, repository.DefaultOptions())
	if err != nil {
		logger.Error("failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		return errors.New("connect to database")
	}
	logger.Info("connected to database")

	cacheClient, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		repo.Close()
		logger.Error("failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		return errors.New("connect to redis")
	}
	logger.Info("connected to Redis")

	metricsRecorder := metrics.NewPrometheus()
	responder := response.New(logger, cfg.IsProduction())

	manager := auth.NewManager(auth.ManagerConfig{
		Users:      repo,
		Sessions:   cacheClient,
		Logger:     logger,
		Metrics:    metricsRecorder,
		SessionTTL: cfg.SessionTTL,
		CookieName: cfg.SessionCookieName,
	})

	authService := service.NewAuthService(manager, logger)
	applicationService := service.NewApplicationService(repo, metricsRecorder, cfg.EmptyPageNotFound)

	router := handler.NewRouter(handler.RouterConfig{
		Logger:    logger,
		Responder: responder,
		Validator: validation.New(),
		Provider:  manager,
		Health:    handler.NewHealthHandler(repo, cacheClient, responder, logger),
		Auth: handler.NewAuthHandler(authService, responder, handler.CookieConfig{
			Name:   cfg.SessionCookieName,
			Secure: cfg.SessionCookieSecure,
		}, logger),
		Applications: handler.NewApplicationHandler(applicationService, responder, handler.PageConfig{
			DefaultLimit: cfg.DefaultPageSize,
			MaxLimit:     cfg.MaxPageSize,
		}),
		Metrics:        metricsRecorder,
		MetricsHandler: metricsRecorder.Handler(),
		RateLimit: middleware.RateLimitConfig{
			Logger:      logger,
			Limiter:     cacheClient,
			Responder:   responder,
			Metrics:     metricsRecorder,
			CookieName:  cfg.SessionCookieName,
			AuthEnabled: cfg.RateLimitAuthEnabled,
			AuthRPS:     cfg.RateLimitAuthRPS,
			AuthBurst:   cfg.RateLimitAuthBurst,
			APIEnabled:  cfg.RateLimitAPIEnabled,
			APIRPM:      cfg.RateLimitAPIRPM,
			APIBurst:    cfg.RateLimitAPIBurst,
		},
		Security:    middleware.SecurityConfig{IsDevelopment: cfg.IsDevelopment()},
		CORS:        middleware.DefaultCORSConfig(cfg.CORSAllowedOrigins),
		MaxBodySize: cfg.MaxRequestBodySize,
	})

	srv := server.New(router, server.Config{
		Port:            cfg.AppPort,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)
	srv.OnShutdown("postgres", func(context.Context) error {
		repo.Close()
		return nil
	})
	srv.OnShutdown("redis", func(context.Context) error {
		return cacheClient.Close()
	})

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"empty_page_not_found", cfg.EmptyPageNotFound,
	)
	return srv.Run(ctx)
}

// migrateAction applies the embedded schema over database/sql.
func migrateAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := config.Load(cmd.String("env"))
	if err != nil {
		return err
	}
	logger := initLogger(cfg)

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("open database: %s", sanitizeError(err, cfg.DatabaseURL))
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping database %s: %s", redactURL(cfg.DatabaseURL), sanitizeError(err, cfg.DatabaseURL))
	}

	names, err := migrations.Names()
	if err != nil {
		return err
	}
	if err := migrations.Apply(ctx, db); err != nil {
		return err
	}

	logger.Info("migrations applied", "count", len(names))
	return nil
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLogLevel(cfg.LogLevel)}

	var h slog.Handler
	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h).With("service", "applytrack", "env", cfg.AppEnv)
	slog.SetDefault(logger)
	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

// redactURL drops the password from a connection URL.
func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

// sanitizeError removes connection secrets from driver error messages.
func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
