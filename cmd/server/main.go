package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/contrib/otelfiber/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/pressly/goose/v3"

	_ "github.com/jackc/pgx/v5/stdlib"

	"portal-service/internal/api"
	"portal-service/internal/config"
	"portal-service/internal/events"
	"portal-service/internal/jwt"
	"portal-service/internal/model"
	"portal-service/internal/repository"
	"portal-service/internal/s3"
	"portal-service/internal/service"
	"portal-service/internal/tracing"
	_ "portal-service/migrations"
)

const serviceName = "portal-service"

func main() {
	if err := godotenv.Load(".env.dev"); err != nil {
		fmt.Println("No .env.dev file found, reading from environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	level, _ := cfg.SlogLevel()
	api.SetupGlobalHandler(os.Stdout, serviceName, level)

	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		db := connectDB(cfg)
		defer db.Close()
		if err := runMigrations(db); err != nil {
			fatal("goose: failed to run migrations", err)
		}
		slog.Info("Migrations applied successfully")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.TracingEnabled {
		shutdownTracer, err := tracing.InitTracerProvider(ctx, serviceName, cfg.OTLPEndpoint)
		if err != nil {
			fatal("Failed to initialize OpenTelemetry", err)
		}
		defer func() {
			if err := shutdownTracer(context.Background()); err != nil {
				slog.Error("Error shutting down tracer provider", slog.String("error", err.Error()))
			}
		}()
	}

	db := connectDB(cfg)
	defer db.Close()

	if cfg.DBAutoMigrate {
		if err := runMigrations(db); err != nil {
			fatal("goose: failed to run migrations", err)
		}
	}

	issuer, err := jwt.NewIssuer(cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		fatal("Failed to create token issuer", err)
	}

	var publisher events.EventPublisher = events.NopPublisher{}
	if cfg.NATSURL != "" {
		natsPublisher, err := events.NewNatsPublisher(cfg.NATSURL)
		if err != nil {
			fatal("Failed to connect to NATS", err)
		}
		defer natsPublisher.Close()
		publisher = natsPublisher
		slog.Info("Successfully connected to NATS")
	}

	usuarioRepo := repository.NewPostgresUsuarioRepository(db)

	authService := service.NewAuthService(usuarioRepo, issuer, publisher)
	usuarioService := service.NewUsuarioService(usuarioRepo, publisher)

	created, err := authService.EnsureAdmin(ctx, cfg.AdminPassword)
	if err != nil {
		fatal("Failed to seed admin account", err)
	}
	if created {
		slog.Info("Admin account created", slog.String("correo", model.AdminCorreo))
	}

	var presigner api.FotoPresigner
	if cfg.S3.Enabled() {
		filePresigner, err := s3.NewFilePresigner(ctx, cfg.S3)
		if err != nil {
			fatal("Failed to configure S3 presigner", err)
		}
		presigner = filePresigner
	} else {
		slog.Warn("S3 is not configured, photo upload URLs are disabled")
	}

	app := fiber.New(fiber.Config{
		AppName:      serviceName,
		ErrorHandler: api.ErrorHandler,
	})
	app.Use(otelfiber.Middleware())
	app.Use(api.PrometheusMiddleware())

	api.SetupRoutes(app, issuer,
		api.NewAuthHandler(authService),
		api.NewUsuarioHandler(usuarioService, presigner),
		api.RateLimit{Max: cfg.RateLimitMax, Expiration: cfg.RateLimitExpiration},
	)

	go func() {
		slog.Info("Listening", slog.String("service", serviceName), slog.String("port", cfg.Port))
		if err := app.Listen(":" + cfg.Port); err != nil {
			fatal("Server stopped", err)
		}
	}()

	<-ctx.Done()
	stop()

	if err := app.Shutdown(); err != nil {
		slog.Error("Server shutdown failed", slog.String("error", err.Error()))
	}
	slog.Info("Server stopped")
}

func connectDB(cfg *config.Config) *sqlx.DB {
	db, err := sqlx.Connect("pgx", cfg.DSN())
	if err != nil {
		fatal("Failed to connect to database", err)
	}
	slog.Info("Successfully connected to the database")
	return db
}

func runMigrations(db *sqlx.DB) error {
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return goose.Up(db.DB, "migrations")
}

func fatal(msg string, err error) {
	slog.Error(msg, slog.String("error", err.Error()))
	os.Exit(1)
}
