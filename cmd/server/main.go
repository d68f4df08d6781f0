package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"catty_srv/internal/auth"
	"catty_srv/internal/config"
	"catty_srv/internal/database"
	"catty_srv/internal/server"
	"catty_srv/internal/service"
	"catty_srv/internal/storage"

	"github.com/sirupsen/logrus"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

func main() {
	app := fx.New(
		// Dependency providers
		fx.Provide(
			provideConfig,
			provideLogger,
			provideDatabase,
			storage.NewStorageFromConfig,
			provideTokenManager,
			provideTokenSigner,
			provideGoogleVerifier,
			service.NewAuthService,
			service.NewTemplateService,
			service.NewFileService,
			server.NewServer,
		),

		// Lifecycle hooks
		fx.Invoke(prepareDatabase),
		fx.Invoke(registerLifecycleHooks),
	)

	runWithGracefulShutdown(app)
}

// provideConfig loads and provides the application configuration
func provideConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// provideLogger creates and configures the logger from the configuration
func provideLogger(cfg config.Config) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = logrus.InfoLevel
		logger.WithError(err).Warn("Invalid log level, falling back to info")
	}
	logger.SetLevel(level)

	switch cfg.Logging.Format {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339,
		})
	default:
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339,
		})
	}

	logger.WithField("config", cfg.String()).Info("Starting catty service")
	return logger
}

// provideDatabase opens the database connection
func provideDatabase(cfg config.Config) (*gorm.DB, error) {
	return database.NewDatabase(database.Config{
		Driver: cfg.DB.Driver,
		DSN:    cfg.DB.DSN,
		Debug:  cfg.Server.Debug,
	})
}

// provideTokenManager builds the bearer token manager
func provideTokenManager(cfg config.Config) *auth.TokenManager {
	return auth.NewTokenManager(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLMin)*time.Minute)
}

// provideTokenSigner adapts the token manager for the auth service
func provideTokenSigner(tokens *auth.TokenManager) service.TokenSigner {
	return tokens.Sign
}

// provideGoogleVerifier builds the Google ID token verifier, or nil when
// Google sign-in is not configured
func provideGoogleVerifier(cfg config.Config) auth.GoogleVerifier {
	if cfg.Auth.GoogleClientID == "" {
		return nil
	}
	return auth.NewGoogleVerifier(cfg.Auth.GoogleClientID)
}

// prepareDatabase migrates the schema and seeds the base template
func prepareDatabase(db *gorm.DB, logger *logrus.Logger) error {
	logger.Info("Running database migrations")
	if err := database.AutoMigrate(db); err != nil {
		return err
	}
	return database.EnsureBaseTemplate(db)
}

// registerLifecycleHooks configures the application lifecycle hooks
func registerLifecycleHooks(
	srv *server.Server,
	cfg config.Config,
	logger *logrus.Logger,
	lc fx.Lifecycle,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			logger.Info("Starting HTTP server")
			go func() {
				if err := srv.Start(cfg.Server.Address); err != nil {
					logger.WithError(err).Error("Failed to start HTTP server")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("Shutting down HTTP server")
			return srv.Shutdown(ctx)
		},
	})
}

// runWithGracefulShutdown drives the application lifecycle with signal handling
func runWithGracefulShutdown(app *fx.App) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	startCtx, startCancel := context.WithTimeout(ctx, 15*time.Second)
	defer startCancel()

	if err := app.Start(startCtx); err != nil {
		logrus.WithError(err).Fatal("Failed to start application")
	}

	<-quit
	logrus.Info("Shutdown signal received")

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer stopCancel()

	if err := app.Stop(stopCtx); err != nil {
		logrus.WithError(err).Error("Error during shutdown")
		os.Exit(1)
	}

	logrus.Info("Catty service stopped cleanly")
}
