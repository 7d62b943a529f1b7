package main

import (
	"fmt"
	"os"

	"gastos/internal/config"
	"gastos/internal/database"
	"gastos/internal/logger"
	"gastos/internal/middleware"
	"gastos/internal/notify"
	"gastos/internal/server"
	"gastos/internal/validator"
)

// @title           Gastos API
// @version         1.0
// @description     Personal finance backend: movements, categories, budgets and reports.

// @host      localhost:8080
// @BasePath  /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the access token.

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	dbManager, err := database.NewManager(database.NewConfig(appConfig))
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer dbManager.Close()

	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	notifier, closeNotifier, err := newNotifier(appConfig)
	if err != nil {
		return fmt.Errorf("failed to set up notifications: %w", err)
	}
	defer closeNotifier()

	svc := server.NewServices(dbManager.DB(), appConfig, notifier)
	if err := svc.Roles.EnsureDefaultRoles(); err != nil {
		return fmt.Errorf("failed to seed roles: %w", err)
	}
	if err := svc.Categories.EnsureDefaultCategories(); err != nil {
		return fmt.Errorf("failed to seed default categories: %w", err)
	}

	validator.Register()

	limiter := middleware.NewRateLimiter(appConfig.RateLimitPerMinute, appConfig.RateLimitBurst)
	defer limiter.Stop()

	router := server.NewRouter(appConfig, svc, limiter)

	log.Infof("Starting Gastos backend server on port %s", appConfig.Port)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}

// newNotifier publishes reset codes to AMQP when AMQP_URL is set and only
// logs them otherwise.
func newNotifier(cfg *config.Config) (notify.Notifier, func(), error) {
	if cfg.AMQPURL == "" {
		logger.Get().Warn("AMQP_URL not set, password reset codes will only be logged")
		return notify.NewLogNotifier(), func() {}, nil
	}

	publisher, err := notify.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	if err != nil {
		return nil, nil, err
	}
	return publisher, func() {
		if err := publisher.Close(); err != nil {
			logger.Get().Warnf("amqp close error: %v", err)
		}
	}, nil
}
