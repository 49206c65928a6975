package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/campusbites/order-service/config"
	"github.com/campusbites/order-service/internal/server"
	"github.com/campusbites/order-service/pkg/broker"
	"github.com/campusbites/order-service/pkg/cache"
	"github.com/campusbites/order-service/pkg/database/postgres"
	"github.com/campusbites/order-service/pkg/logger"
	"github.com/campusbites/order-service/pkg/search"

	cafeH "github.com/campusbites/order-service/internal/cafe/handler"
	cafeRepoPkg "github.com/campusbites/order-service/internal/cafe/repository"
	cafeUCPkg "github.com/campusbites/order-service/internal/cafe/usecase"

	loyaltyH "github.com/campusbites/order-service/internal/loyalty/handler"
	loyaltyRepoPkg "github.com/campusbites/order-service/internal/loyalty/repository"
	loyaltyUCPkg "github.com/campusbites/order-service/internal/loyalty/usecase"

	menuH "github.com/campusbites/order-service/internal/menu/handler"
	menuListenerPkg "github.com/campusbites/order-service/internal/menu/listener"
	menuRepoPkg "github.com/campusbites/order-service/internal/menu/repository"
	menuUCPkg "github.com/campusbites/order-service/internal/menu/usecase"

	notifH "github.com/campusbites/order-service/internal/notification/handler"
	notifRepoPkg "github.com/campusbites/order-service/internal/notification/repository"
	notifUCPkg "github.com/campusbites/order-service/internal/notification/usecase"

	orderH "github.com/campusbites/order-service/internal/order/handler"
	orderRepoPkg "github.com/campusbites/order-service/internal/order/repository"
	orderUCPkg "github.com/campusbites/order-service/internal/order/usecase"

	profileH "github.com/campusbites/order-service/internal/profile/handler"
	profileRepoPkg "github.com/campusbites/order-service/internal/profile/repository"
	profileUCPkg "github.com/campusbites/order-service/internal/profile/usecase"
)

func main() {
	// 1. Load Configuration
	_ = godotenv.Load() // Load .env file if it exists
	cfg := config.LoadEnv()

	// 2. Initialize Logger
	logConfig := &logger.ZapLoggerConfig{
		IsDevelopment:     false,
		Encoding:          "json",
		Level:             "info",
		DisableCaller:     cfg.Logger.DisableCaller,
		DisableStacktrace: cfg.Logger.DisableStacktrace,
	}
	if cfg.Server.AppEnv == "dev" || cfg.Server.AppEnv == "development" {
		logConfig.IsDevelopment = true
		logConfig.Encoding = cfg.Logger.Encoding
		logConfig.Level = cfg.Logger.Level
	}

	appLogger := logger.NewZapLogger(logConfig)
	defer appLogger.Sync()

	// 3. Connect to Database
	db, err := postgres.NewPostgres(&postgres.Config{
		Host:            cfg.Postgres.Host,
		Port:            cfg.Postgres.Port,
		User:            cfg.Postgres.User,
		Password:        cfg.Postgres.Password,
		DBName:          cfg.Postgres.DBName,
		SSLMode:         cfg.Postgres.SSLMode,
		MaxOpenConns:    cfg.Postgres.MaxOpenConns,
		MaxIdleConns:    cfg.Postgres.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.Postgres.ConnMaxLifetime) * time.Second,
		ConnMaxIdleTime: time.Duration(cfg.Postgres.ConnMaxIdleTime) * time.Second,
	})
	if err != nil {
		appLogger.Fatal("Could not connect to database", zap.Error(err))
	}
	defer db.Close()
	appLogger.Info("Connected to PostgreSQL database", zap.String("db_name", cfg.Postgres.DBName))

	// 4. Initialize Redis
	redisClient, err := cache.NewRedisClient(&cache.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		appLogger.Fatal("Could not connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()
	appLogger.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr))

	// 5. Initialize Kafka
	kafkaProducer := broker.NewProducer(&broker.Config{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.Topic,
	})
	defer kafkaProducer.Close()

	kafkaConsumer := broker.NewConsumer(&broker.Config{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.Topic,
		GroupID: cfg.Kafka.GroupID,
	})
	defer kafkaConsumer.Close()
	appLogger.Info("Connected to Kafka", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))

	// 6. Initialize Elasticsearch
	esClient, err := search.NewClient(&search.Config{
		Addresses: cfg.Elastic.Addresses,
		Username:  cfg.Elastic.Username,
		Password:  cfg.Elastic.Password,
	})
	if err != nil {
		appLogger.Warn("Could not connect to Elasticsearch, menu search falls back to the database", zap.Error(err))
		esClient = nil
	} else {
		appLogger.Info("Connected to Elasticsearch", zap.Strings("addresses", cfg.Elastic.Addresses))
	}

	// 7. Initialize Repositories
	profileRepo := profileRepoPkg.NewPGRepository(db)
	cafeRepo := cafeRepoPkg.NewPGRepository(db)
	menuRepo := menuRepoPkg.NewPGRepository(db)
	orderRepo := orderRepoPkg.NewPGRepository(db)
	loyaltyRepo := loyaltyRepoPkg.NewPGRepository(db)
	notifRepo := notifRepoPkg.NewPGRepository(db)

	// 8. Initialize UseCases
	profileUC := profileUCPkg.NewProfileUseCase(profileRepo, appLogger)
	cafeUC := cafeUCPkg.NewCafeUseCase(cafeRepo, appLogger)
	menuUC := menuUCPkg.NewMenuUseCase(menuRepo, redisClient, esClient, appLogger)
	loyaltyUC := loyaltyUCPkg.NewLoyaltyUseCase(loyaltyRepo, redisClient, appLogger)
	notifUC := notifUCPkg.NewNotificationUseCase(notifRepo, redisClient, appLogger)
	orderUC := orderUCPkg.NewOrderUseCase(
		orderRepo, cafeUC, menuRepo, loyaltyUC, notifUC,
		kafkaProducer, redisClient,
		time.Duration(cfg.Orders.CancelWindowSeconds)*time.Second,
		appLogger,
	)

	// 9. Background workers
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stockListener := menuListenerPkg.NewStockListener(kafkaConsumer, menuUC, appLogger)
	go stockListener.Start(ctx)
	go menuUC.RunDailyReset(ctx, cfg.Orders.StockResetHour)

	// 10. Initialize Handlers and Router
	handlers := &server.Handlers{
		Profiles:      profileH.NewProfileHandler(profileUC, appLogger),
		Cafes:         cafeH.NewCafeHandler(cafeUC, appLogger),
		Menu:          menuH.NewMenuHandler(menuUC, cafeUC, appLogger),
		Orders:        orderH.NewOrderHandler(orderUC, cafeUC, appLogger),
		Loyalty:       loyaltyH.NewLoyaltyHandler(loyaltyUC, appLogger),
		Notifications: notifH.NewNotificationHandler(notifUC, cafeUC, appLogger),
	}
	router := server.NewRouter(handlers, appLogger)

	// 11. Start HTTP Server
	port := cfg.Server.HTTPPort
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}

	srv := &http.Server{
		Addr:         port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // SSE streams stay open
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		appLogger.Info("Starting HTTP server", zap.String("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal("failed to serve", zap.Error(err))
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("forced shutdown", zap.Error(err))
	}
	appLogger.Info("Server stopped")
}
