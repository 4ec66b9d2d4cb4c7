package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"restaurant_pos/internal/config"
	"restaurant_pos/internal/database"
	"restaurant_pos/internal/events"
	"restaurant_pos/internal/handlers"
	"restaurant_pos/internal/kafka"
	"restaurant_pos/internal/logger"
	"restaurant_pos/internal/messaging"
	"restaurant_pos/internal/migrations"
	"restaurant_pos/internal/redis"
	"restaurant_pos/internal/repository"
	"restaurant_pos/internal/services"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg := config.Load()
	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	ctx := context.Background()

	// Initialize database
	db, err := database.Initialize(cfg.DatabaseURL, cfg.DBLogLevel, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}
	if err := migrations.RunMigrations(ctx, db, log, migrations.Options{SeedDemo: cfg.SeedDemoData}); err != nil {
		log.WithError(err).Fatal("Failed to run migrations")
	}

	// Initialize Redis
	redisClient, err := redis.Initialize(cfg.RedisURL)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to Redis")
	}
	defer redisClient.Close()

	// Kafka order events, disabled without brokers
	var publisher services.EventPublisher = events.NopPublisher{}
	var producer *kafka.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer = kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic, 1024, log.WithField("component", "kafka"))
		producer.Start()
		publisher = events.NewKafkaPublisher(producer, cfg.ServiceName)
		log.WithField("topic", cfg.KafkaTopic).Info("Kafka order events enabled")
	}

	// RabbitMQ receipt hand-off, disabled without a URL
	var dispatcher services.ReceiptDispatcher
	if cfg.RabbitMQURL != "" {
		conn, err := messaging.Dial(cfg.RabbitMQURL, log.WithField("component", "rabbitmq"))
		if err != nil {
			log.WithError(err).Fatal("Failed to connect to RabbitMQ")
		}
		defer conn.Close()
		dispatcher = messaging.NewReceiptPublisher(conn, log)
		log.Info("Receipt email hand-off enabled")
	}

	// Initialize services
	store := repository.NewStore(db)
	deps := services.Deps{
		Store:    store,
		Cache:    redisClient,
		Events:   publisher,
		Receipts: dispatcher,
		Log:      log,
		CacheTTL: cfg.CacheDuration(),
	}
	orderService := services.NewOrderService(deps)
	paymentService := services.NewPaymentService(deps)
	tableService := services.NewTableService(store, log)
	posService := services.NewPosService(store, orderService)
	staffService := services.NewStaffService(store, 0)
	sessionService := services.NewSessionService(staffService, redisClient, cfg.SessionTTL(), log)

	// Setup routes
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Recovery(), handlers.RequestLogger(log), handlers.RequestTimeout(cfg.RequestDuration()))
	handlers.RegisterRoutes(router, handlers.Handlers{
		Sessions: handlers.NewSessionHandler(sessionService, log),
		POS:      handlers.NewPOSHandler(posService, paymentService, log),
		Orders:   handlers.NewOrderHandler(orderService, paymentService, log),
		Tables:   handlers.NewTableHandler(tableService, log),
	}, sessionService, log)

	srv := &http.Server{Addr: ":" + cfg.ServerPort, Handler: router}
	go func() {
		log.Infof("Server starting on port %s", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("HTTP shutdown incomplete")
	}
	if producer != nil {
		producer.Close()
		producer.WaitClosed()
	}
}
