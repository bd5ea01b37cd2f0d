package main

import (
	"database/sql"
	"fmt"
	"time"

	"trashbeta-service/config"
	"trashbeta-service/internal/cache"
	"trashbeta-service/internal/handler"
	"trashbeta-service/internal/messaging"
	"trashbeta-service/internal/notification"
	"trashbeta-service/internal/repository"
	"trashbeta-service/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logrus.Info("no .env file, using environment as-is")
	}

	logrus.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})

	cfg, err := config.LoadConfig("config/config.json")
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}

	// Connect to database
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.DBName,
		cfg.Database.SSLMode,
	)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		logrus.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logrus.Fatalf("failed to ping database: %v", err)
	}
	logrus.Info("connected to database")

	// Cache: Redis when configured, in-process otherwise. The cache is
	// an optimization, so a missing Redis only degrades, never aborts.
	var cacheStore cache.Store
	if cfg.Redis.Addr != "" {
		redisStore, err := cache.NewRedisStore(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logrus.Warnf("redis unavailable (%v), falling back to in-memory cache", err)
			cacheStore = cache.NewMemoryStore()
		} else {
			defer redisStore.Close()
			cacheStore = redisStore
			logrus.Info("connected to redis")
		}
	} else {
		cacheStore = cache.NewMemoryStore()
	}

	// Repositories
	reportRepo := repository.NewReportRepository(db)
	userRepo := repository.NewUserRepository(db)
	outboxRepo := repository.NewOutboxRepository(db)

	// Integration event feed
	var outbox service.EventOutbox
	if cfg.RabbitMQ.URL != "" {
		publisher, err := messaging.NewPublisher(cfg.RabbitMQ.URL)
		if err != nil {
			logrus.Fatalf("failed to connect to RabbitMQ: %v", err)
		}
		defer publisher.Close()

		worker := messaging.NewOutboxWorker(outboxRepo, publisher)
		worker.Start()
		defer worker.Stop()

		outbox = outboxRepo
	} else {
		logrus.Warn("rabbitmq url not configured, event publishing disabled")
	}

	// Notification dispatcher
	emailSender := &notification.SMTPEmailSender{
		Addr:     cfg.Notification.SMTP.Addr,
		Host:     cfg.Notification.SMTP.Host,
		From:     cfg.Notification.SMTP.From,
		Username: cfg.Notification.SMTP.Username,
		Password: cfg.Notification.SMTP.Password,
	}
	smsSender := &notification.HTTPSMSSender{
		APIURL:   cfg.Notification.SMS.APIURL,
		APIKey:   cfg.Notification.SMS.APIKey,
		SenderID: cfg.Notification.SMS.SenderID,
	}

	dispatcher := notification.NewDispatcher(emailSender, smsSender, cfg.Notification.Workers, cfg.Notification.QueueSize)
	dispatcher.Start()
	defer dispatcher.Stop()

	// Service and handlers
	ttl := time.Duration(cfg.Cache.TTLSeconds) * time.Second
	reportService := service.NewReportService(reportRepo, userRepo, cacheStore, dispatcher, outbox, ttl)
	reportHandler := handler.NewReportHandler(reportService)

	// Setup Gin
	r := gin.Default()

	r.GET("/health", reportHandler.Health)

	r.POST("/reports", reportHandler.CreateReport)
	r.GET("/reports", reportHandler.GetUserReports)
	r.GET("/reports/assigned", reportHandler.GetAssignedReports)
	r.GET("/reports/stats", reportHandler.GetReportStats)
	r.GET("/reports/track/:trackingId", reportHandler.GetByTrackingID)
	r.GET("/reports/:id", reportHandler.GetReportByID)
	r.GET("/allReports", reportHandler.GetAllReports)

	r.PUT("/reports/:id/assign", reportHandler.AssignReport)
	r.PUT("/reports/:id/status", reportHandler.UpdateStatus)
	r.PUT("/reports/:id/complete", reportHandler.MarkComplete)

	r.DELETE("/reports/:id", reportHandler.DeleteReport)

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	logrus.Infof("report service starting on %s", addr)
	if err := r.Run(addr); err != nil {
		logrus.Fatalf("failed to start server: %v", err)
	}
}
