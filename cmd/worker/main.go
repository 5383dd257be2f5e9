package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/nguyenduchuy271197/healthcare-sub000/internal/config"
	"github.com/nguyenduchuy271197/healthcare-sub000/internal/email"
	"github.com/nguyenduchuy271197/healthcare-sub000/internal/repository/postgres"
	"github.com/nguyenduchuy271197/healthcare-sub000/pkg/logger"
	"github.com/nguyenduchuy271197/healthcare-sub000/pkg/messaging/redis"
	"github.com/nguyenduchuy271197/healthcare-sub000/pkg/metrics"
	"github.com/nguyenduchuy271197/healthcare-sub000/pkg/worker"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	broker, err := redis.NewRedisBroker(redis.Config{URL: cfg.Redis.URL})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer broker.Close()

	var emailSvc email.Service = email.NoopService{}
	if cfg.SMTP.Enabled {
		emailSvc = email.NewService(email.Config{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		})
	}

	outboxRepo := postgres.NewOutboxRepository(db)
	notificationRepo := postgres.NewNotificationRepository(db)
	doctorRepo := postgres.NewDoctorRepository(db)
	patientRepo := postgres.NewPatientRepository(db)

	dispatcher := worker.NewDispatcher(
		outboxRepo,
		notificationRepo,
		doctorRepo,
		patientRepo,
		broker,
		emailSvc,
		worker.DispatcherConfig{
			BatchSize:    cfg.Worker.BatchSize,
			PollInterval: time.Duration(cfg.Worker.PollIntervalSeconds) * time.Second,
			MaxRetries:   cfg.Worker.MaxRetries,
			RetryDelay:   time.Duration(cfg.Worker.RetryDelaySeconds) * time.Second,
		},
		logger.NewLogger(nil),
		metrics.NewMetrics("clinic", "worker"),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go dispatcher.Start(ctx)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down worker")
	cancel()
}
