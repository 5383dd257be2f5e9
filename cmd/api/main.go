package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/rs/zerolog/log"

	"github.com/nguyenduchuy271197/healthcare-sub000/internal/config"
	appointmentHandler "github.com/nguyenduchuy271197/healthcare-sub000/internal/handler/appointment"
	doctorHandler "github.com/nguyenduchuy271197/healthcare-sub000/internal/handler/doctor"
	healthHandler "github.com/nguyenduchuy271197/healthcare-sub000/internal/handler/health"
	notificationHandler "github.com/nguyenduchuy271197/healthcare-sub000/internal/handler/notification"
	prescriptionHandler "github.com/nguyenduchuy271197/healthcare-sub000/internal/handler/prescription"
	reviewHandler "github.com/nguyenduchuy271197/healthcare-sub000/internal/handler/review"
	scheduleHandler "github.com/nguyenduchuy271197/healthcare-sub000/internal/handler/schedule"
	"github.com/nguyenduchuy271197/healthcare-sub000/internal/middleware"
	"github.com/nguyenduchuy271197/healthcare-sub000/internal/repository/postgres"
	"github.com/nguyenduchuy271197/healthcare-sub000/internal/router"
	appointmentService "github.com/nguyenduchuy271197/healthcare-sub000/internal/service/appointment"
	doctorService "github.com/nguyenduchuy271197/healthcare-sub000/internal/service/doctor"
	notificationService "github.com/nguyenduchuy271197/healthcare-sub000/internal/service/notification"
	prescriptionService "github.com/nguyenduchuy271197/healthcare-sub000/internal/service/prescription"
	reviewService "github.com/nguyenduchuy271197/healthcare-sub000/internal/service/review"
	scheduleService "github.com/nguyenduchuy271197/healthcare-sub000/internal/service/schedule"
	"github.com/nguyenduchuy271197/healthcare-sub000/migrations"
	"github.com/nguyenduchuy271197/healthcare-sub000/pkg/auth"
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

	if err := runMigrations(db.DB); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	// Repositories
	doctorRepo := postgres.NewDoctorRepository(db)
	patientRepo := postgres.NewPatientRepository(db)
	scheduleRepo := postgres.NewScheduleRepository(db)
	appointmentRepo := postgres.NewAppointmentRepository(db)
	notificationRepo := postgres.NewNotificationRepository(db)
	reviewRepo := postgres.NewReviewRepository(db)
	prescriptionRepo := postgres.NewPrescriptionRepository(db)

	// Services
	scheduleSvc := scheduleService.NewService(scheduleRepo, appointmentRepo)
	appointmentSvc := appointmentService.NewService(appointmentRepo, scheduleSvc, doctorRepo, patientRepo)
	doctorSvc := doctorService.NewService(doctorRepo)
	notificationSvc := notificationService.NewService(notificationRepo)
	reviewSvc := reviewService.NewService(reviewRepo, appointmentRepo)
	prescriptionSvc := prescriptionService.NewService(prescriptionRepo, appointmentRepo)

	// Middleware
	jwtSvc := auth.NewJWTService(auth.JWTConfig{
		Secret:      cfg.JWT.Secret,
		ExpiryHours: cfg.JWT.ExpiryHours,
		Issuer:      cfg.JWT.Issuer,
	})
	authMiddleware := middleware.NewAuthMiddleware(jwtSvc)

	// Handlers
	healthH := healthHandler.NewHandler(db)
	doctorH := doctorHandler.NewHandler(doctorSvc, reviewSvc)
	appointmentH := appointmentHandler.NewHandler(appointmentSvc)
	scheduleH := scheduleHandler.NewHandler(scheduleSvc)
	reviewH := reviewHandler.NewHandler(reviewSvc)
	prescriptionH := prescriptionHandler.NewHandler(prescriptionSvc)
	notificationH := notificationHandler.NewHandler(notificationSvc)

	r := router.NewRouter(
		authMiddleware,
		healthH,
		doctorH,
		appointmentH,
		scheduleH,
		reviewH,
		prescriptionH,
		notificationH,
		router.Config{
			RateLimit:  cfg.Server.RateLimit,
			RateBurst:  cfg.Server.RateBurst,
			CORSConfig: middleware.DefaultCORSConfig(),
		},
	)
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting API server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}

	log.Info().Msg("server stopped")
}

func runMigrations(db *sql.DB) error {
	dbDriver, err := migratepg.WithInstance(db, &migratepg.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	srcDriver, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("failed to load embedded migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", srcDriver, "postgres", dbDriver)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	return nil
}
