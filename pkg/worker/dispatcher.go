// Package worker contains the notification dispatcher that drains the
// transactional outbox. Appointment mutations commit their events with the
// row change; this dispatcher is the only component that turns those events
// into user-visible notifications, so delivery failures never affect booked
// state.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/nguyenduchuy271197/healthcare-sub000/internal/email"
	"github.com/nguyenduchuy271197/healthcare-sub000/internal/model"
	"github.com/nguyenduchuy271197/healthcare-sub000/internal/repository"
	"github.com/nguyenduchuy271197/healthcare-sub000/internal/service/notification"
	"github.com/nguyenduchuy271197/healthcare-sub000/pkg/logger"
	"github.com/nguyenduchuy271197/healthcare-sub000/pkg/messaging"
	"github.com/nguyenduchuy271197/healthcare-sub000/pkg/metrics"
)

// NotificationChannel is the broker channel in-app notifications go out on.
const NotificationChannel = "notifications"

type DispatcherConfig struct {
	BatchSize    int
	PollInterval time.Duration
	MaxRetries   int
	RetryDelay   time.Duration
}

type Dispatcher struct {
	outbox    repository.OutboxRepository
	notifRepo repository.NotificationRepository
	doctors   repository.DoctorRepository
	patients  repository.PatientRepository
	broker    messaging.Broker
	emailSvc  email.Service
	config    DispatcherConfig
	logger    *logger.Logger
	metrics   *metrics.Metrics
}

func NewDispatcher(
	outbox repository.OutboxRepository,
	notifRepo repository.NotificationRepository,
	doctors repository.DoctorRepository,
	patients repository.PatientRepository,
	broker messaging.Broker,
	emailSvc email.Service,
	config DispatcherConfig,
	log *logger.Logger,
	m *metrics.Metrics,
) *Dispatcher {
	if config.BatchSize <= 0 {
		config.BatchSize = 50
	}
	if config.PollInterval <= 0 {
		config.PollInterval = 5 * time.Second
	}
	if config.MaxRetries <= 0 {
		config.MaxRetries = 3
	}
	if config.RetryDelay <= 0 {
		config.RetryDelay = 30 * time.Second
	}

	return &Dispatcher{
		outbox:    outbox,
		notifRepo: notifRepo,
		doctors:   doctors,
		patients:  patients,
		broker:    broker,
		emailSvc:  emailSvc,
		config:    config,
		logger:    log,
		metrics:   m,
	}
}

func (d *Dispatcher) Start(ctx context.Context) {
	ticker := time.NewTicker(d.config.PollInterval)
	defer ticker.Stop()

	d.logger.Info("starting notification dispatcher")

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("shutting down notification dispatcher")
			return
		case <-ticker.C:
			if err := d.processEvents(ctx); err != nil {
				d.logger.Error(err, "failed to process outbox events")
			}
		}
	}
}

func (d *Dispatcher) processEvents(ctx context.Context) error {
	timer := prometheus.NewTimer(d.metrics.OutboxProcessingLatency)
	defer timer.ObserveDuration()

	events, err := d.outbox.GetPendingEvents(ctx, d.config.BatchSize)
	if err != nil {
		return fmt.Errorf("failed to get pending events: %w", err)
	}

	for _, evt := range events {
		if err := d.processEvent(ctx, evt); err != nil {
			d.metrics.OutboxEventsFailed.Inc()
			d.logger.Error(err, "failed to process event",
				"event_id", evt.ID.String(),
				"event_type", evt.EventType)
			d.markFailed(ctx, evt, err)
			continue
		}

		d.metrics.OutboxEventsProcessed.Inc()
		if err := d.outbox.MarkProcessed(ctx, evt.ID); err != nil {
			d.logger.Error(err, "failed to mark event processed",
				"event_id", evt.ID.String())
		}
	}
	return nil
}

func (d *Dispatcher) processEvent(ctx context.Context, evt *model.OutboxEvent) error {
	var aptEvent model.AppointmentEvent
	if err := json.Unmarshal(evt.Payload, &aptEvent); err != nil {
		return fmt.Errorf("failed to decode event payload: %w", err)
	}

	notifications, err := notification.Build(&aptEvent)
	if err != nil {
		return err
	}

	for _, n := range notifications {
		if err := d.notifRepo.Create(ctx, n); err != nil {
			return fmt.Errorf("failed to store notification: %w", err)
		}

		if err := d.broker.Publish(ctx, NotificationChannel, n); err != nil {
			d.metrics.NotificationsFailed.WithLabelValues("in_app").Inc()
			return fmt.Errorf("failed to publish notification: %w", err)
		}
		d.metrics.NotificationsSent.WithLabelValues("in_app").Inc()

		// Email is best effort: the stored notification is the durable copy.
		d.sendEmail(ctx, n, &aptEvent)
	}
	return nil
}

func (d *Dispatcher) sendEmail(ctx context.Context, n *model.Notification, evt *model.AppointmentEvent) {
	address, err := d.resolveEmail(ctx, n.UserID, evt)
	if err != nil {
		d.logger.Debug("no email address for notification recipient",
			"user_id", n.UserID.String())
		return
	}

	if err := d.emailSvc.SendCustom(ctx, address, n.Title, n.Message); err != nil {
		d.metrics.NotificationsFailed.WithLabelValues("email").Inc()
		d.logger.Warn("failed to send notification email",
			"user_id", n.UserID.String(),
			"error", err.Error())
		return
	}
	d.metrics.NotificationsSent.WithLabelValues("email").Inc()
}

func (d *Dispatcher) resolveEmail(ctx context.Context, userID uuid.UUID, evt *model.AppointmentEvent) (string, error) {
	if userID == evt.DoctorID {
		doctor, err := d.doctors.Get(ctx, userID)
		if err != nil {
			return "", err
		}
		return doctor.Email, nil
	}

	patient, err := d.patients.Get(ctx, userID)
	if err != nil {
		return "", err
	}
	return patient.Email, nil
}

func (d *Dispatcher) markFailed(ctx context.Context, evt *model.OutboxEvent, cause error) {
	var retryAt *time.Time
	if evt.RetryCount+1 < d.config.MaxRetries {
		at := time.Now().Add(d.config.RetryDelay * time.Duration(evt.RetryCount+1))
		retryAt = &at
		d.metrics.OutboxRetries.WithLabelValues(evt.EventType).Inc()
	}

	if err := d.outbox.MarkFailed(ctx, evt.ID, cause.Error(), retryAt); err != nil {
		d.logger.Error(err, "failed to mark event failed",
			"event_id", evt.ID.String())
	}
}
