package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nguyenduchuy271197/healthcare-sub000/internal/email"
	"github.com/nguyenduchuy271197/healthcare-sub000/internal/model"
	"github.com/nguyenduchuy271197/healthcare-sub000/internal/repository"
	"github.com/nguyenduchuy271197/healthcare-sub000/pkg/logger"
	"github.com/nguyenduchuy271197/healthcare-sub000/pkg/metrics"
)

// Prometheus collectors register globally, so the test binary shares one set.
var testMetrics = metrics.NewMetrics("test", "dispatcher")

type fakeOutbox struct {
	pending   []*model.OutboxEvent
	processed []uuid.UUID
	failed    map[uuid.UUID]*time.Time
}

func newFakeOutbox(events ...*model.OutboxEvent) *fakeOutbox {
	return &fakeOutbox{pending: events, failed: make(map[uuid.UUID]*time.Time)}
}

func (f *fakeOutbox) Create(context.Context, *model.OutboxEvent) error { return nil }

func (f *fakeOutbox) GetPendingEvents(context.Context, int) ([]*model.OutboxEvent, error) {
	return f.pending, nil
}

func (f *fakeOutbox) MarkProcessed(_ context.Context, id uuid.UUID) error {
	f.processed = append(f.processed, id)
	return nil
}

func (f *fakeOutbox) MarkFailed(_ context.Context, id uuid.UUID, _ string, retryAt *time.Time) error {
	f.failed[id] = retryAt
	return nil
}

func (f *fakeOutbox) DeleteProcessedBefore(context.Context, time.Time) (int64, error) {
	return 0, nil
}

type fakeNotificationRepo struct {
	created []*model.Notification
}

func (f *fakeNotificationRepo) Create(_ context.Context, n *model.Notification) error {
	f.created = append(f.created, n)
	return nil
}

func (f *fakeNotificationRepo) ListForUser(context.Context, uuid.UUID, bool) ([]*model.Notification, error) {
	return nil, nil
}

func (f *fakeNotificationRepo) MarkRead(context.Context, uuid.UUID, uuid.UUID) error {
	return nil
}

type fakeDoctorRepo struct{}

func (fakeDoctorRepo) Get(context.Context, uuid.UUID) (*model.Doctor, error) {
	return nil, repository.ErrNotFound
}
func (fakeDoctorRepo) List(context.Context, *model.DoctorFilters) ([]*model.Doctor, error) {
	return nil, nil
}

type fakePatientRepo struct{}

func (fakePatientRepo) Get(context.Context, uuid.UUID) (*model.Patient, error) {
	return nil, repository.ErrNotFound
}

type fakeBroker struct {
	published []interface{}
	err       error
}

func (f *fakeBroker) Publish(_ context.Context, _ string, message interface{}) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, message)
	return nil
}

func (f *fakeBroker) Subscribe(context.Context, string) (<-chan []byte, error) {
	return nil, nil
}

func (f *fakeBroker) Close() error { return nil }

func bookedEvent() *model.OutboxEvent {
	return model.NewAppointmentOutboxEvent(&model.AppointmentEvent{
		Event:         model.EventAppointmentBooked,
		AppointmentID: uuid.New(),
		PatientID:     uuid.New(),
		DoctorID:      uuid.New(),
		Date:          "2026-03-02",
		StartTime:     "09:00",
		ActorRole:     model.RolePatient,
	})
}

func newTestDispatcher(outbox *fakeOutbox, notifRepo *fakeNotificationRepo, broker *fakeBroker) *Dispatcher {
	return NewDispatcher(
		outbox,
		notifRepo,
		fakeDoctorRepo{},
		fakePatientRepo{},
		broker,
		email.NoopService{},
		DispatcherConfig{MaxRetries: 3, RetryDelay: time.Minute},
		logger.NewLogger(nil),
		testMetrics,
	)
}

func TestProcessEvents(t *testing.T) {
	t.Run("stores publishes and marks processed", func(t *testing.T) {
		evt := bookedEvent()
		outbox := newFakeOutbox(evt)
		notifRepo := &fakeNotificationRepo{}
		broker := &fakeBroker{}
		d := newTestDispatcher(outbox, notifRepo, broker)

		require.NoError(t, d.processEvents(context.Background()))

		require.Len(t, notifRepo.created, 1)
		assert.Equal(t, model.NotificationAppointmentBooked, notifRepo.created[0].Type)
		assert.Len(t, broker.published, 1)
		assert.Equal(t, []uuid.UUID{evt.ID}, outbox.processed)
		assert.Empty(t, outbox.failed)
	})

	t.Run("publish failure marks event failed with retry", func(t *testing.T) {
		evt := bookedEvent()
		outbox := newFakeOutbox(evt)
		broker := &fakeBroker{err: errors.New("redis down")}
		d := newTestDispatcher(outbox, &fakeNotificationRepo{}, broker)

		require.NoError(t, d.processEvents(context.Background()))

		assert.Empty(t, outbox.processed)
		retryAt, ok := outbox.failed[evt.ID]
		require.True(t, ok)
		require.NotNil(t, retryAt)
		assert.True(t, retryAt.After(time.Now()))
	})

	t.Run("exhausted retries get no retry time", func(t *testing.T) {
		evt := bookedEvent()
		evt.RetryCount = 2
		outbox := newFakeOutbox(evt)
		broker := &fakeBroker{err: errors.New("redis down")}
		d := newTestDispatcher(outbox, &fakeNotificationRepo{}, broker)

		require.NoError(t, d.processEvents(context.Background()))

		retryAt, ok := outbox.failed[evt.ID]
		require.True(t, ok)
		assert.Nil(t, retryAt)
	})

	t.Run("undecodable payload fails the event", func(t *testing.T) {
		evt := bookedEvent()
		evt.Payload = []byte("{")
		outbox := newFakeOutbox(evt)
		d := newTestDispatcher(outbox, &fakeNotificationRepo{}, &fakeBroker{})

		require.NoError(t, d.processEvents(context.Background()))

		assert.Empty(t, outbox.processed)
		_, ok := outbox.failed[evt.ID]
		assert.True(t, ok)
	})
}
