package notification

import (
	"context"

	"github.com/google/uuid"

	"github.com/nguyenduchuy271197/healthcare-sub000/internal/model"
	"github.com/nguyenduchuy271197/healthcare-sub000/internal/repository"
	"github.com/nguyenduchuy271197/healthcare-sub000/pkg/errors"
)

type Service struct {
	repo repository.NotificationRepository
}

func NewService(repo repository.NotificationRepository) *Service {
	return &Service{repo: repo}
}

// ListForActor returns the caller's own notifications.
func (s *Service) ListForActor(ctx context.Context, actor model.Actor, unreadOnly bool) ([]*model.Notification, error) {
	notifications, err := s.repo.ListForUser(ctx, actor.ID, unreadOnly)
	if err != nil {
		return nil, errors.DataAccess(err)
	}
	return notifications, nil
}

// MarkRead flags one of the caller's notifications as read. The user scope
// in the query doubles as the ownership check.
func (s *Service) MarkRead(ctx context.Context, actor model.Actor, id uuid.UUID) error {
	err := s.repo.MarkRead(ctx, id, actor.ID)
	if err == repository.ErrNotFound {
		return errors.NotFound("notification")
	}
	if err != nil {
		return errors.DataAccess(err)
	}
	return nil
}
