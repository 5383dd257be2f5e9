package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/nguyenduchuy271197/healthcare-sub000/internal/model"
	"github.com/nguyenduchuy271197/healthcare-sub000/internal/repository"
	"github.com/nguyenduchuy271197/healthcare-sub000/internal/scheduling"
	"github.com/nguyenduchuy271197/healthcare-sub000/pkg/errors"
)

// Slot duration bounds in minutes for schedule rules.
const (
	MinSlotDuration = 15
	MaxSlotDuration = 180
)

const (
	ruleCacheTTL     = 5 * time.Minute
	ruleCacheCleanup = 10 * time.Minute
)

// Service manages doctors' weekly schedule rules. Active-rule lookups are
// cached per (doctor, weekday); any write by that doctor invalidates their
// cached entries.
type Service struct {
	repo      repository.ScheduleRepository
	aptRepo   repository.AppointmentRepository
	ruleCache *cache.Cache

	now func() time.Time
}

func NewService(repo repository.ScheduleRepository, aptRepo repository.AppointmentRepository) *Service {
	return &Service{
		repo:      repo,
		aptRepo:   aptRepo,
		ruleCache: cache.New(ruleCacheTTL, ruleCacheCleanup),
		now:       time.Now,
	}
}

func cacheKey(doctorID uuid.UUID, dayOfWeek int) string {
	return fmt.Sprintf("%s:%d", doctorID, dayOfWeek)
}

func (s *Service) invalidate(doctorID uuid.UUID) {
	for day := 0; day <= 6; day++ {
		s.ruleCache.Delete(cacheKey(doctorID, day))
	}
}

func (s *Service) validateRule(dayOfWeek int, startTime, endTime string, slotDuration int) error {
	if dayOfWeek < 0 || dayOfWeek > 6 {
		return errors.Validation("day_of_week must be between 0 and 6")
	}

	start, err := scheduling.ParseClock(startTime)
	if err != nil {
		return errors.Validation("invalid start_time, expected HH:MM")
	}
	end, err := scheduling.ParseClock(endTime)
	if err != nil {
		return errors.Validation("invalid end_time, expected HH:MM")
	}
	if start >= end {
		return errors.Validation("start_time must be before end_time")
	}

	if slotDuration != 0 && (slotDuration < MinSlotDuration || slotDuration > MaxSlotDuration) {
		return errors.Validation("slot_duration_minutes must be between 15 and 180")
	}
	return nil
}

// Create adds a weekly availability window for the calling doctor.
func (s *Service) Create(ctx context.Context, actor model.Actor, req *model.CreateScheduleRuleRequest) (*model.ScheduleRule, error) {
	if !actor.IsDoctor() {
		return nil, errors.AuthorizationDenied("only doctors may manage schedules")
	}

	if err := s.validateRule(req.DayOfWeek, req.StartTime, req.EndTime, req.SlotDurationMinutes); err != nil {
		return nil, err
	}

	duration := req.SlotDurationMinutes
	if duration == 0 {
		duration = model.DefaultSlotDurationMinutes
	}

	rule := &model.ScheduleRule{
		DoctorID:            actor.ID,
		DayOfWeek:           req.DayOfWeek,
		StartTime:           req.StartTime,
		EndTime:             req.EndTime,
		SlotDurationMinutes: duration,
		Active:              true,
	}

	if err := s.repo.Create(ctx, rule); err != nil {
		return nil, errors.DataAccess(err)
	}

	s.invalidate(actor.ID)
	return rule, nil
}

// Update edits one of the calling doctor's rules.
func (s *Service) Update(ctx context.Context, actor model.Actor, id uuid.UUID, req *model.UpdateScheduleRuleRequest) (*model.ScheduleRule, error) {
	if !actor.IsDoctor() {
		return nil, errors.AuthorizationDenied("only doctors may manage schedules")
	}

	rule, err := s.repo.Get(ctx, id)
	if err == repository.ErrNotFound {
		return nil, errors.NotFound("schedule rule")
	}
	if err != nil {
		return nil, errors.DataAccess(err)
	}
	if rule.DoctorID != actor.ID {
		return nil, errors.AuthorizationDenied("schedule rule belongs to another doctor")
	}

	if req.DayOfWeek != nil {
		rule.DayOfWeek = *req.DayOfWeek
	}
	if req.StartTime != nil {
		rule.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		rule.EndTime = *req.EndTime
	}
	if req.SlotDurationMinutes != nil {
		rule.SlotDurationMinutes = *req.SlotDurationMinutes
	}
	if req.Active != nil {
		rule.Active = *req.Active
	}

	if err := s.validateRule(rule.DayOfWeek, rule.StartTime, rule.EndTime, rule.SlotDurationMinutes); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, rule); err != nil {
		if err == repository.ErrNotFound {
			return nil, errors.NotFound("schedule rule")
		}
		return nil, errors.DataAccess(err)
	}

	s.invalidate(actor.ID)
	return rule, nil
}

// Delete removes a rule. Blocked while the doctor still has future pending
// or confirmed appointments, since those were booked against the schedule.
func (s *Service) Delete(ctx context.Context, actor model.Actor, id uuid.UUID) error {
	if !actor.IsDoctor() {
		return errors.AuthorizationDenied("only doctors may manage schedules")
	}

	rule, err := s.repo.Get(ctx, id)
	if err == repository.ErrNotFound {
		return errors.NotFound("schedule rule")
	}
	if err != nil {
		return errors.DataAccess(err)
	}
	if rule.DoctorID != actor.ID {
		return errors.AuthorizationDenied("schedule rule belongs to another doctor")
	}

	hasBookings, err := s.aptRepo.HasFutureBookings(ctx, actor.ID, s.now())
	if err != nil {
		return errors.DataAccess(err)
	}
	if hasBookings {
		return errors.Validation("cannot delete schedule while future appointments exist")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if err == repository.ErrNotFound {
			return errors.NotFound("schedule rule")
		}
		return errors.DataAccess(err)
	}

	s.invalidate(actor.ID)
	return nil
}

// ListForDoctor returns all of a doctor's rules, active or not.
func (s *Service) ListForDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.ScheduleRule, error) {
	rules, err := s.repo.ListForDoctor(ctx, doctorID)
	if err != nil {
		return nil, errors.DataAccess(err)
	}
	return rules, nil
}

// ListActiveForDay returns the active rules feeding the slot generator,
// served from cache when warm.
func (s *Service) ListActiveForDay(ctx context.Context, doctorID uuid.UUID, dayOfWeek int) ([]*model.ScheduleRule, error) {
	key := cacheKey(doctorID, dayOfWeek)
	if cached, found := s.ruleCache.Get(key); found {
		return cached.([]*model.ScheduleRule), nil
	}

	rules, err := s.repo.ListActiveForDay(ctx, doctorID, dayOfWeek)
	if err != nil {
		return nil, errors.DataAccess(err)
	}

	s.ruleCache.Set(key, rules, cache.DefaultExpiration)
	return rules, nil
}
