package service

import (
	"context"
	"errors"
	"time"

	"visitly/internal/calendar/clock"
	calendarerrors "visitly/internal/calendar/errors"
	"visitly/internal/calendar/repository"
	"visitly/internal/calendar/validator"
	"visitly/pkg/config"
	apperrors "visitly/pkg/errors"
	"visitly/pkg/logger"
	"visitly/pkg/model"
	"visitly/pkg/sanitizer"
	"visitly/pkg/validation"

	"github.com/google/uuid"
)

// CalendarService answers whether a tenant is open at a given time and
// manages the business hours and blocked dates behind that answer.
type CalendarService interface {
	Calendar(ctx context.Context, tenantID model.TenantID) (*model.BusinessHours, error)
	Location(ctx context.Context, tenantID model.TenantID) (*time.Location, error)
	IsOpen(ctx context.Context, tenantID model.TenantID, start time.Time, duration time.Duration) (bool, error)
	IsBlocked(ctx context.Context, tenantID model.TenantID, date string) (bool, error)

	UpsertBusinessHours(ctx context.Context, tenantID model.TenantID, hours *model.BusinessHours) error
	AddBlockedDate(ctx context.Context, tenantID model.TenantID, blocked *model.BlockedDate) error
	ListBlockedDates(ctx context.Context, tenantID model.TenantID) ([]*model.BlockedDate, error)
	DeleteBlockedDate(ctx context.Context, tenantID model.TenantID, id string) error
}

type calendarService struct {
	hours     repository.BusinessHoursRepository
	blocked   repository.BlockedDateRepository
	validator *validator.CalendarValidator
	cfg       *config.Config
}

func NewCalendarService(
	hours repository.BusinessHoursRepository,
	blocked repository.BlockedDateRepository,
	validator *validator.CalendarValidator,
	cfg *config.Config,
) CalendarService {
	return &calendarService{
		hours:     hours,
		blocked:   blocked,
		validator: validator,
		cfg:       cfg,
	}
}

// Calendar returns the tenant's weekly calendar, or the configured default
// when the tenant never saved one.
func (s *calendarService) Calendar(ctx context.Context, tenantID model.TenantID) (*model.BusinessHours, error) {
	hours, err := s.hours.Get(ctx, tenantID)
	if err != nil {
		if errors.Is(err, calendarerrors.ErrBusinessHoursNotFound) {
			return s.defaultCalendar(tenantID), nil
		}
		s.cfg.Log.Error("Failed to get business hours", logger.TENANT, tenantID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve business hours", err)
	}
	return hours, nil
}

func (s *calendarService) defaultCalendar(tenantID model.TenantID) *model.BusinessHours {
	schedule := make(map[time.Weekday]model.BusinessDay, 7)
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		if s.cfg.CalendarDefaultOpen {
			schedule[wd] = model.BusinessDay{
				IsOpen:    true,
				OpenTime:  s.cfg.DefaultOpenTime,
				CloseTime: s.cfg.DefaultCloseTime,
			}
		} else {
			schedule[wd] = model.BusinessDay{}
		}
	}
	return &model.BusinessHours{
		TenantID:  tenantID,
		Schedule:  schedule,
		Timezone:  s.cfg.DefaultTimezone,
		IsDefault: true,
	}
}

func (s *calendarService) Location(ctx context.Context, tenantID model.TenantID) (*time.Location, error) {
	hours, err := s.Calendar(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return s.location(tenantID, hours.Timezone)
}

func (s *calendarService) location(tenantID model.TenantID, timezone string) (*time.Location, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		s.cfg.Log.Error("Stored timezone cannot be loaded", logger.TENANT, tenantID, "timezone", timezone, "error", err)
		return nil, apperrors.Internal("Invalid tenant timezone", err)
	}
	return loc, nil
}

func (s *calendarService) IsOpen(ctx context.Context, tenantID model.TenantID, start time.Time, duration time.Duration) (bool, error) {
	hours, err := s.Calendar(ctx, tenantID)
	if err != nil {
		return false, err
	}
	loc, err := s.location(tenantID, hours.Timezone)
	if err != nil {
		return false, err
	}

	day := hours.Day(clock.Weekday(start, loc))
	if !day.IsOpen {
		return false, nil
	}

	ok, err := clock.Within(start, start.Add(duration), day.OpenTime, day.CloseTime, loc)
	if err != nil {
		return false, apperrors.Internal("Invalid business hours", err)
	}
	return ok, nil
}

func (s *calendarService) IsBlocked(ctx context.Context, tenantID model.TenantID, date string) (bool, error) {
	rules, err := s.blocked.FindCandidates(ctx, tenantID, date)
	if err != nil {
		s.cfg.Log.Error("Failed to load blocked dates", logger.TENANT, tenantID, "date", date, "error", err)
		return false, apperrors.Internal("Failed to check blocked dates", err)
	}

	if rule := matchAny(rules, date); rule != nil {
		s.cfg.Log.Debug("Date is blocked", logger.TENANT, tenantID, "date", date, "rule_id", rule.ID)
		return true, nil
	}
	return false, nil
}

func (s *calendarService) UpsertBusinessHours(ctx context.Context, tenantID model.TenantID, hours *model.BusinessHours) error {
	hours.TenantID = tenantID
	hours.Timezone = sanitizer.NormalizeTimezone(hours.Timezone)
	hours.IsDefault = false

	if err := s.validator.ValidateBusinessHours(hours); err != nil {
		s.cfg.Log.Warn("Business hours validation failed", logger.TENANT, tenantID, "error", err)
		return validationError("Business hours validation failed", err)
	}

	if err := s.hours.Upsert(ctx, hours); err != nil {
		s.cfg.Log.Error("Failed to save business hours", logger.TENANT, tenantID, "error", err)
		return apperrors.Internal("Failed to save business hours", err)
	}

	s.cfg.Log.Info("Business hours updated", logger.TENANT, tenantID, "timezone", hours.Timezone)
	return nil
}

func (s *calendarService) AddBlockedDate(ctx context.Context, tenantID model.TenantID, blocked *model.BlockedDate) error {
	blocked.ID = uuid.NewString()
	blocked.TenantID = tenantID
	blocked.Reason = sanitizer.NormalizeName(blocked.Reason)

	if err := s.validator.ValidateBlockedDate(blocked); err != nil {
		s.cfg.Log.Warn("Blocked date validation failed", logger.TENANT, tenantID, "date", blocked.Date, "error", err)
		return validationError("Blocked date validation failed", err)
	}

	if err := s.blocked.Create(ctx, blocked); err != nil {
		s.cfg.Log.Error("Failed to create blocked date", logger.TENANT, tenantID, "error", err)
		return apperrors.Internal("Failed to create blocked date", err)
	}

	s.cfg.Log.Info("Blocked date added",
		logger.TENANT, tenantID,
		"id", blocked.ID,
		"date", blocked.Date,
		"pattern", blocked.RecurringPattern,
	)
	return nil
}

func (s *calendarService) ListBlockedDates(ctx context.Context, tenantID model.TenantID) ([]*model.BlockedDate, error) {
	blocked, err := s.blocked.FindAll(ctx, tenantID)
	if err != nil {
		s.cfg.Log.Error("Failed to list blocked dates", logger.TENANT, tenantID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve blocked dates", err)
	}
	return blocked, nil
}

func (s *calendarService) DeleteBlockedDate(ctx context.Context, tenantID model.TenantID, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Blocked date ID cannot be empty")
	}

	if err := s.blocked.Delete(ctx, tenantID, id); err != nil {
		if errors.Is(err, calendarerrors.ErrBlockedDateNotFound) {
			return apperrors.NotFoundWithID("Blocked date", id)
		}
		s.cfg.Log.Error("Failed to delete blocked date", logger.TENANT, tenantID, "id", id, "error", err)
		return apperrors.Internal("Failed to delete blocked date", err)
	}

	s.cfg.Log.Info("Blocked date deleted", logger.TENANT, tenantID, "id", id)
	return nil
}

func validationError(message string, err error) error {
	var verrs validation.ValidationErrors
	if errors.As(err, &verrs) {
		return apperrors.Validation(message, verrs.Fields())
	}
	return apperrors.Validation(message, map[string]any{"error": err.Error()})
}
