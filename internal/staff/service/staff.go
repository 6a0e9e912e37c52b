package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"visitly/internal/staff/repository"
	stafferrors "visitly/internal/staff/errors"
	"visitly/internal/staff/validator"
	"visitly/pkg/config"
	apperrors "visitly/pkg/errors"
	"visitly/pkg/logger"
	"visitly/pkg/model"
	"visitly/pkg/sanitizer"
	"visitly/pkg/validation"

	"github.com/google/uuid"
)

// ServiceLookup resolves catalog services.
type ServiceLookup interface {
	GetService(ctx context.Context, tenantID model.TenantID, id string) (*model.Service, error)
}

type StaffService interface {
	CreateStaff(ctx context.Context, tenantID model.TenantID, staff *model.Staff) error
	GetStaff(ctx context.Context, tenantID model.TenantID, id string) (*model.Staff, error)
	ListStaff(ctx context.Context, tenantID model.TenantID, limit int, offset int64) ([]*model.Staff, int64, error)
	UpdateStaff(ctx context.Context, tenantID model.TenantID, id string, update *model.StaffUpdate) (*model.Staff, error)

	GetSchedule(ctx context.Context, tenantID model.TenantID, staffID string) (*model.WeeklySchedule, error)
	SetScheduleDay(ctx context.Context, tenantID model.TenantID, staffID string, day time.Weekday, entry *model.DaySchedule) (*model.WeeklySchedule, error)

	SetCapability(ctx context.Context, tenantID model.TenantID, capability *model.StaffCapability) (*model.StaffCapability, error)
	ListCapabilities(ctx context.Context, tenantID model.TenantID, staffID string) ([]*model.StaffCapability, error)
}

type staffService struct {
	staff        repository.StaffRepository
	schedules    repository.ScheduleRepository
	capabilities repository.CapabilityRepository
	services     ServiceLookup
	validator    *validator.StaffValidator
	cfg          *config.Config
}

func NewStaffService(
	staff repository.StaffRepository,
	schedules repository.ScheduleRepository,
	capabilities repository.CapabilityRepository,
	services ServiceLookup,
	validator *validator.StaffValidator,
	cfg *config.Config,
) StaffService {
	return &staffService{
		staff:        staff,
		schedules:    schedules,
		capabilities: capabilities,
		services:     services,
		validator:    validator,
		cfg:          cfg,
	}
}

func (s *staffService) CreateStaff(ctx context.Context, tenantID model.TenantID, staff *model.Staff) error {
	staff.ID = uuid.NewString()
	staff.TenantID = tenantID
	staff.Name = sanitizer.NormalizeName(staff.Name)

	if err := s.validator.ValidateStaff(staff); err != nil {
		s.cfg.Log.Warn("Staff validation failed", logger.TENANT, tenantID, "error", err)
		return validationError("Staff validation failed", err)
	}

	if err := s.staff.Create(ctx, staff); err != nil {
		s.cfg.Log.Error("Failed to create staff member", logger.TENANT, tenantID, "error", err)
		return apperrors.Internal("Failed to create staff member", err)
	}

	s.cfg.Log.Info("Staff member created", logger.TENANT, tenantID, "staff_id", staff.ID, "is_active", staff.IsActive)
	return nil
}

func (s *staffService) GetStaff(ctx context.Context, tenantID model.TenantID, id string) (*model.Staff, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Staff ID cannot be empty")
	}

	staff, err := s.staff.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, s.lookupError(tenantID, id, err)
	}
	return staff, nil
}

func (s *staffService) ListStaff(ctx context.Context, tenantID model.TenantID, limit int, offset int64) ([]*model.Staff, int64, error) {
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	var (
		count             int64
		staff             []*model.Staff
		errCount, errFind error
		wg                sync.WaitGroup
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		count, errCount = s.staff.Count(ctx, tenantID)
	}()
	go func() {
		defer wg.Done()
		staff, errFind = s.staff.FindAll(ctx, tenantID, limit, offset)
	}()
	wg.Wait()

	if err := errors.Join(errCount, errFind); err != nil {
		s.cfg.Log.Error("Failed to list staff", logger.TENANT, tenantID, "error", err)
		return nil, 0, apperrors.Internal("Failed to retrieve staff", err)
	}
	return staff, count, nil
}

func (s *staffService) UpdateStaff(ctx context.Context, tenantID model.TenantID, id string, update *model.StaffUpdate) (*model.Staff, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Staff ID cannot be empty")
	}
	update.Name = sanitizer.NormalizeName(update.Name)

	if err := s.validator.ValidateUpdate(update); err != nil {
		s.cfg.Log.Warn("Staff update validation failed", logger.TENANT, tenantID, "staff_id", id, "error", err)
		return nil, validationError("Staff update validation failed", err)
	}

	if err := s.staff.Update(ctx, tenantID, id, update); err != nil {
		return nil, s.lookupError(tenantID, id, err)
	}

	s.cfg.Log.Info("Staff member updated", logger.TENANT, tenantID, "staff_id", id)
	return s.GetStaff(ctx, tenantID, id)
}

func (s *staffService) GetSchedule(ctx context.Context, tenantID model.TenantID, staffID string) (*model.WeeklySchedule, error) {
	if _, err := s.GetStaff(ctx, tenantID, staffID); err != nil {
		return nil, err
	}

	schedule, err := s.schedules.FindByStaffID(ctx, tenantID, staffID)
	if err != nil {
		if errors.Is(err, stafferrors.ErrScheduleNotFound) {
			// No schedule yet means no working days.
			return &model.WeeklySchedule{
				TenantID: tenantID,
				StaffID:  staffID,
				Days:     map[time.Weekday]model.DaySchedule{},
			}, nil
		}
		s.cfg.Log.Error("Failed to get schedule", logger.TENANT, tenantID, "staff_id", staffID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve schedule", err)
	}
	return schedule, nil
}

func (s *staffService) SetScheduleDay(ctx context.Context, tenantID model.TenantID, staffID string, day time.Weekday, entry *model.DaySchedule) (*model.WeeklySchedule, error) {
	if day < time.Sunday || day > time.Saturday {
		return nil, apperrors.InvalidInput("Day must be between 0 (Sunday) and 6 (Saturday)")
	}
	if err := s.validator.ValidateDay(entry); err != nil {
		s.cfg.Log.Warn("Schedule validation failed", logger.TENANT, tenantID, "staff_id", staffID, "day", day, "error", err)
		return nil, validationError("Schedule validation failed", err)
	}
	if !entry.IsAvailable {
		entry.StartTime, entry.EndTime = "", ""
	}

	if _, err := s.GetStaff(ctx, tenantID, staffID); err != nil {
		return nil, err
	}

	schedule, err := s.schedules.UpsertDay(ctx, tenantID, staffID, day, *entry)
	if err != nil {
		s.cfg.Log.Error("Failed to save schedule day", logger.TENANT, tenantID, "staff_id", staffID, "day", day, "error", err)
		return nil, apperrors.Internal("Failed to save schedule", err)
	}

	s.cfg.Log.Info("Schedule day updated",
		logger.TENANT, tenantID,
		"staff_id", staffID,
		"day", day.String(),
		"is_available", entry.IsAvailable,
	)
	return schedule, nil
}

func (s *staffService) SetCapability(ctx context.Context, tenantID model.TenantID, capability *model.StaffCapability) (*model.StaffCapability, error) {
	capability.TenantID = tenantID

	if _, err := s.GetStaff(ctx, tenantID, capability.StaffID); err != nil {
		return nil, err
	}
	svc, err := s.services.GetService(ctx, tenantID, capability.ServiceID)
	if err != nil {
		return nil, err
	}

	if err := s.validator.ValidateCapability(capability, svc); err != nil {
		s.cfg.Log.Warn("Capability validation failed",
			logger.TENANT, tenantID,
			"staff_id", capability.StaffID,
			"service_id", capability.ServiceID,
			"error", err,
		)
		return nil, validationError("Capability validation failed", err)
	}

	saved, err := s.capabilities.Upsert(ctx, capability)
	if err != nil {
		s.cfg.Log.Error("Failed to save capability", logger.TENANT, tenantID, "error", err)
		return nil, apperrors.Internal("Failed to save capability", err)
	}

	s.cfg.Log.Info("Capability updated",
		logger.TENANT, tenantID,
		"staff_id", saved.StaffID,
		"service_id", saved.ServiceID,
		"can_perform", saved.CanPerform,
		"home_visit", saved.HomeVisit,
	)
	return saved, nil
}

func (s *staffService) ListCapabilities(ctx context.Context, tenantID model.TenantID, staffID string) ([]*model.StaffCapability, error) {
	if _, err := s.GetStaff(ctx, tenantID, staffID); err != nil {
		return nil, err
	}

	capabilities, err := s.capabilities.FindByStaff(ctx, tenantID, staffID)
	if err != nil {
		s.cfg.Log.Error("Failed to list capabilities", logger.TENANT, tenantID, "staff_id", staffID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve capabilities", err)
	}
	return capabilities, nil
}

func (s *staffService) lookupError(tenantID model.TenantID, id string, err error) error {
	if errors.Is(err, stafferrors.ErrStaffNotFound) {
		return apperrors.NotFoundWithID("Staff", id)
	}
	s.cfg.Log.Error("Failed to access staff member", logger.TENANT, tenantID, "staff_id", id, "error", err)
	return apperrors.Internal("Failed to retrieve staff member", err)
}

func validationError(message string, err error) error {
	var verrs validation.ValidationErrors
	if errors.As(err, &verrs) {
		return apperrors.Validation(message, verrs.Fields())
	}
	return apperrors.Validation(message, map[string]any{"error": err.Error()})
}
