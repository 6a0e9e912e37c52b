package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"visitly/internal/availability"
	bookingserrors "visitly/internal/bookings/errors"
	"visitly/internal/bookings/events"
	"visitly/internal/bookings/repository"
	"visitly/internal/bookings/validator"
	"visitly/internal/calendar/clock"
	"visitly/pkg/config"
	apperrors "visitly/pkg/errors"
	"visitly/pkg/logger"
	"visitly/pkg/model"
	"visitly/pkg/sanitizer"
	"visitly/pkg/validation"

	"github.com/google/uuid"
)

// autoAssignAttempts bounds how often auto-assignment picks a fresh
// candidate after losing a slot to a concurrent request.
const autoAssignAttempts = 2

type Catalog interface {
	GetService(ctx context.Context, tenantID model.TenantID, id string) (*model.Service, error)
	GetCustomer(ctx context.Context, tenantID model.TenantID, id string) (*model.Customer, error)
}

type Calendar interface {
	Location(ctx context.Context, tenantID model.TenantID) (*time.Location, error)
	IsOpen(ctx context.Context, tenantID model.TenantID, start time.Time, duration time.Duration) (bool, error)
	IsBlocked(ctx context.Context, tenantID model.TenantID, date string) (bool, error)
}

// Availability is implemented by *availability.Resolver.
type Availability interface {
	Resolve(ctx context.Context, q availability.Query) ([]model.StaffAvailability, error)
	Evaluate(ctx context.Context, q availability.Query, staffID string) (model.StaffAvailability, error)
	Recheck(ctx context.Context, q availability.Query, svc *model.Service, staffID string, localDate string) (string, error)
}

// AvailabilityQuery is the input of ListAvailableStaff. Zero duration and nil
// buffer fall back to the service's settings.
type AvailabilityQuery struct {
	ServiceID       string
	ScheduledAt     time.Time
	DurationMinutes int
	BufferMinutes   *int
	IsHomeVisit     bool
}

type BookingScheduler interface {
	CreateBooking(ctx context.Context, tenantID model.TenantID, req *model.CreateBookingRequest) (*model.Booking, error)
	GetBooking(ctx context.Context, tenantID model.TenantID, id string) (*model.Booking, error)
	ListBookings(ctx context.Context, tenantID model.TenantID, filter model.BookingFilter) ([]*model.Booking, int64, error)

	AssignStaff(ctx context.Context, tenantID model.TenantID, bookingID, staffID string) (*model.Booking, error)
	UnassignStaff(ctx context.Context, tenantID model.TenantID, bookingID string) (*model.Booking, error)

	CancelBooking(ctx context.Context, tenantID model.TenantID, bookingID, reason string) (*model.Booking, error)
	ConfirmBooking(ctx context.Context, tenantID model.TenantID, bookingID string) (*model.Booking, error)
	CompleteBooking(ctx context.Context, tenantID model.TenantID, bookingID string) (*model.Booking, error)

	ListAvailableStaff(ctx context.Context, tenantID model.TenantID, q AvailabilityQuery) ([]model.StaffAvailability, error)
}

type scheduler struct {
	bookings     repository.BookingRepository
	locks        repository.StaffLockRepository
	versions     repository.CalendarVersionRepository
	catalog      Catalog
	calendar     Calendar
	availability Availability
	events       events.Publisher
	validator    *validator.BookingValidator
	cfg          *config.Config
	now          func() time.Time
}

func NewBookingScheduler(
	bookings repository.BookingRepository,
	locks repository.StaffLockRepository,
	versions repository.CalendarVersionRepository,
	catalog Catalog,
	calendar Calendar,
	availability Availability,
	publisher events.Publisher,
	validator *validator.BookingValidator,
	cfg *config.Config,
) BookingScheduler {
	return &scheduler{
		bookings:     bookings,
		locks:        locks,
		versions:     versions,
		catalog:      catalog,
		calendar:     calendar,
		availability: availability,
		events:       publisher,
		validator:    validator,
		cfg:          cfg,
		now:          time.Now,
	}
}

func (s *scheduler) CreateBooking(ctx context.Context, tenantID model.TenantID, req *model.CreateBookingRequest) (*model.Booking, error) {
	s.sanitize(req)
	if err := s.validator.ValidateCreate(req); err != nil {
		s.cfg.Log.Warn("Booking validation failed", logger.TENANT, tenantID, "error", err)
		return nil, validationError("Booking validation failed", err)
	}

	svc, err := s.catalog.GetService(ctx, tenantID, req.ServiceID)
	if err != nil {
		return nil, err
	}
	if _, err := s.catalog.GetCustomer(ctx, tenantID, req.CustomerID); err != nil {
		return nil, err
	}
	if !svc.Supports(req.IsHomeVisit) {
		return nil, apperrors.Validation("Service is not offered at the requested location", map[string]any{
			"service_id":    svc.ID,
			"location_type": svc.LocationType,
			"is_home_visit": req.IsHomeVisit,
		})
	}

	duration := req.DurationMinutes
	if duration == 0 {
		duration = svc.DurationMinutes
	}

	now := s.timestamp()
	scheduledAt := req.ScheduledAt.UTC().Truncate(time.Millisecond)
	if !scheduledAt.After(now) {
		return nil, apperrors.Validation("Booking must be scheduled in the future", map[string]any{
			"scheduled_at": scheduledAt,
		})
	}

	loc, err := s.calendar.Location(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	booking := &model.Booking{
		ID:               uuid.NewString(),
		TenantID:         tenantID,
		ServiceID:        svc.ID,
		CustomerID:       req.CustomerID,
		ScheduledAt:      scheduledAt,
		EndAt:            scheduledAt.Add(time.Duration(duration) * time.Minute),
		LocalDate:        clock.LocalDate(scheduledAt, loc),
		DurationMinutes:  duration,
		IsHomeVisit:      req.IsHomeVisit,
		Status:           model.BookingPending,
		HomeVisitAddress: req.HomeVisitAddress,
		Coordinates:      req.Coordinates,
		Notes:            req.Notes,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.checkCalendar(ctx, booking); err != nil {
		return nil, err
	}

	switch {
	case req.StaffID != "":
		err = s.createWithStaff(ctx, booking, svc, req.StaffID)
	case s.autoAssigns(booking, svc):
		err = s.createAutoAssigned(ctx, booking, svc)
	default:
		err = s.insert(ctx, booking)
	}
	if err != nil {
		s.logFailure("Failed to create booking", tenantID, booking.ID, err)
		return nil, err
	}

	s.cfg.Log.Info("Booking created successfully",
		logger.TENANT, tenantID,
		"id", booking.ID,
		"service_id", booking.ServiceID,
		"scheduled_at", booking.ScheduledAt,
		"staff_id", booking.AssignedStaffID,
	)
	s.events.Publish(ctx, events.BookingCreated, booking)
	return booking, nil
}

func (s *scheduler) GetBooking(ctx context.Context, tenantID model.TenantID, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.bookings.FindByID(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		if errors.Is(err, bookingserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid booking ID format")
		}
		s.cfg.Log.Error("Failed to get booking", logger.TENANT, tenantID, "id", id, "error", err)
		return nil, apperrors.Internal("Failed to retrieve booking", err)
	}
	return booking, nil
}

func (s *scheduler) ListBookings(ctx context.Context, tenantID model.TenantID, filter model.BookingFilter) ([]*model.Booking, int64, error) {
	if err := s.validator.ValidateFilter(filter); err != nil {
		return nil, 0, validationError("Invalid booking filter", err)
	}
	filter.Limit = config.NormalizePaginationLimit(filter.Limit)
	filter.Offset = config.NormalizeOffset(filter.Offset)

	var count int64
	var bookings []*model.Booking
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		var err error
		count, err = s.bookings.Count(ctx, tenantID, filter)
		if err != nil {
			s.cfg.Log.Error("Failed to count bookings", logger.TENANT, tenantID, "error", err)
			errCount = apperrors.Internal("Failed to count bookings", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		bookings, err = s.bookings.FindAll(ctx, tenantID, filter)
		if err != nil {
			s.cfg.Log.Error("Failed to list bookings",
				logger.TENANT, tenantID,
				"limit", filter.Limit,
				"offset", filter.Offset,
				"error", err,
			)
			errFind = apperrors.Internal("Failed to retrieve bookings", err)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}
	if bookings == nil {
		bookings = []*model.Booking{}
	}
	return bookings, count, nil
}

func (s *scheduler) AssignStaff(ctx context.Context, tenantID model.TenantID, bookingID, staffID string) (*model.Booking, error) {
	if err := s.validator.ValidateAssign(&model.AssignStaffRequest{StaffID: staffID}); err != nil {
		return nil, validationError("Invalid staff assignment", err)
	}

	booking, err := s.GetBooking(ctx, tenantID, bookingID)
	if err != nil {
		return nil, err
	}
	if !booking.Status.IsActive() {
		return nil, apperrors.Conflict("Staff can only be assigned to pending or confirmed bookings").
			WithDetail("status", booking.Status)
	}
	if booking.AssignedStaffID == staffID {
		return booking, nil
	}

	svc, err := s.catalog.GetService(ctx, tenantID, booking.ServiceID)
	if err != nil {
		return nil, err
	}

	candidate, err := s.availability.Evaluate(ctx, s.queryFor(booking, svc), staffID)
	if err != nil {
		return nil, err
	}
	if !candidate.IsAvailable {
		return nil, availability.ReasonError(candidate, svc.ID)
	}

	updated := s.revise(booking)
	updated.AssignedStaffID = staffID
	err = s.reserve(ctx, updated, svc, staffID, func(txCtx context.Context) error {
		return s.save(txCtx, updated, booking.Revision)
	})
	if err != nil {
		s.logFailure("Failed to assign staff", tenantID, bookingID, err)
		return nil, err
	}

	s.cfg.Log.Info("Staff assigned to booking",
		logger.TENANT, tenantID,
		"id", bookingID,
		"staff_id", staffID,
		"previous_staff_id", booking.AssignedStaffID,
	)
	s.events.Publish(ctx, events.BookingStaffAssigned, updated)
	return updated, nil
}

func (s *scheduler) UnassignStaff(ctx context.Context, tenantID model.TenantID, bookingID string) (*model.Booking, error) {
	booking, err := s.GetBooking(ctx, tenantID, bookingID)
	if err != nil {
		return nil, err
	}
	if !booking.Status.IsActive() {
		return nil, apperrors.Conflict("Staff can only be unassigned from pending or confirmed bookings").
			WithDetail("status", booking.Status)
	}
	if !booking.IsAssigned() {
		return booking, nil
	}

	updated := s.revise(booking)
	updated.AssignedStaffID = ""
	if err := s.save(ctx, updated, booking.Revision); err != nil {
		s.logFailure("Failed to unassign staff", tenantID, bookingID, err)
		return nil, err
	}

	s.cfg.Log.Info("Staff unassigned from booking",
		logger.TENANT, tenantID,
		"id", bookingID,
		"staff_id", booking.AssignedStaffID,
	)
	s.events.Publish(ctx, events.BookingStaffUnassigned, updated)
	return updated, nil
}

func (s *scheduler) ListAvailableStaff(ctx context.Context, tenantID model.TenantID, q AvailabilityQuery) ([]model.StaffAvailability, error) {
	if q.ServiceID == "" {
		return nil, apperrors.InvalidInput("service_id is required")
	}
	if q.ScheduledAt.IsZero() {
		return nil, apperrors.InvalidInput("scheduled_at is required")
	}

	svc, err := s.catalog.GetService(ctx, tenantID, q.ServiceID)
	if err != nil {
		return nil, err
	}

	query := availability.Query{
		TenantID:        tenantID,
		ServiceID:       svc.ID,
		ScheduledAt:     q.ScheduledAt.UTC(),
		DurationMinutes: q.DurationMinutes,
		IsHomeVisit:     q.IsHomeVisit,
	}
	if query.DurationMinutes == 0 {
		query.DurationMinutes = svc.DurationMinutes
	}
	switch {
	case q.BufferMinutes != nil:
		query.BufferMinutes = *q.BufferMinutes
	case q.IsHomeVisit:
		query.BufferMinutes = svc.BufferMinutes()
	}

	return s.availability.Resolve(ctx, query)
}

func (s *scheduler) checkCalendar(ctx context.Context, b *model.Booking) error {
	blocked, err := s.calendar.IsBlocked(ctx, b.TenantID, b.LocalDate)
	if err != nil {
		return err
	}
	if blocked {
		return apperrors.DateBlocked(b.LocalDate)
	}

	open, err := s.calendar.IsOpen(ctx, b.TenantID, b.ScheduledAt, b.EndAt.Sub(b.ScheduledAt))
	if err != nil {
		return err
	}
	if !open {
		return apperrors.OutsideBusinessHours("Requested time is outside business hours").
			WithDetail("scheduled_at", b.ScheduledAt)
	}
	return nil
}

func (s *scheduler) autoAssigns(b *model.Booking, svc *model.Service) bool {
	return s.cfg.AutoAssignHomeVisits && b.IsHomeVisit && svc.RequiresStaffAssignment
}

func (s *scheduler) createWithStaff(ctx context.Context, b *model.Booking, svc *model.Service, staffID string) error {
	candidate, err := s.availability.Evaluate(ctx, s.queryFor(b, svc), staffID)
	if err != nil {
		return err
	}
	if !candidate.IsAvailable {
		return availability.ReasonError(candidate, svc.ID)
	}

	b.AssignedStaffID = staffID
	return s.reserve(ctx, b, svc, staffID, func(txCtx context.Context) error {
		return s.insert(txCtx, b)
	})
}

// createAutoAssigned reserves the top ranked candidate. A candidate lost to
// a concurrent request is replaced once by re-resolving.
func (s *scheduler) createAutoAssigned(ctx context.Context, b *model.Booking, svc *model.Service) error {
	var err error
	for attempt := 1; attempt <= autoAssignAttempts; attempt++ {
		var candidates []model.StaffAvailability
		candidates, err = s.availability.Resolve(ctx, s.queryFor(b, svc))
		if err != nil {
			return err
		}
		if len(candidates) == 0 || !candidates[0].IsAvailable {
			return apperrors.SlotUnavailable("No staff member is available for the requested time").
				WithDetail("service_id", svc.ID)
		}

		staffID := candidates[0].StaffID
		b.AssignedStaffID = staffID
		err = s.reserve(ctx, b, svc, staffID, func(txCtx context.Context) error {
			return s.insert(txCtx, b)
		})
		if err == nil || !apperrors.HasCode(err, apperrors.CodeSlotUnavailable) {
			return err
		}

		s.cfg.Log.Warn("Auto-assigned staff lost the slot",
			logger.TENANT, b.TenantID,
			"id", b.ID,
			"staff_id", staffID,
			"attempt", attempt,
		)
	}
	b.AssignedStaffID = ""
	return err
}

// reserve serialises writes to one staff calendar: the advisory lock keeps
// concurrent requests out, the version bump makes overlapping transactions
// conflict, and the recheck sees everything committed before it.
func (s *scheduler) reserve(ctx context.Context, b *model.Booking, svc *model.Service, staffID string, commit func(ctx context.Context) error) error {
	lock, err := s.acquireStaffLock(ctx, b.TenantID, staffID)
	if err != nil {
		return err
	}
	defer s.releaseStaffLock(lock)

	q := s.queryFor(b, svc)
	return s.bookings.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		if _, err := s.versions.Bump(txCtx, calendarVersionID(b.TenantID, staffID)); err != nil {
			return apperrors.Internal("Failed to reserve staff calendar", err)
		}

		reason, err := s.availability.Recheck(txCtx, q, svc, staffID, b.LocalDate)
		if err != nil {
			if apperrors.IsAppError(err) {
				return err
			}
			return apperrors.Internal("Failed to re-check staff availability", err)
		}
		if reason != "" {
			return apperrors.SlotUnavailable("The requested slot was taken by another booking").
				WithDetails(map[string]any{"staff_id": staffID, "reason": reason})
		}

		return commit(txCtx)
	})
}

func (s *scheduler) queryFor(b *model.Booking, svc *model.Service) availability.Query {
	q := availability.Query{
		TenantID:         b.TenantID,
		ServiceID:        b.ServiceID,
		ScheduledAt:      b.ScheduledAt,
		DurationMinutes:  b.DurationMinutes,
		IsHomeVisit:      b.IsHomeVisit,
		ExcludeBookingID: b.ID,
	}
	if b.IsHomeVisit {
		q.BufferMinutes = svc.BufferMinutes()
	}
	return q
}

func (s *scheduler) insert(ctx context.Context, b *model.Booking) error {
	if err := s.bookings.Create(ctx, b); err != nil {
		return apperrors.Internal("Failed to create booking", err)
	}
	return nil
}

func (s *scheduler) save(ctx context.Context, b *model.Booking, expected int64) error {
	if err := s.bookings.Update(ctx, b, expected); err != nil {
		if errors.Is(err, bookingserrors.ErrStaleBooking) {
			return apperrors.Conflict("Booking was modified by another request, please retry").
				WithDetail("booking_id", b.ID)
		}
		return apperrors.Internal("Failed to update booking", err)
	}
	return nil
}

// revise copies b for an update, bumping its revision.
func (s *scheduler) revise(b *model.Booking) *model.Booking {
	updated := *b
	updated.Revision = b.Revision + 1
	updated.UpdatedAt = s.timestamp()
	return &updated
}

// timestamp is truncated to what Mongo stores so round trips compare equal.
func (s *scheduler) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

func (s *scheduler) sanitize(req *model.CreateBookingRequest) {
	req.HomeVisitAddress = sanitizer.NormalizeAddress(req.HomeVisitAddress)
	req.Notes = sanitizer.NormalizeNotes(req.Notes)
}

// logFailure logs internal errors at error level and domain rejections at
// warn level.
func (s *scheduler) logFailure(msg string, tenantID model.TenantID, bookingID string, err error) {
	appErr := apperrors.AsAppError(err)
	if appErr.Code == apperrors.CodeInternal {
		s.cfg.Log.Error(msg, logger.TENANT, tenantID, "id", bookingID, "error", err)
		return
	}
	s.cfg.Log.Warn(msg, logger.TENANT, tenantID, "id", bookingID, "code", appErr.Code)
}

func validationError(message string, err error) error {
	var verrs validation.ValidationErrors
	if errors.As(err, &verrs) {
		return apperrors.Validation(message, verrs.Fields())
	}
	return apperrors.Validation(message, map[string]any{"error": err.Error()})
}
