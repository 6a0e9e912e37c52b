package availability

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"time"

	"visitly/internal/calendar/clock"
	stafferrors "visitly/internal/staff/errors"
	"visitly/pkg/config"
	apperrors "visitly/pkg/errors"
	"visitly/pkg/logger"
	"visitly/pkg/model"

	"golang.org/x/sync/errgroup"
)

type ServiceLookup interface {
	GetService(ctx context.Context, tenantID model.TenantID, id string) (*model.Service, error)
}

type StaffStore interface {
	FindByIDs(ctx context.Context, tenantID model.TenantID, ids []string) ([]*model.Staff, error)
}

type ScheduleStore interface {
	FindByStaffIDs(ctx context.Context, tenantID model.TenantID, staffIDs []string) (map[string]*model.WeeklySchedule, error)
}

type CapabilityStore interface {
	Find(ctx context.Context, tenantID model.TenantID, staffID, serviceID string) (*model.StaffCapability, error)
	FindByService(ctx context.Context, tenantID model.TenantID, serviceID string) ([]*model.StaffCapability, error)
}

type Calendar interface {
	Location(ctx context.Context, tenantID model.TenantID) (*time.Location, error)
}

// Query describes a requested slot. BufferMinutes pads the interval on both
// sides for the conflict check only.
type Query struct {
	TenantID         model.TenantID
	ServiceID        string
	ScheduledAt      time.Time
	DurationMinutes  int
	BufferMinutes    int
	IsHomeVisit      bool
	ExcludeBookingID string
}

func (q Query) End() time.Time {
	return q.ScheduledAt.Add(time.Duration(q.DurationMinutes) * time.Minute)
}

func (q Query) padded() (time.Time, time.Time) {
	buffer := time.Duration(q.BufferMinutes) * time.Minute
	return q.ScheduledAt.Add(-buffer), q.End().Add(buffer)
}

type Resolver struct {
	services     ServiceLookup
	staff        StaffStore
	schedules    ScheduleStore
	capabilities CapabilityStore
	calendar     Calendar
	conflicts    *ConflictChecker
	quotas       *QuotaTracker
	cfg          *config.Config
}

func NewResolver(
	services ServiceLookup,
	staff StaffStore,
	schedules ScheduleStore,
	capabilities CapabilityStore,
	calendar Calendar,
	bookings BookingReader,
	cfg *config.Config,
) *Resolver {
	return &Resolver{
		services:     services,
		staff:        staff,
		schedules:    schedules,
		capabilities: capabilities,
		calendar:     calendar,
		conflicts:    NewConflictChecker(bookings),
		quotas:       NewQuotaTracker(bookings, cfg.QuotaCountPending),
		cfg:          cfg,
	}
}

// slot is a query bound to its service and the tenant's local calendar.
type slot struct {
	Query
	service   *model.Service
	loc       *time.Location
	localDate string
}

func (r *Resolver) prepare(ctx context.Context, q Query) (*slot, error) {
	if q.DurationMinutes <= 0 {
		return nil, apperrors.InvalidInput("Duration must be positive")
	}
	if q.BufferMinutes < 0 {
		return nil, apperrors.InvalidInput("Buffer must not be negative")
	}

	svc, err := r.services.GetService(ctx, q.TenantID, q.ServiceID)
	if err != nil {
		return nil, err
	}
	if !svc.Supports(q.IsHomeVisit) {
		return nil, apperrors.Validation("Service is not offered at the requested location", map[string]any{
			"service_id":    svc.ID,
			"location_type": svc.LocationType,
			"is_home_visit": q.IsHomeVisit,
		})
	}

	loc, err := r.calendar.Location(ctx, q.TenantID)
	if err != nil {
		return nil, err
	}

	return &slot{
		Query:     q,
		service:   svc,
		loc:       loc,
		localDate: clock.LocalDate(q.ScheduledAt, loc),
	}, nil
}

// Resolve lists every staff member mapped to the service (with home-visit
// permission when the query is a home visit), annotated and ranked:
// available first, then fewer home visits that day, then staff id.
func (r *Resolver) Resolve(ctx context.Context, q Query) ([]model.StaffAvailability, error) {
	s, err := r.prepare(ctx, q)
	if err != nil {
		return nil, err
	}

	capabilities, err := r.capabilities.FindByService(ctx, q.TenantID, q.ServiceID)
	if err != nil {
		r.cfg.Log.Error("Failed to load capabilities", logger.TENANT, q.TenantID, "service_id", q.ServiceID, "error", err)
		return nil, apperrors.Internal("Failed to resolve staff availability", err)
	}

	var ids []string
	for _, c := range capabilities {
		if c.Qualifies(q.IsHomeVisit) {
			ids = append(ids, c.StaffID)
		}
	}
	if len(ids) == 0 {
		return []model.StaffAvailability{}, nil
	}

	staff, schedules, err := r.load(ctx, q.TenantID, ids)
	if err != nil {
		return nil, err
	}

	results := make([]model.StaffAvailability, len(staff))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.ResolverConcurrency)
	for i, member := range staff {
		g.Go(func() error {
			result, err := r.evaluate(gctx, s, member, schedules[member.ID])
			if err != nil {
				return err
			}
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if apperrors.IsAppError(err) {
			return nil, err
		}
		r.cfg.Log.Error("Failed to evaluate staff", logger.TENANT, q.TenantID, "service_id", q.ServiceID, "error", err)
		return nil, apperrors.Internal("Failed to resolve staff availability", err)
	}

	Rank(results)

	r.cfg.Log.Debug("Resolved staff availability",
		logger.TENANT, q.TenantID,
		"service_id", q.ServiceID,
		"scheduled_at", q.ScheduledAt,
		"candidates", len(results),
	)
	return results, nil
}

// Evaluate runs the same checks for a single staff member and additionally
// reports StaffNotQualified when the staff member is not mapped to the
// service.
func (r *Resolver) Evaluate(ctx context.Context, q Query, staffID string) (model.StaffAvailability, error) {
	s, err := r.prepare(ctx, q)
	if err != nil {
		return model.StaffAvailability{}, err
	}

	staff, schedules, err := r.load(ctx, q.TenantID, []string{staffID})
	if err != nil {
		return model.StaffAvailability{}, err
	}
	if len(staff) == 0 {
		return model.StaffAvailability{}, apperrors.NotFoundWithID("Staff", staffID)
	}
	member := staff[0]

	capability, err := r.capabilities.Find(ctx, q.TenantID, staffID, q.ServiceID)
	if err != nil && !errors.Is(err, stafferrors.ErrCapabilityNotFound) {
		r.cfg.Log.Error("Failed to load capability", logger.TENANT, q.TenantID, "staff_id", staffID, "error", err)
		return model.StaffAvailability{}, apperrors.Internal("Failed to evaluate staff", err)
	}
	if !capability.Qualifies(q.IsHomeVisit) {
		return unavailable(member, apperrors.CodeStaffNotQualified), nil
	}

	result, err := r.evaluate(ctx, s, member, schedules[staffID])
	if err != nil {
		if apperrors.IsAppError(err) {
			return model.StaffAvailability{}, err
		}
		r.cfg.Log.Error("Failed to evaluate staff", logger.TENANT, q.TenantID, "staff_id", staffID, "error", err)
		return model.StaffAvailability{}, apperrors.Internal("Failed to evaluate staff", err)
	}
	return result, nil
}

// Recheck repeats the checks that depend on other bookings: conflict with
// buffer, then quota. It returns the reason code, or "" when the slot is
// still free. Callers run it inside the reservation transaction.
func (r *Resolver) Recheck(ctx context.Context, q Query, svc *model.Service, staffID string, localDate string) (string, error) {
	start, end := q.padded()
	conflict, err := r.conflicts.HasConflict(ctx, q.TenantID, staffID, start, end, q.ExcludeBookingID)
	if err != nil {
		return "", err
	}
	if conflict {
		return apperrors.CodeTimeConflict, nil
	}

	if q.IsHomeVisit {
		quota, err := r.quotas.RemainingQuota(ctx, q.TenantID, staffID, svc, localDate)
		if err != nil {
			return "", err
		}
		if quota.Exhausted() {
			return apperrors.CodeQuotaExceeded, nil
		}
	}
	return "", nil
}

func (r *Resolver) load(ctx context.Context, tenantID model.TenantID, ids []string) ([]*model.Staff, map[string]*model.WeeklySchedule, error) {
	var (
		staff     []*model.Staff
		schedules map[string]*model.WeeklySchedule
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		staff, err = r.staff.FindByIDs(gctx, tenantID, ids)
		return err
	})
	g.Go(func() error {
		var err error
		schedules, err = r.schedules.FindByStaffIDs(gctx, tenantID, ids)
		return err
	})
	if err := g.Wait(); err != nil {
		r.cfg.Log.Error("Failed to load staff", logger.TENANT, tenantID, "error", err)
		return nil, nil, apperrors.Internal("Failed to load staff", err)
	}
	return staff, schedules, nil
}

// evaluate applies the checks in order: active, working hours, conflict
// with buffer, quota. The first failing check is the reported reason.
func (r *Resolver) evaluate(ctx context.Context, s *slot, member *model.Staff, schedule *model.WeeklySchedule) (model.StaffAvailability, error) {
	result := model.StaffAvailability{
		StaffID:       member.ID,
		StaffName:     member.Name,
		MaxHomeVisits: model.Unlimited,
	}

	// Quotas only limit home visits.
	quota := Quota{Max: model.Unlimited, Remaining: model.Unlimited}
	if s.IsHomeVisit {
		var err error
		quota, err = r.quotas.RemainingQuota(ctx, s.TenantID, member.ID, s.service, s.localDate)
		if err != nil {
			return result, err
		}
		result.HomeVisitCount = quota.Count
		result.MaxHomeVisits = quota.Max
	}

	if !member.IsActive {
		result.UnavailableReason = apperrors.CodeStaffInactive
		return result, nil
	}

	day, ok := schedule.Day(clock.Weekday(s.ScheduledAt, s.loc))
	if !ok || !day.IsAvailable {
		result.UnavailableReason = apperrors.CodeOutsideWorkingHours
		return result, nil
	}
	within, err := clock.Within(s.ScheduledAt, s.End(), day.StartTime, day.EndTime, s.loc)
	if err != nil {
		return result, err
	}
	if !within {
		result.UnavailableReason = apperrors.CodeOutsideWorkingHours
		return result, nil
	}

	start, end := s.padded()
	conflict, err := r.conflicts.HasConflict(ctx, s.TenantID, member.ID, start, end, s.ExcludeBookingID)
	if err != nil {
		return result, err
	}
	if conflict {
		result.UnavailableReason = apperrors.CodeTimeConflict
		return result, nil
	}

	if quota.Exhausted() {
		result.UnavailableReason = apperrors.CodeQuotaExceeded
		return result, nil
	}

	result.IsAvailable = true
	return result, nil
}

func unavailable(member *model.Staff, reason string) model.StaffAvailability {
	return model.StaffAvailability{
		StaffID:           member.ID,
		StaffName:         member.Name,
		UnavailableReason: reason,
		MaxHomeVisits:     model.Unlimited,
	}
}

// Rank orders candidates: available first, then ascending home-visit
// count, then staff id.
func Rank(results []model.StaffAvailability) {
	slices.SortFunc(results, func(a, b model.StaffAvailability) int {
		if a.IsAvailable != b.IsAvailable {
			if a.IsAvailable {
				return -1
			}
			return 1
		}
		if c := cmp.Compare(a.HomeVisitCount, b.HomeVisitCount); c != 0 {
			return c
		}
		return cmp.Compare(a.StaffID, b.StaffID)
	})
}
