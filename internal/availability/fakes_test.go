package availability

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	stafferrors "visitly/internal/staff/errors"
	apperrors "visitly/pkg/errors"
	"visitly/pkg/model"
)

type fakeBookings struct {
	mu       sync.Mutex
	bookings []*model.Booking
}

func (f *fakeBookings) add(b *model.Booking) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bookings = append(f.bookings, b)
}

func (f *fakeBookings) FindOverlapping(ctx context.Context, tenantID model.TenantID, staffID string, start, end time.Time, excludeID string) ([]*model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []*model.Booking
	for _, b := range f.bookings {
		if b.TenantID != tenantID || b.AssignedStaffID != staffID || b.ID == excludeID || !b.Status.IsActive() {
			continue
		}
		if b.ScheduledAt.Before(end) && b.EndAt.After(start) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBookings) CountHomeVisits(ctx context.Context, tenantID model.TenantID, staffID, serviceID, localDate string, statuses []model.BookingStatus) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	count := 0
	for _, b := range f.bookings {
		if b.TenantID == tenantID && b.AssignedStaffID == staffID && b.ServiceID == serviceID &&
			b.LocalDate == localDate && b.IsHomeVisit && slices.Contains(statuses, b.Status) {
			count++
		}
	}
	return count, nil
}

type fakeServices map[string]*model.Service

func (f fakeServices) GetService(ctx context.Context, tenantID model.TenantID, id string) (*model.Service, error) {
	if svc, ok := f[id]; ok {
		return svc, nil
	}
	return nil, apperrors.NotFoundWithID("Service", id)
}

type fakeStaff map[string]*model.Staff

func (f fakeStaff) FindByIDs(ctx context.Context, tenantID model.TenantID, ids []string) ([]*model.Staff, error) {
	var out []*model.Staff
	for _, id := range ids {
		if s, ok := f[id]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}

type fakeSchedules map[string]*model.WeeklySchedule

func (f fakeSchedules) FindByStaffIDs(ctx context.Context, tenantID model.TenantID, staffIDs []string) (map[string]*model.WeeklySchedule, error) {
	out := map[string]*model.WeeklySchedule{}
	for _, id := range staffIDs {
		if s, ok := f[id]; ok {
			out[id] = s
		}
	}
	return out, nil
}

type fakeCapabilities []*model.StaffCapability

func (f fakeCapabilities) Find(ctx context.Context, tenantID model.TenantID, staffID, serviceID string) (*model.StaffCapability, error) {
	for _, c := range f {
		if c.StaffID == staffID && c.ServiceID == serviceID {
			return c, nil
		}
	}
	return nil, fmt.Errorf("%w: %s/%s", stafferrors.ErrCapabilityNotFound, staffID, serviceID)
}

func (f fakeCapabilities) FindByService(ctx context.Context, tenantID model.TenantID, serviceID string) ([]*model.StaffCapability, error) {
	var out []*model.StaffCapability
	for _, c := range f {
		if c.ServiceID == serviceID && c.CanPerform {
			out = append(out, c)
		}
	}
	return out, nil
}

type fixedCalendar struct {
	loc *time.Location
}

func (c fixedCalendar) Location(ctx context.Context, tenantID model.TenantID) (*time.Location, error) {
	return c.loc, nil
}
