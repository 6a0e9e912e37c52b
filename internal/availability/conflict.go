// Package availability decides which staff members can take a requested
// slot: working hours, overlapping bookings, travel buffers and daily
// home-visit quotas.
package availability

import (
	"context"
	"fmt"
	"time"

	"visitly/pkg/model"
)

// BookingReader is the read side of the booking store the checks run on.
type BookingReader interface {
	// FindOverlapping returns pending and confirmed bookings of staffID with
	// scheduled_at < end and end_at > start, skipping excludeID.
	FindOverlapping(ctx context.Context, tenantID model.TenantID, staffID string, start, end time.Time, excludeID string) ([]*model.Booking, error)
	CountHomeVisits(ctx context.Context, tenantID model.TenantID, staffID, serviceID, localDate string, statuses []model.BookingStatus) (int, error)
}

// Overlaps is the half-open interval test: [s1, e1) and [s2, e2) share at
// least one instant. Touching intervals do not overlap.
func Overlaps(s1, e1, s2, e2 time.Time) bool {
	return s1.Before(e2) && s2.Before(e1)
}

type ConflictChecker struct {
	bookings BookingReader
}

func NewConflictChecker(bookings BookingReader) *ConflictChecker {
	return &ConflictChecker{bookings: bookings}
}

// HasConflict reports whether [start, end) overlaps an active booking of
// the staff member other than excludeID.
func (c *ConflictChecker) HasConflict(ctx context.Context, tenantID model.TenantID, staffID string, start, end time.Time, excludeID string) (bool, error) {
	candidates, err := c.bookings.FindOverlapping(ctx, tenantID, staffID, start, end, excludeID)
	if err != nil {
		return false, fmt.Errorf("failed to load overlapping bookings: %w", err)
	}

	// The query is a coarse filter; the decision is made here.
	for _, b := range candidates {
		if b.ID == excludeID || !b.Status.IsActive() {
			continue
		}
		if Overlaps(start, end, b.ScheduledAt, b.EndAt) {
			return true, nil
		}
	}
	return false, nil
}
