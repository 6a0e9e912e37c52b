package availability

import (
	"context"
	"fmt"

	"visitly/pkg/model"
)

// Quota is the home-visit usage of one staff member for one service on one
// local date. Max and Remaining are model.Unlimited when the service has no
// daily limit.
type Quota struct {
	Count     int
	Max       int
	Remaining int
}

func (q Quota) Exhausted() bool {
	return q.Max != model.Unlimited && q.Remaining <= 0
}

type QuotaTracker struct {
	bookings BookingReader
	statuses []model.BookingStatus
}

// NewQuotaTracker counts pending bookings toward the quota only when
// countPending is set; confirmed and completed ones always count.
func NewQuotaTracker(bookings BookingReader, countPending bool) *QuotaTracker {
	statuses := []model.BookingStatus{model.BookingConfirmed, model.BookingCompleted}
	if countPending {
		statuses = append(statuses, model.BookingPending)
	}
	return &QuotaTracker{bookings: bookings, statuses: statuses}
}

func (q *QuotaTracker) Statuses() []model.BookingStatus {
	return q.statuses
}

func (q *QuotaTracker) RemainingQuota(ctx context.Context, tenantID model.TenantID, staffID string, svc *model.Service, localDate string) (Quota, error) {
	count, err := q.bookings.CountHomeVisits(ctx, tenantID, staffID, svc.ID, localDate, q.statuses)
	if err != nil {
		return Quota{}, fmt.Errorf("failed to count home visits: %w", err)
	}

	limit, ok := svc.Quota()
	if !ok {
		return Quota{Count: count, Max: model.Unlimited, Remaining: model.Unlimited}, nil
	}
	return Quota{Count: count, Max: limit, Remaining: max(0, limit-count)}, nil
}
