package availability

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"visitly/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tenant = model.TenantID("0b6f3d0e-2a57-4c1b-9a7e-5d9c4e3f2a10")

var base = time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC)

func at(h, m int) time.Time {
	return base.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute)
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name           string
		s1, e1, s2, e2 time.Time
		want           bool
	}{
		{"disjoint", at(9, 0), at(10, 0), at(11, 0), at(12, 0), false},
		{"back to back", at(9, 0), at(10, 0), at(10, 0), at(11, 0), false},
		{"partial", at(9, 0), at(10, 0), at(9, 30), at(10, 30), true},
		{"contained", at(9, 0), at(12, 0), at(10, 0), at(11, 0), true},
		{"identical", at(9, 0), at(10, 0), at(9, 0), at(10, 0), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Overlaps(tt.s1, tt.e1, tt.s2, tt.e2))
			assert.Equal(t, tt.want, Overlaps(tt.s2, tt.e2, tt.s1, tt.e1))
		})
	}
}

// Compares the interval test against minute-by-minute occupancy.
func TestOverlaps_RandomIntervals(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 2000; i++ {
		s1 := rng.Intn(600)
		e1 := s1 + 1 + rng.Intn(120)
		s2 := rng.Intn(600)
		e2 := s2 + 1 + rng.Intn(120)

		var occupied [720]bool
		for m := s1; m < e1; m++ {
			occupied[m] = true
		}
		shared := false
		for m := s2; m < e2; m++ {
			shared = shared || occupied[m]
		}

		got := Overlaps(at(0, s1), at(0, e1), at(0, s2), at(0, e2))
		require.Equal(t, shared, got, "[%d,%d) vs [%d,%d)", s1, e1, s2, e2)
	}
}

func TestHasConflict(t *testing.T) {
	bookings := &fakeBookings{}
	bookings.add(&model.Booking{ID: "b1", TenantID: tenant, AssignedStaffID: "s1", ScheduledAt: at(9, 0), EndAt: at(10, 0), Status: model.BookingConfirmed})
	bookings.add(&model.Booking{ID: "b2", TenantID: tenant, AssignedStaffID: "s1", ScheduledAt: at(12, 0), EndAt: at(13, 0), Status: model.BookingCancelled})
	bookings.add(&model.Booking{ID: "b3", TenantID: tenant, AssignedStaffID: "s2", ScheduledAt: at(14, 0), EndAt: at(15, 0), Status: model.BookingPending})
	checker := NewConflictChecker(bookings)
	ctx := context.Background()

	tests := []struct {
		name      string
		staff     string
		start     time.Time
		end       time.Time
		excludeID string
		want      bool
	}{
		{"overlaps confirmed", "s1", at(9, 30), at(10, 30), "", true},
		{"back to back after", "s1", at(10, 0), at(11, 0), "", false},
		{"back to back before", "s1", at(8, 0), at(9, 0), "", false},
		{"cancelled frees time", "s1", at(12, 0), at(13, 0), "", false},
		{"other staff", "s1", at(14, 0), at(15, 0), "", false},
		{"pending blocks", "s2", at(14, 30), at(15, 30), "", true},
		{"excluded booking", "s1", at(9, 0), at(10, 0), "b1", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := checker.HasConflict(ctx, tenant, tt.staff, tt.start, tt.end, tt.excludeID)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestQuotaTracker_Statuses(t *testing.T) {
	quota := 2
	svc := &model.Service{ID: "visit", DailyQuotaPerStaff: &quota}

	bookings := &fakeBookings{}
	for i, status := range []model.BookingStatus{model.BookingPending, model.BookingConfirmed, model.BookingCancelled} {
		bookings.add(&model.Booking{
			ID:              string(rune('a' + i)),
			TenantID:        tenant,
			ServiceID:       "visit",
			AssignedStaffID: "s1",
			LocalDate:       "2026-10-20",
			IsHomeVisit:     true,
			Status:          status,
		})
	}
	ctx := context.Background()

	withPending, err := NewQuotaTracker(bookings, true).RemainingQuota(ctx, tenant, "s1", svc, "2026-10-20")
	require.NoError(t, err)
	assert.Equal(t, Quota{Count: 2, Max: 2, Remaining: 0}, withPending)
	assert.True(t, withPending.Exhausted())

	confirmedOnly, err := NewQuotaTracker(bookings, false).RemainingQuota(ctx, tenant, "s1", svc, "2026-10-20")
	require.NoError(t, err)
	assert.Equal(t, Quota{Count: 1, Max: 2, Remaining: 1}, confirmedOnly)
	assert.False(t, confirmedOnly.Exhausted())

	otherDay, err := NewQuotaTracker(bookings, true).RemainingQuota(ctx, tenant, "s1", svc, "2026-10-21")
	require.NoError(t, err)
	assert.Equal(t, 0, otherDay.Count)
}

func TestQuotaTracker_Unlimited(t *testing.T) {
	svc := &model.Service{ID: "visit"}
	q, err := NewQuotaTracker(&fakeBookings{}, true).RemainingQuota(context.Background(), tenant, "s1", svc, "2026-10-20")
	require.NoError(t, err)
	assert.Equal(t, model.Unlimited, q.Max)
	assert.Equal(t, model.Unlimited, q.Remaining)
	assert.False(t, q.Exhausted())
}
