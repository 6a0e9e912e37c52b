package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBookingStatus_CanTransition(t *testing.T) {
	tests := []struct {
		from, to BookingStatus
		want     bool
	}{
		{BookingPending, BookingConfirmed, true},
		{BookingPending, BookingCancelled, true},
		{BookingConfirmed, BookingCancelled, true},
		{BookingConfirmed, BookingCompleted, true},
		{BookingPending, BookingCompleted, false},
		{BookingCancelled, BookingConfirmed, false},
		{BookingCompleted, BookingCancelled, false},
		{BookingConfirmed, BookingPending, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransition(tt.to))
		})
	}
}

func TestService_Supports(t *testing.T) {
	onPremise := &Service{LocationType: LocationOnPremise}
	homeVisit := &Service{LocationType: LocationHomeVisit}
	both := &Service{LocationType: LocationBoth}

	assert.True(t, onPremise.Supports(false))
	assert.False(t, onPremise.Supports(true))
	assert.True(t, homeVisit.Supports(true))
	assert.False(t, homeVisit.Supports(false))
	assert.True(t, both.Supports(true))
	assert.True(t, both.Supports(false))
}

func TestService_QuotaAndBuffer(t *testing.T) {
	svc := &Service{}
	_, limited := svc.Quota()
	assert.False(t, limited)
	assert.Equal(t, 0, svc.BufferMinutes())

	quota, buffer := 2, 30
	svc = &Service{DailyQuotaPerStaff: &quota, HomeVisitBufferMinutes: &buffer}
	limit, limited := svc.Quota()
	assert.True(t, limited)
	assert.Equal(t, 2, limit)
	assert.Equal(t, 30, svc.BufferMinutes())
}

func TestStaffCapability_Qualifies(t *testing.T) {
	var missing *StaffCapability
	assert.False(t, missing.Qualifies(false))

	onSite := &StaffCapability{CanPerform: true}
	assert.True(t, onSite.Qualifies(false))
	assert.False(t, onSite.Qualifies(true))

	traveller := &StaffCapability{CanPerform: true, HomeVisit: true}
	assert.True(t, traveller.Qualifies(true))

	disabled := &StaffCapability{CanPerform: false, HomeVisit: true}
	assert.False(t, disabled.Qualifies(true))
}

func TestWeeklySchedule_Day(t *testing.T) {
	var none *WeeklySchedule
	_, ok := none.Day(time.Monday)
	assert.False(t, ok)

	ws := &WeeklySchedule{Days: map[time.Weekday]DaySchedule{
		time.Monday: {StartTime: "09:00", EndTime: "17:00", IsAvailable: true},
	}}
	day, ok := ws.Day(time.Monday)
	assert.True(t, ok)
	assert.Equal(t, "09:00", day.StartTime)

	_, ok = ws.Day(time.Sunday)
	assert.False(t, ok)
}
