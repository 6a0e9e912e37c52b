package validation

import (
	"testing"
	"time"

	"visitly/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newValidator(t *testing.T) *Validator {
	t.Helper()
	v, err := New()
	require.NoError(t, err)
	return v
}

func TestStruct_CreateBookingRequest(t *testing.T) {
	v := newValidator(t)

	valid := model.CreateBookingRequest{
		ServiceID:   "3f2b8a1e-7c4d-4e5f-9a6b-1c2d3e4f5a6b",
		CustomerID:  "8d7c6b5a-4f3e-4d2c-8b1a-0f9e8d7c6b5a",
		ScheduledAt: time.Date(2026, 11, 2, 9, 0, 0, 0, time.UTC),
	}
	require.NoError(t, v.Struct(valid))

	homeVisit := valid
	homeVisit.IsHomeVisit = true
	err := v.Struct(homeVisit)
	require.Error(t, err)

	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	require.Len(t, verrs, 1)
	assert.Equal(t, "home_visit_address", verrs[0].Field)
	assert.Equal(t, "home_visit_address is required", verrs[0].Message)
}

func TestStruct_UUIDFields(t *testing.T) {
	v := newValidator(t)

	err := v.Struct(model.AssignStaffRequest{StaffID: "staff-1"})
	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "staff_id must be a UUID", verrs[0].Message)
}

func TestStruct_ClockAndDateTags(t *testing.T) {
	v := newValidator(t)

	require.NoError(t, v.Struct(model.DaySchedule{StartTime: "09:00", EndTime: "17:30", IsAvailable: true}))
	require.NoError(t, v.Struct(model.DaySchedule{IsAvailable: false}))

	err := v.Struct(model.DaySchedule{StartTime: "9:00", EndTime: "25:00", IsAvailable: true})
	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Len(t, verrs, 2)

	require.NoError(t, v.Struct(model.BlockedDate{Date: "2026-12-25"}))
	err = v.Struct(model.BlockedDate{Date: "25/12/2026"})
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "date", verrs[0].Field)

	err = v.Struct(model.BlockedDate{Date: "2026-12-25", IsRecurring: true})
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "recurring_pattern", verrs[0].Field)
}

func TestVar(t *testing.T) {
	v := newValidator(t)

	require.NoError(t, v.Var("timezone", "Europe/London", "required,timezone"))

	err := v.Var("timezone", "Mars/Olympus", "required,timezone")
	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "timezone", verrs[0].Field)
}

func TestValidationErrors_Fields(t *testing.T) {
	errs := ValidationErrors{{Field: "name", Message: "name is required"}}
	fields := errs.Fields()["fields"].(map[string]any)
	assert.Equal(t, "name is required", fields["name"])
	assert.Contains(t, errs.Error(), "1 error(s)")
}
