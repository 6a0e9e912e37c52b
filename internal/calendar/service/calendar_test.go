package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	calendarerrors "visitly/internal/calendar/errors"
	"visitly/internal/calendar/validator"
	"visitly/pkg/config"
	apperrors "visitly/pkg/errors"
	"visitly/pkg/logger"
	"visitly/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockBusinessHoursRepository struct {
	getFunc    func(ctx context.Context, tenantID model.TenantID) (*model.BusinessHours, error)
	upsertFunc func(ctx context.Context, hours *model.BusinessHours) error
}

func (m *mockBusinessHoursRepository) Get(ctx context.Context, tenantID model.TenantID) (*model.BusinessHours, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, tenantID)
	}
	return nil, fmt.Errorf("%w: %s", calendarerrors.ErrBusinessHoursNotFound, tenantID)
}

func (m *mockBusinessHoursRepository) Upsert(ctx context.Context, hours *model.BusinessHours) error {
	if m.upsertFunc != nil {
		return m.upsertFunc(ctx, hours)
	}
	return nil
}

type mockBlockedDateRepository struct {
	createFunc         func(ctx context.Context, blocked *model.BlockedDate) error
	findAllFunc        func(ctx context.Context, tenantID model.TenantID) ([]*model.BlockedDate, error)
	findCandidatesFunc func(ctx context.Context, tenantID model.TenantID, date string) ([]*model.BlockedDate, error)
	deleteFunc         func(ctx context.Context, tenantID model.TenantID, id string) error
}

func (m *mockBlockedDateRepository) Create(ctx context.Context, blocked *model.BlockedDate) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, blocked)
	}
	return nil
}

func (m *mockBlockedDateRepository) FindAll(ctx context.Context, tenantID model.TenantID) ([]*model.BlockedDate, error) {
	if m.findAllFunc != nil {
		return m.findAllFunc(ctx, tenantID)
	}
	return nil, nil
}

func (m *mockBlockedDateRepository) FindCandidates(ctx context.Context, tenantID model.TenantID, date string) ([]*model.BlockedDate, error) {
	if m.findCandidatesFunc != nil {
		return m.findCandidatesFunc(ctx, tenantID, date)
	}
	return nil, nil
}

func (m *mockBlockedDateRepository) Delete(ctx context.Context, tenantID model.TenantID, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, tenantID, id)
	}
	return nil
}

const tenant = model.TenantID("0b6f3d0e-2a57-4c1b-9a7e-5d9c4e3f2a10")

func newTestConfig(defaultOpen bool) *config.Config {
	return &config.Config{
		Log:                 logger.Discard(),
		ReadTimeout:         5 * time.Second,
		WriteTimeout:        5 * time.Second,
		CalendarDefaultOpen: defaultOpen,
		DefaultOpenTime:     "08:00",
		DefaultCloseTime:    "17:00",
		DefaultTimezone:     "UTC",
	}
}

func newTestService(hours *mockBusinessHoursRepository, blocked *mockBlockedDateRepository, cfg *config.Config) CalendarService {
	return NewCalendarService(hours, blocked, validator.NewCalendarValidator(cfg.Log), cfg)
}

func weekdayHours(timezone string) *model.BusinessHours {
	schedule := map[time.Weekday]model.BusinessDay{}
	for wd := time.Monday; wd <= time.Friday; wd++ {
		schedule[wd] = model.BusinessDay{IsOpen: true, OpenTime: "09:00", CloseTime: "17:00"}
	}
	return &model.BusinessHours{TenantID: tenant, Schedule: schedule, Timezone: timezone}
}

func TestCalendar_DefaultPolicy(t *testing.T) {
	open := newTestService(&mockBusinessHoursRepository{}, &mockBlockedDateRepository{}, newTestConfig(true))
	hours, err := open.Calendar(context.Background(), tenant)
	require.NoError(t, err)
	assert.True(t, hours.IsDefault)
	assert.True(t, hours.Day(time.Sunday).IsOpen)
	assert.Equal(t, "08:00", hours.Day(time.Wednesday).OpenTime)

	closed := newTestService(&mockBusinessHoursRepository{}, &mockBlockedDateRepository{}, newTestConfig(false))
	hours, err = closed.Calendar(context.Background(), tenant)
	require.NoError(t, err)
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		assert.False(t, hours.Day(wd).IsOpen)
	}
}

func TestCalendar_RepositoryFailure(t *testing.T) {
	repo := &mockBusinessHoursRepository{
		getFunc: func(ctx context.Context, tenantID model.TenantID) (*model.BusinessHours, error) {
			return nil, errors.New("server selection timeout")
		},
	}
	svc := newTestService(repo, &mockBlockedDateRepository{}, newTestConfig(true))

	_, err := svc.Calendar(context.Background(), tenant)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInternal))
}

func TestIsOpen(t *testing.T) {
	repo := &mockBusinessHoursRepository{
		getFunc: func(ctx context.Context, tenantID model.TenantID) (*model.BusinessHours, error) {
			return weekdayHours("Asia/Jerusalem"), nil
		},
	}
	svc := newTestService(repo, &mockBlockedDateRepository{}, newTestConfig(true))

	loc, err := time.LoadLocation("Asia/Jerusalem")
	require.NoError(t, err)
	// 2026-10-20 is a Tuesday, 2026-10-24 a Saturday.
	at := func(day, h, m int) time.Time { return time.Date(2026, 10, day, h, m, 0, 0, loc) }

	tests := []struct {
		name  string
		start time.Time
		dur   time.Duration
		want  bool
	}{
		{"inside hours", at(20, 10, 0), time.Hour, true},
		{"at opening", at(20, 9, 0), 30 * time.Minute, true},
		{"ending at closing", at(20, 16, 0), time.Hour, true},
		{"before opening", at(20, 8, 30), time.Hour, false},
		{"after closing", at(20, 16, 30), time.Hour, false},
		{"closed day", at(24, 10, 0), time.Hour, false},
		{"utc instant in local window", time.Date(2026, 10, 20, 7, 0, 0, 0, time.UTC), time.Hour, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := svc.IsOpen(context.Background(), tenant, tt.start, tt.dur)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestIsBlocked(t *testing.T) {
	rules := []*model.BlockedDate{
		{ID: "xmas", Date: "2025-12-25", IsRecurring: true, RecurringPattern: model.RecurrenceYearly},
		{ID: "monday", Date: "2026-10-12", IsRecurring: true, RecurringPattern: model.RecurrenceWeekly},
	}
	repo := &mockBlockedDateRepository{
		findCandidatesFunc: func(ctx context.Context, tenantID model.TenantID, date string) ([]*model.BlockedDate, error) {
			return rules, nil
		},
	}
	svc := newTestService(&mockBusinessHoursRepository{}, repo, newTestConfig(true))

	blocked, err := svc.IsBlocked(context.Background(), tenant, "2026-12-25")
	require.NoError(t, err)
	assert.True(t, blocked)

	blocked, err = svc.IsBlocked(context.Background(), tenant, "2026-10-26")
	require.NoError(t, err)
	assert.True(t, blocked)

	blocked, err = svc.IsBlocked(context.Background(), tenant, "2026-10-27")
	require.NoError(t, err)
	assert.False(t, blocked)
}

func TestUpsertBusinessHours_Validation(t *testing.T) {
	svc := newTestService(&mockBusinessHoursRepository{
		upsertFunc: func(ctx context.Context, hours *model.BusinessHours) error {
			t.Fatal("repository must not be called")
			return nil
		},
	}, &mockBlockedDateRepository{}, newTestConfig(true))

	hours := weekdayHours("Asia/Jerusalem")
	hours.Schedule[time.Monday] = model.BusinessDay{IsOpen: true, OpenTime: "18:00", CloseTime: "09:00"}

	err := svc.UpsertBusinessHours(context.Background(), tenant, hours)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))

	bad := weekdayHours("Mars/Olympus")
	err = svc.UpsertBusinessHours(context.Background(), tenant, bad)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
}

func TestUpsertBusinessHours_Success(t *testing.T) {
	var saved *model.BusinessHours
	svc := newTestService(&mockBusinessHoursRepository{
		upsertFunc: func(ctx context.Context, hours *model.BusinessHours) error {
			saved = hours
			return nil
		},
	}, &mockBlockedDateRepository{}, newTestConfig(true))

	hours := weekdayHours(" Asia/Jerusalem ")
	hours.TenantID = ""
	require.NoError(t, svc.UpsertBusinessHours(context.Background(), tenant, hours))
	require.NotNil(t, saved)
	assert.Equal(t, tenant, saved.TenantID)
	assert.Equal(t, "Asia/Jerusalem", saved.Timezone)
}

func TestAddBlockedDate_Validation(t *testing.T) {
	tests := []struct {
		name    string
		blocked model.BlockedDate
	}{
		{"bad date", model.BlockedDate{Date: "25/12/2026"}},
		{"pattern without recurring", model.BlockedDate{Date: "2026-12-25", RecurringPattern: model.RecurrenceYearly}},
		{"recurring without pattern", model.BlockedDate{Date: "2026-12-25", IsRecurring: true}},
		{"until before date", model.BlockedDate{Date: "2026-12-25", IsRecurring: true, RecurringPattern: model.RecurrenceWeekly, Until: "2026-12-01"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(&mockBusinessHoursRepository{}, &mockBlockedDateRepository{}, newTestConfig(true))
			blocked := tt.blocked
			err := svc.AddBlockedDate(context.Background(), tenant, &blocked)
			assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation), "got %v", err)
		})
	}
}

func TestDeleteBlockedDate_NotFound(t *testing.T) {
	repo := &mockBlockedDateRepository{
		deleteFunc: func(ctx context.Context, tenantID model.TenantID, id string) error {
			return fmt.Errorf("%w: %s", calendarerrors.ErrBlockedDateNotFound, id)
		},
	}
	svc := newTestService(&mockBusinessHoursRepository{}, repo, newTestConfig(true))

	err := svc.DeleteBlockedDate(context.Background(), tenant, "missing")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}
