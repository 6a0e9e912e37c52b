package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"visitly/internal/bookings/service"
	tenanthandler "visitly/internal/tenants/handler"
	apperrors "visitly/pkg/errors"
	"visitly/pkg/logger"
	"visitly/pkg/model"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTenant = model.TenantID("7d4a6f0e-2a51-4c1b-9a57-3c1e0f9b2d11")

type stubResolver struct{}

func (stubResolver) Resolve(ctx context.Context, identifier string) (model.TenantID, error) {
	if identifier == "clinic" {
		return testTenant, nil
	}
	return "", apperrors.NotFoundWithID("Tenant", identifier)
}

// mockScheduler implements service.BookingScheduler with func fields for the
// calls a test cares about.
type mockScheduler struct {
	service.BookingScheduler

	createFunc    func(ctx context.Context, tenantID model.TenantID, req *model.CreateBookingRequest) (*model.Booking, error)
	listFunc      func(ctx context.Context, tenantID model.TenantID, filter model.BookingFilter) ([]*model.Booking, int64, error)
	assignFunc    func(ctx context.Context, tenantID model.TenantID, bookingID, staffID string) (*model.Booking, error)
	cancelFunc    func(ctx context.Context, tenantID model.TenantID, bookingID, reason string) (*model.Booking, error)
	availableFunc func(ctx context.Context, tenantID model.TenantID, q service.AvailabilityQuery) ([]model.StaffAvailability, error)
}

func (m *mockScheduler) CreateBooking(ctx context.Context, tenantID model.TenantID, req *model.CreateBookingRequest) (*model.Booking, error) {
	return m.createFunc(ctx, tenantID, req)
}

func (m *mockScheduler) ListBookings(ctx context.Context, tenantID model.TenantID, filter model.BookingFilter) ([]*model.Booking, int64, error) {
	return m.listFunc(ctx, tenantID, filter)
}

func (m *mockScheduler) AssignStaff(ctx context.Context, tenantID model.TenantID, bookingID, staffID string) (*model.Booking, error) {
	return m.assignFunc(ctx, tenantID, bookingID, staffID)
}

func (m *mockScheduler) CancelBooking(ctx context.Context, tenantID model.TenantID, bookingID, reason string) (*model.Booking, error) {
	return m.cancelFunc(ctx, tenantID, bookingID, reason)
}

func (m *mockScheduler) ListAvailableStaff(ctx context.Context, tenantID model.TenantID, q service.AvailabilityQuery) ([]model.StaffAvailability, error) {
	return m.availableFunc(ctx, tenantID, q)
}

func newRouter(m *mockScheduler) *httprouter.Router {
	log := logger.Discard()
	scope := tenanthandler.NewScope(stubResolver{}, log)
	router := httprouter.New()
	NewBookingHandler(m, scope, log).RegisterRoutes(router)
	NewAvailabilityHandler(m, scope, log).RegisterRoutes(router)
	return router
}

func serve(router http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCreate(t *testing.T) {
	var received *model.CreateBookingRequest
	router := newRouter(&mockScheduler{
		createFunc: func(ctx context.Context, tenantID model.TenantID, req *model.CreateBookingRequest) (*model.Booking, error) {
			assert.Equal(t, testTenant, tenantID)
			received = req
			return &model.Booking{ID: "b1", TenantID: tenantID, Status: model.BookingPending}, nil
		},
	})

	body := `{"service_id":"s1","customer_id":"c1","scheduled_at":"2026-10-20T09:00:00Z","is_home_visit":false}`
	w := serve(router, http.MethodPost, "/api/v1/tenants/clinic/bookings", body)

	require.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, received)
	assert.Equal(t, time.Date(2026, 10, 20, 9, 0, 0, 0, time.UTC), received.ScheduledAt)

	var resp struct {
		Data model.Booking `json:"data"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "b1", resp.Data.ID)
}

func TestCreate_RejectsUnknownFields(t *testing.T) {
	router := newRouter(&mockScheduler{})

	w := serve(router, http.MethodPost, "/api/v1/tenants/clinic/bookings", `{"service":"s1"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreate_UnknownTenant(t *testing.T) {
	router := newRouter(&mockScheduler{})

	w := serve(router, http.MethodPost, "/api/v1/tenants/nowhere/bookings", `{}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreate_SchedulingErrorCarriesScope(t *testing.T) {
	router := newRouter(&mockScheduler{
		createFunc: func(ctx context.Context, tenantID model.TenantID, req *model.CreateBookingRequest) (*model.Booking, error) {
			return nil, apperrors.DateBlocked("2026-12-25")
		},
	})

	w := serve(router, http.MethodPost, "/api/v1/tenants/clinic/bookings",
		`{"service_id":"s1","customer_id":"c1","scheduled_at":"2026-12-25T09:00:00Z"}`)

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var resp apperrors.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, apperrors.CodeDateBlocked, resp.Code)
	assert.Equal(t, apperrors.ScopeDate, resp.Details["scope"])
}

func TestList_ParsesFilter(t *testing.T) {
	var received model.BookingFilter
	router := newRouter(&mockScheduler{
		listFunc: func(ctx context.Context, tenantID model.TenantID, filter model.BookingFilter) ([]*model.Booking, int64, error) {
			received = filter
			return []*model.Booking{{ID: "b1"}}, 7, nil
		},
	})

	w := serve(router, http.MethodGet,
		"/api/v1/tenants/clinic/bookings?from=2026-10-20T00:00:00Z&to=2026-10-21T00:00:00Z&staff_id=s1&status=pending&limit=5&offset=2", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC), received.From)
	assert.Equal(t, time.Date(2026, 10, 21, 0, 0, 0, 0, time.UTC), received.To)
	assert.Equal(t, "s1", received.StaffID)
	assert.Equal(t, model.BookingPending, received.Status)
	assert.Equal(t, 5, received.Limit)
	assert.Equal(t, int64(2), received.Offset)

	var resp struct {
		TotalCount int64 `json:"total_count"`
		Limit      int   `json:"limit"`
		Offset     int   `json:"offset"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, int64(7), resp.TotalCount)
	assert.Equal(t, 5, resp.Limit)
	assert.Equal(t, 2, resp.Offset)
}

func TestList_InvalidTime(t *testing.T) {
	router := newRouter(&mockScheduler{})

	w := serve(router, http.MethodGet, "/api/v1/tenants/clinic/bookings?from=yesterday", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAssign(t *testing.T) {
	router := newRouter(&mockScheduler{
		assignFunc: func(ctx context.Context, tenantID model.TenantID, bookingID, staffID string) (*model.Booking, error) {
			assert.Equal(t, "b1", bookingID)
			if staffID == "busy" {
				return nil, apperrors.SlotUnavailable("taken")
			}
			return &model.Booking{ID: bookingID, AssignedStaffID: staffID}, nil
		},
	})

	w := serve(router, http.MethodPost, "/api/v1/tenants/clinic/bookings/id/b1/assign", `{"staff_id":"s1"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(router, http.MethodPost, "/api/v1/tenants/clinic/bookings/id/b1/assign", `{"staff_id":"busy"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCancel_OptionalBody(t *testing.T) {
	var reasons []string
	router := newRouter(&mockScheduler{
		cancelFunc: func(ctx context.Context, tenantID model.TenantID, bookingID, reason string) (*model.Booking, error) {
			reasons = append(reasons, reason)
			return &model.Booking{ID: bookingID, Status: model.BookingCancelled}, nil
		},
	})

	w := serve(router, http.MethodPost, "/api/v1/tenants/clinic/bookings/id/b1/cancel", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(router, http.MethodPost, "/api/v1/tenants/clinic/bookings/id/b1/cancel", `{"reason":"sick"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, []string{"", "sick"}, reasons)
}

func TestAvailability_ParsesQuery(t *testing.T) {
	var received service.AvailabilityQuery
	router := newRouter(&mockScheduler{
		availableFunc: func(ctx context.Context, tenantID model.TenantID, q service.AvailabilityQuery) ([]model.StaffAvailability, error) {
			received = q
			return []model.StaffAvailability{{StaffID: "s1", IsAvailable: true}}, nil
		},
	})

	w := serve(router, http.MethodGet,
		"/api/v1/tenants/clinic/availability/staff?service_id=svc&scheduled_at=2026-10-20T10:15:00Z&is_home_visit=true", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "svc", received.ServiceID)
	assert.True(t, received.IsHomeVisit)
	assert.Zero(t, received.DurationMinutes)
	assert.Nil(t, received.BufferMinutes)

	w = serve(router, http.MethodGet,
		"/api/v1/tenants/clinic/availability/staff?service_id=svc&scheduled_at=2026-10-20T10:15:00Z&duration_minutes=45&buffer_minutes=0", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 45, received.DurationMinutes)
	require.NotNil(t, received.BufferMinutes)
	assert.Zero(t, *received.BufferMinutes)

	w = serve(router, http.MethodGet, "/api/v1/tenants/clinic/availability/staff?service_id=svc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
