package handler

import (
	"net/http"

	"visitly/internal/bookings/service"
	tenanthandler "visitly/internal/tenants/handler"
	httputil "visitly/pkg/http"
	"visitly/pkg/logger"
	"visitly/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type AvailabilityHandler struct {
	service service.BookingScheduler
	scope   *tenanthandler.Scope
	log     *logger.Logger
}

func NewAvailabilityHandler(service service.BookingScheduler, scope *tenanthandler.Scope, log *logger.Logger) *AvailabilityHandler {
	return &AvailabilityHandler{
		service: service,
		scope:   scope,
		log:     log,
	}
}

func (h *AvailabilityHandler) ListStaff(w http.ResponseWriter, r *http.Request, _ httprouter.Params, tenantID model.TenantID) {
	q, err := parseAvailabilityQuery(r)
	if err != nil {
		h.writeError(w, "ListStaff", err)
		return
	}

	candidates, err := h.service.ListAvailableStaff(r.Context(), tenantID, q)
	if err != nil {
		h.writeError(w, "ListStaff", err)
		return
	}

	if err := httputil.WriteSuccess(w, candidates); err != nil {
		h.log.Error("failed to write success response", "handler", "ListStaff", "operation", "WriteSuccess", "error", err)
	}
}

func parseAvailabilityQuery(r *http.Request) (service.AvailabilityQuery, error) {
	var (
		q   service.AvailabilityQuery
		err error
	)
	q.ServiceID = r.URL.Query().Get("service_id")
	if q.ScheduledAt, err = httputil.ExtractTime(r, "scheduled_at"); err != nil {
		return q, err
	}
	if q.DurationMinutes, err = httputil.ExtractInt(r, "duration_minutes", 0); err != nil {
		return q, err
	}
	if r.URL.Query().Has("buffer_minutes") {
		buffer, err := httputil.ExtractInt(r, "buffer_minutes", 0)
		if err != nil {
			return q, err
		}
		q.BufferMinutes = &buffer
	}
	if q.IsHomeVisit, err = httputil.ExtractBool(r, "is_home_visit"); err != nil {
		return q, err
	}
	return q, nil
}

func (h *AvailabilityHandler) writeError(w http.ResponseWriter, name string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", name, "operation", "WriteError", "error", writeErr)
	}
}

func (h *AvailabilityHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET(tenanthandler.Prefix+"/availability/staff", h.scope.Wrap("ListStaff", h.ListStaff))
}
