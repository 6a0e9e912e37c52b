package handler

import (
	"net/http"

	"visitly/internal/calendar/service"
	tenanthandler "visitly/internal/tenants/handler"
	httputil "visitly/pkg/http"
	"visitly/pkg/logger"
	"visitly/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type CalendarHandler struct {
	service service.CalendarService
	scope   *tenanthandler.Scope
	log     *logger.Logger
}

func NewCalendarHandler(service service.CalendarService, scope *tenanthandler.Scope, log *logger.Logger) *CalendarHandler {
	return &CalendarHandler{
		service: service,
		scope:   scope,
		log:     log,
	}
}

func (h *CalendarHandler) GetBusinessHours(w http.ResponseWriter, r *http.Request, _ httprouter.Params, tenantID model.TenantID) {
	hours, err := h.service.Calendar(r.Context(), tenantID)
	if err != nil {
		h.writeError(w, "GetBusinessHours", err)
		return
	}

	if err := httputil.WriteSuccess(w, hours); err != nil {
		h.log.Error("failed to write success response", "handler", "GetBusinessHours", "operation", "WriteSuccess", "error", err)
	}
}

func (h *CalendarHandler) PutBusinessHours(w http.ResponseWriter, r *http.Request, _ httprouter.Params, tenantID model.TenantID) {
	var hours model.BusinessHours
	if err := httputil.DecodeJSON(r, &hours); err != nil {
		h.writeError(w, "PutBusinessHours", err)
		return
	}

	if err := h.service.UpsertBusinessHours(r.Context(), tenantID, &hours); err != nil {
		h.writeError(w, "PutBusinessHours", err)
		return
	}

	if err := httputil.WriteSuccess(w, hours); err != nil {
		h.log.Error("failed to write success response", "handler", "PutBusinessHours", "operation", "WriteSuccess", "error", err)
	}
}

func (h *CalendarHandler) AddBlockedDate(w http.ResponseWriter, r *http.Request, _ httprouter.Params, tenantID model.TenantID) {
	var blocked model.BlockedDate
	if err := httputil.DecodeJSON(r, &blocked); err != nil {
		h.writeError(w, "AddBlockedDate", err)
		return
	}

	if err := h.service.AddBlockedDate(r.Context(), tenantID, &blocked); err != nil {
		h.writeError(w, "AddBlockedDate", err)
		return
	}

	if err := httputil.WriteCreated(w, blocked); err != nil {
		h.log.Error("failed to write created response", "handler", "AddBlockedDate", "operation", "WriteCreated", "error", err)
	}
}

func (h *CalendarHandler) ListBlockedDates(w http.ResponseWriter, r *http.Request, _ httprouter.Params, tenantID model.TenantID) {
	blocked, err := h.service.ListBlockedDates(r.Context(), tenantID)
	if err != nil {
		h.writeError(w, "ListBlockedDates", err)
		return
	}
	if blocked == nil {
		blocked = []*model.BlockedDate{}
	}

	if err := httputil.WriteSuccess(w, blocked); err != nil {
		h.log.Error("failed to write success response", "handler", "ListBlockedDates", "operation", "WriteSuccess", "error", err)
	}
}

func (h *CalendarHandler) DeleteBlockedDate(w http.ResponseWriter, r *http.Request, ps httprouter.Params, tenantID model.TenantID) {
	if err := h.service.DeleteBlockedDate(r.Context(), tenantID, ps.ByName("id")); err != nil {
		h.writeError(w, "DeleteBlockedDate", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *CalendarHandler) writeError(w http.ResponseWriter, name string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", name, "operation", "WriteError", "error", writeErr)
	}
}

func (h *CalendarHandler) RegisterRoutes(router *httprouter.Router) {
	const prefix = tenanthandler.Prefix + "/calendar"
	router.GET(prefix+"/business-hours", h.scope.Wrap("GetBusinessHours", h.GetBusinessHours))
	router.PUT(prefix+"/business-hours", h.scope.Wrap("PutBusinessHours", h.PutBusinessHours))
	router.POST(prefix+"/blocked-dates", h.scope.Wrap("AddBlockedDate", h.AddBlockedDate))
	router.GET(prefix+"/blocked-dates", h.scope.Wrap("ListBlockedDates", h.ListBlockedDates))
	router.DELETE(prefix+"/blocked-dates/:id", h.scope.Wrap("DeleteBlockedDate", h.DeleteBlockedDate))
}
