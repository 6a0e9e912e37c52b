package handler

import (
	"net/http"
	"strconv"
	"time"

	"visitly/internal/staff/service"
	tenanthandler "visitly/internal/tenants/handler"
	apperrors "visitly/pkg/errors"
	httputil "visitly/pkg/http"
	"visitly/pkg/logger"
	"visitly/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type StaffHandler struct {
	service service.StaffService
	scope   *tenanthandler.Scope
	log     *logger.Logger
}

func NewStaffHandler(service service.StaffService, scope *tenanthandler.Scope, log *logger.Logger) *StaffHandler {
	return &StaffHandler{
		service: service,
		scope:   scope,
		log:     log,
	}
}

func (h *StaffHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params, tenantID model.TenantID) {
	var staff model.Staff
	if err := httputil.DecodeJSON(r, &staff); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := h.service.CreateStaff(r.Context(), tenantID, &staff); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, staff); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *StaffHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params, tenantID model.TenantID) {
	staff, err := h.service.GetStaff(r.Context(), tenantID, ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, staff); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *StaffHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params, tenantID model.TenantID) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	staff, total, err := h.service.ListStaff(r.Context(), tenantID, limit, offset)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	if err := httputil.WritePaginated(w, staff, total, limit, int(offset)); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetAll", "operation", "WritePaginated", "error", err)
	}
}

func (h *StaffHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params, tenantID model.TenantID) {
	var update model.StaffUpdate
	if err := httputil.DecodeJSON(r, &update); err != nil {
		h.writeError(w, "Update", err)
		return
	}

	staff, err := h.service.UpdateStaff(r.Context(), tenantID, ps.ByName("id"), &update)
	if err != nil {
		h.writeError(w, "Update", err)
		return
	}

	if err := httputil.WriteSuccess(w, staff); err != nil {
		h.log.Error("failed to write success response", "handler", "Update", "operation", "WriteSuccess", "error", err)
	}
}

func (h *StaffHandler) GetSchedule(w http.ResponseWriter, r *http.Request, ps httprouter.Params, tenantID model.TenantID) {
	schedule, err := h.service.GetSchedule(r.Context(), tenantID, ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetSchedule", err)
		return
	}

	if err := httputil.WriteSuccess(w, schedule); err != nil {
		h.log.Error("failed to write success response", "handler", "GetSchedule", "operation", "WriteSuccess", "error", err)
	}
}

func (h *StaffHandler) PutScheduleDay(w http.ResponseWriter, r *http.Request, ps httprouter.Params, tenantID model.TenantID) {
	day, err := strconv.Atoi(ps.ByName("day"))
	if err != nil {
		h.writeError(w, "PutScheduleDay", apperrors.InvalidInput("Day must be a number between 0 (Sunday) and 6 (Saturday)"))
		return
	}

	var entry model.DaySchedule
	if err := httputil.DecodeJSON(r, &entry); err != nil {
		h.writeError(w, "PutScheduleDay", err)
		return
	}

	schedule, err := h.service.SetScheduleDay(r.Context(), tenantID, ps.ByName("id"), time.Weekday(day), &entry)
	if err != nil {
		h.writeError(w, "PutScheduleDay", err)
		return
	}

	if err := httputil.WriteSuccess(w, schedule); err != nil {
		h.log.Error("failed to write success response", "handler", "PutScheduleDay", "operation", "WriteSuccess", "error", err)
	}
}

type capabilityRequest struct {
	CanPerform bool `json:"can_perform"`
	HomeVisit  bool `json:"home_visit"`
}

func (h *StaffHandler) PutCapability(w http.ResponseWriter, r *http.Request, ps httprouter.Params, tenantID model.TenantID) {
	var req capabilityRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "PutCapability", err)
		return
	}

	capability, err := h.service.SetCapability(r.Context(), tenantID, &model.StaffCapability{
		StaffID:    ps.ByName("id"),
		ServiceID:  ps.ByName("service_id"),
		CanPerform: req.CanPerform,
		HomeVisit:  req.HomeVisit,
	})
	if err != nil {
		h.writeError(w, "PutCapability", err)
		return
	}

	if err := httputil.WriteSuccess(w, capability); err != nil {
		h.log.Error("failed to write success response", "handler", "PutCapability", "operation", "WriteSuccess", "error", err)
	}
}

func (h *StaffHandler) ListCapabilities(w http.ResponseWriter, r *http.Request, ps httprouter.Params, tenantID model.TenantID) {
	capabilities, err := h.service.ListCapabilities(r.Context(), tenantID, ps.ByName("id"))
	if err != nil {
		h.writeError(w, "ListCapabilities", err)
		return
	}
	if capabilities == nil {
		capabilities = []*model.StaffCapability{}
	}

	if err := httputil.WriteSuccess(w, capabilities); err != nil {
		h.log.Error("failed to write success response", "handler", "ListCapabilities", "operation", "WriteSuccess", "error", err)
	}
}

func (h *StaffHandler) writeError(w http.ResponseWriter, name string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", name, "operation", "WriteError", "error", writeErr)
	}
}

func (h *StaffHandler) RegisterRoutes(router *httprouter.Router) {
	const prefix = tenanthandler.Prefix + "/staff"
	router.POST(prefix, h.scope.Wrap("Create", h.Create))
	router.GET(prefix, h.scope.Wrap("GetAll", h.GetAll))
	router.GET(prefix+"/id/:id", h.scope.Wrap("GetByID", h.GetByID))
	router.PATCH(prefix+"/id/:id", h.scope.Wrap("Update", h.Update))
	router.GET(prefix+"/id/:id/schedule", h.scope.Wrap("GetSchedule", h.GetSchedule))
	router.PUT(prefix+"/id/:id/schedule/:day", h.scope.Wrap("PutScheduleDay", h.PutScheduleDay))
	router.GET(prefix+"/id/:id/capabilities", h.scope.Wrap("ListCapabilities", h.ListCapabilities))
	router.PUT(prefix+"/id/:id/capabilities/:service_id", h.scope.Wrap("PutCapability", h.PutCapability))
}
