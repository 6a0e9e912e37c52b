package handler

import (
	"net/http"
	"time"

	"visitly/internal/bookings/service"
	tenanthandler "visitly/internal/tenants/handler"
	httputil "visitly/pkg/http"
	"visitly/pkg/logger"
	"visitly/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type BookingHandler struct {
	service service.BookingScheduler
	scope   *tenanthandler.Scope
	log     *logger.Logger
}

func NewBookingHandler(service service.BookingScheduler, scope *tenanthandler.Scope, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		scope:   scope,
		log:     log,
	}
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params, tenantID model.TenantID) {
	var req model.CreateBookingRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	booking, err := h.service.CreateBooking(r.Context(), tenantID, &req)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, booking); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *BookingHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params, tenantID model.TenantID) {
	booking, err := h.service.GetBooking(r.Context(), tenantID, ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	h.writeBooking(w, "GetByID", booking)
}

func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params, tenantID model.TenantID) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	filter := model.BookingFilter{
		StaffID: r.URL.Query().Get("staff_id"),
		Status:  model.BookingStatus(r.URL.Query().Get("status")),
		Limit:   limit,
		Offset:  offset,
	}
	if filter.From, err = optionalTime(r, "from"); err != nil {
		h.writeError(w, "List", err)
		return
	}
	if filter.To, err = optionalTime(r, "to"); err != nil {
		h.writeError(w, "List", err)
		return
	}

	bookings, total, err := h.service.ListBookings(r.Context(), tenantID, filter)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	if err := httputil.WritePaginated(w, bookings, total, limit, int(offset)); err != nil {
		h.log.Error("failed to write paginated response", "handler", "List", "operation", "WritePaginated", "error", err)
	}
}

func (h *BookingHandler) Assign(w http.ResponseWriter, r *http.Request, ps httprouter.Params, tenantID model.TenantID) {
	var req model.AssignStaffRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "Assign", err)
		return
	}

	booking, err := h.service.AssignStaff(r.Context(), tenantID, ps.ByName("id"), req.StaffID)
	if err != nil {
		h.writeError(w, "Assign", err)
		return
	}

	h.writeBooking(w, "Assign", booking)
}

func (h *BookingHandler) Unassign(w http.ResponseWriter, r *http.Request, ps httprouter.Params, tenantID model.TenantID) {
	booking, err := h.service.UnassignStaff(r.Context(), tenantID, ps.ByName("id"))
	if err != nil {
		h.writeError(w, "Unassign", err)
		return
	}

	h.writeBooking(w, "Unassign", booking)
}

// Cancel accepts an empty body when no reason is given.
func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params, tenantID model.TenantID) {
	var req model.CancelBookingRequest
	if r.ContentLength != 0 {
		if err := httputil.DecodeJSON(r, &req); err != nil {
			h.writeError(w, "Cancel", err)
			return
		}
	}

	booking, err := h.service.CancelBooking(r.Context(), tenantID, ps.ByName("id"), req.Reason)
	if err != nil {
		h.writeError(w, "Cancel", err)
		return
	}

	h.writeBooking(w, "Cancel", booking)
}

func (h *BookingHandler) Confirm(w http.ResponseWriter, r *http.Request, ps httprouter.Params, tenantID model.TenantID) {
	booking, err := h.service.ConfirmBooking(r.Context(), tenantID, ps.ByName("id"))
	if err != nil {
		h.writeError(w, "Confirm", err)
		return
	}

	h.writeBooking(w, "Confirm", booking)
}

func (h *BookingHandler) Complete(w http.ResponseWriter, r *http.Request, ps httprouter.Params, tenantID model.TenantID) {
	booking, err := h.service.CompleteBooking(r.Context(), tenantID, ps.ByName("id"))
	if err != nil {
		h.writeError(w, "Complete", err)
		return
	}

	h.writeBooking(w, "Complete", booking)
}

func (h *BookingHandler) writeBooking(w http.ResponseWriter, name string, booking *model.Booking) {
	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", name, "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) writeError(w http.ResponseWriter, name string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", name, "operation", "WriteError", "error", writeErr)
	}
}

func optionalTime(r *http.Request, name string) (time.Time, error) {
	if r.URL.Query().Get(name) == "" {
		return time.Time{}, nil
	}
	return httputil.ExtractTime(r, name)
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	const prefix = tenanthandler.Prefix + "/bookings"
	router.POST(prefix, h.scope.Wrap("Create", h.Create))
	router.GET(prefix, h.scope.Wrap("List", h.List))
	router.GET(prefix+"/id/:id", h.scope.Wrap("GetByID", h.GetByID))
	router.POST(prefix+"/id/:id/assign", h.scope.Wrap("Assign", h.Assign))
	router.POST(prefix+"/id/:id/unassign", h.scope.Wrap("Unassign", h.Unassign))
	router.POST(prefix+"/id/:id/cancel", h.scope.Wrap("Cancel", h.Cancel))
	router.POST(prefix+"/id/:id/confirm", h.scope.Wrap("Confirm", h.Confirm))
	router.POST(prefix+"/id/:id/complete", h.scope.Wrap("Complete", h.Complete))
}
