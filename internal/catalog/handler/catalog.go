package handler

import (
	"net/http"

	"visitly/internal/catalog/service"
	tenanthandler "visitly/internal/tenants/handler"
	httputil "visitly/pkg/http"
	"visitly/pkg/logger"
	"visitly/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type CatalogHandler struct {
	service service.CatalogService
	scope   *tenanthandler.Scope
	log     *logger.Logger
}

func NewCatalogHandler(service service.CatalogService, scope *tenanthandler.Scope, log *logger.Logger) *CatalogHandler {
	return &CatalogHandler{
		service: service,
		scope:   scope,
		log:     log,
	}
}

func (h *CatalogHandler) CreateService(w http.ResponseWriter, r *http.Request, _ httprouter.Params, tenantID model.TenantID) {
	var svc model.Service
	if err := httputil.DecodeJSON(r, &svc); err != nil {
		h.writeError(w, "CreateService", err)
		return
	}

	if err := h.service.CreateService(r.Context(), tenantID, &svc); err != nil {
		h.writeError(w, "CreateService", err)
		return
	}

	if err := httputil.WriteCreated(w, svc); err != nil {
		h.log.Error("failed to write created response", "handler", "CreateService", "operation", "WriteCreated", "error", err)
	}
}

func (h *CatalogHandler) GetService(w http.ResponseWriter, r *http.Request, ps httprouter.Params, tenantID model.TenantID) {
	svc, err := h.service.GetService(r.Context(), tenantID, ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetService", err)
		return
	}

	if err := httputil.WriteSuccess(w, svc); err != nil {
		h.log.Error("failed to write success response", "handler", "GetService", "operation", "WriteSuccess", "error", err)
	}
}

func (h *CatalogHandler) ListServices(w http.ResponseWriter, r *http.Request, _ httprouter.Params, tenantID model.TenantID) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "ListServices", err)
		return
	}

	services, total, err := h.service.ListServices(r.Context(), tenantID, limit, offset)
	if err != nil {
		h.writeError(w, "ListServices", err)
		return
	}

	if err := httputil.WritePaginated(w, services, total, limit, int(offset)); err != nil {
		h.log.Error("failed to write paginated response", "handler", "ListServices", "operation", "WritePaginated", "error", err)
	}
}

func (h *CatalogHandler) CreateCustomer(w http.ResponseWriter, r *http.Request, _ httprouter.Params, tenantID model.TenantID) {
	var customer model.Customer
	if err := httputil.DecodeJSON(r, &customer); err != nil {
		h.writeError(w, "CreateCustomer", err)
		return
	}

	if err := h.service.CreateCustomer(r.Context(), tenantID, &customer); err != nil {
		h.writeError(w, "CreateCustomer", err)
		return
	}

	if err := httputil.WriteCreated(w, customer); err != nil {
		h.log.Error("failed to write created response", "handler", "CreateCustomer", "operation", "WriteCreated", "error", err)
	}
}

func (h *CatalogHandler) GetCustomer(w http.ResponseWriter, r *http.Request, ps httprouter.Params, tenantID model.TenantID) {
	customer, err := h.service.GetCustomer(r.Context(), tenantID, ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetCustomer", err)
		return
	}

	if err := httputil.WriteSuccess(w, customer); err != nil {
		h.log.Error("failed to write success response", "handler", "GetCustomer", "operation", "WriteSuccess", "error", err)
	}
}

func (h *CatalogHandler) writeError(w http.ResponseWriter, name string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", name, "operation", "WriteError", "error", writeErr)
	}
}

func (h *CatalogHandler) RegisterRoutes(router *httprouter.Router) {
	const prefix = tenanthandler.Prefix
	router.POST(prefix+"/services", h.scope.Wrap("CreateService", h.CreateService))
	router.GET(prefix+"/services", h.scope.Wrap("ListServices", h.ListServices))
	router.GET(prefix+"/services/id/:id", h.scope.Wrap("GetService", h.GetService))
	router.POST(prefix+"/customers", h.scope.Wrap("CreateCustomer", h.CreateCustomer))
	router.GET(prefix+"/customers/id/:id", h.scope.Wrap("GetCustomer", h.GetCustomer))
}
