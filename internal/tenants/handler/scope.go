package handler

import (
	"net/http"

	"visitly/internal/tenants/service"
	httputil "visitly/pkg/http"
	"visitly/pkg/logger"
	"visitly/pkg/model"

	"github.com/julienschmidt/httprouter"
)

// TenantParam is the route parameter carrying the tenant identifier.
const TenantParam = "tenant"

// Prefix is the base path of every tenant-scoped route.
const Prefix = "/api/v1/tenants/:" + TenantParam

// Handle is an httprouter handle that also receives the resolved tenant.
type Handle func(w http.ResponseWriter, r *http.Request, ps httprouter.Params, tenantID model.TenantID)

// Scope resolves the tenant of each request before calling a Handle.
type Scope struct {
	resolver service.Resolver
	log      *logger.Logger
}

func NewScope(resolver service.Resolver, log *logger.Logger) *Scope {
	return &Scope{
		resolver: resolver,
		log:      log,
	}
}

func (s *Scope) Wrap(name string, h Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		tenantID, err := s.resolver.Resolve(r.Context(), ps.ByName(TenantParam))
		if err != nil {
			if writeErr := httputil.WriteError(w, err); writeErr != nil {
				s.log.Error("failed to write error response", "handler", name, "operation", "WriteError", "error", writeErr)
			}
			return
		}
		h(w, r, ps, tenantID)
	}
}
