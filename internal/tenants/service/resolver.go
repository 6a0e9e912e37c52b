package service

import (
	"context"
	"errors"

	tenantserrors "visitly/internal/tenants/errors"
	"visitly/internal/tenants/repository"
	apperrors "visitly/pkg/errors"
	"visitly/pkg/logger"
	"visitly/pkg/model"
	"visitly/pkg/sanitizer"

	"github.com/google/uuid"
)

// Resolver turns the tenant identifier of a request path (a UUID or a
// subdomain) into a TenantID. It runs once per request, at the boundary.
type Resolver interface {
	Resolve(ctx context.Context, identifier string) (model.TenantID, error)
}

type tenantResolver struct {
	repo repository.TenantRepository
	log  *logger.Logger
}

func NewResolver(repo repository.TenantRepository, log *logger.Logger) Resolver {
	return &tenantResolver{
		repo: repo,
		log:  log,
	}
}

func (r *tenantResolver) Resolve(ctx context.Context, identifier string) (model.TenantID, error) {
	if identifier == "" {
		return "", apperrors.InvalidInput("Tenant identifier cannot be empty")
	}

	var (
		tenant *model.Tenant
		err    error
	)
	if _, parseErr := uuid.Parse(identifier); parseErr == nil {
		tenant, err = r.repo.FindByID(ctx, identifier)
	} else {
		subdomain := sanitizer.NormalizeSubdomain(identifier)
		if subdomain == "" {
			return "", apperrors.InvalidInput("Invalid tenant identifier")
		}
		tenant, err = r.repo.FindBySubdomain(ctx, subdomain)
	}

	if err != nil {
		if errors.Is(err, tenantserrors.ErrNotFound) {
			return "", apperrors.NotFoundWithID("Tenant", identifier)
		}
		r.log.Error("Failed to resolve tenant",
			"identifier", identifier,
			"error", err,
		)
		return "", apperrors.Internal("Failed to resolve tenant", err)
	}

	if !tenant.IsActive() {
		r.log.Warn("Request for inactive tenant", logger.TENANT, tenant.ID, "status", tenant.Status)
		return "", apperrors.NotFoundWithID("Tenant", identifier)
	}

	return model.TenantID(tenant.ID), nil
}
