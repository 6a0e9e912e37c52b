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

// Register stores a new active tenant. It backs the operator CLI; there is no
// HTTP surface for tenant provisioning.
func Register(ctx context.Context, repo repository.TenantRepository, log *logger.Logger, subdomain, name string) (*model.Tenant, error) {
	tenant := &model.Tenant{
		ID:        uuid.NewString(),
		Subdomain: sanitizer.NormalizeSubdomain(subdomain),
		Name:      sanitizer.NormalizeName(name),
		Status:    model.TenantStatusActive,
	}

	if tenant.Subdomain == "" || len(tenant.Subdomain) > 63 {
		return nil, apperrors.Validation("Tenant validation failed", map[string]any{"subdomain": "must be 1-63 letters, digits or hyphens"})
	}
	if tenant.Name == "" {
		return nil, apperrors.Validation("Tenant validation failed", map[string]any{"name": "is required"})
	}

	if err := repo.Create(ctx, tenant); err != nil {
		if errors.Is(err, tenantserrors.ErrDuplicateSubdomain) {
			return nil, apperrors.Conflict("Tenant subdomain already exists").WithDetail("subdomain", tenant.Subdomain)
		}
		return nil, apperrors.Internal("Failed to create tenant", err)
	}

	log.Info("Tenant registered", logger.TENANT, tenant.ID, "subdomain", tenant.Subdomain)
	return tenant, nil
}
