package service

import (
	"context"
	"errors"
	"sync"

	catalogerrors "visitly/internal/catalog/errors"
	"visitly/internal/catalog/repository"
	"visitly/internal/catalog/validator"
	"visitly/pkg/config"
	apperrors "visitly/pkg/errors"
	"visitly/pkg/logger"
	"visitly/pkg/model"
	"visitly/pkg/sanitizer"
	"visitly/pkg/validation"

	"github.com/google/uuid"
)

type CatalogService interface {
	CreateService(ctx context.Context, tenantID model.TenantID, svc *model.Service) error
	GetService(ctx context.Context, tenantID model.TenantID, id string) (*model.Service, error)
	ListServices(ctx context.Context, tenantID model.TenantID, limit int, offset int64) ([]*model.Service, int64, error)

	CreateCustomer(ctx context.Context, tenantID model.TenantID, customer *model.Customer) error
	GetCustomer(ctx context.Context, tenantID model.TenantID, id string) (*model.Customer, error)
}

type catalogService struct {
	services  repository.ServiceRepository
	customers repository.CustomerRepository
	validator *validator.CatalogValidator
	cfg       *config.Config
}

func NewCatalogService(
	services repository.ServiceRepository,
	customers repository.CustomerRepository,
	validator *validator.CatalogValidator,
	cfg *config.Config,
) CatalogService {
	return &catalogService{
		services:  services,
		customers: customers,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *catalogService) CreateService(ctx context.Context, tenantID model.TenantID, svc *model.Service) error {
	svc.ID = uuid.NewString()
	svc.TenantID = tenantID
	svc.Name = sanitizer.NormalizeName(svc.Name)

	if err := s.validator.ValidateService(svc); err != nil {
		s.cfg.Log.Warn("Service validation failed",
			logger.TENANT, tenantID,
			"name", svc.Name,
			"error", err,
		)
		return validationError("Service validation failed", err)
	}

	if err := s.services.Create(ctx, svc); err != nil {
		s.cfg.Log.Error("Failed to create service", logger.TENANT, tenantID, "error", err)
		return apperrors.Internal("Failed to create service", err)
	}

	s.cfg.Log.Info("Service created successfully",
		logger.TENANT, tenantID,
		"id", svc.ID,
		"location_type", svc.LocationType,
	)
	return nil
}

func (s *catalogService) GetService(ctx context.Context, tenantID model.TenantID, id string) (*model.Service, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Service ID cannot be empty")
	}

	svc, err := s.services.FindByID(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, catalogerrors.ErrServiceNotFound) {
			return nil, apperrors.NotFoundWithID("Service", id)
		}
		s.cfg.Log.Error("Failed to get service", logger.TENANT, tenantID, "id", id, "error", err)
		return nil, apperrors.Internal("Failed to retrieve service", err)
	}
	return svc, nil
}

func (s *catalogService) ListServices(ctx context.Context, tenantID model.TenantID, limit int, offset int64) ([]*model.Service, int64, error) {
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	var (
		count             int64
		services          []*model.Service
		errCount, errFind error
		wg                sync.WaitGroup
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		count, errCount = s.services.Count(ctx, tenantID)
	}()
	go func() {
		defer wg.Done()
		services, errFind = s.services.FindAll(ctx, tenantID, limit, offset)
	}()
	wg.Wait()

	if err := errors.Join(errCount, errFind); err != nil {
		s.cfg.Log.Error("Failed to list services", logger.TENANT, tenantID, "error", err)
		return nil, 0, apperrors.Internal("Failed to retrieve services", err)
	}
	return services, count, nil
}

func (s *catalogService) CreateCustomer(ctx context.Context, tenantID model.TenantID, customer *model.Customer) error {
	customer.ID = uuid.NewString()
	customer.TenantID = tenantID
	customer.Name = sanitizer.NormalizeName(customer.Name)
	customer.Phone = sanitizer.NormalizePhone(customer.Phone)

	if err := s.validator.ValidateCustomer(customer); err != nil {
		s.cfg.Log.Warn("Customer validation failed", logger.TENANT, tenantID, "error", err)
		return validationError("Customer validation failed", err)
	}

	if err := s.customers.Create(ctx, customer); err != nil {
		if errors.Is(err, catalogerrors.ErrDuplicateCustomer) {
			return apperrors.Conflict("A customer with this phone number already exists")
		}
		s.cfg.Log.Error("Failed to create customer", logger.TENANT, tenantID, "error", err)
		return apperrors.Internal("Failed to create customer", err)
	}

	s.cfg.Log.Info("Customer created successfully", logger.TENANT, tenantID, "id", customer.ID)
	return nil
}

func (s *catalogService) GetCustomer(ctx context.Context, tenantID model.TenantID, id string) (*model.Customer, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Customer ID cannot be empty")
	}

	customer, err := s.customers.FindByID(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, catalogerrors.ErrCustomerNotFound) {
			return nil, apperrors.NotFoundWithID("Customer", id)
		}
		s.cfg.Log.Error("Failed to get customer", logger.TENANT, tenantID, "id", id, "error", err)
		return nil, apperrors.Internal("Failed to retrieve customer", err)
	}
	return customer, nil
}

func validationError(message string, err error) error {
	var verrs validation.ValidationErrors
	if errors.As(err, &verrs) {
		return apperrors.Validation(message, verrs.Fields())
	}
	return apperrors.Validation(message, map[string]any{"error": err.Error()})
}
