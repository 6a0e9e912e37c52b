package validator

import (
	"visitly/pkg/logger"
	"visitly/pkg/model"
	"visitly/pkg/validation"
)

type CatalogValidator struct {
	validate *validation.Validator
}

func NewCatalogValidator(log *logger.Logger) *CatalogValidator {
	v, err := validation.New()
	if err != nil {
		log.Fatal("Failed to initialize catalog validator", "error", err)
	}
	return &CatalogValidator{validate: v}
}

func (v *CatalogValidator) ValidateService(svc *model.Service) error {
	if err := v.validate.Struct(svc); err != nil {
		return err
	}

	// Quota and travel buffer only apply to visits at the customer's address.
	if svc.LocationType == model.LocationOnPremise {
		var errs validation.ValidationErrors
		if svc.DailyQuotaPerStaff != nil {
			errs = append(errs, validation.ValidationError{
				Field:   "daily_quota_per_staff",
				Message: "daily_quota_per_staff is only allowed for services offering home visits",
			})
		}
		if svc.HomeVisitBufferMinutes != nil {
			errs = append(errs, validation.ValidationError{
				Field:   "home_visit_buffer_minutes",
				Message: "home_visit_buffer_minutes is only allowed for services offering home visits",
			})
		}
		if len(errs) > 0 {
			return errs
		}
	}

	return nil
}

func (v *CatalogValidator) ValidateCustomer(customer *model.Customer) error {
	return v.validate.Struct(customer)
}
