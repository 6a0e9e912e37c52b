package validator

import (
	"visitly/pkg/logger"
	"visitly/pkg/model"
	"visitly/pkg/validation"
)

type BookingValidator struct {
	validate *validation.Validator
}

func NewBookingValidator(log *logger.Logger) *BookingValidator {
	v, err := validation.New()
	if err != nil {
		log.Fatal("Failed to initialize booking validator", "error", err)
	}
	return &BookingValidator{validate: v}
}

func (v *BookingValidator) ValidateCreate(req *model.CreateBookingRequest) error {
	if err := v.validate.Struct(req); err != nil {
		return err
	}

	var errs validation.ValidationErrors
	if !req.IsHomeVisit {
		if req.HomeVisitAddress != "" {
			errs = append(errs, validation.ValidationError{
				Field:   "home_visit_address",
				Message: "home_visit_address is only allowed for home visits",
			})
		}
		if req.Coordinates != nil {
			errs = append(errs, validation.ValidationError{
				Field:   "coordinates",
				Message: "coordinates are only allowed for home visits",
			})
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (v *BookingValidator) ValidateAssign(req *model.AssignStaffRequest) error {
	return v.validate.Struct(req)
}

func (v *BookingValidator) ValidateCancel(req *model.CancelBookingRequest) error {
	return v.validate.Struct(req)
}

func (v *BookingValidator) ValidateFilter(f model.BookingFilter) error {
	var errs validation.ValidationErrors
	if !f.From.IsZero() && !f.To.IsZero() && !f.From.Before(f.To) {
		errs = append(errs, validation.ValidationError{
			Field:   "to",
			Message: "to must be after from",
		})
	}
	if f.StaffID != "" {
		if err := v.validate.Var("staff_id", f.StaffID, "uuid"); err != nil {
			errs = append(errs, validation.ValidationError{
				Field:   "staff_id",
				Message: "staff_id must be a valid UUID",
			})
		}
	}
	switch f.Status {
	case "", model.BookingPending, model.BookingConfirmed, model.BookingCompleted, model.BookingCancelled:
	default:
		errs = append(errs, validation.ValidationError{
			Field:   "status",
			Message: "status must be one of: pending confirmed completed cancelled",
		})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}
