package validator

import (
	"fmt"

	"visitly/pkg/logger"
	"visitly/pkg/model"
	"visitly/pkg/validation"
)

type StaffValidator struct {
	validate *validation.Validator
}

func NewStaffValidator(log *logger.Logger) *StaffValidator {
	v, err := validation.New()
	if err != nil {
		log.Fatal("Failed to initialize staff validator", "error", err)
	}
	return &StaffValidator{validate: v}
}

func (v *StaffValidator) ValidateStaff(staff *model.Staff) error {
	return v.validate.Struct(staff)
}

func (v *StaffValidator) ValidateUpdate(update *model.StaffUpdate) error {
	if err := v.validate.Struct(update); err != nil {
		return err
	}
	if update.Name == "" && update.IsActive == nil {
		return validation.ValidationErrors{{Field: "body", Message: "at least one of name or is_active is required"}}
	}
	return nil
}

func (v *StaffValidator) ValidateDay(entry *model.DaySchedule) error {
	if err := v.validate.Struct(entry); err != nil {
		return err
	}
	if entry.IsAvailable && entry.StartTime >= entry.EndTime {
		return validation.ValidationErrors{{
			Field:   "end_time",
			Message: fmt.Sprintf("end_time (%s) must be after start_time (%s)", entry.EndTime, entry.StartTime),
		}}
	}
	return nil
}

// ValidateCapability checks the flags against what the service offers.
func (v *StaffValidator) ValidateCapability(capability *model.StaffCapability, svc *model.Service) error {
	if capability.HomeVisit && !capability.CanPerform {
		return validation.ValidationErrors{{Field: "home_visit", Message: "home_visit requires can_perform"}}
	}
	if capability.HomeVisit && !svc.Supports(true) {
		return validation.ValidationErrors{{Field: "home_visit", Message: "service is not offered as a home visit"}}
	}
	return nil
}
