package validator

import (
	"fmt"
	"time"

	"visitly/pkg/logger"
	"visitly/pkg/model"
	"visitly/pkg/validation"
)

type CalendarValidator struct {
	validate *validation.Validator
}

func NewCalendarValidator(log *logger.Logger) *CalendarValidator {
	v, err := validation.New()
	if err != nil {
		log.Fatal("Failed to initialize calendar validator", "error", err)
	}
	return &CalendarValidator{validate: v}
}

// ValidateBusinessHours checks the struct tags, then every weekday entry.
// Map values are not reached by struct validation.
func (v *CalendarValidator) ValidateBusinessHours(hours *model.BusinessHours) error {
	if err := v.validate.Struct(hours); err != nil {
		return err
	}

	var errs validation.ValidationErrors
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		day, ok := hours.Schedule[wd]
		if !ok {
			continue
		}
		field := fmt.Sprintf("schedule[%d]", wd)

		if err := v.validate.Struct(&day); err != nil {
			if verrs, ok := err.(validation.ValidationErrors); ok {
				for _, e := range verrs {
					errs = append(errs, validation.ValidationError{Field: field + "." + e.Field, Message: e.Message})
				}
				continue
			}
			return err
		}
		if day.IsOpen && day.OpenTime >= day.CloseTime {
			errs = append(errs, validation.ValidationError{
				Field:   field,
				Message: fmt.Sprintf("open_time (%s) must be before close_time (%s)", day.OpenTime, day.CloseTime),
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (v *CalendarValidator) ValidateBlockedDate(blocked *model.BlockedDate) error {
	if err := v.validate.Struct(blocked); err != nil {
		return err
	}

	var errs validation.ValidationErrors
	if !blocked.IsRecurring && blocked.RecurringPattern != model.RecurrenceNone {
		errs = append(errs, validation.ValidationError{
			Field:   "recurring_pattern",
			Message: "recurring_pattern requires is_recurring",
		})
	}
	if blocked.Until != "" {
		if !blocked.IsRecurring {
			errs = append(errs, validation.ValidationError{Field: "until", Message: "until requires is_recurring"})
		} else if blocked.Until < blocked.Date {
			errs = append(errs, validation.ValidationError{Field: "until", Message: "until must not be before date"})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
