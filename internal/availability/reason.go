package availability

import (
	apperrors "visitly/pkg/errors"
	"visitly/pkg/model"
)

// ReasonError turns an unavailable candidate into the matching typed error.
func ReasonError(a model.StaffAvailability, serviceID string) *apperrors.AppError {
	switch a.UnavailableReason {
	case apperrors.CodeStaffInactive:
		return apperrors.StaffInactive(a.StaffID)
	case apperrors.CodeStaffNotQualified:
		return apperrors.StaffNotQualified(a.StaffID, serviceID)
	case apperrors.CodeOutsideWorkingHours:
		return apperrors.OutsideWorkingHours(a.StaffID)
	case apperrors.CodeTimeConflict:
		return apperrors.TimeConflict(a.StaffID)
	case apperrors.CodeQuotaExceeded:
		return apperrors.QuotaExceeded(a.StaffID, a.MaxHomeVisits)
	default:
		return apperrors.SlotUnavailable("Staff member is not available for the requested time").
			WithDetail("staff_id", a.StaffID)
	}
}
