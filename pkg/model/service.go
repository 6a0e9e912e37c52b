package model

import "time"

type LocationType string

const (
	LocationOnPremise LocationType = "on_premise"
	LocationHomeVisit LocationType = "home_visit"
	LocationBoth      LocationType = "both"
)

type Service struct {
	ID                      string       `json:"id" bson:"_id"`
	TenantID                TenantID     `json:"tenant_id" bson:"tenant_id"`
	Name                    string       `json:"name" bson:"name" validate:"required,min=2,max=100"`
	DurationMinutes         int          `json:"duration_minutes" bson:"duration_minutes" validate:"required,min=5,max=720"`
	LocationType            LocationType `json:"location_type" bson:"location_type" validate:"required,oneof=on_premise home_visit both"`
	DailyQuotaPerStaff      *int         `json:"daily_quota_per_staff,omitempty" bson:"daily_quota_per_staff,omitempty" validate:"omitempty,min=0,max=100"`
	HomeVisitBufferMinutes  *int         `json:"home_visit_buffer_minutes,omitempty" bson:"home_visit_buffer_minutes,omitempty" validate:"omitempty,min=0,max=240"`
	RequiresStaffAssignment bool         `json:"requires_staff_assignment" bson:"requires_staff_assignment"`
	CreatedAt               time.Time    `json:"created_at" bson:"created_at"`
}

// Supports reports whether the service may be delivered at the requested
// location.
func (s *Service) Supports(isHomeVisit bool) bool {
	switch s.LocationType {
	case LocationBoth:
		return true
	case LocationHomeVisit:
		return isHomeVisit
	default:
		return !isHomeVisit
	}
}

// Quota returns the daily home-visit limit per staff member and false when
// the service has none.
func (s *Service) Quota() (int, bool) {
	if s.DailyQuotaPerStaff == nil {
		return 0, false
	}
	return *s.DailyQuotaPerStaff, true
}

func (s *Service) BufferMinutes() int {
	if s.HomeVisitBufferMinutes == nil {
		return 0
	}
	return *s.HomeVisitBufferMinutes
}
