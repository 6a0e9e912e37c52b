package model

// Unlimited is the remaining quota of a service without a daily limit.
const Unlimited = -1

// StaffAvailability is one ranked candidate for a requested slot.
type StaffAvailability struct {
	StaffID           string `json:"staff_id"`
	StaffName         string `json:"staff_name,omitempty"`
	IsAvailable       bool   `json:"is_available"`
	UnavailableReason string `json:"unavailable_reason,omitempty"`
	HomeVisitCount    int    `json:"home_visit_count"`
	MaxHomeVisits     int    `json:"max_home_visits"`
}
