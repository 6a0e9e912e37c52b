package model

import "time"

type Staff struct {
	ID        string    `json:"id" bson:"_id"`
	TenantID  TenantID  `json:"tenant_id" bson:"tenant_id"`
	Name      string    `json:"name" bson:"name" validate:"required,min=2,max=100"`
	IsActive  bool      `json:"is_active" bson:"is_active"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

type StaffUpdate struct {
	Name     string `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	IsActive *bool  `json:"is_active,omitempty"`
}

// DaySchedule is one weekday of a staff member's working hours. Times are
// "HH:MM" in the tenant timezone; the window is [StartTime, EndTime).
type DaySchedule struct {
	StartTime   string `json:"start_time" bson:"start_time" validate:"required_if=IsAvailable true,omitempty,hhmm"`
	EndTime     string `json:"end_time" bson:"end_time" validate:"required_if=IsAvailable true,omitempty,hhmm"`
	IsAvailable bool   `json:"is_available" bson:"is_available"`
}

// WeeklySchedule keeps at most one entry per weekday, so an upsert of a day
// always replaces the previous entry.
type WeeklySchedule struct {
	ID        string                       `json:"id" bson:"_id"`
	TenantID  TenantID                     `json:"tenant_id" bson:"tenant_id"`
	StaffID   string                       `json:"staff_id" bson:"staff_id"`
	Days      map[time.Weekday]DaySchedule `json:"days" bson:"days"`
	UpdatedAt time.Time                    `json:"updated_at" bson:"updated_at"`
}

// Day returns the entry for wd; a missing entry means not working.
func (w *WeeklySchedule) Day(wd time.Weekday) (DaySchedule, bool) {
	if w == nil || w.Days == nil {
		return DaySchedule{}, false
	}
	d, ok := w.Days[wd]
	return d, ok
}

type StaffCapability struct {
	ID         string    `json:"id" bson:"_id"`
	TenantID   TenantID  `json:"tenant_id" bson:"tenant_id"`
	StaffID    string    `json:"staff_id" bson:"staff_id"`
	ServiceID  string    `json:"service_id" bson:"service_id"`
	CanPerform bool      `json:"can_perform" bson:"can_perform"`
	HomeVisit  bool      `json:"home_visit" bson:"home_visit"`
	UpdatedAt  time.Time `json:"updated_at" bson:"updated_at"`
}

// Qualifies reports whether the capability allows the requested kind of visit.
func (c *StaffCapability) Qualifies(isHomeVisit bool) bool {
	if c == nil || !c.CanPerform {
		return false
	}
	return !isHomeVisit || c.HomeVisit
}
