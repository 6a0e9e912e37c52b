package model

import "time"

type BusinessDay struct {
	IsOpen    bool   `json:"is_open" bson:"is_open"`
	OpenTime  string `json:"open_time,omitempty" bson:"open_time" validate:"required_if=IsOpen true,omitempty,hhmm"`
	CloseTime string `json:"close_time,omitempty" bson:"close_time" validate:"required_if=IsOpen true,omitempty,hhmm"`
}

// BusinessHours is the weekly opening calendar of a tenant. There is one
// document per tenant keyed by tenant id.
type BusinessHours struct {
	TenantID  TenantID                     `json:"tenant_id" bson:"_id"`
	Schedule  map[time.Weekday]BusinessDay `json:"schedule" bson:"schedule" validate:"required,dive,keys,min=0,max=6,endkeys"`
	Timezone  string                       `json:"timezone" bson:"timezone" validate:"required,timezone"`
	IsDefault bool                         `json:"is_default,omitempty" bson:"-"`
	UpdatedAt time.Time                    `json:"updated_at" bson:"updated_at"`
}

func (b *BusinessHours) Day(wd time.Weekday) BusinessDay {
	if b == nil || b.Schedule == nil {
		return BusinessDay{}
	}
	return b.Schedule[wd]
}

type RecurrencePattern string

const (
	RecurrenceNone    RecurrencePattern = ""
	RecurrenceWeekly  RecurrencePattern = "weekly"
	RecurrenceMonthly RecurrencePattern = "monthly"
	RecurrenceYearly  RecurrencePattern = "yearly"
)

// DateLayout is the wire and storage format of calendar dates.
const DateLayout = "2006-01-02"

type BlockedDate struct {
	ID               string            `json:"id" bson:"_id"`
	TenantID         TenantID          `json:"tenant_id" bson:"tenant_id"`
	Date             string            `json:"date" bson:"date" validate:"required,yyyymmdd"`
	Reason           string            `json:"reason,omitempty" bson:"reason,omitempty" validate:"omitempty,max=200"`
	IsRecurring      bool              `json:"is_recurring" bson:"is_recurring"`
	RecurringPattern RecurrencePattern `json:"recurring_pattern,omitempty" bson:"recurring_pattern,omitempty" validate:"required_if=IsRecurring true,omitempty,oneof=weekly monthly yearly"`
	Until            string            `json:"until,omitempty" bson:"until,omitempty" validate:"omitempty,yyyymmdd"`
	CreatedAt        time.Time         `json:"created_at" bson:"created_at"`
}
