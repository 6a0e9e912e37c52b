package model

import "time"

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
)

// ActiveStatuses are the statuses that occupy a staff member's time.
var ActiveStatuses = []BookingStatus{BookingPending, BookingConfirmed}

var transitions = map[BookingStatus][]BookingStatus{
	BookingPending:   {BookingConfirmed, BookingCancelled},
	BookingConfirmed: {BookingCancelled, BookingCompleted},
}

// CanTransition reports whether a booking may move from s to next.
func (s BookingStatus) CanTransition(next BookingStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsActive reports whether a booking in this status blocks staff time.
func (s BookingStatus) IsActive() bool {
	return s == BookingPending || s == BookingConfirmed
}

type Coordinates struct {
	Lat float64 `json:"lat" bson:"lat" validate:"latitude"`
	Lng float64 `json:"lng" bson:"lng" validate:"longitude"`
}

type Booking struct {
	ID                 string        `json:"id" bson:"_id"`
	TenantID           TenantID      `json:"tenant_id" bson:"tenant_id"`
	ServiceID          string        `json:"service_id" bson:"service_id"`
	CustomerID         string        `json:"customer_id" bson:"customer_id"`
	ScheduledAt        time.Time     `json:"scheduled_at" bson:"scheduled_at"`
	EndAt              time.Time     `json:"end_at" bson:"end_at"`
	LocalDate          string        `json:"local_date" bson:"local_date"`
	DurationMinutes    int           `json:"duration_minutes" bson:"duration_minutes"`
	IsHomeVisit        bool          `json:"is_home_visit" bson:"is_home_visit"`
	AssignedStaffID    string        `json:"assigned_staff_id,omitempty" bson:"assigned_staff_id,omitempty"`
	Status             BookingStatus `json:"status" bson:"status"`
	HomeVisitAddress   string        `json:"home_visit_address,omitempty" bson:"home_visit_address,omitempty"`
	Coordinates        *Coordinates  `json:"coordinates,omitempty" bson:"coordinates,omitempty"`
	Notes              string        `json:"notes,omitempty" bson:"notes,omitempty"`
	CancellationReason string        `json:"cancellation_reason,omitempty" bson:"cancellation_reason,omitempty"`
	Revision           int64         `json:"revision" bson:"revision"`
	CreatedAt          time.Time     `json:"created_at" bson:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at" bson:"updated_at"`
	CancelledAt        *time.Time    `json:"cancelled_at,omitempty" bson:"cancelled_at,omitempty"`
}

func (b *Booking) IsAssigned() bool {
	return b.AssignedStaffID != ""
}

// CreateBookingRequest is the input of booking creation. DurationMinutes
// falls back to the service duration when zero.
type CreateBookingRequest struct {
	ServiceID        string       `json:"service_id" validate:"required,uuid"`
	CustomerID       string       `json:"customer_id" validate:"required,uuid"`
	ScheduledAt      time.Time    `json:"scheduled_at" validate:"required"`
	DurationMinutes  int          `json:"duration_minutes,omitempty" validate:"omitempty,min=5,max=720"`
	IsHomeVisit      bool         `json:"is_home_visit"`
	HomeVisitAddress string       `json:"home_visit_address,omitempty" validate:"required_if=IsHomeVisit true,omitempty,min=5,max=300"`
	Coordinates      *Coordinates `json:"coordinates,omitempty" validate:"omitempty"`
	StaffID          string       `json:"staff_id,omitempty" validate:"omitempty,uuid"`
	Notes            string       `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

type AssignStaffRequest struct {
	StaffID string `json:"staff_id" validate:"required,uuid"`
}

type CancelBookingRequest struct {
	Reason string `json:"reason,omitempty" validate:"omitempty,max=500"`
}

// BookingFilter narrows ListBookings. Zero values mean no constraint.
type BookingFilter struct {
	From    time.Time
	To      time.Time
	StaffID string
	Status  BookingStatus
	Limit   int
	Offset  int64
}
