package model

import "time"

// TenantID identifies the business that owns a record. It is produced once
// per request by the tenant resolver and passed explicitly everywhere else.
type TenantID string

func (t TenantID) String() string {
	return string(t)
}

const (
	TenantStatusActive    = "active"
	TenantStatusSuspended = "suspended"
)

type Tenant struct {
	ID        string    `json:"id" bson:"_id"`
	Subdomain string    `json:"subdomain" bson:"subdomain"`
	Name      string    `json:"name" bson:"name"`
	Status    string    `json:"status" bson:"status"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

func (t *Tenant) IsActive() bool {
	return t.Status == TenantStatusActive
}
