package model

import "time"

type Customer struct {
	ID        string    `json:"id" bson:"_id"`
	TenantID  TenantID  `json:"tenant_id" bson:"tenant_id"`
	Name      string    `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Phone     string    `json:"phone" bson:"phone" validate:"required,e164"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}
