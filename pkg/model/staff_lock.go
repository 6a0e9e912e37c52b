package model

import "time"

// StaffLock is an advisory lock serialising reservations for one staff
// member. A unique _id makes acquisition a single insert; a TTL index on
// expires_at removes locks whose holder died.
type StaffLock struct {
	ID        string    `bson:"_id" json:"id"`
	Owner     string    `bson:"owner" json:"owner"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// StaffCalendarVersion is bumped by every reservation transaction touching a
// staff member so two such transactions always write-conflict.
type StaffCalendarVersion struct {
	ID        string    `bson:"_id"`
	Version   int64     `bson:"version"`
	UpdatedAt time.Time `bson:"updated_at"`
}
