package model

import "time"

// BookingLock is a per-room advisory lock serializing booking writes, so two
// concurrent requests with overlapping stays cannot both pass the overlap
// check. The lock collection carries a TTL index on expires_at so abandoned
// locks clean themselves up.
type BookingLock struct {
	ID        string    `bson:"_id" json:"id"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
