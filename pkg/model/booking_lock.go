package model

import "time"

// BookingLock is an advisory lock document serializing writes on one spot.
// Token identifies the holder so only it can release the lock.
type BookingLock struct {
	ID        string    `bson:"_id" json:"id"`
	Token     string    `bson:"token" json:"token"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
