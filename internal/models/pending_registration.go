package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PendingRegistration parks a not-yet-verified signup together with its
// hashed OTP code. The collection carries a TTL index on ExpiresAt, so stale
// entries disappear on their own instead of living in process memory.
type PendingRegistration struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email        string             `bson:"email" json:"email"`
	Name         string             `bson:"name" json:"name"`
	Phone        string             `bson:"phone,omitempty" json:"phone,omitempty"`
	PasswordHash string             `bson:"passwordHash" json:"-"`
	OTPHash      string             `bson:"otpHash" json:"-"`
	ExpiresAt    time.Time          `bson:"expiresAt" json:"expiresAt"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
}
