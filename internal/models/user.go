package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Address represents a single shipping address entry for a user. Checkout
// copies the fields into the order; it never references the entry itself.
type Address struct {
	ID           string `bson:"id" json:"id"`
	FullName     string `bson:"fullName" json:"fullName"`
	AddressLine1 string `bson:"addressLine1" json:"addressLine1"`
	AddressLine2 string `bson:"addressLine2,omitempty" json:"addressLine2,omitempty"`
	City         string `bson:"city" json:"city"`
	State        string `bson:"state" json:"state"`
	PostalCode   string `bson:"postalCode" json:"postalCode"`
	Country      string `bson:"country" json:"country"`
	PhoneNumber  string `bson:"phoneNumber" json:"phoneNumber"`
	IsDefault    bool   `bson:"isDefault" json:"isDefault"`
}

// User represents the application user account.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"passwordHash" json:"-"`
	Name         string             `bson:"name" json:"name"`
	Phone        string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Role         string             `bson:"role" json:"role"`
	IsActive     bool               `bson:"isActive" json:"isActive"`
	Addresses    []Address          `bson:"addresses" json:"addresses"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}
