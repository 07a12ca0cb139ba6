package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	OfferTypeProduct  = "product"
	OfferTypeCategory = "category"

	OfferStatusActive   = "active"
	OfferStatusInactive = "inactive"
)

// Offer is a percentage discount attached to products directly or through
// their categories. A product's effective discount is the maximum active,
// unexpired offer discount applicable to it, never additive.
type Offer struct {
	ID         primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name       string               `bson:"offerName" json:"offerName"`
	Discount   float64              `bson:"discount" json:"discount"`
	OfferType  string               `bson:"offerType" json:"offerType"`
	ProductIDs []primitive.ObjectID `bson:"productIds,omitempty" json:"productIds,omitempty"`
	Categories StringList           `bson:"categories,omitempty" json:"categories,omitempty"`
	Status     string               `bson:"status" json:"status"`
	ExpireDate time.Time            `bson:"expireDate" json:"expireDate"`
	CreatedAt  time.Time            `bson:"createdAt" json:"createdAt"`
}
