package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product is the catalog document. DiscountedPrice is a denormalized cache of
// the best active offer discount, maintained by the offer admin handlers for
// listing pages; checkout always re-resolves pricing from the offers
// collection instead of reading it.
type Product struct {
	ID              primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name            string               `bson:"name" json:"name"`
	Price           float64              `bson:"price" json:"price"`
	DiscountedPrice float64              `bson:"discountedPrice" json:"discountedPrice"`
	Offers          []primitive.ObjectID `bson:"offers,omitempty" json:"offers,omitempty"`
	Category        StringList           `bson:"category" json:"category"`
	Description     string               `bson:"description,omitempty" json:"description,omitempty"`
	Brand           string               `bson:"brand,omitempty" json:"brand,omitempty"`
	Stock           int                  `bson:"stock" json:"stock"`
	InStock         bool                 `bson:"-" json:"inStock"`
	IsActive        bool                 `bson:"isActive" json:"isActive"`
	IsDeleted       bool                 `bson:"isDeleted" json:"isDeleted,omitempty"`
	DeletedAt       *time.Time           `bson:"deletedAt,omitempty" json:"deletedAt,omitempty"`
	CreatedAt       time.Time            `bson:"createdAt" json:"createdAt"`
}
