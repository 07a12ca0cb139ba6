package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	CouponStatusActive   = "active"
	CouponStatusInactive = "inactive"
)

// Coupon is a cart-level percentage discount gated by a minimum spend and
// capped by MaxDiscount.
type Coupon struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Code        string             `bson:"code" json:"code"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Discount    float64            `bson:"discount" json:"discount"`
	MinAmount   float64            `bson:"minAmount" json:"minAmount"`
	MaxDiscount float64            `bson:"maxDiscount" json:"maxDiscount"`
	ExpiryDate  time.Time          `bson:"expiryDate" json:"expiryDate"`
	Status      string             `bson:"status" json:"status"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}

// CouponDetails is the snapshot embedded in an order at checkout. Later
// coupon edits never alter historical orders.
type CouponDetails struct {
	Code           string  `bson:"code" json:"code"`
	Discount       float64 `bson:"discount" json:"discount"`
	DiscountAmount float64 `bson:"discountAmount" json:"discountAmount"`
}
