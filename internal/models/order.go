package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	PaymentMethodWallet = "Wallet Cash"
	PaymentMethodOnline = "Online Payment"
	PaymentMethodCOD    = "Cash on Delivery"

	PaymentStatusPending = "Pending"
	PaymentStatusPaid    = "Paid"

	RefundStatusProcessed = "Processed"
)

// OrderAddress is a snapshot of the shipping address at checkout, copied
// field by field so later address edits do not touch historical orders.
type OrderAddress struct {
	FullName     string `bson:"fullName" json:"fullName"`
	AddressLine1 string `bson:"addressLine1" json:"addressLine1"`
	AddressLine2 string `bson:"addressLine2,omitempty" json:"addressLine2,omitempty"`
	City         string `bson:"city" json:"city"`
	State        string `bson:"state" json:"state"`
	PostalCode   string `bson:"postalCode" json:"postalCode"`
	Country      string `bson:"country" json:"country"`
	PhoneNumber  string `bson:"phoneNumber" json:"phoneNumber"`
}

// OrderItem is one line of a placed order. The product reference is weak:
// the product may later be deleted; the item keeps its snapshotted name and
// prices. Items are mutated only through the lifecycle state machine and are
// never deleted.
type OrderItem struct {
	ID                 primitive.ObjectID `bson:"_id" json:"id"`
	ProductID          primitive.ObjectID `bson:"productId" json:"productId"`
	Name               string             `bson:"name" json:"name"`
	Quantity           int                `bson:"quantity" json:"quantity"`
	Price              float64            `bson:"price" json:"price"`
	DiscountedPrice    float64            `bson:"discountedPrice" json:"discountedPrice"`
	Discount           float64            `bson:"discount" json:"discount"`
	Total              float64            `bson:"total" json:"total"`
	Status             string             `bson:"status" json:"status"`
	CancellationReason string             `bson:"cancellationReason,omitempty" json:"cancellationReason,omitempty"`
	ReturnReason       string             `bson:"returnReason,omitempty" json:"returnReason,omitempty"`
	RefundAmount       float64            `bson:"refundAmount,omitempty" json:"refundAmount,omitempty"`
	RefundStatus       string             `bson:"refundStatus,omitempty" json:"refundStatus,omitempty"`
}

// Order is the immutable checkout snapshot. Pricing fields are never
// rewritten after creation except for TotalAmount, which only ever decreases
// by processed refund amounts. Status is the derived roll-up of item
// statuses, recomputed on every item mutation and never set directly.
type Order struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID           primitive.ObjectID `bson:"userId" json:"userId"`
	OrderID          string             `bson:"orderId" json:"orderId"`
	Address          OrderAddress       `bson:"address" json:"address"`
	Items            []OrderItem        `bson:"items" json:"items"`
	Subtotal         float64            `bson:"subtotal" json:"subtotal"`
	CouponDiscount   float64            `bson:"couponDiscount" json:"couponDiscount"`
	CouponDetails    *CouponDetails     `bson:"couponDetails,omitempty" json:"couponDetails,omitempty"`
	TotalAmount      float64            `bson:"totalAmount" json:"totalAmount"`
	WalletAmountUsed float64            `bson:"walletAmountUsed" json:"walletAmountUsed"`
	PaymentMethod    string             `bson:"paymentMethod" json:"paymentMethod"`
	PaymentStatus    string             `bson:"paymentStatus" json:"paymentStatus"`
	Status           string             `bson:"status" json:"status"`
	CreatedAt        time.Time          `bson:"createdAt" json:"createdAt"`
}
