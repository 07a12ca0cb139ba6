package handlers

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"storefront/internal/models"
)

// cartPricing is the fully priced cart: order items ready to snapshot, the
// accumulated subtotal, the coupon result, and the payable total.
type cartPricing struct {
	Items          []models.OrderItem
	Subtotal       float64
	CouponDiscount float64
	CouponDetails  *models.CouponDetails
	Total          float64
}

// priceCart walks the cart line items against live product and offer state.
// Offer discounts are re-resolved here rather than read from the cached
// discountedPrice so a stale cache can never leak into an order. Nothing is
// mutated; any failure aborts pricing with no side effects.
func priceCart(ctx context.Context, db *mongo.Database, cart models.Cart, couponCode string, now time.Time) (cartPricing, error) {
	pricing := cartPricing{Items: make([]models.OrderItem, 0, len(cart.Items))}

	for _, item := range cart.Items {
		var product models.Product
		err := db.Collection("products").FindOne(ctx, bson.M{
			"_id":       item.ProductID,
			"isDeleted": bson.M{"$ne": true},
		}).Decode(&product)
		if err == mongo.ErrNoDocuments {
			return cartPricing{}, productUnavailableError{ProductID: item.ProductID}
		}
		if err != nil {
			return cartPricing{}, err
		}

		if product.Stock < item.Quantity {
			return cartPricing{}, insufficientStockError{
				ProductID: item.ProductID,
				Available: product.Stock,
				Requested: item.Quantity,
			}
		}

		offers, err := loadProductOffers(ctx, db, product)
		if err != nil {
			return cartPricing{}, err
		}

		discount := bestOfferDiscount(offers, now)
		unitPrice := discountedUnitPrice(product.Price, discount)
		lineTotal := unitPrice * float64(item.Quantity)

		pricing.Items = append(pricing.Items, models.OrderItem{
			ID:              primitive.NewObjectID(),
			ProductID:       product.ID,
			Name:            product.Name,
			Quantity:        item.Quantity,
			Price:           product.Price,
			DiscountedPrice: unitPrice,
			Discount:        discount,
			Total:           lineTotal,
			Status:          StatusPending,
		})
		pricing.Subtotal += lineTotal
	}

	if code := strings.TrimSpace(couponCode); code != "" {
		coupon, err := findCouponByCode(ctx, db, code)
		if err != nil {
			return cartPricing{}, err
		}

		details, err := validateCoupon(coupon, pricing.Subtotal, now)
		if err != nil {
			return cartPricing{}, err
		}

		pricing.CouponDiscount = details.DiscountAmount
		pricing.CouponDetails = &details
	}

	pricing.Total = clampNonNegative(pricing.Subtotal - pricing.CouponDiscount)
	return pricing, nil
}

func clampNonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

func findCart(ctx context.Context, db *mongo.Database, userID primitive.ObjectID) (models.Cart, error) {
	var cart models.Cart
	err := db.Collection("carts").FindOne(ctx, bson.M{"userId": userID}).Decode(&cart)
	if err == mongo.ErrNoDocuments {
		return models.Cart{UserID: userID, Items: []models.CartItem{}}, nil
	}
	if err != nil {
		return models.Cart{}, err
	}
	return cart, nil
}
