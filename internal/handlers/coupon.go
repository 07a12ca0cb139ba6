package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"storefront/internal/models"
)

// validateCoupon applies the coupon eligibility rules to a pre-coupon cart
// subtotal and returns the snapshot to embed in the order. It is a pure
// function of its inputs: re-running it with the same subtotal yields the
// same discount.
func validateCoupon(coupon models.Coupon, subtotal float64, now time.Time) (models.CouponDetails, error) {
	if coupon.Status != models.CouponStatusActive {
		return models.CouponDetails{}, couponNotFoundError{Code: coupon.Code}
	}
	if now.After(coupon.ExpiryDate) {
		return models.CouponDetails{}, couponExpiredError{Code: coupon.Code}
	}
	if subtotal < coupon.MinAmount {
		return models.CouponDetails{}, couponMinimumError{Code: coupon.Code, MinAmount: coupon.MinAmount, Subtotal: subtotal}
	}

	discountAmount := subtotal * coupon.Discount / 100
	if coupon.MaxDiscount > 0 && discountAmount > coupon.MaxDiscount {
		discountAmount = coupon.MaxDiscount
	}

	return models.CouponDetails{
		Code:           coupon.Code,
		Discount:       coupon.Discount,
		DiscountAmount: discountAmount,
	}, nil
}

func findCouponByCode(ctx context.Context, db *mongo.Database, code string) (models.Coupon, error) {
	var coupon models.Coupon
	err := db.Collection("coupons").FindOne(ctx, bson.M{"code": code}).Decode(&coupon)
	if err == mongo.ErrNoDocuments {
		return models.Coupon{}, couponNotFoundError{Code: code}
	}
	if err != nil {
		return models.Coupon{}, err
	}
	return coupon, nil
}

type applyCouponRequest struct {
	CouponCode string `json:"couponCode" binding:"required"`
}

// ApplyCoupon previews a coupon against the user's current cart subtotal.
// Nothing is persisted; the coupon is re-validated at checkout against the
// subtotal computed there.
func ApplyCoupon(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/cart/coupon"
		defer handlePanic(c, route)

		userID := c.MustGet("userId").(primitive.ObjectID)

		var req applyCouponRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "couponCode is required")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		cart, err := findCart(ctx, db, userID)
		if err != nil {
			respondDomainError(c, route, err)
			return
		}
		if len(cart.Items) == 0 {
			respondDomainError(c, route, emptyCartError{})
			return
		}

		pricing, err := priceCart(ctx, db, cart, "", time.Now())
		if err != nil {
			respondDomainError(c, route, err)
			return
		}

		code := strings.TrimSpace(req.CouponCode)
		coupon, err := findCouponByCode(ctx, db, code)
		if err != nil {
			respondDomainError(c, route, err)
			return
		}

		details, err := validateCoupon(coupon, pricing.Subtotal, time.Now())
		if err != nil {
			respondDomainError(c, route, err)
			return
		}

		log.Println("[COUPON] [INFO] coupon applied:", details.Code)
		c.JSON(http.StatusOK, gin.H{
			"coupon":         details,
			"subtotal":       pricing.Subtotal,
			"discountAmount": details.DiscountAmount,
			"total":          clampNonNegative(pricing.Subtotal - details.DiscountAmount),
		})
	}
}

// RemoveCoupon re-prices the cart without a coupon. Since coupons are never
// stored on the cart, this simply returns the undiscounted totals.
func RemoveCoupon(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /api/cart/coupon"
		defer handlePanic(c, route)

		userID := c.MustGet("userId").(primitive.ObjectID)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		cart, err := findCart(ctx, db, userID)
		if err != nil {
			respondDomainError(c, route, err)
			return
		}

		pricing, err := priceCart(ctx, db, cart, "", time.Now())
		if err != nil {
			respondDomainError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message":  "coupon removed",
			"subtotal": pricing.Subtotal,
			"total":    pricing.Total,
		})
	}
}
