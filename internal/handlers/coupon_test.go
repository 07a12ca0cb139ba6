package handlers

import (
	"errors"
	"testing"
	"time"

	"storefront/internal/models"
)

func activeCoupon() models.Coupon {
	return models.Coupon{
		Code:        "SAVE10",
		Discount:    10,
		MinAmount:   500,
		MaxDiscount: 150,
		ExpiryDate:  time.Now().Add(24 * time.Hour),
		Status:      models.CouponStatusActive,
	}
}

func TestValidateCouponPercentageDiscount(t *testing.T) {
	details, err := validateCoupon(activeCoupon(), 1000, time.Now())
	if err != nil {
		t.Fatalf("validateCoupon returned error: %v", err)
	}
	if details.DiscountAmount != 100 {
		t.Fatalf("expected 10%% of 1000 = 100, got %v", details.DiscountAmount)
	}
	if details.Code != "SAVE10" {
		t.Fatalf("expected code snapshot, got %q", details.Code)
	}
}

func TestValidateCouponCapsAtMaxDiscount(t *testing.T) {
	details, err := validateCoupon(activeCoupon(), 5000, time.Now())
	if err != nil {
		t.Fatalf("validateCoupon returned error: %v", err)
	}
	if details.DiscountAmount != 150 {
		t.Fatalf("expected cap at 150, got %v", details.DiscountAmount)
	}
}

func TestValidateCouponMinimumNotMet(t *testing.T) {
	_, err := validateCoupon(activeCoupon(), 499, time.Now())
	var minErr couponMinimumError
	if !errors.As(err, &minErr) {
		t.Fatalf("expected couponMinimumError, got %v", err)
	}
	if minErr.MinAmount != 500 {
		t.Fatalf("expected minAmount 500 in error, got %v", minErr.MinAmount)
	}
}

func TestValidateCouponExactMinimumPasses(t *testing.T) {
	if _, err := validateCoupon(activeCoupon(), 500, time.Now()); err != nil {
		t.Fatalf("subtotal equal to minAmount should pass, got %v", err)
	}
}

func TestValidateCouponExpired(t *testing.T) {
	coupon := activeCoupon()
	coupon.ExpiryDate = time.Now().Add(-time.Minute)

	_, err := validateCoupon(coupon, 1000, time.Now())
	var expErr couponExpiredError
	if !errors.As(err, &expErr) {
		t.Fatalf("expected couponExpiredError, got %v", err)
	}
}

func TestValidateCouponInactiveTreatedAsNotFound(t *testing.T) {
	coupon := activeCoupon()
	coupon.Status = models.CouponStatusInactive

	_, err := validateCoupon(coupon, 1000, time.Now())
	var nfErr couponNotFoundError
	if !errors.As(err, &nfErr) {
		t.Fatalf("expected couponNotFoundError for inactive coupon, got %v", err)
	}
}

func TestValidateCouponDeterministic(t *testing.T) {
	now := time.Now()
	first, err := validateCoupon(activeCoupon(), 1234, now)
	if err != nil {
		t.Fatalf("validateCoupon returned error: %v", err)
	}
	second, err := validateCoupon(activeCoupon(), 1234, now)
	if err != nil {
		t.Fatalf("validateCoupon returned error: %v", err)
	}
	if first.DiscountAmount != second.DiscountAmount {
		t.Fatalf("expected identical discount on re-validation, got %v and %v", first.DiscountAmount, second.DiscountAmount)
	}
}
