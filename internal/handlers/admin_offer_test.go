package handlers

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/models"
)

func TestOfferRequestParseProductOffer(t *testing.T) {
	id := primitive.NewObjectID()
	req := offerRequest{
		OfferName:  "Summer Sale",
		Discount:   20,
		ExpireDate: time.Now().Add(24 * time.Hour).Format(time.RFC3339),
		OfferType:  models.OfferTypeProduct,
		References: []string{id.Hex()},
	}

	offer, err := req.parse()
	if err != nil {
		t.Fatalf("parse returned error: %v", err)
	}
	if len(offer.ProductIDs) != 1 || offer.ProductIDs[0] != id {
		t.Fatalf("expected product reference preserved, got %v", offer.ProductIDs)
	}
	if offer.Status != models.OfferStatusActive {
		t.Fatalf("expected new offer to start active, got %q", offer.Status)
	}
}

func TestOfferRequestParseCategoryOffer(t *testing.T) {
	req := offerRequest{
		OfferName:  "Electronics Week",
		Discount:   15,
		ExpireDate: time.Now().Add(24 * time.Hour).Format(time.RFC3339),
		OfferType:  models.OfferTypeCategory,
		References: []string{"Electronics", " Phones "},
	}

	offer, err := req.parse()
	if err != nil {
		t.Fatalf("parse returned error: %v", err)
	}
	if len(offer.Categories) != 2 || offer.Categories[1] != "Phones" {
		t.Fatalf("expected trimmed category names, got %v", offer.Categories)
	}
}

func TestOfferRequestParseRejectsBadInput(t *testing.T) {
	base := offerRequest{
		OfferName:  "Sale",
		Discount:   10,
		ExpireDate: time.Now().Add(time.Hour).Format(time.RFC3339),
		OfferType:  models.OfferTypeProduct,
		References: []string{primitive.NewObjectID().Hex()},
	}

	bad := base
	bad.Discount = 150
	if _, err := bad.parse(); err == nil {
		t.Fatal("expected error for discount above 100")
	}

	bad = base
	bad.ExpireDate = time.Now().Add(-time.Hour).Format(time.RFC3339)
	if _, err := bad.parse(); err == nil {
		t.Fatal("expected error for past expiry")
	}

	bad = base
	bad.OfferType = "bundle"
	if _, err := bad.parse(); err == nil {
		t.Fatal("expected error for unknown offer type")
	}

	bad = base
	bad.References = []string{"not-an-id"}
	if _, err := bad.parse(); err == nil {
		t.Fatal("expected error for malformed product reference")
	}
}

func TestCouponRequestParseUppercasesCode(t *testing.T) {
	req := couponRequest{
		Code:        " save10 ",
		Discount:    10,
		MaxDiscount: 100,
		ExpiryDate:  time.Now().Add(time.Hour).Format(time.RFC3339),
	}

	coupon, err := req.parse()
	if err != nil {
		t.Fatalf("parse returned error: %v", err)
	}
	if coupon.Code != "SAVE10" {
		t.Fatalf("expected normalized code SAVE10, got %q", coupon.Code)
	}
	if coupon.Status != models.CouponStatusActive {
		t.Fatalf("expected new coupon to start active, got %q", coupon.Status)
	}
}
