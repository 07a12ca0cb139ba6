package handlers

import (
	"testing"
	"time"

	"storefront/internal/models"
)

func TestBestOfferDiscountPicksMaximum(t *testing.T) {
	now := time.Now()
	offers := []models.Offer{
		{Discount: 10, Status: models.OfferStatusActive, ExpireDate: now.Add(time.Hour)},
		{Discount: 25, Status: models.OfferStatusActive, ExpireDate: now.Add(time.Hour)},
		{Discount: 15, Status: models.OfferStatusActive, ExpireDate: now.Add(time.Hour)},
	}

	if got := bestOfferDiscount(offers, now); got != 25 {
		t.Fatalf("expected best discount 25, got %v", got)
	}
}

func TestBestOfferDiscountNeverStacks(t *testing.T) {
	now := time.Now()
	offers := []models.Offer{
		{Discount: 20, Status: models.OfferStatusActive, ExpireDate: now.Add(time.Hour)},
		{Discount: 30, Status: models.OfferStatusActive, ExpireDate: now.Add(time.Hour)},
	}

	if got := bestOfferDiscount(offers, now); got != 30 {
		t.Fatalf("expected 30, not a 50 stack, got %v", got)
	}
}

func TestBestOfferDiscountSkipsInactiveAndExpired(t *testing.T) {
	now := time.Now()
	offers := []models.Offer{
		{Discount: 50, Status: models.OfferStatusInactive, ExpireDate: now.Add(time.Hour)},
		{Discount: 40, Status: models.OfferStatusActive, ExpireDate: now.Add(-time.Hour)},
		{Discount: 10, Status: models.OfferStatusActive, ExpireDate: now.Add(time.Hour)},
	}

	if got := bestOfferDiscount(offers, now); got != 10 {
		t.Fatalf("expected only the live offer to count, got %v", got)
	}
}

func TestBestOfferDiscountEmptySet(t *testing.T) {
	if got := bestOfferDiscount(nil, time.Now()); got != 0 {
		t.Fatalf("expected 0 for no offers, got %v", got)
	}
}

func TestDiscountedUnitPriceRoundsHalfUp(t *testing.T) {
	tests := []struct {
		price    float64
		discount float64
		want     float64
	}{
		{100, 0, 100},
		{100, 33, 67},
		{999, 15, 849},  // 849.15 rounds down
		{105, 50, 53},   // 52.5 rounds up
		{100, 100, 0},
	}

	for _, tt := range tests {
		if got := discountedUnitPrice(tt.price, tt.discount); got != tt.want {
			t.Fatalf("discountedUnitPrice(%v, %v) = %v, want %v", tt.price, tt.discount, got, tt.want)
		}
	}
}

func TestNormalizeProductFillsDerivedFields(t *testing.T) {
	product := models.Product{Price: 100, DiscountedPrice: 0, Stock: 3}
	normalizeProduct(&product)
	if !product.InStock {
		t.Fatal("expected inStock true for positive stock")
	}
	if product.DiscountedPrice != 100 {
		t.Fatalf("expected discountedPrice to fall back to price, got %v", product.DiscountedPrice)
	}

	product = models.Product{Price: 100, DiscountedPrice: 120, Stock: 0}
	normalizeProduct(&product)
	if product.InStock {
		t.Fatal("expected inStock false for zero stock")
	}
	if product.DiscountedPrice != 100 {
		t.Fatalf("expected cached price above list price to be clamped, got %v", product.DiscountedPrice)
	}
}
