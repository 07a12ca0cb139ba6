package handlers

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCartItemFilterPinsUserAndProduct(t *testing.T) {
	userID := primitive.NewObjectID()
	productID := primitive.NewObjectID()

	filter := cartItemFilter(userID, productID)
	if len(filter) != 2 {
		t.Fatalf("expected exactly userId and items.productId in filter, got %v", filter)
	}
	if got := filter["userId"]; got != userID {
		t.Fatalf("expected filter to pin userId %s, got %v", userID.Hex(), got)
	}
	// Removing a product that is not in the cart must match no document at
	// all, so the line itself is part of the filter, not just the owner.
	if got := filter["items.productId"]; got != productID {
		t.Fatalf("expected filter to pin items.productId %s, got %v", productID.Hex(), got)
	}
}
