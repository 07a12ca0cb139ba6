package handlers

import (
	"strconv"
	"strings"
	"testing"

	"storefront/internal/models"
)

func TestGenerateOrderIDFormat(t *testing.T) {
	id := generateOrderID()
	parts := strings.Split(id, "-")
	if len(parts) != 3 || parts[0] != "ORD" {
		t.Fatalf("expected ORD-<millis>-<suffix>, got %q", id)
	}
	if _, err := strconv.ParseInt(parts[1], 10, 64); err != nil {
		t.Fatalf("expected numeric timestamp segment, got %q", parts[1])
	}
	suffix, err := strconv.Atoi(parts[2])
	if err != nil || suffix < 0 || suffix > 999 {
		t.Fatalf("expected suffix in [0, 999], got %q", parts[2])
	}
}

func TestClampNonNegative(t *testing.T) {
	if got := clampNonNegative(-50); got != 0 {
		t.Fatalf("expected negative total clamped to 0, got %v", got)
	}
	if got := clampNonNegative(120); got != 120 {
		t.Fatalf("expected positive total untouched, got %v", got)
	}
}

func TestAddressSnapshotCopiesAllFields(t *testing.T) {
	address := models.Address{
		ID:           "addr-1",
		FullName:     "Asha Rao",
		AddressLine1: "12 Hill Road",
		AddressLine2: "Flat 4",
		City:         "Pune",
		State:        "MH",
		PostalCode:   "411001",
		Country:      "IN",
		PhoneNumber:  "9999999999",
	}

	snapshot := addressSnapshot(address)
	if snapshot.FullName != address.FullName ||
		snapshot.AddressLine1 != address.AddressLine1 ||
		snapshot.AddressLine2 != address.AddressLine2 ||
		snapshot.City != address.City ||
		snapshot.State != address.State ||
		snapshot.PostalCode != address.PostalCode ||
		snapshot.Country != address.Country ||
		snapshot.PhoneNumber != address.PhoneNumber {
		t.Fatalf("expected snapshot to copy every field, got %+v", snapshot)
	}
}
