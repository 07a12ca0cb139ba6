package handlers

import (
	"testing"

	"storefront/internal/models"
)

func TestCanTransitionForwardPath(t *testing.T) {
	steps := [][2]string{
		{StatusPending, StatusProcessing},
		{StatusProcessing, StatusShipped},
		{StatusShipped, StatusDelivered},
		{StatusDelivered, StatusReturnRequested},
		{StatusReturnRequested, StatusReturned},
		{StatusReturnRequested, StatusRejected},
		{StatusDelivered, StatusCancelled},
	}
	for _, step := range steps {
		if !canTransition(step[0], step[1]) {
			t.Fatalf("expected %s -> %s to be allowed", step[0], step[1])
		}
	}
}

func TestCanTransitionRejectsSkipsAndBackwards(t *testing.T) {
	steps := [][2]string{
		{StatusPending, StatusShipped},
		{StatusPending, StatusDelivered},
		{StatusShipped, StatusProcessing},
		{StatusDelivered, StatusPending},
		{StatusProcessing, StatusReturnRequested},
	}
	for _, step := range steps {
		if canTransition(step[0], step[1]) {
			t.Fatalf("expected %s -> %s to be rejected", step[0], step[1])
		}
	}
}

func TestTerminalStatusesHaveNoExits(t *testing.T) {
	all := []string{
		StatusPending, StatusProcessing, StatusShipped, StatusDelivered,
		StatusCancelled, StatusReturnRequested, StatusReturned, StatusRejected,
	}
	for _, terminal := range []string{StatusCancelled, StatusReturned, StatusRejected} {
		for _, to := range all {
			if canTransition(terminal, to) {
				t.Fatalf("expected terminal %s to reject transition to %s", terminal, to)
			}
		}
	}
}

func TestCanCustomerCancelBeforeDeliveryOnly(t *testing.T) {
	for _, status := range []string{StatusPending, StatusProcessing, StatusShipped} {
		if !canCustomerCancel(status) {
			t.Fatalf("expected customer cancel from %s", status)
		}
	}
	for _, status := range []string{StatusDelivered, StatusCancelled, StatusReturned, StatusReturnRequested} {
		if canCustomerCancel(status) {
			t.Fatalf("expected no customer cancel from %s", status)
		}
	}
}

func TestCanCustomerRequestReturnOnlyAfterDelivery(t *testing.T) {
	if !canCustomerRequestReturn(StatusDelivered) {
		t.Fatal("expected return request from Delivered")
	}
	for _, status := range []string{StatusPending, StatusShipped, StatusCancelled, StatusReturnRequested} {
		if canCustomerRequestReturn(status) {
			t.Fatalf("expected no return request from %s", status)
		}
	}
}

func itemsWithStatuses(statuses ...string) []models.OrderItem {
	items := make([]models.OrderItem, 0, len(statuses))
	for _, status := range statuses {
		items = append(items, models.OrderItem{Status: status})
	}
	return items
}

func TestDeriveOrderStatusAllSettled(t *testing.T) {
	if got := deriveOrderStatus(itemsWithStatuses(StatusCancelled, StatusReturned)); got != StatusCancelled {
		t.Fatalf("expected Cancelled when all items settled, got %s", got)
	}
}

func TestDeriveOrderStatusDeliveredWins(t *testing.T) {
	if got := deriveOrderStatus(itemsWithStatuses(StatusDelivered, StatusShipped, StatusProcessing)); got != StatusDelivered {
		t.Fatalf("expected Delivered, got %s", got)
	}
}

func TestDeriveOrderStatusReturnRequestedCountsAsDelivered(t *testing.T) {
	if got := deriveOrderStatus(itemsWithStatuses(StatusReturnRequested, StatusProcessing)); got != StatusDelivered {
		t.Fatalf("expected Delivered for a return-requested item, got %s", got)
	}
}

func TestDeriveOrderStatusShippedOverProcessing(t *testing.T) {
	if got := deriveOrderStatus(itemsWithStatuses(StatusShipped, StatusPending, StatusCancelled)); got != StatusShipped {
		t.Fatalf("expected Shipped, got %s", got)
	}
}

func TestDeriveOrderStatusDefaultsToProcessing(t *testing.T) {
	if got := deriveOrderStatus(itemsWithStatuses(StatusPending, StatusCancelled)); got != StatusProcessing {
		t.Fatalf("expected Processing, got %s", got)
	}
}
