package handlers

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/models"
)

func orderWithItems(couponDiscount, walletUsed float64, items ...models.OrderItem) models.Order {
	return models.Order{
		ID:               primitive.NewObjectID(),
		CouponDiscount:   couponDiscount,
		WalletAmountUsed: walletUsed,
		Items:            items,
	}
}

func orderItem(total float64, quantity int, status string) models.OrderItem {
	return models.OrderItem{
		ID:        primitive.NewObjectID(),
		ProductID: primitive.NewObjectID(),
		Quantity:  quantity,
		Total:     total,
		Status:    status,
	}
}

func TestCalculateRefundProportionalCouponClawback(t *testing.T) {
	cancelled := orderItem(400, 1, StatusProcessing)
	kept := orderItem(600, 1, StatusProcessing)
	order := orderWithItems(100, 0, cancelled, kept)

	delta := calculateRefund(order, []primitive.ObjectID{cancelled.ID})

	if delta.CouponShare != 40 {
		t.Fatalf("expected coupon clawback 40 (400/1000 of 100), got %v", delta.CouponShare)
	}
	if delta.RefundAmount != 360 {
		t.Fatalf("expected refund 360, got %v", delta.RefundAmount)
	}
	if delta.RemainingSubtotal != 600 {
		t.Fatalf("expected remaining subtotal 600, got %v", delta.RemainingSubtotal)
	}
}

func TestCalculateRefundNoCoupon(t *testing.T) {
	cancelled := orderItem(250, 1, StatusPending)
	kept := orderItem(750, 1, StatusPending)
	order := orderWithItems(0, 0, cancelled, kept)

	delta := calculateRefund(order, []primitive.ObjectID{cancelled.ID})
	if delta.RefundAmount != 250 {
		t.Fatalf("expected full line total back, got %v", delta.RefundAmount)
	}
}

func TestCalculateRefundFullyWalletPaidOrderRefundsOnce(t *testing.T) {
	// Wallet payment debits exactly the order total, and the item refunds
	// across a fully cancelled order sum to the same amount. No extra
	// wallet credit may appear on top.
	cancelled := orderItem(500, 1, StatusProcessing)
	order := orderWithItems(40, 460, cancelled)
	order.TotalAmount = 460

	delta := calculateRefund(order, []primitive.ObjectID{cancelled.ID})
	if delta.RefundAmount != 460 {
		t.Fatalf("expected refund equal to the 460 debit, got %v", delta.RefundAmount)
	}
	if got := delta.CancelledSubtotal - delta.CouponShare; got != order.TotalAmount {
		t.Fatalf("expected total decrement 460 to drive the order total to 0, got %v", got)
	}
}

func TestCalculateRefundWalletShareReturnsThroughItemRefunds(t *testing.T) {
	// The first item was already cancelled (and refunded) earlier. The
	// final settlement refunds only its own item value; the partial wallet
	// payment came back inside the per-item refunds.
	settled := orderItem(300, 1, StatusCancelled)
	last := orderItem(700, 1, StatusProcessing)
	order := orderWithItems(0, 200, settled, last)

	delta := calculateRefund(order, []primitive.ObjectID{last.ID})
	if delta.RemainingSubtotal != 0 {
		t.Fatalf("expected remaining subtotal 0, got %v", delta.RemainingSubtotal)
	}
	if delta.RefundAmount != 700 {
		t.Fatalf("expected 700 back with no wallet double-credit, got %v", delta.RefundAmount)
	}
}

func TestCalculateRefundWalletExcessBeyondItemValue(t *testing.T) {
	// Only wallet money applied beyond the order's item value comes back
	// as an extra credit, with the final settlement.
	cancelled := orderItem(400, 1, StatusProcessing)
	order := orderWithItems(0, 550, cancelled)

	delta := calculateRefund(order, []primitive.ObjectID{cancelled.ID})
	if delta.RefundAmount != 550 {
		t.Fatalf("expected 400 + the 150 excess back, got %v", delta.RefundAmount)
	}
}

func TestCalculateRefundNoWalletTopUpWhileItemsRemain(t *testing.T) {
	cancelled := orderItem(400, 1, StatusProcessing)
	kept := orderItem(600, 1, StatusShipped)
	order := orderWithItems(0, 1150, cancelled, kept)

	delta := calculateRefund(order, []primitive.ObjectID{cancelled.ID})
	if delta.RefundAmount != 400 {
		t.Fatalf("expected no wallet top-up while items remain, got %v", delta.RefundAmount)
	}
}

func TestCalculateRefundRestockQuantities(t *testing.T) {
	cancelled := orderItem(300, 3, StatusProcessing)
	order := orderWithItems(0, 0, cancelled)

	delta := calculateRefund(order, []primitive.ObjectID{cancelled.ID})
	if got := delta.Restock[cancelled.ProductID]; got != 3 {
		t.Fatalf("expected restock of 3 units, got %d", got)
	}
}

func TestCalculateRefundZeroSubtotalOrder(t *testing.T) {
	free := orderItem(0, 1, StatusProcessing)
	order := orderWithItems(0, 0, free)

	delta := calculateRefund(order, []primitive.ObjectID{free.ID})
	if delta.RefundAmount != 0 {
		t.Fatalf("expected zero refund for zero subtotal, got %v", delta.RefundAmount)
	}
}
