package handlers

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"storefront/internal/models"
)

// refundDelta is the outcome of the refund calculation: a delta to apply,
// computed as a pure function of the order snapshot so calling it twice for
// the same items cannot drift.
type refundDelta struct {
	RefundAmount      float64
	CouponShare       float64
	CancelledSubtotal float64
	RemainingSubtotal float64
	Restock           map[primitive.ObjectID]int
}

// calculateRefund computes the refund for cancelling (or completing the
// return of) the given items. The coupon discount is clawed back
// proportionally to the cancelled share of the original subtotal. Item
// refunds across a fully settled order sum to subtotal minus the coupon
// discount, which already returns the wallet debit of a wallet-paid order;
// only wallet amounts applied beyond that item value come back as an extra
// credit, with the final settlement.
func calculateRefund(order models.Order, itemIDs []primitive.ObjectID) refundDelta {
	selected := make(map[primitive.ObjectID]bool, len(itemIDs))
	for _, id := range itemIDs {
		selected[id] = true
	}

	delta := refundDelta{Restock: make(map[primitive.ObjectID]int)}
	originalSubtotal := 0.0

	for _, item := range order.Items {
		originalSubtotal += item.Total
		switch {
		case selected[item.ID]:
			delta.CancelledSubtotal += item.Total
			delta.Restock[item.ProductID] += item.Quantity
		case !isSettled(item.Status):
			delta.RemainingSubtotal += item.Total
		}
	}

	if originalSubtotal == 0 {
		return delta
	}

	proportion := delta.CancelledSubtotal / originalSubtotal
	delta.CouponShare = order.CouponDiscount * proportion
	delta.RefundAmount = delta.CancelledSubtotal - delta.CouponShare

	if delta.RemainingSubtotal == 0 {
		excess := order.WalletAmountUsed - (originalSubtotal - order.CouponDiscount)
		if excess > 0 {
			delta.RefundAmount += excess
		}
	}

	return delta
}

// settleItemWithRefund moves one item into a settled status and applies the
// refund delta: the item status, refund fields and order total change in a
// single guarded update on the order document, then stock is restored, the
// wallet credited, and the aggregate status recomputed.
func settleItemWithRefund(ctx context.Context, db *mongo.Database, order models.Order, item models.OrderItem, toStatus, reasonField, reason string) (refundDelta, error) {
	delta := calculateRefund(order, []primitive.ObjectID{item.ID})

	set := bson.M{
		"items.$.status":       toStatus,
		"items.$.refundAmount": delta.RefundAmount,
		"items.$.refundStatus": models.RefundStatusProcessed,
	}
	if reason != "" {
		set["items.$."+reasonField] = reason
	}

	// The order total only ever carried the item value, so it shrinks by
	// the item-value share; a wallet excess in the refund is a wallet-side
	// credit, not order value. The status guard in the filter rejects a
	// concurrent transition on the same item instead of overwriting it.
	res, err := db.Collection("orders").UpdateOne(ctx, bson.M{
		"_id":   order.ID,
		"items": bson.M{"$elemMatch": bson.M{"_id": item.ID, "status": item.Status}},
	}, bson.M{
		"$set": set,
		"$inc": bson.M{"totalAmount": -(delta.CancelledSubtotal - delta.CouponShare)},
	})
	if err != nil {
		return refundDelta{}, err
	}
	if res.MatchedCount == 0 {
		return refundDelta{}, invalidTransitionError{From: item.Status, To: toStatus}
	}

	// Proportional clawback can round a hair past the stored total; pin the
	// floor at zero.
	if _, err := db.Collection("orders").UpdateOne(ctx, bson.M{
		"_id":         order.ID,
		"totalAmount": bson.M{"$lt": 0},
	}, bson.M{
		"$set": bson.M{"totalAmount": 0},
	}); err != nil {
		return refundDelta{}, err
	}

	for productID, qty := range delta.Restock {
		if _, err := db.Collection("products").UpdateByID(ctx, productID, bson.M{
			"$inc": bson.M{"stock": qty},
		}); err != nil {
			return refundDelta{}, err
		}
	}

	if delta.RefundAmount > 0 {
		description := "Refund for cancelled item in order " + order.OrderID
		if toStatus == StatusReturned {
			description = "Refund for returned item in order " + order.OrderID
		}
		if _, err := creditWallet(ctx, db, order.UserID, delta.RefundAmount, description); err != nil {
			return refundDelta{}, err
		}
	}

	if err := recomputeOrderStatus(ctx, db, order.ID); err != nil {
		return refundDelta{}, err
	}

	return delta, nil
}

// recomputeOrderStatus reloads the order items and stores the derived
// aggregate status.
func recomputeOrderStatus(ctx context.Context, db *mongo.Database, orderID primitive.ObjectID) error {
	var order models.Order
	if err := db.Collection("orders").FindOne(ctx, bson.M{"_id": orderID}).Decode(&order); err != nil {
		return err
	}

	_, err := db.Collection("orders").UpdateByID(ctx, orderID, bson.M{
		"$set": bson.M{"status": deriveOrderStatus(order.Items)},
	})
	return err
}
