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
	"go.mongodb.org/mongo-driver/mongo/options"

	"storefront/internal/models"
)

// GetOrders lists the authenticated user's orders, newest first.
func GetOrders(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/orders"
		defer handlePanic(c, route)

		userID := c.MustGet("userId").(primitive.ObjectID)

		page, limit, err := parsePaginationParams(c.DefaultQuery("page", "1"), c.DefaultQuery("limit", "10"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid pagination params")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		filter := bson.M{"userId": userID}

		total, err := db.Collection("orders").CountDocuments(ctx, filter)
		if err != nil {
			respondDomainError(c, route, err)
			return
		}

		findOptions := options.Find().
			SetSort(bson.D{{Key: "createdAt", Value: -1}}).
			SetSkip((page - 1) * limit).
			SetLimit(limit)

		cursor, err := db.Collection("orders").Find(ctx, filter, findOptions)
		if err != nil {
			respondDomainError(c, route, err)
			return
		}
		defer cursor.Close(ctx)

		orders := make([]models.Order, 0)
		if err := cursor.All(ctx, &orders); err != nil {
			respondDomainError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"orders": orders,
			"pagination": gin.H{
				"page":  page,
				"limit": limit,
				"total": total,
			},
		})
	}
}

// GetOrderSummary returns one order with its line-item breakdown. Orders are
// owned exclusively by the user who placed them.
func GetOrderSummary(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/orders/:id/summary"
		defer handlePanic(c, route)

		userID := c.MustGet("userId").(primitive.ObjectID)

		orderID, err := primitive.ObjectIDFromHex(strings.TrimSpace(c.Param("id")))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid order id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var order models.Order
		if err := db.Collection("orders").FindOne(ctx, bson.M{"_id": orderID}).Decode(&order); err != nil {
			if err == mongo.ErrNoDocuments {
				respondWithError(c, http.StatusNotFound, route, "order not found")
				return
			}
			respondDomainError(c, route, err)
			return
		}

		if order.UserID != userID {
			respondWithError(c, http.StatusForbidden, route, "not your order")
			return
		}

		subtotal := 0.0
		for _, item := range order.Items {
			subtotal += item.Total
		}

		c.JSON(http.StatusOK, gin.H{
			"order":      order,
			"subtotal":   subtotal,
			"finalTotal": clampNonNegative(subtotal - order.CouponDiscount),
		})
	}
}

type cancelItemRequest struct {
	Reason string `json:"reason"`
}

// CancelOrderItem cancels a single order item before delivery, restoring
// stock and crediting the proportional refund to the wallet.
func CancelOrderItem(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/orders/items/:itemId/cancel"
		defer handlePanic(c, route)

		userID := c.MustGet("userId").(primitive.ObjectID)

		itemID, err := primitive.ObjectIDFromHex(strings.TrimSpace(c.Param("itemId")))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid item id")
			return
		}

		var req cancelItemRequest
		_ = c.ShouldBindJSON(&req)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		order, item, err := findOrderItem(ctx, db, itemID)
		if err != nil {
			respondDomainError(c, route, err)
			return
		}

		if order.UserID != userID {
			respondWithError(c, http.StatusForbidden, route, "not your order")
			return
		}

		if !canCustomerCancel(item.Status) {
			respondDomainError(c, route, invalidTransitionError{From: item.Status, To: StatusCancelled})
			return
		}

		delta, err := settleItemWithRefund(ctx, db, order, item, StatusCancelled, "cancellationReason", strings.TrimSpace(req.Reason))
		if err != nil {
			respondDomainError(c, route, err)
			return
		}

		log.Println("[ORDER] [INFO] item cancelled:", itemID.Hex(), "order:", order.OrderID)
		c.JSON(http.StatusOK, gin.H{
			"message":      "item cancelled",
			"refundAmount": delta.RefundAmount,
			"couponShare":  delta.CouponShare,
		})
	}
}

type returnRequestBody struct {
	Reason string `json:"reason" binding:"required"`
}

// RequestReturn moves a delivered item to Return Requested. The refund
// happens later, when an administrator completes the return.
func RequestReturn(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/orders/items/:itemId/return"
		defer handlePanic(c, route)

		userID := c.MustGet("userId").(primitive.ObjectID)

		itemID, err := primitive.ObjectIDFromHex(strings.TrimSpace(c.Param("itemId")))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid item id")
			return
		}

		var req returnRequestBody
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "reason is required")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		order, item, err := findOrderItem(ctx, db, itemID)
		if err != nil {
			respondDomainError(c, route, err)
			return
		}

		if order.UserID != userID {
			respondWithError(c, http.StatusForbidden, route, "not your order")
			return
		}

		if !canCustomerRequestReturn(item.Status) {
			respondDomainError(c, route, invalidTransitionError{From: item.Status, To: StatusReturnRequested})
			return
		}

		res, err := db.Collection("orders").UpdateOne(ctx, bson.M{
			"_id":   order.ID,
			"items": bson.M{"$elemMatch": bson.M{"_id": item.ID, "status": item.Status}},
		}, bson.M{
			"$set": bson.M{
				"items.$.status":       StatusReturnRequested,
				"items.$.returnReason": strings.TrimSpace(req.Reason),
			},
		})
		if err != nil {
			respondDomainError(c, route, err)
			return
		}
		if res.MatchedCount == 0 {
			respondDomainError(c, route, invalidTransitionError{From: item.Status, To: StatusReturnRequested})
			return
		}

		log.Println("[ORDER] [INFO] return requested:", itemID.Hex(), "order:", order.OrderID)
		c.JSON(http.StatusOK, gin.H{"message": "return requested"})
	}
}

func findOrderItem(ctx context.Context, db *mongo.Database, itemID primitive.ObjectID) (models.Order, models.OrderItem, error) {
	var order models.Order
	err := db.Collection("orders").FindOne(ctx, bson.M{"items._id": itemID}).Decode(&order)
	if err == mongo.ErrNoDocuments {
		return models.Order{}, models.OrderItem{}, orderItemNotFoundError{ItemID: itemID}
	}
	if err != nil {
		return models.Order{}, models.OrderItem{}, err
	}

	for _, item := range order.Items {
		if item.ID == itemID {
			return order, item, nil
		}
	}
	return models.Order{}, models.OrderItem{}, orderItemNotFoundError{ItemID: itemID}
}
