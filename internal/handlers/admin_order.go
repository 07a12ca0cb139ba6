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

// AdminGetOrders lists all orders, newest first, with optional search on the
// human-readable order id or payment status.
func AdminGetOrders(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/api/orders"
		defer handlePanic(c, route)

		page, limit, err := parsePaginationParams(c.DefaultQuery("page", "1"), c.DefaultQuery("limit", "10"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid pagination params")
			return
		}

		filter := bson.M{}
		if search := strings.TrimSpace(c.Query("search")); search != "" {
			filter["$or"] = []bson.M{
				{"orderId": bson.M{"$regex": search, "$options": "i"}},
				{"paymentStatus": bson.M{"$regex": search, "$options": "i"}},
			}
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

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

type updateOrderStatusRequest struct {
	OrderID string `json:"orderId" binding:"required"`
	ItemID  string `json:"itemId" binding:"required"`
	Status  string `json:"status" binding:"required"`
}

// AdminUpdateOrderStatus moves one order item through the state machine.
// Transitions into Cancelled or Returned settle the item: stock is restored
// and the proportional refund credited, exactly as a customer cancellation.
func AdminUpdateOrderStatus(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /admin/api/orders/status"
		defer handlePanic(c, route)

		var req updateOrderStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "orderId, itemId and status are required")
			return
		}

		orderID, err := primitive.ObjectIDFromHex(strings.TrimSpace(req.OrderID))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid order id")
			return
		}
		itemID, err := primitive.ObjectIDFromHex(strings.TrimSpace(req.ItemID))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid item id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
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

		var item models.OrderItem
		found := false
		for _, candidate := range order.Items {
			if candidate.ID == itemID {
				item = candidate
				found = true
				break
			}
		}
		if !found {
			respondDomainError(c, route, orderItemNotFoundError{ItemID: itemID})
			return
		}

		if !canTransition(item.Status, req.Status) {
			respondDomainError(c, route, invalidTransitionError{From: item.Status, To: req.Status})
			return
		}

		// Settling transitions carry refund side effects; plain progress
		// transitions only move the status.
		if req.Status == StatusCancelled || req.Status == StatusReturned {
			delta, err := settleItemWithRefund(ctx, db, order, item, req.Status, "cancellationReason", "")
			if err != nil {
				respondDomainError(c, route, err)
				return
			}

			log.Println("[ORDER] [INFO] item settled by admin:", itemID.Hex(), "status:", req.Status)
			c.JSON(http.StatusOK, gin.H{
				"message":      "order status updated",
				"refundAmount": delta.RefundAmount,
			})
			return
		}

		res, err := db.Collection("orders").UpdateOne(ctx, bson.M{
			"_id":   order.ID,
			"items": bson.M{"$elemMatch": bson.M{"_id": item.ID, "status": item.Status}},
		}, bson.M{
			"$set": bson.M{"items.$.status": req.Status},
		})
		if err != nil {
			respondDomainError(c, route, err)
			return
		}
		if res.MatchedCount == 0 {
			respondDomainError(c, route, invalidTransitionError{From: item.Status, To: req.Status})
			return
		}

		if err := recomputeOrderStatus(ctx, db, order.ID); err != nil {
			respondDomainError(c, route, err)
			return
		}

		log.Println("[ORDER] [INFO] item status updated:", itemID.Hex(), "->", req.Status)
		c.JSON(http.StatusOK, gin.H{"message": "order status updated"})
	}
}

type salesReportRow struct {
	OrderDate     string  `json:"orderDate"`
	OrderID       string  `json:"orderId"`
	PaymentMethod string  `json:"paymentMethod"`
	CouponCode    string  `json:"couponCode"`
	Discount      float64 `json:"discount"`
	ItemQuantity  int     `json:"itemQuantity"`
	TotalAmount   float64 `json:"totalAmount"`
}

// AdminSalesReport aggregates orders in a date window into the summary the
// report exporters consume: overall sales, overall coupon discount, and a
// paginated row per order.
func AdminSalesReport(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/api/reports/sales"
		defer handlePanic(c, route)

		from, to, err := reportWindow(c.Query("filter"), c.Query("startDate"), c.Query("endDate"), time.Now())
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		page, limit, err := parsePaginationParams(c.DefaultQuery("page", "1"), c.DefaultQuery("limit", "10"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid pagination params")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		match := bson.M{"createdAt": bson.M{"$gte": from, "$lte": to}}

		cursor, err := db.Collection("orders").Aggregate(ctx, mongo.Pipeline{
			{{Key: "$match", Value: match}},
			{{Key: "$group", Value: bson.M{
				"_id":           nil,
				"totalSales":    bson.M{"$sum": "$totalAmount"},
				"totalDiscount": bson.M{"$sum": bson.M{"$ifNull": []interface{}{"$couponDiscount", 0}}},
			}}},
		})
		if err != nil {
			respondDomainError(c, route, err)
			return
		}

		var summary []struct {
			TotalSales    float64 `bson:"totalSales"`
			TotalDiscount float64 `bson:"totalDiscount"`
		}
		if err := cursor.All(ctx, &summary); err != nil {
			respondDomainError(c, route, err)
			return
		}

		overallSales := 0.0
		overallDiscount := 0.0
		if len(summary) > 0 {
			overallSales = summary[0].TotalSales
			overallDiscount = summary[0].TotalDiscount
		}

		totalOrders, err := db.Collection("orders").CountDocuments(ctx, match)
		if err != nil {
			respondDomainError(c, route, err)
			return
		}

		findOptions := options.Find().
			SetSort(bson.D{{Key: "createdAt", Value: -1}}).
			SetSkip((page - 1) * limit).
			SetLimit(limit)

		orderCursor, err := db.Collection("orders").Find(ctx, match, findOptions)
		if err != nil {
			respondDomainError(c, route, err)
			return
		}
		defer orderCursor.Close(ctx)

		rows := make([]salesReportRow, 0)
		for orderCursor.Next(ctx) {
			var order models.Order
			if err := orderCursor.Decode(&order); err != nil {
				respondDomainError(c, route, err)
				return
			}

			row := salesReportRow{
				OrderDate:     order.CreatedAt.Format("2006-01-02"),
				OrderID:       order.OrderID,
				PaymentMethod: order.PaymentMethod,
				CouponCode:    "N/A",
				Discount:      order.CouponDiscount,
				TotalAmount:   order.TotalAmount,
			}
			if order.CouponDetails != nil {
				row.CouponCode = order.CouponDetails.Code
			}
			for _, item := range order.Items {
				row.ItemQuantity += item.Quantity
			}
			rows = append(rows, row)
		}
		if err := orderCursor.Err(); err != nil {
			respondDomainError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"overallSalesCount":  totalOrders,
			"overallOrderAmount": overallSales,
			"overallDiscount":    overallDiscount,
			"orders":             rows,
			"pagination": gin.H{
				"page":  page,
				"limit": limit,
				"total": totalOrders,
			},
		})
	}
}
