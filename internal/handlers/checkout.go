package handlers

import (
	"context"
	"fmt"
	"log"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"storefront/internal/models"
	"storefront/internal/payment"
)

type placeOrderRequest struct {
	AddressID        string `json:"addressId" binding:"required"`
	PaymentMethod    string `json:"paymentMethod" binding:"required"`
	CouponCode       string `json:"couponCode"`
	GatewayOrderID   string `json:"gatewayOrderId"`
	GatewayPaymentID string `json:"gatewayPaymentId"`
	GatewaySignature string `json:"gatewaySignature"`
}

func generateOrderID() string {
	return fmt.Sprintf("ORD-%d-%d", time.Now().UnixMilli(), rand.IntN(1000))
}

// decrementedStock remembers what checkout already took so a later failure
// can put it back.
type decrementedStock struct {
	ProductID primitive.ObjectID
	Quantity  int
}

// PlaceOrder turns the user's cart into a persisted order. Validation and
// pricing run before any mutation; once the wallet debit or the first stock
// decrement lands, every failure path compensates (restock, wallet
// re-credit) so no mutation survives an order that was not persisted.
func PlaceOrder(db *mongo.Database, verifier payment.Verifier, verifyTimeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/checkout"
		defer handlePanic(c, route)

		if err := ensureDBConnection(c.Request.Context(), db); err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "database unavailable")
			return
		}

		userID := c.MustGet("userId").(primitive.ObjectID)

		var req placeOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "addressId and paymentMethod are required")
			return
		}

		switch req.PaymentMethod {
		case models.PaymentMethodWallet, models.PaymentMethodOnline, models.PaymentMethodCOD:
		default:
			respondWithError(c, http.StatusBadRequest, route, "invalid payment method")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
		defer cancel()

		cart, err := findCart(ctx, db, userID)
		if err != nil {
			respondDomainError(c, route, err)
			return
		}
		if len(cart.Items) == 0 {
			respondDomainError(c, route, emptyCartError{})
			return
		}

		pricing, err := priceCart(ctx, db, cart, req.CouponCode, time.Now())
		if err != nil {
			respondDomainError(c, route, err)
			return
		}

		address, err := findUserAddress(ctx, db, userID, req.AddressID)
		if err != nil {
			respondDomainError(c, route, err)
			return
		}

		orderID := generateOrderID()
		paymentStatus := models.PaymentStatusPending
		walletAmountUsed := 0.0
		walletBalance := -1.0

		switch req.PaymentMethod {
		case models.PaymentMethodWallet:
			balance, err := debitWallet(ctx, db, userID, pricing.Total, "Payment for order "+orderID)
			if err != nil {
				respondDomainError(c, route, err)
				return
			}
			walletAmountUsed = pricing.Total
			walletBalance = balance
			paymentStatus = models.PaymentStatusPaid

		case models.PaymentMethodOnline:
			if err := verifyOnlinePayment(ctx, verifier, verifyTimeout, req.GatewayOrderID, req.GatewayPaymentID, req.GatewaySignature); err != nil {
				respondDomainError(c, route, err)
				return
			}
			paymentStatus = models.PaymentStatusPaid
		}

		// From here on every failure must undo the wallet debit and any
		// stock already taken.
		decremented := make([]decrementedStock, 0, len(pricing.Items))
		compensate := func() {
			compCtx, compCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer compCancel()

			for _, d := range decremented {
				if _, err := db.Collection("products").UpdateByID(compCtx, d.ProductID, bson.M{
					"$inc": bson.M{"stock": d.Quantity},
				}); err != nil {
					log.Printf("[%s] compensation restock failed for %s: %v", route, d.ProductID.Hex(), err)
				}
			}
			if walletAmountUsed > 0 {
				if _, err := creditWallet(compCtx, db, userID, walletAmountUsed, "Reversal for failed order "+orderID); err != nil {
					log.Printf("[%s] compensation wallet credit failed: %v", route, err)
				}
			}
		}

		for _, item := range pricing.Items {
			res, err := db.Collection("products").UpdateOne(ctx, bson.M{
				"_id":       item.ProductID,
				"isDeleted": bson.M{"$ne": true},
				"stock":     bson.M{"$gte": item.Quantity},
			}, bson.M{
				"$inc": bson.M{"stock": -item.Quantity},
			})
			if err != nil {
				compensate()
				respondDomainError(c, route, err)
				return
			}
			if res.MatchedCount == 0 {
				// Concurrent depletion since pricing; surface it instead of
				// oversubscribing.
				compensate()
				respondDomainError(c, route, insufficientStockError{
					ProductID: item.ProductID,
					Requested: item.Quantity,
				})
				return
			}
			decremented = append(decremented, decrementedStock{ProductID: item.ProductID, Quantity: item.Quantity})
		}

		order := models.Order{
			UserID:           userID,
			OrderID:          orderID,
			Address:          addressSnapshot(address),
			Items:            pricing.Items,
			Subtotal:         pricing.Subtotal,
			CouponDiscount:   pricing.CouponDiscount,
			CouponDetails:    pricing.CouponDetails,
			TotalAmount:      pricing.Total,
			WalletAmountUsed: walletAmountUsed,
			PaymentMethod:    req.PaymentMethod,
			PaymentStatus:    paymentStatus,
			Status:           StatusProcessing,
			CreatedAt:        time.Now(),
		}

		res, err := db.Collection("orders").InsertOne(ctx, order)
		if err != nil {
			compensate()
			respondDomainError(c, route, err)
			return
		}
		if id, ok := res.InsertedID.(primitive.ObjectID); ok {
			order.ID = id
		}

		if _, err := db.Collection("carts").UpdateOne(ctx, bson.M{"userId": userID}, bson.M{
			"$set": bson.M{"items": []models.CartItem{}, "updatedAt": time.Now()},
		}); err != nil {
			// The order is committed; an uncleared cart is recoverable.
			log.Printf("[%s] cart clear failed for user %s: %v", route, userID.Hex(), err)
		}

		log.Println("[ORDER] [INFO] order placed:", orderID, "user:", userID.Hex())

		response := gin.H{
			"message": "order placed successfully",
			"orderId": order.ID.Hex(),
			"orderDetails": gin.H{
				"orderId":         orderID,
				"items":           order.Items,
				"subtotal":        order.Subtotal,
				"couponDiscount":  order.CouponDiscount,
				"couponDetails":   order.CouponDetails,
				"totalAmount":     order.TotalAmount,
				"paymentMethod":   order.PaymentMethod,
				"paymentStatus":   order.PaymentStatus,
				"shippingAddress": order.Address,
			},
		}
		if walletBalance >= 0 {
			response["updatedWalletBalance"] = walletBalance
		}

		c.JSON(http.StatusCreated, response)
	}
}

// verifyOnlinePayment runs the gateway signature check under its own bounded
// timeout. Every failure mode, missing references included, surfaces as a
// paymentVerificationError so checkout mutates nothing on a bad payment.
func verifyOnlinePayment(ctx context.Context, verifier payment.Verifier, timeout time.Duration, orderRef, paymentRef, signature string) error {
	if strings.TrimSpace(orderRef) == "" || strings.TrimSpace(paymentRef) == "" || strings.TrimSpace(signature) == "" {
		return paymentVerificationError{Reason: "missing gateway references"}
	}

	verifyCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ok, err := verifier.Verify(verifyCtx, orderRef, paymentRef, signature)
	if err != nil {
		return paymentVerificationError{Reason: err.Error()}
	}
	if !ok {
		return paymentVerificationError{Reason: "signature mismatch"}
	}
	return nil
}

func findUserAddress(ctx context.Context, db *mongo.Database, userID primitive.ObjectID, addressID string) (models.Address, error) {
	var user models.User
	if err := db.Collection("users").FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
		return models.Address{}, err
	}

	for _, address := range user.Addresses {
		if address.ID == addressID {
			return address, nil
		}
	}
	return models.Address{}, addressNotFoundError{AddressID: addressID}
}

// addressSnapshot copies the live address entry into the shape embedded in
// the order.
func addressSnapshot(address models.Address) models.OrderAddress {
	return models.OrderAddress{
		FullName:     address.FullName,
		AddressLine1: address.AddressLine1,
		AddressLine2: address.AddressLine2,
		City:         address.City,
		State:        address.State,
		PostalCode:   address.PostalCode,
		Country:      address.Country,
		PhoneNumber:  address.PhoneNumber,
	}
}
