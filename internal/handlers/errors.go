package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Domain failure conditions are small typed errors so handlers can map them
// to machine-readable responses with errors.As. Anything not in this set is
// an internal error: it gets logged with full context and surfaced as a
// generic message.

type emptyCartError struct{}

func (e emptyCartError) Error() string { return "cart is empty" }

type productUnavailableError struct {
	ProductID primitive.ObjectID
}

func (e productUnavailableError) Error() string { return "product unavailable" }

type insufficientStockError struct {
	ProductID primitive.ObjectID
	Available int
	Requested int
}

func (e insufficientStockError) Error() string { return "insufficient stock" }

type addressNotFoundError struct {
	AddressID string
}

func (e addressNotFoundError) Error() string { return "address not found" }

type orderItemNotFoundError struct {
	ItemID primitive.ObjectID
}

func (e orderItemNotFoundError) Error() string { return "order item not found" }

type couponNotFoundError struct {
	Code string
}

func (e couponNotFoundError) Error() string { return "coupon not found" }

type couponExpiredError struct {
	Code string
}

func (e couponExpiredError) Error() string { return "coupon expired" }

type couponMinimumError struct {
	Code      string
	MinAmount float64
	Subtotal  float64
}

func (e couponMinimumError) Error() string { return "coupon minimum not met" }

type insufficientWalletError struct {
	Balance  float64
	Required float64
}

func (e insufficientWalletError) Error() string { return "insufficient wallet balance" }

type walletNotFoundError struct{}

func (e walletNotFoundError) Error() string { return "wallet not found" }

type paymentVerificationError struct {
	Reason string
}

func (e paymentVerificationError) Error() string {
	return fmt.Sprintf("payment verification failed: %s", e.Reason)
}

type validationError struct {
	Message string
}

func (e validationError) Error() string { return e.Message }

type invalidTransitionError struct {
	From string
	To   string
}

func (e invalidTransitionError) Error() string {
	return fmt.Sprintf("invalid status transition %s -> %s", e.From, e.To)
}

// respondDomainError writes the JSON error response for a known domain
// failure, or a generic 500 for anything else.
func respondDomainError(c *gin.Context, route string, err error) {
	var (
		noItem       orderItemNotFoundError
		emptyCart    emptyCartError
		unavailable  productUnavailableError
		noStock      insufficientStockError
		noAddress    addressNotFoundError
		noCoupon     couponNotFoundError
		expired      couponExpiredError
		belowMinimum couponMinimumError
		noFunds      insufficientWalletError
		noWallet     walletNotFoundError
		badPayment   paymentVerificationError
		badMove      invalidTransitionError
		badInput     validationError
	)

	switch {
	case errors.As(err, &badInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": "VALIDATION_FAILED", "message": badInput.Message})
	case errors.As(err, &noItem):
		c.JSON(http.StatusNotFound, gin.H{"error": "ORDER_ITEM_NOT_FOUND", "message": "order item not found"})
	case errors.As(err, &emptyCart):
		c.JSON(http.StatusBadRequest, gin.H{"error": "EMPTY_CART", "message": "cart is empty"})
	case errors.As(err, &unavailable):
		c.JSON(http.StatusNotFound, gin.H{
			"error":     "PRODUCT_UNAVAILABLE",
			"message":   "product is no longer available",
			"productId": unavailable.ProductID.Hex(),
		})
	case errors.As(err, &noStock):
		c.JSON(http.StatusConflict, gin.H{
			"error":     "INSUFFICIENT_STOCK",
			"message":   "not enough stock for product",
			"productId": noStock.ProductID.Hex(),
			"available": noStock.Available,
			"requested": noStock.Requested,
		})
	case errors.As(err, &noAddress):
		c.JSON(http.StatusNotFound, gin.H{"error": "ADDRESS_NOT_FOUND", "message": "shipping address not found"})
	case errors.As(err, &noCoupon):
		c.JSON(http.StatusNotFound, gin.H{"error": "COUPON_NOT_FOUND", "message": "invalid or inactive coupon code"})
	case errors.As(err, &expired):
		c.JSON(http.StatusBadRequest, gin.H{"error": "COUPON_EXPIRED", "message": "this coupon has expired"})
	case errors.As(err, &belowMinimum):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "COUPON_MINIMUM_NOT_MET",
			"message":   fmt.Sprintf("minimum purchase amount of %.2f required to use this coupon", belowMinimum.MinAmount),
			"minAmount": belowMinimum.MinAmount,
		})
	case errors.As(err, &noFunds):
		c.JSON(http.StatusConflict, gin.H{
			"error":    "INSUFFICIENT_WALLET_BALANCE",
			"message":  "insufficient wallet balance",
			"balance":  noFunds.Balance,
			"required": noFunds.Required,
		})
	case errors.As(err, &noWallet):
		c.JSON(http.StatusNotFound, gin.H{"error": "WALLET_NOT_FOUND", "message": "wallet not found"})
	case errors.As(err, &badPayment):
		log.Printf("[%s] payment verification failed: %s", route, badPayment.Reason)
		c.JSON(http.StatusBadRequest, gin.H{"error": "PAYMENT_VERIFICATION_FAILED", "message": "payment could not be verified"})
	case errors.As(err, &badMove):
		c.JSON(http.StatusConflict, gin.H{
			"error":   "INVALID_STATUS_TRANSITION",
			"message": "order item cannot move to the requested status",
			"from":    badMove.From,
			"to":      badMove.To,
		})
	default:
		log.Printf("[%s] internal error: %v", route, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "INTERNAL", "message": "something went wrong, please try again later"})
	}
}
