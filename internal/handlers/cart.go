package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"storefront/internal/models"
)

type cartItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required"`
}

// cartItemFilter matches the user's cart only when it holds the given line.
// Line updates and removals filter through it so a missing product reads as
// MatchedCount zero rather than a no-op write that still touches updatedAt.
func cartItemFilter(userID, productID primitive.ObjectID) bson.M {
	return bson.M{"userId": userID, "items.productId": productID}
}

// cartView is a priced rendering of the stored cart. Prices come from live
// offer state at read time, never from the cached discountedPrice.
type cartView struct {
	Items    []models.OrderItem `json:"items"`
	Subtotal float64            `json:"subtotal"`
	Total    float64            `json:"total"`
}

func GetCart(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/cart"
		defer handlePanic(c, route)

		userID := c.MustGet("userId").(primitive.ObjectID)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		cart, err := findCart(ctx, db, userID)
		if err != nil {
			respondDomainError(c, route, err)
			return
		}

		if len(cart.Items) == 0 {
			c.JSON(http.StatusOK, cartView{Items: []models.OrderItem{}})
			return
		}

		pricing, err := priceCart(ctx, db, cart, "", time.Now())
		if err != nil {
			respondDomainError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, cartView{
			Items:    pricing.Items,
			Subtotal: pricing.Subtotal,
			Total:    pricing.Total,
		})
	}
}

func AddCartItem(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/cart/items"
		defer handlePanic(c, route)

		userID := c.MustGet("userId").(primitive.ObjectID)

		var req cartItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}
		if req.Quantity < 1 {
			respondDomainError(c, route, validationError{Message: "quantity must be at least 1"})
			return
		}

		productID, err := primitive.ObjectIDFromHex(req.ProductID)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid product id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var product models.Product
		if err := db.Collection("products").FindOne(ctx, bson.M{
			"_id":       productID,
			"isDeleted": bson.M{"$ne": true},
		}).Decode(&product); err != nil {
			if err == mongo.ErrNoDocuments {
				respondDomainError(c, route, productUnavailableError{ProductID: productID})
				return
			}
			respondDomainError(c, route, err)
			return
		}

		cart, err := findCart(ctx, db, userID)
		if err != nil {
			respondDomainError(c, route, err)
			return
		}

		quantity := req.Quantity
		for _, item := range cart.Items {
			if item.ProductID == productID {
				quantity += item.Quantity
			}
		}
		if quantity > product.Stock {
			respondDomainError(c, route, insufficientStockError{
				ProductID: productID,
				Available: product.Stock,
				Requested: quantity,
			})
			return
		}

		// Bump the line if it exists, otherwise push a new one.
		res, err := db.Collection("carts").UpdateOne(ctx,
			cartItemFilter(userID, productID),
			bson.M{
				"$inc": bson.M{"items.$.quantity": req.Quantity},
				"$set": bson.M{"updatedAt": time.Now()},
			})
		if err != nil {
			respondDomainError(c, route, err)
			return
		}
		if res.MatchedCount == 0 {
			if _, err := db.Collection("carts").UpdateOne(ctx,
				bson.M{"userId": userID},
				bson.M{
					"$push": bson.M{"items": models.CartItem{ProductID: productID, Quantity: req.Quantity}},
					"$set":  bson.M{"updatedAt": time.Now()},
				},
				options.Update().SetUpsert(true)); err != nil {
				respondDomainError(c, route, err)
				return
			}
		}

		c.JSON(http.StatusOK, gin.H{"message": "item added to cart"})
	}
}

func UpdateCartItem(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/cart/items/:productId"
		defer handlePanic(c, route)

		userID := c.MustGet("userId").(primitive.ObjectID)

		productID, err := primitive.ObjectIDFromHex(c.Param("productId"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid product id")
			return
		}

		var req struct {
			Quantity int `json:"quantity" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}
		if req.Quantity < 1 {
			respondDomainError(c, route, validationError{Message: "quantity must be at least 1"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var product models.Product
		if err := db.Collection("products").FindOne(ctx, bson.M{
			"_id":       productID,
			"isDeleted": bson.M{"$ne": true},
		}).Decode(&product); err != nil {
			if err == mongo.ErrNoDocuments {
				respondDomainError(c, route, productUnavailableError{ProductID: productID})
				return
			}
			respondDomainError(c, route, err)
			return
		}
		if req.Quantity > product.Stock {
			respondDomainError(c, route, insufficientStockError{
				ProductID: productID,
				Available: product.Stock,
				Requested: req.Quantity,
			})
			return
		}

		res, err := db.Collection("carts").UpdateOne(ctx,
			cartItemFilter(userID, productID),
			bson.M{
				"$set": bson.M{
					"items.$.quantity": req.Quantity,
					"updatedAt":        time.Now(),
				},
			})
		if err != nil {
			respondDomainError(c, route, err)
			return
		}
		if res.MatchedCount == 0 {
			respondWithError(c, http.StatusNotFound, route, "item not in cart")
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "cart updated"})
	}
}

func RemoveCartItem(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /api/cart/items/:productId"
		defer handlePanic(c, route)

		userID := c.MustGet("userId").(primitive.ObjectID)

		productID, err := primitive.ObjectIDFromHex(c.Param("productId"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid product id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("carts").UpdateOne(ctx,
			cartItemFilter(userID, productID),
			bson.M{
				"$pull": bson.M{"items": bson.M{"productId": productID}},
				"$set":  bson.M{"updatedAt": time.Now()},
			})
		if err != nil {
			respondDomainError(c, route, err)
			return
		}
		if res.MatchedCount == 0 {
			respondWithError(c, http.StatusNotFound, route, "item not in cart")
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "item removed from cart"})
	}
}
