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

// GetProducts lists active catalog products. Pagination is optional: without
// page and limit the full catalog comes back. The cached discountedPrice is
// what listings show; checkout ignores it and prices from live offers.
func GetProducts(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/products"
		defer handlePanic(c, route)

		if err := ensureDBConnection(c.Request.Context(), db); err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "database unavailable")
			return
		}

		filter := bson.M{
			"isActive":  bson.M{"$ne": false},
			"isDeleted": bson.M{"$ne": true},
		}

		if category := strings.TrimSpace(c.Query("category")); category != "" {
			filter["category"] = bson.M{"$in": []string{category}}
		}

		if search := strings.TrimSpace(c.Query("search")); search != "" {
			filter["name"] = bson.M{"$regex": search, "$options": "i"}
		}

		findOptions := options.Find().
			SetSort(bson.D{{Key: "createdAt", Value: -1}})

		pageStr := c.Query("page")
		limitStr := c.Query("limit")

		if pageStr != "" && limitStr != "" {
			page, limit, err := parsePaginationParams(pageStr, limitStr)
			if err != nil {
				respondWithError(c, http.StatusBadRequest, route, "invalid pagination params")
				return
			}

			findOptions.
				SetSkip((page - 1) * limit).
				SetLimit(limit)
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		cursor, err := db.Collection("products").Find(ctx, filter, findOptions)
		if err != nil {
			respondDomainError(c, route, err)
			return
		}
		defer cursor.Close(ctx)

		products, err := decodeProducts(ctx, cursor)
		if err != nil {
			respondDomainError(c, route, err)
			return
		}

		log.Printf("[%s] returning %d products", route, len(products))
		c.JSON(http.StatusOK, products)
	}
}

func GetProduct(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/products/:id"
		defer handlePanic(c, route)

		productID, err := primitive.ObjectIDFromHex(strings.TrimSpace(c.Param("id")))
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

		normalizeProduct(&product)
		c.JSON(http.StatusOK, product)
	}
}

func decodeProducts(ctx context.Context, cursor *mongo.Cursor) ([]models.Product, error) {
	products := make([]models.Product, 0)
	if err := cursor.All(ctx, &products); err != nil {
		return nil, err
	}
	for i := range products {
		normalizeProduct(&products[i])
	}
	return products, nil
}

// normalizeProduct fills derived fields the document does not store.
func normalizeProduct(p *models.Product) {
	p.InStock = p.Stock > 0
	if p.DiscountedPrice <= 0 || p.DiscountedPrice > p.Price {
		p.DiscountedPrice = p.Price
	}
}
