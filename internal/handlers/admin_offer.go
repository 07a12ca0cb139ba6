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

type offerRequest struct {
	OfferName  string   `json:"offerName" binding:"required"`
	Discount   float64  `json:"discount" binding:"required"`
	ExpireDate string   `json:"expireDate" binding:"required"`
	OfferType  string   `json:"offerType" binding:"required"`
	References []string `json:"references" binding:"required"`
}

func (r offerRequest) parse() (models.Offer, error) {
	if r.Discount < 0 || r.Discount > 100 {
		return models.Offer{}, validationError{Message: "discount must be between 0 and 100"}
	}

	expire, err := time.Parse(time.RFC3339, r.ExpireDate)
	if err != nil {
		return models.Offer{}, validationError{Message: "expireDate must be RFC3339"}
	}
	if expire.Before(time.Now()) {
		return models.Offer{}, validationError{Message: "expireDate must be in the future"}
	}

	offer := models.Offer{
		Name:       strings.TrimSpace(r.OfferName),
		Discount:   r.Discount,
		OfferType:  r.OfferType,
		Status:     models.OfferStatusActive,
		ExpireDate: expire,
	}

	switch r.OfferType {
	case models.OfferTypeProduct:
		for _, ref := range r.References {
			id, err := primitive.ObjectIDFromHex(strings.TrimSpace(ref))
			if err != nil {
				return models.Offer{}, validationError{Message: "invalid product reference"}
			}
			offer.ProductIDs = append(offer.ProductIDs, id)
		}
	case models.OfferTypeCategory:
		for _, ref := range r.References {
			if trimmed := strings.TrimSpace(ref); trimmed != "" {
				offer.Categories = append(offer.Categories, trimmed)
			}
		}
	default:
		return models.Offer{}, validationError{Message: "offerType must be product or category"}
	}

	if len(offer.ProductIDs) == 0 && len(offer.Categories) == 0 {
		return models.Offer{}, validationError{Message: "no products or categories selected"}
	}

	return offer, nil
}

// syncOfferProducts attaches or detaches the offer reference on its target
// products and recaches their discounted prices from live offer state.
func syncOfferProducts(ctx context.Context, db *mongo.Database, offer models.Offer, attach bool) error {
	productIDs, err := offerProductIDs(ctx, db, offer)
	if err != nil {
		return err
	}
	if len(productIDs) == 0 {
		return nil
	}

	op := bson.M{"$pull": bson.M{"offers": offer.ID}}
	if attach {
		op = bson.M{"$addToSet": bson.M{"offers": offer.ID}}
	}

	if _, err := db.Collection("products").UpdateMany(ctx, bson.M{"_id": bson.M{"$in": productIDs}}, op); err != nil {
		return err
	}

	return recacheDiscountedPrices(ctx, db, productIDs)
}

func AdminGetOffers(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/api/offers"
		defer handlePanic(c, route)

		page, limit, err := parsePaginationParams(c.DefaultQuery("page", "1"), c.DefaultQuery("limit", "10"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid pagination params")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		total, err := db.Collection("offers").CountDocuments(ctx, bson.M{})
		if err != nil {
			respondDomainError(c, route, err)
			return
		}

		findOptions := options.Find().
			SetSort(bson.D{{Key: "createdAt", Value: -1}}).
			SetSkip((page - 1) * limit).
			SetLimit(limit)

		cursor, err := db.Collection("offers").Find(ctx, bson.M{}, findOptions)
		if err != nil {
			respondDomainError(c, route, err)
			return
		}
		defer cursor.Close(ctx)

		offers := make([]models.Offer, 0)
		if err := cursor.All(ctx, &offers); err != nil {
			respondDomainError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"offers": offers,
			"pagination": gin.H{
				"page":  page,
				"limit": limit,
				"total": total,
			},
		})
	}
}

func AdminCreateOffer(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /admin/api/offers"
		defer handlePanic(c, route)

		var req offerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		offer, err := req.parse()
		if err != nil {
			respondDomainError(c, route, err)
			return
		}
		offer.CreatedAt = time.Now()

		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		res, err := db.Collection("offers").InsertOne(ctx, offer)
		if err != nil {
			respondDomainError(c, route, err)
			return
		}
		offer.ID = res.InsertedID.(primitive.ObjectID)

		if err := syncOfferProducts(ctx, db, offer, true); err != nil {
			respondDomainError(c, route, err)
			return
		}

		log.Println("[OFFER] [INFO] offer created:", offer.ID.Hex())
		c.JSON(http.StatusCreated, gin.H{"offer": offer})
	}
}

func AdminUpdateOffer(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /admin/api/offers/:id"
		defer handlePanic(c, route)

		offerID, err := primitive.ObjectIDFromHex(strings.TrimSpace(c.Param("id")))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid offer id")
			return
		}

		var req offerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		updated, err := req.parse()
		if err != nil {
			respondDomainError(c, route, err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		var existing models.Offer
		if err := db.Collection("offers").FindOne(ctx, bson.M{"_id": offerID}).Decode(&existing); err != nil {
			if err == mongo.ErrNoDocuments {
				respondWithError(c, http.StatusNotFound, route, "offer not found")
				return
			}
			respondDomainError(c, route, err)
			return
		}

		// Detach from the old target set first; the new one may differ.
		if err := syncOfferProducts(ctx, db, existing, false); err != nil {
			respondDomainError(c, route, err)
			return
		}

		updated.ID = offerID
		updated.Status = existing.Status
		updated.CreatedAt = existing.CreatedAt

		if _, err := db.Collection("offers").UpdateByID(ctx, offerID, bson.M{"$set": bson.M{
			"offerName":  updated.Name,
			"discount":   updated.Discount,
			"offerType":  updated.OfferType,
			"productIds": updated.ProductIDs,
			"categories": updated.Categories,
			"expireDate": updated.ExpireDate,
		}}); err != nil {
			respondDomainError(c, route, err)
			return
		}

		if err := syncOfferProducts(ctx, db, updated, true); err != nil {
			respondDomainError(c, route, err)
			return
		}

		log.Println("[OFFER] [INFO] offer updated:", offerID.Hex())
		c.JSON(http.StatusOK, gin.H{"offer": updated})
	}
}

type toggleOfferRequest struct {
	NewStatus string `json:"newStatus" binding:"required"`
}

func AdminToggleOfferStatus(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PATCH /admin/api/offers/:id/status"
		defer handlePanic(c, route)

		offerID, err := primitive.ObjectIDFromHex(strings.TrimSpace(c.Param("id")))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid offer id")
			return
		}

		var req toggleOfferRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "newStatus is required")
			return
		}
		if req.NewStatus != models.OfferStatusActive && req.NewStatus != models.OfferStatusInactive {
			respondWithError(c, http.StatusBadRequest, route, "invalid status")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		var offer models.Offer
		if err := db.Collection("offers").FindOne(ctx, bson.M{"_id": offerID}).Decode(&offer); err != nil {
			if err == mongo.ErrNoDocuments {
				respondWithError(c, http.StatusNotFound, route, "offer not found")
				return
			}
			respondDomainError(c, route, err)
			return
		}

		if _, err := db.Collection("offers").UpdateByID(ctx, offerID, bson.M{
			"$set": bson.M{"status": req.NewStatus},
		}); err != nil {
			respondDomainError(c, route, err)
			return
		}

		// The offer reference stays on the products; only the cached price
		// changes, recomputed from what is active now.
		productIDs, err := offerProductIDs(ctx, db, offer)
		if err != nil {
			respondDomainError(c, route, err)
			return
		}
		if err := recacheDiscountedPrices(ctx, db, productIDs); err != nil {
			respondDomainError(c, route, err)
			return
		}

		log.Println("[OFFER] [INFO] offer status:", offerID.Hex(), "->", req.NewStatus)
		c.JSON(http.StatusOK, gin.H{"message": "offer status updated to " + req.NewStatus})
	}
}

func AdminDeleteOffer(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /admin/api/offers/:id"
		defer handlePanic(c, route)

		offerID, err := primitive.ObjectIDFromHex(strings.TrimSpace(c.Param("id")))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid offer id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		var offer models.Offer
		if err := db.Collection("offers").FindOneAndDelete(ctx, bson.M{"_id": offerID}).Decode(&offer); err != nil {
			if err == mongo.ErrNoDocuments {
				respondWithError(c, http.StatusNotFound, route, "offer not found")
				return
			}
			respondDomainError(c, route, err)
			return
		}

		if err := syncOfferProducts(ctx, db, offer, false); err != nil {
			respondDomainError(c, route, err)
			return
		}

		log.Println("[OFFER] [INFO] offer deleted:", offerID.Hex())
		c.JSON(http.StatusOK, gin.H{"message": "offer deleted"})
	}
}
