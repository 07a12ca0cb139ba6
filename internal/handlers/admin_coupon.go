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

type couponRequest struct {
	Code        string  `json:"code" binding:"required"`
	Description string  `json:"description"`
	Discount    float64 `json:"discount" binding:"required"`
	MinAmount   float64 `json:"minAmount"`
	MaxDiscount float64 `json:"maxDiscount" binding:"required"`
	ExpiryDate  string  `json:"expiryDate" binding:"required"`
}

func (r couponRequest) parse() (models.Coupon, error) {
	code := strings.ToUpper(strings.TrimSpace(r.Code))
	if code == "" {
		return models.Coupon{}, validationError{Message: "code is required"}
	}
	if r.Discount <= 0 || r.Discount > 100 {
		return models.Coupon{}, validationError{Message: "discount must be between 0 and 100"}
	}
	if r.MinAmount < 0 || r.MaxDiscount <= 0 {
		return models.Coupon{}, validationError{Message: "minAmount and maxDiscount must be positive"}
	}

	expiry, err := time.Parse(time.RFC3339, r.ExpiryDate)
	if err != nil {
		return models.Coupon{}, validationError{Message: "expiryDate must be RFC3339"}
	}

	return models.Coupon{
		Code:        code,
		Description: strings.TrimSpace(r.Description),
		Discount:    r.Discount,
		MinAmount:   r.MinAmount,
		MaxDiscount: r.MaxDiscount,
		ExpiryDate:  expiry,
		Status:      models.CouponStatusActive,
	}, nil
}

func AdminGetCoupons(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/api/coupons"
		defer handlePanic(c, route)

		page, limit, err := parsePaginationParams(c.DefaultQuery("page", "1"), c.DefaultQuery("limit", "10"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid pagination params")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		filter := bson.M{}
		if search := strings.TrimSpace(c.Query("search")); search != "" {
			filter["code"] = bson.M{"$regex": search, "$options": "i"}
		}

		total, err := db.Collection("coupons").CountDocuments(ctx, filter)
		if err != nil {
			respondDomainError(c, route, err)
			return
		}

		findOptions := options.Find().
			SetSort(bson.D{{Key: "createdAt", Value: -1}}).
			SetSkip((page - 1) * limit).
			SetLimit(limit)

		cursor, err := db.Collection("coupons").Find(ctx, filter, findOptions)
		if err != nil {
			respondDomainError(c, route, err)
			return
		}
		defer cursor.Close(ctx)

		coupons := make([]models.Coupon, 0)
		if err := cursor.All(ctx, &coupons); err != nil {
			respondDomainError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"coupons": coupons,
			"pagination": gin.H{
				"page":  page,
				"limit": limit,
				"total": total,
			},
		})
	}
}

func AdminCreateCoupon(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /admin/api/coupons"
		defer handlePanic(c, route)

		var req couponRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		coupon, err := req.parse()
		if err != nil {
			respondDomainError(c, route, err)
			return
		}
		coupon.CreatedAt = time.Now()

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("coupons").InsertOne(ctx, coupon)
		if err != nil {
			if mongo.IsDuplicateKeyError(err) {
				respondWithError(c, http.StatusConflict, route, "coupon code already exists")
				return
			}
			respondDomainError(c, route, err)
			return
		}
		coupon.ID = res.InsertedID.(primitive.ObjectID)

		log.Println("[COUPON] [INFO] coupon created:", coupon.Code)
		c.JSON(http.StatusCreated, gin.H{"coupon": coupon})
	}
}

func AdminUpdateCoupon(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /admin/api/coupons/:id"
		defer handlePanic(c, route)

		couponID, err := primitive.ObjectIDFromHex(strings.TrimSpace(c.Param("id")))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid coupon id")
			return
		}

		var req couponRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		coupon, err := req.parse()
		if err != nil {
			respondDomainError(c, route, err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("coupons").UpdateByID(ctx, couponID, bson.M{"$set": bson.M{
			"code":        coupon.Code,
			"description": coupon.Description,
			"discount":    coupon.Discount,
			"minAmount":   coupon.MinAmount,
			"maxDiscount": coupon.MaxDiscount,
			"expiryDate":  coupon.ExpiryDate,
		}})
		if err != nil {
			if mongo.IsDuplicateKeyError(err) {
				respondWithError(c, http.StatusConflict, route, "coupon code already exists")
				return
			}
			respondDomainError(c, route, err)
			return
		}
		if res.MatchedCount == 0 {
			respondWithError(c, http.StatusNotFound, route, "coupon not found")
			return
		}

		log.Println("[COUPON] [INFO] coupon updated:", couponID.Hex())
		c.JSON(http.StatusOK, gin.H{"message": "coupon updated"})
	}
}

func AdminToggleCouponStatus(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PATCH /admin/api/coupons/:id/status"
		defer handlePanic(c, route)

		couponID, err := primitive.ObjectIDFromHex(strings.TrimSpace(c.Param("id")))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid coupon id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var coupon models.Coupon
		if err := db.Collection("coupons").FindOne(ctx, bson.M{"_id": couponID}).Decode(&coupon); err != nil {
			if err == mongo.ErrNoDocuments {
				respondWithError(c, http.StatusNotFound, route, "coupon not found")
				return
			}
			respondDomainError(c, route, err)
			return
		}

		newStatus := models.CouponStatusActive
		if coupon.Status == models.CouponStatusActive {
			newStatus = models.CouponStatusInactive
		}

		if _, err := db.Collection("coupons").UpdateByID(ctx, couponID, bson.M{
			"$set": bson.M{"status": newStatus},
		}); err != nil {
			respondDomainError(c, route, err)
			return
		}

		log.Println("[COUPON] [INFO] coupon status:", coupon.Code, "->", newStatus)
		c.JSON(http.StatusOK, gin.H{"status": newStatus})
	}
}

func AdminDeleteCoupon(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /admin/api/coupons/:id"
		defer handlePanic(c, route)

		couponID, err := primitive.ObjectIDFromHex(strings.TrimSpace(c.Param("id")))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid coupon id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("coupons").DeleteOne(ctx, bson.M{"_id": couponID})
		if err != nil {
			respondDomainError(c, route, err)
			return
		}
		if res.DeletedCount == 0 {
			respondWithError(c, http.StatusNotFound, route, "coupon not found")
			return
		}

		log.Println("[COUPON] [INFO] coupon deleted:", couponID.Hex())
		c.JSON(http.StatusOK, gin.H{"message": "coupon deleted"})
	}
}
