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

	"storefront/internal/models"
)

func GetCategories(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/categories"
		defer handlePanic(c, route)

		if err := ensureDBConnection(c.Request.Context(), db); err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "database unavailable")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		cursor, err := db.Collection("categories").Find(ctx, bson.M{"isActive": true})
		if err != nil {
			respondDomainError(c, route, err)
			return
		}
		defer cursor.Close(ctx)

		categories := make([]models.Category, 0)
		if err := cursor.All(ctx, &categories); err != nil {
			respondDomainError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, categories)
	}
}

type categoryRequest struct {
	Name string `json:"name" binding:"required"`
}

func AdminCreateCategory(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /admin/api/categories"
		defer handlePanic(c, route)

		var req categoryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		name := strings.TrimSpace(req.Name)
		if name == "" {
			respondDomainError(c, route, validationError{Message: "name is required"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		count, err := db.Collection("categories").CountDocuments(ctx, bson.M{
			"name": bson.M{"$regex": "^" + name + "$", "$options": "i"},
		})
		if err != nil {
			respondDomainError(c, route, err)
			return
		}
		if count > 0 {
			respondWithError(c, http.StatusConflict, route, "category already exists")
			return
		}

		category := models.Category{
			Name:      name,
			IsActive:  true,
			CreatedAt: time.Now(),
		}

		res, err := db.Collection("categories").InsertOne(ctx, category)
		if err != nil {
			respondDomainError(c, route, err)
			return
		}
		category.ID = res.InsertedID.(primitive.ObjectID)

		log.Println("[CATEGORY] [INFO] category created:", name)
		c.JSON(http.StatusCreated, gin.H{"category": category})
	}
}

// AdminToggleCategoryStatus hides or restores a category in listings. Offers
// referencing the name stay in place; pricing only follows offer status.
func AdminToggleCategoryStatus(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PATCH /admin/api/categories/:id/status"
		defer handlePanic(c, route)

		categoryID, err := primitive.ObjectIDFromHex(strings.TrimSpace(c.Param("id")))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid category id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var category models.Category
		if err := db.Collection("categories").FindOne(ctx, bson.M{"_id": categoryID}).Decode(&category); err != nil {
			if err == mongo.ErrNoDocuments {
				respondWithError(c, http.StatusNotFound, route, "category not found")
				return
			}
			respondDomainError(c, route, err)
			return
		}

		if _, err := db.Collection("categories").UpdateByID(ctx, categoryID, bson.M{
			"$set": bson.M{"isActive": !category.IsActive},
		}); err != nil {
			respondDomainError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"isActive": !category.IsActive})
	}
}
