package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"storefront/internal/models"
)

type addressRequest struct {
	FullName     string `json:"fullName" binding:"required"`
	AddressLine1 string `json:"addressLine1" binding:"required"`
	AddressLine2 string `json:"addressLine2"`
	City         string `json:"city" binding:"required"`
	State        string `json:"state" binding:"required"`
	PostalCode   string `json:"postalCode" binding:"required"`
	Country      string `json:"country" binding:"required"`
	PhoneNumber  string `json:"phoneNumber" binding:"required"`
	IsDefault    bool   `json:"isDefault"`
}

func (r addressRequest) toAddress(id string) models.Address {
	return models.Address{
		ID:           id,
		FullName:     strings.TrimSpace(r.FullName),
		AddressLine1: strings.TrimSpace(r.AddressLine1),
		AddressLine2: strings.TrimSpace(r.AddressLine2),
		City:         strings.TrimSpace(r.City),
		State:        strings.TrimSpace(r.State),
		PostalCode:   strings.TrimSpace(r.PostalCode),
		Country:      strings.TrimSpace(r.Country),
		PhoneNumber:  strings.TrimSpace(r.PhoneNumber),
		IsDefault:    r.IsDefault,
	}
}

func GetMe(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/users/me"
		defer handlePanic(c, route)

		userID := c.MustGet("userId").(primitive.ObjectID)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var user models.User
		if err := db.Collection("users").FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
			if err == mongo.ErrNoDocuments {
				respondWithError(c, http.StatusNotFound, route, "user not found")
				return
			}
			respondDomainError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"user": user})
	}
}

func AddAddress(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/users/me/addresses"
		defer handlePanic(c, route)

		userID := c.MustGet("userId").(primitive.ObjectID)

		var req addressRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		address := req.toAddress(uuid.NewString())

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		if address.IsDefault {
			if err := clearDefaultAddress(ctx, db, userID); err != nil {
				respondDomainError(c, route, err)
				return
			}
		}

		res, err := db.Collection("users").UpdateByID(ctx, userID, bson.M{
			"$push": bson.M{"addresses": address},
			"$set":  bson.M{"updatedAt": time.Now()},
		})
		if err != nil {
			respondDomainError(c, route, err)
			return
		}
		if res.MatchedCount == 0 {
			respondWithError(c, http.StatusNotFound, route, "user not found")
			return
		}

		c.JSON(http.StatusCreated, gin.H{"address": address})
	}
}

func UpdateAddress(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/users/me/addresses/:addressId"
		defer handlePanic(c, route)

		userID := c.MustGet("userId").(primitive.ObjectID)
		addressID := strings.TrimSpace(c.Param("addressId"))

		var req addressRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		address := req.toAddress(addressID)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		if address.IsDefault {
			if err := clearDefaultAddress(ctx, db, userID); err != nil {
				respondDomainError(c, route, err)
				return
			}
		}

		res, err := db.Collection("users").UpdateOne(ctx,
			bson.M{"_id": userID, "addresses.id": addressID},
			bson.M{"$set": bson.M{
				"addresses.$": address,
				"updatedAt":   time.Now(),
			}})
		if err != nil {
			respondDomainError(c, route, err)
			return
		}
		if res.MatchedCount == 0 {
			respondDomainError(c, route, addressNotFoundError{AddressID: addressID})
			return
		}

		c.JSON(http.StatusOK, gin.H{"address": address})
	}
}

func DeleteAddress(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /api/users/me/addresses/:addressId"
		defer handlePanic(c, route)

		userID := c.MustGet("userId").(primitive.ObjectID)
		addressID := strings.TrimSpace(c.Param("addressId"))

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("users").UpdateByID(ctx, userID, bson.M{
			"$pull": bson.M{"addresses": bson.M{"id": addressID}},
			"$set":  bson.M{"updatedAt": time.Now()},
		})
		if err != nil {
			respondDomainError(c, route, err)
			return
		}
		if res.ModifiedCount == 0 {
			respondDomainError(c, route, addressNotFoundError{AddressID: addressID})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "address deleted"})
	}
}

func clearDefaultAddress(ctx context.Context, db *mongo.Database, userID primitive.ObjectID) error {
	_, err := db.Collection("users").UpdateByID(ctx, userID, bson.M{
		"$set": bson.M{"addresses.$[].isDefault": false},
	})
	return err
}
