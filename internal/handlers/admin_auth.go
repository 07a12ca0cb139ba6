package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"storefront/internal/models"
)

// AdminLogin authenticates against the users collection but only accepts
// accounts carrying the admin role.
func AdminLogin(db *mongo.Database, jwtSecret string, accessTTL, refreshTTL time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /admin/api/auth/login"
		defer handlePanic(c, route)

		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		email := strings.ToLower(strings.TrimSpace(req.Email))

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var admin models.User
		if err := db.Collection("users").FindOne(ctx, bson.M{"email": email, "role": "admin"}).Decode(&admin); err != nil {
			log.Println("[AUTH] [ERROR] admin login invalid credentials")
			respondWithError(c, http.StatusUnauthorized, route, "invalid credentials")
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.Password)); err != nil {
			log.Println("[AUTH] [ERROR] admin login invalid credentials")
			respondWithError(c, http.StatusUnauthorized, route, "invalid credentials")
			return
		}

		tokens, err := issueTokens(ctx, db, admin.ID, admin.Email, admin.Role, jwtSecret, accessTTL, refreshTTL)
		if err != nil {
			respondDomainError(c, route, err)
			return
		}

		log.Println("[AUTH] [INFO] admin login succeeded:", email)
		c.JSON(http.StatusOK, gin.H{
			"accessToken":  tokens.AccessToken,
			"refreshToken": tokens.RefreshToken,
			"expiresIn":    tokens.ExpiresIn,
			"user": LoginResponseUser{
				ID:    admin.ID.Hex(),
				Name:  admin.Name,
				Email: admin.Email,
			},
		})
	}
}
