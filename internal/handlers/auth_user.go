package handlers

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"

	"storefront/internal/models"
)

// OTPNotifier delivers a one-time code to a registering user. The default
// implementation just logs it; a mail or SMS sender satisfies the same
// interface in production.
type OTPNotifier interface {
	SendOTP(email, code string) error
}

type LogOTPNotifier struct{}

func (LogOTPNotifier) SendOTP(email, code string) error {
	log.Printf("[AUTH] [INFO] OTP for %s: %s", email, code)
	return nil
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Phone    string `json:"phone"`
}

type VerifyOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
	OTP   string `json:"otp" binding:"required"`
}

type ResendOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

type LoginResponseUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Register parks the signup in pending_registrations until the OTP is
// verified. No user document exists before verification.
func Register(db *mongo.Database, notifier OTPNotifier, otpTTL time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/auth/register"
		defer handlePanic(c, route)

		var req RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		email := strings.ToLower(strings.TrimSpace(req.Email))

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		count, err := db.Collection("users").CountDocuments(ctx, bson.M{"email": email})
		if err != nil {
			respondDomainError(c, route, err)
			return
		}
		if count > 0 {
			log.Println("[AUTH] [ERROR] register email exists:", email)
			respondWithError(c, http.StatusConflict, route, "email already registered")
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			respondDomainError(c, route, err)
			return
		}

		code, err := generateOTP()
		if err != nil {
			respondDomainError(c, route, err)
			return
		}

		now := time.Now()
		pending := models.PendingRegistration{
			Email:        email,
			Name:         strings.TrimSpace(req.Name),
			Phone:        strings.TrimSpace(req.Phone),
			PasswordHash: string(hash),
			OTPHash:      hashToken(code),
			ExpiresAt:    now.Add(otpTTL),
			CreatedAt:    now,
		}

		// A repeated register call replaces the previous pending entry.
		if _, err := db.Collection("pending_registrations").ReplaceOne(ctx,
			bson.M{"email": email}, pending, options.Replace().SetUpsert(true)); err != nil {
			respondDomainError(c, route, err)
			return
		}

		if err := notifier.SendOTP(email, code); err != nil {
			log.Println("[AUTH] [ERROR] OTP delivery failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "could not send verification code")
			return
		}

		log.Println("[AUTH] [INFO] registration pending verification:", email)
		c.JSON(http.StatusOK, gin.H{"message": "verification code sent"})
	}
}

// VerifyOTP promotes a pending registration into a real user account.
func VerifyOTP(db *mongo.Database, jwtSecret string, accessTTL, refreshTTL time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/auth/verify-otp"
		defer handlePanic(c, route)

		var req VerifyOTPRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		email := strings.ToLower(strings.TrimSpace(req.Email))

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var pending models.PendingRegistration
		if err := db.Collection("pending_registrations").FindOne(ctx, bson.M{"email": email}).Decode(&pending); err != nil {
			if err == mongo.ErrNoDocuments {
				respondWithError(c, http.StatusBadRequest, route, "no pending registration for this email")
				return
			}
			respondDomainError(c, route, err)
			return
		}

		if time.Now().After(pending.ExpiresAt) {
			respondWithError(c, http.StatusBadRequest, route, "verification code expired")
			return
		}
		if hashToken(strings.TrimSpace(req.OTP)) != pending.OTPHash {
			log.Println("[AUTH] [ERROR] OTP mismatch for:", email)
			respondWithError(c, http.StatusBadRequest, route, "invalid verification code")
			return
		}

		now := time.Now()
		user := models.User{
			Email:        pending.Email,
			PasswordHash: pending.PasswordHash,
			Name:         pending.Name,
			Phone:        pending.Phone,
			Role:         "user",
			IsActive:     true,
			Addresses:    []models.Address{},
			CreatedAt:    now,
			UpdatedAt:    now,
		}

		res, err := db.Collection("users").InsertOne(ctx, user)
		if err != nil {
			if mongo.IsDuplicateKeyError(err) {
				respondWithError(c, http.StatusConflict, route, "email already registered")
				return
			}
			respondDomainError(c, route, err)
			return
		}
		user.ID = res.InsertedID.(primitive.ObjectID)

		_, _ = db.Collection("pending_registrations").DeleteOne(ctx, bson.M{"_id": pending.ID})

		tokens, err := issueTokens(ctx, db, user.ID, user.Email, user.Role, jwtSecret, accessTTL, refreshTTL)
		if err != nil {
			respondDomainError(c, route, err)
			return
		}

		log.Println("[AUTH] [INFO] user registered:", email)
		c.JSON(http.StatusCreated, gin.H{
			"accessToken":  tokens.AccessToken,
			"refreshToken": tokens.RefreshToken,
			"expiresIn":    tokens.ExpiresIn,
			"user": LoginResponseUser{
				ID:    user.ID.Hex(),
				Name:  user.Name,
				Email: user.Email,
			},
		})
	}
}

// ResendOTP issues a fresh code for an existing pending registration and
// extends its expiry.
func ResendOTP(db *mongo.Database, notifier OTPNotifier, otpTTL time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/auth/resend-otp"
		defer handlePanic(c, route)

		var req ResendOTPRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		email := strings.ToLower(strings.TrimSpace(req.Email))

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		code, err := generateOTP()
		if err != nil {
			respondDomainError(c, route, err)
			return
		}

		res, err := db.Collection("pending_registrations").UpdateOne(ctx,
			bson.M{"email": email},
			bson.M{"$set": bson.M{
				"otpHash":   hashToken(code),
				"expiresAt": time.Now().Add(otpTTL),
			}})
		if err != nil {
			respondDomainError(c, route, err)
			return
		}
		if res.MatchedCount == 0 {
			respondWithError(c, http.StatusBadRequest, route, "no pending registration for this email")
			return
		}

		if err := notifier.SendOTP(email, code); err != nil {
			log.Println("[AUTH] [ERROR] OTP delivery failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "could not send verification code")
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "verification code sent"})
	}
}

func Login(db *mongo.Database, jwtSecret string, accessTTL, refreshTTL time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/auth/login"
		defer handlePanic(c, route)

		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		email := strings.ToLower(strings.TrimSpace(req.Email))

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var user models.User
		if err := db.Collection("users").FindOne(ctx, bson.M{"email": email}).Decode(&user); err != nil {
			log.Println("[AUTH] [ERROR] login invalid credentials")
			respondWithError(c, http.StatusUnauthorized, route, "invalid credentials")
			return
		}

		if !user.IsActive {
			log.Println("[AUTH] [ERROR] user inactive:", email)
			respondWithError(c, http.StatusForbidden, route, "user is blocked")
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
			log.Println("[AUTH] [ERROR] login invalid credentials")
			respondWithError(c, http.StatusUnauthorized, route, "invalid credentials")
			return
		}

		tokens, err := issueTokens(ctx, db, user.ID, user.Email, user.Role, jwtSecret, accessTTL, refreshTTL)
		if err != nil {
			respondDomainError(c, route, err)
			return
		}

		log.Println("[AUTH] [INFO] login succeeded:", email)
		c.JSON(http.StatusOK, gin.H{
			"accessToken":  tokens.AccessToken,
			"refreshToken": tokens.RefreshToken,
			"expiresIn":    tokens.ExpiresIn,
			"user": LoginResponseUser{
				ID:    user.ID.Hex(),
				Name:  user.Name,
				Email: user.Email,
			},
		})
	}
}

func Refresh(db *mongo.Database, jwtSecret string, accessTTL, refreshTTL time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/auth/refresh"
		defer handlePanic(c, route)

		var req RefreshRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		hash := hashToken(strings.TrimSpace(req.RefreshToken))
		var token models.RefreshToken
		if err := db.Collection("refresh_tokens").FindOne(ctx, bson.M{
			"tokenHash": hash,
			"revoked":   false,
		}).Decode(&token); err != nil {
			respondWithError(c, http.StatusUnauthorized, route, "invalid refresh token")
			return
		}

		if time.Now().After(token.ExpiresAt) {
			_, _ = db.Collection("refresh_tokens").UpdateByID(ctx, token.ID, bson.M{"$set": bson.M{"revoked": true}})
			respondWithError(c, http.StatusUnauthorized, route, "refresh token expired")
			return
		}

		var user models.User
		if err := db.Collection("users").FindOne(ctx, bson.M{"_id": token.UserID}).Decode(&user); err != nil {
			respondWithError(c, http.StatusUnauthorized, route, "user not found")
			return
		}
		if !user.IsActive {
			respondWithError(c, http.StatusForbidden, route, "user is blocked")
			return
		}

		newTokens, err := issueTokens(ctx, db, user.ID, user.Email, user.Role, jwtSecret, accessTTL, refreshTTL)
		if err != nil {
			respondDomainError(c, route, err)
			return
		}

		_, _ = db.Collection("refresh_tokens").UpdateByID(ctx, token.ID, bson.M{
			"$set": bson.M{
				"revoked":         true,
				"replacedByToken": newTokens.RefreshTokenID,
			},
		})

		c.JSON(http.StatusOK, gin.H{
			"accessToken":  newTokens.AccessToken,
			"refreshToken": newTokens.RefreshToken,
			"expiresIn":    newTokens.ExpiresIn,
			"user": LoginResponseUser{
				ID:    user.ID.Hex(),
				Name:  user.Name,
				Email: user.Email,
			},
		})
	}
}

func Logout(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/auth/logout"
		defer handlePanic(c, route)

		var req RefreshRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		hash := hashToken(strings.TrimSpace(req.RefreshToken))
		res, err := db.Collection("refresh_tokens").UpdateOne(ctx, bson.M{
			"tokenHash": hash,
			"revoked":   false,
		}, bson.M{"$set": bson.M{"revoked": true}})
		if err != nil {
			respondDomainError(c, route, err)
			return
		}
		if res.MatchedCount == 0 {
			respondWithError(c, http.StatusUnauthorized, route, "invalid refresh token")
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "logged out"})
	}
}

func respondValidationError(c *gin.Context, err error) {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		details := make([]string, 0, len(validationErrors))
		for _, fieldError := range validationErrors {
			field := lowerCamel(fieldError.Field())
			switch fieldError.Tag() {
			case "required":
				details = append(details, fmt.Sprintf("%s is required", field))
			case "email":
				details = append(details, fmt.Sprintf("%s must be a valid email", field))
			case "min":
				details = append(details, fmt.Sprintf("%s is too short", field))
			default:
				details = append(details, fmt.Sprintf("%s is invalid", field))
			}
		}
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "validation failed",
			"details": details,
		})
		return
	}

	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body", "details": err.Error()})
}

func lowerCamel(field string) string {
	if field == "" {
		return field
	}
	return strings.ToLower(field[:1]) + field[1:]
}

type issuedTokens struct {
	AccessToken    string
	RefreshToken   string
	RefreshTokenID primitive.ObjectID
	ExpiresIn      int64
}

func issueTokens(ctx context.Context, db *mongo.Database, userID primitive.ObjectID, email, role, secret string, accessTTL, refreshTTL time.Duration) (*issuedTokens, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"userId": userID.Hex(),
		"email":  email,
		"role":   role,
		"exp":    now.Add(accessTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	accessToken, err := token.SignedString([]byte(secret))
	if err != nil {
		return nil, err
	}

	plainRefresh := generateRefreshString()
	if plainRefresh == "" {
		return nil, errors.New("could not generate refresh token")
	}

	refresh := models.RefreshToken{
		UserID:    userID,
		TokenHash: hashToken(plainRefresh),
		ExpiresAt: now.Add(refreshTTL),
		Revoked:   false,
		CreatedAt: now,
	}

	res, err := db.Collection("refresh_tokens").InsertOne(ctx, refresh)
	if err != nil {
		return nil, err
	}

	return &issuedTokens{
		AccessToken:    accessToken,
		RefreshToken:   plainRefresh,
		RefreshTokenID: res.InsertedID.(primitive.ObjectID),
		ExpiresIn:      int64(accessTTL.Seconds()),
	}, nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func generateRefreshString() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return ""
	}
	return hex.EncodeToString(buf)
}

func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
