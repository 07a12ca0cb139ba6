package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"storefront/internal/models"
)

// debitWallet atomically takes amount from the user's wallet and appends the
// matching debit transaction. The balance guard in the filter makes a debit
// that would go negative match nothing instead of oversubscribing.
func debitWallet(ctx context.Context, db *mongo.Database, userID primitive.ObjectID, amount float64, description string) (float64, error) {
	tx := models.WalletTransaction{
		ID:          uuid.NewString(),
		Amount:      amount,
		Type:        models.WalletTxDebit,
		Description: description,
		Date:        time.Now(),
	}

	var wallet models.Wallet
	err := db.Collection("wallets").FindOneAndUpdate(ctx,
		bson.M{"userId": userID, "balance": bson.M{"$gte": amount}},
		bson.M{
			"$inc":  bson.M{"balance": -amount},
			"$push": bson.M{"transactions": tx},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&wallet)

	if err == mongo.ErrNoDocuments {
		var existing models.Wallet
		lookupErr := db.Collection("wallets").FindOne(ctx, bson.M{"userId": userID}).Decode(&existing)
		if lookupErr == mongo.ErrNoDocuments {
			return 0, walletNotFoundError{}
		}
		if lookupErr != nil {
			return 0, lookupErr
		}
		return 0, insufficientWalletError{Balance: existing.Balance, Required: amount}
	}
	if err != nil {
		return 0, err
	}

	return wallet.Balance, nil
}

// creditWallet atomically adds amount to the user's wallet, creating the
// wallet on first credit.
func creditWallet(ctx context.Context, db *mongo.Database, userID primitive.ObjectID, amount float64, description string) (float64, error) {
	tx := models.WalletTransaction{
		ID:          uuid.NewString(),
		Amount:      amount,
		Type:        models.WalletTxCredit,
		Description: description,
		Date:        time.Now(),
	}

	var wallet models.Wallet
	err := db.Collection("wallets").FindOneAndUpdate(ctx,
		bson.M{"userId": userID},
		bson.M{
			"$inc":         bson.M{"balance": amount},
			"$push":        bson.M{"transactions": tx},
			"$setOnInsert": bson.M{"createdAt": time.Now()},
		},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&wallet)
	if err != nil {
		return 0, err
	}

	return wallet.Balance, nil
}

func GetWalletBalance(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/wallet"
		defer handlePanic(c, route)

		userID := c.MustGet("userId").(primitive.ObjectID)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var wallet models.Wallet
		if err := db.Collection("wallets").FindOne(ctx, bson.M{"userId": userID}).Decode(&wallet); err != nil {
			if err == mongo.ErrNoDocuments {
				respondDomainError(c, route, walletNotFoundError{})
				return
			}
			respondDomainError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"balance": wallet.Balance})
	}
}

func GetWalletTransactions(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/wallet/transactions"
		defer handlePanic(c, route)

		userID := c.MustGet("userId").(primitive.ObjectID)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var wallet models.Wallet
		if err := db.Collection("wallets").FindOne(ctx, bson.M{"userId": userID}).Decode(&wallet); err != nil {
			if err == mongo.ErrNoDocuments {
				c.JSON(http.StatusOK, gin.H{"transactions": []models.WalletTransaction{}})
				return
			}
			respondDomainError(c, route, err)
			return
		}

		log.Printf("[WALLET] [INFO] returning %d transactions", len(wallet.Transactions))
		c.JSON(http.StatusOK, gin.H{"transactions": wallet.Transactions})
	}
}
