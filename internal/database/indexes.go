package database

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func createIndexes(db *mongo.Database, collection string, indexes []mongo.IndexModel) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := db.Collection(collection).Indexes().CreateMany(ctx, indexes)
	if err != nil {
		log.Printf("EnsureIndexes: %s index error: %v", collection, err)
		return err
	}
	return nil
}

func EnsureUserIndexes(db *mongo.Database) error {
	return createIndexes(db, "users", []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName("email_unique").SetUnique(true),
		},
	})
}

func EnsureProductIndexes(db *mongo.Database) error {
	return createIndexes(db, "products", []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "category", Value: 1}},
			Options: options.Index().SetName("category_index"),
		},
		{
			Keys:    bson.D{{Key: "offers", Value: 1}},
			Options: options.Index().SetName("offers_index"),
		},
	})
}

func EnsureOrderIndexes(db *mongo.Database) error {
	return createIndexes(db, "orders", []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("userId_createdAt_index"),
		},
		{
			Keys:    bson.D{{Key: "orderId", Value: 1}},
			Options: options.Index().SetName("orderId_unique").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "items._id", Value: 1}},
			Options: options.Index().SetName("itemId_index"),
		},
	})
}

func EnsureCouponIndexes(db *mongo.Database) error {
	return createIndexes(db, "coupons", []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "code", Value: 1}},
			Options: options.Index().SetName("code_unique").SetUnique(true),
		},
	})
}

func EnsureCartIndexes(db *mongo.Database) error {
	return createIndexes(db, "carts", []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}},
			Options: options.Index().SetName("userId_unique").SetUnique(true),
		},
	})
}

func EnsureWalletIndexes(db *mongo.Database) error {
	return createIndexes(db, "wallets", []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}},
			Options: options.Index().SetName("userId_unique").SetUnique(true),
		},
	})
}

// EnsurePendingRegistrationIndexes backs the OTP flow: entries expire on
// their own through the TTL index instead of living in process memory.
func EnsurePendingRegistrationIndexes(db *mongo.Database) error {
	return createIndexes(db, "pending_registrations", []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName("email_unique").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "expiresAt", Value: 1}},
			Options: options.Index().SetName("expiresAt_ttl").SetExpireAfterSeconds(0),
		},
	})
}
