package handlers

import (
	"context"
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"storefront/internal/models"
)

// bestOfferDiscount returns the single effective discount percentage for a
// product's loaded offer set: the maximum among active, unexpired offers.
// Discounts never stack. An empty set yields 0.
func bestOfferDiscount(offers []models.Offer, now time.Time) float64 {
	best := 0.0
	for _, offer := range offers {
		if offer.Status != models.OfferStatusActive {
			continue
		}
		if !offer.ExpireDate.IsZero() && now.After(offer.ExpireDate) {
			continue
		}
		if offer.Discount > best {
			best = offer.Discount
		}
	}
	return best
}

// discountedUnitPrice rounds half-up to the nearest currency unit.
func discountedUnitPrice(price, discount float64) float64 {
	if discount <= 0 {
		return price
	}
	return math.Round(price * (1 - discount/100))
}

func loadProductOffers(ctx context.Context, db *mongo.Database, product models.Product) ([]models.Offer, error) {
	if len(product.Offers) == 0 {
		return nil, nil
	}

	cursor, err := db.Collection("offers").Find(ctx, bson.M{"_id": bson.M{"$in": product.Offers}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var offers []models.Offer
	if err := cursor.All(ctx, &offers); err != nil {
		return nil, err
	}
	return offers, nil
}

// offerProductIDs resolves the products an offer applies to, directly for
// product offers and through category membership for category offers.
func offerProductIDs(ctx context.Context, db *mongo.Database, offer models.Offer) ([]primitive.ObjectID, error) {
	var filter bson.M
	switch offer.OfferType {
	case models.OfferTypeProduct:
		if len(offer.ProductIDs) == 0 {
			return nil, nil
		}
		filter = bson.M{"_id": bson.M{"$in": offer.ProductIDs}}
	case models.OfferTypeCategory:
		if len(offer.Categories) == 0 {
			return nil, nil
		}
		filter = bson.M{"category": bson.M{"$in": []string(offer.Categories)}}
	default:
		return nil, nil
	}

	cursor, err := db.Collection("products").Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	ids := make([]primitive.ObjectID, 0)
	for cursor.Next(ctx) {
		var product models.Product
		if err := cursor.Decode(&product); err != nil {
			return nil, err
		}
		ids = append(ids, product.ID)
	}
	return ids, cursor.Err()
}

// recacheDiscountedPrices recomputes the cached discountedPrice for each
// product from live offer state. Called after every offer mutation; the
// cache serves listing pages only and is never trusted at checkout.
func recacheDiscountedPrices(ctx context.Context, db *mongo.Database, productIDs []primitive.ObjectID) error {
	now := time.Now()
	for _, id := range productIDs {
		var product models.Product
		if err := db.Collection("products").FindOne(ctx, bson.M{"_id": id}).Decode(&product); err != nil {
			if err == mongo.ErrNoDocuments {
				continue
			}
			return err
		}

		offers, err := loadProductOffers(ctx, db, product)
		if err != nil {
			return err
		}

		discount := bestOfferDiscount(offers, now)
		_, err = db.Collection("products").UpdateByID(ctx, id, bson.M{
			"$set": bson.M{"discountedPrice": discountedUnitPrice(product.Price, discount)},
		})
		if err != nil {
			return err
		}
	}
	return nil
}
