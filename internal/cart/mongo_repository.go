package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/junedipasaribu/ecommerce-sub000/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoRepository struct {
	collection *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) CartRepository {
	return &mongoRepository{
		collection: db.Collection("carts"),
	}
}

func (m *mongoRepository) GetCart(ctx context.Context, customerID string) (*domain.Cart, error) {
	var cart domain.Cart

	filter := bson.M{"customer_id": customerID}
	err := m.collection.FindOne(ctx, filter).Decode(&cart)

	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	return &cart, nil
}

func (m *mongoRepository) AddOrIncrement(ctx context.Context, customerID string, line domain.CartLine) error {
	now := time.Now()
	line.AddedAt = now

	// Bump an existing line first. Pinning the product in the filter makes
	// this a single atomic update, so concurrent adds of the same product
	// accumulate into one line instead of forking duplicates. The original
	// price snapshot stays.
	incFilter := bson.M{
		"customer_id":      customerID,
		"lines.product_id": line.ProductID,
	}
	incUpdate := bson.M{
		"$inc": bson.M{"lines.$[elem].quantity": line.Quantity},
		"$set": bson.M{"updated_at": now},
	}
	arrayFilters := options.Update().SetArrayFilters(options.ArrayFilters{
		Filters: []interface{}{
			bson.M{"elem.product_id": line.ProductID},
		},
	})

	result, err := m.collection.UpdateOne(ctx, incFilter, incUpdate, arrayFilters)
	if err != nil {
		return fmt.Errorf("failed to increment existing line: %w", err)
	}
	if result.MatchedCount > 0 {
		return nil
	}

	// No such line yet: push it, upserting the cart when it doesn't exist.
	// The $ne guard keeps a racing add from pushing the line twice; losing
	// that race trips the unique customer index instead, and the add
	// falls back to the increment.
	pushFilter := bson.M{
		"customer_id":      customerID,
		"lines.product_id": bson.M{"$ne": line.ProductID},
	}
	pushUpdate := bson.M{
		"$push":        bson.M{"lines": line},
		"$set":         bson.M{"updated_at": now},
		"$setOnInsert": bson.M{"created_at": now},
	}

	_, err = m.collection.UpdateOne(ctx, pushFilter, pushUpdate, options.Update().SetUpsert(true))
	if err == nil {
		return nil
	}
	if mongo.IsDuplicateKeyError(err) {
		if _, err := m.collection.UpdateOne(ctx, incFilter, incUpdate, arrayFilters); err != nil {
			return fmt.Errorf("failed to increment existing line: %w", err)
		}
		return nil
	}
	return fmt.Errorf("failed to add new line: %w", err)
}

func (m *mongoRepository) UpdateLineQuantity(ctx context.Context, customerID string, productID int64, quantity int32) error {
	filter := bson.M{
		"customer_id":      customerID,
		"lines.product_id": productID,
	}

	update := bson.M{
		"$set": bson.M{
			"lines.$[elem].quantity": quantity,
			"updated_at":             time.Now(),
		},
	}

	arrayFilters := options.Update().SetArrayFilters(options.ArrayFilters{
		Filters: []interface{}{
			bson.M{"elem.product_id": productID},
		},
	})

	result, err := m.collection.UpdateOne(ctx, filter, update, arrayFilters)
	if err != nil {
		return fmt.Errorf("failed to update line quantity: %w", err)
	}

	if result.MatchedCount == 0 {
		return ErrLineNotFound
	}
	return nil
}

func (m *mongoRepository) RemoveLine(ctx context.Context, customerID string, productID int64) error {
	filter := bson.M{"customer_id": customerID}
	update := bson.M{
		"$pull": bson.M{
			"lines": bson.M{"product_id": productID},
		},
		"$set": bson.M{"updated_at": time.Now()},
	}

	result, err := m.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to remove line: %w", err)
	}

	if result.MatchedCount == 0 {
		return ErrCartNotFound
	}

	return nil
}

func (m *mongoRepository) DeleteCart(ctx context.Context, customerID string) error {
	filter := bson.M{"customer_id": customerID}

	result, err := m.collection.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to delete cart: %w", err)
	}

	if result.DeletedCount == 0 {
		return ErrCartNotFound
	}

	return nil
}

func (m *mongoRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "customer_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "updated_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(90 * 24 * 60 * 60), // 90 days TTL
		},
	}

	if _, err := m.collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	return nil
}
