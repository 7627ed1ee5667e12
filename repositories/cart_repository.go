// repositories/cart_repository.go
package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/Rameztikp/Almotamad-Pharma-Store2-sub000/config"
	"github.com/Rameztikp/Almotamad-Pharma-Store2-sub000/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var ErrCartItemNotFound = errors.New("cart item not found")

// CartRepository is the Mongo-backed account cart. The unique index on
// (userId, productId) keeps one row per product.
type CartRepository struct {
	collection *mongo.Collection
}

func NewCartRepository(db *mongo.Client) *CartRepository {
	return &CartRepository{
		collection: config.GetCollection(db, "cart_items"),
	}
}

// Items returns the full cart of a user.
func (r *CartRepository) Items(ctx context.Context, userID primitive.ObjectID) ([]models.CartItem, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"userId": userID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var items []models.CartItem
	if err := cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Item returns a single cart line owned by the user.
func (r *CartRepository) Item(ctx context.Context, userID, itemID primitive.ObjectID) (*models.CartItem, error) {
	var item models.CartItem
	err := r.collection.FindOne(ctx, bson.M{"_id": itemID, "userId": userID}).Decode(&item)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrCartItemNotFound
		}
		return nil, err
	}
	return &item, nil
}

// SetQuantity overwrites the quantity of an existing line.
func (r *CartRepository) SetQuantity(ctx context.Context, itemID primitive.ObjectID, quantity int) error {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": itemID}, bson.M{
		"$set": bson.M{"quantity": quantity, "updatedAt": time.Now()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrCartItemNotFound
	}
	return nil
}

// Add inserts a cart line. A concurrent insert for the same product is
// absorbed by incrementing the existing row instead, so the one-row-per-
// product invariant holds even when two adds race.
func (r *CartRepository) Add(ctx context.Context, item models.CartItem) error {
	now := time.Now()
	if item.ID.IsZero() {
		item.ID = primitive.NewObjectID()
	}
	item.CreatedAt = now
	item.UpdatedAt = now

	_, err := r.collection.InsertOne(ctx, item)
	if err == nil {
		return nil
	}
	if !mongo.IsDuplicateKeyError(err) {
		return err
	}

	_, err = r.collection.UpdateOne(ctx,
		bson.M{"userId": item.UserID, "productId": item.ProductID},
		bson.M{
			"$inc": bson.M{"quantity": item.Quantity},
			"$set": bson.M{"updatedAt": now},
		})
	return err
}

// Remove deletes one line from the user's cart.
func (r *CartRepository) Remove(ctx context.Context, userID, itemID primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": itemID, "userId": userID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrCartItemNotFound
	}
	return nil
}

// Clear empties the user's cart.
func (r *CartRepository) Clear(ctx context.Context, userID primitive.ObjectID) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"userId": userID})
	return err
}
