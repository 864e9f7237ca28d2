package repository

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"wishwall/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type WishRepository struct {
	collection *mongo.Collection
}

func NewWishRepository(db *mongo.Database) *WishRepository {
	return &WishRepository{collection: db.Collection("wishes")}
}

// Insert stores a new wish as pending. CreatedAt and DisplayRank are assigned
// here so every record carries a fixed tie-break value from the start.
func (r *WishRepository) Insert(ctx context.Context, wish *models.Wish) (*models.Wish, error) {
	wish.Status = models.StatusPending
	wish.CreatedAt = time.Now().UTC()
	wish.DisplayRank = rand.Float64()

	result, err := r.collection.InsertOne(ctx, wish)
	if err != nil {
		return nil, fmt.Errorf("failed to insert wish: %v: %w", err, models.ErrStorage)
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("failed to cast inserted ID: %w", models.ErrStorage)
	}
	wish.ID = insertedID

	return wish, nil
}

// UpdateStatus applies a pending -> approved/rejected transition as a single
// conditional update. It returns false when the wish does not exist or has
// already been decided, so a duplicate decision is a no-op rather than an
// overwrite.
func (r *WishRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.Status) (bool, error) {
	filter := bson.M{"_id": id, "status": models.StatusPending}
	update := bson.M{"$set": bson.M{
		"status":     status,
		"decided_at": time.Now().UTC(),
	}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to update wish status: %v: %w", err, models.ErrStorage)
	}

	return result.ModifiedCount == 1, nil
}

func (r *WishRepository) Get(ctx context.Context, id primitive.ObjectID) (*models.Wish, error) {
	var wish models.Wish
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&wish); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("wish %s: %w", id.Hex(), models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get wish: %v: %w", err, models.ErrStorage)
	}
	return &wish, nil
}

// ListApproved returns every approved wish, newest first, same-instant records
// in their fixed display-rank order.
func (r *WishRepository) ListApproved(ctx context.Context) ([]models.Wish, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "created_at", Value: -1},
		{Key: "display_rank", Value: 1},
	})

	cursor, err := r.collection.Find(ctx, bson.M{"status": models.StatusApproved}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list approved wishes: %v: %w", err, models.ErrStorage)
	}
	defer cursor.Close(ctx)

	var wishes []models.Wish
	for cursor.Next(ctx) {
		var wish models.Wish
		if err := cursor.Decode(&wish); err != nil {
			return nil, fmt.Errorf("failed to decode wish: %v: %w", err, models.ErrStorage)
		}
		wishes = append(wishes, wish)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate wishes: %v: %w", err, models.ErrStorage)
	}

	return wishes, nil
}

func (r *WishRepository) CountPending(ctx context.Context) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"status": models.StatusPending})
	if err != nil {
		return 0, fmt.Errorf("failed to count pending wishes: %v: %w", err, models.ErrStorage)
	}
	return count, nil
}
