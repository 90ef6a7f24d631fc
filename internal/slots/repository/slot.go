package repository

import (
	"context"
	"errors"
	"fmt"
	slotserrors "slotter/internal/slots/errors"
	"slotter/pkg/config"
	mongotx "slotter/pkg/db/mongo"
	"slotter/pkg/model"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Slots"
)

type mongoSlotRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

type SlotRepository interface {
	Create(ctx context.Context, slot *model.Slot) error
	CreateMany(ctx context.Context, slots []*model.Slot) error
	FindByID(ctx context.Context, id string) (*model.Slot, error)
	FindByOwner(ctx context.Context, ownerID string) ([]*model.Slot, error)
	FindOverlapping(ctx context.Context, ownerID string, start, end time.Time) ([]*model.Slot, error)
	FindUpcomingByOwner(ctx context.Context, ownerID string, after time.Time) ([]*model.Slot, error)
	Touch(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

func NewMongoSlotRepository(cfg *config.Config) SlotRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoSlotRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func (r *mongoSlotRepository) Create(ctx context.Context, slot *model.Slot) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	slot.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, slot)
	if err != nil {
		return fmt.Errorf("failed to create slot: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		slot.ID = oid.Hex()
	}
	return nil
}

// CreateMany inserts slots in order. All of them share one created_at.
func (r *mongoSlotRepository) CreateMany(ctx context.Context, slots []*model.Slot) error {
	if len(slots) == 0 {
		return nil
	}

	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	docs := make([]any, 0, len(slots))
	for _, slot := range slots {
		slot.CreatedAt = now
		docs = append(docs, slot)
	}

	result, err := r.collection.InsertMany(ctx, docs)
	if err != nil {
		return fmt.Errorf("failed to create slots: %w", err)
	}

	for i, id := range result.InsertedIDs {
		if oid, ok := id.(primitive.ObjectID); ok {
			slots[i].ID = oid.Hex()
		}
	}
	return nil
}

func (r *mongoSlotRepository) FindByID(ctx context.Context, id string) (*model.Slot, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", slotserrors.ErrInvalidID, id)
	}

	var slot model.Slot
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&slot)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, slotserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find slot: %w", err)
	}

	return &slot, nil
}

func (r *mongoSlotRepository) FindByOwner(ctx context.Context, ownerID string) ([]*model.Slot, error) {
	return r.find(ctx, bson.M{"owner_id": ownerID}, newestFirst())
}

// FindOverlapping returns the owner's slots intersecting [start, end), earliest first.
func (r *mongoSlotRepository) FindOverlapping(ctx context.Context, ownerID string, start, end time.Time) ([]*model.Slot, error) {
	filter := bson.M{
		"owner_id":   ownerID,
		"start_time": bson.M{"$lt": end},
		"end_time":   bson.M{"$gt": start},
	}
	opts := options.Find().SetSort(bson.D{{Key: "start_time", Value: 1}})
	return r.find(ctx, filter, opts)
}

func (r *mongoSlotRepository) FindUpcomingByOwner(ctx context.Context, ownerID string, after time.Time) ([]*model.Slot, error) {
	filter := bson.M{
		"owner_id":   ownerID,
		"start_time": bson.M{"$gt": after},
	}
	return r.find(ctx, filter, newestFirst())
}

// Touch bumps the slot revision so that concurrent transactions on the same slot
// write-conflict. It reports ErrNotFound for a missing slot.
func (r *mongoSlotRepository) Touch(ctx context.Context, id string) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", slotserrors.ErrInvalidID, id)
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{"$inc": bson.M{"revision": 1}})
	if err != nil {
		return fmt.Errorf("failed to touch slot: %w", err)
	}
	if result.MatchedCount == 0 {
		return slotserrors.ErrNotFound
	}
	return nil
}

func (r *mongoSlotRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", slotserrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete slot: %w", err)
	}

	if result.DeletedCount == 0 {
		return slotserrors.ErrNotFound
	}

	return nil
}

func (r *mongoSlotRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}

func (r *mongoSlotRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*model.Slot, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find slots: %w", err)
	}
	defer cursor.Close(ctx)

	slots := []*model.Slot{}
	if err = cursor.All(ctx, &slots); err != nil {
		return nil, fmt.Errorf("failed to decode slots: %w", err)
	}

	return slots, nil
}

// newestFirst orders by created_at descending. Slots from one interval share a
// created_at, so _id breaks the tie.
func newestFirst() *options.FindOptions {
	return options.Find().SetSort(bson.D{
		{Key: "created_at", Value: -1},
		{Key: "_id", Value: -1},
	})
}
