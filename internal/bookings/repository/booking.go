package repository

import (
	"context"
	"errors"
	"fmt"
	bookingserrors "slotter/internal/bookings/errors"
	"slotter/pkg/config"
	mongotx "slotter/pkg/db/mongo"
	"slotter/pkg/model"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	CollectionName = "Bookings"
)

type mongoBookingRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

type BookingRepository interface {
	Create(ctx context.Context, booking *model.Booking) error
	FindBySlotID(ctx context.Context, slotID string) (*model.Booking, error)
	FindBySlotIDs(ctx context.Context, slotIDs []string) (map[string]*model.Booking, error)
	DeleteBySlotID(ctx context.Context, slotID string) error
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

func NewMongoBookingRepository(cfg *config.Config) BookingRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBookingRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

// Create inserts a booking. The unique index on slot_id turns a second booking of
// the same slot into ErrAlreadyBooked.
func (r *mongoBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	booking.BookedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, booking)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return bookingserrors.ErrAlreadyBooked
		}
		return fmt.Errorf("failed to create booking: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		booking.ID = oid.Hex()
	}
	return nil
}

func (r *mongoBookingRepository) FindBySlotID(ctx context.Context, slotID string) (*model.Booking, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var booking model.Booking
	err := r.collection.FindOne(ctx, bson.M{"slot_id": slotID}).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}

	return &booking, nil
}

// FindBySlotIDs returns the bookings of the given slots keyed by slot id. Unbooked
// slots are absent from the map.
func (r *mongoBookingRepository) FindBySlotIDs(ctx context.Context, slotIDs []string) (map[string]*model.Booking, error) {
	bookings := make(map[string]*model.Booking, len(slotIDs))
	if len(slotIDs) == 0 {
		return bookings, nil
	}

	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, bson.M{"slot_id": bson.M{"$in": slotIDs}})
	if err != nil {
		return nil, fmt.Errorf("failed to find bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var found []*model.Booking
	if err = cursor.All(ctx, &found); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}

	for _, b := range found {
		bookings[b.SlotID] = b
	}
	return bookings, nil
}

func (r *mongoBookingRepository) DeleteBySlotID(ctx context.Context, slotID string) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.DeleteOne(ctx, bson.M{"slot_id": slotID})
	if err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
	}

	if result.DeletedCount == 0 {
		return bookingserrors.ErrNotFound
	}

	return nil
}

func (r *mongoBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
