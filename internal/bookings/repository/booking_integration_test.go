//go:build integration

package repository

import (
	"context"
	"errors"
	bookingserrors "slotter/internal/bookings/errors"
	"slotter/pkg/db/mongo/mongotest"
	"slotter/pkg/model"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestMongoBookingRepository_OneBookingPerSlot(t *testing.T) {
	h := mongotest.New(t)
	repo := NewMongoBookingRepository(h.Config)
	ctx := context.Background()
	slotID := primitive.NewObjectID().Hex()

	first := &model.Booking{SlotID: slotID, Description: "first"}
	if err := repo.Create(ctx, first); err != nil {
		t.Fatalf("create: %v", err)
	}
	if first.ID == "" || first.BookedAt.IsZero() {
		t.Errorf("expected id and booked_at to be set, got %+v", first)
	}

	err := repo.Create(ctx, &model.Booking{SlotID: slotID, Description: "second"})
	if !errors.Is(err, bookingserrors.ErrAlreadyBooked) {
		t.Fatalf("expected ErrAlreadyBooked, got %v", err)
	}

	found, err := repo.FindBySlotID(ctx, slotID)
	if err != nil || found.ID != first.ID || !found.IsAnonymous() {
		t.Errorf("expected the first booking, got %+v, %v", found, err)
	}
}

func TestMongoBookingRepository_FindAndDelete(t *testing.T) {
	h := mongotest.New(t)
	repo := NewMongoBookingRepository(h.Config)
	ctx := context.Background()
	booked, free := primitive.NewObjectID().Hex(), primitive.NewObjectID().Hex()

	if err := repo.Create(ctx, &model.Booking{SlotID: booked, BookedBy: primitive.NewObjectID().Hex(), Description: "x"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	bookings, err := repo.FindBySlotIDs(ctx, []string{booked, free})
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if _, ok := bookings[booked]; !ok || len(bookings) != 1 {
		t.Errorf("expected only %s to be booked, got %v", booked, bookings)
	}

	if err := repo.DeleteBySlotID(ctx, booked); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := repo.DeleteBySlotID(ctx, booked); !errors.Is(err, bookingserrors.ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestMongoBookingRepository_TransactionRollsBack(t *testing.T) {
	h := mongotest.New(t)
	repo := NewMongoBookingRepository(h.Config)
	rollback := errors.New("abort")

	err := repo.ExecuteTransaction(context.Background(), func(txCtx context.Context) error {
		if err := repo.Create(txCtx, &model.Booking{SlotID: primitive.NewObjectID().Hex(), Description: "x"}); err != nil {
			return err
		}
		return rollback
	})

	if !errors.Is(err, rollback) {
		t.Fatalf("expected the abort error, got %v", err)
	}
	if n := h.Count(t, CollectionName); n != 0 {
		t.Errorf("expected no bookings after rollback, got %d", n)
	}
}
