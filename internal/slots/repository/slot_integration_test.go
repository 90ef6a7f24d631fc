//go:build integration

package repository

import (
	"context"
	"errors"
	slotserrors "slotter/internal/slots/errors"
	"slotter/pkg/db/mongo/mongotest"
	"slotter/pkg/model"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestMongoSlotRepository_FindOverlapping(t *testing.T) {
	h := mongotest.New(t)
	repo := NewMongoSlotRepository(h.Config)
	ctx := context.Background()
	owner := primitive.NewObjectID().Hex()
	base := time.Date(2030, 5, 1, 10, 0, 0, 0, time.UTC)

	if err := repo.CreateMany(ctx, []*model.Slot{
		model.NewSlot(owner, base),
		model.NewSlot(owner, base.Add(2*time.Hour)),
		model.NewSlot(primitive.NewObjectID().Hex(), base.Add(time.Hour)),
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	tests := []struct {
		name  string
		start time.Time
		want  int
	}{
		{"back to back", base.Add(time.Hour), 0},
		{"half overlap", base.Add(30 * time.Minute), 1},
		{"straddles both", base.Add(90 * time.Minute), 1},
		{"exact match", base, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			found, err := repo.FindOverlapping(ctx, owner, tt.start, tt.start.Add(time.Hour))
			if err != nil {
				t.Fatalf("find: %v", err)
			}
			if len(found) != tt.want {
				t.Errorf("expected %d overlapping slots, got %d", tt.want, len(found))
			}
		})
	}
}

func TestMongoSlotRepository_ByIDOperations(t *testing.T) {
	h := mongotest.New(t)
	repo := NewMongoSlotRepository(h.Config)
	ctx := context.Background()

	slot := model.NewSlot(primitive.NewObjectID().Hex(), time.Date(2030, 5, 1, 10, 0, 0, 0, time.UTC))
	if err := repo.Create(ctx, slot); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := repo.Touch(ctx, slot.ID); err != nil {
		t.Fatalf("touch: %v", err)
	}
	found, err := repo.FindByID(ctx, slot.ID)
	if err != nil || found.Revision != 1 || !found.StartTime.Equal(slot.StartTime) {
		t.Errorf("unexpected slot %+v, %v", found, err)
	}

	if err := repo.Delete(ctx, slot.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.FindByID(ctx, slot.ID); !errors.Is(err, slotserrors.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := repo.Touch(ctx, slot.ID); !errors.Is(err, slotserrors.ErrNotFound) {
		t.Errorf("expected ErrNotFound on touch, got %v", err)
	}
	if _, err := repo.FindByID(ctx, "not-hex"); !errors.Is(err, slotserrors.ErrInvalidID) {
		t.Errorf("expected ErrInvalidID, got %v", err)
	}
}

func TestMongoSlotRepository_NewestFirst(t *testing.T) {
	h := mongotest.New(t)
	repo := NewMongoSlotRepository(h.Config)
	ctx := context.Background()
	owner := primitive.NewObjectID().Hex()
	base := time.Date(2030, 5, 1, 10, 0, 0, 0, time.UTC)

	older := model.NewSlot(owner, base.Add(5*time.Hour))
	if err := repo.Create(ctx, older); err != nil {
		t.Fatalf("create: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	newer := model.NewSlot(owner, base)
	if err := repo.Create(ctx, newer); err != nil {
		t.Fatalf("create: %v", err)
	}

	slots, err := repo.FindByOwner(ctx, owner)
	if err != nil || len(slots) != 2 {
		t.Fatalf("expected two slots, got %d, %v", len(slots), err)
	}
	if slots[0].ID != newer.ID {
		t.Errorf("expected the most recently created slot first")
	}
}
