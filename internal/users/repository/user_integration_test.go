//go:build integration

package repository

import (
	"context"
	"errors"
	userserrors "slotter/internal/users/errors"
	"slotter/pkg/db/mongo/mongotest"
	"slotter/pkg/model"
	"testing"
)

func TestMongoUserRepository(t *testing.T) {
	h := mongotest.New(t)
	repo := NewMongoUserRepository(h.Config)
	ctx := context.Background()

	user := &model.User{Username: "alice@example.com", Email: "alice@example.com", PasswordHash: "hash"}
	if err := repo.Create(ctx, user); err != nil {
		t.Fatalf("create: %v", err)
	}

	dup := &model.User{Username: "alice@example.com", Email: "alice@example.com", PasswordHash: "hash"}
	if err := repo.Create(ctx, dup); !errors.Is(err, userserrors.ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}

	if err := repo.LockSchedule(ctx, user.ID); err != nil {
		t.Fatalf("lock: %v", err)
	}
	found, err := repo.FindByUsername(ctx, "alice@example.com")
	if err != nil || found.ID != user.ID || found.ScheduleRevision != 1 {
		t.Errorf("unexpected user %+v, %v", found, err)
	}

	if _, err := repo.FindByID(ctx, "65f000000000000000000009"); !errors.Is(err, userserrors.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := repo.LockSchedule(ctx, "65f000000000000000000009"); !errors.Is(err, userserrors.ErrNotFound) {
		t.Errorf("expected ErrNotFound from lock, got %v", err)
	}
}

func TestMongoTokenRepository(t *testing.T) {
	h := mongotest.New(t)
	repo := NewMongoTokenRepository(h.Config)
	ctx := context.Background()
	userID := "65f000000000000000000001"

	if err := repo.Create(ctx, &model.Token{Key: "0123456789abcdef0123456789abcdef01234567", UserID: userID}); err != nil {
		t.Fatalf("create: %v", err)
	}
	err := repo.Create(ctx, &model.Token{Key: "fedcba9876543210fedcba9876543210fedcba98", UserID: userID})
	if !errors.Is(err, userserrors.ErrAlreadyExists) {
		t.Errorf("expected one token per user, got %v", err)
	}

	token, err := repo.FindByKey(ctx, "0123456789abcdef0123456789abcdef01234567")
	if err != nil || token.UserID != userID {
		t.Errorf("unexpected token %+v, %v", token, err)
	}
	if _, err := repo.FindByUserID(ctx, "65f000000000000000000002"); !errors.Is(err, userserrors.ErrTokenNotFound) {
		t.Errorf("expected ErrTokenNotFound, got %v", err)
	}
}
