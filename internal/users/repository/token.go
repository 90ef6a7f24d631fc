package repository

import (
	"context"
	"errors"
	"fmt"
	userserrors "slotter/internal/users/errors"
	"slotter/pkg/config"
	mongotx "slotter/pkg/db/mongo"
	"slotter/pkg/model"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	TokenCollectionName = "Tokens"
)

type mongoTokenRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

type TokenRepository interface {
	Create(ctx context.Context, token *model.Token) error
	FindByKey(ctx context.Context, key string) (*model.Token, error)
	FindByUserID(ctx context.Context, userID string) (*model.Token, error)
}

func NewMongoTokenRepository(cfg *config.Config) TokenRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoTokenRepository{
		cfg:        cfg,
		collection: db.Collection(TokenCollectionName),
	}
}

// Create stores a token. A second token for the same user violates the unique
// user_id index and reports ErrAlreadyExists.
func (r *mongoTokenRepository) Create(ctx context.Context, token *model.Token) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	token.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	if _, err := r.collection.InsertOne(ctx, token); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return userserrors.ErrAlreadyExists
		}
		return fmt.Errorf("failed to create token: %w", err)
	}
	return nil
}

func (r *mongoTokenRepository) FindByKey(ctx context.Context, key string) (*model.Token, error) {
	return r.findOne(ctx, bson.M{"_id": key})
}

func (r *mongoTokenRepository) FindByUserID(ctx context.Context, userID string) (*model.Token, error) {
	return r.findOne(ctx, bson.M{"user_id": userID})
}

func (r *mongoTokenRepository) findOne(ctx context.Context, filter bson.M) (*model.Token, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var token model.Token
	err := r.collection.FindOne(ctx, filter).Decode(&token)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, userserrors.ErrTokenNotFound
		}
		return nil, fmt.Errorf("failed to find token: %w", err)
	}

	return &token, nil
}
