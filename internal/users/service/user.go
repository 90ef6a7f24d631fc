package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	userserrors "slotter/internal/users/errors"
	"slotter/internal/users/repository"
	"slotter/internal/users/validator"
	"slotter/pkg/config"
	apperrors "slotter/pkg/errors"
	"slotter/pkg/model"

	lru "github.com/hashicorp/golang-lru"
	"golang.org/x/crypto/bcrypt"
)

const (
	tokenBytes = 20

	invalidLoginData = "invalid login data"
)

type UserService interface {
	Register(ctx context.Context, req *model.RegisterRequest) (*model.RegisteredUser, error)
	Login(ctx context.Context, req *model.LoginRequest) (*model.LoginResponse, error)
	Resolve(ctx context.Context, token string) (*model.Identity, error)
}

type userService struct {
	repo      repository.UserRepository
	tokenRepo repository.TokenRepository
	validator *validator.UserValidator
	cfg       *config.Config
	// identities caches token -> *model.Identity. Tokens never rotate.
	identities *lru.Cache
	newToken   func() (string, error)
}

func NewUserService(
	repo repository.UserRepository,
	tokenRepo repository.TokenRepository,
	validator *validator.UserValidator,
	cfg *config.Config,
) (UserService, error) {
	cache, err := lru.New(cfg.TokenCacheSize)
	if err != nil {
		return nil, err
	}
	return &userService{
		repo:       repo,
		tokenRepo:  tokenRepo,
		validator:  validator,
		cfg:        cfg,
		identities: cache,
		newToken:   generateToken,
	}, nil
}

// Register creates the user and its token together. The username is the
// normalized email.
func (s *userService) Register(ctx context.Context, req *model.RegisterRequest) (*model.RegisteredUser, error) {
	if err := s.validator.ValidateRegister(req); err != nil {
		return nil, err
	}

	if _, err := s.repo.FindByUsername(ctx, req.Email); err == nil {
		return nil, apperrors.AlreadyRegistered("User is already registered")
	} else if !errors.Is(err, userserrors.ErrNotFound) {
		return nil, apperrors.Internal("Failed to check existing user", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cfg.BcryptCost)
	if err != nil {
		return nil, apperrors.Internal("Failed to hash password", err)
	}

	user := &model.User{
		Username:     req.Email,
		Email:        req.Email,
		PasswordHash: string(hash),
	}

	err = s.repo.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		if err := s.repo.Create(txCtx, user); err != nil {
			if errors.Is(err, userserrors.ErrAlreadyExists) {
				return apperrors.AlreadyRegistered("User is already registered")
			}
			return apperrors.Internal("Failed to create user", err)
		}
		if _, err := s.issueToken(txCtx, user.ID); err != nil {
			return apperrors.Internal("Failed to create token", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cfg.Log.Info("User registered successfully", "user_id", user.ID)
	return &model.RegisteredUser{ID: user.ID, Username: user.Username}, nil
}

// Login returns the stored token of the user. Unknown users and wrong passwords
// are indistinguishable to the caller.
func (s *userService) Login(ctx context.Context, req *model.LoginRequest) (*model.LoginResponse, error) {
	if err := s.validator.ValidateLogin(req); err != nil {
		return nil, err
	}

	user, err := s.repo.FindByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, userserrors.ErrNotFound) {
			return nil, apperrors.Unauthorized(invalidLoginData)
		}
		return nil, apperrors.Internal("Failed to retrieve user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.cfg.Log.Debug("Login rejected", "user_id", user.ID)
		return nil, apperrors.Unauthorized(invalidLoginData)
	}

	token, err := s.tokenRepo.FindByUserID(ctx, user.ID)
	if err == nil {
		return &model.LoginResponse{Token: token.Key}, nil
	}
	if !errors.Is(err, userserrors.ErrTokenNotFound) {
		return nil, apperrors.Internal("Failed to retrieve token", err)
	}

	key, err := s.issueToken(ctx, user.ID)
	if errors.Is(err, userserrors.ErrAlreadyExists) {
		// A concurrent login issued it first.
		token, err = s.tokenRepo.FindByUserID(ctx, user.ID)
		if err != nil {
			return nil, apperrors.Internal("Failed to retrieve token", err)
		}
		key = token.Key
	} else if err != nil {
		return nil, apperrors.Internal("Failed to create token", err)
	}

	return &model.LoginResponse{Token: key}, nil
}

// Resolve maps a bearer token to the identity of its user.
func (s *userService) Resolve(ctx context.Context, token string) (*model.Identity, error) {
	if token == "" {
		return nil, apperrors.Unauthorized("Invalid token")
	}
	if cached, ok := s.identities.Get(token); ok {
		return cached.(*model.Identity), nil
	}

	stored, err := s.tokenRepo.FindByKey(ctx, token)
	if err != nil {
		if errors.Is(err, userserrors.ErrTokenNotFound) {
			return nil, apperrors.Unauthorized("Invalid token")
		}
		return nil, apperrors.Internal("Failed to resolve token", err)
	}

	user, err := s.repo.FindByID(ctx, stored.UserID)
	if err != nil {
		if errors.Is(err, userserrors.ErrNotFound) || errors.Is(err, userserrors.ErrInvalidID) {
			return nil, apperrors.Unauthorized("Invalid token")
		}
		return nil, apperrors.Internal("Failed to resolve token", err)
	}

	identity := &model.Identity{UserID: user.ID, Username: user.Username}
	s.identities.Add(token, identity)
	return identity, nil
}

func (s *userService) issueToken(ctx context.Context, userID string) (string, error) {
	key, err := s.newToken()
	if err != nil {
		return "", err
	}
	if err := s.tokenRepo.Create(ctx, &model.Token{Key: key, UserID: userID}); err != nil {
		return "", err
	}
	return key, nil
}

// generateToken returns 40 hex characters of randomness.
func generateToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
