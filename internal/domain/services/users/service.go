package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wealth-one/wealth_service/internal/domain/entities"
	"github.com/wealth-one/wealth_service/pkg/auth"
	"github.com/wealth-one/wealth_service/pkg/crypto"
	apperrors "github.com/wealth-one/wealth_service/pkg/errors"
)

// UserStore is the persistence surface the service needs.
type UserStore interface {
	Create(ctx context.Context, user *entities.User) error
	GetByUsername(ctx context.Context, username string) (*entities.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error)
	UpdateExchangeKeys(ctx context.Context, user *entities.User) error
}

// Service implements account registration and login. Passwords are stored as
// bcrypt hashes; exchange API credentials are encrypted at rest and never
// returned through the API.
type Service struct {
	store         UserStore
	tokens        auth.TokenConfig
	encryptionKey string
	logger        *zap.Logger
}

// NewService creates a new user service
func NewService(store UserStore, tokens auth.TokenConfig, encryptionKey string, logger *zap.Logger) *Service {
	return &Service{
		store:         store,
		tokens:        tokens,
		encryptionKey: encryptionKey,
		logger:        logger,
	}
}

// Register creates a new account.
func (s *Service) Register(ctx context.Context, req *entities.RegisterRequest) (*entities.User, error) {
	passwordHash, err := crypto.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &entities.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: passwordHash,
	}

	if user.CoindcxAPIKey, err = s.encryptIfSet(req.CoindcxAPIKey); err != nil {
		return nil, err
	}
	if user.CoindcxAPISecret, err = s.encryptIfSet(req.CoindcxAPISecret); err != nil {
		return nil, err
	}
	if user.UpstoxAPIKey, err = s.encryptIfSet(req.UpstoxAPIKey); err != nil {
		return nil, err
	}
	if user.UpstoxAPISecret, err = s.encryptIfSet(req.UpstoxAPISecret); err != nil {
		return nil, err
	}

	if err := s.store.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("User registered", zap.String("user_id", user.ID.String()), zap.String("username", user.Username))
	return user, nil
}

// Login verifies credentials and issues a token. Unknown usernames and wrong
// passwords both come back as BAD_CREDENTIALS so callers cannot probe for
// accounts.
func (s *Service) Login(ctx context.Context, req *entities.LoginRequest) (string, error) {
	user, err := s.store.GetByUsername(ctx, req.Username)
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) && appErr.Code == apperrors.ErrCodeUserNotFound {
			return "", apperrors.BadCredentials("invalid username or password")
		}
		return "", err
	}

	if !crypto.ValidatePassword(req.Password, user.PasswordHash) {
		return "", apperrors.BadCredentials("invalid username or password")
	}

	token, err := auth.GenerateToken(user.ID, user.Username, user.Email, s.tokens)
	if err != nil {
		return "", fmt.Errorf("failed to issue token: %w", err)
	}

	s.logger.Info("User logged in", zap.String("user_id", user.ID.String()))
	return token, nil
}

// Profile returns the public view of an account.
func (s *Service) Profile(ctx context.Context, userID uuid.UUID) (*entities.ProfileResponse, error) {
	user, err := s.store.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &entities.ProfileResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	}, nil
}

// ExchangeCredential decrypts one stored credential for outbound exchange
// calls. An unset credential returns an empty string.
func (s *Service) ExchangeCredential(encrypted string) (string, error) {
	if encrypted == "" {
		return "", nil
	}
	return crypto.Decrypt(encrypted, s.encryptionKey)
}

func (s *Service) encryptIfSet(value string) (string, error) {
	if value == "" {
		return "", nil
	}
	encrypted, err := crypto.Encrypt(value, s.encryptionKey)
	if err != nil {
		return "", fmt.Errorf("failed to encrypt credential: %w", err)
	}
	return encrypted, nil
}
