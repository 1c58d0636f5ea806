package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/wealth-one/wealth_service/internal/domain/entities"
	apperrors "github.com/wealth-one/wealth_service/pkg/errors"
)

// UserRepository persists user accounts in PostgreSQL.
type UserRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sqlx.DB, logger *zap.Logger) *UserRepository {
	return &UserRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new user. A username or email collision returns a
// DUPLICATE_ENTRY application error.
func (r *UserRepository) Create(ctx context.Context, user *entities.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	query := `
		INSERT INTO users (
			id, username, email, password_hash,
			coindcx_api_key, coindcx_api_secret, upstox_api_key, upstox_api_secret,
			created_at, updated_at
		) VALUES (
			:id, :username, :email, :password_hash,
			:coindcx_api_key, :coindcx_api_secret, :upstox_api_key, :upstox_api_secret,
			:created_at, :updated_at
		)`

	_, err := r.db.NamedExecContext(ctx, query, user)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return apperrors.New(apperrors.ErrCodeDuplicateEntry, "username or email already taken")
		}
		r.logger.Error("Failed to create user", zap.Error(err), zap.String("username", user.Username))
		return fmt.Errorf("failed to create user: %w", err)
	}

	r.logger.Debug("User created", zap.String("user_id", user.ID.String()))
	return nil
}

// GetByUsername retrieves a user by username.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*entities.User, error) {
	query := `
		SELECT id, username, email, password_hash,
		       coindcx_api_key, coindcx_api_secret, upstox_api_key, upstox_api_secret,
		       created_at, updated_at
		FROM users
		WHERE username = $1`

	user := &entities.User{}
	err := r.db.GetContext(ctx, user, query, username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound(apperrors.ErrCodeUserNotFound, "user not found")
	}
	if err != nil {
		r.logger.Error("Failed to get user by username", zap.Error(err), zap.String("username", username))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	query := `
		SELECT id, username, email, password_hash,
		       coindcx_api_key, coindcx_api_secret, upstox_api_key, upstox_api_secret,
		       created_at, updated_at
		FROM users
		WHERE id = $1`

	user := &entities.User{}
	err := r.db.GetContext(ctx, user, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound(apperrors.ErrCodeUserNotFound, "user not found")
	}
	if err != nil {
		r.logger.Error("Failed to get user by id", zap.Error(err), zap.String("user_id", id.String()))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// UpdateExchangeKeys replaces the stored (encrypted) exchange credentials.
func (r *UserRepository) UpdateExchangeKeys(ctx context.Context, user *entities.User) error {
	query := `
		UPDATE users
		SET coindcx_api_key = $2, coindcx_api_secret = $3,
		    upstox_api_key = $4, upstox_api_secret = $5,
		    updated_at = $6
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query,
		user.ID,
		user.CoindcxAPIKey,
		user.CoindcxAPISecret,
		user.UpstoxAPIKey,
		user.UpstoxAPISecret,
		time.Now(),
	)
	if err != nil {
		r.logger.Error("Failed to update exchange keys", zap.Error(err), zap.String("user_id", user.ID.String()))
		return fmt.Errorf("failed to update exchange keys: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return apperrors.NotFound(apperrors.ErrCodeUserNotFound, "user not found")
	}
	return nil
}
