package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/wealth-one/wealth_service/internal/domain/entities"
)

// TransactionRepository persists the insert-only trade ledger.
type TransactionRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *sqlx.DB, logger *zap.Logger) *TransactionRepository {
	return &TransactionRepository{
		db:     db,
		logger: logger,
	}
}

// Insert records one executed trade. Duplicate order ids from the same
// exchange sync are ignored so re-imports stay idempotent.
func (r *TransactionRepository) Insert(ctx context.Context, tx *entities.Transaction) error {
	if tx.ID == uuid.Nil {
		tx.ID = uuid.New()
	}
	tx.CreatedAt = time.Now()

	query := `
		INSERT INTO transactions (
			id, user_id, order_id, symbol, side, quantity, price, fee_amount,
			exchange, executed_at, created_at
		) VALUES (
			:id, :user_id, :order_id, :symbol, :side, :quantity, :price, :fee_amount,
			:exchange, :executed_at, :created_at
		)
		ON CONFLICT (user_id, order_id) WHERE order_id <> '' DO NOTHING`

	_, err := r.db.NamedExecContext(ctx, query, tx)
	if err != nil {
		r.logger.Error("Failed to insert transaction",
			zap.Error(err),
			zap.String("user_id", tx.UserID.String()),
			zap.String("order_id", tx.OrderID),
		)
		return fmt.Errorf("failed to insert transaction: %w", err)
	}
	return nil
}

// InsertBatch records a batch of trades in one database transaction.
func (r *TransactionRepository) InsertBatch(ctx context.Context, transactions []entities.Transaction) error {
	if len(transactions) == 0 {
		return nil
	}

	dbTx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	query := `
		INSERT INTO transactions (
			id, user_id, order_id, symbol, side, quantity, price, fee_amount,
			exchange, executed_at, created_at
		) VALUES (
			:id, :user_id, :order_id, :symbol, :side, :quantity, :price, :fee_amount,
			:exchange, :executed_at, :created_at
		)
		ON CONFLICT (user_id, order_id) WHERE order_id <> '' DO NOTHING`

	now := time.Now()
	for i := range transactions {
		if transactions[i].ID == uuid.Nil {
			transactions[i].ID = uuid.New()
		}
		transactions[i].CreatedAt = now
		if _, err := dbTx.NamedExecContext(ctx, query, transactions[i]); err != nil {
			r.logger.Error("Failed to insert transaction batch", zap.Error(err), zap.Int("size", len(transactions)))
			return fmt.Errorf("failed to insert transaction batch: %w", err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction batch: %w", err)
	}

	r.logger.Debug("Transaction batch inserted", zap.Int("size", len(transactions)))
	return nil
}

// ListByUser returns all trades for a user ordered by execution time.
func (r *TransactionRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]entities.Transaction, error) {
	query := `
		SELECT id, user_id, order_id, symbol, side, quantity, price, fee_amount,
		       exchange, executed_at, created_at
		FROM transactions
		WHERE user_id = $1
		ORDER BY executed_at ASC, created_at ASC`

	var transactions []entities.Transaction
	if err := r.db.SelectContext(ctx, &transactions, query, userID); err != nil {
		r.logger.Error("Failed to list transactions", zap.Error(err), zap.String("user_id", userID.String()))
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return transactions, nil
}

// ListActiveSymbols returns the distinct symbols present in the ledger across
// all users, used by the background price refresh.
func (r *TransactionRepository) ListActiveSymbols(ctx context.Context) ([]string, error) {
	query := `SELECT DISTINCT symbol FROM transactions`

	var symbols []string
	if err := r.db.SelectContext(ctx, &symbols, query); err != nil {
		r.logger.Error("Failed to list active symbols", zap.Error(err))
		return nil, fmt.Errorf("failed to list active symbols: %w", err)
	}
	return symbols, nil
}
