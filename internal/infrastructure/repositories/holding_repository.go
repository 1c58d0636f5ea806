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

// HoldingRepository persists broker-reported stock holdings.
type HoldingRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewHoldingRepository creates a new holding repository
func NewHoldingRepository(db *sqlx.DB, logger *zap.Logger) *HoldingRepository {
	return &HoldingRepository{
		db:     db,
		logger: logger,
	}
}

// ReplaceForUser swaps a user's holdings for the freshly imported set in one
// database transaction. The broker payload is the source of truth, so stale
// rows are removed rather than merged.
func (r *HoldingRepository) ReplaceForUser(ctx context.Context, userID uuid.UUID, holdings []entities.Holding) error {
	dbTx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	if _, err := dbTx.ExecContext(ctx, `DELETE FROM holdings WHERE user_id = $1`, userID); err != nil {
		r.logger.Error("Failed to clear holdings", zap.Error(err), zap.String("user_id", userID.String()))
		return fmt.Errorf("failed to clear holdings: %w", err)
	}

	query := `
		INSERT INTO holdings (
			id, user_id, isin, trading_symbol, company_name, exchange,
			quantity, average_price, last_price, updated_at
		) VALUES (
			:id, :user_id, :isin, :trading_symbol, :company_name, :exchange,
			:quantity, :average_price, :last_price, :updated_at
		)`

	now := time.Now()
	for i := range holdings {
		if holdings[i].ID == uuid.Nil {
			holdings[i].ID = uuid.New()
		}
		holdings[i].UserID = userID
		holdings[i].UpdatedAt = now
		if _, err := dbTx.NamedExecContext(ctx, query, holdings[i]); err != nil {
			r.logger.Error("Failed to insert holding",
				zap.Error(err),
				zap.String("user_id", userID.String()),
				zap.String("trading_symbol", holdings[i].TradingSymbol),
			)
			return fmt.Errorf("failed to insert holding: %w", err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit holdings import: %w", err)
	}

	r.logger.Debug("Holdings replaced", zap.String("user_id", userID.String()), zap.Int("count", len(holdings)))
	return nil
}

// ListByUser returns a user's holdings ordered by trading symbol.
func (r *HoldingRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]entities.Holding, error) {
	query := `
		SELECT id, user_id, isin, trading_symbol, company_name, exchange,
		       quantity, average_price, last_price, updated_at
		FROM holdings
		WHERE user_id = $1
		ORDER BY trading_symbol ASC`

	var holdings []entities.Holding
	if err := r.db.SelectContext(ctx, &holdings, query, userID); err != nil {
		r.logger.Error("Failed to list holdings", zap.Error(err), zap.String("user_id", userID.String()))
		return nil, fmt.Errorf("failed to list holdings: %w", err)
	}
	return holdings, nil
}

// ListActiveSymbols returns the distinct trading symbols held across all
// users, used by the background price refresh.
func (r *HoldingRepository) ListActiveSymbols(ctx context.Context) ([]string, error) {
	query := `SELECT DISTINCT trading_symbol FROM holdings`

	var symbols []string
	if err := r.db.SelectContext(ctx, &symbols, query); err != nil {
		r.logger.Error("Failed to list holding symbols", zap.Error(err))
		return nil, fmt.Errorf("failed to list holding symbols: %w", err)
	}
	return symbols, nil
}
