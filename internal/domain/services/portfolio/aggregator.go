package portfolio

import (
	"sort"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/wealth-one/wealth_service/internal/domain/entities"
	"github.com/wealth-one/wealth_service/pkg/metrics"
)

// Aggregator folds a transaction ledger into per-symbol positions.
type Aggregator struct {
	logger *zap.Logger
}

// NewAggregator creates a new position aggregator
func NewAggregator(logger *zap.Logger) *Aggregator {
	return &Aggregator{logger: logger}
}

// Aggregate processes transactions in timestamp order (stable input-order
// tie-break for equal timestamps) and returns a position per symbol. Symbols
// whose residual quantity is not positive are fully exited and dropped from
// the result. Malformed records are skipped and logged; one corrupt record
// must not hide the rest of the portfolio.
func (a *Aggregator) Aggregate(transactions []entities.Transaction) map[string]entities.Position {
	ordered := make([]entities.Transaction, len(transactions))
	copy(ordered, transactions)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Timestamp.Before(ordered[j].Timestamp)
	})

	positions := make(map[string]entities.Position)

	for _, tx := range ordered {
		if reason := validateTransaction(tx); reason != "" {
			metrics.SkippedTransactionsTotal.Inc()
			a.logger.Warn("Skipping malformed transaction",
				zap.String("symbol", tx.Symbol),
				zap.String("order_id", tx.OrderID),
				zap.String("reason", reason),
			)
			continue
		}

		pos, ok := positions[tx.Symbol]
		if !ok {
			pos = entities.Position{Symbol: tx.Symbol}
		}

		switch tx.Side {
		case entities.SideBuy:
			newQuantity := pos.TotalQuantity.Add(tx.Quantity)
			if newQuantity.IsZero() {
				// Degenerate fold; reset rather than divide by zero.
				pos.AverageCost = decimal.Zero
			} else {
				held := pos.TotalQuantity.Mul(pos.AverageCost)
				bought := tx.Quantity.Mul(tx.Price)
				pos.AverageCost = held.Add(bought).Div(newQuantity)
			}
			pos.TotalQuantity = newQuantity
		case entities.SideSell:
			// Sells reduce quantity only; average cost is a buy-side figure.
			pos.TotalQuantity = pos.TotalQuantity.Sub(tx.Quantity)
		}

		pos.AccumulatedFees = pos.AccumulatedFees.Add(tx.FeeAmount)
		if tx.Timestamp.After(pos.LastUpdated) {
			pos.LastUpdated = tx.Timestamp
		}
		positions[tx.Symbol] = pos
	}

	for symbol, pos := range positions {
		if pos.TotalQuantity.Sign() <= 0 {
			delete(positions, symbol)
		}
	}

	return positions
}

func validateTransaction(tx entities.Transaction) string {
	switch {
	case tx.Side != entities.SideBuy && tx.Side != entities.SideSell:
		return "unknown side"
	case tx.Quantity.Sign() <= 0:
		return "non-positive quantity"
	case tx.Price.Sign() <= 0:
		return "non-positive price"
	case tx.FeeAmount.Sign() < 0:
		return "negative fee"
	default:
		return ""
	}
}
