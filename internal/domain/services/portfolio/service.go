package portfolio

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wealth-one/wealth_service/internal/domain/entities"
	"github.com/wealth-one/wealth_service/internal/domain/services/prices"
	"github.com/wealth-one/wealth_service/pkg/metrics"
)

// TransactionStore loads a user's trade ledger.
type TransactionStore interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]entities.Transaction, error)
}

// HoldingStore loads a user's broker-reported stock holdings.
type HoldingStore interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]entities.Holding, error)
}

// Service assembles the full portfolio view: the crypto ledger is folded into
// positions, stock holdings come straight from the broker import, and both are
// valued against their price caches.
type Service struct {
	transactions TransactionStore
	holdings     HoldingStore
	aggregator   *Aggregator
	cryptoPrices *prices.Cache
	stockPrices  *prices.Cache
	logger       *zap.Logger
}

// NewService creates a new portfolio service
func NewService(
	transactions TransactionStore,
	holdings HoldingStore,
	aggregator *Aggregator,
	cryptoPrices *prices.Cache,
	stockPrices *prices.Cache,
	logger *zap.Logger,
) *Service {
	return &Service{
		transactions: transactions,
		holdings:     holdings,
		aggregator:   aggregator,
		cryptoPrices: cryptoPrices,
		stockPrices:  stockPrices,
		logger:       logger,
	}
}

// Assets returns per-class valuations for a user.
func (s *Service) Assets(ctx context.Context, userID uuid.UUID) (map[entities.AssetClass][]entities.AssetValuation, error) {
	crypto, err := s.cryptoValuations(ctx, userID)
	if err != nil {
		metrics.ValuationsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	stocks, err := s.stockValuations(ctx, userID)
	if err != nil {
		metrics.ValuationsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	metrics.ValuationsTotal.WithLabelValues("success").Inc()
	return map[entities.AssetClass][]entities.AssetValuation{
		entities.AssetClassCrypto: crypto,
		entities.AssetClassStock:  stocks,
	}, nil
}

// Overview returns the summarized portfolio for a user.
func (s *Service) Overview(ctx context.Context, userID uuid.UUID) (*entities.PortfolioSummary, error) {
	valuations, err := s.Assets(ctx, userID)
	if err != nil {
		return nil, err
	}

	summary := Summarize(valuations)
	summary.PricesAsOf = s.pricesAsOf(valuations)
	return &summary, nil
}

// RefreshPrices re-fetches quotes for every symbol the user currently holds
// and reports the per-class outcome. The request succeeds even when some
// symbols fail; failures surface as stale or unknown prices in the next
// valuation.
func (s *Service) RefreshPrices(ctx context.Context, userID uuid.UUID) (map[entities.AssetClass]prices.RefreshResult, error) {
	transactions, err := s.transactions.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}
	holdings, err := s.holdings.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load holdings: %w", err)
	}

	cryptoSymbols := make([]string, 0, len(transactions))
	for symbol := range s.aggregator.Aggregate(transactions) {
		cryptoSymbols = append(cryptoSymbols, symbol)
	}
	stockSymbols := make([]string, 0, len(holdings))
	for _, h := range holdings {
		stockSymbols = append(stockSymbols, h.TradingSymbol)
	}

	return map[entities.AssetClass]prices.RefreshResult{
		entities.AssetClassCrypto: s.cryptoPrices.Refresh(ctx, cryptoSymbols),
		entities.AssetClassStock:  s.stockPrices.Refresh(ctx, stockSymbols),
	}, nil
}

func (s *Service) cryptoValuations(ctx context.Context, userID uuid.UUID) ([]entities.AssetValuation, error) {
	transactions, err := s.transactions.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}

	positions := s.aggregator.Aggregate(transactions)

	quotes := make(map[string]entities.PriceQuote, len(positions))
	for symbol := range positions {
		if quote, ok := s.cryptoPrices.Get(symbol); ok {
			quotes[symbol] = quote
		}
	}

	return Valuate(entities.AssetClassCrypto, positions, quotes), nil
}

func (s *Service) stockValuations(ctx context.Context, userID uuid.UUID) ([]entities.AssetValuation, error) {
	holdings, err := s.holdings.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load holdings: %w", err)
	}

	positions := make(map[string]entities.Position, len(holdings))
	names := make(map[string]string, len(holdings))
	for _, h := range holdings {
		if h.Quantity.Sign() <= 0 {
			continue
		}
		positions[h.TradingSymbol] = entities.Position{
			Symbol:        h.TradingSymbol,
			TotalQuantity: h.Quantity,
			AverageCost:   h.AveragePrice,
			LastUpdated:   h.UpdatedAt,
		}
		names[h.TradingSymbol] = h.CompanyName

		// The broker's last traded price is better than no price at all.
		if h.LastPrice.Sign() > 0 {
			s.stockPrices.Seed(h.TradingSymbol, h.LastPrice, h.UpdatedAt)
		}
	}

	quotes := make(map[string]entities.PriceQuote, len(positions))
	for symbol := range positions {
		if quote, ok := s.stockPrices.Get(symbol); ok {
			quotes[symbol] = quote
		}
	}

	valuations := Valuate(entities.AssetClassStock, positions, quotes)
	for i := range valuations {
		valuations[i].Name = names[valuations[i].Symbol]
	}
	return valuations, nil
}

// pricesAsOf is the freshest quote timestamp among the symbols that actually
// contributed to the valuation.
func (s *Service) pricesAsOf(valuations map[entities.AssetClass][]entities.AssetValuation) *time.Time {
	var latest time.Time
	caches := map[entities.AssetClass]*prices.Cache{
		entities.AssetClassCrypto: s.cryptoPrices,
		entities.AssetClassStock:  s.stockPrices,
	}
	for class, vals := range valuations {
		cache := caches[class]
		if cache == nil {
			continue
		}
		for _, v := range vals {
			if quote, ok := cache.Get(v.Symbol); ok && quote.AsOf.After(latest) {
				latest = quote.AsOf
			}
		}
	}
	if latest.IsZero() {
		return nil
	}
	return &latest
}
