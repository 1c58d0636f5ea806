package prices

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/wealth-one/wealth_service/internal/domain/entities"
	"github.com/wealth-one/wealth_service/internal/infrastructure/marketdata"
	"github.com/wealth-one/wealth_service/pkg/metrics"
)

// QuoteFetcher fetches the current price for one symbol from a market-data
// provider. marketdata.ErrNoQuote means the provider answered but has no
// quote for the symbol.
type QuoteFetcher interface {
	FetchQuote(ctx context.Context, symbol string) (decimal.Decimal, error)
}

// SnapshotStore persists quote maps across restarts.
type SnapshotStore interface {
	Save(ctx context.Context, class entities.AssetClass, quotes map[string]entities.PriceQuote) error
	Load(ctx context.Context, class entities.AssetClass) (map[string]entities.PriceQuote, error)
}

// RefreshResult reports the outcome of one refresh cycle.
type RefreshResult struct {
	Updated int
	Failed  []string
}

// Cache holds the last known quote per symbol for one asset class. Refresh
// fans out to the provider and settles every symbol independently, so one
// failing symbol never blocks the rest. A stale quote beats no quote: fetch
// failures retain the previous value.
type Cache struct {
	class   entities.AssetClass
	fetcher QuoteFetcher
	store   SnapshotStore
	logger  *zap.Logger

	mu     sync.RWMutex
	quotes map[string]entities.PriceQuote
}

// NewCache creates a price cache for one asset class. store may be nil when
// persistence across restarts is not wanted.
func NewCache(class entities.AssetClass, fetcher QuoteFetcher, store SnapshotStore, logger *zap.Logger) *Cache {
	return &Cache{
		class:   class,
		fetcher: fetcher,
		store:   store,
		logger:  logger,
		quotes:  make(map[string]entities.PriceQuote),
	}
}

// Class returns the asset class this cache serves.
func (c *Cache) Class() entities.AssetClass {
	return c.class
}

// Prime loads the persisted snapshot into the cache. Called once at startup;
// a missing or unreadable snapshot just leaves the cache empty.
func (c *Cache) Prime(ctx context.Context) {
	if c.store == nil {
		return
	}
	quotes, err := c.store.Load(ctx, c.class)
	if err != nil {
		c.logger.Warn("Failed to load price snapshot", zap.String("class", string(c.class)), zap.Error(err))
		return
	}

	c.mu.Lock()
	for symbol, quote := range quotes {
		if _, ok := c.quotes[symbol]; !ok {
			c.quotes[symbol] = quote
		}
	}
	c.mu.Unlock()

	if len(quotes) > 0 {
		c.logger.Info("Primed price cache from snapshot",
			zap.String("class", string(c.class)),
			zap.Int("quotes", len(quotes)),
		)
	}
}

// Seed records a quote without hitting the provider, used to carry
// broker-reported last prices into the cache. Existing quotes win: a seed
// never overwrites a fetched price.
func (c *Cache) Seed(symbol string, price decimal.Decimal, asOf time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.quotes[symbol]; ok && existing.Known() {
		return
	}
	p := price
	c.quotes[symbol] = entities.PriceQuote{Symbol: symbol, Price: &p, AsOf: asOf}
}

// Get returns the cached quote for a symbol.
func (c *Cache) Get(symbol string) (entities.PriceQuote, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	quote, ok := c.quotes[symbol]
	return quote, ok
}

// Snapshot returns a copy of all cached quotes.
func (c *Cache) Snapshot() map[string]entities.PriceQuote {
	c.mu.RLock()
	defer c.mu.RUnlock()
	quotes := make(map[string]entities.PriceQuote, len(c.quotes))
	for symbol, quote := range c.quotes {
		quotes[symbol] = quote
	}
	return quotes
}

// Refresh fetches current prices for the given symbols concurrently and waits
// for every fetch to settle. Per symbol:
//   - success: the quote is replaced;
//   - provider reports no quote: an unknown-price quote is recorded;
//   - transport failure: the previous quote, if any, is retained.
//
// The updated cache is persisted to the snapshot store best-effort.
func (c *Cache) Refresh(ctx context.Context, symbols []string) RefreshResult {
	start := time.Now()
	symbols = dedupe(symbols)

	type outcome struct {
		symbol  string
		price   decimal.Decimal
		noQuote bool
		err     error
	}

	results := make([]outcome, len(symbols))
	var wg sync.WaitGroup
	for i, symbol := range symbols {
		wg.Add(1)
		go func(i int, symbol string) {
			defer wg.Done()
			price, err := c.fetcher.FetchQuote(ctx, symbol)
			results[i] = outcome{
				symbol:  symbol,
				price:   price,
				noQuote: errors.Is(err, marketdata.ErrNoQuote),
				err:     err,
			}
		}(i, symbol)
	}
	wg.Wait()

	now := time.Now()
	var result RefreshResult
	stale := 0

	c.mu.Lock()
	for _, r := range results {
		switch {
		case r.err == nil:
			p := r.price
			c.quotes[r.symbol] = entities.PriceQuote{Symbol: r.symbol, Price: &p, AsOf: now}
			result.Updated++
		case r.noQuote:
			// Definitive answer: the provider has no price for this symbol.
			c.quotes[r.symbol] = entities.PriceQuote{Symbol: r.symbol, Price: nil, AsOf: now}
			result.Failed = append(result.Failed, r.symbol)
		default:
			if _, ok := c.quotes[r.symbol]; !ok {
				c.quotes[r.symbol] = entities.PriceQuote{Symbol: r.symbol, Price: nil, AsOf: now}
			} else {
				stale++
			}
			result.Failed = append(result.Failed, r.symbol)
			c.logger.Warn("Price fetch failed, keeping previous quote",
				zap.String("class", string(c.class)),
				zap.String("symbol", r.symbol),
				zap.Error(r.err),
			)
		}
	}
	snapshot := make(map[string]entities.PriceQuote, len(c.quotes))
	for symbol, quote := range c.quotes {
		snapshot[symbol] = quote
	}
	c.mu.Unlock()

	metrics.PriceRefreshDuration.WithLabelValues(string(c.class)).Observe(time.Since(start).Seconds())
	metrics.StaleQuotesGauge.WithLabelValues(string(c.class)).Set(float64(stale))

	if c.store != nil {
		if err := c.store.Save(ctx, c.class, snapshot); err != nil {
			c.logger.Warn("Failed to persist price snapshot", zap.String("class", string(c.class)), zap.Error(err))
		}
	}

	c.logger.Info("Price refresh completed",
		zap.String("class", string(c.class)),
		zap.Int("requested", len(symbols)),
		zap.Int("updated", result.Updated),
		zap.Int("failed", len(result.Failed)),
		zap.Duration("duration", time.Since(start)),
	)

	return result
}

func dedupe(symbols []string) []string {
	seen := make(map[string]struct{}, len(symbols))
	out := symbols[:0:0]
	for _, s := range symbols {
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
