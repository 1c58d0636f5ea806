package prices

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wealth-one/wealth_service/internal/domain/entities"
	"github.com/wealth-one/wealth_service/internal/infrastructure/marketdata"
)

type stubFetcher struct {
	mu     sync.Mutex
	prices map[string]decimal.Decimal
	errs   map[string]error
	calls  map[string]int
}

func newStubFetcher() *stubFetcher {
	return &stubFetcher{
		prices: make(map[string]decimal.Decimal),
		errs:   make(map[string]error),
		calls:  make(map[string]int),
	}
}

func (f *stubFetcher) FetchQuote(_ context.Context, symbol string) (decimal.Decimal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[symbol]++
	if err, ok := f.errs[symbol]; ok {
		return decimal.Decimal{}, err
	}
	return f.prices[symbol], nil
}

type stubStore struct {
	mu     sync.Mutex
	saved  map[string]entities.PriceQuote
	loaded map[string]entities.PriceQuote
}

func (s *stubStore) Save(_ context.Context, _ entities.AssetClass, quotes map[string]entities.PriceQuote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = quotes
	return nil
}

func (s *stubStore) Load(_ context.Context, _ entities.AssetClass) (map[string]entities.PriceQuote, error) {
	if s.loaded == nil {
		return map[string]entities.PriceQuote{}, nil
	}
	return s.loaded, nil
}

func mustDec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestRefreshSettlesEverySymbol(t *testing.T) {
	fetcher := newStubFetcher()
	fetcher.prices["BTCINR"] = mustDec("100")
	fetcher.errs["GONE"] = marketdata.ErrNoQuote
	fetcher.errs["FLAKY"] = errors.New("connection reset")

	cache := NewCache(entities.AssetClassCrypto, fetcher, nil, zap.NewNop())
	result := cache.Refresh(context.Background(), []string{"BTCINR", "GONE", "FLAKY"})

	assert.Equal(t, 1, result.Updated)
	assert.ElementsMatch(t, []string{"GONE", "FLAKY"}, result.Failed)

	btc, ok := cache.Get("BTCINR")
	require.True(t, ok)
	require.True(t, btc.Known())
	assert.True(t, btc.Price.Equal(mustDec("100")))

	gone, ok := cache.Get("GONE")
	require.True(t, ok)
	assert.False(t, gone.Known(), "a definitive no-quote answer records an unknown price")

	flaky, ok := cache.Get("FLAKY")
	require.True(t, ok)
	assert.False(t, flaky.Known(), "first failure with no prior quote leaves the price unknown")
}

func TestRefreshRetainsStaleQuoteOnFailure(t *testing.T) {
	fetcher := newStubFetcher()
	fetcher.prices["ETHINR"] = mustDec("50")

	cache := NewCache(entities.AssetClassCrypto, fetcher, nil, zap.NewNop())
	cache.Refresh(context.Background(), []string{"ETHINR"})

	// Provider starts failing; the old quote must survive.
	fetcher.mu.Lock()
	fetcher.errs["ETHINR"] = errors.New("provider down")
	fetcher.mu.Unlock()

	result := cache.Refresh(context.Background(), []string{"ETHINR"})
	assert.Equal(t, []string{"ETHINR"}, result.Failed)

	q, ok := cache.Get("ETHINR")
	require.True(t, ok)
	require.True(t, q.Known(), "stale beats absent")
	assert.True(t, q.Price.Equal(mustDec("50")))
}

func TestRefreshDeduplicatesSymbols(t *testing.T) {
	fetcher := newStubFetcher()
	fetcher.prices["BTCINR"] = mustDec("100")

	cache := NewCache(entities.AssetClassCrypto, fetcher, nil, zap.NewNop())
	cache.Refresh(context.Background(), []string{"BTCINR", "BTCINR", "", "BTCINR"})

	assert.Equal(t, 1, fetcher.calls["BTCINR"])
}

func TestRefreshPersistsSnapshot(t *testing.T) {
	fetcher := newStubFetcher()
	fetcher.prices["BTCINR"] = mustDec("100")
	store := &stubStore{}

	cache := NewCache(entities.AssetClassCrypto, fetcher, store, zap.NewNop())
	cache.Refresh(context.Background(), []string{"BTCINR"})

	store.mu.Lock()
	defer store.mu.Unlock()
	require.Contains(t, store.saved, "BTCINR")
	assert.True(t, store.saved["BTCINR"].Known())
}

func TestPrimeLoadsSnapshotWithoutOverwriting(t *testing.T) {
	price := mustDec("90")
	store := &stubStore{loaded: map[string]entities.PriceQuote{
		"BTCINR": {Symbol: "BTCINR", Price: &price, AsOf: time.Now().Add(-time.Hour)},
	}}

	cache := NewCache(entities.AssetClassCrypto, newStubFetcher(), store, zap.NewNop())
	fresh := mustDec("100")
	cache.Seed("BTCINR", fresh, time.Now())
	cache.Prime(context.Background())

	q, ok := cache.Get("BTCINR")
	require.True(t, ok)
	assert.True(t, q.Price.Equal(fresh), "prime must not clobber an existing quote")
}

func TestSeedDoesNotOverwriteKnownQuote(t *testing.T) {
	fetcher := newStubFetcher()
	fetcher.prices["TCS"] = mustDec("4000")

	cache := NewCache(entities.AssetClassStock, fetcher, nil, zap.NewNop())
	cache.Refresh(context.Background(), []string{"TCS"})
	cache.Seed("TCS", mustDec("3500"), time.Now())

	q, _ := cache.Get("TCS")
	assert.True(t, q.Price.Equal(mustDec("4000")), "a fetched quote wins over a broker seed")

	cache.Seed("INFY", mustDec("1500"), time.Now())
	infy, ok := cache.Get("INFY")
	require.True(t, ok)
	assert.True(t, infy.Price.Equal(mustDec("1500")))
}
