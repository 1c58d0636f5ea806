package portfolio

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wealth-one/wealth_service/internal/domain/entities"
	"github.com/wealth-one/wealth_service/internal/domain/services/prices"
	"github.com/wealth-one/wealth_service/internal/infrastructure/marketdata"
)

type stubTransactionStore struct {
	transactions []entities.Transaction
}

func (s *stubTransactionStore) ListByUser(context.Context, uuid.UUID) ([]entities.Transaction, error) {
	return s.transactions, nil
}

type stubHoldingStore struct {
	holdings []entities.Holding
}

func (s *stubHoldingStore) ListByUser(context.Context, uuid.UUID) ([]entities.Holding, error) {
	return s.holdings, nil
}

type mapFetcher map[string]decimal.Decimal

func (f mapFetcher) FetchQuote(_ context.Context, symbol string) (decimal.Decimal, error) {
	price, ok := f[symbol]
	if !ok {
		return decimal.Decimal{}, marketdata.ErrNoQuote
	}
	return price, nil
}

func newTestService(transactions []entities.Transaction, holdings []entities.Holding, cryptoQuotes mapFetcher) *Service {
	log := zap.NewNop()
	return NewService(
		&stubTransactionStore{transactions: transactions},
		&stubHoldingStore{holdings: holdings},
		NewAggregator(log),
		prices.NewCache(entities.AssetClassCrypto, cryptoQuotes, nil, log),
		prices.NewCache(entities.AssetClassStock, mapFetcher{}, nil, log),
		log,
	)
}

func TestOverviewCombinesLedgerAndHoldings(t *testing.T) {
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	transactions := []entities.Transaction{
		tx("BTCINR", entities.SideBuy, "2", "100", "1", base),
		tx("BTCINR", entities.SideBuy, "2", "200", "1", base.Add(time.Hour)),
		tx("BTCINR", entities.SideSell, "1", "250", "1", base.Add(2*time.Hour)),
	}
	holdings := []entities.Holding{
		{
			TradingSymbol: "TCS",
			CompanyName:   "Tata Consultancy Services",
			Quantity:      dec("10"),
			AveragePrice:  dec("40"),
			LastPrice:     dec("50"),
			UpdatedAt:     base,
		},
	}

	svc := newTestService(transactions, holdings, mapFetcher{"BTCINR": dec("200")})
	userID := uuid.New()

	// Warm the crypto cache the same way the scheduler would.
	_, err := svc.RefreshPrices(context.Background(), userID)
	require.NoError(t, err)

	summary, err := svc.Overview(context.Background(), userID)
	require.NoError(t, err)

	// crypto: 150*3+3 = 453 invested, 600 current
	// stock: 40*10 = 400 invested, 500 current (broker last price)
	assert.True(t, summary.TotalInvestment.Equal(dec("853")), "investment: %s", summary.TotalInvestment)
	assert.True(t, summary.TotalCurrentValue.Equal(dec("1100")), "current: %s", summary.TotalCurrentValue)
	assert.True(t, summary.TotalReturn.Equal(dec("247")))
	require.NotNil(t, summary.PricesAsOf)

	crypto := summary.Classes[entities.AssetClassCrypto]
	assert.True(t, crypto.CurrentValue.Equal(dec("600")))
	stock := summary.Classes[entities.AssetClassStock]
	assert.True(t, stock.CurrentValue.Equal(dec("500")))
}

func TestAssetsCarriesCompanyNames(t *testing.T) {
	holdings := []entities.Holding{
		{
			TradingSymbol: "INFY",
			CompanyName:   "Infosys",
			Quantity:      dec("5"),
			AveragePrice:  dec("1000"),
			LastPrice:     dec("1500"),
			UpdatedAt:     time.Now(),
		},
	}

	svc := newTestService(nil, holdings, mapFetcher{})
	valuations, err := svc.Assets(context.Background(), uuid.New())
	require.NoError(t, err)

	stocks := valuations[entities.AssetClassStock]
	require.Len(t, stocks, 1)
	assert.Equal(t, "INFY", stocks[0].Symbol)
	assert.Equal(t, "Infosys", stocks[0].Name)
	require.NotNil(t, stocks[0].CurrentPrice, "broker last price seeds the stock cache")
	assert.True(t, stocks[0].CurrentPrice.Equal(dec("1500")))
}

func TestAssetsSkipsNonPositiveHoldings(t *testing.T) {
	holdings := []entities.Holding{
		{TradingSymbol: "SOLD", Quantity: decimal.Zero, AveragePrice: dec("10")},
	}

	svc := newTestService(nil, holdings, mapFetcher{})
	valuations, err := svc.Assets(context.Background(), uuid.New())
	require.NoError(t, err)

	assert.Empty(t, valuations[entities.AssetClassStock])
	assert.Empty(t, valuations[entities.AssetClassCrypto])
}

func TestValuationWithoutRefreshFallsBackToCost(t *testing.T) {
	base := time.Now()
	transactions := []entities.Transaction{
		tx("ETHINR", entities.SideBuy, "2", "100", "0", base),
	}

	svc := newTestService(transactions, nil, mapFetcher{"ETHINR": dec("150")})

	// No refresh has run; the cache is cold and the asset is valued at cost.
	summary, err := svc.Overview(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.True(t, summary.TotalCurrentValue.Equal(dec("200")))
	assert.Nil(t, summary.PricesAsOf)
}
