package marketdata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wealth-one/wealth_service/internal/infrastructure/config"
)

func testStockConfig(baseURL string) config.MarketsConfig {
	return config.MarketsConfig{
		StockAPI: config.StockAPIConfig{
			BaseURL: baseURL,
			APIKey:  "rapid-key",
			Host:    "indian-stock-exchange-api2.p.rapidapi.com",
		},
		RequestTimeout: 5,
	}
}

func TestStockInfo(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/stock", r.URL.Path)
		assert.Equal(t, "RELIANCE", r.URL.Query().Get("name"))
		assert.Equal(t, "rapid-key", r.Header.Get("x-rapidapi-key"))
		assert.Equal(t, "indian-stock-exchange-api2.p.rapidapi.com", r.Header.Get("x-rapidapi-host"))

		// The provider returns prices as strings.
		w.Write([]byte(`{
			"companyName": "Reliance Industries",
			"industry": "Oil & Gas",
			"currentPrice": {"NSE": "2890.55", "BSE": "2889.10"}
		}`))
	}))
	defer server.Close()

	client := NewStockAPIClient(testStockConfig(server.URL), zap.NewNop())
	info, err := client.StockInfo(context.Background(), "RELIANCE")
	require.NoError(t, err)

	assert.Equal(t, "Reliance Industries", info.CompanyName)
	assert.Equal(t, "Oil & Gas", info.Industry)
	require.NotNil(t, info.NSEPrice)
	assert.True(t, info.NSEPrice.Equal(decimal.RequireFromString("2890.55")))
}

func TestStockInfoUnknownCompany(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewStockAPIClient(testStockConfig(server.URL), zap.NewNop())
	_, err := client.StockInfo(context.Background(), "NOPE")
	assert.ErrorIs(t, err, ErrNoQuote)
}

func TestFetchQuotePrefersNSE(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"companyName":"TCS","currentPrice":{"NSE":4100,"BSE":4099}}`))
	}))
	defer server.Close()

	client := NewStockAPIClient(testStockConfig(server.URL), zap.NewNop())
	price, err := client.FetchQuote(context.Background(), "TCS")
	require.NoError(t, err)
	assert.True(t, price.Equal(decimal.NewFromInt(4100)))
}

func TestFetchQuoteFallsBackToBSE(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"companyName":"Some Co","currentPrice":{"BSE":150}}`))
	}))
	defer server.Close()

	client := NewStockAPIClient(testStockConfig(server.URL), zap.NewNop())
	price, err := client.FetchQuote(context.Background(), "SOMECO")
	require.NoError(t, err)
	assert.True(t, price.Equal(decimal.NewFromInt(150)))
}

func TestFetchQuoteNoPricesAtAll(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"companyName":"Delisted Ltd","currentPrice":{}}`))
	}))
	defer server.Close()

	client := NewStockAPIClient(testStockConfig(server.URL), zap.NewNop())
	_, err := client.FetchQuote(context.Background(), "DELISTED")
	assert.ErrorIs(t, err, ErrNoQuote)
}
