package portfolio

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wealth-one/wealth_service/internal/domain/entities"
)

func quote(symbol, price string) entities.PriceQuote {
	p := dec(price)
	return entities.PriceQuote{Symbol: symbol, Price: &p, AsOf: time.Now()}
}

func TestValuateWithKnownPrice(t *testing.T) {
	positions := map[string]entities.Position{
		"BTCINR": {Symbol: "BTCINR", TotalQuantity: dec("3"), AverageCost: dec("150"), AccumulatedFees: dec("3")},
	}
	prices := map[string]entities.PriceQuote{
		"BTCINR": quote("BTCINR", "200"),
	}

	valuations := Valuate(entities.AssetClassCrypto, positions, prices)
	require.Len(t, valuations, 1)

	v := valuations[0]
	assert.True(t, v.Investment.Equal(dec("453")))
	require.NotNil(t, v.CurrentValue)
	assert.True(t, v.CurrentValue.Equal(dec("600")))
	require.NotNil(t, v.ProfitLoss)
	assert.True(t, v.ProfitLoss.Equal(dec("147")))
	require.NotNil(t, v.ProfitLossPercent)
	// 147/453*100
	expected := dec("147").Div(dec("453")).Mul(dec("100"))
	assert.True(t, v.ProfitLossPercent.Equal(expected))
}

func TestValuateUnknownPriceLeavesNilFields(t *testing.T) {
	positions := map[string]entities.Position{
		"OBSCURE": {Symbol: "OBSCURE", TotalQuantity: dec("2"), AverageCost: dec("10")},
	}

	for name, prices := range map[string]map[string]entities.PriceQuote{
		"no quote at all": {},
		"quote with nil price": {
			"OBSCURE": {Symbol: "OBSCURE", Price: nil, AsOf: time.Now()},
		},
	} {
		valuations := Valuate(entities.AssetClassCrypto, positions, prices)
		require.Len(t, valuations, 1, name)

		v := valuations[0]
		assert.True(t, v.Investment.Equal(dec("20")), name)
		assert.Nil(t, v.CurrentPrice, name)
		assert.Nil(t, v.CurrentValue, name)
		assert.Nil(t, v.ProfitLoss, name)
		assert.Nil(t, v.ProfitLossPercent, name)
		assert.True(t, v.EffectiveValue().Equal(dec("20")), name)
	}
}

func TestValuateZeroInvestmentHasNilPercent(t *testing.T) {
	positions := map[string]entities.Position{
		"FREE": {Symbol: "FREE", TotalQuantity: dec("5"), AverageCost: decimal.Zero},
	}
	prices := map[string]entities.PriceQuote{
		"FREE": quote("FREE", "10"),
	}

	valuations := Valuate(entities.AssetClassCrypto, positions, prices)
	require.Len(t, valuations, 1)

	v := valuations[0]
	require.NotNil(t, v.ProfitLoss)
	assert.True(t, v.ProfitLoss.Equal(dec("50")))
	assert.Nil(t, v.ProfitLossPercent, "no percentage against a zero cost basis")
}

func TestValuateOutputSortedBySymbol(t *testing.T) {
	positions := map[string]entities.Position{
		"ZEC": {Symbol: "ZEC", TotalQuantity: dec("1"), AverageCost: dec("1")},
		"ADA": {Symbol: "ADA", TotalQuantity: dec("1"), AverageCost: dec("1")},
		"LTC": {Symbol: "LTC", TotalQuantity: dec("1"), AverageCost: dec("1")},
	}

	valuations := Valuate(entities.AssetClassCrypto, positions, nil)
	require.Len(t, valuations, 3)
	assert.Equal(t, "ADA", valuations[0].Symbol)
	assert.Equal(t, "LTC", valuations[1].Symbol)
	assert.Equal(t, "ZEC", valuations[2].Symbol)
}
