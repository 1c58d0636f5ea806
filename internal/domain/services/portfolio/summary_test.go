package portfolio

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wealth-one/wealth_service/internal/domain/entities"
)

func valuation(symbol string, class entities.AssetClass, investment, currentValue string) entities.AssetValuation {
	v := entities.AssetValuation{
		Symbol:     symbol,
		Class:      class,
		Investment: dec(investment),
	}
	if currentValue != "" {
		cv := dec(currentValue)
		v.CurrentValue = &cv
	}
	return v
}

func TestSummarizeAllocation(t *testing.T) {
	summary := Summarize(map[entities.AssetClass][]entities.AssetValuation{
		entities.AssetClassCrypto: {valuation("BTCINR", entities.AssetClassCrypto, "500", "600")},
		entities.AssetClassStock:  {valuation("TCS", entities.AssetClassStock, "450", "400")},
	})

	assert.True(t, summary.TotalInvestment.Equal(dec("950")))
	assert.True(t, summary.TotalCurrentValue.Equal(dec("1000")))
	assert.True(t, summary.TotalReturn.Equal(dec("50")))

	crypto := summary.Classes[entities.AssetClassCrypto]
	stock := summary.Classes[entities.AssetClassStock]
	assert.True(t, crypto.AllocationPercent.Equal(dec("60")), "crypto allocation: %s", crypto.AllocationPercent)
	assert.True(t, stock.AllocationPercent.Equal(dec("40")), "stock allocation: %s", stock.AllocationPercent)

	total := crypto.AllocationPercent.Add(stock.AllocationPercent)
	assert.True(t, total.Equal(dec("100")))
}

func TestSummarizeUnknownPriceFallsBackToInvestment(t *testing.T) {
	summary := Summarize(map[entities.AssetClass][]entities.AssetValuation{
		entities.AssetClassCrypto: {
			valuation("BTCINR", entities.AssetClassCrypto, "300", "450"),
			valuation("OBSCURE", entities.AssetClassCrypto, "200", ""), // unknown price
		},
	})

	// 450 + 200: the unpriced asset contributes its cost basis.
	assert.True(t, summary.TotalCurrentValue.Equal(dec("650")))
	assert.True(t, summary.TotalReturn.Equal(dec("150")))
}

func TestSummarizeEmptyPortfolio(t *testing.T) {
	summary := Summarize(map[entities.AssetClass][]entities.AssetValuation{})

	assert.True(t, summary.TotalInvestment.IsZero())
	assert.True(t, summary.TotalCurrentValue.IsZero())
	assert.True(t, summary.TotalReturnPercent.IsZero(), "percentage degrades to zero, never NaN")
	assert.Empty(t, summary.TopHoldings)
}

func TestSummarizeZeroValueAllocations(t *testing.T) {
	summary := Summarize(map[entities.AssetClass][]entities.AssetValuation{
		entities.AssetClassCrypto: {valuation("FREE", entities.AssetClassCrypto, "0", "0")},
	})

	cs := summary.Classes[entities.AssetClassCrypto]
	assert.True(t, cs.ReturnPercent.IsZero())
	assert.True(t, cs.AllocationPercent.IsZero())
}

func TestSummarizeTopHoldings(t *testing.T) {
	var vals []entities.AssetValuation
	for i := 1; i <= 12; i++ {
		vals = append(vals, valuation(
			fmt.Sprintf("SYM%02d", i),
			entities.AssetClassCrypto,
			"10",
			fmt.Sprintf("%d", i*100),
		))
	}

	summary := Summarize(map[entities.AssetClass][]entities.AssetValuation{
		entities.AssetClassCrypto: vals,
	})

	require.Len(t, summary.TopHoldings, 10)
	assert.Equal(t, "SYM12", summary.TopHoldings[0].Symbol)
	assert.Equal(t, "SYM03", summary.TopHoldings[9].Symbol)
}
