package portfolio

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/wealth-one/wealth_service/internal/domain/entities"
)

const topHoldingsLimit = 10

// Summarize rolls per-class valuations up into portfolio totals. An asset
// with an unknown price contributes its investment to the current value
// (assume no change from cost, never worthless). Percentages degrade to zero
// rather than NaN when the corresponding denominator is zero.
func Summarize(valuationsByClass map[entities.AssetClass][]entities.AssetValuation) entities.PortfolioSummary {
	summary := entities.PortfolioSummary{
		Classes: make(map[entities.AssetClass]entities.ClassSummary, len(valuationsByClass)),
	}

	var holdings []entities.AssetValuation

	for class, valuations := range valuationsByClass {
		cs := entities.ClassSummary{Class: class}
		for _, v := range valuations {
			cs.Investment = cs.Investment.Add(v.Investment)
			cs.CurrentValue = cs.CurrentValue.Add(v.EffectiveValue())
			holdings = append(holdings, v)
		}
		cs.Return = cs.CurrentValue.Sub(cs.Investment)
		if cs.Investment.Sign() > 0 {
			cs.ReturnPercent = cs.Return.Div(cs.Investment).Mul(hundred)
		}
		summary.Classes[class] = cs

		summary.TotalInvestment = summary.TotalInvestment.Add(cs.Investment)
		summary.TotalCurrentValue = summary.TotalCurrentValue.Add(cs.CurrentValue)
	}

	summary.TotalReturn = summary.TotalCurrentValue.Sub(summary.TotalInvestment)
	if summary.TotalInvestment.Sign() > 0 {
		summary.TotalReturnPercent = summary.TotalReturn.Div(summary.TotalInvestment).Mul(hundred)
	}

	for class, cs := range summary.Classes {
		if summary.TotalCurrentValue.Sign() > 0 {
			cs.AllocationPercent = cs.CurrentValue.Div(summary.TotalCurrentValue).Mul(hundred)
		} else {
			cs.AllocationPercent = decimal.Zero
		}
		summary.Classes[class] = cs
	}

	sort.SliceStable(holdings, func(i, j int) bool {
		return holdings[i].EffectiveValue().GreaterThan(holdings[j].EffectiveValue())
	})
	if len(holdings) > topHoldingsLimit {
		holdings = holdings[:topHoldingsLimit]
	}
	summary.TopHoldings = holdings

	return summary
}
