package portfolio

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/wealth-one/wealth_service/internal/domain/entities"
)

var hundred = decimal.NewFromInt(100)

// Valuate combines positions with current prices. It is a pure function:
// no side effects, deterministic for a given input (output sorted by symbol).
// An unknown price yields nil CurrentValue/ProfitLoss/ProfitLossPercent, and
// a non-positive investment yields a nil percentage; missing data is a value
// here, never an error.
func Valuate(class entities.AssetClass, positions map[string]entities.Position, prices map[string]entities.PriceQuote) []entities.AssetValuation {
	valuations := make([]entities.AssetValuation, 0, len(positions))

	for symbol, pos := range positions {
		v := entities.AssetValuation{
			Symbol:      symbol,
			Class:       class,
			Quantity:    pos.TotalQuantity,
			AverageCost: pos.AverageCost,
			Investment:  pos.AverageCost.Mul(pos.TotalQuantity).Add(pos.AccumulatedFees),
		}

		if quote, ok := prices[symbol]; ok && quote.Known() {
			price := *quote.Price
			value := price.Mul(pos.TotalQuantity)
			pnl := value.Sub(v.Investment)

			v.CurrentPrice = &price
			v.CurrentValue = &value
			v.ProfitLoss = &pnl

			if v.Investment.Sign() > 0 {
				pct := pnl.Div(v.Investment).Mul(hundred)
				v.ProfitLossPercent = &pct
			}
		}

		valuations = append(valuations, v)
	}

	sort.Slice(valuations, func(i, j int) bool {
		return valuations[i].Symbol < valuations[j].Symbol
	})

	return valuations
}
