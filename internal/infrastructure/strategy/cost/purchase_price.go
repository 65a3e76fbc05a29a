package cost

import (
	"context"

	"github.com/erp/reportengine/internal/domain/shared/strategy"
)

// PurchasePriceStrategy values stock at the most recent purchase price
type PurchasePriceStrategy struct {
	strategy.BaseStrategy
}

// NewPurchasePriceStrategy creates a new last purchase price strategy
func NewPurchasePriceStrategy() *PurchasePriceStrategy {
	return &PurchasePriceStrategy{
		BaseStrategy: strategy.NewBaseStrategy(
			strategy.CostMethodPurchasePrice,
			"Unit price of the most recent purchase up to the reference date",
		),
	}
}

// CalculateCost returns the unit price of the latest purchase line, falling back
// to the initial purchase price, then the configured purchase price, then zero
func (s *PurchasePriceStrategy) CalculateCost(
	ctx context.Context,
	costCtx strategy.CostContext,
) strategy.CostResult {
	if entry, ok := latestEntry(costCtx.Purchases, costCtx.ReferenceDate); ok {
		return strategy.CostResult{
			UnitCost:    entry.UnitCost,
			Method:      strategy.CostMethodPurchasePrice,
			Basis:       strategy.CostBasisLastPurchase,
			Quantity:    entry.Quantity,
			TotalCost:   entry.TotalCost,
			EntriesUsed: 1,
		}
	}

	res := strategy.CostResult{Method: strategy.CostMethodPurchasePrice, Basis: strategy.CostBasisNone}
	switch {
	case costCtx.InitialPurchasePrice.IsPositive():
		res.UnitCost = costCtx.InitialPurchasePrice
		res.Basis = strategy.CostBasisInitialPrice
	case costCtx.PurchasePrice.IsPositive():
		res.UnitCost = costCtx.PurchasePrice
		res.Basis = strategy.CostBasisPurchasePrice
	}
	return res
}
