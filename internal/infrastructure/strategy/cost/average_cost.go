package cost

import (
	"context"

	"github.com/erp/reportengine/internal/domain/shared/strategy"
	"github.com/shopspring/decimal"
)

// AverageCostStrategy implements weighted average cost over the opening
// balance and every purchase up to the reference date
type AverageCostStrategy struct {
	strategy.BaseStrategy
	fallback *PurchasePriceStrategy
}

// NewAverageCostStrategy creates a new weighted average cost strategy
func NewAverageCostStrategy() *AverageCostStrategy {
	return &AverageCostStrategy{
		BaseStrategy: strategy.NewBaseStrategy(
			strategy.CostMethodAverageCost,
			"Weighted average of opening stock and purchases up to the reference date",
		),
		fallback: NewPurchasePriceStrategy(),
	}
}

// CalculateCost calculates the weighted average unit cost.
// Opening stock is seeded at the initial purchase price; a non-positive
// opening balance contributes nothing.
func (s *AverageCostStrategy) CalculateCost(
	ctx context.Context,
	costCtx strategy.CostContext,
) strategy.CostResult {
	totalQty := decimal.Zero
	totalCost := decimal.Zero
	if costCtx.OpeningBalance.IsPositive() {
		totalQty = costCtx.OpeningBalance
		totalCost = costCtx.OpeningBalance.Mul(costCtx.InitialPurchasePrice)
	}

	used := 0
	for _, entry := range costCtx.Purchases {
		if !entry.EntryDate.OnOrBefore(costCtx.ReferenceDate) {
			continue
		}
		totalQty = totalQty.Add(entry.Quantity)
		totalCost = totalCost.Add(entry.TotalCost)
		used++
	}

	if totalQty.IsZero() {
		if costCtx.InitialPurchasePrice.IsPositive() {
			return strategy.CostResult{
				UnitCost: costCtx.InitialPurchasePrice,
				Method:   strategy.CostMethodAverageCost,
				Basis:    strategy.CostBasisInitialPrice,
			}
		}
		res := s.fallback.CalculateCost(ctx, costCtx)
		res.Method = strategy.CostMethodAverageCost
		return res
	}

	return strategy.CostResult{
		UnitCost:    totalCost.Div(totalQty),
		Method:      strategy.CostMethodAverageCost,
		Basis:       strategy.CostBasisWeightedAverage,
		Quantity:    totalQty,
		TotalCost:   totalCost,
		EntriesUsed: used,
	}
}
