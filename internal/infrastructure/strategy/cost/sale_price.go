package cost

import (
	"context"

	"github.com/erp/reportengine/internal/domain/shared/strategy"
	"github.com/erp/reportengine/internal/domain/shared/valueobject"
)

// SalePriceStrategy values stock at the most recent selling price
type SalePriceStrategy struct {
	strategy.BaseStrategy
}

// NewSalePriceStrategy creates a new last sale price strategy
func NewSalePriceStrategy() *SalePriceStrategy {
	return &SalePriceStrategy{
		BaseStrategy: strategy.NewBaseStrategy(
			strategy.CostMethodSalePrice,
			"Unit price of the most recent sale up to the reference date",
		),
	}
}

// CalculateCost returns the unit price of the latest sales line, falling back
// to the configured sale price, then the initial purchase price
func (s *SalePriceStrategy) CalculateCost(
	ctx context.Context,
	costCtx strategy.CostContext,
) strategy.CostResult {
	if entry, ok := latestEntry(costCtx.Sales, costCtx.ReferenceDate); ok {
		return strategy.CostResult{
			UnitCost:    entry.UnitCost,
			Method:      strategy.CostMethodSalePrice,
			Basis:       strategy.CostBasisLastSale,
			Quantity:    entry.Quantity,
			TotalCost:   entry.TotalCost,
			EntriesUsed: 1,
		}
	}

	if costCtx.SalePrice.IsPositive() {
		return strategy.CostResult{
			UnitCost: costCtx.SalePrice,
			Method:   strategy.CostMethodSalePrice,
			Basis:    strategy.CostBasisSalePrice,
		}
	}
	return strategy.CostResult{
		UnitCost: costCtx.InitialPurchasePrice,
		Method:   strategy.CostMethodSalePrice,
		Basis:    strategy.CostBasisInitialPrice,
	}
}

// latestEntry picks the entry with the latest date on or before ref.
// Equal dates resolve to the entry recorded last.
func latestEntry(entries []strategy.StockEntry, ref valueobject.Date) (strategy.StockEntry, bool) {
	var best strategy.StockEntry
	found := false
	for _, e := range entries {
		if !e.EntryDate.OnOrBefore(ref) {
			continue
		}
		if !found {
			best, found = e, true
			continue
		}
		switch c := e.EntryDate.Compare(best.EntryDate); {
		case c > 0, c == 0 && e.Seq > best.Seq:
			best = e
		}
	}
	return best, found
}
