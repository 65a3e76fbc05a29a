package strategy

import (
	"github.com/erp/reportengine/internal/domain/shared/strategy"
	"github.com/erp/reportengine/internal/infrastructure/strategy/cost"
)

// NewRegistryWithDefaults creates a registry holding the three costing methods,
// with weighted average cost as the default
func NewRegistryWithDefaults() (*StrategyRegistry, error) {
	return NewRegistryWithDefaultMethod(strategy.CostMethodAverageCost.String())
}

// NewRegistryWithDefaultMethod creates a registry holding the three costing methods
// and makes defaultMethod the method used when none is requested
func NewRegistryWithDefaultMethod(defaultMethod string) (*StrategyRegistry, error) {
	r := NewStrategyRegistry()

	strategies := []strategy.CostCalculationStrategy{
		cost.NewAverageCostStrategy(),
		cost.NewPurchasePriceStrategy(),
		cost.NewSalePriceStrategy(),
	}
	for _, s := range strategies {
		if err := r.RegisterCostStrategy(s); err != nil {
			return nil, err
		}
	}

	if err := r.SetDefault(defaultMethod); err != nil {
		return nil, err
	}
	return r, nil
}
