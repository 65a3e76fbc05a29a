package inventory

import (
	"context"

	"github.com/erp/reportengine/internal/domain/ledger"
	"github.com/erp/reportengine/internal/domain/shared"
	"github.com/erp/reportengine/internal/domain/shared/strategy"
	"github.com/erp/reportengine/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// CostStrategyProvider resolves a costing method name to its strategy.
// An empty name selects the provider's default.
type CostStrategyProvider interface {
	GetCostStrategy(name string) (strategy.CostCalculationStrategy, error)
}

// ValuationInput holds everything a valuation reads
type ValuationInput struct {
	Items []Item
	// Opening is the company-wide aggregated opening balance.
	Opening OpeningBalances
	// StoreItems and Stores are only read by scoped valuations.
	StoreItems []StoreItem
	Stores     []Store
	Ledgers    ledger.Ledgers
	EndDate    valueobject.Date
	Method     string
	Scope      Scope
}

// ValuationResult is one item's balance and value at the end date
type ValuationResult struct {
	Item    Item               `json:"item"`
	Balance decimal.Decimal    `json:"balance"`
	Cost    decimal.Decimal    `json:"cost"`
	Value   decimal.Decimal    `json:"value"`
	Basis   strategy.CostBasis `json:"basis"`
}

// Valuation is the per-item valuation plus its total
type Valuation struct {
	Method     strategy.CostMethod `json:"method"`
	EndDate    valueobject.Date    `json:"end_date"`
	Scope      Scope               `json:"scope"`
	Results    []ValuationResult   `json:"results"`
	TotalValue decimal.Decimal     `json:"total_value"`
}

// Valuator computes inventory balances and values
type Valuator struct {
	costs CostStrategyProvider
}

// NewValuator creates a valuator resolving methods through costs
func NewValuator(costs CostStrategyProvider) *Valuator {
	return &Valuator{costs: costs}
}

// Value computes balance, unit cost and value for every stock-tracked item as of
// in.EndDate. Company-wide valuations ignore warehouse transfers; scoped
// valuations credit the destination store and debit the source store.
// Unit costs always come from the company-wide purchase and sales ledgers.
func (v *Valuator) Value(ctx context.Context, in ValuationInput) (Valuation, error) {
	if err := in.validate(); err != nil {
		return Valuation{}, err
	}
	costStrategy, err := v.costs.GetCostStrategy(in.Method)
	if err != nil {
		return Valuation{}, err
	}

	idx := buildIndex(in.Ledgers, in.Scope, in.Stores)
	balances := in.Opening
	if !in.Scope.IsCompanyWide() {
		stores := in.Scope.storeSet(in.Stores)
		balances = AggregateOpeningBalancesIn(in.StoreItems, func(id string) bool { return stores[id] })
	}

	items := sortedItems(in.Items)
	out := Valuation{
		Method:     costStrategy.Method(),
		EndDate:    in.EndDate,
		Scope:      in.Scope,
		Results:    make([]ValuationResult, 0, len(items)),
		TotalValue: decimal.Zero,
	}
	for _, item := range items {
		m := idx.of(item.Code)
		balance := balances.Of(item.Code).Add(m.quantityAsOf(in.EndDate))

		res := costStrategy.CalculateCost(ctx, strategy.CostContext{
			ItemCode:             item.Code,
			OpeningBalance:       in.Opening.Of(item.Code),
			InitialPurchasePrice: item.InitialPurchasePrice,
			PurchasePrice:        item.PurchasePrice,
			SalePrice:            item.SalePrice,
			ReferenceDate:        in.EndDate,
			Purchases:            m.purchases,
			Sales:                m.sales,
		})

		value := balance.Mul(res.UnitCost)
		out.Results = append(out.Results, ValuationResult{
			Item:    item,
			Balance: balance,
			Cost:    res.UnitCost,
			Value:   value,
			Basis:   res.Basis,
		})
		out.TotalValue = out.TotalValue.Add(value)
	}
	return out, nil
}

// InitialValue values the aggregated opening balances at each item's initial
// purchase price, ignoring all ledger activity
func InitialValue(items []Item, opening OpeningBalances) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		if !item.IsStockTracked() {
			continue
		}
		total = total.Add(opening.Of(item.Code).Mul(item.InitialPurchasePrice))
	}
	return total
}

func (in ValuationInput) validate() error {
	if in.Items == nil {
		return shared.NewMissingCollectionError("items")
	}
	if in.Opening == nil {
		return shared.NewMissingCollectionError("opening_balances")
	}
	if err := in.Ledgers.Require(ledger.InventoryKinds()...); err != nil {
		return err
	}
	if !in.Scope.IsCompanyWide() {
		if in.Stores == nil {
			return shared.NewMissingCollectionError("stores")
		}
		if in.StoreItems == nil {
			return shared.NewMissingCollectionError("store_items")
		}
	}
	if in.EndDate.IsZero() {
		return shared.NewInvalidInputError("end date is required")
	}
	return nil
}
