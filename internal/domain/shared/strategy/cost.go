package strategy

import (
	"context"
	"strings"

	"github.com/erp/reportengine/internal/domain/shared"
	"github.com/erp/reportengine/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// CostMethod represents the inventory costing method
type CostMethod string

const (
	CostMethodAverageCost   CostMethod = "average_cost"
	CostMethodPurchasePrice CostMethod = "purchase_price"
	CostMethodSalePrice     CostMethod = "sale_price"
)

// String returns the string representation of the cost method
func (m CostMethod) String() string {
	return string(m)
}

// IsValid returns true if the method is one of the known costing methods
func (m CostMethod) IsValid() bool {
	switch m {
	case CostMethodAverageCost, CostMethodPurchasePrice, CostMethodSalePrice:
		return true
	default:
		return false
	}
}

// ParseCostMethod accepts both snake_case and the camelCase names used by
// report screens ("averageCost", "purchasePrice", "salePrice").
// An empty string yields "" so callers can fall back to a default.
func ParseCostMethod(s string) (CostMethod, error) {
	key := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), "_", ""))
	switch key {
	case "":
		return "", nil
	case "averagecost", "weightedaveragecost", "average":
		return CostMethodAverageCost, nil
	case "purchaseprice", "lastpurchaseprice":
		return CostMethodPurchasePrice, nil
	case "saleprice", "lastsaleprice":
		return CostMethodSalePrice, nil
	default:
		return "", shared.NewInvalidInputError("unknown valuation method %q", s)
	}
}

// StockEntry is one priced stock movement used for costing
type StockEntry struct {
	ID            string
	ItemCode      string
	StoreID       string
	Quantity      decimal.Decimal
	UnitCost      decimal.Decimal
	TotalCost     decimal.Decimal
	EntryDate     valueobject.Date
	Seq           int
	ReferenceType string
}

// CostContext provides the item facts and priced movements for cost calculation.
// Purchases and Sales hold every entry of the item; strategies apply the reference date.
type CostContext struct {
	ItemCode             string
	OpeningBalance       decimal.Decimal
	InitialPurchasePrice decimal.Decimal
	PurchasePrice        decimal.Decimal
	SalePrice            decimal.Decimal
	ReferenceDate        valueobject.Date
	Purchases            []StockEntry
	Sales                []StockEntry
}

// CostBasis names where a unit cost came from
type CostBasis string

const (
	CostBasisWeightedAverage CostBasis = "weighted_average"
	CostBasisLastPurchase    CostBasis = "last_purchase"
	CostBasisLastSale        CostBasis = "last_sale"
	CostBasisInitialPrice    CostBasis = "initial_purchase_price"
	CostBasisPurchasePrice   CostBasis = "purchase_price"
	CostBasisSalePrice       CostBasis = "sale_price"
	CostBasisNone            CostBasis = "none"
)

// CostResult contains the result of cost calculation
type CostResult struct {
	UnitCost    decimal.Decimal
	Method      CostMethod
	Basis       CostBasis
	Quantity    decimal.Decimal
	TotalCost   decimal.Decimal
	EntriesUsed int
}

// CostCalculationStrategy computes a unit cost for one item as of a reference date.
// Implementations never divide by zero and never fail: missing data falls back
// along the method's chain and ends at zero.
type CostCalculationStrategy interface {
	// Name returns the unique name of the strategy
	Name() string
	// Description returns a human-readable description
	Description() string
	// Method returns the costing method used by this strategy
	Method() CostMethod
	// CalculateCost computes the unit cost for costCtx.ItemCode
	CalculateCost(ctx context.Context, costCtx CostContext) CostResult
}

// BaseStrategy provides the descriptive part of a cost strategy
type BaseStrategy struct {
	method      CostMethod
	description string
}

// NewBaseStrategy creates a new BaseStrategy named after its method
func NewBaseStrategy(method CostMethod, description string) BaseStrategy {
	return BaseStrategy{method: method, description: description}
}

// Name returns the strategy name
func (s BaseStrategy) Name() string {
	return string(s.method)
}

// Method returns the costing method
func (s BaseStrategy) Method() CostMethod {
	return s.method
}

// Description returns the strategy description
func (s BaseStrategy) Description() string {
	return s.description
}
