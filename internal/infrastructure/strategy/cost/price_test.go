package cost

import (
	"context"
	"testing"

	"github.com/erp/reportengine/internal/domain/shared/strategy"
	"github.com/erp/reportengine/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestPurchasePriceStrategy_CalculateCost(t *testing.T) {
	s := NewPurchasePriceStrategy()
	ref := valueobject.MustParseDate("2024-06-30")

	assert.Equal(t, "purchase_price", s.Name())
	assert.Equal(t, strategy.CostMethodPurchasePrice, s.Method())

	tests := []struct {
		name     string
		costCtx  strategy.CostContext
		expected decimal.Decimal
		basis    strategy.CostBasis
	}{
		{
			name: "most recent purchase wins",
			costCtx: strategy.CostContext{
				ReferenceDate: ref,
				Purchases: []strategy.StockEntry{
					purchase("2024-05-01", 1, 9, 0),
					purchase("2024-01-01", 1, 4, 1),
				},
			},
			expected: decimal.NewFromInt(9),
			basis:    strategy.CostBasisLastPurchase,
		},
		{
			name: "same day resolves to the later record",
			costCtx: strategy.CostContext{
				ReferenceDate: ref,
				Purchases: []strategy.StockEntry{
					purchase("2024-05-01", 1, 11, 3),
					purchase("2024-05-01", 1, 12, 7),
					purchase("2024-05-01", 1, 10, 5),
				},
			},
			expected: decimal.NewFromInt(12),
			basis:    strategy.CostBasisLastPurchase,
		},
		{
			name: "purchase on the reference date counts",
			costCtx: strategy.CostContext{
				ReferenceDate: ref,
				Purchases:     []strategy.StockEntry{purchase("2024-06-30", 1, 13, 0)},
			},
			expected: decimal.NewFromInt(13),
			basis:    strategy.CostBasisLastPurchase,
		},
		{
			name: "undated purchases never match",
			costCtx: strategy.CostContext{
				ReferenceDate:        ref,
				InitialPurchasePrice: decimal.NewFromInt(2),
				Purchases: []strategy.StockEntry{
					{UnitCost: decimal.NewFromInt(99), Quantity: decimal.NewFromInt(1)},
				},
			},
			expected: decimal.NewFromInt(2),
			basis:    strategy.CostBasisInitialPrice,
		},
		{
			name: "future purchase falls back to purchase price",
			costCtx: strategy.CostContext{
				ReferenceDate: ref,
				PurchasePrice: decimal.NewFromInt(6),
				Purchases:     []strategy.StockEntry{purchase("2024-07-01", 1, 13, 0)},
			},
			expected: decimal.NewFromInt(6),
			basis:    strategy.CostBasisPurchasePrice,
		},
		{
			name:     "nothing known yields zero",
			costCtx:  strategy.CostContext{ReferenceDate: ref},
			expected: decimal.Zero,
			basis:    strategy.CostBasisNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := s.CalculateCost(context.Background(), tt.costCtx)
			assert.True(t, tt.expected.Equal(result.UnitCost), "expected %s, got %s", tt.expected, result.UnitCost)
			assert.Equal(t, tt.basis, result.Basis)
		})
	}
}

func TestSalePriceStrategy_CalculateCost(t *testing.T) {
	s := NewSalePriceStrategy()
	ref := valueobject.MustParseDate("2024-06-30")

	assert.Equal(t, "sale_price", s.Name())

	t.Run("most recent sale", func(t *testing.T) {
		result := s.CalculateCost(context.Background(), strategy.CostContext{
			ReferenceDate: ref,
			SalePrice:     decimal.NewFromInt(20),
			Sales: []strategy.StockEntry{
				purchase("2024-02-01", 1, 15, 0),
				purchase("2024-04-01", 1, 17, 1),
				purchase("2024-08-01", 1, 30, 2),
			},
		})
		assert.True(t, decimal.NewFromInt(17).Equal(result.UnitCost))
		assert.Equal(t, strategy.CostBasisLastSale, result.Basis)
	})

	t.Run("configured sale price", func(t *testing.T) {
		result := s.CalculateCost(context.Background(), strategy.CostContext{
			ReferenceDate:        ref,
			SalePrice:            decimal.NewFromInt(20),
			InitialPurchasePrice: decimal.NewFromInt(5),
		})
		assert.True(t, decimal.NewFromInt(20).Equal(result.UnitCost))
		assert.Equal(t, strategy.CostBasisSalePrice, result.Basis)
	})

	t.Run("initial purchase price", func(t *testing.T) {
		result := s.CalculateCost(context.Background(), strategy.CostContext{
			ReferenceDate:        ref,
			InitialPurchasePrice: decimal.NewFromInt(5),
		})
		assert.True(t, decimal.NewFromInt(5).Equal(result.UnitCost))
		assert.Equal(t, strategy.CostBasisInitialPrice, result.Basis)
	})
}
