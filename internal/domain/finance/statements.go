package finance

import (
	"github.com/erp/reportengine/internal/domain/ledger"
	"github.com/shopspring/decimal"
)

const ratioPrecision = 4

// IncomeStatement is the profit and loss of a period
type IncomeStatement struct {
	Period Period `json:"period"`

	Sales           decimal.Decimal `json:"sales"`
	SalesReturns    decimal.Decimal `json:"sales_returns"`
	DiscountAllowed decimal.Decimal `json:"discount_allowed"`
	NetSales        decimal.Decimal `json:"net_sales"`

	OpeningInventory decimal.Decimal `json:"opening_inventory"`
	Purchases        decimal.Decimal `json:"purchases"`
	PurchaseReturns  decimal.Decimal `json:"purchase_returns"`
	ClosingInventory decimal.Decimal `json:"closing_inventory"`
	CostOfGoodsSold  decimal.Decimal `json:"cost_of_goods_sold"`

	GrossProfit    decimal.Decimal `json:"gross_profit"`
	DiscountEarned decimal.Decimal `json:"discount_earned"`
	OtherRevenues  decimal.Decimal `json:"other_revenues"`
	Expenses       decimal.Decimal `json:"expenses"`
	NetProfit      decimal.Decimal `json:"net_profit"`
}

// BuildIncomeStatement derives the income statement from a reconciliation.
// Revenue accounts are read as credit nets, cost accounts as debit nets.
func BuildIncomeStatement(rec *Reconciliation) *IncomeStatement {
	debitNet := func(kind ledger.AccountKind) decimal.Decimal {
		a, _ := rec.Account(kind)
		return a.Record.PeriodNet()
	}
	creditNet := func(kind ledger.AccountKind) decimal.Decimal {
		return debitNet(kind).Neg()
	}
	inventory, _ := rec.Account(AccountKindInventory)

	s := &IncomeStatement{
		Period:           rec.Period,
		Sales:            creditNet(AccountKindSales),
		SalesReturns:     debitNet(AccountKindSalesReturns),
		DiscountAllowed:  debitNet(AccountKindDiscountAllowed),
		OpeningInventory: inventory.Record.OpeningNet(),
		Purchases:        debitNet(AccountKindPurchases),
		PurchaseReturns:  creditNet(AccountKindPurchaseReturns),
		ClosingInventory: inventory.Record.ClosingNet(),
		DiscountEarned:   creditNet(AccountKindDiscountEarned),
		OtherRevenues:    creditNet(ledger.AccountKindOtherRevenue),
		Expenses:         debitNet(ledger.AccountKindExpense),
	}
	s.NetSales = s.Sales.Sub(s.SalesReturns).Sub(s.DiscountAllowed)
	s.CostOfGoodsSold = s.OpeningInventory.Add(s.Purchases).Sub(s.PurchaseReturns).Sub(s.ClosingInventory)
	s.GrossProfit = s.NetSales.Sub(s.CostOfGoodsSold)
	s.NetProfit = s.GrossProfit.Add(s.DiscountEarned).Add(s.OtherRevenues).Sub(s.Expenses)
	return s
}

// StatementLine is one account on the balance sheet
type StatementLine struct {
	Kind   ledger.AccountKind `json:"kind"`
	Name   string             `json:"name"`
	Amount decimal.Decimal    `json:"amount"`
}

// BalanceSheet is the financial position at the period end
type BalanceSheet struct {
	Period           Period          `json:"period"`
	Assets           []StatementLine `json:"assets"`
	Liabilities      []StatementLine `json:"liabilities"`
	Equity           []StatementLine `json:"equity"`
	RetainedEarnings decimal.Decimal `json:"retained_earnings"`
	CurrentProfit    decimal.Decimal `json:"current_profit"`
	TotalAssets      decimal.Decimal `json:"total_assets"`
	TotalLiabilities decimal.Decimal `json:"total_liabilities"`
	TotalEquity      decimal.Decimal `json:"total_equity"`
	Difference       decimal.Decimal `json:"difference"` // Assets - (Liabilities + Equity)
	IsBalanced       bool            `json:"is_balanced"`
}

// BuildBalanceSheet derives the balance sheet at rec.Period.To. Earnings of
// earlier periods are carried as retained earnings, the period's as current profit.
func BuildBalanceSheet(rec *Reconciliation, tolerance decimal.Decimal) *BalanceSheet {
	bs := &BalanceSheet{
		Period:           rec.Period,
		RetainedEarnings: decimal.Zero,
		CurrentProfit:    decimal.Zero,
		TotalAssets:      decimal.Zero,
		TotalLiabilities: decimal.Zero,
		TotalEquity:      decimal.Zero,
	}
	for _, a := range rec.Accounts {
		closing := a.Record.ClosingNet()
		switch a.Class {
		case AccountClassAsset:
			bs.Assets = append(bs.Assets, StatementLine{Kind: a.Kind, Name: a.Name, Amount: closing})
			bs.TotalAssets = bs.TotalAssets.Add(closing)
		case AccountClassLiability:
			bs.Liabilities = append(bs.Liabilities, StatementLine{Kind: a.Kind, Name: a.Name, Amount: closing.Neg()})
			bs.TotalLiabilities = bs.TotalLiabilities.Sub(closing)
		case AccountClassEquity:
			bs.Equity = append(bs.Equity, StatementLine{Kind: a.Kind, Name: a.Name, Amount: closing.Neg()})
			bs.TotalEquity = bs.TotalEquity.Sub(closing)
		case AccountClassNominal:
			bs.RetainedEarnings = bs.RetainedEarnings.Sub(a.Record.OpeningNet())
			bs.CurrentProfit = bs.CurrentProfit.Sub(a.Record.PeriodNet())
		}
	}
	bs.TotalEquity = bs.TotalEquity.Add(bs.RetainedEarnings).Add(bs.CurrentProfit)
	bs.Difference = bs.TotalAssets.Sub(bs.TotalLiabilities).Sub(bs.TotalEquity)
	bs.IsBalanced = bs.Difference.Abs().LessThanOrEqual(tolerance)
	return bs
}

// LiquidityAnalysis holds the liquidity ratios at the period end
type LiquidityAnalysis struct {
	CurrentAssets      decimal.Decimal `json:"current_assets"`
	QuickAssets        decimal.Decimal `json:"quick_assets"`
	CashAndEquivalents decimal.Decimal `json:"cash_and_equivalents"`
	CurrentLiabilities decimal.Decimal `json:"current_liabilities"`
	WorkingCapital     decimal.Decimal `json:"working_capital"`
	CurrentRatio       decimal.Decimal `json:"current_ratio"`
	QuickRatio         decimal.Decimal `json:"quick_ratio"`
	CashRatio          decimal.Decimal `json:"cash_ratio"`
}

// BuildLiquidityAnalysis derives liquidity ratios from a balance sheet.
// Ratios are zero when there are no current liabilities.
func BuildLiquidityAnalysis(bs *BalanceSheet) *LiquidityAnalysis {
	la := &LiquidityAnalysis{
		CurrentAssets:      bs.TotalAssets,
		QuickAssets:        bs.TotalAssets,
		CashAndEquivalents: decimal.Zero,
		CurrentLiabilities: bs.TotalLiabilities,
	}
	for _, line := range bs.Assets {
		switch {
		case line.Kind == AccountKindInventory:
			la.QuickAssets = la.QuickAssets.Sub(line.Amount)
		case line.Kind.IsCash():
			la.CashAndEquivalents = la.CashAndEquivalents.Add(line.Amount)
		}
	}
	la.WorkingCapital = la.CurrentAssets.Sub(la.CurrentLiabilities)
	la.CurrentRatio = ratio(la.CurrentAssets, la.CurrentLiabilities)
	la.QuickRatio = ratio(la.QuickAssets, la.CurrentLiabilities)
	la.CashRatio = ratio(la.CashAndEquivalents, la.CurrentLiabilities)
	return la
}

func ratio(numerator, denominator decimal.Decimal) decimal.Decimal {
	if denominator.IsZero() {
		return decimal.Zero
	}
	return numerator.DivRound(denominator, ratioPrecision)
}
