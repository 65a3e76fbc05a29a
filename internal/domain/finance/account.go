package finance

import (
	"github.com/erp/reportengine/internal/domain/ledger"
	"github.com/shopspring/decimal"
)

// Account kinds that only exist in the chart, never as a transaction counterparty
const (
	AccountKindInventory       ledger.AccountKind = "inventory"
	AccountKindStockVariation  ledger.AccountKind = "stock_variation"
	AccountKindSales           ledger.AccountKind = "sales"
	AccountKindSalesReturns    ledger.AccountKind = "sales_returns"
	AccountKindPurchases       ledger.AccountKind = "purchases"
	AccountKindPurchaseReturns ledger.AccountKind = "purchase_returns"
	AccountKindDiscountAllowed ledger.AccountKind = "discount_allowed"
	AccountKindDiscountEarned  ledger.AccountKind = "discount_earned"
)

// AccountClass groups chart accounts for the statements
type AccountClass string

const (
	AccountClassAsset     AccountClass = "asset"
	AccountClassLiability AccountClass = "liability"
	AccountClassEquity    AccountClass = "equity"
	AccountClassNominal   AccountClass = "nominal"
)

// ChartEntry describes one control account of the chart
type ChartEntry struct {
	Kind  ledger.AccountKind `json:"kind"`
	Name  string             `json:"name"`
	Class AccountClass       `json:"class"`
	// Swapped accounts are presented with debit and credit exchanged
	// relative to their rule table.
	Swapped bool `json:"swapped"`
}

// Chart lists every control account in presentation order
var Chart = []ChartEntry{
	{Kind: AccountKindInventory, Name: "Inventory", Class: AccountClassAsset},
	{Kind: ledger.AccountKindCustomer, Name: "Customers", Class: AccountClassAsset},
	{Kind: ledger.AccountKindSafe, Name: "Safes", Class: AccountClassAsset},
	{Kind: ledger.AccountKindBank, Name: "Banks", Class: AccountClassAsset},
	{Kind: ledger.AccountKindOtherReceivable, Name: "Other receivables", Class: AccountClassAsset},
	{Kind: ledger.AccountKindSupplier, Name: "Suppliers", Class: AccountClassLiability},
	{Kind: ledger.AccountKindVAT, Name: "VAT payable", Class: AccountClassLiability, Swapped: true},
	{Kind: ledger.AccountKindOtherPayable, Name: "Other payables", Class: AccountClassLiability, Swapped: true},
	{Kind: ledger.AccountKindPartner, Name: "Partners", Class: AccountClassEquity, Swapped: true},
	{Kind: AccountKindSales, Name: "Sales", Class: AccountClassNominal},
	{Kind: AccountKindSalesReturns, Name: "Sales returns", Class: AccountClassNominal},
	{Kind: AccountKindDiscountAllowed, Name: "Discount allowed", Class: AccountClassNominal},
	{Kind: AccountKindPurchases, Name: "Purchases", Class: AccountClassNominal},
	{Kind: AccountKindPurchaseReturns, Name: "Purchase returns", Class: AccountClassNominal},
	{Kind: AccountKindDiscountEarned, Name: "Discount earned", Class: AccountClassNominal},
	{Kind: AccountKindStockVariation, Name: "Stock variation", Class: AccountClassNominal},
	{Kind: ledger.AccountKindOtherRevenue, Name: "Other revenues", Class: AccountClassNominal},
	{Kind: ledger.AccountKindExpense, Name: "Expenses", Class: AccountClassNominal},
}

// ChartEntryOf returns the chart entry of a kind
func ChartEntryOf(kind ledger.AccountKind) (ChartEntry, bool) {
	for _, e := range Chart {
		if e.Kind == kind {
			return e, true
		}
	}
	return ChartEntry{}, false
}

// isValuationAccount reports whether the account is driven by the inventory
// valuation instead of the rule table
func isValuationAccount(kind ledger.AccountKind) bool {
	return kind == AccountKindInventory || kind == AccountKindStockVariation
}

// Account is master data for one account instance.
// OpeningBalance is signed as presented: positive is a debit balance.
type Account struct {
	Kind           ledger.AccountKind `json:"kind"`
	ID             string             `json:"id"`
	Name           string             `json:"name"`
	OpeningBalance decimal.Decimal    `json:"opening_balance"`
}
