package inventory

import (
	"sort"

	"github.com/shopspring/decimal"
)

// ItemType distinguishes stock-tracked items from services
type ItemType string

const (
	ItemTypeStock   ItemType = "stock"
	ItemTypeService ItemType = "service"
)

// Item is a catalog item keyed by its code, the join key across all ledgers
type Item struct {
	Code                 string          `json:"code"`
	Name                 string          `json:"name"`
	Type                 ItemType        `json:"type"`
	InitialPurchasePrice decimal.Decimal `json:"initial_purchase_price"`
	PurchasePrice        decimal.Decimal `json:"purchase_price"`
	SalePrice            decimal.Decimal `json:"sale_price"`
}

// IsStockTracked returns false for services, which are excluded from valuation
func (i Item) IsStockTracked() bool {
	return i.Type != ItemTypeService
}

// Store is a warehouse belonging to a branch
type Store struct {
	ID       string `json:"id"`
	BranchID string `json:"branch_id"`
	Name     string `json:"name"`
}

// StoreItem is an item's opening balance in one store
type StoreItem struct {
	StoreID        string          `json:"store_id"`
	ItemCode       string          `json:"item_code"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
}

// OpeningBalances maps item code to opening quantity
type OpeningBalances map[string]decimal.Decimal

// Of returns the opening quantity of an item, zero when unknown
func (o OpeningBalances) Of(code string) decimal.Decimal {
	if q, ok := o[code]; ok {
		return q
	}
	return decimal.Zero
}

// AggregateOpeningBalances sums every store's opening balance per item
func AggregateOpeningBalances(storeItems []StoreItem) OpeningBalances {
	return AggregateOpeningBalancesIn(storeItems, nil)
}

// AggregateOpeningBalancesIn sums the opening balances of the stores accepted
// by inScope. A nil inScope accepts every store.
func AggregateOpeningBalancesIn(storeItems []StoreItem, inScope func(storeID string) bool) OpeningBalances {
	out := make(OpeningBalances)
	for _, si := range storeItems {
		if inScope != nil && !inScope(si.StoreID) {
			continue
		}
		out[si.ItemCode] = out.Of(si.ItemCode).Add(si.OpeningBalance)
	}
	return out
}

// Scope restricts a valuation to a branch or a single store.
// The zero Scope is company-wide.
type Scope struct {
	BranchID string `json:"branch_id,omitempty"`
	StoreID  string `json:"store_id,omitempty"`
}

// IsCompanyWide returns true when no branch or store is selected
func (s Scope) IsCompanyWide() bool {
	return s.BranchID == "" && s.StoreID == ""
}

// storeSet resolves the store ids that belong to the scope
func (s Scope) storeSet(stores []Store) map[string]bool {
	set := make(map[string]bool)
	if s.StoreID != "" {
		set[s.StoreID] = true
		return set
	}
	for _, st := range stores {
		if st.BranchID == s.BranchID {
			set[st.ID] = true
		}
	}
	return set
}

// Contains reports whether a store belongs to the scope
func (s Scope) Contains(storeID string, stores []Store) bool {
	if s.IsCompanyWide() {
		return true
	}
	return s.storeSet(stores)[storeID]
}

func sortedItems(items []Item) []Item {
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if it.IsStockTracked() {
			out = append(out, it)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}
