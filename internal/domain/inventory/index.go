package inventory

import (
	"github.com/erp/reportengine/internal/domain/ledger"
	"github.com/erp/reportengine/internal/domain/shared/strategy"
	"github.com/erp/reportengine/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// quantitySign is the effect of each ledger kind on the stock balance
var quantitySign = map[ledger.Kind]int64{
	ledger.KindPurchaseInvoice:  1,
	ledger.KindSalesReturn:      1,
	ledger.KindWarehouseReceipt: 1,
	ledger.KindSalesInvoice:     -1,
	ledger.KindPurchaseReturn:   -1,
	ledger.KindWarehouseIssue:   -1,
}

type delta struct {
	date valueobject.Date
	qty  decimal.Decimal
}

// movements holds one item's signed quantity changes and its priced entries
type movements struct {
	deltas    []delta
	purchases []strategy.StockEntry
	sales     []strategy.StockEntry
}

func (m *movements) quantityAsOf(end valueobject.Date) decimal.Decimal {
	sum := decimal.Zero
	for _, d := range m.deltas {
		if d.date.OnOrBefore(end) {
			sum = sum.Add(d.qty)
		}
	}
	return sum
}

type index struct {
	byItem map[string]*movements
	seq    int
}

var noMovements = &movements{}

func (idx *index) of(code string) *movements {
	if m, ok := idx.byItem[code]; ok {
		return m
	}
	return noMovements
}

func (idx *index) item(code string) *movements {
	m, ok := idx.byItem[code]
	if !ok {
		m = &movements{}
		idx.byItem[code] = m
	}
	return m
}

// buildIndex walks every inventory ledger once and groups lines by item code
func buildIndex(ledgers ledger.Ledgers, scope Scope, stores []Store) *index {
	idx := &index{byItem: make(map[string]*movements)}
	var inScope map[string]bool
	if !scope.IsCompanyWide() {
		inScope = scope.storeSet(stores)
	}

	for _, kind := range ledger.InventoryKinds() {
		for _, tx := range ledgers.Of(kind) {
			idx.addPriced(tx)
			if kind == ledger.KindWarehouseTransfer {
				if inScope != nil {
					idx.addTransfer(tx, inScope)
				}
				continue
			}
			if inScope != nil && !txInScope(tx, scope, inScope) {
				continue
			}
			sign := decimal.NewFromInt(quantitySign[kind])
			for _, line := range tx.Lines {
				m := idx.item(line.ItemCode)
				m.deltas = append(m.deltas, delta{date: tx.Date, qty: line.Quantity.Mul(sign)})
			}
		}
	}
	return idx
}

// addPriced records purchase and sales lines for costing
func (idx *index) addPriced(tx ledger.Transaction) {
	if tx.Kind != ledger.KindPurchaseInvoice && tx.Kind != ledger.KindSalesInvoice {
		return
	}
	for _, line := range tx.Lines {
		idx.seq++
		entry := strategy.StockEntry{
			ID:            tx.ID,
			ItemCode:      line.ItemCode,
			StoreID:       tx.StoreRef,
			Quantity:      line.Quantity,
			UnitCost:      line.UnitPrice,
			TotalCost:     line.LineTotal,
			EntryDate:     tx.Date,
			Seq:           idx.seq,
			ReferenceType: tx.Kind.String(),
		}
		m := idx.item(line.ItemCode)
		if tx.Kind == ledger.KindPurchaseInvoice {
			m.purchases = append(m.purchases, entry)
		} else {
			m.sales = append(m.sales, entry)
		}
	}
}

func (idx *index) addTransfer(tx ledger.Transaction, inScope map[string]bool) {
	for _, line := range tx.Lines {
		m := idx.item(line.ItemCode)
		if inScope[tx.ToStore] {
			m.deltas = append(m.deltas, delta{date: tx.Date, qty: line.Quantity})
		}
		if inScope[tx.FromStore] {
			m.deltas = append(m.deltas, delta{date: tx.Date, qty: line.Quantity.Neg()})
		}
	}
}

func txInScope(tx ledger.Transaction, scope Scope, stores map[string]bool) bool {
	if tx.StoreRef != "" {
		return stores[tx.StoreRef]
	}
	return scope.StoreID == "" && tx.BranchRef == scope.BranchID
}
