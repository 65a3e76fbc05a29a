package ledger

import (
	"encoding/json"
	"sort"

	"github.com/erp/reportengine/internal/domain/shared"
)

// RawRecord is one ledger document as stored by the ERP front end
type RawRecord = json.RawMessage

// RawLedgers holds raw documents per kind. A missing key means the
// collection was not supplied, an empty slice means it was supplied empty.
type RawLedgers map[Kind][]RawRecord

// Require fails fast when any of the given collections is missing
func (r RawLedgers) Require(kinds ...Kind) error {
	for _, k := range kinds {
		if _, ok := r[k]; !ok {
			return shared.NewMissingCollectionError(k.String())
		}
	}
	return nil
}

// Ledgers holds normalized transactions per kind
type Ledgers map[Kind][]Transaction

// Require fails fast when any of the given collections is missing
func (l Ledgers) Require(kinds ...Kind) error {
	if l == nil {
		return shared.NewMissingCollectionError("ledgers")
	}
	for _, k := range kinds {
		if _, ok := l[k]; !ok {
			return shared.NewMissingCollectionError(k.String())
		}
	}
	return nil
}

// Of returns the transactions of a kind, nil if the collection is absent
func (l Ledgers) Of(kind Kind) []Transaction {
	return l[kind]
}

// Each calls fn for every transaction in a stable order: by kind in
// AllKinds order, then by sequence within the kind.
func (l Ledgers) Each(fn func(Transaction)) {
	for _, k := range AllKinds() {
		for _, tx := range l[k] {
			fn(tx)
		}
	}
}

// Count returns the number of transactions across all kinds
func (l Ledgers) Count() int {
	n := 0
	for _, txs := range l {
		n += len(txs)
	}
	return n
}

// Filter returns a copy holding only the transactions accepted by keep.
// Every collection present in l stays present in the result.
func (l Ledgers) Filter(keep func(Transaction) bool) Ledgers {
	out := make(Ledgers, len(l))
	for k, txs := range l {
		kept := make([]Transaction, 0, len(txs))
		for _, tx := range txs {
			if keep(tx) {
				kept = append(kept, tx)
			}
		}
		out[k] = kept
	}
	return out
}

// NormalizeAll normalizes every collection of raw documents
func NormalizeAll(raw RawLedgers) Ledgers {
	out := make(Ledgers, len(raw))
	kinds := make([]Kind, 0, len(raw))
	for k := range raw {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	for _, k := range kinds {
		out[k] = Normalize(raw[k], k)
	}
	return out
}

// InventoryKinds are the collections the inventory valuation reads
func InventoryKinds() []Kind {
	return []Kind{
		KindPurchaseInvoice,
		KindSalesInvoice,
		KindPurchaseReturn,
		KindSalesReturn,
		KindWarehouseReceipt,
		KindWarehouseIssue,
		KindWarehouseTransfer,
	}
}
