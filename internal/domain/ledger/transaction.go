package ledger

import (
	"github.com/erp/reportengine/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Kind identifies the ledger a transaction belongs to
type Kind string

const (
	KindPurchaseInvoice   Kind = "purchase_invoice"
	KindSalesInvoice      Kind = "sales_invoice"
	KindPurchaseReturn    Kind = "purchase_return"
	KindSalesReturn       Kind = "sales_return"
	KindWarehouseReceipt  Kind = "warehouse_receipt"
	KindWarehouseIssue    Kind = "warehouse_issue"
	KindWarehouseTransfer Kind = "warehouse_transfer"
	KindReceiptVoucher    Kind = "receipt_voucher"
	KindPaymentVoucher    Kind = "payment_voucher"
	KindInternalTransfer  Kind = "internal_transfer"
)

// String returns the string representation of the kind
func (k Kind) String() string {
	return string(k)
}

// IsValid returns true if the kind is known
func (k Kind) IsValid() bool {
	for _, known := range AllKinds() {
		if k == known {
			return true
		}
	}
	return false
}

// IsInvoiceLike returns true for kinds that carry priced item lines and a counterparty
func (k Kind) IsInvoiceLike() bool {
	switch k {
	case KindPurchaseInvoice, KindSalesInvoice, KindPurchaseReturn, KindSalesReturn:
		return true
	default:
		return false
	}
}

// IsWarehouseVoucher returns true for store-level stock movement vouchers
func (k Kind) IsWarehouseVoucher() bool {
	switch k {
	case KindWarehouseReceipt, KindWarehouseIssue, KindWarehouseTransfer:
		return true
	default:
		return false
	}
}

// AllKinds returns every ledger kind in a stable order
func AllKinds() []Kind {
	return []Kind{
		KindPurchaseInvoice,
		KindSalesInvoice,
		KindPurchaseReturn,
		KindSalesReturn,
		KindWarehouseReceipt,
		KindWarehouseIssue,
		KindWarehouseTransfer,
		KindReceiptVoucher,
		KindPaymentVoucher,
		KindInternalTransfer,
	}
}

// PaymentMethod is how an invoice is settled
type PaymentMethod string

const (
	PaymentMethodCash   PaymentMethod = "cash"
	PaymentMethodCredit PaymentMethod = "credit"
)

// AccountKind classifies the account a transaction touches
type AccountKind string

const (
	AccountKindCustomer        AccountKind = "customer"
	AccountKindSupplier        AccountKind = "supplier"
	AccountKindSafe            AccountKind = "safe"
	AccountKindBank            AccountKind = "bank"
	AccountKindVAT             AccountKind = "vat"
	AccountKindOtherReceivable AccountKind = "other_receivable"
	AccountKindOtherPayable    AccountKind = "other_payable"
	AccountKindPartner         AccountKind = "partner"
	AccountKindExpense         AccountKind = "expense"
	AccountKindOtherRevenue    AccountKind = "other_revenue"
)

// String returns the string representation of the account kind
func (k AccountKind) String() string {
	return string(k)
}

// IsCash returns true for safes and banks
func (k AccountKind) IsCash() bool {
	return k == AccountKindSafe || k == AccountKindBank
}

// AccountRef points at a specific account of a kind. ID may be empty for
// single-instance accounts or unlinked counterparties.
type AccountRef struct {
	Kind AccountKind `json:"kind"`
	ID   string      `json:"id"`
}

// IsZero returns true if no account is referenced
func (r AccountRef) IsZero() bool {
	return r.Kind == ""
}

// LineItem is one priced item line of an invoice or stock voucher
type LineItem struct {
	ItemCode  string          `json:"item_code"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// Settlement is the part of a transaction paid through a safe or bank
type Settlement struct {
	Account AccountRef      `json:"account"`
	Amount  decimal.Decimal `json:"amount"`
}

// Transaction is the canonical shape of every ledger record.
// Monetary fields are never missing: absent values are zero.
type Transaction struct {
	ID            string           `json:"id"`
	Kind          Kind             `json:"kind"`
	Seq           int              `json:"seq"`
	Date          valueobject.Date `json:"date"`
	BranchRef     string           `json:"branch_ref,omitempty"`
	StoreRef      string           `json:"store_ref,omitempty"`
	FromStore     string           `json:"from_store,omitempty"`
	ToStore       string           `json:"to_store,omitempty"`
	Status        string           `json:"status,omitempty"`
	PaymentMethod PaymentMethod    `json:"payment_method,omitempty"`
	Counterparty  AccountRef       `json:"counterparty"`
	Source        AccountRef       `json:"source"`
	Destination   AccountRef       `json:"destination"`
	Lines         []LineItem       `json:"lines,omitempty"`
	Subtotal      decimal.Decimal  `json:"subtotal"`
	Discount      decimal.Decimal  `json:"discount"`
	Tax           decimal.Decimal  `json:"tax"`
	Total         decimal.Decimal  `json:"total"`
	Paid          decimal.Decimal  `json:"paid"`
	Settlements   []Settlement     `json:"settlements,omitempty"`
}

// Settled returns the sum of all settlements
func (t Transaction) Settled() decimal.Decimal {
	sum := decimal.Zero
	for _, s := range t.Settlements {
		sum = sum.Add(s.Amount)
	}
	return sum
}

// IsCash returns true if the transaction was paid in cash
func (t Transaction) IsCash() bool {
	return t.PaymentMethod == PaymentMethodCash
}

// QuantityOf returns the total quantity of the given item across all lines
func (t Transaction) QuantityOf(itemCode string) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range t.Lines {
		if l.ItemCode == itemCode {
			sum = sum.Add(l.Quantity)
		}
	}
	return sum
}
