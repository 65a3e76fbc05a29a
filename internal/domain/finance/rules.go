package finance

import (
	"github.com/erp/reportengine/internal/domain/ledger"
	"github.com/shopspring/decimal"
)

// Side is the side of an account a rule posts to
type Side string

const (
	SideDebit  Side = "debit"
	SideCredit Side = "credit"
)

// Posting is an amount a rule assigns to one account instance.
// AccountID is empty for accounts that have a single instance.
type Posting struct {
	AccountID string
	Amount    decimal.Decimal
}

// Selector extracts the postings a transaction contributes to an account kind
type Selector func(tx ledger.Transaction, kind ledger.AccountKind) []Posting

// Rule ties a ledger kind to an account side
type Rule struct {
	Ledger      ledger.Kind
	Side        Side
	Description string
	Select      Selector
}

// RuleTable maps an account kind to the rules feeding it
type RuleTable map[ledger.AccountKind][]Rule

// Kinds returns every ledger kind referenced by the table
func (t RuleTable) Kinds() []ledger.Kind {
	seen := make(map[ledger.Kind]bool)
	for _, rules := range t {
		for _, r := range rules {
			seen[r.Ledger] = true
		}
	}
	out := make([]ledger.Kind, 0, len(seen))
	for _, k := range ledger.AllKinds() {
		if seen[k] {
			out = append(out, k)
		}
	}
	return out
}

func posting(id string, amount decimal.Decimal) []Posting {
	if amount.IsZero() {
		return nil
	}
	return []Posting{{AccountID: id, Amount: amount}}
}

// counterpartyTotal posts the document total to its counterparty
func counterpartyTotal(tx ledger.Transaction, kind ledger.AccountKind) []Posting {
	if tx.Counterparty.Kind != kind {
		return nil
	}
	return posting(tx.Counterparty.ID, tx.Total)
}

// counterpartySettled posts the amount paid in cash to the counterparty
func counterpartySettled(tx ledger.Transaction, kind ledger.AccountKind) []Posting {
	if tx.Counterparty.Kind != kind {
		return nil
	}
	return posting(tx.Counterparty.ID, tx.Settled())
}

// counterpartyNetOfTax posts the voucher amount excluding its VAT portion
func counterpartyNetOfTax(tx ledger.Transaction, kind ledger.AccountKind) []Posting {
	if tx.Counterparty.Kind != kind {
		return nil
	}
	return posting(tx.Counterparty.ID, tx.Total.Sub(tx.Tax))
}

// settlementsTo posts every settlement made through a cash account of kind
func settlementsTo(tx ledger.Transaction, kind ledger.AccountKind) []Posting {
	var out []Posting
	for _, s := range tx.Settlements {
		if s.Account.Kind == kind && !s.Amount.IsZero() {
			out = append(out, Posting{AccountID: s.Account.ID, Amount: s.Amount})
		}
	}
	return out
}

func transferIn(tx ledger.Transaction, kind ledger.AccountKind) []Posting {
	if tx.Destination.Kind != kind {
		return nil
	}
	return posting(tx.Destination.ID, tx.Total)
}

func transferOut(tx ledger.Transaction, kind ledger.AccountKind) []Posting {
	if tx.Source.Kind != kind {
		return nil
	}
	return posting(tx.Source.ID, tx.Total)
}

// amountOf builds a selector posting one document amount to a single-instance account
func amountOf(amount func(ledger.Transaction) decimal.Decimal) Selector {
	return func(tx ledger.Transaction, _ ledger.AccountKind) []Posting {
		return posting("", amount(tx))
	}
}

var (
	subtotal = amountOf(func(tx ledger.Transaction) decimal.Decimal { return tx.Subtotal })
	discount = amountOf(func(tx ledger.Transaction) decimal.Decimal { return tx.Discount })
	tax      = amountOf(func(tx ledger.Transaction) decimal.Decimal { return tx.Tax })
)

// vatVoucher posts a voucher addressed to the VAT account itself
func vatVoucher(tx ledger.Transaction, _ ledger.AccountKind) []Posting {
	if tx.Counterparty.Kind != ledger.AccountKindVAT {
		return nil
	}
	return posting("", tx.Total)
}

// voucherTax posts the VAT portion of an expense or other revenue voucher
func voucherTax(counterparty ledger.AccountKind) Selector {
	return func(tx ledger.Transaction, _ ledger.AccountKind) []Posting {
		if tx.Counterparty.Kind != counterparty {
			return nil
		}
		return posting("", tx.Tax)
	}
}

func cashRules() []Rule {
	return []Rule{
		{ledger.KindReceiptVoucher, SideDebit, "receipt vouchers", settlementsTo},
		{ledger.KindSalesInvoice, SideDebit, "cash sales", settlementsTo},
		{ledger.KindPurchaseReturn, SideDebit, "cash purchase return refunds", settlementsTo},
		{ledger.KindInternalTransfer, SideDebit, "incoming transfers", transferIn},
		{ledger.KindPaymentVoucher, SideCredit, "payment vouchers", settlementsTo},
		{ledger.KindPurchaseInvoice, SideCredit, "cash purchases", settlementsTo},
		{ledger.KindSalesReturn, SideCredit, "cash sales return refunds", settlementsTo},
		{ledger.KindInternalTransfer, SideCredit, "outgoing transfers", transferOut},
	}
}

// DefaultRules is the posting table of every rule-driven account.
// VAT, other payables and partners are listed in table orientation and
// presented swapped (see Chart).
func DefaultRules() RuleTable {
	return RuleTable{
		ledger.AccountKindCustomer: {
			{ledger.KindSalesInvoice, SideDebit, "sales invoices", counterpartyTotal},
			{ledger.KindSalesReturn, SideDebit, "cash sales return refunds", counterpartySettled},
			{ledger.KindPaymentVoucher, SideDebit, "payment vouchers", counterpartyTotal},
			{ledger.KindSalesInvoice, SideCredit, "cash sales", counterpartySettled},
			{ledger.KindSalesReturn, SideCredit, "sales returns", counterpartyTotal},
			{ledger.KindReceiptVoucher, SideCredit, "receipt vouchers", counterpartyTotal},
		},
		ledger.AccountKindSupplier: {
			{ledger.KindPurchaseInvoice, SideDebit, "cash purchases", counterpartySettled},
			{ledger.KindPurchaseReturn, SideDebit, "purchase returns", counterpartyTotal},
			{ledger.KindPaymentVoucher, SideDebit, "payment vouchers", counterpartyTotal},
			{ledger.KindReceiptVoucher, SideDebit, "receipt vouchers", counterpartyTotal},
			{ledger.KindPurchaseInvoice, SideCredit, "purchase invoices", counterpartyTotal},
			{ledger.KindPurchaseReturn, SideCredit, "cash purchase return refunds", counterpartySettled},
		},
		ledger.AccountKindSafe: cashRules(),
		ledger.AccountKindBank: cashRules(),
		ledger.AccountKindVAT: {
			{ledger.KindSalesInvoice, SideDebit, "sales tax", tax},
			{ledger.KindPurchaseReturn, SideDebit, "purchase return tax", tax},
			{ledger.KindReceiptVoucher, SideDebit, "VAT receipts", vatVoucher},
			{ledger.KindReceiptVoucher, SideDebit, "other revenue tax", voucherTax(ledger.AccountKindOtherRevenue)},
			{ledger.KindPurchaseInvoice, SideCredit, "purchase tax", tax},
			{ledger.KindSalesReturn, SideCredit, "sales return tax", tax},
			{ledger.KindPaymentVoucher, SideCredit, "VAT payments", vatVoucher},
			{ledger.KindPaymentVoucher, SideCredit, "expense tax", voucherTax(ledger.AccountKindExpense)},
		},
		ledger.AccountKindOtherReceivable: {
			{ledger.KindPaymentVoucher, SideDebit, "payment vouchers", counterpartyTotal},
			{ledger.KindReceiptVoucher, SideCredit, "receipt vouchers", counterpartyTotal},
		},
		ledger.AccountKindOtherPayable: {
			{ledger.KindReceiptVoucher, SideDebit, "receipt vouchers", counterpartyTotal},
			{ledger.KindPaymentVoucher, SideCredit, "payment vouchers", counterpartyTotal},
		},
		ledger.AccountKindPartner: {
			{ledger.KindReceiptVoucher, SideDebit, "capital contributions", counterpartyTotal},
			{ledger.KindPaymentVoucher, SideCredit, "withdrawals", counterpartyTotal},
		},
		AccountKindSales: {
			{ledger.KindSalesInvoice, SideCredit, "sales", subtotal},
		},
		AccountKindSalesReturns: {
			{ledger.KindSalesReturn, SideDebit, "sales returns", subtotal},
		},
		AccountKindPurchases: {
			{ledger.KindPurchaseInvoice, SideDebit, "purchases", subtotal},
		},
		AccountKindPurchaseReturns: {
			{ledger.KindPurchaseReturn, SideCredit, "purchase returns", subtotal},
		},
		AccountKindDiscountAllowed: {
			{ledger.KindSalesInvoice, SideDebit, "sales discounts", discount},
			{ledger.KindSalesReturn, SideCredit, "sales return discounts", discount},
		},
		AccountKindDiscountEarned: {
			{ledger.KindPurchaseReturn, SideDebit, "purchase return discounts", discount},
			{ledger.KindPurchaseInvoice, SideCredit, "purchase discounts", discount},
		},
		ledger.AccountKindOtherRevenue: {
			{ledger.KindReceiptVoucher, SideCredit, "other revenues", counterpartyNetOfTax},
		},
		ledger.AccountKindExpense: {
			{ledger.KindPaymentVoucher, SideDebit, "expenses", counterpartyNetOfTax},
		},
	}
}
