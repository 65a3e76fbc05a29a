package ledger

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
)

// Normalize converts raw ledger documents of one kind into canonical transactions.
// It never fails: malformed values degrade to zero amounts and invalid dates,
// documents that are not JSON objects are skipped, and warehouse transfers
// whose status is not ACCEPTED are dropped.
func Normalize(raw []RawRecord, kind Kind) []Transaction {
	out := make([]Transaction, 0, len(raw))
	for i, rec := range raw {
		if !gjson.ValidBytes(rec) {
			continue
		}
		doc := gjson.ParseBytes(rec)
		if !doc.IsObject() {
			continue
		}
		if kind == KindWarehouseTransfer && !strings.EqualFold(text(doc, fieldStatus), StatusAccepted) {
			continue
		}

		tx := Transaction{
			ID:        text(doc, fieldID),
			Kind:      kind,
			Seq:       i,
			Date:      dateOf(doc),
			BranchRef: text(doc, fieldBranch),
			StoreRef:  text(doc, fieldStore),
			Status:    text(doc, fieldStatus),
		}

		switch {
		case kind.IsInvoiceLike():
			normalizeInvoice(doc, &tx)
		case kind.IsWarehouseVoucher():
			normalizeStockVoucher(doc, &tx)
		case kind == KindReceiptVoucher || kind == KindPaymentVoucher:
			normalizeCashVoucher(doc, &tx)
		case kind == KindInternalTransfer:
			normalizeInternalTransfer(doc, &tx)
		}
		out = append(out, tx)
	}
	return out
}

func normalizeInvoice(doc gjson.Result, tx *Transaction) {
	tx.PaymentMethod = parsePaymentMethod(text(doc, fieldPaymentMethod))
	tx.Counterparty = invoiceCounterparty(doc, tx.Kind)
	tx.Lines = parseLines(doc, fieldInvoiceLineCode)

	if has(doc, fieldSubtotal) {
		tx.Subtotal = amountOf(doc, fieldSubtotal)
	} else {
		tx.Subtotal = sumLines(tx.Lines)
	}
	tx.Discount = amountOf(doc, fieldDiscount)
	tx.Tax = amountOf(doc, fieldTax)

	// A stated total is authoritative even when it disagrees with its parts.
	if has(doc, fieldTotal) {
		tx.Total = amountOf(doc, fieldTotal)
	} else {
		tx.Total = tx.Subtotal.Sub(tx.Discount).Add(tx.Tax)
	}

	switch {
	case has(doc, fieldPaid):
		tx.Paid = amountOf(doc, fieldPaid)
	case tx.IsCash():
		tx.Paid = tx.Total
	}

	if parts, ok := array(doc, fieldPayments); ok && len(parts) > 0 {
		tx.Settlements = parseSplitPayments(parts)
		if !has(doc, fieldPaid) {
			tx.Paid = tx.Settled()
		}
		return
	}
	if tx.Paid.IsPositive() {
		tx.Settlements = []Settlement{{Account: cashAccount(doc), Amount: tx.Paid}}
	}
}

func normalizeStockVoucher(doc gjson.Result, tx *Transaction) {
	tx.FromStore = text(doc, fieldFromStore)
	tx.ToStore = text(doc, fieldToStore)
	tx.Lines = parseLines(doc, fieldVoucherLineCode)
	tx.Subtotal = sumLines(tx.Lines)
	tx.Total = tx.Subtotal
}

func normalizeCashVoucher(doc gjson.Result, tx *Transaction) {
	tx.Counterparty = voucherCounterparty(doc)
	tx.Total = amountOf(doc, fieldTotal)
	tx.Tax = amountOf(doc, fieldTax)
	tx.Paid = tx.Total
	tx.Settlements = []Settlement{{Account: cashAccount(doc), Amount: tx.Total}}
}

func normalizeInternalTransfer(doc gjson.Result, tx *Transaction) {
	tx.Source = transferEnd(doc, fieldFromType, fieldFromID, fieldFromSafe, fieldFromBank)
	tx.Destination = transferEnd(doc, fieldToType, fieldToID, fieldToSafe, fieldToBank)
	tx.Total = amountOf(doc, fieldTotal)
}

func parseLines(doc gjson.Result, codeField field) []LineItem {
	raw, _ := array(doc, fieldLines)
	if len(raw) == 0 {
		return nil
	}
	lines := make([]LineItem, 0, len(raw))
	for _, l := range raw {
		line := LineItem{
			ItemCode:  text(l, codeField),
			Quantity:  amountOf(l, fieldLineQuantity),
			UnitPrice: amountOf(l, fieldLinePrice),
		}
		if has(l, fieldLineTotal) {
			line.LineTotal = amountOf(l, fieldLineTotal)
		} else {
			line.LineTotal = line.Quantity.Mul(line.UnitPrice)
		}
		lines = append(lines, line)
	}
	return lines
}

func sumLines(lines []LineItem) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.LineTotal)
	}
	return sum
}

func parseSplitPayments(parts []gjson.Result) []Settlement {
	out := make([]Settlement, 0, len(parts))
	for _, p := range parts {
		amount := amountOf(p, fieldTotal)
		if amount.IsZero() {
			continue
		}
		ref := cashAccount(p)
		if kind := ParseAccountKind(text(p, fieldPaymentType)); kind.IsCash() && ref.ID == "" {
			ref = AccountRef{Kind: kind, ID: text(p, fieldPaymentAccount)}
		}
		out = append(out, Settlement{Account: ref, Amount: amount})
	}
	return out
}

// cashAccount resolves the safe or bank a document was settled through.
// Unlinked documents settle to the unnamed safe.
func cashAccount(doc gjson.Result) AccountRef {
	if id := text(doc, fieldSafe); id != "" {
		return AccountRef{Kind: AccountKindSafe, ID: id}
	}
	if id := text(doc, fieldBank); id != "" {
		return AccountRef{Kind: AccountKindBank, ID: id}
	}
	if ParseAccountKind(text(doc, fieldPaymentMethod)) == AccountKindBank {
		return AccountRef{Kind: AccountKindBank}
	}
	return AccountRef{Kind: AccountKindSafe}
}

func invoiceCounterparty(doc gjson.Result, kind Kind) AccountRef {
	switch kind {
	case KindSalesInvoice, KindSalesReturn:
		return AccountRef{Kind: AccountKindCustomer, ID: text(doc, fieldCustomer)}
	default:
		return AccountRef{Kind: AccountKindSupplier, ID: text(doc, fieldSupplier)}
	}
}

func voucherCounterparty(doc gjson.Result) AccountRef {
	if id := text(doc, fieldCustomer); id != "" {
		return AccountRef{Kind: AccountKindCustomer, ID: id}
	}
	if id := text(doc, fieldSupplier); id != "" {
		return AccountRef{Kind: AccountKindSupplier, ID: id}
	}
	if scalar(doc, fieldVATTag).Bool() {
		return AccountRef{Kind: AccountKindVAT, ID: text(doc, fieldAccountID)}
	}
	kind := ParseAccountKind(text(doc, fieldAccountType))
	if kind == "" {
		return AccountRef{}
	}
	return AccountRef{Kind: kind, ID: text(doc, fieldAccountID)}
}

func transferEnd(doc gjson.Result, typeField, idField, safeField, bankField field) AccountRef {
	if kind := ParseAccountKind(text(doc, typeField)); kind.IsCash() {
		return AccountRef{Kind: kind, ID: text(doc, idField)}
	}
	if id := text(doc, safeField); id != "" {
		return AccountRef{Kind: AccountKindSafe, ID: id}
	}
	if id := text(doc, bankField); id != "" {
		return AccountRef{Kind: AccountKindBank, ID: id}
	}
	return AccountRef{}
}
