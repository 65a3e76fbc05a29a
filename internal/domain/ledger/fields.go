package ledger

import (
	"strings"
	"time"

	"github.com/erp/reportengine/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
	"github.com/tidwall/gjson"
)

// StatusAccepted is the only warehouse transfer status that moves stock
const StatusAccepted = "ACCEPTED"

type field int

const (
	fieldID field = iota
	fieldDate
	fieldBranch
	fieldStore
	fieldFromStore
	fieldToStore
	fieldStatus
	fieldPaymentMethod
	fieldCustomer
	fieldSupplier
	fieldAccountType
	fieldAccountID
	fieldVATTag
	fieldLines
	fieldInvoiceLineCode
	fieldVoucherLineCode
	fieldLineQuantity
	fieldLinePrice
	fieldLineTotal
	fieldSubtotal
	fieldDiscount
	fieldTax
	fieldTotal
	fieldPaid
	fieldPayments
	fieldPaymentType
	fieldPaymentAccount
	fieldSafe
	fieldBank
	fieldFromType
	fieldFromID
	fieldFromSafe
	fieldFromBank
	fieldToType
	fieldToID
	fieldToSafe
	fieldToBank
)

// fieldVariants lists the gjson paths probed for each canonical field, in priority order.
var fieldVariants = map[field][]string{
	fieldID:              {"id", "_id", "number", "voucherNumber", "invoiceNumber"},
	fieldDate:            {"date", "invoiceDate", "voucherDate", "transferDate", "createdAt"},
	fieldBranch:          {"branchId", "branch.id", "branch"},
	fieldStore:           {"storeId", "store.id", "warehouseId", "warehouse.id", "store"},
	fieldFromStore:       {"fromStoreId", "fromStore.id", "sourceStoreId", "fromStore"},
	fieldToStore:         {"toStoreId", "toStore.id", "destinationStoreId", "toStore"},
	fieldStatus:          {"status", "state"},
	fieldPaymentMethod:   {"paymentMethod", "paymentType", "payment.method"},
	fieldCustomer:        {"customerId", "customer.id", "customer"},
	fieldSupplier:        {"supplierId", "supplier.id", "supplier"},
	fieldAccountType:     {"accountType", "account.type", "type"},
	fieldAccountID:       {"accountId", "account.id", "account"},
	fieldVATTag:          {"isVat", "vatTagged", "vat"},
	fieldLines:           {"items", "lines", "details"},
	fieldInvoiceLineCode: {"item.code", "itemCode", "code", "productCode"},
	fieldVoucherLineCode: {"item.code", "itemCode", "code", "itemId"},
	fieldLineQuantity:    {"quantity", "qty"},
	fieldLinePrice:       {"unitPrice", "price", "cost"},
	fieldLineTotal:       {"total", "lineTotal", "amount"},
	fieldSubtotal:        {"subtotal", "subTotal", "totalBeforeTax"},
	fieldDiscount:        {"discount", "discountAmount"},
	fieldTax:             {"tax", "taxAmount", "vatAmount"},
	fieldTotal:           {"total", "totalAmount", "grandTotal", "netTotal", "amount"},
	fieldPaid:            {"paid", "paidAmount"},
	fieldPayments:        {"payments", "splitPayments"},
	fieldPaymentType:     {"type", "method", "accountType"},
	fieldPaymentAccount:  {"accountId", "id"},
	fieldSafe:            {"safeId", "safe.id"},
	fieldBank:            {"bankId", "bank.id"},
	fieldFromType:        {"fromType", "from.type"},
	fieldFromID:          {"fromId", "from.id"},
	fieldFromSafe:        {"fromSafeId", "fromSafe.id"},
	fieldFromBank:        {"fromBankId", "fromBank.id"},
	fieldToType:          {"toType", "to.type"},
	fieldToID:            {"toId", "to.id"},
	fieldToSafe:          {"toSafeId", "toSafe.id"},
	fieldToBank:          {"toBankId", "toBank.id"},
}

// scalar returns the first variant holding a non-null scalar value
func scalar(doc gjson.Result, f field) gjson.Result {
	for _, path := range fieldVariants[f] {
		r := doc.Get(path)
		if r.Exists() && r.Type != gjson.Null && r.Type != gjson.JSON {
			return r
		}
	}
	return gjson.Result{}
}

// text returns the first variant as a trimmed string, "" when absent
func text(doc gjson.Result, f field) string {
	return strings.TrimSpace(scalar(doc, f).String())
}

// array returns the elements of the first variant holding an array
func array(doc gjson.Result, f field) ([]gjson.Result, bool) {
	for _, path := range fieldVariants[f] {
		r := doc.Get(path)
		if r.IsArray() {
			return r.Array(), true
		}
	}
	return nil, false
}

// has reports whether any variant holds a non-null scalar
func has(doc gjson.Result, f field) bool {
	return scalar(doc, f).Exists()
}

// amountOf reads a monetary or quantity field. Absent or non-numeric values are zero.
func amountOf(doc gjson.Result, f field) decimal.Decimal {
	return parseAmount(scalar(doc, f))
}

func parseAmount(r gjson.Result) decimal.Decimal {
	switch r.Type {
	case gjson.Number:
		d, err := decimal.NewFromString(r.Raw)
		if err != nil {
			return decimal.NewFromFloat(r.Num)
		}
		return d
	case gjson.String:
		s := strings.ReplaceAll(strings.TrimSpace(r.Str), ",", "")
		d, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.Zero
		}
		return d
	default:
		return decimal.Zero
	}
}

// unixMillisThreshold separates epoch seconds from epoch milliseconds
const unixMillisThreshold = 100_000_000_000

// parseDate converts any supported date representation to a calendar date.
// Unparseable input yields the invalid date.
func parseDate(r gjson.Result) valueobject.Date {
	switch r.Type {
	case gjson.String:
		s := strings.TrimSpace(r.Str)
		if d, err := valueobject.ParseDate(s); err == nil {
			return d
		}
		t, err := cast.ToTimeE(s)
		if err != nil {
			return valueobject.Date{}
		}
		return valueobject.DateOf(t)
	case gjson.Number:
		return valueobject.DateOf(epoch(r.Int()))
	case gjson.JSON:
		// serialized document-store timestamps: {"seconds": n, "nanoseconds": n}
		for _, path := range []string{"seconds", "_seconds"} {
			if s := r.Get(path); s.Type == gjson.Number {
				return valueobject.DateOf(time.Unix(s.Int(), 0).UTC())
			}
		}
		return valueobject.Date{}
	default:
		return valueobject.Date{}
	}
}

func epoch(n int64) time.Time {
	if n > unixMillisThreshold || n < -unixMillisThreshold {
		return time.UnixMilli(n).UTC()
	}
	return time.Unix(n, 0).UTC()
}

// dateOf reads the document date, probing variants in order and accepting
// object-shaped timestamps as well as scalars.
func dateOf(doc gjson.Result) valueobject.Date {
	for _, path := range fieldVariants[fieldDate] {
		r := doc.Get(path)
		if r.Exists() && r.Type != gjson.Null {
			return parseDate(r)
		}
	}
	return valueobject.Date{}
}

var accountKindReplacer = strings.NewReplacer("_", "", "-", "", " ", "")

// ParseAccountKind maps the spellings used by the ERP onto an AccountKind.
// Unknown spellings yield "".
func ParseAccountKind(s string) AccountKind {
	switch strings.ToLower(accountKindReplacer.Replace(strings.TrimSpace(s))) {
	case "customer", "customers", "client":
		return AccountKindCustomer
	case "supplier", "suppliers", "vendor":
		return AccountKindSupplier
	case "safe", "safes", "cash", "cashbox", "treasury":
		return AccountKindSafe
	case "bank", "banks":
		return AccountKindBank
	case "vat", "tax", "vatpayable":
		return AccountKindVAT
	case "otherreceivable", "otherreceivables", "receivable", "debtor":
		return AccountKindOtherReceivable
	case "otherpayable", "otherpayables", "payable", "creditor":
		return AccountKindOtherPayable
	case "partner", "partners", "capital":
		return AccountKindPartner
	case "expense", "expenses":
		return AccountKindExpense
	case "otherrevenue", "otherrevenues", "revenue", "income", "otherincome":
		return AccountKindOtherRevenue
	default:
		return ""
	}
}

func parsePaymentMethod(s string) PaymentMethod {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cash", "paid", "safe", "bank", "card":
		return PaymentMethodCash
	case "credit", "deferred", "later":
		return PaymentMethodCredit
	default:
		return ""
	}
}
