package finance

import "github.com/shopspring/decimal"

// AccountBalanceRecord holds opening, period and closing figures of one account.
// Opening and closing are net-then-split: at most one side is non-zero.
// Period figures are gross and may both be non-zero.
type AccountBalanceRecord struct {
	OpeningDebit  decimal.Decimal `json:"opening_debit"`
	OpeningCredit decimal.Decimal `json:"opening_credit"`
	PeriodDebit   decimal.Decimal `json:"period_debit"`
	PeriodCredit  decimal.Decimal `json:"period_credit"`
	ClosingDebit  decimal.Decimal `json:"closing_debit"`
	ClosingCredit decimal.Decimal `json:"closing_credit"`
}

// NewAccountBalanceRecord builds a record from a signed opening net (debit
// positive) and gross period movements
func NewAccountBalanceRecord(openingNet, periodDebit, periodCredit decimal.Decimal) AccountBalanceRecord {
	closingNet := openingNet.Add(periodDebit).Sub(periodCredit)
	openDr, openCr := splitNet(openingNet)
	closeDr, closeCr := splitNet(closingNet)
	return AccountBalanceRecord{
		OpeningDebit:  openDr,
		OpeningCredit: openCr,
		PeriodDebit:   periodDebit,
		PeriodCredit:  periodCredit,
		ClosingDebit:  closeDr,
		ClosingCredit: closeCr,
	}
}

// splitNet presents a signed net as a non-negative debit or credit
func splitNet(net decimal.Decimal) (debit, credit decimal.Decimal) {
	if net.IsNegative() {
		return decimal.Zero, net.Neg()
	}
	return net, decimal.Zero
}

// OpeningNet returns opening debit minus opening credit
func (r AccountBalanceRecord) OpeningNet() decimal.Decimal {
	return r.OpeningDebit.Sub(r.OpeningCredit)
}

// PeriodNet returns period debit minus period credit
func (r AccountBalanceRecord) PeriodNet() decimal.Decimal {
	return r.PeriodDebit.Sub(r.PeriodCredit)
}

// ClosingNet returns closing debit minus closing credit
func (r AccountBalanceRecord) ClosingNet() decimal.Decimal {
	return r.ClosingDebit.Sub(r.ClosingCredit)
}

// IsZero returns true if the account has no balance and no movement
func (r AccountBalanceRecord) IsZero() bool {
	return r.OpeningDebit.IsZero() && r.OpeningCredit.IsZero() &&
		r.PeriodDebit.IsZero() && r.PeriodCredit.IsZero() &&
		r.ClosingDebit.IsZero() && r.ClosingCredit.IsZero()
}

// bucket accumulates rule postings for one account before presentation
type bucket struct {
	openingDebit  decimal.Decimal
	openingCredit decimal.Decimal
	periodDebit   decimal.Decimal
	periodCredit  decimal.Decimal
	// seeded is the master data opening balance, already in presentation terms
	seeded decimal.Decimal
}

func (b *bucket) add(other *bucket) {
	b.openingDebit = b.openingDebit.Add(other.openingDebit)
	b.openingCredit = b.openingCredit.Add(other.openingCredit)
	b.periodDebit = b.periodDebit.Add(other.periodDebit)
	b.periodCredit = b.periodCredit.Add(other.periodCredit)
	b.seeded = b.seeded.Add(other.seeded)
}

// present turns the bucket into a record, exchanging sides for swapped accounts
func (b *bucket) present(swapped bool) AccountBalanceRecord {
	openingNet := b.openingDebit.Sub(b.openingCredit)
	periodDebit, periodCredit := b.periodDebit, b.periodCredit
	if swapped {
		openingNet = openingNet.Neg()
		periodDebit, periodCredit = periodCredit, periodDebit
	}
	return NewAccountBalanceRecord(openingNet.Add(b.seeded), periodDebit, periodCredit)
}
