package finance

import (
	"sort"

	"github.com/erp/reportengine/internal/domain/ledger"
	"github.com/erp/reportengine/internal/domain/shared"
	"github.com/erp/reportengine/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Period is an inclusive date range
type Period struct {
	From valueobject.Date `json:"from"`
	To   valueobject.Date `json:"to"`
}

// Validate checks both bounds are set and ordered
func (p Period) Validate() error {
	if p.From.IsZero() || p.To.IsZero() {
		return shared.NewInvalidInputError("period requires both from and to dates")
	}
	if p.From.After(p.To) {
		return shared.NewInvalidInputError("period from %s is after to %s", p.From, p.To)
	}
	return nil
}

// InventoryPosition carries the valuation figures the inventory and stock
// variation accounts are derived from
type InventoryPosition struct {
	// OpeningValue is the valuation on the day before the period starts.
	OpeningValue decimal.Decimal `json:"opening_value"`
	// ClosingValue is the valuation at the period end.
	ClosingValue decimal.Decimal `json:"closing_value"`
	// InitialValue is the opening stock at initial cost, before any ledger activity.
	InitialValue decimal.Decimal `json:"initial_value"`
}

// ReconcileInput holds everything a reconciliation reads
type ReconcileInput struct {
	Ledgers   ledger.Ledgers
	Accounts  []Account
	Inventory InventoryPosition
	Period    Period
}

// SubsidiaryRecord is the record of one account instance
type SubsidiaryRecord struct {
	AccountID string               `json:"account_id"`
	Name      string               `json:"name"`
	Record    AccountBalanceRecord `json:"record"`
}

// AccountSummary is a control account with its subsidiary detail
type AccountSummary struct {
	ChartEntry
	Record       AccountBalanceRecord `json:"record"`
	Subsidiaries []SubsidiaryRecord   `json:"subsidiaries,omitempty"`
}

// Reconciliation is the reconciled chart for one period
type Reconciliation struct {
	Period   Period           `json:"period"`
	Accounts []AccountSummary `json:"accounts"`
}

// Account returns the control account summary of kind
func (r *Reconciliation) Account(kind ledger.AccountKind) (AccountSummary, bool) {
	for _, a := range r.Accounts {
		if a.Kind == kind {
			return a, true
		}
	}
	return AccountSummary{}, false
}

// Subsidiary returns the record of one account instance. An instance without
// activity or master data yields a zero record.
func (r *Reconciliation) Subsidiary(kind ledger.AccountKind, id string) (SubsidiaryRecord, bool) {
	a, ok := r.Account(kind)
	if !ok {
		return SubsidiaryRecord{}, false
	}
	for _, s := range a.Subsidiaries {
		if s.AccountID == id {
			return s, true
		}
	}
	return SubsidiaryRecord{AccountID: id, Record: NewAccountBalanceRecord(decimal.Zero, decimal.Zero, decimal.Zero)}, true
}

// Reconciler applies the rule table to the normalized ledgers
type Reconciler struct {
	rules RuleTable
	chart []ChartEntry
	// byLedger indexes rules by the ledger kind they read
	byLedger map[ledger.Kind][]kindRule
}

type kindRule struct {
	account ledger.AccountKind
	rule    Rule
}

// ReconcilerOption configures a Reconciler
type ReconcilerOption func(*Reconciler)

// WithRules replaces the default rule table
func WithRules(rules RuleTable) ReconcilerOption {
	return func(r *Reconciler) {
		r.rules = rules
	}
}

// NewReconciler creates a reconciler over the default chart and rule table
func NewReconciler(opts ...ReconcilerOption) *Reconciler {
	r := &Reconciler{
		rules: DefaultRules(),
		chart: Chart,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.byLedger = make(map[ledger.Kind][]kindRule)
	for _, entry := range r.chart {
		for _, rule := range r.rules[entry.Kind] {
			r.byLedger[rule.Ledger] = append(r.byLedger[rule.Ledger], kindRule{account: entry.Kind, rule: rule})
		}
	}
	return r
}

// RequiredLedgers lists the ledger kinds a reconciliation reads
func (r *Reconciler) RequiredLedgers() []ledger.Kind {
	return r.rules.Kinds()
}

// Reconcile computes opening, period and closing records for every chart
// account over in.Period
func (r *Reconciler) Reconcile(in ReconcileInput) (*Reconciliation, error) {
	if err := in.Period.Validate(); err != nil {
		return nil, err
	}
	if err := in.Ledgers.Require(r.RequiredLedgers()...); err != nil {
		return nil, err
	}
	if in.Accounts == nil {
		return nil, shared.NewMissingCollectionError("accounts")
	}

	buckets := r.post(in.Ledgers, in.Period)
	names := make(map[ledger.AccountKind]map[string]string)
	for _, acc := range in.Accounts {
		if isValuationAccount(acc.Kind) {
			continue
		}
		if _, ok := ChartEntryOf(acc.Kind); !ok {
			continue
		}
		b := buckets.get(acc.Kind, acc.ID)
		b.seeded = b.seeded.Add(acc.OpeningBalance)
		if names[acc.Kind] == nil {
			names[acc.Kind] = make(map[string]string)
		}
		names[acc.Kind][acc.ID] = acc.Name
	}

	out := &Reconciliation{Period: in.Period, Accounts: make([]AccountSummary, 0, len(r.chart))}
	for _, entry := range r.chart {
		summary := AccountSummary{ChartEntry: entry}
		switch entry.Kind {
		case AccountKindInventory:
			summary.Record = inventoryRecord(in.Inventory)
		case AccountKindStockVariation:
			summary.Record = stockVariationRecord(in.Inventory)
		default:
			control := &bucket{}
			ids := buckets.ids(entry.Kind)
			for _, id := range ids {
				b := buckets.get(entry.Kind, id)
				control.add(b)
				summary.Subsidiaries = append(summary.Subsidiaries, SubsidiaryRecord{
					AccountID: id,
					Name:      names[entry.Kind][id],
					Record:    b.present(entry.Swapped),
				})
			}
			summary.Record = control.present(entry.Swapped)
		}
		out.Accounts = append(out.Accounts, summary)
	}
	return out, nil
}

// ReconcileKind returns the control account record of one kind
func (r *Reconciler) ReconcileKind(in ReconcileInput, kind ledger.AccountKind) (AccountBalanceRecord, error) {
	rec, err := r.Reconcile(in)
	if err != nil {
		return AccountBalanceRecord{}, err
	}
	a, ok := rec.Account(kind)
	if !ok {
		return AccountBalanceRecord{}, shared.NewInvalidInputError("unknown account kind %q", kind)
	}
	return a.Record, nil
}

// ReconcileSubsidiary returns the record of one account instance
func (r *Reconciler) ReconcileSubsidiary(in ReconcileInput, kind ledger.AccountKind, id string) (AccountBalanceRecord, error) {
	rec, err := r.Reconcile(in)
	if err != nil {
		return AccountBalanceRecord{}, err
	}
	s, ok := rec.Subsidiary(kind, id)
	if !ok {
		return AccountBalanceRecord{}, shared.NewInvalidInputError("unknown account kind %q", kind)
	}
	return s.Record, nil
}

// post applies every rule to every transaction once
func (r *Reconciler) post(ledgers ledger.Ledgers, period Period) bucketSet {
	set := bucketSet{}
	ledgers.Each(func(tx ledger.Transaction) {
		opening := tx.Date.Before(period.From)
		if !opening && !tx.Date.Within(period.From, period.To) {
			return
		}
		for _, kr := range r.byLedger[tx.Kind] {
			for _, p := range kr.rule.Select(tx, kr.account) {
				b := set.get(kr.account, p.AccountID)
				switch {
				case opening && kr.rule.Side == SideDebit:
					b.openingDebit = b.openingDebit.Add(p.Amount)
				case opening:
					b.openingCredit = b.openingCredit.Add(p.Amount)
				case kr.rule.Side == SideDebit:
					b.periodDebit = b.periodDebit.Add(p.Amount)
				default:
					b.periodCredit = b.periodCredit.Add(p.Amount)
				}
			}
		}
	})
	return set
}

// inventoryRecord takes both balances from the valuation; the period movement
// is the change in value
func inventoryRecord(pos InventoryPosition) AccountBalanceRecord {
	movement := pos.ClosingValue.Sub(pos.OpeningValue)
	debit, credit := splitNet(movement)
	return NewAccountBalanceRecord(pos.OpeningValue, debit, credit)
}

// stockVariationRecord carries the counter entry of every inventory revaluation
// since the initial stock
func stockVariationRecord(pos InventoryPosition) AccountBalanceRecord {
	movement := pos.ClosingValue.Sub(pos.OpeningValue)
	debit, credit := splitNet(movement.Neg())
	return NewAccountBalanceRecord(pos.InitialValue.Sub(pos.OpeningValue), debit, credit)
}

type bucketSet map[ledger.AccountKind]map[string]*bucket

func (s bucketSet) get(kind ledger.AccountKind, id string) *bucket {
	byID, ok := s[kind]
	if !ok {
		byID = make(map[string]*bucket)
		s[kind] = byID
	}
	b, ok := byID[id]
	if !ok {
		b = &bucket{}
		byID[id] = b
	}
	return b
}

func (s bucketSet) ids(kind ledger.AccountKind) []string {
	out := make([]string, 0, len(s[kind]))
	for id := range s[kind] {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
