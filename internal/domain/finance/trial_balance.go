package finance

import (
	"fmt"
	"slices"
	"time"

	"github.com/erp/reportengine/internal/domain/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultTolerance is the absolute difference below which two totals are equal
var DefaultTolerance = decimal.NewFromFloat(0.01)

// TrialBalanceStatus represents the result status of a trial balance check
type TrialBalanceStatus string

const (
	TrialBalanceStatusBalanced   TrialBalanceStatus = "BALANCED"   // Debit equals Credit at every checkpoint
	TrialBalanceStatusUnbalanced TrialBalanceStatus = "UNBALANCED" // At least one checkpoint differs
)

// IsValid checks if the status is a valid TrialBalanceStatus
func (s TrialBalanceStatus) IsValid() bool {
	return s == TrialBalanceStatusBalanced || s == TrialBalanceStatusUnbalanced
}

// String returns the string representation
func (s TrialBalanceStatus) String() string {
	return string(s)
}

// IsBalanced returns true if the trial balance is balanced
func (s TrialBalanceStatus) IsBalanced() bool {
	return s == TrialBalanceStatusBalanced
}

// Checkpoint names one of the three columns a trial balance is checked at
type Checkpoint string

const (
	CheckpointOpening Checkpoint = "OPENING"
	CheckpointPeriod  Checkpoint = "PERIOD"
	CheckpointClosing Checkpoint = "CLOSING"
)

// BalanceDiscrepancyType represents the type of balance discrepancy
type BalanceDiscrepancyType string

const (
	// CheckpointImbalance occurs when total debits differ from total credits
	CheckpointImbalance BalanceDiscrepancyType = "CHECKPOINT_IMBALANCE"
	// ControlSubsidiaryMismatch occurs when a control account differs from the sum of its subsidiaries
	ControlSubsidiaryMismatch BalanceDiscrepancyType = "CONTROL_SUBSIDIARY_MISMATCH"
)

// IsValid checks if the discrepancy type is valid
func (t BalanceDiscrepancyType) IsValid() bool {
	return t == CheckpointImbalance || t == ControlSubsidiaryMismatch
}

// Description returns a human-readable description of the discrepancy type
func (t BalanceDiscrepancyType) Description() string {
	switch t {
	case CheckpointImbalance:
		return "Total debits don't equal total credits"
	case ControlSubsidiaryMismatch:
		return "Control account balance doesn't equal the sum of its subsidiary accounts"
	default:
		return "Unknown discrepancy"
	}
}

// Discrepancy severities
const (
	SeverityCritical = "CRITICAL"
	SeverityWarning  = "WARNING"
)

// BalanceDiscrepancy represents a specific balance discrepancy found during a trial balance check
type BalanceDiscrepancy struct {
	ID             uuid.UUID              `json:"id"`
	Type           BalanceDiscrepancyType `json:"type"`
	Checkpoint     Checkpoint             `json:"checkpoint"`
	AccountKind    ledger.AccountKind     `json:"account_kind,omitempty"`
	ExpectedAmount decimal.Decimal        `json:"expected_amount"` // Debits, or the control net
	ActualAmount   decimal.Decimal        `json:"actual_amount"`   // Credits, or the subsidiary net
	Difference     decimal.Decimal        `json:"difference"`      // ExpectedAmount - ActualAmount
	Description    string                 `json:"description"`
	Severity       string                 `json:"severity"`
	DetectedAt     time.Time              `json:"detected_at"`
}

// NewBalanceDiscrepancy creates a new balance discrepancy. Differences
// beyond tolerance are critical; a non-positive tolerance means DefaultTolerance.
func NewBalanceDiscrepancy(
	discrepancyType BalanceDiscrepancyType,
	checkpoint Checkpoint,
	kind ledger.AccountKind,
	expected, actual decimal.Decimal,
	tolerance decimal.Decimal,
) *BalanceDiscrepancy {
	if !tolerance.IsPositive() {
		tolerance = DefaultTolerance
	}
	diff := expected.Sub(actual)
	severity := SeverityWarning
	if diff.Abs().GreaterThan(tolerance) {
		severity = SeverityCritical
	}

	description := discrepancyType.Description()
	if kind != "" {
		description = fmt.Sprintf("%s: %s", kind, description)
	}
	return &BalanceDiscrepancy{
		ID:             uuid.New(),
		Type:           discrepancyType,
		Checkpoint:     checkpoint,
		AccountKind:    kind,
		ExpectedAmount: expected,
		ActualAmount:   actual,
		Difference:     diff,
		Description:    description,
		Severity:       severity,
		DetectedAt:     time.Now(),
	}
}

// TrialBalanceTotals sums every presented line of the trial balance
type TrialBalanceTotals struct {
	OpeningDebit  decimal.Decimal `json:"opening_debit"`
	OpeningCredit decimal.Decimal `json:"opening_credit"`
	PeriodDebit   decimal.Decimal `json:"period_debit"`
	PeriodCredit  decimal.Decimal `json:"period_credit"`
	ClosingDebit  decimal.Decimal `json:"closing_debit"`
	ClosingCredit decimal.Decimal `json:"closing_credit"`
}

func (t *TrialBalanceTotals) add(r AccountBalanceRecord) {
	t.OpeningDebit = t.OpeningDebit.Add(r.OpeningDebit)
	t.OpeningCredit = t.OpeningCredit.Add(r.OpeningCredit)
	t.PeriodDebit = t.PeriodDebit.Add(r.PeriodDebit)
	t.PeriodCredit = t.PeriodCredit.Add(r.PeriodCredit)
	t.ClosingDebit = t.ClosingDebit.Add(r.ClosingDebit)
	t.ClosingCredit = t.ClosingCredit.Add(r.ClosingCredit)
}

// BalanceCheck is the three-way double entry check of a trial balance
type BalanceCheck struct {
	Status            TrialBalanceStatus   `json:"status"`
	OpeningBalanced   bool                 `json:"opening_balanced"`
	PeriodBalanced    bool                 `json:"period_balanced"`
	ClosingBalanced   bool                 `json:"closing_balanced"`
	OpeningDifference decimal.Decimal      `json:"opening_difference"`
	PeriodDifference  decimal.Decimal      `json:"period_difference"`
	ClosingDifference decimal.Decimal      `json:"closing_difference"`
	Imbalance         decimal.Decimal      `json:"imbalance"` // Largest absolute difference
	Tolerance         decimal.Decimal      `json:"tolerance"`
	Discrepancies     []BalanceDiscrepancy `json:"discrepancies"`
	CriticalCount     int                  `json:"critical_count"`
	WarningCount      int                  `json:"warning_count"`
}

// IsBalanced returns true when all three checkpoints balance and no
// discrepancy was found
func (c BalanceCheck) IsBalanced() bool {
	return c.Status.IsBalanced()
}

// AddDiscrepancy adds a discrepancy to the check
func (c *BalanceCheck) AddDiscrepancy(d *BalanceDiscrepancy) {
	c.Discrepancies = append(c.Discrepancies, *d)
	if d.Severity == SeverityCritical {
		c.CriticalCount++
	} else {
		c.WarningCount++
	}
	c.Status = TrialBalanceStatusUnbalanced
}

// Validate compares debit and credit totals at each checkpoint. An imbalance
// is reported in the result, never as an error.
func Validate(totals TrialBalanceTotals, tolerance decimal.Decimal) BalanceCheck {
	check := BalanceCheck{
		Status:        TrialBalanceStatusBalanced,
		Tolerance:     tolerance,
		Imbalance:     decimal.Zero,
		Discrepancies: make([]BalanceDiscrepancy, 0),
	}
	verify := func(cp Checkpoint, debit, credit decimal.Decimal) (bool, decimal.Decimal) {
		diff := debit.Sub(credit).Abs()
		if diff.GreaterThan(check.Imbalance) {
			check.Imbalance = diff
		}
		if diff.GreaterThan(tolerance) {
			check.AddDiscrepancy(NewBalanceDiscrepancy(CheckpointImbalance, cp, "", debit, credit, tolerance))
			return false, diff
		}
		return true, diff
	}
	check.OpeningBalanced, check.OpeningDifference = verify(CheckpointOpening, totals.OpeningDebit, totals.OpeningCredit)
	check.PeriodBalanced, check.PeriodDifference = verify(CheckpointPeriod, totals.PeriodDebit, totals.PeriodCredit)
	check.ClosingBalanced, check.ClosingDifference = verify(CheckpointClosing, totals.ClosingDebit, totals.ClosingCredit)
	return check
}

// TrialBalanceLine is one control account of the trial balance
type TrialBalanceLine struct {
	Kind    ledger.AccountKind   `json:"kind"`
	Name    string               `json:"name"`
	Class   AccountClass         `json:"class"`
	Record  AccountBalanceRecord `json:"record"`
	Details []SubsidiaryRecord   `json:"details,omitempty"`
}

// TrialBalance is the reconciled chart with its totals and balance check
type TrialBalance struct {
	ID     uuid.UUID          `json:"id"`
	Period Period             `json:"period"`
	Lines  []TrialBalanceLine `json:"lines"`
	Totals TrialBalanceTotals `json:"totals"`
	Check  BalanceCheck       `json:"check"`
}

// Clone returns a copy whose lines, details and discrepancies can be
// modified without affecting tb
func (tb *TrialBalance) Clone() *TrialBalance {
	if tb == nil {
		return nil
	}
	out := *tb
	out.Lines = slices.Clone(tb.Lines)
	for i := range out.Lines {
		out.Lines[i].Details = slices.Clone(out.Lines[i].Details)
	}
	out.Check.Discrepancies = slices.Clone(tb.Check.Discrepancies)
	return &out
}

// TrialBalanceOptions configures BuildTrialBalance
type TrialBalanceOptions struct {
	Tolerance         decimal.Decimal
	IncludeSubsidiary bool
}

// TrialBalanceOption is a functional option for BuildTrialBalance
type TrialBalanceOption func(*TrialBalanceOptions)

// WithTolerance sets the absolute balance tolerance
func WithTolerance(tolerance decimal.Decimal) TrialBalanceOption {
	return func(o *TrialBalanceOptions) {
		if tolerance.IsPositive() {
			o.Tolerance = tolerance
		}
	}
}

// WithSubsidiaryDetail includes per-account detail under each line
func WithSubsidiaryDetail(include bool) TrialBalanceOption {
	return func(o *TrialBalanceOptions) {
		o.IncludeSubsidiary = include
	}
}

// BuildTrialBalance sums the reconciled chart and validates it
func BuildTrialBalance(rec *Reconciliation, opts ...TrialBalanceOption) *TrialBalance {
	options := TrialBalanceOptions{Tolerance: DefaultTolerance}
	for _, opt := range opts {
		opt(&options)
	}

	tb := &TrialBalance{
		ID:     uuid.New(),
		Period: rec.Period,
		Lines:  make([]TrialBalanceLine, 0, len(rec.Accounts)),
	}
	for _, a := range rec.Accounts {
		line := TrialBalanceLine{Kind: a.Kind, Name: a.Name, Class: a.Class, Record: a.Record}
		if options.IncludeSubsidiary {
			line.Details = a.Subsidiaries
		}
		tb.Lines = append(tb.Lines, line)
		tb.Totals.add(a.Record)
	}

	tb.Check = Validate(tb.Totals, options.Tolerance)
	for _, d := range ControlDiscrepancies(rec, options.Tolerance) {
		tb.Check.AddDiscrepancy(&d)
	}
	return tb
}

// ControlDiscrepancies compares each control account with the sum of its
// subsidiary accounts at the opening and closing checkpoints
func ControlDiscrepancies(rec *Reconciliation, tolerance decimal.Decimal) []BalanceDiscrepancy {
	var out []BalanceDiscrepancy
	for _, a := range rec.Accounts {
		if len(a.Subsidiaries) == 0 {
			continue
		}
		opening, closing := decimal.Zero, decimal.Zero
		for _, s := range a.Subsidiaries {
			opening = opening.Add(s.Record.OpeningNet())
			closing = closing.Add(s.Record.ClosingNet())
		}
		if a.Record.OpeningNet().Sub(opening).Abs().GreaterThan(tolerance) {
			out = append(out, *NewBalanceDiscrepancy(ControlSubsidiaryMismatch, CheckpointOpening, a.Kind, a.Record.OpeningNet(), opening, tolerance))
		}
		if a.Record.ClosingNet().Sub(closing).Abs().GreaterThan(tolerance) {
			out = append(out, *NewBalanceDiscrepancy(ControlSubsidiaryMismatch, CheckpointClosing, a.Kind, a.Record.ClosingNet(), closing, tolerance))
		}
	}
	return out
}
