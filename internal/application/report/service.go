package report

import (
	"context"
	"fmt"
	"time"

	"github.com/erp/reportengine/internal/domain/finance"
	"github.com/erp/reportengine/internal/domain/inventory"
	"github.com/erp/reportengine/internal/domain/ledger"
	"github.com/erp/reportengine/internal/domain/shared"
	"github.com/erp/reportengine/internal/domain/shared/valueobject"
	"github.com/erp/reportengine/internal/infrastructure/logger"
	"github.com/erp/reportengine/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Options configures report defaults
type Options struct {
	// DefaultMethod is used when a query names no valuation method.
	DefaultMethod     string
	Tolerance         decimal.Decimal
	IncludeSubsidiary bool
	// MemoEntries caps the derived values kept for the current snapshot.
	// Zero selects DefaultMemoEntries.
	MemoEntries int
}

// Service computes the reports over the current ledger snapshot. Derivations
// form a fixed graph: normalize, opening balances, valuations,
// reconciliation, trial balance, statements. Each node is memoised for the
// current snapshot version only.
type Service struct {
	source     LedgerSource
	valuator   *inventory.Valuator
	reconciler *finance.Reconciler
	options    Options
	logger     *zap.Logger
	metrics    *telemetry.ReportMetrics
	memo       *memo
}

// ServiceOption is a functional option for configuring Service
type ServiceOption func(*Service)

// WithMetrics records report metrics
func WithMetrics(metrics *telemetry.ReportMetrics) ServiceOption {
	return func(s *Service) {
		s.metrics = metrics
	}
}

// WithReconciler replaces the default reconciler
func WithReconciler(r *finance.Reconciler) ServiceOption {
	return func(s *Service) {
		s.reconciler = r
	}
}

// NewService creates a report service
func NewService(
	source LedgerSource,
	valuator *inventory.Valuator,
	options Options,
	log *zap.Logger,
	opts ...ServiceOption,
) *Service {
	if !options.Tolerance.IsPositive() {
		options.Tolerance = finance.DefaultTolerance
	}
	if log == nil {
		log = zap.NewNop()
	}
	s := &Service{
		source:     source,
		valuator:   valuator,
		reconciler: finance.NewReconciler(),
		options:    options,
		logger:     log,
		memo:       newMemo(options.MemoEntries),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ValuationQuery selects an inventory valuation
type ValuationQuery struct {
	EndDate  valueobject.Date
	Method   string
	BranchID string
	StoreID  string
}

// PeriodQuery selects a reporting period
type PeriodQuery struct {
	From   valueobject.Date
	To     valueobject.Date
	Method string

	// IncludeSubsidiary overrides the configured default when set.
	IncludeSubsidiary *bool
}

// AccountQuery selects one control account, or one of its instances when
// AccountID is set
type AccountQuery struct {
	PeriodQuery
	Kind      ledger.AccountKind
	AccountID string
}

// FinancialPosition is the balance sheet with its liquidity analysis
type FinancialPosition struct {
	BalanceSheet *finance.BalanceSheet      `json:"balance_sheet"`
	Liquidity    *finance.LiquidityAnalysis `json:"liquidity"`
}

// AccountStatement is the record of one control account or account instance
type AccountStatement struct {
	Kind         ledger.AccountKind           `json:"kind"`
	AccountID    string                       `json:"account_id,omitempty"`
	Name         string                       `json:"name"`
	Period       finance.Period               `json:"period"`
	Record       finance.AccountBalanceRecord `json:"record"`
	Subsidiaries []finance.SubsidiaryRecord   `json:"subsidiaries,omitempty"`
}

// InventoryValuation values stock as of q.EndDate
func (s *Service) InventoryValuation(ctx context.Context, q ValuationQuery) (inventory.Valuation, error) {
	return track(ctx, s, "inventory_valuation", func(ctx context.Context, snap *Snapshot) (inventory.Valuation, error) {
		return s.valuation(ctx, snap, q.EndDate, s.method(q.Method), inventory.Scope{BranchID: q.BranchID, StoreID: q.StoreID})
	}, telemetry.SpanAttrToDate, q.EndDate.String(), telemetry.SpanAttrMethod, q.Method)
}

// TrialBalance builds and validates the trial balance of a period
func (s *Service) TrialBalance(ctx context.Context, q PeriodQuery) (*finance.TrialBalance, error) {
	return track(ctx, s, "trial_balance", func(ctx context.Context, snap *Snapshot) (*finance.TrialBalance, error) {
		period := finance.Period{From: q.From, To: q.To}
		method := s.method(q.Method)
		detail := s.options.IncludeSubsidiary
		if q.IncludeSubsidiary != nil {
			detail = *q.IncludeSubsidiary
		}
		key := fmt.Sprintf("trial_balance|%s|%s|%s|%t", period.From, period.To, method, detail)
		tb, err := cached(s.memo, snap.Version, key, func() (*finance.TrialBalance, error) {
			rec, err := s.reconciliation(ctx, snap, period, method)
			if err != nil {
				return nil, err
			}
			return finance.BuildTrialBalance(rec,
				finance.WithTolerance(s.options.Tolerance),
				finance.WithSubsidiaryDetail(detail),
			), nil
		})
		if err != nil {
			return nil, err
		}
		if !tb.Check.IsBalanced() {
			s.metrics.RecordImbalance(ctx)
			logger.WithLogger(ctx, s.logger).Warn("Trial balance does not balance",
				zap.String("from", period.From.String()),
				zap.String("to", period.To.String()),
				zap.Bool("opening_balanced", tb.Check.OpeningBalanced),
				zap.Bool("period_balanced", tb.Check.PeriodBalanced),
				zap.Bool("closing_balanced", tb.Check.ClosingBalanced),
				zap.String("imbalance", tb.Check.Imbalance.String()),
			)
		}
		return tb.Clone(), nil
	}, telemetry.SpanAttrFromDate, q.From.String(), telemetry.SpanAttrToDate, q.To.String())
}

// IncomeStatement derives the profit and loss of a period
func (s *Service) IncomeStatement(ctx context.Context, q PeriodQuery) (*finance.IncomeStatement, error) {
	return track(ctx, s, "income_statement", func(ctx context.Context, snap *Snapshot) (*finance.IncomeStatement, error) {
		rec, err := s.reconciliation(ctx, snap, finance.Period{From: q.From, To: q.To}, s.method(q.Method))
		if err != nil {
			return nil, err
		}
		return finance.BuildIncomeStatement(rec), nil
	}, telemetry.SpanAttrFromDate, q.From.String(), telemetry.SpanAttrToDate, q.To.String())
}

// BalanceSheet derives the financial position at q.To. Earnings before
// q.From are presented as retained earnings.
func (s *Service) BalanceSheet(ctx context.Context, q PeriodQuery) (*FinancialPosition, error) {
	return track(ctx, s, "balance_sheet", func(ctx context.Context, snap *Snapshot) (*FinancialPosition, error) {
		rec, err := s.reconciliation(ctx, snap, finance.Period{From: q.From, To: q.To}, s.method(q.Method))
		if err != nil {
			return nil, err
		}
		bs := finance.BuildBalanceSheet(rec, s.options.Tolerance)
		return &FinancialPosition{BalanceSheet: bs, Liquidity: finance.BuildLiquidityAnalysis(bs)}, nil
	}, telemetry.SpanAttrFromDate, q.From.String(), telemetry.SpanAttrToDate, q.To.String())
}

// AccountStatement returns the record of a control account, or of one
// account instance when q.AccountID is set
func (s *Service) AccountStatement(ctx context.Context, q AccountQuery) (*AccountStatement, error) {
	return track(ctx, s, "account_statement", func(ctx context.Context, snap *Snapshot) (*AccountStatement, error) {
		entry, ok := finance.ChartEntryOf(q.Kind)
		if !ok {
			return nil, shared.NewInvalidInputError("unknown account kind %q", q.Kind)
		}
		rec, err := s.reconciliation(ctx, snap, finance.Period{From: q.From, To: q.To}, s.method(q.Method))
		if err != nil {
			return nil, err
		}
		summary, _ := rec.Account(q.Kind)
		out := &AccountStatement{Kind: q.Kind, Name: entry.Name, Period: rec.Period}
		if q.AccountID == "" {
			out.Record = summary.Record
			out.Subsidiaries = summary.Subsidiaries
			return out, nil
		}
		sub, _ := rec.Subsidiary(q.Kind, q.AccountID)
		out.AccountID = q.AccountID
		if sub.Name != "" {
			out.Name = sub.Name
		}
		out.Record = sub.Record
		return out, nil
	}, telemetry.SpanAttrFromDate, q.From.String(), telemetry.SpanAttrToDate, q.To.String())
}

// track loads the snapshot and runs one report inside a span, recording
// duration and outcome
func track[T any](ctx context.Context, s *Service, report string, run func(context.Context, *Snapshot) (T, error), keyValues ...any) (T, error) {
	start := time.Now()
	ctx, span := telemetry.StartServiceSpan(ctx, "report", report, append([]any{telemetry.SpanAttrReport, report}, keyValues...)...)
	defer span.End()

	var zero T
	snap, err := s.snapshot(ctx)
	if err == nil {
		telemetry.SetAttributes(span, telemetry.SpanAttrSnapshotVersion, snap.Version)
		var out T
		telemetry.WithProfilingLabels(ctx, func(ctx context.Context) {
			out, err = run(ctx, snap)
		}, telemetry.SpanAttrReport, report)
		if err == nil {
			s.metrics.RecordReport(ctx, report, time.Since(start), nil)
			return out, nil
		}
	}

	telemetry.RecordError(span, err)
	s.metrics.RecordReport(ctx, report, time.Since(start), err)
	logger.WithLogger(ctx, s.logger).Error("Report failed", zap.String("report", report), zap.Error(err))
	return zero, err
}

// snapshot loads the current inputs and makes their version current
func (s *Service) snapshot(ctx context.Context) (*Snapshot, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "report", "load_snapshot")
	defer span.End()

	snap, err := loadSnapshot(ctx, s.source)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	s.metrics.RecordSnapshotLoad(ctx)
	if s.memo.advance(snap.Version) {
		logger.WithLogger(ctx, s.logger).Debug("Ledger snapshot changed",
			zap.String("version", fmt.Sprintf("%016x", snap.Version)),
		)
	}
	return snap, nil
}

func (s *Service) method(requested string) string {
	if requested != "" {
		return requested
	}
	return s.options.DefaultMethod
}

// ledgers normalizes the raw snapshot once per version
func (s *Service) ledgers(ctx context.Context, snap *Snapshot) (ledger.Ledgers, error) {
	return cached(s.memo, snap.Version, "ledgers", func() (ledger.Ledgers, error) {
		normalized := ledger.NormalizeAll(snap.Raw)
		log := logger.WithLogger(ctx, s.logger)
		for _, kind := range ledger.AllKinds() {
			raw, kept := len(snap.Raw[kind]), len(normalized[kind])
			invalidDates := 0
			for _, tx := range normalized[kind] {
				if tx.Date.IsZero() {
					invalidDates++
				}
			}
			if raw != kept || invalidDates > 0 {
				log.Debug("Ledger records degraded during normalization",
					zap.String("kind", kind.String()),
					zap.Int("raw", raw),
					zap.Int("kept", kept),
					zap.Int("invalid_dates", invalidDates),
				)
			}
		}
		return normalized, nil
	})
}

func (s *Service) opening(snap *Snapshot) inventory.OpeningBalances {
	v, _ := cached(s.memo, snap.Version, "opening", func() (inventory.OpeningBalances, error) {
		return inventory.AggregateOpeningBalances(snap.StoreItems), nil
	})
	return v
}

func (s *Service) valuation(ctx context.Context, snap *Snapshot, end valueobject.Date, method string, scope inventory.Scope) (inventory.Valuation, error) {
	key := fmt.Sprintf("valuation|%s|%s|%s|%s", end, method, scope.BranchID, scope.StoreID)
	return cached(s.memo, snap.Version, key, func() (inventory.Valuation, error) {
		ledgers, err := s.ledgers(ctx, snap)
		if err != nil {
			return inventory.Valuation{}, err
		}
		return s.valuator.Value(ctx, inventory.ValuationInput{
			Items:      snap.Items,
			Opening:    s.opening(snap),
			StoreItems: snap.StoreItems,
			Stores:     snap.Stores,
			Ledgers:    ledgers,
			EndDate:    end,
			Method:     method,
			Scope:      scope,
		})
	})
}

func (s *Service) reconciliation(ctx context.Context, snap *Snapshot, period finance.Period, method string) (*finance.Reconciliation, error) {
	if err := period.Validate(); err != nil {
		return nil, err
	}
	key := fmt.Sprintf("reconciliation|%s|%s|%s", period.From, period.To, method)
	return cached(s.memo, snap.Version, key, func() (*finance.Reconciliation, error) {
		ledgers, err := s.ledgers(ctx, snap)
		if err != nil {
			return nil, err
		}
		opening, err := s.valuation(ctx, snap, period.From.AddDays(-1), method, inventory.Scope{})
		if err != nil {
			return nil, err
		}
		closing, err := s.valuation(ctx, snap, period.To, method, inventory.Scope{})
		if err != nil {
			return nil, err
		}
		return s.reconciler.Reconcile(finance.ReconcileInput{
			Ledgers:  ledgers,
			Accounts: snap.Accounts,
			Inventory: finance.InventoryPosition{
				OpeningValue: opening.TotalValue,
				ClosingValue: closing.TotalValue,
				InitialValue: inventory.InitialValue(snap.Items, s.opening(snap)),
			},
			Period: period,
		})
	})
}
