package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/erp/reportengine/internal/application/report"
	"github.com/erp/reportengine/internal/domain/finance"
	"github.com/erp/reportengine/internal/domain/inventory"
	"github.com/erp/reportengine/internal/domain/ledger"
	"github.com/erp/reportengine/internal/domain/shared"
	"github.com/erp/reportengine/internal/domain/shared/valueobject"
	"github.com/erp/reportengine/internal/interfaces/http/dto"
	"github.com/erp/reportengine/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	if err := middleware.SetupValidator(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

// fakeReportService records the last query and answers with canned results
type fakeReportService struct {
	err error

	valuationQuery report.ValuationQuery
	periodQuery    report.PeriodQuery
	accountQuery   report.AccountQuery
}

func (f *fakeReportService) InventoryValuation(_ context.Context, q report.ValuationQuery) (inventory.Valuation, error) {
	f.valuationQuery = q
	if f.err != nil {
		return inventory.Valuation{}, f.err
	}
	return inventory.Valuation{EndDate: q.EndDate, TotalValue: decimal.NewFromInt(150)}, nil
}

func (f *fakeReportService) TrialBalance(_ context.Context, q report.PeriodQuery) (*finance.TrialBalance, error) {
	f.periodQuery = q
	if f.err != nil {
		return nil, f.err
	}
	return &finance.TrialBalance{
		Period: finance.Period{From: q.From, To: q.To},
		Check:  finance.BalanceCheck{Status: finance.TrialBalanceStatusBalanced},
	}, nil
}

func (f *fakeReportService) IncomeStatement(_ context.Context, q report.PeriodQuery) (*finance.IncomeStatement, error) {
	f.periodQuery = q
	if f.err != nil {
		return nil, f.err
	}
	return &finance.IncomeStatement{NetProfit: decimal.NewFromInt(42)}, nil
}

func (f *fakeReportService) BalanceSheet(_ context.Context, q report.PeriodQuery) (*report.FinancialPosition, error) {
	f.periodQuery = q
	if f.err != nil {
		return nil, f.err
	}
	return &report.FinancialPosition{
		BalanceSheet: &finance.BalanceSheet{IsBalanced: true},
		Liquidity:    &finance.LiquidityAnalysis{},
	}, nil
}

func (f *fakeReportService) AccountStatement(_ context.Context, q report.AccountQuery) (*report.AccountStatement, error) {
	f.accountQuery = q
	if f.err != nil {
		return nil, f.err
	}
	return &report.AccountStatement{Kind: q.Kind, AccountID: q.AccountID, Name: "Customers"}, nil
}

func newReportEngine(service ReportService) *gin.Engine {
	h := NewReportHandler(service)
	engine := gin.New()
	engine.Use(middleware.RequestID())
	engine.GET("/reports/inventory-valuation", h.InventoryValuation)
	engine.GET("/reports/trial-balance", h.TrialBalance)
	engine.GET("/reports/income-statement", h.IncomeStatement)
	engine.GET("/reports/balance-sheet", h.BalanceSheet)
	engine.GET("/reports/accounts/:kind", h.AccountStatement)
	return engine
}

func get(t *testing.T, engine *gin.Engine, target string) (*httptest.ResponseRecorder, dto.Response) {
	t.Helper()
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return w, resp
}

func TestReportHandler_InventoryValuation(t *testing.T) {
	t.Run("passes the parsed query to the service", func(t *testing.T) {
		service := &fakeReportService{}
		w, resp := get(t, newReportEngine(service),
			"/reports/inventory-valuation?end_date=2024-03-31&method=purchase_price&branch_id=B1&store_id=W2")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, resp.Success)
		assert.Equal(t, valueobject.MustParseDate("2024-03-31"), service.valuationQuery.EndDate)
		assert.Equal(t, "purchase_price", service.valuationQuery.Method)
		assert.Equal(t, "B1", service.valuationQuery.BranchID)
		assert.Equal(t, "W2", service.valuationQuery.StoreID)

		data := resp.Data.(map[string]any)
		assert.Equal(t, "150", data["total_value"])
	})

	t.Run("missing end date", func(t *testing.T) {
		w, resp := get(t, newReportEngine(&fakeReportService{}), "/reports/inventory-valuation")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
		require.Len(t, resp.Error.Details, 1)
		assert.Equal(t, "end_date", resp.Error.Details[0].Field)
	})

	t.Run("malformed end date", func(t *testing.T) {
		w, resp := get(t, newReportEngine(&fakeReportService{}), "/reports/inventory-valuation?end_date=31/03/2024")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
	})

	t.Run("unknown method", func(t *testing.T) {
		w, resp := get(t, newReportEngine(&fakeReportService{}), "/reports/inventory-valuation?end_date=2024-03-31&method=fifo")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		require.Len(t, resp.Error.Details, 1)
		assert.Equal(t, "method", resp.Error.Details[0].Field)
	})

	t.Run("camel case method is accepted", func(t *testing.T) {
		service := &fakeReportService{}
		w, _ := get(t, newReportEngine(service), "/reports/inventory-valuation?end_date=2024-03-31&method=averageCost")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "averageCost", service.valuationQuery.Method)
	})
}

func TestReportHandler_TrialBalance(t *testing.T) {
	t.Run("detail switch is optional", func(t *testing.T) {
		service := &fakeReportService{}
		w, resp := get(t, newReportEngine(service), "/reports/trial-balance?from_date=2024-01-01&to_date=2024-12-31")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, resp.Success)
		assert.Nil(t, service.periodQuery.IncludeSubsidiary)
		assert.Equal(t, valueobject.MustParseDate("2024-01-01"), service.periodQuery.From)
		assert.Equal(t, valueobject.MustParseDate("2024-12-31"), service.periodQuery.To)
	})

	t.Run("detail switch overrides the default", func(t *testing.T) {
		service := &fakeReportService{}
		w, _ := get(t, newReportEngine(service), "/reports/trial-balance?from_date=2024-01-01&to_date=2024-12-31&detail=false")

		assert.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, service.periodQuery.IncludeSubsidiary)
		assert.False(t, *service.periodQuery.IncludeSubsidiary)
	})

	t.Run("period must not be reversed", func(t *testing.T) {
		w, resp := get(t, newReportEngine(&fakeReportService{}), "/reports/trial-balance?from_date=2024-12-31&to_date=2024-01-01")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeBadRequest, resp.Error.Code)
		assert.Contains(t, resp.Error.Message, "to_date")
	})

	t.Run("single day period", func(t *testing.T) {
		w, _ := get(t, newReportEngine(&fakeReportService{}), "/reports/trial-balance?from_date=2024-06-30&to_date=2024-06-30")
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestReportHandler_Statements(t *testing.T) {
	service := &fakeReportService{}
	engine := newReportEngine(service)

	w, resp := get(t, engine, "/reports/income-statement?from_date=2024-01-01&to_date=2024-03-31&method=sale_price")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "sale_price", service.periodQuery.Method)
	assert.Equal(t, "42", resp.Data.(map[string]any)["net_profit"])

	w, resp = get(t, engine, "/reports/balance-sheet?from_date=2024-01-01&to_date=2024-03-31")
	assert.Equal(t, http.StatusOK, w.Code)
	position := resp.Data.(map[string]any)
	assert.Contains(t, position, "balance_sheet")
	assert.Contains(t, position, "liquidity")

	w, _ = get(t, engine, "/reports/income-statement?from_date=2024-01-01")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReportHandler_AccountStatement(t *testing.T) {
	t.Run("control account", func(t *testing.T) {
		service := &fakeReportService{}
		w, resp := get(t, newReportEngine(service), "/reports/accounts/customer?from_date=2024-01-01&to_date=2024-12-31")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, ledger.AccountKindCustomer, service.accountQuery.Kind)
		assert.Empty(t, service.accountQuery.AccountID)
		assert.Equal(t, "customer", resp.Data.(map[string]any)["kind"])
	})

	t.Run("one account instance", func(t *testing.T) {
		service := &fakeReportService{}
		w, _ := get(t, newReportEngine(service), "/reports/accounts/supplier?from_date=2024-01-01&to_date=2024-12-31&account_id=S-7")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, ledger.AccountKindSupplier, service.accountQuery.Kind)
		assert.Equal(t, "S-7", service.accountQuery.AccountID)
	})

	t.Run("unknown kind", func(t *testing.T) {
		w, resp := get(t, newReportEngine(&fakeReportService{}), "/reports/accounts/petty_cash?from_date=2024-01-01&to_date=2024-12-31")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		require.Len(t, resp.Error.Details, 1)
		assert.Equal(t, "kind", resp.Error.Details[0].Field)
	})
}

func TestReportHandler_Errors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{
			name:       "missing collection",
			err:        shared.NewMissingCollectionError("stores"),
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   dto.ErrCodeInvalidInput,
			wantMsg:    `missing required collection "stores"`,
		},
		{
			name:       "unknown strategy",
			err:        fmt.Errorf("%w: cost strategy 'x' not found", shared.ErrNotFound),
			wantStatus: http.StatusNotFound,
			wantCode:   dto.ErrCodeNotFound,
			wantMsg:    "cost strategy 'x' not found",
		},
		{
			name:       "deadline",
			err:        fmt.Errorf("load snapshot: %w", context.DeadlineExceeded),
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   dto.ErrCodeUnavailable,
		},
		{
			name:       "infrastructure failure is hidden",
			err:        errors.New("pq: connection reset by peer"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   dto.ErrCodeInternal,
			wantMsg:    "An internal error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, resp := get(t, newReportEngine(&fakeReportService{err: tt.err}),
				"/reports/trial-balance?from_date=2024-01-01&to_date=2024-12-31")

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			assert.Contains(t, resp.Error.Message, tt.wantMsg)
			assert.NotEmpty(t, resp.Error.RequestID)
			assert.Equal(t, resp.Error.RequestID, w.Header().Get(middleware.RequestIDHeader))
		})
	}
}
