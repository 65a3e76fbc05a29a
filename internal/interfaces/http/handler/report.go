package handler

import (
	"context"

	"github.com/erp/reportengine/internal/application/report"
	"github.com/erp/reportengine/internal/domain/finance"
	"github.com/erp/reportengine/internal/domain/inventory"
	"github.com/erp/reportengine/internal/domain/ledger"
	"github.com/erp/reportengine/internal/domain/shared/valueobject"
	"github.com/erp/reportengine/internal/interfaces/http/dto"
	"github.com/erp/reportengine/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// ReportService computes the reports served by ReportHandler
type ReportService interface {
	InventoryValuation(ctx context.Context, q report.ValuationQuery) (inventory.Valuation, error)
	TrialBalance(ctx context.Context, q report.PeriodQuery) (*finance.TrialBalance, error)
	IncomeStatement(ctx context.Context, q report.PeriodQuery) (*finance.IncomeStatement, error)
	BalanceSheet(ctx context.Context, q report.PeriodQuery) (*report.FinancialPosition, error)
	AccountStatement(ctx context.Context, q report.AccountQuery) (*report.AccountStatement, error)
}

// ReportHandler handles the report API endpoints
type ReportHandler struct {
	BaseHandler
	service ReportService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(service ReportService) *ReportHandler {
	return &ReportHandler{service: service}
}

// InventoryValuation godoc
//
//	@Summary	Value stock on hand
//	@Tags		reports
//	@Produce	json
//	@Param		end_date	query		string	true	"Valuation date (YYYY-MM-DD)"
//	@Param		method		query		string	false	"average_cost, purchase_price or sale_price"
//	@Param		branch_id	query		string	false	"Restrict to one branch"
//	@Param		store_id	query		string	false	"Restrict to one store"
//	@Success	200			{object}	dto.Response
//	@Failure	400			{object}	dto.Response
//	@Router		/reports/inventory-valuation [get]
func (h *ReportHandler) InventoryValuation(c *gin.Context) {
	var req dto.ValuationRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	endDate, err := valueobject.ParseDate(req.EndDate)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	valuation, err := h.service.InventoryValuation(c.Request.Context(), report.ValuationQuery{
		EndDate:  endDate,
		Method:   req.Method,
		BranchID: req.BranchID,
		StoreID:  req.StoreID,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, valuation)
}

// TrialBalance godoc
//
//	@Summary	Build and validate the trial balance of a period
//	@Tags		reports
//	@Produce	json
//	@Param		from_date	query		string	true	"Period start (YYYY-MM-DD)"
//	@Param		to_date		query		string	true	"Period end (YYYY-MM-DD)"
//	@Param		method		query		string	false	"Inventory valuation method"
//	@Param		detail		query		bool	false	"Include per-account subsidiary lines"
//	@Success	200			{object}	dto.Response
//	@Failure	400			{object}	dto.Response
//	@Router		/reports/trial-balance [get]
func (h *ReportHandler) TrialBalance(c *gin.Context) {
	var req dto.TrialBalanceRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	q, ok := h.periodQuery(c, req.PeriodRequest)
	if !ok {
		return
	}
	q.IncludeSubsidiary = req.Detail

	tb, err := h.service.TrialBalance(c.Request.Context(), q)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, tb)
}

// IncomeStatement godoc
//
//	@Summary	Derive the profit and loss of a period
//	@Tags		reports
//	@Produce	json
//	@Param		from_date	query		string	true	"Period start (YYYY-MM-DD)"
//	@Param		to_date		query		string	true	"Period end (YYYY-MM-DD)"
//	@Param		method		query		string	false	"Inventory valuation method"
//	@Success	200			{object}	dto.Response
//	@Router		/reports/income-statement [get]
func (h *ReportHandler) IncomeStatement(c *gin.Context) {
	var req dto.PeriodRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	q, ok := h.periodQuery(c, req)
	if !ok {
		return
	}

	statement, err := h.service.IncomeStatement(c.Request.Context(), q)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, statement)
}

// BalanceSheet godoc
//
//	@Summary	Derive the financial position at the end of a period
//	@Tags		reports
//	@Produce	json
//	@Param		from_date	query		string	true	"Period start (YYYY-MM-DD)"
//	@Param		to_date		query		string	true	"Period end (YYYY-MM-DD)"
//	@Param		method		query		string	false	"Inventory valuation method"
//	@Success	200			{object}	dto.Response
//	@Router		/reports/balance-sheet [get]
func (h *ReportHandler) BalanceSheet(c *gin.Context) {
	var req dto.PeriodRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	q, ok := h.periodQuery(c, req)
	if !ok {
		return
	}

	position, err := h.service.BalanceSheet(c.Request.Context(), q)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, position)
}

// AccountStatement godoc
//
//	@Summary	Balance record of one control account or account instance
//	@Tags		reports
//	@Produce	json
//	@Param		kind		path		string	true	"Account kind (customer, supplier, safe, ...)"
//	@Param		from_date	query		string	true	"Period start (YYYY-MM-DD)"
//	@Param		to_date		query		string	true	"Period end (YYYY-MM-DD)"
//	@Param		account_id	query		string	false	"One account of the kind"
//	@Success	200			{object}	dto.Response
//	@Router		/reports/accounts/{kind} [get]
func (h *ReportHandler) AccountStatement(c *gin.Context) {
	var uri dto.AccountKindURI
	if err := c.ShouldBindUri(&uri); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	var req dto.AccountStatementRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	q, ok := h.periodQuery(c, req.PeriodRequest)
	if !ok {
		return
	}

	statement, err := h.service.AccountStatement(c.Request.Context(), report.AccountQuery{
		PeriodQuery: q,
		Kind:        ledger.AccountKind(uri.Kind),
		AccountID:   req.AccountID,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, statement)
}

// periodQuery parses the period dates, answering 400 when they are unusable
func (h *ReportHandler) periodQuery(c *gin.Context, req dto.PeriodRequest) (report.PeriodQuery, bool) {
	from, err := valueobject.ParseDate(req.FromDate)
	if err != nil {
		h.BadRequest(c, err.Error())
		return report.PeriodQuery{}, false
	}
	to, err := valueobject.ParseDate(req.ToDate)
	if err != nil {
		h.BadRequest(c, err.Error())
		return report.PeriodQuery{}, false
	}
	if to.Before(from) {
		h.BadRequest(c, "to_date must not be before from_date")
		return report.PeriodQuery{}, false
	}
	return report.PeriodQuery{From: from, To: to, Method: req.Method}, true
}
