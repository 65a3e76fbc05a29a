package dto

// ValuationRequest holds the query parameters of an inventory valuation
type ValuationRequest struct {
	EndDate  string `form:"end_date" binding:"required,datetime=2006-01-02"`
	Method   string `form:"method" binding:"omitempty,valuation_method"`
	BranchID string `form:"branch_id" binding:"omitempty,max=64"`
	StoreID  string `form:"store_id" binding:"omitempty,max=64"`
}

// PeriodRequest holds the query parameters shared by the period reports
type PeriodRequest struct {
	FromDate string `form:"from_date" binding:"required,datetime=2006-01-02"`
	ToDate   string `form:"to_date" binding:"required,datetime=2006-01-02"`
	Method   string `form:"method" binding:"omitempty,valuation_method"`
}

// TrialBalanceRequest adds the subsidiary detail switch to a period
type TrialBalanceRequest struct {
	PeriodRequest
	Detail *bool `form:"detail"`
}

// AccountStatementRequest selects one control account, or one instance of it
type AccountStatementRequest struct {
	PeriodRequest
	AccountID string `form:"account_id" binding:"omitempty,max=64"`
}

// AccountKindURI is the path parameter of the account statement route
type AccountKindURI struct {
	Kind string `uri:"kind" binding:"required,account_kind"`
}
