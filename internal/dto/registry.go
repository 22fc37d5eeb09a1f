package dto

type RegisterCompanyRequest struct {
	Name   string  `json:"name" validate:"required,max=255"`
	Ticker *string `json:"ticker" validate:"omitempty,max=32"`
	Sector *string `json:"sector" validate:"omitempty,max=128"`
}

type RecordFinancialsRequest struct {
	CompanyID        uint     `json:"company_id" validate:"required"`
	ReportDate       string   `json:"report_date" validate:"required"`
	DebtRatio        *float64 `json:"debt_ratio"`
	PERatio          *float64 `json:"pe_ratio"`
	Revenue          *float64 `json:"revenue"`
	ProfitMargin     *float64 `json:"profit_margin"`
	CashRatio        *float64 `json:"cash_ratio"`
	InterestCoverage *float64 `json:"interest_coverage"`
}

type RecordMacroRequest struct {
	ReportDate   string   `json:"report_date" validate:"required"`
	GDPGrowth    *float64 `json:"gdp_growth"`
	InterestRate *float64 `json:"interest_rate"`
	Inflation    *float64 `json:"inflation"`
	CreditSpread *float64 `json:"credit_spread"`
}

// RecordEventRequest defaults EventDate to the time of insertion when empty.
type RecordEventRequest struct {
	CompanyID   uint     `json:"company_id" validate:"required"`
	EventText   string   `json:"event_text" validate:"required"`
	EventDate   string   `json:"event_date"`
	Sentiment   *float64 `json:"sentiment"`
	Tags        []string `json:"tags" validate:"omitempty,dive,required,max=64"`
	ImpactScore *float64 `json:"impact_score"`
}

type WhatIfRequest struct {
	Overrides map[string]interface{} `json:"overrides"`
}

type ScoreHistoryQuery struct {
	From  string `query:"from"`
	To    string `query:"to"`
	Limit int    `query:"limit" validate:"omitempty,min=1"`
}
