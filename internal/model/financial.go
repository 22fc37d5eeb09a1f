package model

import (
	"time"

	"credit-intelligence/internal/scoring"
)

// FinancialSnapshot is one reported set of ratios for a company. Rows are never updated.
type FinancialSnapshot struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	CompanyID        uint      `gorm:"not null;index:idx_financials_company_date" json:"company_id"`
	ReportDate       time.Time `gorm:"type:date;not null;index:idx_financials_company_date" json:"report_date"`
	DebtRatio        *float64  `json:"debt_ratio"`
	PERatio          *float64  `gorm:"column:pe_ratio" json:"pe_ratio"`
	Revenue          *float64  `json:"revenue"`
	ProfitMargin     *float64  `json:"profit_margin"`
	CashRatio        *float64  `json:"cash_ratio"`
	InterestCoverage *float64  `json:"interest_coverage"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (FinancialSnapshot) TableName() string {
	return "financials"
}

func (f FinancialSnapshot) ToScoring() scoring.Financials {
	return scoring.Financials{
		DebtRatio:        f.DebtRatio,
		PERatio:          f.PERatio,
		Revenue:          f.Revenue,
		ProfitMargin:     f.ProfitMargin,
		CashRatio:        f.CashRatio,
		InterestCoverage: f.InterestCoverage,
	}
}
