package model

import (
	"time"

	"credit-intelligence/internal/scoring"
)

// MacroSnapshot is a global macroeconomic reading. The latest one applies to every company.
type MacroSnapshot struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	ReportDate   time.Time `gorm:"type:date;not null;index" json:"report_date"`
	GDPGrowth    *float64  `gorm:"column:gdp_growth" json:"gdp_growth"`
	InterestRate *float64  `json:"interest_rate"`
	Inflation    *float64  `json:"inflation"`
	CreditSpread *float64  `json:"credit_spread"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (MacroSnapshot) TableName() string {
	return "macro"
}

func (m MacroSnapshot) ToScoring() *scoring.Macro {
	return &scoring.Macro{
		GDPGrowth:    m.GDPGrowth,
		InterestRate: m.InterestRate,
		Inflation:    m.Inflation,
		CreditSpread: m.CreditSpread,
	}
}
