package model

import "time"

type Company struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"name"`
	Ticker    *string   `gorm:"type:varchar(32)" json:"ticker,omitempty"`
	Sector    *string   `gorm:"type:varchar(128)" json:"sector,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Company) TableName() string {
	return "companies"
}
