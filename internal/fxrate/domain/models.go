package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Rate is one stored exchange rate: 1 unit of source currency expressed in
// target currency on a given date.
type Rate struct {
	ID             snowflake.ID `gorm:"primaryKey" json:"id"`
	Date           time.Time    `gorm:"column:rate_date;not null;index" json:"date"`
	SourceCurrency string       `gorm:"column:source_currency;not null;index" json:"source_currency"`
	TargetCurrency string       `gorm:"column:target_currency;not null;index" json:"target_currency"`
	Value          float64      `gorm:"column:rate;not null" json:"rate"`
	CreatedAt      time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Rate) TableName() string { return "fx_rates" }
