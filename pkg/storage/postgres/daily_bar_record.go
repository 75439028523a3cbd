package postgres

import "time"

// DailyBarRecord is one symbol's trading day in the bar warehouse.
type DailyBarRecord struct {
	ID uint `gorm:"primaryKey"`

	// unique index
	Symbol string    `gorm:"type:text;not null;index:idx_daily_bar_symbol_date,unique"`
	Date   time.Time `gorm:"type:date;not null;index:idx_daily_bar_symbol_date,unique"`

	Open  float64 `gorm:"type:numeric;not null"`
	High  float64 `gorm:"type:numeric;not null"`
	Low   float64 `gorm:"type:numeric;not null"`
	Close float64 `gorm:"type:numeric;not null"`

	Volume int64 `gorm:"not null"`

	Source     string    `gorm:"type:varchar(32);not null;default:'import'"`
	RecordedAt time.Time `gorm:"autoCreateTime"`
}

// TableName overrides the default table name for GORM.
func (DailyBarRecord) TableName() string {
	return "daily_bar_record"
}
