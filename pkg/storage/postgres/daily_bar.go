package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm/clause"
)

// UpsertDailyBars writes records in one statement; an existing (symbol, date)
// row takes the new prices.
func (p *PostgresClient) UpsertDailyBars(ctx context.Context, records []DailyBarRecord) (int64, error) {
	if len(records) == 0 {
		return 0, nil
	}

	tx := p.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "symbol"},
			{Name: "date"},
		},
		DoUpdates: clause.AssignmentColumns([]string{"open", "high", "low", "close", "volume", "source"}),
	}).CreateInBatches(records, 500)

	if tx.Error != nil {
		return 0, fmt.Errorf("upsert daily bars: %w", tx.Error)
	}
	return tx.RowsAffected, nil
}

// GetDailyBars returns symbol's bars with start <= date <= end, oldest first.
func (p *PostgresClient) GetDailyBars(ctx context.Context, symbol string, start, end time.Time) ([]DailyBarRecord, error) {
	var records []DailyBarRecord
	err := p.DB.WithContext(ctx).
		Where("symbol = ? AND date BETWEEN ? AND ?", symbol, start, end).
		Order("date ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (p *PostgresClient) DeleteDailyBars(ctx context.Context, symbol string) error {
	return p.DB.WithContext(ctx).
		Where("symbol = ?", symbol).
		Delete(&DailyBarRecord{}).Error
}
