// Package adapters はcandlesフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"kstock_reporter/internal/feature/candles/domain/entity"
	"kstock_reporter/internal/feature/candles/usecase"
)

type candleGorm struct {
	db *gorm.DB
}

var _ usecase.CandleRepository = (*candleGorm)(nil)

// NewCandleRepository は指定されたDB接続でcandleGormリポジトリの新しいインスタンスを生成します。
func NewCandleRepository(db *gorm.DB) *candleGorm {
	return &candleGorm{db: db}
}

// CandleModel はcandlesテーブルの永続化モデルです。
// (code, granularity, time) の複合ユニークキーが唯一の同時実行制御であり、
// 同じキーへのアップサートはストレージ層で直列化されます。
type CandleModel struct {
	ID          uint      `gorm:"primaryKey"`
	Code        string    `gorm:"size:32;not null;uniqueIndex:candle_code_gran_time,priority:1"`
	Granularity string    `gorm:"size:16;not null;uniqueIndex:candle_code_gran_time,priority:2"`
	Time        time.Time `gorm:"not null;uniqueIndex:candle_code_gran_time,priority:3"`

	Open   decimal.Decimal `gorm:"type:decimal(20,8);not null"`
	High   decimal.Decimal `gorm:"type:decimal(20,8);not null"`
	Low    decimal.Decimal `gorm:"type:decimal(20,8);not null"`
	Close  decimal.Decimal `gorm:"type:decimal(20,8);not null"`
	Volume decimal.Decimal `gorm:"type:decimal(20,8);not null"`

	Amount     decimal.NullDecimal `gorm:"type:decimal(24,2)"`
	Change     decimal.NullDecimal `gorm:"type:decimal(20,8)"`
	ChangeRate decimal.NullDecimal `gorm:"type:decimal(9,4)"`
	MarketCap  decimal.NullDecimal `gorm:"type:decimal(24,2)"`
}

func (CandleModel) TableName() string {
	return "candles"
}

func toModel(e entity.Candle) CandleModel {
	return CandleModel{
		Code:        e.Code,
		Granularity: string(e.Granularity),
		Time:        e.Time,
		Open:        e.Open,
		High:        e.High,
		Low:         e.Low,
		Close:       e.Close,
		Volume:      e.Volume,
		Amount:      e.Amount,
		Change:      e.Change,
		ChangeRate:  e.ChangeRate,
		MarketCap:   e.MarketCap,
	}
}

func toEntity(m CandleModel) entity.Candle {
	return entity.Candle{
		Code:        m.Code,
		Granularity: entity.Granularity(m.Granularity),
		Time:        m.Time,
		Open:        m.Open,
		High:        m.High,
		Low:         m.Low,
		Close:       m.Close,
		Volume:      m.Volume,
		Amount:      m.Amount,
		Change:      m.Change,
		ChangeRate:  m.ChangeRate,
		MarketCap:   m.MarketCap,
	}
}

// UpsertBatch はローソク足を一括で挿入または上書きします。
// 1つのINSERT ... ON CONFLICT文として実行されるため、1回の呼び出しは
// アトミックです。同じ(code, granularity, time)への再実行は値を上書きします。
func (r *candleGorm) UpsertBatch(ctx context.Context, candles []entity.Candle) error {
	if len(candles) == 0 {
		return nil
	}
	ms := make([]CandleModel, 0, len(candles))
	for _, e := range candles {
		ms = append(ms, toModel(e))
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "code"}, {Name: "granularity"}, {Name: "time"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"open", "high", "low", "close", "volume",
			"amount", "change", "change_rate", "market_cap",
		}),
	}).Create(&ms).Error
}

// Find は期間・件数で絞り込んだローソク足を期間終了日の降順で返します。
// startとendはnil許容で、指定された場合のみ範囲条件になります。
func (r *candleGorm) Find(ctx context.Context, code string, granularity entity.Granularity, start, end *time.Time, limit int) ([]entity.Candle, error) {
	var rows []CandleModel
	q := r.db.WithContext(ctx).
		Where("code = ? AND granularity = ?", code, string(granularity)).
		Order("time DESC")
	if start != nil {
		q = q.Where("time >= ?", *start)
	}
	if end != nil {
		q = q.Where("time <= ?", *end)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]entity.Candle, 0, len(rows))
	for _, m := range rows {
		out = append(out, toEntity(m))
	}
	return out, nil
}

// FindRange は[start, end]のローソク足を期間終了日の昇順で返します。
// 集計エンジンの入力用で、日付順がopen/closeの決定に必要です。
func (r *candleGorm) FindRange(ctx context.Context, code string, granularity entity.Granularity, start, end time.Time) ([]entity.Candle, error) {
	var rows []CandleModel
	err := r.db.WithContext(ctx).
		Where("code = ? AND granularity = ?", code, string(granularity)).
		Where("time >= ? AND time <= ?", start, end).
		Order("time ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]entity.Candle, 0, len(rows))
	for _, m := range rows {
		out = append(out, toEntity(m))
	}
	return out, nil
}
