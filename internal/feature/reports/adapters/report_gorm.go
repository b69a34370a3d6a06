// Package adapters はreportsフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	candleentity "kstock_reporter/internal/feature/candles/domain/entity"
	"kstock_reporter/internal/feature/reports/domain/entity"
)

// reportGorm はリポート永続化とムーバー照会のgorm実装です。
type reportGorm struct {
	db *gorm.DB
}

// NewReportRepository は指定されたDB接続でreportGormリポジトリの新しいインスタンスを生成します。
func NewReportRepository(db *gorm.DB) *reportGorm {
	return &reportGorm{db: db}
}

// Upsert は(user_id, report_date)をキーにリポートを作成または上書きします。
func (r *reportGorm) Upsert(ctx context.Context, report entity.Report) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "report_date"}},
		DoUpdates: clause.AssignmentColumns([]string{"title", "body", "updated_at"}),
	}).Create(&report).Error
}

// FindByUserAndDate は指定ユーザー・日付のリポートを返します。
// 存在しなければ(nil, nil)を返します。
func (r *reportGorm) FindByUserAndDate(ctx context.Context, userID uint, date time.Time) (*entity.Report, error) {
	var report entity.Report
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND report_date = ?", userID, date).
		First(&report).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &report, nil
}

// TopMovers は指定日の日足のうち、関心銘柄に含まれ等落率が非nullの行を
// 等落率の降順でlimit件返します。
func (r *reportGorm) TopMovers(ctx context.Context, codes []string, date time.Time, limit int) ([]entity.Mover, error) {
	return r.movers(ctx, codes, date, limit, "candles.change_rate DESC, candles.code ASC")
}

// BottomMovers は等落率の昇順でlimit件返します。
func (r *reportGorm) BottomMovers(ctx context.Context, codes []string, date time.Time, limit int) ([]entity.Mover, error) {
	return r.movers(ctx, codes, date, limit, "candles.change_rate ASC, candles.code ASC")
}

func (r *reportGorm) movers(ctx context.Context, codes []string, date time.Time, limit int, order string) ([]entity.Mover, error) {
	if len(codes) == 0 {
		return nil, nil
	}

	var rows []struct {
		Code       string
		Name       string
		Close      decimal.Decimal
		ChangeRate decimal.Decimal
	}
	err := r.db.WithContext(ctx).
		Table("candles").
		Select("candles.code AS code, instruments.name AS name, candles.close AS close, candles.change_rate AS change_rate").
		Joins("JOIN instruments ON instruments.code = candles.code").
		Where("candles.granularity = ? AND candles.time = ?", string(candleentity.GranularityDaily), date).
		Where("candles.code IN ?", codes).
		Where("candles.change_rate IS NOT NULL").
		Order(order).
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]entity.Mover, 0, len(rows))
	for _, row := range rows {
		out = append(out, entity.Mover{
			Code:       row.Code,
			Name:       row.Name,
			Close:      row.Close,
			ChangeRate: row.ChangeRate,
		})
	}
	return out, nil
}
