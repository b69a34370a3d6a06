// Package adapters はinstrumentsフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"kstock_reporter/internal/feature/instruments/domain/entity"
	"kstock_reporter/internal/feature/instruments/usecase"
)

// instrumentGorm はInstrumentRepositoryインターフェースのgorm実装です。
type instrumentGorm struct {
	db *gorm.DB
}

var _ usecase.InstrumentRepository = (*instrumentGorm)(nil)

// NewInstrumentRepository は指定されたDB接続でinstrumentGormリポジトリの新しいインスタンスを生成します。
func NewInstrumentRepository(db *gorm.DB) *instrumentGorm {
	return &instrumentGorm{db: db}
}

// Upsert はコードをキーに銘柄を作成または更新します。
func (r *instrumentGorm) Upsert(ctx context.Context, ins entity.Instrument) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "code"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "market", "sector", "listed_at", "is_active"}),
	}).Create(&ins).Error
}

// ListActive はコード順にすべてのアクティブな銘柄を返します。
func (r *instrumentGorm) ListActive(ctx context.Context) ([]entity.Instrument, error) {
	var instruments []entity.Instrument
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("code ASC").
		Find(&instruments).Error; err != nil {
		return nil, err
	}
	return instruments, nil
}

// ListActiveCodes はコード順にアクティブな銘柄のコードのみを返します。
func (r *instrumentGorm) ListActiveCodes(ctx context.Context) ([]string, error) {
	var codes []string
	if err := r.db.WithContext(ctx).
		Model(&entity.Instrument{}).
		Where("is_active = ?", true).
		Order("code ASC").
		Pluck("code", &codes).Error; err != nil {
		return nil, err
	}
	return codes, nil
}
