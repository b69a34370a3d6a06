// Package adapters はcollectionフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"kstock_reporter/internal/feature/collection/domain/entity"
)

// CollectionConfigInstrument は収集設定と銘柄コードの紐付けです。
type CollectionConfigInstrument struct {
	ID       uint   `gorm:"primaryKey"`
	ConfigID uint   `gorm:"not null;uniqueIndex:config_instrument,priority:1"`
	Code     string `gorm:"size:20;not null;uniqueIndex:config_instrument,priority:2"`
}

func (CollectionConfigInstrument) TableName() string {
	return "collection_config_instruments"
}

// configGorm は収集設定リポジトリのgorm実装です。
type configGorm struct {
	db *gorm.DB
}

// NewConfigRepository は指定されたDB接続でconfigGormリポジトリの新しいインスタンスを生成します。
func NewConfigRepository(db *gorm.DB) *configGorm {
	return &configGorm{db: db}
}

// Upsert は名前をキーに収集設定を作成または更新します。
func (r *configGorm) Upsert(ctx context.Context, cfg entity.CollectionConfig) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"granularity", "collection_interval", "period_days", "is_active"}),
	}).Create(&cfg).Error
}

// BindInstrument は設定に銘柄コードを追加します。既に紐付いていれば何もしません。
func (r *configGorm) BindInstrument(ctx context.Context, configID uint, code string) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "config_id"}, {Name: "code"}},
		DoNothing: true,
	}).Create(&CollectionConfigInstrument{ConfigID: configID, Code: code}).Error
}

// ListActive はアクティブな収集設定を名前順に返します。
func (r *configGorm) ListActive(ctx context.Context) ([]entity.CollectionConfig, error) {
	var configs []entity.CollectionConfig
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("name ASC").
		Find(&configs).Error; err != nil {
		return nil, err
	}
	return configs, nil
}

// ActiveInstrumentCodes は設定に紐付く銘柄のうち、銘柄マスタ上で
// アクティブなもののコードを返します。
func (r *configGorm) ActiveInstrumentCodes(ctx context.Context, configID uint) ([]string, error) {
	var codes []string
	err := r.db.WithContext(ctx).
		Table("collection_config_instruments").
		Select("collection_config_instruments.code").
		Joins("JOIN instruments ON instruments.code = collection_config_instruments.code").
		Where("collection_config_instruments.config_id = ? AND instruments.is_active = ?", configID, true).
		Order("collection_config_instruments.code ASC").
		Pluck("collection_config_instruments.code", &codes).Error
	if err != nil {
		return nil, err
	}
	return codes, nil
}
