// Package adapters はaccountsフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"kstock_reporter/internal/feature/accounts/domain/entity"
)

// userGorm はユーザー・関心リストの読み取りgorm実装です。
type userGorm struct {
	db *gorm.DB
}

// NewUserRepository は指定されたDB接続でuserGormリポジトリの新しいインスタンスを生成します。
func NewUserRepository(db *gorm.DB) *userGorm {
	return &userGorm{db: db}
}

// FindByID はIDでユーザーを検索します。
func (r *userGorm) FindByID(ctx context.Context, id uint) (entity.User, error) {
	var user entity.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return entity.User{}, err
	}
	return user, nil
}

// ListReportRecipients は日次リポートを受け取るアクティブなユーザーを返します。
func (r *userGorm) ListReportRecipients(ctx context.Context) ([]entity.User, error) {
	var users []entity.User
	if err := r.db.WithContext(ctx).
		Where("receive_daily_report = ? AND is_active = ?", true, true).
		Order("id ASC").
		Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// FirstWatchlistCodes はユーザーの最初の（主たる）関心リストに入っている
// 銘柄コードを返します。リストがなければ空スライスを返します。
func (r *userGorm) FirstWatchlistCodes(ctx context.Context, userID uint) ([]string, error) {
	var wl entity.WatchList
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id ASC").
		First(&wl).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var codes []string
	if err := r.db.WithContext(ctx).
		Model(&entity.WatchListItem{}).
		Where("watch_list_id = ?", wl.ID).
		Order("code ASC").
		Pluck("code", &codes).Error; err != nil {
		return nil, err
	}
	return codes, nil
}
