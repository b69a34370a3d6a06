// Package entity defines the domain models for the reports feature.
package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Report は1ユーザー・1日付につき1件の日次ダイジェストです。
// (user_id, report_date) がユニークで、再生成は上書きになります。
type Report struct {
	ID         uint      `gorm:"primaryKey"`
	UserID     uint      `gorm:"not null;uniqueIndex:report_user_date,priority:1"`
	ReportDate time.Time `gorm:"not null;uniqueIndex:report_user_date,priority:2"`
	Title      string    `gorm:"size:200;not null"`
	Body       string    `gorm:"type:text;not null"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime"`
}

// Mover は等落率で順位付けされた1銘柄の当日スナップショットです。
type Mover struct {
	Code       string          `json:"code"`
	Name       string          `json:"name"`
	Close      decimal.Decimal `json:"close"`
	ChangeRate decimal.Decimal `json:"change_rate"`
}
