// Package entity defines the domain models for the collection feature.
package entity

import "time"

// 収集間隔の選択肢。
const (
	IntervalDaily   = "daily"
	IntervalWeekly  = "weekly"
	IntervalMonthly = "monthly"
)

// PeriodDays の許容範囲。プロバイダーが1リクエストで返せる上限に合わせています。
const (
	MinPeriodDays = 1
	MaxPeriodDays = 200
)

// CollectionConfig は相場収集のポリシーです。対象銘柄の集合を
// 時間足・実行間隔・遡及日数に紐付け、定期実行と手動再収集の両方が参照します。
type CollectionConfig struct {
	ID                 uint      `gorm:"primaryKey"`
	Name               string    `gorm:"size:100;not null;uniqueIndex"`
	Granularity        string    `gorm:"size:16;not null;default:'1day'"`
	CollectionInterval string    `gorm:"size:20;not null;default:'daily'"`
	PeriodDays         int       `gorm:"not null;default:30"` // 1〜200
	IsActive           bool      `gorm:"not null;default:true"`
	CreatedAt          time.Time `gorm:"autoCreateTime"`
	UpdatedAt          time.Time `gorm:"autoUpdateTime"`
}

// ClampPeriodDays はPeriodDaysを許容範囲[1, 200]に丸めた値を返します。
func (c CollectionConfig) ClampPeriodDays() int {
	if c.PeriodDays < MinPeriodDays {
		return MinPeriodDays
	}
	if c.PeriodDays > MaxPeriodDays {
		return MaxPeriodDays
	}
	return c.PeriodDays
}
