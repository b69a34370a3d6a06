// Package entity defines the identity records for the accounts feature.
// 認証・セッションはこのシステムの範囲外で、リポート生成と通知配信が
// 必要とする最小限の属性だけを持ちます。
package entity

import "time"

// User はリポートの宛先となる利用者です。
type User struct {
	ID                 uint      `gorm:"primaryKey"`
	Username           string    `gorm:"size:150;not null;uniqueIndex"`
	PhoneNumber        string    `gorm:"size:20"`
	ReceiveDailyReport bool      `gorm:"not null;default:true"`
	IsActive           bool      `gorm:"not null;default:true"`
	CreatedAt          time.Time `gorm:"autoCreateTime"`
}

// WatchList はユーザーが管理する関心銘柄のリストです。
type WatchList struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"not null;index"`
	Name      string    `gorm:"size:100;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// WatchListItem はリストに入っている1銘柄です。
type WatchListItem struct {
	ID          uint   `gorm:"primaryKey"`
	WatchListID uint   `gorm:"not null;uniqueIndex:watchlist_code,priority:1"`
	Code        string `gorm:"size:20;not null;uniqueIndex:watchlist_code,priority:2"`
}
