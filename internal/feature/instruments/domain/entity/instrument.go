// Package entity defines the domain models for the instruments feature.
package entity

import "time"

// Instrument represents a tradable asset known to the system: a KRX
// equity ("005930") or an Upbit market ("KRW-BTC"). Rows are upserted by
// the master sync and deactivated rather than deleted.
type Instrument struct {
	ID        uint       `gorm:"primaryKey"`
	Code      string     `gorm:"size:20;not null;uniqueIndex"`
	Name      string     `gorm:"size:255;not null"`
	Market    string     `gorm:"size:100;not null"`
	Sector    string     `gorm:"size:100"`
	ListedAt  *time.Time `gorm:""`
	IsActive  bool       `gorm:"not null;default:true"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime"`
}
