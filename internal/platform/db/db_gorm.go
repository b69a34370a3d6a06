// Package db はgormによるデータベース接続と初期化を提供します。
package db

import (
	"fmt"
	"log"
	"os"
	"time"

	gpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	accountentity "kstock_reporter/internal/feature/accounts/domain/entity"
	candleadapters "kstock_reporter/internal/feature/candles/adapters"
	collectionadapters "kstock_reporter/internal/feature/collection/adapters"
	colentity "kstock_reporter/internal/feature/collection/domain/entity"
	instrumententity "kstock_reporter/internal/feature/instruments/domain/entity"
	reportentity "kstock_reporter/internal/feature/reports/domain/entity"
)

// OpenDB は環境変数の接続情報でPostgresに接続します。
// 起動直後のDB未準備に備えて60秒まで再試行します。
func OpenDB() *gorm.DB {
	user := os.Getenv("DB_USER")
	pass := os.Getenv("DB_PASSWORD")
	name := os.Getenv("DB_NAME")
	host := os.Getenv("DB_HOST")
	port := os.Getenv("DB_PORT")

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
		host, port, user, pass, name)

	var (
		db  *gorm.DB
		err error
	)

	deadline := time.Now().Add(60 * time.Second)
	for {
		db, err = gorm.Open(gpostgres.Open(dsn), &gorm.Config{})
		if err == nil {
			break
		}
		if time.Now().After(deadline) {
			log.Fatalf("DB connect failed after 60s: %v", err)
		}
		log.Printf("DB connect failed, retrying...: %v", err)
		time.Sleep(3 * time.Second)
	}

	if os.Getenv("RUN_MIGRATIONS") == "true" {
		if err := db.AutoMigrate(
			&instrumententity.Instrument{},
			&candleadapters.CandleModel{},
			&colentity.CollectionConfig{},
			&collectionadapters.CollectionConfigInstrument{},
			&accountentity.User{},
			&accountentity.WatchList{},
			&accountentity.WatchListItem{},
			&reportentity.Report{},
		); err != nil {
			log.Fatalf("failed to migrate: %v", err)
		}
	}

	return db
}
