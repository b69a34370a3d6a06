package main

import (
	"log"

	redisv9 "github.com/redis/go-redis/v9"

	"kstock_reporter/internal/app/di"
	"kstock_reporter/internal/app/router"
	accountsadapters "kstock_reporter/internal/feature/accounts/adapters"
	candlesadapters "kstock_reporter/internal/feature/candles/adapters"
	candleshandler "kstock_reporter/internal/feature/candles/transport/handler"
	candlesusecase "kstock_reporter/internal/feature/candles/usecase"
	instrumentsadapters "kstock_reporter/internal/feature/instruments/adapters"
	instrumentshandler "kstock_reporter/internal/feature/instruments/transport/handler"
	instrumentsusecase "kstock_reporter/internal/feature/instruments/usecase"
	reportsadapters "kstock_reporter/internal/feature/reports/adapters"
	reportshandler "kstock_reporter/internal/feature/reports/transport/handler"
	reportsusecase "kstock_reporter/internal/feature/reports/usecase"
	infradb "kstock_reporter/internal/platform/db"
	infraredis "kstock_reporter/internal/platform/redis"
)

func main() {
	// db
	db := infradb.OpenDB()

	// Redis（未接続でもキャッシュなしで動作する）
	var rdb *redisv9.Client
	if tmp, err := infraredis.NewRedisClient(); err != nil {
		log.Println("[WARN] Redis unavailable. Running without cache.")
		rdb = nil
	} else {
		rdb = tmp
		defer func() {
			if err := rdb.Close(); err != nil {
				log.Println("[ERROR] Failed to close Redis client:", err)
			}
		}()
	}

	// Repository
	candleRepo := candlesadapters.NewCandleRepository(db)
	instrumentRepo := instrumentsadapters.NewInstrumentRepository(db)
	reportRepo := reportsadapters.NewReportRepository(db)
	userRepo := accountsadapters.NewUserRepository(db)

	// Usecase
	candlesUC := candlesusecase.NewCandlesUsecase(candleRepo)
	instrumentsUC := instrumentsusecase.NewInstrumentUsecase(instrumentRepo)
	reportsUC := reportsusecase.NewReportUsecase(reportRepo, reportRepo, userRepo, userRepo, di.NewNotifier(), rdb)

	// Handler
	candlesH := candleshandler.NewCandlesHandler(candlesUC)
	instrumentsH := instrumentshandler.NewInstrumentsHandler(instrumentsUC)
	reportsH := reportshandler.NewReportsHandler(reportsUC)

	// ルータ生成
	router := router.NewRouter(candlesH, instrumentsH, reportsH)

	if err := router.Run(":8080"); err != nil {
		log.Fatal(err)
	}
}
