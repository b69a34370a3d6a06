// ingestコマンドは相場収集・集計・リポート生成のバッチジョブを実行します。
// 外部スケジューラー(cron等)から定期的に起動されることを想定しています。
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os/signal"
	"strings"
	"syscall"
	"time"

	redisv9 "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"kstock_reporter/internal/app/di"
	accountsadapters "kstock_reporter/internal/feature/accounts/adapters"
	candlesadapters "kstock_reporter/internal/feature/candles/adapters"
	candlesusecase "kstock_reporter/internal/feature/candles/usecase"
	collectionadapters "kstock_reporter/internal/feature/collection/adapters"
	instrumentsadapters "kstock_reporter/internal/feature/instruments/adapters"
	instrumentsusecase "kstock_reporter/internal/feature/instruments/usecase"
	reportsadapters "kstock_reporter/internal/feature/reports/adapters"
	reportsusecase "kstock_reporter/internal/feature/reports/usecase"
	infradb "kstock_reporter/internal/platform/db"
	infraredis "kstock_reporter/internal/platform/redis"
	"kstock_reporter/internal/shared/ratelimiter"
)

const (
	jobStocks    = "stocks"
	jobCrypto    = "crypto"
	jobAggregate = "aggregate"
	jobReports   = "reports"
	jobAll       = "all"

	// 外部API呼び出しの間隔と、連続呼び出し時の追加休止
	apiInterval   = 150 * time.Millisecond
	apiBurstEvery = 10
	apiBurstPause = time.Second

	// 集計の再計算対象期間
	aggregateLookbackYears = 2

	// 株式の日足同期のさかのぼり日数。休場日を挟んでも直近の営業日の足を拾えるようにします。
	stockLookbackDays = 5
)

// marketSource は1つの外部プロバイダーが提供する2つのポート(銘柄マスターと
// 時系列相場)をまとめたものです。KRXとUpbitのアダプターが両方を実装します。
type marketSource interface {
	candlesusecase.MarketRepository
	instrumentsusecase.MasterRepository
}

func main() {
	job := flag.String("job", jobAll, "job to run: stocks|crypto|aggregate|reports|all")
	dateStr := flag.String("date", "", "target date (YYYY-MM-DD, default today UTC)")
	skipMaster := flag.Bool("skip-master", false, "skip instrument master sync")
	timeout := flag.Duration("timeout", 30*time.Minute, "overall job timeout")
	flag.Parse()

	date := time.Now().UTC().Truncate(24 * time.Hour)
	if *dateStr != "" {
		parsed, err := time.Parse("2006-01-02", *dateStr)
		if err != nil {
			log.Fatalf("invalid -date %q: %v", *dateStr, err)
		}
		date = parsed
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	db := infradb.OpenDB()

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

	pacer := ratelimiter.NewCallPacer(apiInterval, apiBurstEvery, apiBurstPause)

	switch *job {
	case jobStocks:
		runStocks(ctx, db, di.NewKRXMarket(), pacer, date, *skipMaster)
	case jobCrypto:
		runCrypto(ctx, db, di.NewUpbitMarket(), pacer, *skipMaster)
	case jobAggregate:
		runAggregate(ctx, db, date)
	case jobReports:
		runReports(ctx, db, rdb, date)
	case jobAll:
		runStocks(ctx, db, di.NewKRXMarket(), pacer, date, *skipMaster)
		runCrypto(ctx, db, di.NewUpbitMarket(), pacer, *skipMaster)
		runAggregate(ctx, db, date)
		runReports(ctx, db, rdb, date)
	default:
		log.Fatalf("unknown -job %q", *job)
	}
}

// runStocks はKRXの銘柄マスターと日足相場を同期します。
// 対象はマスターに登録された全アクティブ銘柄で、収集設定には依存しません。
func runStocks(ctx context.Context, db *gorm.DB, market marketSource, pacer ratelimiter.Pacer, date time.Time, skipMaster bool) {
	instrumentRepo := instrumentsadapters.NewInstrumentRepository(db)

	if !skipMaster {
		syncUC := instrumentsusecase.NewSyncUsecase(market, instrumentRepo, pacer)
		updated, err := syncUC.SyncMaster(ctx)
		if err != nil {
			slog.Error("stock master sync failed", "error", err)
		} else {
			slog.Info("stock master synced", "updated", updated)
		}
	}

	codes, err := instrumentRepo.ListActiveCodes(ctx)
	if err != nil {
		slog.Error("failed to list instruments for stock sync", "error", err)
		return
	}
	targets := make([]string, 0, len(codes))
	for _, code := range codes {
		if isStockCode(code) {
			targets = append(targets, code)
		}
	}
	if len(targets) == 0 {
		slog.Warn("no listed stocks to sync")
		return
	}

	ingestUC := candlesusecase.NewIngestUsecase(market, candlesadapters.NewCandleRepository(db),
		collectionadapters.NewConfigRepository(db), pacer)
	start := date.AddDate(0, 0, -(stockLookbackDays - 1))
	result := ingestUC.SyncAll(ctx, targets, start, date)
	slog.Info("stock candle sync finished",
		"success", result.Success, "fail", result.Fail, "total", result.Total)
}

// runCrypto はUpbitのマーケット一覧を同期し、アクティブな収集設定ごとに
// 設定の時間足と遡及日数でローソク足を一括収集します。
func runCrypto(ctx context.Context, db *gorm.DB, market marketSource, pacer ratelimiter.Pacer, skipMaster bool) {
	if !skipMaster {
		syncUC := instrumentsusecase.NewSyncUsecase(market, instrumentsadapters.NewInstrumentRepository(db), pacer)
		updated, err := syncUC.SyncMaster(ctx)
		if err != nil {
			slog.Error("crypto master sync failed", "error", err)
		} else {
			slog.Info("crypto master synced", "updated", updated)
		}
	}

	configRepo := collectionadapters.NewConfigRepository(db)
	ingestUC := candlesusecase.NewIngestUsecase(market, candlesadapters.NewCandleRepository(db), configRepo, pacer)

	configs, err := configRepo.ListActive(ctx)
	if err != nil {
		slog.Error("failed to list collection configs", "error", err)
		return
	}
	for _, cfg := range configs {
		result, err := ingestUC.BulkCollect(ctx, cfg)
		if err != nil {
			slog.Error("bulk collection failed", "config", cfg.Name, "error", err)
			continue
		}
		slog.Info("crypto collection finished", "config", cfg.Name,
			"success", result.Success, "fail", result.Fail, "total", result.Total)
	}
}

// runAggregate は全アクティブ銘柄の週足・月足・年足を日足から再集計します。
func runAggregate(ctx context.Context, db *gorm.DB, date time.Time) {
	aggUC := candlesusecase.NewAggregateUsecase(candlesadapters.NewCandleRepository(db))
	instrumentRepo := instrumentsadapters.NewInstrumentRepository(db)

	codes, err := instrumentRepo.ListActiveCodes(ctx)
	if err != nil {
		slog.Error("failed to list instruments for aggregation", "error", err)
		return
	}

	start := date.AddDate(-aggregateLookbackYears, 0, 0)
	var failed int
	for _, code := range codes {
		if _, err := aggUC.AggregateWeekly(ctx, code, start, date); err != nil {
			slog.Error("weekly aggregation failed", "code", code, "error", err)
			failed++
			continue
		}
		if _, err := aggUC.AggregateMonthly(ctx, code, start, date); err != nil {
			slog.Error("monthly aggregation failed", "code", code, "error", err)
			failed++
			continue
		}
		if _, err := aggUC.AggregateYearly(ctx, code, start, date); err != nil {
			slog.Error("yearly aggregation failed", "code", code, "error", err)
			failed++
		}
	}
	slog.Info("aggregation finished", "instruments", len(codes), "failed", failed)
}

// runReports は配信対象ユーザー全員の日次リポートを生成・配信します。
func runReports(ctx context.Context, db *gorm.DB, rdb *redisv9.Client, date time.Time) {
	reportRepo := reportsadapters.NewReportRepository(db)
	userRepo := accountsadapters.NewUserRepository(db)
	reportsUC := reportsusecase.NewReportUsecase(reportRepo, reportRepo, userRepo, userRepo, di.NewNotifier(), rdb)

	success, fail, err := reportsUC.CreateDailyReports(ctx, date)
	if err != nil {
		slog.Error("daily reports failed", "error", err)
		return
	}
	slog.Info("daily reports finished", "success", success, "fail", fail)
}

func isCryptoCode(code string) bool { return strings.HasPrefix(code, "KRW-") }

func isStockCode(code string) bool { return !isCryptoCode(code) }
