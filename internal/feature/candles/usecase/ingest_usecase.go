package usecase

import (
	"context"
	"log/slog"
	"time"

	"kstock_reporter/internal/feature/candles/domain/entity"
	colentity "kstock_reporter/internal/feature/collection/domain/entity"
	"kstock_reporter/internal/shared/apperror"
	"kstock_reporter/internal/shared/ratelimiter"
	"kstock_reporter/internal/shared/retry"
)

const (
	// fetchAttempts はプロバイダー呼び出しの最大試行回数です。
	fetchAttempts = 3
	// defaultFetchRetryDelay は試行間の固定待機時間です。
	defaultFetchRetryDelay = 2 * time.Second
)

// MarketRepository は外部プロバイダーから時系列OHLCVを取得するポートです。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type MarketRepository interface {
	// FetchSeries は[start, end]の生ローソク足を返します。プロバイダーの
	// ウィンドウ上限（200期間程度）を超える要求はアダプター側で切り詰められます。
	FetchSeries(ctx context.Context, code string, start, end time.Time, granularity entity.Granularity) ([]entity.Candle, error)
}

// CollectionConfigRepository は収集設定の読み取りポートです。
type CollectionConfigRepository interface {
	ListActive(ctx context.Context) ([]colentity.CollectionConfig, error)
	// ActiveInstrumentCodes は設定に紐付くアクティブな銘柄コードを返します。
	ActiveInstrumentCodes(ctx context.Context, configID uint) ([]string, error)
}

// IngestUsecase は外部APIからローソク足を取得し、データベースに永続化するユースケースです。
type IngestUsecase struct {
	market     MarketRepository
	candle     CandleRepository
	collection CollectionConfigRepository
	pacer      ratelimiter.Pacer
	retryDelay time.Duration
}

// NewIngestUsecase は新しいIngestUsecaseを作成します。
func NewIngestUsecase(market MarketRepository, candle CandleRepository, collection CollectionConfigRepository, pacer ratelimiter.Pacer) *IngestUsecase {
	return &IngestUsecase{
		market:     market,
		candle:     candle,
		collection: collection,
		pacer:      pacer,
		retryDelay: defaultFetchRetryDelay,
	}
}

// SyncCandles は1銘柄の[start, end]のローソク足を取得し、一括アップサートします。
// 取得はfetchAttempts回まで再試行され、終端の失敗はDataFetchErrorとして返ります。
// アップサートは1文で実行されるため、銘柄単位で全行コミットか全行なしのどちらかです。
// 範囲内にデータがない場合は(0, nil)を返します。
func (iu *IngestUsecase) SyncCandles(ctx context.Context, code string, start, end time.Time, granularity entity.Granularity) (int, error) {
	var rows []entity.Candle
	err := retry.Do(ctx, "fetch candles "+code, fetchAttempts, iu.retryDelay, func() error {
		if err := iu.pacer.Wait(ctx); err != nil {
			return err
		}
		var ferr error
		rows, ferr = iu.market.FetchSeries(ctx, code, start, end, granularity)
		return ferr
	})
	if err != nil {
		return 0, apperror.NewDataFetchError(code, err)
	}
	if len(rows) == 0 {
		slog.Warn("no candle data received", "code", code, "granularity", granularity, "start", start, "end", end)
		return 0, nil
	}

	// 取得したデータに銘柄コードと時間足を設定
	for i := range rows {
		rows[i].Code = code
		rows[i].Granularity = granularity
	}
	if err := iu.candle.UpsertBatch(ctx, rows); err != nil {
		return 0, err
	}

	slog.Info("synced candles", "code", code, "granularity", granularity, "saved", len(rows))
	return len(rows), nil
}

// SyncAll は複数銘柄の日足を同じ期間で同期します。1銘柄の失敗は記録して
// 次の銘柄へ進みます（ある銘柄の不調がバッチ全体を止めてはならない）。
func (iu *IngestUsecase) SyncAll(ctx context.Context, codes []string, start, end time.Time) entity.BatchResult {
	var result entity.BatchResult
	for _, code := range codes {
		count, err := iu.SyncCandles(ctx, code, start, end, entity.GranularityDaily)
		if err != nil {
			slog.Error("failed to sync candles", "code", code, "error", err)
			result.Fail++
			continue
		}
		if count > 0 {
			result.Success++
		} else {
			result.Fail++
		}
	}
	result.Total = result.Success + result.Fail
	return result
}

// BulkCollect は収集設定に紐付くアクティブな全銘柄のローソク足を
// [today - period_days + 1, today]の範囲で収集します。
// 銘柄単位の失敗は件数に数えるだけで処理を続行します。
func (iu *IngestUsecase) BulkCollect(ctx context.Context, config colentity.CollectionConfig) (entity.BatchResult, error) {
	codes, err := iu.collection.ActiveInstrumentCodes(ctx, config.ID)
	if err != nil {
		return entity.BatchResult{}, err
	}
	if len(codes) == 0 {
		slog.Warn("no active instruments in config", "config", config.Name)
		return entity.BatchResult{}, nil
	}

	end := today()
	start := end.AddDate(0, 0, -(config.ClampPeriodDays() - 1))
	granularity := entity.Granularity(config.Granularity)

	var result entity.BatchResult
	for _, code := range codes {
		count, err := iu.SyncCandles(ctx, code, start, end, granularity)
		if err != nil {
			slog.Error("failed to collect candles", "config", config.Name, "code", code, "error", err)
			result.Fail++
			continue
		}
		if count > 0 {
			result.Success++
		} else {
			result.Fail++
		}
	}
	result.Total = result.Success + result.Fail

	slog.Info("bulk collection completed",
		"config", config.Name,
		"success", result.Success, "fail", result.Fail, "total", result.Total)
	return result, nil
}

// today は本日のUTC日付（時刻なし）を返します。
func today() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
