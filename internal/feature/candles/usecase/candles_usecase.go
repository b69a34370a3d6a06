// Package usecase はローソク足データ操作のビジネスロジックを実装します。
package usecase

import (
	"context"
	"time"

	"kstock_reporter/internal/feature/candles/domain/entity"
)

const (
	// DefaultGranularity はローソク足クエリのデフォルト時間足です。
	DefaultGranularity = entity.GranularityDaily
	// DefaultLimit はデフォルトのローソク足返却件数です。
	DefaultLimit = 30
	// MaxLimit はローソク足の最大返却件数です。
	MaxLimit = 365
)

// CandleRepository はローソク足データの永続化レイヤーを抽象化します。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type CandleRepository interface {
	// UpsertBatch はローソク足を一括で挿入または上書きします。1回の呼び出しはアトミックです。
	UpsertBatch(ctx context.Context, candles []entity.Candle) error
	// Find は期間・件数で絞り込んだローソク足を期間終了日の降順で返します。
	Find(ctx context.Context, code string, granularity entity.Granularity, start, end *time.Time, limit int) ([]entity.Candle, error)
	// FindRange は[start, end]のローソク足を期間終了日の昇順で返します。
	FindRange(ctx context.Context, code string, granularity entity.Granularity, start, end time.Time) ([]entity.Candle, error)
}

// candlesUsecase はローソク足データ照会のユースケースを定義します。
type candlesUsecase struct {
	candle CandleRepository
}

// NewCandlesUsecase はcandlesUsecaseの新しいインスタンスを生成します。
func NewCandlesUsecase(candle CandleRepository) *candlesUsecase {
	return &candlesUsecase{candle: candle}
}

// GetCandles は指定された銘柄と時間足のローソク足データを取得します。
// 日付範囲は検証済みの値が渡される前提で、認可はAPI層の責務です。
func (cu *candlesUsecase) GetCandles(ctx context.Context, code string, granularity entity.Granularity, start, end *time.Time, limit int) ([]entity.Candle, error) {
	if granularity == "" {
		granularity = DefaultGranularity
	}
	if limit <= 0 || limit > MaxLimit {
		limit = DefaultLimit
	}

	return cu.candle.Find(ctx, code, granularity, start, end, limit)
}
