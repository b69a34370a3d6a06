package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"kstock_reporter/internal/feature/candles/domain/entity"
	"kstock_reporter/internal/shared/apperror"
)

// AggregateUsecase は日足ローソク足を週足・月足・年足へ集計するユースケースです。
// 集計は純粋な計算であり、出力は(銘柄, 時間足, 期間終了日)キーで
// アップサートされるため、同じ範囲への再実行は常に同じ保存状態になります。
type AggregateUsecase struct {
	candle CandleRepository
}

// NewAggregateUsecase はAggregateUsecaseの新しいインスタンスを生成します。
func NewAggregateUsecase(candle CandleRepository) *AggregateUsecase {
	return &AggregateUsecase{candle: candle}
}

// AggregateWeekly は[start, end]の日足をISO週（月曜〜日曜）単位の週足に集計します。
func (au *AggregateUsecase) AggregateWeekly(ctx context.Context, code string, start, end time.Time) (int, error) {
	return au.aggregate(ctx, code, start, end, entity.GranularityWeekly)
}

// AggregateMonthly は[start, end]の日足を暦月単位の月足に集計します。
func (au *AggregateUsecase) AggregateMonthly(ctx context.Context, code string, start, end time.Time) (int, error) {
	return au.aggregate(ctx, code, start, end, entity.GranularityMonthly)
}

// AggregateYearly は[start, end]の日足を暦年単位の年足に集計します。
func (au *AggregateUsecase) AggregateYearly(ctx context.Context, code string, start, end time.Time) (int, error) {
	return au.aggregate(ctx, code, start, end, entity.GranularityYearly)
}

// periodKey は集計対象の暦期間を識別します。
// 週足ならISO (年, 週番号)、月足なら(年, 月)、年足なら(年, 0)です。
type periodKey struct {
	year int
	sub  int
}

func keyFor(target entity.Granularity, t time.Time) periodKey {
	switch target {
	case entity.GranularityWeekly:
		y, w := t.ISOWeek()
		return periodKey{year: y, sub: w}
	case entity.GranularityMonthly:
		return periodKey{year: t.Year(), sub: int(t.Month())}
	default:
		return periodKey{year: t.Year()}
	}
}

// aggregate は日足を読み込み、暦期間ごとに1本のローソク足へ縮約して保存します。
// 戻り値は書き込んだ期間数です。対象範囲に日足がなければ0を返します（エラーではありません）。
func (au *AggregateUsecase) aggregate(ctx context.Context, code string, start, end time.Time, target entity.Granularity) (int, error) {
	if !target.IsDerived() {
		return 0, fmt.Errorf("granularity %q is not an aggregation target", target)
	}

	days, err := au.candle.FindRange(ctx, code, entity.GranularityDaily, start, end)
	if err != nil {
		return 0, apperror.NewAggregationError(code, string(target), err)
	}
	if len(days) == 0 {
		slog.Info("no daily candles to aggregate", "code", code, "granularity", target, "start", start, "end", end)
		return 0, nil
	}

	// 暦期間キーの初出順でグループ化する。入力は昇順なのでキー順も時系列になる。
	groups := map[periodKey][]entity.Candle{}
	order := make([]periodKey, 0)
	for _, d := range days {
		k := keyFor(target, d.Time)
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], d)
	}

	derivedCandles := make([]entity.Candle, 0, len(order))
	var prevClose decimal.NullDecimal
	for _, k := range order {
		c := reduceGroup(code, target, groups[k])

		// 前期間の終値が範囲内にあるときだけ前期間比を算出する。
		// 範囲外の期間は不明なのでnullのままにしておく（再実行で値が揺れない）。
		if prevClose.Valid && !prevClose.Decimal.IsZero() {
			change := c.Close.Sub(prevClose.Decimal)
			c.Change = decimal.NullDecimal{Decimal: change, Valid: true}
			c.ChangeRate = decimal.NullDecimal{
				Decimal: change.Div(prevClose.Decimal).Mul(decimal.NewFromInt(100)).Round(2),
				Valid:   true,
			}
		}
		prevClose = decimal.NullDecimal{Decimal: c.Close, Valid: true}

		derivedCandles = append(derivedCandles, c)
	}

	if err := au.candle.UpsertBatch(ctx, derivedCandles); err != nil {
		return 0, apperror.NewAggregationError(code, string(target), err)
	}

	slog.Info("aggregated candles", "code", code, "granularity", target, "periods", len(derivedCandles))
	return len(derivedCandles), nil
}

// reduceGroup は1つの暦期間に属する日足を1本のローソク足へ縮約します。
//
//   - open / close は最小・最大日付の行から取る（取引日の欠けがあるため
//     位置ではなく日付で決める）
//   - high / low は期間内の最大高値・最小安値
//   - volume は正確な合計
//   - amount は非nullの行の合計、全行nullなら結果もnull（データ欠落を
//     ゼロ取引と混同しない）
//   - 期間終了日は期間内の最大日付
func reduceGroup(code string, target entity.Granularity, rows []entity.Candle) entity.Candle {
	first, last := rows[0], rows[0]
	high, low := rows[0].High, rows[0].Low
	volume := decimal.Zero
	amount := decimal.Zero
	hasAmount := false

	for _, r := range rows {
		if r.Time.Before(first.Time) {
			first = r
		}
		if r.Time.After(last.Time) {
			last = r
		}
		if r.High.GreaterThan(high) {
			high = r.High
		}
		if r.Low.LessThan(low) {
			low = r.Low
		}
		volume = volume.Add(r.Volume)
		if r.Amount.Valid {
			amount = amount.Add(r.Amount.Decimal)
			hasAmount = true
		}
	}

	openPrice, closePrice := first.Open, last.Close

	// OHLC不変条件 high >= max(open, close), low <= min(open, close) を
	// 構成的に保証する。ソースの行を信用しない。
	if openPrice.GreaterThan(high) {
		high = openPrice
	}
	if closePrice.GreaterThan(high) {
		high = closePrice
	}
	if openPrice.LessThan(low) {
		low = openPrice
	}
	if closePrice.LessThan(low) {
		low = closePrice
	}

	return entity.Candle{
		Code:        code,
		Granularity: target,
		Time:        last.Time,
		Open:        openPrice,
		High:        high,
		Low:         low,
		Close:       closePrice,
		Volume:      volume,
		Amount:      decimal.NullDecimal{Decimal: amount, Valid: hasAmount},
		MarketCap:   last.MarketCap,
	}
}
