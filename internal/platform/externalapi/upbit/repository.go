package upbit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	candleentity "kstock_reporter/internal/feature/candles/domain/entity"
	candlesusecase "kstock_reporter/internal/feature/candles/usecase"
	instrumententity "kstock_reporter/internal/feature/instruments/domain/entity"
	instrumentsusecase "kstock_reporter/internal/feature/instruments/usecase"
	"kstock_reporter/internal/platform/externalapi/upbit/dto"
)

const (
	marketAllPath   = "/v1/market/all"
	candlesPathBase = "/v1/candles"

	// UpbitのローソクAPIは1リクエストあたり最大200本までです。
	maxCount = 200

	krwPrefix = "KRW-"
)

// UpbitMarket はUpbit公開APIから暗号資産の相場データとマーケット一覧を
// 取得するリポジトリ実装です。
type UpbitMarket struct {
	cfg    Config
	client *http.Client
}

// UpbitMarketが各ポートを実装していることをコンパイル時に検証します。
var (
	_ candlesusecase.MarketRepository     = (*UpbitMarket)(nil)
	_ instrumentsusecase.MasterRepository = (*UpbitMarket)(nil)
)

// NewUpbitMarket は指定された設定とHTTPクライアントでUpbitMarketの新しいインスタンスを生成します。
func NewUpbitMarket(cfg Config, client *http.Client) *UpbitMarket {
	return &UpbitMarket{cfg: cfg, client: client}
}

// candlePath は時間足に対応するローソクAPIのパスを返します。
// 日足・週足・月足のほか、"60min"のような分足はminutes/{unit}に写像されます。
// 年足はUpbitに対応するAPIがないため非対応です。
func candlePath(granularity candleentity.Granularity) (string, bool) {
	switch granularity {
	case candleentity.GranularityDaily:
		return candlesPathBase + "/days", true
	case candleentity.GranularityWeekly:
		return candlesPathBase + "/weeks", true
	case candleentity.GranularityMonthly:
		return candlesPathBase + "/months", true
	}
	if unit, ok := minuteUnit(granularity); ok {
		return fmt.Sprintf("%s/minutes/%d", candlesPathBase, unit), true
	}
	return "", false
}

// minuteUnit は"60min"のような分足表記から分数を取り出します。
func minuteUnit(granularity candleentity.Granularity) (int, bool) {
	s := string(granularity)
	if !strings.HasSuffix(s, "min") {
		return 0, false
	}
	unit, err := strconv.Atoi(strings.TrimSuffix(s, "min"))
	if err != nil || unit <= 0 {
		return 0, false
	}
	return unit, true
}

// periodCount は[start, end]に収まる期間数を概算し、[1, maxCount]に丸めます。
func periodCount(start, end time.Time, granularity candleentity.Granularity) int {
	days := int(end.Sub(start).Hours()/24) + 1
	var n int
	switch granularity {
	case candleentity.GranularityDaily:
		n = days
	case candleentity.GranularityWeekly:
		n = days/7 + 1
	case candleentity.GranularityMonthly:
		n = (end.Year()-start.Year())*12 + int(end.Month()) - int(start.Month()) + 1
	default:
		unit, ok := minuteUnit(granularity)
		if !ok {
			n = days
			break
		}
		n = int(end.Sub(start).Minutes())/unit + 1
	}
	if n < 1 {
		n = 1
	}
	if n > maxCount {
		n = maxCount
	}
	return n
}

// FetchSeries は指定マーケットのローソク足を[start, end]の範囲で取得します。
// 1回の呼び出しで最大maxCount本までのため、それを超える分は直近側に切り詰めます。
// 前日比と等落率は日足レスポンスにのみ含まれるため、それ以外の足ではnullのままです。
func (u *UpbitMarket) FetchSeries(ctx context.Context, code string, start, end time.Time, granularity candleentity.Granularity) ([]candleentity.Candle, error) {
	path, ok := candlePath(granularity)
	if !ok {
		return nil, fmt.Errorf("upbit: unsupported granularity %q", granularity)
	}

	q := url.Values{}
	q.Set("market", code)
	q.Set("count", strconv.Itoa(periodCount(start, end, granularity)))
	// toは排他的な上限なので翌日0時を指定します
	q.Set("to", end.AddDate(0, 0, 1).Format("2006-01-02T00:00:00Z"))

	var rows []dto.CandleRow
	if err := u.get(ctx, path, q, &rows); err != nil {
		return nil, err
	}

	daily := granularity == candleentity.GranularityDaily
	candles := make([]candleentity.Candle, 0, len(rows))
	for _, row := range rows {
		tm, err := time.Parse("2006-01-02T15:04:05", row.DateUTC)
		if err != nil {
			// 不正な行は記録してスキップし、残りの行の取り込みを続けます
			slog.Warn("upbit: skipping malformed row", "market", code, "date", row.DateUTC, "error", err)
			continue
		}
		c := candleentity.Candle{
			Time:   tm,
			Open:   decimal.NewFromFloat(row.Open),
			High:   decimal.NewFromFloat(row.High),
			Low:    decimal.NewFromFloat(row.Low),
			Close:  decimal.NewFromFloat(row.Close),
			Volume: decimal.NewFromFloat(row.Volume),
			Amount: decimal.NullDecimal{Decimal: decimal.NewFromFloat(row.Amount), Valid: true},
		}
		if daily {
			c.Change = decimal.NullDecimal{Decimal: decimal.NewFromFloat(row.ChangePrice), Valid: true}
			// Upbitは比率を小数で返すためパーセントに換算します
			c.ChangeRate = decimal.NullDecimal{
				Decimal: decimal.NewFromFloat(row.ChangeRate).Mul(decimal.NewFromInt(100)).Round(2),
				Valid:   true,
			}
		}
		candles = append(candles, c)
	}
	return candles, nil
}

// ListInstruments はUpbitの全マーケットのうちKRW建てのものを一覧で返します。
func (u *UpbitMarket) ListInstruments(ctx context.Context) ([]instrumententity.Instrument, error) {
	q := url.Values{}
	q.Set("isDetails", "false")

	var rows []dto.MarketRow
	if err := u.get(ctx, marketAllPath, q, &rows); err != nil {
		return nil, err
	}

	list := make([]instrumententity.Instrument, 0, len(rows))
	for _, row := range rows {
		if !strings.HasPrefix(row.Market, krwPrefix) {
			continue
		}
		list = append(list, instrumententity.Instrument{
			Code:     row.Market,
			Name:     row.KoreanName,
			Market:   "UPBIT",
			IsActive: true,
		})
	}
	return list, nil
}

// get はUpbit APIにGETリクエストを送り、JSONレスポンスをoutにデコードします。
func (u *UpbitMarket) get(ctx context.Context, path string, q url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s%s?%s", u.cfg.BaseURL, path, q.Encode()), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	res, err := u.client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode >= 400 {
		return fmt.Errorf("upbit http %d", res.StatusCode)
	}
	return json.NewDecoder(res.Body).Decode(out)
}
