package krx

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	candleentity "kstock_reporter/internal/feature/candles/domain/entity"
	candlesusecase "kstock_reporter/internal/feature/candles/usecase"
	instrumententity "kstock_reporter/internal/feature/instruments/domain/entity"
	instrumentsusecase "kstock_reporter/internal/feature/instruments/usecase"
	"kstock_reporter/internal/platform/externalapi/krx/dto"
)

const (
	dataPath = "/comm/bldAttendant/getJsonData.cmd"

	quotesBld = "dbms/MDC/STAT/standard/MDCSTAT01701"
	masterBld = "dbms/MDC/STAT/standard/MDCSTAT01901"

	// 1リクエストで取得できる最大日数。これを超える期間は直近側に切り詰めます。
	maxWindowDays = 200
)

// KRXMarket はKRX(한국거래소)の公開データAPIから株価データと
// 上場銘柄マスターを取得するリポジトリ実装です。
type KRXMarket struct {
	cfg    Config
	client *http.Client
}

// KRXMarketが各ポートを実装していることをコンパイル時に検証します。
var (
	_ candlesusecase.MarketRepository     = (*KRXMarket)(nil)
	_ instrumentsusecase.MasterRepository = (*KRXMarket)(nil)
)

// NewKRXMarket は指定された設定とHTTPクライアントでKRXMarketの新しいインスタンスを生成します。
func NewKRXMarket(cfg Config, client *http.Client) *KRXMarket {
	return &KRXMarket{cfg: cfg, client: client}
}

// FetchSeries は指定銘柄の日足データを[start, end]の範囲で取得します。
// KRXのAPIは日足のみを提供するため、日足以外のgranularityはエラーになります。
// maxWindowDaysを超える期間は直近maxWindowDays日分に切り詰めます。
func (k *KRXMarket) FetchSeries(ctx context.Context, code string, start, end time.Time, granularity candleentity.Granularity) ([]candleentity.Candle, error) {
	if granularity != candleentity.GranularityDaily {
		return nil, fmt.Errorf("krx: unsupported granularity %q", granularity)
	}
	if truncated := end.AddDate(0, 0, -(maxWindowDays - 1)); start.Before(truncated) {
		start = truncated
	}

	form := url.Values{}
	form.Set("bld", quotesBld)
	form.Set("isuCd", code)
	form.Set("strtDd", start.Format("20060102"))
	form.Set("endDd", end.Format("20060102"))

	var body dto.DailyQuotesResponse
	if err := k.post(ctx, form, &body); err != nil {
		return nil, err
	}

	candles := make([]candleentity.Candle, 0, len(body.Output))
	for _, row := range body.Output {
		c, err := toCandle(row)
		if err != nil {
			// 不正な行は記録してスキップし、残りの行の取り込みを続けます
			slog.Warn("krx: skipping malformed row", "code", code, "date", row.Date, "error", err)
			continue
		}
		candles = append(candles, c)
	}
	return candles, nil
}

// ListInstruments はKRXの上場銘柄マスター一覧を取得します。
func (k *KRXMarket) ListInstruments(ctx context.Context) ([]instrumententity.Instrument, error) {
	form := url.Values{}
	form.Set("bld", masterBld)
	form.Set("mktId", "ALL")
	form.Set("trdDd", time.Now().UTC().Format("20060102"))

	var body dto.InstrumentListResponse
	if err := k.post(ctx, form, &body); err != nil {
		return nil, err
	}

	list := make([]instrumententity.Instrument, 0, len(body.Rows))
	for _, row := range body.Rows {
		if row.Code == "" || row.Name == "" {
			slog.Warn("krx: skipping instrument row without code or name", "code", row.Code)
			continue
		}
		ins := instrumententity.Instrument{
			Code:     row.Code,
			Name:     row.Name,
			Market:   row.Market,
			Sector:   row.Sector,
			IsActive: true,
		}
		if row.ListedAt != "" {
			if d, err := time.Parse("2006/01/02", row.ListedAt); err == nil {
				ins.ListedAt = &d
			}
		}
		list = append(list, ins)
	}
	return list, nil
}

// post はKRXデータAPIにフォームをPOSTし、JSONレスポンスをoutにデコードします。
func (k *KRXMarket) post(ctx context.Context, form url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, k.cfg.BaseURL+dataPath, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := k.client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode >= 400 {
		return fmt.Errorf("krx http %d", res.StatusCode)
	}
	return json.NewDecoder(res.Body).Decode(out)
}

// toCandle は1行分のDTOをドメインエンティティに変換します。
// 数値文字列のカンマは除去してからパースします。
func toCandle(row dto.DailyQuoteRow) (candleentity.Candle, error) {
	tm, err := time.Parse("2006/01/02", row.Date)
	if err != nil {
		return candleentity.Candle{}, fmt.Errorf("parse date %q: %w", row.Date, err)
	}
	o, err := parseDecimal(row.Open)
	if err != nil {
		return candleentity.Candle{}, fmt.Errorf("parse open %q: %w", row.Open, err)
	}
	h, err := parseDecimal(row.High)
	if err != nil {
		return candleentity.Candle{}, fmt.Errorf("parse high %q: %w", row.High, err)
	}
	l, err := parseDecimal(row.Low)
	if err != nil {
		return candleentity.Candle{}, fmt.Errorf("parse low %q: %w", row.Low, err)
	}
	c, err := parseDecimal(row.Close)
	if err != nil {
		return candleentity.Candle{}, fmt.Errorf("parse close %q: %w", row.Close, err)
	}
	v, err := parseDecimal(row.Volume)
	if err != nil {
		return candleentity.Candle{}, fmt.Errorf("parse volume %q: %w", row.Volume, err)
	}

	return candleentity.Candle{
		Time:       tm,
		Open:       o,
		High:       h,
		Low:        l,
		Close:      c,
		Volume:     v,
		Amount:     parseNullDecimal(row.Amount),
		Change:     parseNullDecimal(row.Change),
		ChangeRate: parseNullDecimal(row.FlucRate),
		MarketCap:  parseNullDecimal(row.MarketCap),
	}, nil
}

func parseDecimal(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(strings.ReplaceAll(s, ",", ""))
}

// parseNullDecimal は空文字や"-"をnullとして扱う任意項目用のパーサーです。
func parseNullDecimal(s string) decimal.NullDecimal {
	cleaned := strings.ReplaceAll(s, ",", "")
	if cleaned == "" || cleaned == "-" {
		return decimal.NullDecimal{}
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}
}
