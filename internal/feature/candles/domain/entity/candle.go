// Package entity defines the domain models for the candles feature.
package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Granularity はローソク足の時間足を表します。
type Granularity string

const (
	GranularityDaily   Granularity = "1day"
	GranularityWeekly  Granularity = "1week"
	GranularityMonthly Granularity = "1month"
	GranularityYearly  Granularity = "1year"
)

// IsDerived は週足・月足・年足のように日足からの集計で作られる時間足かを返します。
func (g Granularity) IsDerived() bool {
	switch g {
	case GranularityWeekly, GranularityMonthly, GranularityYearly:
		return true
	}
	return false
}

// Valid は標準の時間足かを返します。暗号資産のプロバイダー固有の
// サブデイリー足（例: "60min"）は生データとしてそのまま保存されるため、
// ここでは検証しません。
func (g Granularity) Valid() bool {
	return g == GranularityDaily || g.IsDerived()
}

// Candle represents one OHLCV observation for one instrument, one
// granularity and one period. Time is the period-end date: the last
// trading date the candle covers, which for derived candles may fall
// short of the literal calendar period end (e.g. a holiday-shortened week).
type Candle struct {
	Code        string      // 銘柄コード（例: "005930", "KRW-BTC"）
	Granularity Granularity // 時間足
	Time        time.Time   // 期間終了日（その期間の最終取引日）

	Open   decimal.Decimal // 始値
	High   decimal.Decimal // 高値
	Low    decimal.Decimal // 安値
	Close  decimal.Decimal // 終値
	Volume decimal.Decimal // 出来高（暗号資産は小数になり得る）

	Amount     decimal.NullDecimal // 累積取引代金（任意）
	Change     decimal.NullDecimal // 前期間比（任意）
	ChangeRate decimal.NullDecimal // 等落率%（任意）
	MarketCap  decimal.NullDecimal // 時価総額（任意）
}

// BatchResult は銘柄単位のファンアウト処理の集計結果です。
// ループ内の例外握り潰しの代わりに、件数を型として返します。
type BatchResult struct {
	Success int `json:"success_count"`
	Fail    int `json:"fail_count"`
	Total   int `json:"total"`
}
