// Package api はHTTPトランスポート層で共有するリクエスト/レスポンスモデルを定義します。
package api

// ErrorResponse はエラー時の共通レスポンスです。
type ErrorResponse struct {
	Error string `json:"error"`
}

// CandleResponse はローソク足1本のレスポンスです。
// 価格と数量は精度を保つため10進文字列で返します。nullableな項目は省略可能です。
type CandleResponse struct {
	Time       string  `json:"time"`
	Open       string  `json:"open"`
	High       string  `json:"high"`
	Low        string  `json:"low"`
	Close      string  `json:"close"`
	Volume     string  `json:"volume"`
	Amount     *string `json:"amount,omitempty"`
	Change     *string `json:"change,omitempty"`
	ChangeRate *string `json:"change_rate,omitempty"`
	MarketCap  *string `json:"market_cap,omitempty"`
}

// InstrumentResponse は銘柄マスター1件のレスポンスです。
type InstrumentResponse struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	Market   string `json:"market"`
	Sector   string `json:"sector,omitempty"`
	ListedAt string `json:"listed_at,omitempty"`
}

// MoverResponse は変動率ランキング1件のレスポンスです。
type MoverResponse struct {
	Code       string `json:"code"`
	Name       string `json:"name"`
	Close      string `json:"close"`
	ChangeRate string `json:"change_rate"`
}

// ReportResponse は日次リポート1件のレスポンスです。
type ReportResponse struct {
	UserID     uint   `json:"user_id"`
	ReportDate string `json:"report_date"`
	Title      string `json:"title"`
	Body       string `json:"body"`
}
