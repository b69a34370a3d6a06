package dto

// MarketRow はUpbit /v1/market/all が返すマーケット1件です。
type MarketRow struct {
	Market      string `json:"market"`       // マーケットコード（例: "KRW-BTC"）
	KoreanName  string `json:"korean_name"`  // 韓国語名
	EnglishName string `json:"english_name"` // 英語名
}

// CandleRow はUpbitのローソク足API（days/weeks/months/minutes）が返す1本です。
// Upbitは数値をJSON数値として返すため、パースは不要です。
// change_price / change_rate は日足レスポンスにのみ含まれます。
type CandleRow struct {
	Market      string  `json:"market"`
	DateUTC     string  `json:"candle_date_time_utc"` // 例: "2024-11-25T00:00:00"
	Open        float64 `json:"opening_price"`
	High        float64 `json:"high_price"`
	Low         float64 `json:"low_price"`
	Close       float64 `json:"trade_price"`
	Amount      float64 `json:"candle_acc_trade_price"`  // 累積取引代金
	Volume      float64 `json:"candle_acc_trade_volume"` // 累積出来高
	ChangePrice float64 `json:"change_price"`            // 前日比（日足のみ）
	ChangeRate  float64 `json:"change_rate"`             // 前日比の比率（0.0123 = 1.23%、日足のみ）
	PrevClose   float64 `json:"prev_closing_price"`
}
