package upbit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"kstock_reporter/internal/feature/candles/domain/entity"
)

func TestUpbitMarket_FetchSeries_Success(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/candles/days" {
			t.Errorf("expected /v1/candles/days, got %s", r.URL.Path)
		}
		if r.URL.Query().Get("market") != "KRW-BTC" {
			t.Errorf("expected market KRW-BTC, got %s", r.URL.Query().Get("market"))
		}
		if r.URL.Query().Get("count") != "2" {
			t.Errorf("expected count 2, got %s", r.URL.Query().Get("count"))
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{
				"market": "KRW-BTC",
				"candle_date_time_utc": "2024-11-26T00:00:00",
				"opening_price": 130000000.5,
				"high_price": 132000000,
				"low_price": 129500000,
				"trade_price": 131500000,
				"candle_acc_trade_price": 250000000000.25,
				"candle_acc_trade_volume": 1234.56789012,
				"change_price": 1500000,
				"change_rate": 0.0115,
				"prev_closing_price": 130000000
			},
			{
				"market": "KRW-BTC",
				"candle_date_time_utc": "2024-11-25T00:00:00",
				"opening_price": 128000000,
				"high_price": 130500000,
				"low_price": 127000000,
				"trade_price": 130000000,
				"candle_acc_trade_price": 180000000000,
				"candle_acc_trade_volume": 987.654321,
				"change_price": 2000000,
				"change_rate": 0.0156,
				"prev_closing_price": 128000000
			}
		]`))
	}))
	defer server.Close()

	market := NewUpbitMarket(Config{BaseURL: server.URL}, server.Client())

	start := time.Date(2024, 11, 25, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 11, 26, 0, 0, 0, 0, time.UTC)
	candles, err := market.FetchSeries(context.Background(), "KRW-BTC", start, end, entity.GranularityDaily)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(candles) != 2 {
		t.Fatalf("expected 2 candles, got %d", len(candles))
	}

	first := candles[0]
	if !first.Time.Equal(end) {
		t.Errorf("expected date 2024-11-26, got %v", first.Time)
	}
	// 割合(0.0115)がパーセント(1.15)に換算される
	if !first.ChangeRate.Valid || first.ChangeRate.Decimal.String() != "1.15" {
		t.Errorf("expected change rate 1.15, got %v", first.ChangeRate)
	}
	if !first.Amount.Valid {
		t.Error("expected amount to be set")
	}
	if first.MarketCap.Valid {
		t.Error("expected market cap to be null for crypto")
	}
	if first.Volume.String() != "1234.56789012" {
		t.Errorf("expected fractional volume preserved, got %s", first.Volume)
	}
}

func TestUpbitMarket_FetchSeries_CapsCountAt200(t *testing.T) {
	t.Parallel()

	var gotCount string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCount = r.URL.Query().Get("count")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	market := NewUpbitMarket(Config{BaseURL: server.URL}, server.Client())

	end := time.Date(2024, 11, 25, 0, 0, 0, 0, time.UTC)
	start := end.AddDate(-1, 0, 0)
	if _, err := market.FetchSeries(context.Background(), "KRW-BTC", start, end, entity.GranularityDaily); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotCount != "200" {
		t.Errorf("expected count capped at 200, got %s", gotCount)
	}
}

func TestUpbitMarket_FetchSeries_WeeklyCandles(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/candles/weeks" {
			t.Errorf("expected /v1/candles/weeks, got %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{
				"market": "KRW-BTC",
				"candle_date_time_utc": "2024-11-25T00:00:00",
				"opening_price": 128000000,
				"high_price": 132000000,
				"low_price": 127000000,
				"trade_price": 131500000,
				"candle_acc_trade_price": 430000000000,
				"candle_acc_trade_volume": 2222.2
			}
		]`))
	}))
	defer server.Close()

	market := NewUpbitMarket(Config{BaseURL: server.URL}, server.Client())

	start := time.Date(2024, 11, 4, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 11, 25, 0, 0, 0, 0, time.UTC)
	candles, err := market.FetchSeries(context.Background(), "KRW-BTC", start, end, entity.GranularityWeekly)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(candles) != 1 {
		t.Fatalf("expected 1 candle, got %d", len(candles))
	}
	// 週足レスポンスには前日比系のフィールドが含まれない
	if candles[0].Change.Valid || candles[0].ChangeRate.Valid {
		t.Errorf("expected null change fields for weekly candle, got %+v", candles[0])
	}
	if !candles[0].Amount.Valid {
		t.Error("expected amount to be set")
	}
}

func TestUpbitMarket_FetchSeries_MinuteCandles(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/candles/minutes/60" {
			t.Errorf("expected /v1/candles/minutes/60, got %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{
				"market": "KRW-BTC",
				"candle_date_time_utc": "2024-11-25T13:00:00",
				"opening_price": 130000000,
				"high_price": 130200000,
				"low_price": 129900000,
				"trade_price": 130100000,
				"candle_acc_trade_price": 5000000000,
				"candle_acc_trade_volume": 38.5
			}
		]`))
	}))
	defer server.Close()

	market := NewUpbitMarket(Config{BaseURL: server.URL}, server.Client())

	day := time.Date(2024, 11, 25, 0, 0, 0, 0, time.UTC)
	candles, err := market.FetchSeries(context.Background(), "KRW-BTC", day, day, entity.Granularity("60min"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(candles) != 1 {
		t.Fatalf("expected 1 candle, got %d", len(candles))
	}
	want := time.Date(2024, 11, 25, 13, 0, 0, 0, time.UTC)
	if !candles[0].Time.Equal(want) {
		t.Errorf("expected intraday timestamp preserved, got %v", candles[0].Time)
	}
}

func TestUpbitMarket_FetchSeries_RejectsYearlyGranularity(t *testing.T) {
	t.Parallel()

	market := NewUpbitMarket(Config{BaseURL: "http://unused"}, &http.Client{})

	_, err := market.FetchSeries(context.Background(), "KRW-BTC", time.Now(), time.Now(), entity.GranularityYearly)
	if err == nil {
		t.Fatal("expected error for yearly granularity")
	}
}

func TestPeriodCount(t *testing.T) {
	t.Parallel()

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name        string
		end         time.Time
		granularity entity.Granularity
		want        int
	}{
		{"daily one week", start.AddDate(0, 0, 6), entity.GranularityDaily, 7},
		{"weekly four weeks", start.AddDate(0, 0, 27), entity.GranularityWeekly, 5},
		{"monthly across year", time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), entity.GranularityMonthly, 14},
		{"minutes single day", start, entity.Granularity("60min"), 1},
		{"daily capped", start.AddDate(1, 0, 0), entity.GranularityDaily, 200},
		{"minutes capped", start.AddDate(0, 0, 30), entity.Granularity("15min"), 200},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := periodCount(start, tt.end, tt.granularity); got != tt.want {
				t.Errorf("periodCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestUpbitMarket_FetchSeries_HTTPError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	market := NewUpbitMarket(Config{BaseURL: server.URL}, server.Client())

	_, err := market.FetchSeries(context.Background(), "KRW-BTC",
		time.Date(2024, 11, 25, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 11, 25, 0, 0, 0, 0, time.UTC),
		entity.GranularityDaily)
	if err == nil {
		t.Fatal("expected error for http 429")
	}
}

func TestUpbitMarket_ListInstruments_KRWOnly(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/market/all" {
			t.Errorf("expected /v1/market/all, got %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"market": "KRW-BTC", "korean_name": "비트코인", "english_name": "Bitcoin"},
			{"market": "BTC-ETH", "korean_name": "이더리움", "english_name": "Ethereum"},
			{"market": "KRW-ETH", "korean_name": "이더리움", "english_name": "Ethereum"}
		]`))
	}))
	defer server.Close()

	market := NewUpbitMarket(Config{BaseURL: server.URL}, server.Client())

	list, err := market.ListInstruments(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 KRW markets, got %d", len(list))
	}
	if list[0].Code != "KRW-BTC" || list[0].Name != "비트코인" {
		t.Errorf("unexpected first market: %+v", list[0])
	}
	if list[0].Market != "UPBIT" {
		t.Errorf("expected market UPBIT, got %s", list[0].Market)
	}
}
