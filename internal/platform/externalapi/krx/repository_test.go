package krx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"kstock_reporter/internal/feature/candles/domain/entity"
)

func TestNewKRXMarket(t *testing.T) {
	t.Parallel()

	cfg := Config{BaseURL: "http://data.test.com", Timeout: 10 * time.Second}
	market := NewKRXMarket(cfg, &http.Client{})

	if market == nil {
		t.Fatal("expected non-nil market")
	}
	if market.cfg.BaseURL != cfg.BaseURL {
		t.Errorf("expected base URL %q, got %q", cfg.BaseURL, market.cfg.BaseURL)
	}
}

func TestKRXMarket_FetchSeries_Success(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatal(err)
		}
		if r.PostForm.Get("isuCd") != "005930" {
			t.Errorf("expected isuCd 005930, got %s", r.PostForm.Get("isuCd"))
		}
		if r.PostForm.Get("strtDd") != "20241125" {
			t.Errorf("expected strtDd 20241125, got %s", r.PostForm.Get("strtDd"))
		}
		if r.PostForm.Get("endDd") != "20241126" {
			t.Errorf("expected endDd 20241126, got %s", r.PostForm.Get("endDd"))
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{
			"output": [
				{
					"TRD_DD": "2024/11/25",
					"TDD_OPNPRC": "57,000",
					"TDD_HGPRC": "58,100",
					"TDD_LWPRC": "56,800",
					"TDD_CLSPRC": "57,500",
					"ACC_TRDVOL": "12,345,678",
					"ACC_TRDVAL": "710,101,010,100",
					"CMPPREVDD_PRC": "500",
					"FLUC_RT": "0.88",
					"MKTCAP": "343,000,000,000,000"
				},
				{
					"TRD_DD": "2024/11/26",
					"TDD_OPNPRC": "57,500",
					"TDD_HGPRC": "57,900",
					"TDD_LWPRC": "57,000",
					"TDD_CLSPRC": "57,300",
					"ACC_TRDVOL": "9,876,543",
					"ACC_TRDVAL": "",
					"CMPPREVDD_PRC": "-200",
					"FLUC_RT": "-0.35",
					"MKTCAP": "-"
				}
			]
		}`))
	}))
	defer server.Close()

	market := NewKRXMarket(Config{BaseURL: server.URL}, server.Client())

	start := time.Date(2024, 11, 25, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 11, 26, 0, 0, 0, 0, time.UTC)
	candles, err := market.FetchSeries(context.Background(), "005930", start, end, entity.GranularityDaily)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(candles) != 2 {
		t.Fatalf("expected 2 candles, got %d", len(candles))
	}

	first := candles[0]
	if !first.Time.Equal(start) {
		t.Errorf("expected date 2024-11-25, got %v", first.Time)
	}
	if first.Open.String() != "57000" {
		t.Errorf("expected comma-cleaned open 57000, got %s", first.Open)
	}
	if first.Volume.String() != "12345678" {
		t.Errorf("expected volume 12345678, got %s", first.Volume)
	}
	if !first.Amount.Valid || first.Amount.Decimal.String() != "710101010100" {
		t.Errorf("expected amount, got %v", first.Amount)
	}

	second := candles[1]
	if second.Amount.Valid {
		t.Errorf("expected empty amount to be null, got %v", second.Amount)
	}
	if second.MarketCap.Valid {
		t.Errorf("expected dash market cap to be null, got %v", second.MarketCap)
	}
	if !second.Change.Valid || second.Change.Decimal.String() != "-200" {
		t.Errorf("expected change -200, got %v", second.Change)
	}
}

func TestKRXMarket_FetchSeries_SkipsMalformedRows(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"output": [
				{"TRD_DD": "2024/11/25", "TDD_OPNPRC": "57,000", "TDD_HGPRC": "58,100", "TDD_LWPRC": "56,800", "TDD_CLSPRC": "57,500", "ACC_TRDVOL": "100"},
				{"TRD_DD": "not-a-date", "TDD_OPNPRC": "57,500", "TDD_HGPRC": "57,900", "TDD_LWPRC": "57,000", "TDD_CLSPRC": "57,300", "ACC_TRDVOL": "100"},
				{"TRD_DD": "2024/11/27", "TDD_OPNPRC": "broken", "TDD_HGPRC": "57,900", "TDD_LWPRC": "57,000", "TDD_CLSPRC": "57,300", "ACC_TRDVOL": "100"}
			]
		}`))
	}))
	defer server.Close()

	market := NewKRXMarket(Config{BaseURL: server.URL}, server.Client())

	candles, err := market.FetchSeries(context.Background(),
		"005930",
		time.Date(2024, 11, 25, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 11, 27, 0, 0, 0, 0, time.UTC),
		entity.GranularityDaily)
	if err != nil {
		t.Fatalf("malformed rows must not fail the fetch: %v", err)
	}
	if len(candles) != 1 {
		t.Fatalf("expected 1 valid candle, got %d", len(candles))
	}
}

func TestKRXMarket_FetchSeries_TruncatesLongWindow(t *testing.T) {
	t.Parallel()

	var gotStart string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatal(err)
		}
		gotStart = r.PostForm.Get("strtDd")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"output": []}`))
	}))
	defer server.Close()

	market := NewKRXMarket(Config{BaseURL: server.URL}, server.Client())

	end := time.Date(2024, 11, 25, 0, 0, 0, 0, time.UTC)
	start := end.AddDate(-2, 0, 0)
	if _, err := market.FetchSeries(context.Background(), "005930", start, end, entity.GranularityDaily); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := end.AddDate(0, 0, -(maxWindowDays - 1)).Format("20060102")
	if gotStart != expected {
		t.Errorf("expected window truncated to %s, got %s", expected, gotStart)
	}
}

func TestKRXMarket_FetchSeries_RejectsDerivedGranularity(t *testing.T) {
	t.Parallel()

	market := NewKRXMarket(Config{BaseURL: "http://unused"}, &http.Client{})

	_, err := market.FetchSeries(context.Background(), "005930", time.Now(), time.Now(), entity.GranularityWeekly)
	if err == nil {
		t.Fatal("expected error for weekly granularity")
	}
}

func TestKRXMarket_FetchSeries_HTTPError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	market := NewKRXMarket(Config{BaseURL: server.URL}, server.Client())

	_, err := market.FetchSeries(context.Background(), "005930",
		time.Date(2024, 11, 25, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 11, 25, 0, 0, 0, 0, time.UTC),
		entity.GranularityDaily)
	if err == nil {
		t.Fatal("expected error for http 500")
	}
}

func TestKRXMarket_ListInstruments(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"OutBlock_1": [
				{"ISU_SRT_CD": "005930", "ISU_ABBRV": "삼성전자", "MKT_TP_NM": "KOSPI", "SECT_TP_NM": "", "LIST_DD": "1975/06/11"},
				{"ISU_SRT_CD": "", "ISU_ABBRV": "코드없음", "MKT_TP_NM": "KOSDAQ"},
				{"ISU_SRT_CD": "035420", "ISU_ABBRV": "NAVER", "MKT_TP_NM": "KOSPI", "LIST_DD": ""}
			]
		}`))
	}))
	defer server.Close()

	market := NewKRXMarket(Config{BaseURL: server.URL}, server.Client())

	list, err := market.ListInstruments(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 instruments (row without code skipped), got %d", len(list))
	}
	if list[0].Code != "005930" || list[0].Name != "삼성전자" {
		t.Errorf("unexpected first instrument: %+v", list[0])
	}
	if list[0].ListedAt == nil || !list[0].ListedAt.Equal(time.Date(1975, 6, 11, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("expected listed date 1975-06-11, got %v", list[0].ListedAt)
	}
	if list[1].ListedAt != nil {
		t.Errorf("expected nil listed date for empty LIST_DD, got %v", list[1].ListedAt)
	}
	if !list[0].IsActive {
		t.Error("expected listed instruments to be active")
	}
}
