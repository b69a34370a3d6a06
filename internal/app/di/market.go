// Package di provides dependency injection factories for creating application components.
package di

import (
	"kstock_reporter/internal/platform/externalapi/krx"
	"kstock_reporter/internal/platform/externalapi/upbit"
	infrahttp "kstock_reporter/internal/platform/http"
)

// NewKRXMarket creates a fully configured KRXMarket with HTTP client.
func NewKRXMarket() *krx.KRXMarket {
	cfg := krx.LoadConfig()
	httpClient := infrahttp.NewHTTPClient(cfg.Timeout)
	return krx.NewKRXMarket(cfg, httpClient)
}

// NewUpbitMarket creates a fully configured UpbitMarket with HTTP client.
func NewUpbitMarket() *upbit.UpbitMarket {
	cfg := upbit.LoadConfig()
	httpClient := infrahttp.NewHTTPClient(cfg.Timeout)
	return upbit.NewUpbitMarket(cfg, httpClient)
}
