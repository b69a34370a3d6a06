package router

import (
	"github.com/gin-gonic/gin"

	candleshandler "kstock_reporter/internal/feature/candles/transport/handler"
	instrumentshandler "kstock_reporter/internal/feature/instruments/transport/handler"
	reportshandler "kstock_reporter/internal/feature/reports/transport/handler"
	"kstock_reporter/internal/platform/http/handler"
)

// NewRouter はアプリケーションの全ルートを登録したginエンジンを生成します。
func NewRouter(candles *candleshandler.CandlesHandler, instruments *instrumentshandler.InstrumentsHandler,
	reports *reportshandler.ReportsHandler) *gin.Engine {
	r := gin.Default()

	// 導通確認用
	r.GET("/healthz", handler.Health)

	v1 := r.Group("/api/v1")
	{
		v1.GET("/instruments", instruments.ListInstrumentsHandler)
		v1.GET("/candles/:code", candles.GetCandlesHandler)
		v1.GET("/reports/:userID", reports.GetReportHandler)
		v1.GET("/reports/:userID/movers", reports.GetMoversHandler)
	}

	return r
}
