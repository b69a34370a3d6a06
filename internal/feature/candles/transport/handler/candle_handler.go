// Package handler はcandlesフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"kstock_reporter/internal/api"
	"kstock_reporter/internal/feature/candles/domain/entity"
)

// CandlesUsecase はローソク足データ操作のユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type CandlesUsecase interface {
	GetCandles(ctx context.Context, code string, granularity entity.Granularity, start, end *time.Time, limit int) ([]entity.Candle, error)
}

// CandlesHandler はローソク足データのHTTPリクエストを処理します。
type CandlesHandler struct {
	uc CandlesUsecase
}

// NewCandlesHandler は指定されたusecaseでCandlesHandlerの新しいインスタンスを生成します。
func NewCandlesHandler(uc CandlesUsecase) *CandlesHandler {
	return &CandlesHandler{uc: uc}
}

// GetCandlesHandler は銘柄コードと時間足を受け取り、ローソク足データをJSONで返します。
//
// エンドポイント例:
// GET /candles/:code?granularity=1week&limit=30&start=2024-01-01&end=2024-12-31
func (h *CandlesHandler) GetCandlesHandler(c *gin.Context) {
	code := c.Param("code")
	granularity := entity.Granularity(c.DefaultQuery("granularity", string(entity.GranularityDaily)))
	if !granularity.Valid() {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid granularity"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "30"))

	start, ok := parseDateQuery(c, "start")
	if !ok {
		return
	}
	end, ok := parseDateQuery(c, "end")
	if !ok {
		return
	}

	candles, err := h.uc.GetCandles(c.Request.Context(), code, granularity, start, end, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: err.Error()})
		return
	}

	out := make([]api.CandleResponse, 0, len(candles))
	for _, x := range candles {
		out = append(out, toCandleResponse(x))
	}
	c.JSON(http.StatusOK, out)
}

// parseDateQuery は"2006-01-02"形式の日付クエリをパースします。
// 不正な値の場合は400を書き込み、okにfalseを返します。
func parseDateQuery(c *gin.Context, name string) (*time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	d, err := time.Parse("2006-01-02", raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid " + name + " date"})
		return nil, false
	}
	return &d, true
}

func toCandleResponse(x entity.Candle) api.CandleResponse {
	res := api.CandleResponse{
		Time:   x.Time.UTC().Format("2006-01-02"),
		Open:   x.Open.String(),
		High:   x.High.String(),
		Low:    x.Low.String(),
		Close:  x.Close.String(),
		Volume: x.Volume.String(),
	}
	res.Amount = nullString(x.Amount)
	res.Change = nullString(x.Change)
	res.ChangeRate = nullString(x.ChangeRate)
	res.MarketCap = nullString(x.MarketCap)
	return res
}

func nullString(d decimal.NullDecimal) *string {
	if !d.Valid {
		return nil
	}
	s := d.Decimal.String()
	return &s
}
