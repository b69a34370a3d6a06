// Package handler はinstrumentsフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"kstock_reporter/internal/api"
	"kstock_reporter/internal/feature/instruments/domain/entity"
)

// InstrumentsUsecase は銘柄マスター照会のユースケースインターフェースを定義します。
type InstrumentsUsecase interface {
	ListActive(ctx context.Context) ([]entity.Instrument, error)
}

// InstrumentsHandler は銘柄マスターのHTTPリクエストを処理します。
type InstrumentsHandler struct {
	uc InstrumentsUsecase
}

// NewInstrumentsHandler は指定されたusecaseでInstrumentsHandlerの新しいインスタンスを生成します。
func NewInstrumentsHandler(uc InstrumentsUsecase) *InstrumentsHandler {
	return &InstrumentsHandler{uc: uc}
}

// ListInstrumentsHandler は収集対象のアクティブな銘柄一覧をJSONで返します。
//
// エンドポイント例:
// GET /instruments
func (h *InstrumentsHandler) ListInstrumentsHandler(c *gin.Context) {
	list, err := h.uc.ListActive(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: err.Error()})
		return
	}

	out := make([]api.InstrumentResponse, 0, len(list))
	for _, x := range list {
		res := api.InstrumentResponse{
			Code:   x.Code,
			Name:   x.Name,
			Market: x.Market,
			Sector: x.Sector,
		}
		if x.ListedAt != nil {
			res.ListedAt = x.ListedAt.Format("2006-01-02")
		}
		out = append(out, res)
	}
	c.JSON(http.StatusOK, out)
}
