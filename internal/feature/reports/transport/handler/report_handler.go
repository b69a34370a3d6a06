// Package handler はreportsフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"kstock_reporter/internal/api"
	"kstock_reporter/internal/feature/reports/domain/entity"
)

// ReportsUsecase は日次リポート照会のユースケースインターフェースを定義します。
type ReportsUsecase interface {
	GetReport(ctx context.Context, userID uint, date time.Time) (*entity.Report, error)
	TopBottomMovers(ctx context.Context, userID uint, date time.Time, limit int) ([]entity.Mover, []entity.Mover, error)
}

// ReportsHandler は日次リポートのHTTPリクエストを処理します。
type ReportsHandler struct {
	uc ReportsUsecase
}

// NewReportsHandler は指定されたusecaseでReportsHandlerの新しいインスタンスを生成します。
func NewReportsHandler(uc ReportsUsecase) *ReportsHandler {
	return &ReportsHandler{uc: uc}
}

// GetReportHandler はユーザーIDと日付を受け取り、保存済みリポートをJSONで返します。
//
// エンドポイント例:
// GET /reports/:userID?date=2024-11-25
func (h *ReportsHandler) GetReportHandler(c *gin.Context) {
	userID, date, ok := h.parseTarget(c)
	if !ok {
		return
	}

	report, err := h.uc.GetReport(c.Request.Context(), userID, date)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: err.Error()})
		return
	}
	if report == nil {
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "report not found"})
		return
	}

	c.JSON(http.StatusOK, api.ReportResponse{
		UserID:     report.UserID,
		ReportDate: report.ReportDate.Format("2006-01-02"),
		Title:      report.Title,
		Body:       report.Body,
	})
}

// GetMoversHandler は指定ユーザーの関心銘柄のうち変動率の上位と下位をJSONで返します。
//
// エンドポイント例:
// GET /reports/:userID/movers?date=2024-11-25&limit=3
func (h *ReportsHandler) GetMoversHandler(c *gin.Context) {
	userID, date, ok := h.parseTarget(c)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "3"))

	top, bottom, err := h.uc.TopBottomMovers(c.Request.Context(), userID, date, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"top":    toMoverResponses(top),
		"bottom": toMoverResponses(bottom),
	})
}

// parseTarget はパスのユーザーIDとクエリの日付をパースします。
// 日付未指定の場合は当日(UTC)を使用します。
func (h *ReportsHandler) parseTarget(c *gin.Context) (uint, time.Time, bool) {
	id, err := strconv.ParseUint(c.Param("userID"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid user id"})
		return 0, time.Time{}, false
	}

	raw := c.Query("date")
	if raw == "" {
		now := time.Now().UTC()
		return uint(id), time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), true
	}
	date, err := time.Parse("2006-01-02", raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid date"})
		return 0, time.Time{}, false
	}
	return uint(id), date, true
}

func toMoverResponses(movers []entity.Mover) []api.MoverResponse {
	out := make([]api.MoverResponse, 0, len(movers))
	for _, m := range movers {
		out = append(out, api.MoverResponse{
			Code:       m.Code,
			Name:       m.Name,
			Close:      m.Close.String(),
			ChangeRate: m.ChangeRate.String(),
		})
	}
	return out
}
