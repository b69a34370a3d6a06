// Package apperror defines the error taxonomy shared across features.
package apperror

import "fmt"

// DataFetchError は外部マーケットデータプロバイダーからの取得失敗を表します。
// 対象の銘柄コードと原因エラーを保持します。
type DataFetchError struct {
	Code  string // 銘柄コード（マスタ同期など銘柄に紐付かない場合は空）
	Cause error
}

func (e *DataFetchError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("data fetch failed: %v", e.Cause)
	}
	return fmt.Sprintf("data fetch failed for %s: %v", e.Code, e.Cause)
}

func (e *DataFetchError) Unwrap() error { return e.Cause }

// NewDataFetchError はDataFetchErrorの新しいインスタンスを生成します。
func NewDataFetchError(code string, cause error) *DataFetchError {
	return &DataFetchError{Code: code, Cause: cause}
}

// AggregationError はローソク足集計の予期しない失敗を表します。
// 集計は純粋な計算なので、通常は永続化層の障害でのみ発生します。
type AggregationError struct {
	Code        string
	Granularity string
	Cause       error
}

func (e *AggregationError) Error() string {
	return fmt.Sprintf("aggregation failed for %s (%s): %v", e.Code, e.Granularity, e.Cause)
}

func (e *AggregationError) Unwrap() error { return e.Cause }

// NewAggregationError はAggregationErrorの新しいインスタンスを生成します。
func NewAggregationError(code, granularity string, cause error) *AggregationError {
	return &AggregationError{Code: code, Granularity: granularity, Cause: cause}
}

// ReportGenerationError は1ユーザー分のリポート生成・保存の失敗を表します。
// 複数ユーザーのバッチ実行を中断させないため、呼び出し側で捕捉・集計されます。
type ReportGenerationError struct {
	UserID uint
	Date   string
	Cause  error
}

func (e *ReportGenerationError) Error() string {
	return fmt.Sprintf("report generation failed for user %d on %s: %v", e.UserID, e.Date, e.Cause)
}

func (e *ReportGenerationError) Unwrap() error { return e.Cause }

// NewReportGenerationError はReportGenerationErrorの新しいインスタンスを生成します。
func NewReportGenerationError(userID uint, date string, cause error) *ReportGenerationError {
	return &ReportGenerationError{UserID: userID, Date: date, Cause: cause}
}
