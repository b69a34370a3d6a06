// Package usecase は日次ダイジェストリポートのビジネスロジックを実装します。
package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	accountentity "kstock_reporter/internal/feature/accounts/domain/entity"
	"kstock_reporter/internal/feature/reports/domain/entity"
	"kstock_reporter/internal/shared/apperror"
)

const (
	// DefaultMoverLimit は上昇・下落それぞれの掲載件数です。
	DefaultMoverLimit = 3
	// moversCacheTTL はムーバー照会キャッシュの保持時間です。
	// キャッシュは性能最適化であり正しさの源ではありません。ミス時の
	// 再計算はヒット時と同一の結果を返します。
	moversCacheTTL = 10 * time.Minute

	moversCacheNamespace = "report:movers"
)

// ReportRepository はリポートの永続化ポートです。
type ReportRepository interface {
	// Upsert は(user_id, report_date)をキーに作成または上書きします。
	Upsert(ctx context.Context, report entity.Report) error
	FindByUserAndDate(ctx context.Context, userID uint, date time.Time) (*entity.Report, error)
}

// MoverRepository は等落率ランキングの照会ポートです。
type MoverRepository interface {
	TopMovers(ctx context.Context, codes []string, date time.Time, limit int) ([]entity.Mover, error)
	BottomMovers(ctx context.Context, codes []string, date time.Time, limit int) ([]entity.Mover, error)
}

// WatchlistRepository はユーザーの主たる関心リストの照会ポートです。
type WatchlistRepository interface {
	FirstWatchlistCodes(ctx context.Context, userID uint) ([]string, error)
}

// UserRepository はリポート宛先ユーザーの照会ポートです。
type UserRepository interface {
	FindByID(ctx context.Context, id uint) (accountentity.User, error)
	ListReportRecipients(ctx context.Context) ([]accountentity.User, error)
}

// Notifier はリポート本文を宛先識別子に届ける配信ポートです。
// 配信失敗はログに残すだけで、リポートの保存はロールバックしません。
type Notifier interface {
	Send(ctx context.Context, to, message string) error
}

// ReportUsecase はリポートの生成・保存・配信のユースケースです。
type ReportUsecase struct {
	report    ReportRepository
	mover     MoverRepository
	watchlist WatchlistRepository
	user      UserRepository
	notifier  Notifier      // nil可（配信なし）
	rdb       *redis.Client // nil可（キャッシュなし）
}

// NewReportUsecase は新しいReportUsecaseを作成します。
func NewReportUsecase(report ReportRepository, mover MoverRepository, watchlist WatchlistRepository, user UserRepository, notifier Notifier, rdb *redis.Client) *ReportUsecase {
	return &ReportUsecase{
		report:    report,
		mover:     mover,
		watchlist: watchlist,
		user:      user,
		notifier:  notifier,
		rdb:       rdb,
	}
}

// moversResult はキャッシュされるムーバー照会の結果です。
type moversResult struct {
	Top    []entity.Mover `json:"top"`
	Bottom []entity.Mover `json:"bottom"`
}

func moversCacheKey(userID uint, date time.Time, limit int) string {
	return fmt.Sprintf("%s:%d:%s:%d", moversCacheNamespace, userID, date.Format("2006-01-02"), limit)
}

// TopBottomMovers はユーザーの主たる関心リストを対象に、指定日の日足から
// 等落率の上位・下位limit件を返します。リストがなければ空の結果を返します。
// 結果は(ユーザー, 日付, 件数)単位でTTL付きキャッシュされます。
// キャッシュの確認・計算・保存は呼び出し箇所で明示的に行います。
func (ru *ReportUsecase) TopBottomMovers(ctx context.Context, userID uint, date time.Time, limit int) ([]entity.Mover, []entity.Mover, error) {
	if limit <= 0 {
		limit = DefaultMoverLimit
	}

	key := moversCacheKey(userID, date, limit)

	// 1) キャッシュ確認
	if ru.rdb != nil {
		if b, err := ru.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
			var cached moversResult
			if err := json.Unmarshal(b, &cached); err == nil {
				return cached.Top, cached.Bottom, nil
			}
			// 壊れたキャッシュは削除
			_ = ru.rdb.Del(ctx, key).Err()
		}
	}

	// 2) 計算
	codes, err := ru.watchlist.FirstWatchlistCodes(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	if len(codes) == 0 {
		slog.Warn("no watchlist found for user", "user_id", userID)
		return nil, nil, nil
	}

	top, err := ru.mover.TopMovers(ctx, codes, date, limit)
	if err != nil {
		return nil, nil, err
	}
	bottom, err := ru.mover.BottomMovers(ctx, codes, date, limit)
	if err != nil {
		return nil, nil, err
	}

	// 3) キャッシュ保存（ベストエフォート）
	if ru.rdb != nil {
		if b, err := json.Marshal(moversResult{Top: top, Bottom: bottom}); err == nil {
			_ = ru.rdb.Set(ctx, key, b, moversCacheTTL).Err()
		}
	}

	return top, bottom, nil
}

// BuildReportText は固定フォーマットの日次ダイジェスト本文を組み立てます。
// 同じ入力に対して常に同じ文字列を返します（再生成の冪等性に必要）。
func (ru *ReportUsecase) BuildReportText(ctx context.Context, userID uint, date time.Time) (string, error) {
	top, bottom, err := ru.TopBottomMovers(ctx, userID, date, DefaultMoverLimit)
	if err != nil {
		return "", err
	}

	lines := []string{
		fmt.Sprintf("[%s] 한국 주식 일일 리포트", date.Format("2006-01-02")),
		"",
		"▶ 오늘의 관심종목 상승 TOP3",
	}

	if len(top) > 0 {
		for i, m := range top {
			lines = append(lines, fmt.Sprintf("  %d. %s(%s) 종가 %s원, 등락률 %s%%",
				i+1, m.Name, m.Code, m.Close.Round(0).String(), m.ChangeRate.StringFixed(2)))
		}
	} else {
		lines = append(lines, "  - 데이터 없음 (관심종목 또는 시세 미수집)")
	}

	lines = append(lines, "", "▶ 오늘의 관심종목 하락 TOP3")

	if len(bottom) > 0 {
		for i, m := range bottom {
			lines = append(lines, fmt.Sprintf("  %d. %s(%s) 종가 %s원, 등락률 %s%%",
				i+1, m.Name, m.Code, m.Close.Round(0).String(), m.ChangeRate.StringFixed(2)))
		}
	} else {
		lines = append(lines, "  - 데이터 없음")
	}

	lines = append(lines, "", "※ 본 리포트는 참고용이며 투자 책임은 본인에게 있습니다.")

	return strings.Join(lines, "\n"), nil
}

// CreateOrUpdateReport はリポートを生成し、(user, date)キーでアップサートします。
// 同じ日の再実行は重複を作らず上書きします。失敗はReportGenerationErrorで返ります。
func (ru *ReportUsecase) CreateOrUpdateReport(ctx context.Context, userID uint, date time.Time) (entity.Report, error) {
	dateStr := date.Format("2006-01-02")

	body, err := ru.BuildReportText(ctx, userID, date)
	if err != nil {
		return entity.Report{}, apperror.NewReportGenerationError(userID, dateStr, err)
	}

	report := entity.Report{
		UserID:     userID,
		ReportDate: date,
		Title:      fmt.Sprintf("%s 주식 리포트", dateStr),
		Body:       body,
	}
	if err := ru.report.Upsert(ctx, report); err != nil {
		return entity.Report{}, apperror.NewReportGenerationError(userID, dateStr, err)
	}

	slog.Info("report upserted", "user_id", userID, "date", dateStr)
	return report, nil
}

// GetReport は保存済みリポートを返します。存在しなければ(nil, nil)です。
func (ru *ReportUsecase) GetReport(ctx context.Context, userID uint, date time.Time) (*entity.Report, error) {
	return ru.report.FindByUserAndDate(ctx, userID, date)
}

// CreateDailyReports はリポートを受け取る全ユーザーへファンアウトします。
// 1ユーザーの失敗は件数に数えるだけでバッチを止めません。保存に成功した
// リポートは通知ポート経由で配信を試み、結果はログに残すだけです。
func (ru *ReportUsecase) CreateDailyReports(ctx context.Context, date time.Time) (successCount, failCount int, err error) {
	users, err := ru.user.ListReportRecipients(ctx)
	if err != nil {
		return 0, 0, err
	}

	for _, u := range users {
		report, rerr := ru.CreateOrUpdateReport(ctx, u.ID, date)
		if rerr != nil {
			slog.Error("failed to create report", "user_id", u.ID, "date", date.Format("2006-01-02"), "error", rerr)
			failCount++
			continue
		}
		successCount++

		if ru.notifier == nil {
			continue
		}
		if u.PhoneNumber == "" {
			slog.Warn("user has no phone number, skipping delivery", "user_id", u.ID)
			continue
		}
		if serr := ru.notifier.Send(ctx, u.PhoneNumber, report.Body); serr != nil {
			// 配信失敗でリポートはロールバックしない
			slog.Error("failed to deliver report", "user_id", u.ID, "error", serr)
		} else {
			slog.Info("report delivered", "user_id", u.ID)
		}
	}

	slog.Info("daily reports completed", "success", successCount, "fail", failCount)
	return successCount, failCount, nil
}
