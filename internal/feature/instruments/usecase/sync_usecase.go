package usecase

import (
	"context"
	"log/slog"
	"time"

	"kstock_reporter/internal/feature/instruments/domain/entity"
	"kstock_reporter/internal/shared/apperror"
	"kstock_reporter/internal/shared/ratelimiter"
	"kstock_reporter/internal/shared/retry"
)

const (
	// masterFetchAttempts は銘柄リスト取得の最大試行回数です。
	masterFetchAttempts = 3
	// defaultMasterRetryDelay は試行間の固定待機時間です。
	defaultMasterRetryDelay = 2 * time.Second
)

// MasterRepository は外部プロバイダーから銘柄マスタリストを取得するポートです。
type MasterRepository interface {
	ListInstruments(ctx context.Context) ([]entity.Instrument, error)
}

// SyncUsecase はプロバイダーの銘柄マスタをデータベースに同期するユースケースです。
type SyncUsecase struct {
	master     MasterRepository
	repo       InstrumentRepository
	pacer      ratelimiter.Pacer
	retryDelay time.Duration
}

// NewSyncUsecase は新しいSyncUsecaseを作成します。
func NewSyncUsecase(master MasterRepository, repo InstrumentRepository, pacer ratelimiter.Pacer) *SyncUsecase {
	return &SyncUsecase{
		master:     master,
		repo:       repo,
		pacer:      pacer,
		retryDelay: defaultMasterRetryDelay,
	}
}

// SyncMaster はプロバイダーの全銘柄リストを取得し、コードをキーに
// アップサートします。リスト取得自体はmasterFetchAttempts回まで再試行し、
// 終端の失敗はDataFetchErrorで返します。個々の銘柄の保存失敗は記録して
// スキップし、バッチ全体は止めません。戻り値は更新できた銘柄数です。
func (su *SyncUsecase) SyncMaster(ctx context.Context) (int, error) {
	var list []entity.Instrument
	err := retry.Do(ctx, "fetch instrument master", masterFetchAttempts, su.retryDelay, func() error {
		if err := su.pacer.Wait(ctx); err != nil {
			return err
		}
		var ferr error
		list, ferr = su.master.ListInstruments(ctx)
		return ferr
	})
	if err != nil {
		return 0, apperror.NewDataFetchError("", err)
	}
	if len(list) == 0 {
		slog.Warn("no instruments received from provider")
		return 0, nil
	}

	updated := 0
	for _, ins := range list {
		if err := su.repo.Upsert(ctx, ins); err != nil {
			// 1件の不良レコードでバッチを中断しない
			slog.Error("failed to upsert instrument", "code", ins.Code, "error", err)
			continue
		}
		updated++
	}

	slog.Info("instrument master synced", "updated", updated, "received", len(list))
	return updated, nil
}
