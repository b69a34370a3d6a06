// Package usecase は銘柄マスタ操作のビジネスロジックを実装します。
package usecase

import (
	"context"

	"kstock_reporter/internal/feature/instruments/domain/entity"
)

// InstrumentRepository は銘柄マスタの永続化レイヤーを抽象化します。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type InstrumentRepository interface {
	// Upsert はコードをキーに銘柄を作成または更新します。
	Upsert(ctx context.Context, instrument entity.Instrument) error
	// ListActive はアクティブな銘柄をコード順に返します。
	ListActive(ctx context.Context) ([]entity.Instrument, error)
	// ListActiveCodes はアクティブな銘柄のコードのみを返します。
	ListActiveCodes(ctx context.Context) ([]string, error)
}

// instrumentUsecase は銘柄マスタ照会のユースケースを定義します。
type instrumentUsecase struct {
	repo InstrumentRepository
}

// NewInstrumentUsecase はinstrumentUsecaseの新しいインスタンスを生成します。
func NewInstrumentUsecase(repo InstrumentRepository) *instrumentUsecase {
	return &instrumentUsecase{repo: repo}
}

// ListActive はアクティブな銘柄の一覧を返します。
func (iu *instrumentUsecase) ListActive(ctx context.Context) ([]entity.Instrument, error) {
	return iu.repo.ListActive(ctx)
}

// ListActiveCodes はアクティブな銘柄のコード一覧を返します。
func (iu *instrumentUsecase) ListActiveCodes(ctx context.Context) ([]string, error) {
	return iu.repo.ListActiveCodes(ctx)
}
