package adapters

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"kstock_reporter/internal/feature/instruments/domain/entity"
)

// setupTestDB はテスト用のインメモリSQLiteデータベースを準備します。
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to initialize test database")

	err = db.AutoMigrate(&entity.Instrument{})
	require.NoError(t, err, "failed to migrate table")

	return db
}

func TestInstrumentGorm_Upsert(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	repo := NewInstrumentRepository(db)
	ctx := context.Background()

	listed := time.Date(2010, 1, 4, 0, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Upsert(ctx, entity.Instrument{
		Code: "005930", Name: "삼성전자", Market: "KOSPI", ListedAt: &listed, IsActive: true,
	}))

	// 同じコードで属性を変えて再実行すると上書きされ、行は増えない
	require.NoError(t, repo.Upsert(ctx, entity.Instrument{
		Code: "005930", Name: "삼성전자우", Market: "KOSPI", IsActive: true,
	}))

	var count int64
	require.NoError(t, db.Model(&entity.Instrument{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	var got entity.Instrument
	require.NoError(t, db.Where("code = ?", "005930").First(&got).Error)
	assert.Equal(t, "삼성전자우", got.Name)
}

func TestInstrumentGorm_ListActive(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	repo := NewInstrumentRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, entity.Instrument{Code: "035420", Name: "NAVER", Market: "KOSPI", IsActive: true}))
	require.NoError(t, repo.Upsert(ctx, entity.Instrument{Code: "005930", Name: "삼성전자", Market: "KOSPI", IsActive: true}))
	// 上場廃止銘柄は除外される
	require.NoError(t, repo.Upsert(ctx, entity.Instrument{Code: "000000", Name: "상장폐지", Market: "KOSPI", IsActive: true}))
	require.NoError(t, db.Model(&entity.Instrument{}).Where("code = ?", "000000").Update("is_active", false).Error)

	got, err := repo.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "005930", got[0].Code, "expected code ascending order")
	assert.Equal(t, "035420", got[1].Code)

	codes, err := repo.ListActiveCodes(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"005930", "035420"}, codes)
}
