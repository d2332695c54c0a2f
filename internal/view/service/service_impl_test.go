package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/fairpricelabs/fairprice/internal/cache"
	"github.com/fairpricelabs/fairprice/internal/clock"
	productdomain "github.com/fairpricelabs/fairprice/internal/product/domain"
	"github.com/fairpricelabs/fairprice/internal/view/domain"
	"github.com/fairpricelabs/fairprice/internal/view/repository"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestService(t *testing.T, now time.Time) (domain.Service, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&productdomain.Product{}, &domain.ProductView{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := NewViewService(Params{
		DB:     db,
		Cache:  cache.New(cache.NewMemoryBackend(), zap.NewNop(), cache.NewMetrics(nil)),
		Clock:  clock.Fixed{T: now},
		Node:   node,
		Repo:   repository.NewViewRepository(),
		Logger: zap.NewNop(),
	})
	return svc, db
}

func TestRecordAndCountScopedToOwner(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	svc, db := newTestService(t, now)
	ctx := context.Background()

	require.NoError(t, db.Create([]productdomain.Product{
		{ID: 1, OwnerID: "user_1", Name: "a", URL: "https://a.example.com"},
		{ID: 2, OwnerID: "user_2", Name: "b", URL: "https://b.example.com"},
	}).Error)

	countryID := snowflake.ID(7)
	require.NoError(t, svc.Record(ctx, domain.RecordRequest{ProductID: 1, OwnerID: "user_1", CountryID: &countryID}))
	require.NoError(t, svc.Record(ctx, domain.RecordRequest{ProductID: 1, OwnerID: "user_1"}))
	require.NoError(t, svc.Record(ctx, domain.RecordRequest{ProductID: 2, OwnerID: "user_2"}))

	since := now.AddDate(0, 0, -1)
	count, err := svc.CountSince(ctx, "user_1", since)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	count, err = svc.CountSince(ctx, "user_2", since)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestCountSinceHonorsBoundary(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	svc, db := newTestService(t, now)
	ctx := context.Background()

	require.NoError(t, db.Create(&productdomain.Product{
		ID: 1, OwnerID: "user_1", Name: "a", URL: "https://a.example.com",
	}).Error)
	// One old impression, inserted directly with a past timestamp.
	require.NoError(t, db.Create(&domain.ProductView{
		ID: 99, ProductID: 1, VisitedAt: now.AddDate(0, -2, 0),
	}).Error)
	require.NoError(t, svc.Record(ctx, domain.RecordRequest{ProductID: 1, OwnerID: "user_1"}))

	startOfMonth := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	count, err := svc.CountSince(ctx, "user_1", startOfMonth)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestRecordBustsCountCache(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	svc, db := newTestService(t, now)
	ctx := context.Background()

	require.NoError(t, db.Create(&productdomain.Product{
		ID: 1, OwnerID: "user_1", Name: "a", URL: "https://a.example.com",
	}).Error)

	since := now.AddDate(0, 0, -7)
	count, err := svc.CountSince(ctx, "user_1", since)
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)

	require.NoError(t, svc.Record(ctx, domain.RecordRequest{ProductID: 1, OwnerID: "user_1"}))

	count, err = svc.CountSince(ctx, "user_1", since)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}
