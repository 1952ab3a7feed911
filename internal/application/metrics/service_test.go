package metrics

import (
	"context"
	"testing"
	"time"

	"coinfolio-backend/internal/domain"
	"coinfolio-backend/internal/infrastructure/database"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	db, err := database.Open("sqlite::memory:")
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	svc := &Service{DB: db}

	empty, err := svc.Load(context.Background())
	require.NoError(t, err)
	assert.Zero(t, empty.UnreadNews)
	assert.True(t, empty.TotalAssetValue.IsZero())

	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, db.Create(&[]domain.News{
		{Title: "a", Coin: "BTC", Sentiment: domain.SentimentPositive, PublishedAt: now},
		{Title: "b", Coin: "ETH", Sentiment: domain.SentimentNeutral, PublishedAt: now, Read: true},
	}).Error)
	require.NoError(t, db.Create(&[]domain.Report{
		{GeneratedAt: now, Status: domain.StatusPending, RiskLevel: domain.RiskLow},
		{GeneratedAt: now, Status: domain.StatusPending, RiskLevel: domain.RiskHigh},
		{GeneratedAt: now, Status: domain.StatusApproved, RiskLevel: domain.RiskLow},
	}).Error)
	require.NoError(t, db.Create(&[]domain.Holding{
		{Coin: "BTC", Amount: decimal.NewFromInt(1), ValueUSD: decimal.RequireFromString("50000.10")},
		{Coin: "ETH", Amount: decimal.NewFromInt(1), ValueUSD: decimal.RequireFromString("2500.25")},
	}).Error)

	d, err := svc.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), d.UnreadNews)
	assert.Equal(t, int64(2), d.PendingReports)
	assert.True(t, d.TotalAssetValue.Equal(decimal.RequireFromString("52500.35")), d.TotalAssetValue.String())
}
