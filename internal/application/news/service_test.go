package news

import (
	"context"
	"testing"
	"time"

	"coinfolio-backend/internal/infrastructure/database"
	"coinfolio-backend/internal/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T) *Service {
	t.Helper()
	db, err := database.Open("sqlite::memory:")
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	return &Service{DB: db, Location: time.UTC, Now: func() time.Time { return now }}
}

func TestIngest_UpsertsByTitleAndTime(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	id, err := svc.Ingest(ctx, Input{Title: "ETF inflows", Summary: "v1", Coin: "btc", Sentiment: "Positive", PublishedAt: "2024-05-01 09:00"})
	require.NoError(t, err)
	require.NoError(t, svc.MarkRead(ctx, id))

	again, err := svc.Ingest(ctx, Input{Title: "ETF inflows", Summary: "v2", Coin: "BTC", Sentiment: "neutral", PublishedAt: "2024-05-01 09:00:00"})
	require.NoError(t, err)
	assert.Equal(t, id, again)

	n, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "v2", n.Summary)
	assert.Equal(t, "BTC", n.Coin)
	assert.Equal(t, "neutral", n.Sentiment.Lower())
	assert.True(t, n.Read)
}

func TestIngest_DefaultsPublishedAtToNow(t *testing.T) {
	svc := newService(t)
	id, err := svc.Ingest(context.Background(), Input{Title: "t", Coin: "ETH", Sentiment: "negative"})
	require.NoError(t, err)
	n, err := svc.Get(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, n.PublishedAt.Equal(time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)))
}

func TestIngest_Validation(t *testing.T) {
	svc := newService(t)
	cases := map[string]Input{
		"no title":        {Coin: "BTC", Sentiment: "positive"},
		"no coin":         {Title: "t", Sentiment: "positive"},
		"unsupported":     {Title: "t", Coin: "PEPE", Sentiment: "positive"},
		"no sentiment":    {Title: "t", Coin: "BTC"},
		"bad sentiment":   {Title: "t", Coin: "BTC", Sentiment: "bullish"},
		"bad publishedAt": {Title: "t", Coin: "BTC", Sentiment: "positive", PublishedAt: "yesterday"},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Ingest(context.Background(), in)
			assert.True(t, apperrors.IsValidation(err), err)
		})
	}
}

func TestExistsGetMarkReadCount(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	ok, err := svc.Exists(ctx, 42)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = svc.Get(ctx, 42)
	assert.True(t, apperrors.IsNotFound(err))
	assert.True(t, apperrors.IsNotFound(svc.MarkRead(ctx, 42)))

	a, err := svc.Ingest(ctx, Input{Title: "a", Coin: "SOL", Sentiment: "positive"})
	require.NoError(t, err)
	_, err = svc.Ingest(ctx, Input{Title: "b", Coin: "SOL", Sentiment: "positive"})
	require.NoError(t, err)

	ok, err = svc.Exists(ctx, a)
	require.NoError(t, err)
	assert.True(t, ok)

	unread, err := svc.CountUnread(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), unread)

	require.NoError(t, svc.MarkRead(ctx, a))
	require.NoError(t, svc.MarkRead(ctx, a))
	unread, err = svc.CountUnread(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)
}
