package portfolio

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"coinfolio-backend/internal/application/holdings"
	"coinfolio-backend/internal/domain"
	"coinfolio-backend/internal/infrastructure/database"
	"coinfolio-backend/internal/infrastructure/lock"
	"coinfolio-backend/internal/pkg/apperrors"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type MockPriceSource struct {
	mock.Mock
}

func (m *MockPriceSource) GetPrices(ctx context.Context, coins []string) (map[string]decimal.Decimal, error) {
	args := m.Called(ctx, coins)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]decimal.Decimal), args.Error(1)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open("sqlite::memory:")
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	return db
}

func seed(t *testing.T, db *gorm.DB) {
	t.Helper()
	require.NoError(t, db.Create(&[]domain.Holding{
		{Coin: "BTC", Amount: dec("1"), ValueUSD: dec("40000"), Percentage: dec("80")},
		{Coin: "ETH", Amount: dec("10"), ValueUSD: dec("10000"), Percentage: dec("20")},
	}).Error)
}

func newRevaluer(db *gorm.DB, src PriceSource, day time.Time) *Revaluer {
	return &Revaluer{
		Holdings: holdings.NewStore(db),
		Prices:   src,
		Location: time.UTC,
		Now:      func() time.Time { return day },
	}
}

func byCoin(t *testing.T, db *gorm.DB) map[string]domain.Holding {
	t.Helper()
	var hs []domain.Holding
	require.NoError(t, db.Find(&hs).Error)
	out := map[string]domain.Holding{}
	for _, h := range hs {
		out[h.Coin] = h
	}
	return out
}

func TestRevalueAll_ExampleAndSnapshot(t *testing.T) {
	db := setupDB(t)
	seed(t, db)
	src := new(MockPriceSource)
	src.On("GetPrices", mock.Anything, []string{"BTC", "ETH"}).
		Return(map[string]decimal.Decimal{"BTC": dec("50000"), "ETH": dec("2500")}, nil)
	day := time.Date(2024, 5, 1, 23, 0, 0, 0, time.UTC)

	res, err := newRevaluer(db, src, day).RevalueAll(context.Background())
	require.NoError(t, err)
	assert.False(t, res.Skipped)
	assert.Equal(t, domain.Day("2024-05-01"), res.Day)
	assert.Equal(t, 2, res.Priced)
	assert.True(t, res.TotalValue.Equal(dec("75000")))

	hs := byCoin(t, db)
	assert.True(t, hs["BTC"].ValueUSD.Equal(dec("50000")))
	assert.True(t, hs["ETH"].ValueUSD.Equal(dec("25000")))
	assert.True(t, hs["BTC"].Percentage.Equal(dec("66.67")))
	assert.True(t, hs["ETH"].Percentage.Equal(dec("33.33")))

	var snaps []domain.HistorySnapshot
	require.NoError(t, db.Order("coin").Find(&snaps).Error)
	require.Len(t, snaps, 2)
	assert.True(t, snaps[0].Percentage.Equal(dec("66.67")))
}

func TestRevalueAll_SameDayUpdatesSnapshotInPlace(t *testing.T) {
	db := setupDB(t)
	seed(t, db)
	src := new(MockPriceSource)
	src.On("GetPrices", mock.Anything, mock.Anything).
		Return(map[string]decimal.Decimal{"BTC": dec("50000"), "ETH": dec("2500")}, nil).Once()
	src.On("GetPrices", mock.Anything, mock.Anything).
		Return(map[string]decimal.Decimal{"BTC": dec("25000")}, nil).Once()
	day := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	r := newRevaluer(db, src, day)

	_, err := r.RevalueAll(context.Background())
	require.NoError(t, err)
	res, err := r.RevalueAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Priced)

	var snaps []domain.HistorySnapshot
	require.NoError(t, db.Order("coin").Find(&snaps).Error)
	require.Len(t, snaps, 2, "no duplicate rows for the same day")
	assert.True(t, snaps[0].Percentage.Equal(dec("50")), snaps[0].Percentage.String())
	assert.True(t, snaps[1].Percentage.Equal(dec("50")), snaps[1].Percentage.String())

	hs := byCoin(t, db)
	assert.True(t, hs["ETH"].ValueUSD.Equal(dec("25000")), "unpriced coin keeps its value")

	r.Now = func() time.Time { return day.Add(24 * time.Hour) }
	src.On("GetPrices", mock.Anything, mock.Anything).
		Return(map[string]decimal.Decimal{"BTC": dec("25000")}, nil).Once()
	_, err = r.RevalueAll(context.Background())
	require.NoError(t, err)
	var count int64
	db.Model(&domain.HistorySnapshot{}).Count(&count)
	assert.Equal(t, int64(4), count)
}

func TestRevalueAll_SkipsWithoutPrices(t *testing.T) {
	db := setupDB(t)
	seed(t, db)

	cases := map[string]*MockPriceSource{}
	empty := new(MockPriceSource)
	empty.On("GetPrices", mock.Anything, mock.Anything).Return(map[string]decimal.Decimal{}, nil)
	cases["empty"] = empty
	failing := new(MockPriceSource)
	failing.On("GetPrices", mock.Anything, mock.Anything).Return(nil, apperrors.Upstream("down", errors.New("dial tcp")))
	cases["upstream failure"] = failing

	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			res, err := newRevaluer(db, src, time.Now()).RevalueAll(context.Background())
			require.NoError(t, err)
			assert.True(t, res.Skipped)
			assert.Equal(t, "no prices available", res.Reason)

			hs := byCoin(t, db)
			assert.True(t, hs["BTC"].ValueUSD.Equal(dec("40000")))
			assert.True(t, hs["BTC"].Percentage.Equal(dec("80")))
			var count int64
			db.Model(&domain.HistorySnapshot{}).Count(&count)
			assert.Zero(t, count)
		})
	}
}

func TestRevalueAll_NoHoldings(t *testing.T) {
	db := setupDB(t)
	src := new(MockPriceSource)
	res, err := newRevaluer(db, src, time.Now()).RevalueAll(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Skipped)
	src.AssertNotCalled(t, "GetPrices", mock.Anything, mock.Anything)
}

func TestRevalueAll_LockHeld(t *testing.T) {
	db := setupDB(t)
	seed(t, db)
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	locks := lock.NewRedis(rdb)
	held, err := locks.Acquire(context.Background(), "revaluation", time.Minute)
	require.NoError(t, err)

	src := new(MockPriceSource)
	r := newRevaluer(db, src, time.Now())
	r.Lock = locks
	res, err := r.RevalueAll(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Skipped)
	assert.Equal(t, "revaluation already running", res.Reason)
	src.AssertNotCalled(t, "GetPrices", mock.Anything, mock.Anything)

	require.NoError(t, held.Release(context.Background()))
	src.On("GetPrices", mock.Anything, mock.Anything).Return(map[string]decimal.Decimal{"BTC": dec("1")}, nil)
	res, err = r.RevalueAll(context.Background())
	require.NoError(t, err)
	assert.False(t, res.Skipped)
	assert.False(t, mr.Exists("lock:revaluation"), "lease released after the pass")
}

func TestGetPortfolio(t *testing.T) {
	db := setupDB(t)
	seed(t, db)
	require.NoError(t, db.Create(&[]domain.HistorySnapshot{
		{SnapDate: "2024-05-02", Coin: "BTC", Percentage: dec("70")},
		{SnapDate: "2024-05-01", Coin: "ETH", Percentage: dec("20")},
		{SnapDate: "2024-05-01", Coin: "BTC", Percentage: dec("80")},
	}).Error)

	svc := &Service{DB: db, Holdings: holdings.NewStore(db)}
	v, err := svc.GetPortfolio(context.Background())
	require.NoError(t, err)

	require.Len(t, v.Holdings, 2)
	assert.Equal(t, "BTC", v.Holdings[0].Coin)
	require.Len(t, v.History, 2)
	assert.Equal(t, "05-01", v.History[0]["date"])
	assert.True(t, v.History[0]["BTC"].(decimal.Decimal).Equal(dec("80")))
	assert.True(t, v.History[0]["ETH"].(decimal.Decimal).Equal(dec("20")))
	assert.Equal(t, "05-02", v.History[1]["date"])
	assert.NotContains(t, v.History[1], "ETH")
}

type countingRunner struct {
	calls atomic.Int32
}

func (c *countingRunner) RevalueAll(ctx context.Context) (*RevaluationResult, error) {
	c.calls.Add(1)
	return &RevaluationResult{Skipped: true, Reason: "test"}, nil
}

func TestScheduler(t *testing.T) {
	runner := &countingRunner{}
	s := NewScheduler(runner, 10*time.Millisecond, true)

	require.NoError(t, s.Start(context.Background()))
	assert.True(t, s.IsRunning())
	assert.Error(t, s.Start(context.Background()))

	assert.Eventually(t, func() bool { return runner.calls.Load() >= 3 }, time.Second, 5*time.Millisecond)
	s.Stop()
	assert.False(t, s.IsRunning())
	s.Stop()

	after := runner.calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, after, runner.calls.Load())
}

func TestScheduler_RejectsNonPositiveInterval(t *testing.T) {
	s := NewScheduler(&countingRunner{}, 0, false)
	assert.Error(t, s.Start(context.Background()))
	assert.False(t, s.IsRunning())
}
