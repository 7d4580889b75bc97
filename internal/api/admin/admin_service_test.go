package admin

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-guest-concierge/internal/types"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) GetStats(ctx context.Context) (*Stats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Stats), args.Error(1)
}

func (m *MockRepository) ListSessions(ctx context.Context, limit int) ([]SessionListing, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]SessionListing), args.Error(1)
}

func (m *MockRepository) ListMessages(ctx context.Context, limit int) ([]MessageListing, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]MessageListing), args.Error(1)
}

func (m *MockRepository) DeleteStaleSessions(ctx context.Context, olderThan time.Duration) (int64, error) {
	args := m.Called(ctx, olderThan)
	return args.Get(0).(int64), args.Error(1)
}

type MockCacheRepository struct {
	mock.Mock
}

func (m *MockCacheRepository) Get(ctx context.Context, cacheKey string) ([]types.Place, error) {
	args := m.Called(ctx, cacheKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Place), args.Error(1)
}

func (m *MockCacheRepository) Save(ctx context.Context, cacheKey string, coords types.Coordinates, category types.Category, language string, places []types.Place, ttl time.Duration) error {
	args := m.Called(ctx, cacheKey, coords, category, language, places, ttl)
	return args.Error(0)
}

func (m *MockCacheRepository) DeleteExpired(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestGetStats(t *testing.T) {
	repo := new(MockRepository)
	svc := NewServiceImpl(repo, new(MockCacheRepository), testLogger())

	repo.On("GetStats", mock.Anything).Return(&Stats{
		TotalBookings:  12,
		TotalSessions:  30,
		ActiveSessions: 4,
		TotalMessages:  210,
	}, nil)

	stats, err := svc.GetStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(12), stats.TotalBookings)
	assert.Equal(t, int64(4), stats.ActiveSessions)
}

func TestClearSessions_UsesDayWindow(t *testing.T) {
	repo := new(MockRepository)
	svc := NewServiceImpl(repo, new(MockCacheRepository), testLogger())

	repo.On("DeleteStaleSessions", mock.Anything, 24*time.Hour).Return(int64(7), nil)

	removed, err := svc.ClearSessions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(7), removed)
	repo.AssertExpectations(t)
}

func TestCleanupCache(t *testing.T) {
	cache := new(MockCacheRepository)
	svc := NewServiceImpl(new(MockRepository), cache, testLogger())

	cache.On("DeleteExpired", mock.Anything).Return(int64(3), nil)

	removed, err := svc.CleanupCache(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), removed)
}

func TestCleanupCache_Error(t *testing.T) {
	cache := new(MockCacheRepository)
	svc := NewServiceImpl(new(MockRepository), cache, testLogger())

	cache.On("DeleteExpired", mock.Anything).Return(int64(0), errors.New("connection refused"))

	_, err := svc.CleanupCache(context.Background())
	assert.Error(t, err)
}
