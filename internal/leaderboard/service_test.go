package leaderboard

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/studycolab/groupstudy-platform/internal/stats"
)

type stubStatsReader struct {
	records []stats.UserStats
	calls   int
}

func (s *stubStatsReader) top(limit int, key func(stats.UserStats) int) []stats.UserStats {
	s.calls++
	out := make([]stats.UserStats, len(s.records))
	copy(out, s.records)
	sort.SliceStable(out, func(i, j int) bool {
		return key(out[i]) > key(out[j])
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (s *stubStatsReader) TopByPoints(_ context.Context, limit int) ([]stats.UserStats, error) {
	return s.top(limit, func(u stats.UserStats) int { return u.Points }), nil
}

func (s *stubStatsReader) TopByMonthlyPoints(_ context.Context, limit int) ([]stats.UserStats, error) {
	return s.top(limit, func(u stats.UserStats) int { return u.MonthlyPoints }), nil
}

func testRecords() []stats.UserStats {
	return []stats.UserStats{
		{UserEmail: "a@example.com", UserName: "A", Points: 30, MonthlyPoints: 90},
		{UserEmail: "b@example.com", UserName: "B", Points: 90, MonthlyPoints: 10},
		{UserEmail: "c@example.com", UserName: "C", Points: 10, MonthlyPoints: 30},
		{UserEmail: "d@example.com", UserName: "D", Points: 90, MonthlyPoints: 5},
	}
}

func newCachedService(t *testing.T, store *stubStatsReader, ttl time.Duration) (*Service, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := NewCache(client, ttl)
	return NewService(store, cache, zerolog.Nop(), ServiceOptions{TopN: 50}), mr
}

func TestTopOrdersByPointsWithStableTies(t *testing.T) {
	store := &stubStatsReader{records: testRecords()}
	service := NewService(store, nil, zerolog.Nop(), ServiceOptions{})

	entries, err := service.Top(context.Background(), 10)
	assert.NoError(t, err)
	assert.Len(t, entries, 4)

	// b and d tie on 90; b keeps the earlier position.
	assert.Equal(t, "b@example.com", entries[0].UserEmail)
	assert.Equal(t, "d@example.com", entries[1].UserEmail)
	assert.Equal(t, "a@example.com", entries[2].UserEmail)
	assert.Equal(t, "c@example.com", entries[3].UserEmail)

	for i, entry := range entries {
		assert.Equal(t, i+1, entry.Rank)
	}
}

func TestMonthlyTopOrdersByMonthlyPoints(t *testing.T) {
	store := &stubStatsReader{records: testRecords()}
	service := NewService(store, nil, zerolog.Nop(), ServiceOptions{})

	entries, err := service.MonthlyTop(context.Background(), 10)
	assert.NoError(t, err)
	assert.Equal(t, "a@example.com", entries[0].UserEmail)
	assert.Equal(t, 90, entries[0].MonthlyPoints)
	assert.Equal(t, "c@example.com", entries[1].UserEmail)
}

func TestTopTruncatesToLimit(t *testing.T) {
	store := &stubStatsReader{records: testRecords()}
	service := NewService(store, nil, zerolog.Nop(), ServiceOptions{})

	entries, err := service.Top(context.Background(), 2)
	assert.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestTopInvalidLimitFallsBackToDefault(t *testing.T) {
	store := &stubStatsReader{records: testRecords()}
	service := NewService(store, nil, zerolog.Nop(), ServiceOptions{TopN: 50})

	entries, err := service.Top(context.Background(), -3)
	assert.NoError(t, err)
	assert.Len(t, entries, 4)

	entries, err = service.Top(context.Background(), 500)
	assert.NoError(t, err)
	assert.Len(t, entries, 4)
}

func TestTopServesCachedEntriesWithinTTL(t *testing.T) {
	store := &stubStatsReader{records: testRecords()}
	service, _ := newCachedService(t, store, time.Minute)
	ctx := context.Background()

	first, err := service.Top(ctx, 10)
	assert.NoError(t, err)
	assert.Equal(t, 1, store.calls)

	// A score change is invisible until the TTL expires.
	store.records[2].Points = 1000
	second, err := service.Top(ctx, 10)
	assert.NoError(t, err)
	assert.Equal(t, 1, store.calls)
	assert.Equal(t, first, second)
}

func TestTopRefetchesAfterTTLExpiry(t *testing.T) {
	store := &stubStatsReader{records: testRecords()}
	service, mr := newCachedService(t, store, time.Minute)
	ctx := context.Background()

	_, err := service.Top(ctx, 10)
	assert.NoError(t, err)

	store.records[2].Points = 1000
	mr.FastForward(2 * time.Minute)

	entries, err := service.Top(ctx, 10)
	assert.NoError(t, err)
	assert.Equal(t, 2, store.calls)
	assert.Equal(t, "c@example.com", entries[0].UserEmail)
}

func TestWindowsCacheIndependently(t *testing.T) {
	store := &stubStatsReader{records: testRecords()}
	service, _ := newCachedService(t, store, time.Minute)
	ctx := context.Background()

	_, err := service.Top(ctx, 10)
	assert.NoError(t, err)
	_, err = service.MonthlyTop(ctx, 10)
	assert.NoError(t, err)
	assert.Equal(t, 2, store.calls)

	_, err = service.MonthlyTop(ctx, 10)
	assert.NoError(t, err)
	assert.Equal(t, 2, store.calls)
}
