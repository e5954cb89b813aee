package schools

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSource struct {
	calls int
	list  []*School
	err   error
}

func (s *countingSource) Schools(_ context.Context, divisions ...string) ([]*School, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return filterDivisions(s.list, divisions), nil
}

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func testPool() []*School {
	enrollment := 6500
	return []*School{
		{Name: "Vanderbilt University", State: "TN", DivisionGroup: DivisionPower4D1, UndergradEnrollment: &enrollment},
		{Name: "Emory University", State: "GA", DivisionGroup: DivisionNonD1},
	}
}

func TestCacheReadThrough(t *testing.T) {
	t.Parallel()

	mr, client := setupRedis(t)
	src := &countingSource{list: testPool()}
	cache := NewCache(client, src, time.Minute, nil)
	ctx := context.Background()

	first, err := cache.Load(ctx, DivisionPower4D1)
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, 1, src.calls)
	assert.True(t, mr.Exists("schools:power 4 d1"))

	second, err := cache.Schools(ctx, DivisionPower4D1)
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, 1, src.calls, "second load must be served from redis")
	assert.Equal(t, "Vanderbilt University", second[0].Name)
	require.NotNil(t, second[0].UndergradEnrollment)
	assert.Equal(t, 6500, *second[0].UndergradEnrollment)

	mr.FastForward(2 * time.Minute)
	_, err = cache.Load(ctx, DivisionPower4D1)
	require.NoError(t, err)
	assert.Equal(t, 2, src.calls, "expired entry must trigger a reload")
}

func TestCacheReloadAndInvalidate(t *testing.T) {
	t.Parallel()

	mr, client := setupRedis(t)
	src := &countingSource{list: testPool()}
	cache := NewCache(client, src, 0, nil)
	ctx := context.Background()

	_, err := cache.Load(ctx)
	require.NoError(t, err)
	assert.True(t, mr.Exists("schools:all"))

	_, err = cache.Reload(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, src.calls)

	require.NoError(t, cache.Invalidate(ctx))
	assert.False(t, mr.Exists("schools:all"))
}

func TestCacheDiscardsCorruptEntry(t *testing.T) {
	t.Parallel()

	mr, client := setupRedis(t)
	require.NoError(t, mr.Set("schools:all", "not json"))

	src := &countingSource{list: testPool()}
	list, err := NewCache(client, src, time.Minute, nil).Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 2)
	assert.Equal(t, 1, src.calls)
}

func TestCacheSourceError(t *testing.T) {
	t.Parallel()

	_, client := setupRedis(t)
	src := &countingSource{err: errors.New("source down")}

	_, err := NewCache(client, src, time.Minute, nil).Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "source down")
}

func TestCacheKeyIsOrderIndependent(t *testing.T) {
	t.Parallel()

	assert.Equal(t, cacheKey([]string{"Non-D1", "Power 4 D1"}), cacheKey([]string{"power 4 d1", "non-d1"}))
	assert.Equal(t, "schools:all", cacheKey(nil))
}
