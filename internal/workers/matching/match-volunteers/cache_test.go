package matchvolunteers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"volunteer-workers/internal/common/database"
	"volunteer-workers/internal/location"
)

func setupRedis(t *testing.T) (*miniredis.Miniredis, *database.RedisClient) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	return mr, &database.RedisClient{Client: redis.NewClient(&redis.Options{Addr: mr.Addr()})}
}

type countingFinder struct {
	d     location.Descriptor
	err   error
	calls int
}

func (f *countingFinder) FindProjectLocation(context.Context, string) (location.Descriptor, error) {
	f.calls++
	return f.d, f.err
}

func TestCachedFinder_ReadThrough(t *testing.T) {
	mr, rc := setupRedis(t)
	next := &countingFinder{d: location.Descriptor{State: "LA", Country: "NG"}}
	f := NewCachedFinder(next, rc, time.Minute, createTestLogger(t))

	d, err := f.FindProjectLocation(context.Background(), "proj-1")
	require.NoError(t, err)
	assert.Equal(t, next.d, d)
	assert.True(t, mr.Exists(ProjectCacheKey("proj-1")))
	assert.Equal(t, time.Minute, mr.TTL(ProjectCacheKey("proj-1")))

	d, err = f.FindProjectLocation(context.Background(), "proj-1")
	require.NoError(t, err)
	assert.Equal(t, next.d, d)
	assert.Equal(t, 1, next.calls)
}

func TestCachedFinder_NotFoundIsNotCached(t *testing.T) {
	mr, rc := setupRedis(t)
	next := &countingFinder{err: location.ErrProjectNotFound}
	f := NewCachedFinder(next, rc, time.Minute, createTestLogger(t))

	_, err := f.FindProjectLocation(context.Background(), "ghost")
	assert.ErrorIs(t, err, location.ErrProjectNotFound)
	assert.False(t, mr.Exists(ProjectCacheKey("ghost")))
}

func TestCachedFinder_CorruptEntryFallsBack(t *testing.T) {
	mr, rc := setupRedis(t)
	require.NoError(t, mr.Set(ProjectCacheKey("proj-1"), "not json"))

	next := &countingFinder{d: location.Descriptor{Country: "Ghana"}}
	f := NewCachedFinder(next, rc, time.Minute, createTestLogger(t))

	d, err := f.FindProjectLocation(context.Background(), "proj-1")
	require.NoError(t, err)
	assert.Equal(t, "Ghana", d.Country)
	assert.Equal(t, 1, next.calls)
}

func TestCachedFinder_RedisDown(t *testing.T) {
	client, mock := redismock.NewClientMock()
	key := ProjectCacheKey("proj-1")
	mock.ExpectGet(key).SetErr(errors.New("dial tcp: connection refused"))
	mock.Regexp().ExpectSet(key, `.*`, time.Minute).SetErr(errors.New("dial tcp: connection refused"))

	next := &countingFinder{d: location.Descriptor{LGA: "Ikeja"}}
	f := NewCachedFinder(next, &database.RedisClient{Client: client}, time.Minute, createTestLogger(t))

	d, err := f.FindProjectLocation(context.Background(), "proj-1")
	require.NoError(t, err)
	assert.Equal(t, "Ikeja", d.LGA)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCachedFinder_NilCache(t *testing.T) {
	next := &countingFinder{d: location.Descriptor{Country: "NG"}}
	f := NewCachedFinder(next, nil, time.Minute, createTestLogger(t))

	_, err := f.FindProjectLocation(context.Background(), "proj-1")
	require.NoError(t, err)
	assert.Equal(t, 1, next.calls)
}
