package cache

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

func withMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	SetClient(rdb)
	t.Cleanup(func() {
		SetClient(nil)
		_ = rdb.Close()
	})
	return mr
}

func TestAside_MissFetchesAndPopulates(t *testing.T) {
	mr := withMiniredis(t)
	ctx := context.Background()

	fetched := 0
	var got map[string]int
	err := Aside(ctx, "k", &got, UserTTL, func() error {
		fetched++
		got = map[string]int{"a": 1}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, fetched)
	assert.True(t, mr.Exists("k"))

	// Second call is served from the cache.
	var again map[string]int
	err = Aside(ctx, "k", &again, UserTTL, func() error {
		fetched++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, fetched)
	assert.Equal(t, got, again)
}

func TestAside_FetchErrorPropagates(t *testing.T) {
	withMiniredis(t)

	wantErr := errors.New("store down")
	var dest struct{}
	err := Aside(context.Background(), "missing", &dest, UserTTL, func() error {
		return wantErr
	})
	assert.ErrorIs(t, err, wantErr)
}

func TestAside_NilClientFallsThrough(t *testing.T) {
	SetClient(nil)

	fetched := false
	var dest int
	err := Aside(context.Background(), "k", &dest, UserTTL, func() error {
		fetched = true
		dest = 7
		return nil
	})
	require.NoError(t, err)
	assert.True(t, fetched)
	assert.Equal(t, 7, dest)
}

func TestJitterTTLStaysWithinBounds(t *testing.T) {
	base := time.Minute
	for i := 0; i < 100; i++ {
		got := JitterTTL(base)
		assert.LessOrEqual(t, got, base)
		assert.GreaterOrEqual(t, got, base-base/5)
	}
}

func TestConversationKeyOrderNormalized(t *testing.T) {
	assert.Equal(t, ConversationKey(2, 9), ConversationKey(9, 2))
}

func TestInvalidateUser(t *testing.T) {
	mr := withMiniredis(t)
	ctx := context.Background()

	require.NoError(t, SetJSON(ctx, UserKey(7), map[string]int{"id": 7}, UserTTL))
	require.True(t, mr.Exists(UserKey(7)))

	InvalidateUser(ctx, 7)
	assert.False(t, mr.Exists(UserKey(7)))
}
