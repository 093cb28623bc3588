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

type payload struct {
	Total float64 `json:"total"`
	Label string  `json:"label"`
}

func newTestStore(t *testing.T, ttl time.Duration) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewStore(client, ttl), mr
}

func TestFetchJSONPopulatesAndReuses(t *testing.T) {
	store, _ := newTestStore(t, time.Minute)

	calls := 0
	loader := func(context.Context) (any, error) {
		calls++
		return payload{Total: 1234.5, Label: "vendas"}, nil
	}

	var first payload
	require.NoError(t, store.FetchJSON(context.Background(), "k", &first, loader))
	assert.Equal(t, 1234.5, first.Total)
	assert.Equal(t, 1, calls)

	var second payload
	require.NoError(t, store.FetchJSON(context.Background(), "k", &second, loader))
	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls, "second fetch must come from redis")
}

func TestFetchJSONReloadsAfterExpiry(t *testing.T) {
	store, mr := newTestStore(t, time.Minute)

	calls := 0
	loader := func(context.Context) (any, error) {
		calls++
		return payload{Total: float64(calls)}, nil
	}

	var out payload
	require.NoError(t, store.FetchJSON(context.Background(), "k", &out, loader))
	mr.FastForward(2 * time.Minute)
	require.NoError(t, store.FetchJSON(context.Background(), "k", &out, loader))
	assert.Equal(t, 2, calls)
	assert.Equal(t, 2.0, out.Total)
}

func TestFetchJSONNilStoreDegradesToLoader(t *testing.T) {
	var store *Store

	var out payload
	err := store.FetchJSON(context.Background(), "k", &out, func(context.Context) (any, error) {
		return payload{Label: "direto"}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "direto", out.Label)
}

func TestFetchJSONLoaderErrorPropagates(t *testing.T) {
	store, _ := newTestStore(t, time.Minute)

	boom := errors.New("pool exhausted")
	var out payload
	err := store.FetchJSON(context.Background(), "k", &out, func(context.Context) (any, error) {
		return nil, boom
	})
	require.ErrorIs(t, err, boom)
}

func TestFetchJSONRequiresLoader(t *testing.T) {
	store, _ := newTestStore(t, time.Minute)

	var out payload
	assert.Error(t, store.FetchJSON(context.Background(), "k", &out, nil))
}
