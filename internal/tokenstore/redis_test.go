package tokenstore

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T) (*RedisStore, *mr.Miniredis) {
	t.Helper()
	m, err := mr.Run()
	require.NoError(t, err)
	t.Cleanup(m.Close)
	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	return NewRedisStore(client, "test:", "session"), m
}

func TestRedisStore_SetGetClear(t *testing.T) {
	s, m := newRedisStore(t)
	ctx := context.Background()

	got, err := s.Get(ctx)
	require.NoError(t, err)
	require.Nil(t, got)

	rec := NewRecord("at-1", "rt-1", time.Now().Add(time.Hour))
	require.NoError(t, s.Set(ctx, rec))

	// persisted layout is the documented JSON shape
	raw, err := m.Get("test:session")
	require.NoError(t, err)
	var layout map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(raw), &layout))
	require.Equal(t, "at-1", layout["accessToken"])
	require.Equal(t, "rt-1", layout["refreshToken"])
	require.EqualValues(t, rec.Expiry, layout["expiry"])

	got, err = s.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, rec, *got)

	require.NoError(t, s.Clear(ctx))
	require.False(t, m.Exists("test:session"))
	got, err = s.Get(ctx)
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestRedisStore_NoTTL(t *testing.T) {
	s, m := newRedisStore(t)
	require.NoError(t, s.Set(context.Background(), NewRecord("at", "rt", time.Now().Add(time.Minute))))

	// the record outlives the access token expiry; refresh needs it
	m.FastForward(time.Hour)
	got, err := s.Get(context.Background())
	require.NoError(t, err)
	require.NotNil(t, got)
}

func TestRedisStore_ForeignDataReadsAsAbsent(t *testing.T) {
	s, m := newRedisStore(t)
	require.NoError(t, m.Set("test:session", "definitely-not-json"))

	got, err := s.Get(context.Background())
	require.NoError(t, err)
	require.Nil(t, got)

	require.NoError(t, m.Set("test:session", `{"accessToken":"at","expiry":123}`))
	got, err = s.Get(context.Background())
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestRedisStore_DefaultKey(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()
	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	s := NewRedisStore(client, "", "")

	require.NoError(t, s.Set(context.Background(), NewRecord("at", "rt", time.Now().Add(time.Minute))))
	require.True(t, m.Exists("authwidget:"+DefaultKey))
}
