package tokenstore

import (
	"context"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogotex/gogotex/backend/auth-widget/internal/config"
)

func TestOpen_Memory(t *testing.T) {
	cfg := &config.Config{Store: config.StoreConfig{Backend: config.BackendMemory}}
	st, closeFn, err := Open(context.Background(), cfg)
	require.NoError(t, err)
	defer closeFn()
	assert.IsType(t, &MemoryStore{}, st)
}

func TestOpen_Redis(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()

	cfg := &config.Config{
		Store:   config.StoreConfig{Backend: config.BackendRedis},
		Session: config.SessionConfig{StorageKey: "widget_session"},
		Redis:   config.RedisConfig{Host: m.Host(), Port: m.Port(), Prefix: "test:", Timeout: time.Second},
	}
	st, closeFn, err := Open(context.Background(), cfg)
	require.NoError(t, err)
	defer closeFn()

	require.NoError(t, st.Set(context.Background(), NewRecord("a", "r", time.Now().Add(time.Hour))))
	assert.True(t, m.Exists("test:widget_session"))
}

func TestOpen_UnknownBackend(t *testing.T) {
	_, _, err := Open(context.Background(), &config.Config{Store: config.StoreConfig{Backend: "sqlite"}})
	require.Error(t, err)
}
