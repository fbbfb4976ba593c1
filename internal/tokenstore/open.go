package tokenstore

import (
	"context"
	"fmt"

	"github.com/gogotex/gogotex/backend/auth-widget/internal/config"
	"github.com/gogotex/gogotex/backend/auth-widget/internal/database"
)

// Open builds the store selected by cfg.Store.Backend. The returned func
// releases the underlying connection.
func Open(ctx context.Context, cfg *config.Config) (Store, func(), error) {
	key := cfg.Session.StorageKey
	noop := func() {}

	switch cfg.Store.Backend {
	case config.BackendMemory, "":
		log.Warnf("using in-memory session store; sessions do not survive a restart")
		return NewMemoryStore(), noop, nil

	case config.BackendRedis:
		client, err := database.ConnectRedis(ctx, cfg.Redis.Addr(), cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.Timeout)
		if err != nil {
			return nil, noop, err
		}
		log.Infof("session store: redis %s", cfg.Redis.Addr())
		return NewRedisStore(client, cfg.Redis.Prefix, key), func() { _ = client.Close() }, nil

	case config.BackendMongo:
		client, err := database.ConnectMongo(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout)
		if err != nil {
			return nil, noop, err
		}
		col := client.Database(cfg.MongoDB.Database).Collection(cfg.MongoDB.Collection)
		log.Infof("session store: mongo %s.%s", cfg.MongoDB.Database, cfg.MongoDB.Collection)
		return NewMongoStore(col, key), func() { _ = client.Disconnect(context.Background()) }, nil

	case config.BackendMinIO:
		st, err := NewMinIOStore(ctx, MinIOConfig{
			Endpoint:  cfg.MinIO.Endpoint,
			AccessKey: cfg.MinIO.AccessKey,
			SecretKey: cfg.MinIO.SecretKey,
			UseSSL:    cfg.MinIO.UseSSL,
			Bucket:    cfg.MinIO.Bucket,
		}, key)
		if err != nil {
			return nil, noop, err
		}
		log.Infof("session store: minio %s/%s", cfg.MinIO.Endpoint, cfg.MinIO.Bucket)
		return st, noop, nil
	}
	return nil, noop, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
}
