package cache

import (
	"fmt"
	"strings"

	"github.com/polyglotai/polybench/internal/config"
)

const DefaultSQLitePath = "data/cache.db"

// Open builds a Cache from the configured backing store.
func Open(cfg *config.Config) (*Cache, error) {
	if cfg == nil {
		return nil, fmt.Errorf("cache: missing config")
	}

	backendType := strings.ToLower(strings.TrimSpace(cfg.Cache.Type))
	if backendType == "" {
		backendType = "sqlite"
	}

	var (
		backend Backend
		err     error
	)
	switch backendType {
	case "sqlite":
		path := strings.TrimSpace(cfg.Cache.Path)
		if path == "" {
			path = DefaultSQLitePath
		}
		backend, err = NewSQLiteBackend(path)
	case "redis":
		backend, err = NewRedisBackend(cfg.Cache.Addr, cfg.Cache.Password, cfg.Cache.DB, cfg.Cache.TTL)
	case "memory":
		backend = NewMemoryBackend()
	default:
		return nil, fmt.Errorf("cache: unsupported type %q", backendType)
	}
	if err != nil {
		return nil, err
	}
	return New(backend)
}
