package tokenstore

import (
	"fmt"

	"campusbuzz/internal/config"
)

// NewFromConfig selects and builds the store backend named in the config.
func NewFromConfig(cfg *config.Config) (Store, error) {
	switch cfg.TokenStoreBackend {
	case config.BackendMemory:
		return NewMemoryStore(), nil
	case config.BackendFile:
		return NewFileStore(cfg.TokenStorePath, cfg.TokenPassphrase)
	case config.BackendRedis:
		return NewRedisStore(cfg.RedisURL)
	default:
		return nil, fmt.Errorf("unknown token store backend %q", cfg.TokenStoreBackend)
	}
}
