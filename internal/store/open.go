package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/verte-zerg/shapematch/internal/model"
)

// Backend names accepted by Open.
const (
	BackendSQLite   = "sqlite"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendNone     = "none"
)

// ResultStore is an opened result backend.
type ResultStore interface {
	Save(ctx context.Context, rec model.ResultRecord) (string, error)
	QueryAll(ctx context.Context) ([]model.ResultRecord, error)
	Close() error
}

// Open opens the backend named in cfg. The "none" backend returns a nil store.
func Open(cfg model.StoreConfig) (ResultStore, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case BackendSQLite, "":
		if cfg.SQLitePath == "" {
			return nil, fmt.Errorf("sqlite path is empty")
		}
		st, err := OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite: %w", err)
		}
		return st, nil
	case BackendRedis:
		if cfg.RedisAddr == "" {
			return nil, fmt.Errorf("redis address is empty")
		}
		st, err := OpenRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.RedisKey)
		if err != nil {
			return nil, err
		}
		return st, nil
	case BackendPostgres:
		if cfg.PostgresDSN == "" {
			return nil, fmt.Errorf("postgres dsn is empty")
		}
		st, err := OpenPostgres(cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		return st, nil
	case BackendNone:
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}
