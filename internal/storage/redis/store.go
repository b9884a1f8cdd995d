// Package redis implements artifact storage in Redis behind Sentinel.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config captures the Sentinel connection parameters.
type Config struct {
	// SentinelAddrs are the Sentinel endpoints used for master discovery.
	SentinelAddrs []string `mapstructure:"sentinel_addrs"`
	// MasterName is the monitored master set name.
	MasterName string `mapstructure:"master_name"`
	Password   string `mapstructure:"password"`

	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// Store persists artifacts in Redis. Writes go to the discovered master.
type Store struct {
	client *redis.Client
}

// New builds a Store and verifies connectivity, so a dead Sentinel fails the
// run early enough for the caller to switch to the fallback store.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if len(cfg.SentinelAddrs) == 0 {
		return nil, fmt.Errorf("at least one sentinel address is required")
	}
	if cfg.MasterName == "" {
		return nil, fmt.Errorf("master name is required")
	}

	client := redis.NewFailoverClient(&redis.FailoverOptions{
		MasterName:    cfg.MasterName,
		SentinelAddrs: cfg.SentinelAddrs,
		Password:      cfg.Password,
		DialTimeout:   cfg.DialTimeout,
		WriteTimeout:  cfg.WriteTimeout,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis master %q: %w", cfg.MasterName, err)
	}
	return &Store{client: client}, nil
}

// Save writes data under key without an expiry; each run fully replaces the
// previous artifact.
func (s *Store) Save(ctx context.Context, key string, data []byte) error {
	if key == "" {
		return fmt.Errorf("key is required")
	}
	if err := s.client.Set(ctx, key, data, 0).Err(); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.client.Close()
}
