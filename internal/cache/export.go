// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// export.go caches rendered contract exports (HTML, DOCX) in Valkey so a
// repeated download skips population and rendering. Entries are keyed by
// contract ID, contract version and format; any contract change bumps the
// version, so stale entries are never served and simply expire.
package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// exportKeyPrefix is the Valkey key prefix for cached exports.
	exportKeyPrefix = "export:"

	// DefaultExportTTL is how long a rendered export stays cached.
	DefaultExportTTL = 10 * time.Minute
)

// ExportCache manages rendered export caching in Valkey. All methods are
// best-effort: failures are logged and reported as misses.
type ExportCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewExportCache creates an export cache backed by the given Valkey client.
func NewExportCache(client *redis.Client, ttl time.Duration) *ExportCache {
	if ttl == 0 {
		ttl = DefaultExportTTL
	}
	return &ExportCache{client: client, ttl: ttl}
}

// ExportKey returns the cache key for one rendering of a contract version.
func ExportKey(contractID string, version int, format string) string {
	return fmt.Sprintf("%s:%d:%s", contractID, version, format)
}

// Get retrieves a cached export. The bool is false on a miss.
func (ec *ExportCache) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := ec.client.Get(ctx, exportKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		slog.Warn("export cache get error", "key", key, "error", err)
		return nil, false
	}
	slog.Debug("export cache hit", "key", key)
	return val, true
}

// Set stores a rendered export with the configured TTL.
func (ec *ExportCache) Set(ctx context.Context, key string, data []byte) {
	if err := ec.client.Set(ctx, exportKeyPrefix+key, data, ec.ttl).Err(); err != nil {
		slog.Warn("export cache set error", "key", key, "error", err)
	}
}

// InvalidateContract removes every cached export of a contract, across
// versions and formats.
func (ec *ExportCache) InvalidateContract(ctx context.Context, contractID string) {
	var cursor uint64
	var deleted int
	for {
		keys, next, err := ec.client.Scan(ctx, cursor, exportKeyPrefix+contractID+":*", 100).Result()
		if err != nil {
			slog.Warn("export cache scan error", "contract_id", contractID, "error", err)
			return
		}
		if len(keys) > 0 {
			if err := ec.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("export cache delete error", "contract_id", contractID, "error", err)
			}
			deleted += len(keys)
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	slog.Debug("export cache invalidated", "contract_id", contractID, "deleted", deleted)
}
