// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package kv

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// valkeyKeyPrefix namespaces store keys inside a shared Valkey database.
const valkeyKeyPrefix = "kv:"

// Valkey is a Store backed by a Valkey (Redis-compatible) server.
// Keys never expire.
type Valkey struct {
	client *redis.Client
}

// NewValkey wraps an already connected client.
func NewValkey(client *redis.Client) *Valkey {
	return &Valkey{client: client}
}

// Get fetches a value, mapping redis.Nil to ErrNotFound.
func (v *Valkey) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := v.client.Get(ctx, valkeyKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("valkey get %s: %w", key, err)
	}
	return val, nil
}

// Set stores a value without TTL.
func (v *Valkey) Set(ctx context.Context, key string, value []byte) error {
	if err := v.client.Set(ctx, valkeyKeyPrefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("valkey set %s: %w", key, err)
	}
	return nil
}

// Remove deletes a key.
func (v *Valkey) Remove(ctx context.Context, key string) error {
	if err := v.client.Del(ctx, valkeyKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("valkey del %s: %w", key, err)
	}
	return nil
}
