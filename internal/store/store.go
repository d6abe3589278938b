// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package store implements the service layer for categories, templates and
// contracts. Each collection is kept as a JSON array under a fixed key in a
// kv.Store. Every call waits for a configurable simulated latency first.
//
// Expected failures (missing fields, duplicate names, unknown IDs) are
// reported through models.Result. A returned error always means the backing
// store failed.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"contractdesk/internal/kv"
)

// Collection keys in the kv store.
const (
	KeyCategories = "contractdesk:categories"
	KeyTemplates  = "contractdesk:templates"
	KeyContracts  = "contractdesk:contracts"
)

// DefaultLatency is the simulated round-trip applied to every store call.
const DefaultLatency = 300 * time.Millisecond

// backend is the state shared by all stores.
type backend struct {
	kv      kv.Store
	latency time.Duration
	now     func() time.Time
}

func newBackend(store kv.Store, latency time.Duration) backend {
	return backend{kv: store, latency: latency, now: func() time.Time { return time.Now().UTC() }}
}

// delay sleeps for the configured latency or until ctx is done.
func (b backend) delay(ctx context.Context) error {
	if b.latency <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(b.latency)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// loadList reads the JSON array stored under key. ok is false when the key
// has never been written.
func loadList[T any](ctx context.Context, store kv.Store, key string) (items []T, ok bool, err error) {
	data, err := store.Get(ctx, key)
	if errors.Is(err, kv.ErrNotFound) {
		return []T{}, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load %s: %w", key, err)
	}
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, false, fmt.Errorf("decode %s: %w", key, err)
	}
	if items == nil {
		items = []T{}
	}
	return items, true, nil
}

// saveList writes items as a JSON array under key.
func saveList[T any](ctx context.Context, store kv.Store, key string, items []T) error {
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := store.Set(ctx, key, data); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// validate checks input structs. Field names in messages come from the
// `label` tag.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if label := f.Tag.Get("label"); label != "" {
			return label
		}
		return f.Name
	})
	return v
}

// validationMessage turns the first validator failure into a sentence
// suitable for a result envelope.
func validationMessage(err error) string {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) || len(errs) == 0 {
		return "Invalid input."
	}
	fe := errs[0]
	switch fe.Tag() {
	case "required", "notblank":
		return fe.Field() + " is required."
	case "max":
		if k := fe.Kind(); k == reflect.Map || k == reflect.Slice {
			return fmt.Sprintf("%s must have at most %s entries.", fe.Field(), fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s characters.", fe.Field(), fe.Param())
	case "min":
		return fe.Field() + " must not be empty."
	case "email":
		return fe.Field() + " must be a valid email address."
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s.", fe.Field(), strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return fe.Field() + " is invalid."
	}
}

// Check validates a tagged request struct with the same rules and messages
// as the stores. It returns "" when v is valid.
func Check(v any) string {
	if err := validate.Struct(v); err != nil {
		return validationMessage(err)
	}
	return ""
}

// copyValues returns an independent copy of a field value map.
func copyValues(values map[string]string) map[string]string {
	out := make(map[string]string, len(values))
	for k, v := range values {
		out[k] = v
	}
	return out
}
