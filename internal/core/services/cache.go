package services

import (
	"context"
	"time"
)

// Cache stores short-lived rendered payloads. Implementations must treat a
// missing key as (nil, false, nil).
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// Cache keys
const (
	CacheKeyUpcomingBills = "kas:bills:upcoming"
)
