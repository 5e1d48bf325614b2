package contracts

import (
	"context"
	"time"
)

type RedisRepository interface {
	Set(ctx context.Context, key string, value interface{}, exp time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
	TrySetNX(ctx context.Context, key string, value interface{}, exp time.Duration) (bool, error)
	// DeleteIfEquals and ExpireIfEquals compare the stored value and act in one round trip.
	DeleteIfEquals(ctx context.Context, key string, value interface{}) (bool, error)
	ExpireIfEquals(ctx context.Context, key string, value interface{}, exp time.Duration) (bool, error)
}
