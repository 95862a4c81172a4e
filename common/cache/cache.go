package cache

import (
	"context"
	"encoding"
	"errors"
	"time"
)

var (
	ErrNotFound     = errors.New("key not found in cache")
	ErrInvalidValue = errors.New("invalid value for cache")
	ErrClosed       = errors.New("cache is closed")
	ErrInvalidKey   = errors.New("invalid cache key")
)

// Cache stores opaque values. Supported value types are string, []byte and
// encoding.BinaryMarshaler on Set, and *string, *[]byte and encoding.BinaryUnmarshaler on Get.
type Cache interface {
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	Get(ctx context.Context, key string, value interface{}) error

	Delete(ctx context.Context, key string) error

	Clear(ctx context.Context) error

	Close() error
}

type Options struct {
	DefaultTTL time.Duration

	CleanupInterval time.Duration

	RedisURL string

	RedisPassword string

	RedisDB int
}

func DefaultOptions() Options {
	return Options{
		DefaultTTL:      time.Hour,
		CleanupInterval: time.Minute * 5,
	}
}

// Encode converts a value accepted by Set into bytes.
func Encode(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case string:
		return []byte(v), nil
	case []byte:
		return v, nil
	case encoding.BinaryMarshaler:
		return v.MarshalBinary()
	default:
		return nil, ErrInvalidValue
	}
}

// Decode writes raw bytes into a destination accepted by Get.
func Decode(raw []byte, value interface{}) error {
	switch v := value.(type) {
	case *string:
		*v = string(raw)
	case *[]byte:
		*v = append((*v)[:0], raw...)
	case encoding.BinaryUnmarshaler:
		return v.UnmarshalBinary(raw)
	default:
		return ErrInvalidValue
	}
	return nil
}
