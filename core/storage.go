package core

import (
	"context"
	"errors"
)

var (
	// ErrKeyNotFound is returned by a KVStore when a key holds no value.
	ErrKeyNotFound = errors.New("key not found")
	// ErrQuotaExceeded is returned by a KVStore when a write would exceed the medium's capacity.
	// A failed write leaves the previous value in place.
	ErrQuotaExceeded = errors.New("storage quota exceeded")
)

// KVStore is a size-bounded key-value storage medium.
// Writes are atomic: a Set either fully replaces the value or leaves it untouched.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// QuotaError reports the sizes involved in a rejected write. It unwraps to ErrQuotaExceeded.
type QuotaError struct {
	Key   string
	Used  int64 // bytes held by the medium, excluding the previous value of Key
	Size  int64 // bytes of the rejected value
	Quota int64
}

func (e *QuotaError) Error() string { return ErrQuotaExceeded.Error() }

func (e *QuotaError) Unwrap() error { return ErrQuotaExceeded }

// CheckQuota returns a *QuotaError when storing `size` more bytes on top of `used` exceeds `quota`.
// A quota <= 0 disables the check.
func CheckQuota(key string, used, size, quota int64) error {
	if quota > 0 && used+size > quota {
		return &QuotaError{Key: key, Used: used, Size: size, Quota: quota}
	}
	return nil
}
