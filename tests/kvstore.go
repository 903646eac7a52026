package testutil

import (
	"bytes"
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/studyroom/core"
)

// TestKVStore runs the behaviour every core.KVStore medium must share.
// newKV returns an empty medium bounded by `quota` bytes.
func TestKVStore(t *testing.T, newKV func(t *testing.T, quota int64) core.KVStore) {
	ctx := context.Background()

	t.Run("get absent", func(t *testing.T) {
		kv := newKV(t, 0)
		_, err := kv.Get(ctx, "study_notes_a@x.com")
		assert.True(t, errors.Is(err, core.ErrKeyNotFound), "Get() error = %v", err)
	})

	t.Run("set get delete", func(t *testing.T) {
		kv := newKV(t, 0)
		require.NoError(t, kv.Set(ctx, "study_notes_a@x.com", []byte(`[{"id":1}]`)))
		require.NoError(t, kv.Set(ctx, "study_notes_b@x.com", []byte(`[]`)))

		got, err := kv.Get(ctx, "study_notes_a@x.com")
		require.NoError(t, err)
		assert.Equal(t, []byte(`[{"id":1}]`), got)

		require.NoError(t, kv.Set(ctx, "study_notes_a@x.com", []byte(`[{"id":2}]`)))
		got, err = kv.Get(ctx, "study_notes_a@x.com")
		require.NoError(t, err)
		assert.Equal(t, []byte(`[{"id":2}]`), got)

		require.NoError(t, kv.Delete(ctx, "study_notes_a@x.com"))
		require.NoError(t, kv.Delete(ctx, "study_notes_a@x.com"), "deleting an absent key")
		_, err = kv.Get(ctx, "study_notes_a@x.com")
		assert.True(t, errors.Is(err, core.ErrKeyNotFound), "Get() error = %v", err)

		got, err = kv.Get(ctx, "study_notes_b@x.com")
		require.NoError(t, err)
		assert.Equal(t, []byte(`[]`), got)
	})

	t.Run("quota", func(t *testing.T) {
		kv := newKV(t, 1000)
		fill := func(n int) []byte { return bytes.Repeat([]byte("x"), n) }

		tests := []struct {
			name    string
			key     string
			value   []byte
			wantErr bool
		}{
			{name: "fits", key: "k", value: fill(500)},
			{name: "exceeds", key: "j", value: fill(600), wantErr: true},
			{name: "replacing frees the old value", key: "k", value: fill(900)},
			{name: "exceeds after growth", key: "j", value: fill(200), wantErr: true},
			{name: "shrink", key: "k", value: fill(10)},
			{name: "fits after shrink", key: "j", value: fill(600)},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				before, _ := kv.Get(ctx, tt.key)
				err := kv.Set(ctx, tt.key, tt.value)
				if !tt.wantErr {
					require.NoError(t, err)
					return
				}
				assert.True(t, errors.Is(err, core.ErrQuotaExceeded), "Set() error = %v", err)
				after, _ := kv.Get(ctx, tt.key)
				assert.Equal(t, before, after, "rejected write leaves the value untouched")
			})
		}
	})
}
