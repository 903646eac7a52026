package inmemdb

import (
	"context"

	"github.com/trezcool/studyroom/core"
)

func entrySize(key string, value []byte) int64 {
	return int64(len(key) + len(value))
}

func (db *DB) Get(_ context.Context, key string) ([]byte, error) {
	db.kv.RLock()
	defer db.kv.RUnlock()

	if val, ok := db.kv.table[key]; ok {
		cp := make([]byte, len(val))
		copy(cp, val)
		return cp, nil
	}
	return nil, core.ErrKeyNotFound
}

func (db *DB) Set(_ context.Context, key string, value []byte) error {
	db.kv.Lock()
	defer db.kv.Unlock()

	used := db.kv.used
	if old, ok := db.kv.table[key]; ok {
		used -= entrySize(key, old)
	}
	size := entrySize(key, value)
	if err := core.CheckQuota(key, used, size, db.kv.quota); err != nil {
		return err
	}

	cp := make([]byte, len(value))
	copy(cp, value)
	db.kv.table[key] = cp
	db.kv.used = used + size
	return nil
}

func (db *DB) Delete(_ context.Context, key string) error {
	db.kv.Lock()
	defer db.kv.Unlock()

	if old, ok := db.kv.table[key]; ok {
		db.kv.used -= entrySize(key, old)
		delete(db.kv.table, key)
	}
	return nil
}
