package inmemdb

import (
	"sync"

	"github.com/trezcool/studyroom/core"
)

type (
	// DB is an in-memory key-value medium with a byte quota over all keys, like browser local storage.
	DB struct {
		kv *kvTable
	}

	kvTable struct {
		sync.RWMutex
		table map[string][]byte
		used  int64 // len(key) + len(value) of every entry
		quota int64
	}
)

var _ core.KVStore = (*DB)(nil) // interface compliance check

// Open returns an empty DB. A quota <= 0 disables the capacity check.
func Open(quota int64) (*DB, error) {
	db := &DB{
		kv: &kvTable{table: make(map[string][]byte), quota: quota},
	}
	return db, nil
}

// Used returns the number of bytes held by the DB.
func (db *DB) Used() int64 {
	db.kv.RLock()
	defer db.kv.RUnlock()
	return db.kv.used
}

// Len returns the number of keys held by the DB.
func (db *DB) Len() int {
	db.kv.RLock()
	defer db.kv.RUnlock()
	return len(db.kv.table)
}
