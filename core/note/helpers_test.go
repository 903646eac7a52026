package note

import (
	"context"
	"sync"
	"testing"

	"github.com/trezcool/studyroom/core"
	inmemdb "github.com/trezcool/studyroom/storage/database/inmem"
)

type testLogger struct {
	t testing.TB
}

func (l testLogger) Debug(msg string, args ...interface{}) { l.t.Logf("DEBUG: %s %v", msg, args) }
func (l testLogger) Info(msg string, args ...interface{})  { l.t.Logf("INFO: %s %v", msg, args) }
func (l testLogger) Warn(msg string, args ...interface{})  { l.t.Logf("WARN: %s %v", msg, args) }
func (l testLogger) Error(msg string, args ...interface{}) { l.t.Logf("ERROR: %s %v", msg, args) }
func (l testLogger) Fatal(msg string, args ...interface{}) { l.t.Logf("FATAL: %s %v", msg, args) }

// countingKV counts the writes reaching the wrapped medium.
type countingKV struct {
	core.KVStore

	mu     sync.Mutex
	writes int
}

func (kv *countingKV) Set(ctx context.Context, key string, value []byte) error {
	kv.mu.Lock()
	kv.writes++
	kv.mu.Unlock()
	return kv.KVStore.Set(ctx, key, value)
}

func (kv *countingKV) Writes() int {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	return kv.writes
}

func newTestKV(t testing.TB, quota int64) *countingKV {
	db, err := inmemdb.Open(quota)
	if err != nil {
		t.Fatalf("inmemdb.Open() failed: %v", err)
	}
	return &countingKV{KVStore: db}
}

func newTestLibrary(t testing.TB, kv core.KVStore) *Library {
	validate, translator := core.NewValidator()
	InitValidators(validate, translator)
	return NewLibrary(LibraryDeps{
		KV:         kv,
		Logger:     testLogger{t: t},
		Validate:   validate,
		Translator: translator,
	})
}

func newTestNote(title, subject string) NewNote {
	return NewNote{
		Title:    title,
		Subject:  subject,
		FileName: "notes.pdf",
		FileData: EncodeDataURL("notes.pdf", []byte("%PDF-1.4 "+title)),
	}
}

func mustCreate(t testing.TB, s *Store, title, subject string) Note {
	t.Helper()
	n, err := s.Create(context.Background(), newTestNote(title, subject))
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	return n
}
