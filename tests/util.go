package testutil

import (
	"context"
	"testing"

	"github.com/trezcool/studyroom/core"
	"github.com/trezcool/studyroom/core/note"
	inmemdb "github.com/trezcool/studyroom/storage/database/inmem"
)

type testLogger struct {
	t testing.TB
}

var _ core.Logger = testLogger{}

// NewLogger returns a core.Logger writing to the test log.
func NewLogger(t testing.TB) core.Logger {
	return testLogger{t: t}
}

func (l testLogger) log(level, msg string, args []interface{}) {
	l.t.Helper()
	l.t.Logf("%s: %s %v", level, msg, args)
}

func (l testLogger) Debug(msg string, args ...interface{}) { l.log("DEBUG", msg, args) }
func (l testLogger) Info(msg string, args ...interface{})  { l.log("INFO", msg, args) }
func (l testLogger) Warn(msg string, args ...interface{})  { l.log("WARN", msg, args) }
func (l testLogger) Error(msg string, args ...interface{}) { l.log("ERROR", msg, args) }
func (l testLogger) Fatal(msg string, args ...interface{}) { l.log("FATAL", msg, args) }

// NewKV returns an empty in-memory medium holding at most `quota` bytes (<= 0 for no limit).
func NewKV(t testing.TB, quota int64) *inmemdb.DB {
	db, err := inmemdb.Open(quota)
	if err != nil {
		t.Fatalf("NewKV() failed: %v", err)
	}
	return db
}

// NewLibrary returns a note.Library over `kv`, or over a new unbounded in-memory medium if kv is nil.
func NewLibrary(t testing.TB, kv core.KVStore, conf ...core.NotesConfig) *note.Library {
	if kv == nil {
		kv = NewKV(t, 0)
	}
	var c core.NotesConfig
	if len(conf) > 0 {
		c = conf[0]
	}
	validate, translator := core.NewValidator()
	note.InitValidators(validate, translator)
	return note.NewLibrary(note.LibraryDeps{
		KV:         kv,
		Conf:       c,
		Logger:     NewLogger(t),
		Validate:   validate,
		Translator: translator,
	})
}

// NewConfig returns a TEST mode config using the in-memory medium.
func NewConfig() *core.Config {
	return &core.Config{
		AppName:  "Study Room",
		Env:      "TEST",
		TestMode: true,
		Notes: core.NotesConfig{
			MaxFileSize:  note.DefaultMaxFileSize,
			DateFormat:   note.DefaultDateFormat,
			EmptyMessage: note.DefaultEmptyMessage,
		},
		Storage: core.StorageConfig{Medium: core.MediumInMem},
	}
}

func CreateNote(t testing.TB, lib *note.Library, sess core.Session, title, subject, fileName string, data []byte) note.Note {
	t.Helper()
	n, err := lib.Store(sess).Create(context.Background(), note.NewNote{
		Title:    title,
		Subject:  subject,
		FileName: fileName,
		FileData: note.EncodeDataURL(fileName, data),
	})
	if err != nil {
		t.Fatalf("CreateNote() failed: %v", err)
	}
	return n
}
