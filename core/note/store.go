package note

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/studyroom/core"
)

var nowFunc = time.Now // mockable

// Store owns the note collection of a single namespace.
type Store struct {
	kv         core.KVStore
	sess       core.Session
	key        string
	dateFormat string
	validate   *validator.Validate
	translator ut.Translator
	logger     core.Logger
	mu         *sync.Mutex // shared by every Store of the same namespace
}

// snapshot is the collection as last persisted.
type snapshot struct {
	notes []Note
	size  int64 // raw persisted bytes
}

func (s *Store) Session() core.Session { return s.sess }

func (s *Store) Namespace() string { return s.key }

// load reads the persisted collection.
// Absent and unparsable values both read as an empty collection; medium failures are returned.
func (s *Store) load(ctx context.Context) (snapshot, error) {
	raw, err := s.kv.Get(ctx, s.key)
	if err != nil {
		if errors.Is(err, core.ErrKeyNotFound) {
			return snapshot{notes: []Note{}}, nil
		}
		return snapshot{}, errors.Wrapf(err, "reading %s", s.key)
	}

	notes := make([]Note, 0)
	if err = json.Unmarshal(raw, &notes); err != nil || notes == nil {
		s.logger.Warn("discarding unparsable note collection", errors.Wrapf(err, "parsing %s", s.key), s.sess)
		return snapshot{notes: []Note{}, size: int64(len(raw))}, nil
	}
	return snapshot{notes: notes, size: int64(len(raw))}, nil
}

func (s *Store) save(ctx context.Context, notes []Note) error {
	raw, err := json.Marshal(notes)
	if err != nil {
		return errors.Wrap(err, "encoding notes")
	}
	if err = s.kv.Set(ctx, s.key, raw); err != nil {
		if errors.Is(err, core.ErrQuotaExceeded) {
			return errors.Wrapf(ErrStorageQuotaExceeded, "saving %d notes (%s)", len(notes), humanize.Bytes(uint64(len(raw))))
		}
		return errors.Wrapf(err, "writing %s", s.key)
	}
	return nil
}

func (s *Store) snapshot(ctx context.Context) snapshot {
	snap, err := s.load(ctx)
	if err != nil {
		s.logger.Error("listing notes", err, s.sess)
		return snapshot{notes: []Note{}}
	}
	return snap
}

// List returns the namespace's notes in creation order. It never fails: read errors degrade to an empty list.
func (s *Store) List(ctx context.Context) []Note {
	return s.snapshot(ctx).notes
}

// Usage returns the number of bytes persisted for the namespace.
func (s *Store) Usage(ctx context.Context) int64 {
	return s.snapshot(ctx).size
}

func (s *Store) Get(ctx context.Context, id int64) (Note, error) {
	for _, n := range s.List(ctx) {
		if n.ID == id {
			return n, nil
		}
	}
	return Note{}, ErrNotFound
}

// Create appends a new Note and persists the whole collection.
// On ErrStorageQuotaExceeded the previously persisted collection is left untouched.
func (s *Store) Create(ctx context.Context, nn NewNote) (Note, error) {
	if err := nn.Validate(s.validate, s.translator); err != nil {
		return Note{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.load(ctx)
	if err != nil {
		return Note{}, err
	}

	now := nowFunc()
	n := Note{
		ID:       nextID(snap.notes, now),
		Title:    nn.Title,
		Subject:  nn.Subject,
		FileName: nn.FileName,
		FileData: nn.FileData,
		Date:     now.Format(s.dateFormat),
	}
	if err = s.save(ctx, append(snap.notes, n)); err != nil {
		return Note{}, err
	}
	return n, nil
}

// Delete removes the note with the given id. Deleting an unknown id is a no-op and writes nothing.
func (s *Store) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.load(ctx)
	if err != nil {
		return err
	}

	kept := make([]Note, 0, len(snap.notes))
	for _, n := range snap.notes {
		if n.ID != id {
			kept = append(kept, n)
		}
	}
	if len(kept) == len(snap.notes) {
		return nil
	}
	return s.save(ctx, kept)
}

// nextID returns the creation timestamp in ms, bumped past every existing id.
func nextID(notes []Note, now time.Time) int64 {
	id := now.UnixMilli()
	for _, n := range notes {
		if n.ID >= id {
			id = n.ID + 1
		}
	}
	return id
}
