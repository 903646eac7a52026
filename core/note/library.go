package note

import (
	"sync"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/studyroom/core"
)

type (
	LibraryDeps struct {
		KV         core.KVStore
		Conf       core.NotesConfig
		Logger     core.Logger
		Validate   *validator.Validate
		Translator ut.Translator
	}

	// Library hands out the Store, Renderer and Pipeline of each namespace.
	// Stores of the same namespace share a lock; each namespace has a single shared Pipeline.
	Library struct {
		deps LibraryDeps

		mu        sync.Mutex
		locks     map[string]*sync.Mutex
		pipelines map[string]*Pipeline
	}
)

func NewLibrary(deps LibraryDeps) *Library {
	if deps.Conf.MaxFileSize <= 0 {
		deps.Conf.MaxFileSize = DefaultMaxFileSize
	}
	if deps.Conf.DateFormat == "" {
		deps.Conf.DateFormat = DefaultDateFormat
	}
	if deps.Conf.EmptyMessage == "" {
		deps.Conf.EmptyMessage = DefaultEmptyMessage
	}
	return &Library{
		deps:      deps,
		locks:     make(map[string]*sync.Mutex),
		pipelines: make(map[string]*Pipeline),
	}
}

func (lib *Library) Conf() core.NotesConfig { return lib.deps.Conf }

func (lib *Library) lock(ns string) *sync.Mutex {
	lib.mu.Lock()
	defer lib.mu.Unlock()

	mu, ok := lib.locks[ns]
	if !ok {
		mu = new(sync.Mutex)
		lib.locks[ns] = mu
	}
	return mu
}

// Store returns the note store of the session's namespace.
func (lib *Library) Store(sess core.Session) *Store {
	ns := sess.Namespace()
	return &Store{
		kv:         lib.deps.KV,
		sess:       sess,
		key:        ns,
		dateFormat: lib.deps.Conf.DateFormat,
		validate:   lib.deps.Validate,
		translator: lib.deps.Translator,
		logger:     lib.deps.Logger,
		mu:         lib.lock(ns),
	}
}

func (lib *Library) Renderer(sess core.Session) *Renderer {
	return NewRenderer(lib.Store(sess), lib.deps.Conf.EmptyMessage)
}

// Pipeline returns the namespace's shared upload pipeline, which has no presentation surface.
func (lib *Library) Pipeline(sess core.Session) *Pipeline {
	ns := sess.Namespace()

	lib.mu.Lock()
	p, ok := lib.pipelines[ns]
	lib.mu.Unlock()
	if ok {
		return p
	}

	p = lib.NewPipeline(sess, nil)
	lib.mu.Lock()
	defer lib.mu.Unlock()
	if existing, ok := lib.pipelines[ns]; ok {
		return existing
	}
	lib.pipelines[ns] = p
	return p
}

// NewPipeline returns a new upload pipeline bound to `surface` (may be nil).
func (lib *Library) NewPipeline(sess core.Session, surface Surface) *Pipeline {
	if surface == nil {
		surface = nopSurface{}
	}
	return &Pipeline{
		store:    lib.Store(sess),
		surface:  surface,
		validate: lib.deps.Validate,
		maxSize:  lib.deps.Conf.MaxFileSize,
		logger:   lib.deps.Logger,
	}
}
