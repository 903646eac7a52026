package note

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/trezcool/studyroom/core"
)

var (
	ada  = core.NewSession("Ada", "a@x.com")
	bob  = core.NewSession("Bob", "b@x.com")
	anon = core.NewSession("", "")
)

func TestStore_Create(t *testing.T) {
	lib := newTestLibrary(t, newTestKV(t, 0))
	store := lib.Store(ada)
	ctx := context.Background()

	tests := []struct {
		name        string
		data        NewNote
		wantErr     error
		wantTitle   string
		wantSubject string
	}{
		{name: "blank title", data: newTestNote("   ", "Math"), wantErr: ErrMissingTitle},
		{name: "no file name", data: NewNote{Title: "Midterm Prep", FileData: "data:,"}, wantErr: ErrNoFileSelected},
		{name: "no file data", data: NewNote{Title: "Midterm Prep", FileName: "notes.pdf"}, wantErr: ErrNoFileSelected},
		{name: "not a data URL", data: NewNote{Title: "Midterm Prep", FileName: "notes.pdf", FileData: "http://x.com/notes.pdf"}, wantErr: ErrNoFileSelected},
		{name: "text is trimmed", data: newTestNote(" Midterm Prep ", " Math "), wantTitle: "Midterm Prep", wantSubject: "Math"},
		{name: "angle brackets are kept", data: newTestNote("x<y", "<Lab>"), wantTitle: "x<y", wantSubject: "<Lab>"},
		{name: "bracketed title", data: newTestNote("<Vectors>", "Physics"), wantTitle: "<Vectors>", wantSubject: "Physics"},
		{name: "tag-like suffix", data: newTestNote("Ch.5 <Vectors>", "Q&A"), wantTitle: "Ch.5 <Vectors>", wantSubject: "Q&A"},
		{name: "no subject", data: newTestNote("Lab Report", ""), wantTitle: "Lab Report"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := store.List(ctx)
			n, err := store.Create(ctx, tt.data)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr), "Create() error = %v, wantErr %v", err, tt.wantErr)
				var vErr *core.ValidationError
				assert.True(t, errors.As(err, &vErr))
				assert.Equal(t, before, store.List(ctx))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantTitle, n.Title)
			assert.Equal(t, tt.wantSubject, n.Subject)

			after := store.List(ctx)
			require.Len(t, after, len(before)+1)
			assert.Equal(t, n, after[len(after)-1])
			for _, prev := range before {
				assert.Greater(t, n.ID, prev.ID)
			}
		})
	}

	assert.Len(t, store.List(ctx), 5)
	assert.Equal(t, []string{"x<y"}, titles(lib.Renderer(ada).Render(ctx, "<Lab>").Items))
	assert.Equal(t, []string{"Ch.5 <Vectors>"}, titles(lib.Renderer(ada).Render(ctx, "Q&A").Items))
}

func TestStore_Create_ids(t *testing.T) {
	defer func() { nowFunc = time.Now }()
	now := time.Date(2024, time.March, 5, 10, 0, 0, 0, time.UTC)
	nowFunc = func() time.Time { return now }

	store := newTestLibrary(t, newTestKV(t, 0)).Store(ada)

	n1 := mustCreate(t, store, "Midterm Prep", "Math")
	n2 := mustCreate(t, store, "Lab Report", "Physics")
	assert.Equal(t, now.UnixMilli(), n1.ID)
	assert.Equal(t, now.UnixMilli()+1, n2.ID, "same millisecond")
	assert.Equal(t, "3/5/2024", n1.Date)

	// clock going backwards
	now = now.Add(-time.Hour)
	n3 := mustCreate(t, store, "Quiz", "Math")
	assert.Equal(t, n2.ID+1, n3.ID)

	now = now.Add(2 * time.Hour)
	n4 := mustCreate(t, store, "Final", "Math")
	assert.Equal(t, now.UnixMilli(), n4.ID)
}

func TestStore_List(t *testing.T) {
	kv := newTestKV(t, 0)
	store := newTestLibrary(t, kv).Store(ada)
	ctx := context.Background()

	tests := []struct {
		name string
		raw  []byte // nil: absent
	}{
		{name: "absent"},
		{name: "not json", raw: []byte("{lol")},
		{name: "null", raw: []byte("null")},
		{name: "object", raw: []byte(`{"id": 1}`)},
		{name: "empty array", raw: []byte("[]")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, kv.Delete(ctx, store.Namespace()))
			if tt.raw != nil {
				require.NoError(t, kv.KVStore.Set(ctx, store.Namespace(), tt.raw))
			}
			notes := store.List(ctx)
			assert.NotNil(t, notes)
			assert.Empty(t, notes)
		})
	}

	t.Run("corrupt collection is replaced on create", func(t *testing.T) {
		require.NoError(t, kv.KVStore.Set(ctx, store.Namespace(), []byte("{lol")))
		n := mustCreate(t, store, "Midterm Prep", "Math")
		assert.Equal(t, []Note{n}, store.List(ctx))
	})
}

func TestStore_Get(t *testing.T) {
	store := newTestLibrary(t, newTestKV(t, 0)).Store(ada)
	ctx := context.Background()
	n := mustCreate(t, store, "Midterm Prep", "Math")

	got, err := store.Get(ctx, n.ID)
	require.NoError(t, err)
	assert.Equal(t, n, got)

	_, err = store.Get(ctx, n.ID+1)
	assert.Equal(t, ErrNotFound, err)
}

func TestStore_Delete(t *testing.T) {
	kv := newTestKV(t, 0)
	store := newTestLibrary(t, kv).Store(ada)
	ctx := context.Background()

	n1 := mustCreate(t, store, "Midterm Prep", "Math")
	n2 := mustCreate(t, store, "Lab Report", "Physics")

	t.Run("unknown id", func(t *testing.T) {
		before, err := kv.Get(ctx, store.Namespace())
		require.NoError(t, err)
		writes := kv.Writes()

		require.NoError(t, store.Delete(ctx, 42))

		after, err := kv.Get(ctx, store.Namespace())
		require.NoError(t, err)
		assert.Equal(t, before, after)
		assert.Equal(t, writes, kv.Writes())
	})

	t.Run("empty namespace", func(t *testing.T) {
		writes := kv.Writes()
		require.NoError(t, newTestLibrary(t, kv).Store(bob).Delete(ctx, n1.ID))
		assert.Equal(t, writes, kv.Writes())
	})

	t.Run("existing id", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, n1.ID))
		assert.Equal(t, []Note{n2}, store.List(ctx))
		_, err := store.Get(ctx, n1.ID)
		assert.Equal(t, ErrNotFound, err)
	})

	t.Run("last note", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, n2.ID))
		assert.Empty(t, store.List(ctx))
	})
}

func TestStore_quota(t *testing.T) {
	ctx := context.Background()
	first := newTestNote("Midterm Prep", "Math")

	// room for one note only
	kv := newTestKV(t, int64(len(ada.Namespace())+len(first.FileData)+200))
	store := newTestLibrary(t, kv).Store(ada)

	n := mustCreate(t, store, first.Title, first.Subject)
	before, err := kv.Get(ctx, store.Namespace())
	require.NoError(t, err)

	_, err = store.Create(ctx, newTestNote("Lab Report", "Physics"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrStorageQuotaExceeded), "Create() error = %v", err)

	after, err := kv.Get(ctx, store.Namespace())
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Equal(t, []Note{n}, store.List(ctx))

	// deleting frees space
	require.NoError(t, store.Delete(ctx, n.ID))
	mustCreate(t, store, "Lab Report", "Physics")
}

func TestStore_Usage(t *testing.T) {
	kv := newTestKV(t, 0)
	store := newTestLibrary(t, kv).Store(ada)
	ctx := context.Background()

	assert.Zero(t, store.Usage(ctx))
	mustCreate(t, store, "Midterm Prep", "Math")

	raw, err := kv.Get(ctx, store.Namespace())
	require.NoError(t, err)
	assert.Equal(t, int64(len(raw)), store.Usage(ctx))
}

func TestStore_namespaces(t *testing.T) {
	lib := newTestLibrary(t, newTestKV(t, 0))
	ctx := context.Background()

	assert.Equal(t, "study_notes_a@x.com", lib.Store(ada).Namespace())
	assert.Equal(t, "study_notes_guest_user", lib.Store(anon).Namespace())
	assert.Equal(t, "study_notes_a@x.com", lib.Store(core.NewSession("Ada", " A@X.com ")).Namespace())

	mustCreate(t, lib.Store(bob), "Bob's notes", "Math")
	bobNotes := lib.Store(bob).List(ctx)

	for i := 0; i < 5; i++ {
		mustCreate(t, lib.Store(ada), fmt.Sprintf("Note %d", i), "Math")
	}
	assert.Len(t, lib.Store(ada).List(ctx), 5)
	assert.Equal(t, bobNotes, lib.Store(bob).List(ctx))
	assert.Empty(t, lib.Store(anon).List(ctx))
}

func TestStore_concurrentCreate(t *testing.T) {
	lib := newTestLibrary(t, newTestKV(t, 0))
	ctx := context.Background()

	const n = 20
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		go func(i int) {
			_, err := lib.Store(ada).Create(ctx, newTestNote(fmt.Sprintf("Note %d", i), "Math"))
			errs <- err
		}(i)
	}
	for i := 0; i < n; i++ {
		require.NoError(t, <-errs)
	}

	notes := lib.Store(ada).List(ctx)
	require.Len(t, notes, n)
	for i := 1; i < len(notes); i++ {
		assert.Greater(t, notes[i].ID, notes[i-1].ID)
	}
}

func TestStore_properties(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		lib := newTestLibrary(t, newTestKV(t, 0))
		ctx := context.Background()
		sessions := []core.Session{ada, bob}

		steps := rapid.IntRange(1, 30).Draw(rt, "steps")
		for i := 0; i < steps; i++ {
			sess := sessions[rapid.IntRange(0, 1).Draw(rt, "session")]
			store := lib.Store(sess)
			other := lib.Store(sessions[0])
			if sess == sessions[0] {
				other = lib.Store(sessions[1])
			}
			otherBefore := other.List(ctx)
			before := store.List(ctx)

			if len(before) > 0 && rapid.Bool().Draw(rt, "delete") {
				id := before[rapid.IntRange(0, len(before)-1).Draw(rt, "index")].ID
				if err := store.Delete(ctx, id); err != nil {
					rt.Fatalf("Delete() failed: %v", err)
				}
				for _, n := range store.List(ctx) {
					if n.ID == id {
						rt.Fatalf("deleted note %d still listed", id)
					}
				}
				if got := len(store.List(ctx)); got != len(before)-1 {
					rt.Fatalf("len(List()) = %d, want %d", got, len(before)-1)
				}
			} else {
				title := rapid.StringMatching(`[A-Za-z][A-Za-z0-9 ]{0,20}[A-Za-z0-9]`).Draw(rt, "title")
				subject := rapid.SampledFrom([]string{"", "Math", "Physics"}).Draw(rt, "subject")
				n, err := store.Create(ctx, newTestNote(title, subject))
				if err != nil {
					rt.Fatalf("Create() failed: %v", err)
				}
				after := store.List(ctx)
				if len(after) != len(before)+1 || after[len(after)-1] != n {
					rt.Fatalf("List() after Create() = %v", after)
				}
				if n.Title != title || n.Subject != subject || n.FileName != "notes.pdf" {
					rt.Fatalf("Create() = %+v", n)
				}
				for _, prev := range before {
					if n.ID <= prev.ID {
						rt.Fatalf("id %d not greater than %d", n.ID, prev.ID)
					}
				}
			}

			if otherAfter := other.List(ctx); len(otherAfter) != len(otherBefore) {
				rt.Fatalf("namespace %s changed", other.Namespace())
			}
		}
	})
}
