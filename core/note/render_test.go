package note

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/studyroom/core"
)

func titles(items []Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Title)
	}
	return out
}

func TestProject(t *testing.T) {
	notes := []Note{
		{ID: 1, Title: "Midterm Prep", Subject: "Math", FileData: EncodeDataURL("a.pdf", []byte("12345"))},
		{ID: 2, Title: "Lab Report", Subject: "Physics"},
		{ID: 3, Title: "Quiz", Subject: "Math"},
		{ID: 4, Title: "Misc"},
	}

	tests := []struct {
		name   string
		filter string
		want   []string
	}{
		{name: "all", filter: FilterAll, want: []string{"Midterm Prep", "Lab Report", "Quiz", "Misc"}},
		{name: "empty filter", filter: "", want: []string{"Midterm Prep", "Lab Report", "Quiz", "Misc"}},
		{name: "subject", filter: "Math", want: []string{"Midterm Prep", "Quiz"}},
		{name: "padded subject", filter: " Physics ", want: []string{"Lab Report"}},
		{name: "subjects are case sensitive", filter: "math", want: []string{}},
		{name: "unknown subject", filter: "History", want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, titles(Project(notes, tt.filter)))
		})
	}

	t.Run("items", func(t *testing.T) {
		it := Project(notes, FilterAll)[0]
		assert.Equal(t, "5 B", it.FileSize)
		assert.Equal(t, []Action{{Kind: ActionView, NoteID: 1}, {Kind: ActionDelete, NoteID: 1}}, it.Actions)
		assert.Equal(t, "0 B", Project(notes, FilterAll)[1].FileSize)
	})
}

func TestSubjects(t *testing.T) {
	notes := []Note{{Subject: "Math"}, {Subject: ""}, {Subject: "Physics"}, {Subject: "Math"}}
	assert.Equal(t, []string{"Math", "Physics"}, Subjects(notes))
	assert.Equal(t, []string{}, Subjects(nil))
}

func TestRenderer_Render(t *testing.T) {
	lib := newTestLibrary(t, newTestKV(t, 0))
	ctx := context.Background()

	t.Run("empty", func(t *testing.T) {
		v := lib.Renderer(ada).Render(ctx, FilterAll)
		assert.True(t, v.Empty)
		assert.Equal(t, DefaultEmptyMessage, v.EmptyMessage)
		assert.Empty(t, v.Items)
		assert.Equal(t, "Library for: Ada", v.Owner)
		assert.Equal(t, "0 B", v.Usage)
	})

	// a@x.com creates "Midterm Prep" (Math) then "Lab Report" (Physics)
	store := lib.Store(ada)
	midterm := mustCreate(t, store, "Midterm Prep", "Math")
	mustCreate(t, store, "Lab Report", "Physics")
	r := lib.Renderer(ada)

	t.Run("filtered", func(t *testing.T) {
		v := r.Render(ctx, "Math")
		assert.Equal(t, []string{"Midterm Prep"}, titles(v.Items))
		assert.Equal(t, "Math", v.Filter)
		assert.Equal(t, []string{"Math", "Physics"}, v.Subjects)
		assert.False(t, v.Empty)
	})

	t.Run("all", func(t *testing.T) {
		assert.Equal(t, []string{"Midterm Prep", "Lab Report"}, titles(r.Render(ctx, FilterAll).Items))
	})

	t.Run("no match", func(t *testing.T) {
		v := r.Render(ctx, "History")
		assert.True(t, v.Empty)
		assert.Equal(t, DefaultEmptyMessage, v.EmptyMessage)
	})

	t.Run("after delete", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, midterm.ID))
		assert.Equal(t, []string{"Lab Report"}, titles(r.Render(ctx, FilterAll).Items))
	})

	t.Run("render does not write", func(t *testing.T) {
		kv := newTestKV(t, 0)
		rl := newTestLibrary(t, kv)
		mustCreate(t, rl.Store(bob), "Quiz", "Math")
		writes := kv.Writes()
		rl.Renderer(bob).Render(ctx, FilterAll)
		rl.Renderer(bob).Render(ctx, "Math")
		assert.Equal(t, writes, kv.Writes())
	})

	t.Run("custom empty message", func(t *testing.T) {
		v := NewRenderer(lib.Store(anon), "Nothing here").Render(ctx, "")
		assert.Equal(t, "Nothing here", v.EmptyMessage)
		assert.Equal(t, FilterAll, v.Filter)
	})
}

func TestRenderer_Open(t *testing.T) {
	lib := newTestLibrary(t, newTestKV(t, 0))
	ctx := context.Background()
	n := mustCreate(t, lib.Store(ada), "<b>Midterm</b>", "Math")

	doc, ok, err := lib.Renderer(ada).Open(ctx, n.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, n.ID, doc.NoteID)
	assert.Contains(t, doc.HTML, "<title>&lt;b&gt;Midterm&lt;/b&gt;</title>")
	assert.Contains(t, doc.HTML, `src="`+n.FileData+`"`)
	assert.Equal(t, 1, strings.Count(doc.HTML, "<iframe"))

	t.Run("missing", func(t *testing.T) {
		_, ok, err := lib.Renderer(ada).Open(ctx, n.ID+1)
		assert.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("other namespace", func(t *testing.T) {
		_, ok, err := lib.Renderer(core.NewSession("Bob", "b@x.com")).Open(ctx, n.ID)
		assert.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestNewDocument(t *testing.T) {
	tests := []struct {
		name    string
		note    Note
		wantSrc string
		want    string
	}{
		{name: "data URL", note: Note{Title: "Lab", FileData: "data:application/pdf;base64,JVBERg=="}, wantSrc: `src="data:application/pdf;base64,JVBERg=="`},
		{name: "not a data URL", note: Note{Title: "Lab", FileData: "javascript:alert(1)"}, wantSrc: `src="about:blank"`},
		{name: "escaped title", note: Note{Title: `Q&A "1"`, FileData: "data:,"}, want: "<title>Q&amp;A &#34;1&#34;</title>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := NewDocument(tt.note)
			require.NoError(t, err)
			if tt.wantSrc != "" {
				assert.Contains(t, doc.HTML, tt.wantSrc)
			}
			if tt.want != "" {
				assert.Contains(t, doc.HTML, tt.want)
			}
		})
	}
}
