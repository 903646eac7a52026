package note

import (
	"context"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type page struct {
	mu    sync.Mutex
	views []View
	docs  []Document
}

func (p *page) Replace(v View) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.views = append(p.views, v)
}

func (p *page) Show(doc Document) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.docs = append(p.docs, doc)
}

func (p *page) last() View {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.views[len(p.views)-1]
}

func TestDispatcher_Dispatch(t *testing.T) {
	d := NewDispatcher()
	var got []Action
	d.Handle(ActionView, func(_ context.Context, id int64) error {
		got = append(got, Action{Kind: ActionView, NoteID: id})
		return nil
	})
	errBoom := errors.New("boom")
	d.Handle(ActionDelete, func(_ context.Context, id int64) error { return errBoom })

	tests := []struct {
		name    string
		action  Action
		wantErr error
	}{
		{name: "view", action: Action{Kind: ActionView, NoteID: 7}},
		{name: "handler error", action: Action{Kind: ActionDelete, NoteID: 7}, wantErr: errBoom},
		{name: "unknown kind", action: Action{Kind: "share", NoteID: 7}, wantErr: ErrUnknownAction},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := d.Dispatch(context.Background(), tt.action)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "Dispatch() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
	assert.Equal(t, []Action{{Kind: ActionView, NoteID: 7}}, got)
}

func TestController(t *testing.T) {
	lib := newTestLibrary(t, newTestKV(t, 0))
	ctx := context.Background()
	store := lib.Store(ada)

	p := new(page)
	var prompts []string
	confirm := false
	c := lib.NewController(store, nil, p, p, ConfirmFunc(func(prompt string) bool {
		prompts = append(prompts, prompt)
		return confirm
	}))

	v := c.Refresh(ctx)
	assert.True(t, v.Empty)
	assert.Equal(t, v, p.last())

	upload := func(title, subject string) Note {
		results, err := c.Upload(ctx, Upload{Title: title, Subject: subject, File: NewBytesFile("notes.pdf", []byte("%PDF"))})
		require.NoError(t, err)
		res := <-results
		require.NoError(t, res.Err)
		return res.Note
	}
	midterm := upload("Midterm Prep", "Math")
	assert.Equal(t, []string{"Midterm Prep"}, titles(p.last().Items), "re-rendered after upload")
	lab := upload("Lab Report", "Physics")

	t.Run("filter", func(t *testing.T) {
		v := c.Filter(ctx, "Math")
		assert.Equal(t, []string{"Midterm Prep"}, titles(v.Items))
		assert.Equal(t, v, p.last())
	})

	t.Run("upload keeps filter", func(t *testing.T) {
		quiz := upload("Quiz", "Physics")
		assert.Equal(t, []string{"Midterm Prep"}, titles(p.last().Items))
		require.NoError(t, store.Delete(ctx, quiz.ID))
		c.Filter(ctx, FilterAll)
	})

	t.Run("view", func(t *testing.T) {
		require.NoError(t, c.Dispatch(ctx, Action{Kind: ActionView, NoteID: lab.ID}))
		require.Len(t, p.docs, 1)
		assert.Equal(t, lab.ID, p.docs[0].NoteID)

		// missing note is a silent no-op
		require.NoError(t, c.Dispatch(ctx, Action{Kind: ActionView, NoteID: 42}))
		assert.Len(t, p.docs, 1)
	})

	t.Run("delete declined", func(t *testing.T) {
		renders := len(p.views)
		require.NoError(t, c.Dispatch(ctx, Action{Kind: ActionDelete, NoteID: midterm.ID}))
		assert.Equal(t, []string{DeletePrompt}, prompts)
		assert.Len(t, store.List(ctx), 2)
		assert.Len(t, p.views, renders)
	})

	t.Run("delete confirmed", func(t *testing.T) {
		confirm = true
		require.NoError(t, c.Dispatch(ctx, Action{Kind: ActionDelete, NoteID: midterm.ID}))
		assert.Equal(t, []string{DeletePrompt, DeletePrompt}, prompts)
		assert.Equal(t, []string{"Lab Report"}, titles(p.last().Items))
		assert.Equal(t, []Note{lab}, store.List(ctx))
	})

	t.Run("unknown action", func(t *testing.T) {
		err := c.Dispatch(ctx, Action{Kind: "share", NoteID: lab.ID})
		assert.True(t, errors.Is(err, ErrUnknownAction))
	})

	t.Run("no confirmer never deletes", func(t *testing.T) {
		c := lib.NewController(store, nil, nil, nil, nil)
		require.NoError(t, c.Dispatch(ctx, Action{Kind: ActionDelete, NoteID: lab.ID}))
		assert.Len(t, store.List(ctx), 1)
	})
}
