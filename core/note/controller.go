package note

import (
	"context"
	"sync"

	"github.com/pkg/errors"
)

const DeletePrompt = "Delete this note?"

type (
	// Container receives every View the Controller renders.
	Container interface {
		Replace(v View)
	}

	// Display shows an opened note.
	Display interface {
		Show(doc Document)
	}

	// Confirmer asks the user to confirm a destructive action.
	Confirmer interface {
		Confirm(prompt string) bool
	}

	ConfirmFunc func(prompt string) bool
)

func (f ConfirmFunc) Confirm(prompt string) bool { return f(prompt) }

type ControllerDeps struct {
	Store     *Store
	Renderer  *Renderer
	Pipeline  *Pipeline
	Container Container
	Display   Display
	Confirmer Confirmer
}

// Controller wires one session's Store, Renderer and Pipeline to its page.
// Every mutation re-renders the Container with the current filter.
type Controller struct {
	deps       ControllerDeps
	dispatcher *Dispatcher

	mu     sync.Mutex
	filter string
}

func NewController(deps ControllerDeps) *Controller {
	c := &Controller{
		deps:       deps,
		dispatcher: NewDispatcher(),
		filter:     FilterAll,
	}
	c.dispatcher.Handle(ActionView, c.view)
	c.dispatcher.Handle(ActionDelete, c.delete)
	return c
}

// NewController returns a Controller for the session, uploading through a new Pipeline bound to `surface`.
func (lib *Library) NewController(store *Store, surface Surface, container Container, display Display, confirmer Confirmer) *Controller {
	return NewController(ControllerDeps{
		Store:     store,
		Renderer:  NewRenderer(store, lib.deps.Conf.EmptyMessage),
		Pipeline:  lib.NewPipeline(store.Session(), surface),
		Container: container,
		Display:   display,
		Confirmer: confirmer,
	})
}

func (c *Controller) currentFilter() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filter
}

// Refresh re-renders the Container with the current filter.
func (c *Controller) Refresh(ctx context.Context) View {
	v := c.deps.Renderer.Render(ctx, c.currentFilter())
	if c.deps.Container != nil {
		c.deps.Container.Replace(v)
	}
	return v
}

// Filter switches the subject filter and re-renders.
func (c *Controller) Filter(ctx context.Context, subject string) View {
	c.mu.Lock()
	c.filter = CleanFilter(subject)
	c.mu.Unlock()
	return c.Refresh(ctx)
}

func (c *Controller) Dispatch(ctx context.Context, a Action) error {
	return c.dispatcher.Dispatch(ctx, a)
}

// Upload submits `up`; once the note is created the Container is re-rendered before the Result is delivered.
func (c *Controller) Upload(ctx context.Context, up Upload) (<-chan Result, error) {
	results, err := c.deps.Pipeline.Submit(ctx, up)
	if err != nil {
		return nil, err
	}

	out := make(chan Result, 1)
	go func() {
		defer close(out)
		res := <-results
		if res.Err == nil {
			c.Refresh(context.WithoutCancel(ctx))
		}
		out <- res
	}()
	return out, nil
}

func (c *Controller) view(ctx context.Context, id int64) error {
	doc, ok, err := c.deps.Renderer.Open(ctx, id)
	if err != nil {
		return errors.Wrap(err, "opening note")
	}
	if ok && c.deps.Display != nil {
		c.deps.Display.Show(doc)
	}
	return nil
}

func (c *Controller) delete(ctx context.Context, id int64) error {
	if c.deps.Confirmer == nil || !c.deps.Confirmer.Confirm(DeletePrompt) {
		return nil
	}
	if err := c.deps.Store.Delete(ctx, id); err != nil {
		return errors.Wrap(err, "deleting note")
	}
	c.Refresh(ctx)
	return nil
}
