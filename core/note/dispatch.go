package note

import (
	"context"

	"github.com/pkg/errors"
)

// Handler handles one kind of Action for the note with the given id.
type Handler func(ctx context.Context, id int64) error

// Dispatcher routes rendered actions to their handlers by kind.
type Dispatcher struct {
	handlers map[ActionKind]Handler
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[ActionKind]Handler)}
}

// Handle registers h for kind, replacing any previous handler.
func (d *Dispatcher) Handle(kind ActionKind, h Handler) {
	d.handlers[kind] = h
}

func (d *Dispatcher) Dispatch(ctx context.Context, a Action) error {
	h, ok := d.handlers[a.Kind]
	if !ok {
		return errors.Wrapf(ErrUnknownAction, "%q", a.Kind)
	}
	return h(ctx, a.NoteID)
}
