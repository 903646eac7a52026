package note

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/studyroom/core"
)

// State of an upload Pipeline.
//
//	Idle -> Validating -> Rejected -> Idle
//	                   -> Encoding -> Created -> Idle
//	                               -> Idle (failure)
type State int

const (
	StateIdle State = iota
	StateValidating
	StateRejected
	StateEncoding
	StateCreated
)

var stateNames = [...]string{"idle", "validating", "rejected", "encoding", "created"}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[int(s)]
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Surface is the presentation surface an upload is submitted from.
// After a successful upload the file input is reset, then the surface is closed.
type Surface interface {
	ResetInput()
	Close()
}

type nopSurface struct{}

func (nopSurface) ResetInput() {}
func (nopSurface) Close()      {}

// Result is the outcome of an upload's encoding step.
type Result struct {
	Note Note
	Err  error
}

// Pipeline validates and encodes one upload at a time, then hands it to its Store.
type Pipeline struct {
	store    *Store
	surface  Surface
	validate *validator.Validate
	maxSize  int64
	logger   core.Logger

	mu        sync.Mutex
	state     State
	observers []func(State)
}

func (p *Pipeline) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// OnStateChange registers fn to be called on every state transition.
func (p *Pipeline) OnStateChange(fn func(State)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.observers = append(p.observers, fn)
}

func (p *Pipeline) setState(s State) {
	p.mu.Lock()
	p.state = s
	observers := p.observers
	p.mu.Unlock()
	notify(observers, s)
}

func notify(observers []func(State), s State) {
	for _, fn := range observers {
		fn(s)
	}
}

// Submit validates `up` synchronously and starts encoding it.
// Validation errors and ErrUploadInProgress are returned directly; otherwise the returned channel
// receives exactly one Result and is closed. Encoding is not cancelled when ctx is.
func (p *Pipeline) Submit(ctx context.Context, up Upload) (<-chan Result, error) {
	p.mu.Lock()
	if p.state != StateIdle {
		p.mu.Unlock()
		return nil, core.NewValidationError(ErrUploadInProgress, core.FieldError{Field: "file", Error: MsgUploadInProgress})
	}
	p.state = StateValidating
	observers := p.observers
	p.mu.Unlock()
	notify(observers, StateValidating)

	if err := up.Validate(p.validate, p.maxSize); err != nil {
		p.setState(StateRejected)
		p.setState(StateIdle)
		return nil, err
	}

	p.setState(StateEncoding)
	results := make(chan Result, 1)
	go p.encode(context.WithoutCancel(ctx), up, results)
	return results, nil
}

func (p *Pipeline) encode(ctx context.Context, up Upload, results chan<- Result) {
	defer close(results)

	n, err := p.create(ctx, up)
	if err != nil {
		p.logger.Debug("upload failed", err, p.store.Session())
		p.setState(StateIdle)
		results <- Result{Err: err}
		return
	}

	p.setState(StateCreated)
	p.surface.ResetInput()
	p.surface.Close()
	p.setState(StateIdle)
	results <- Result{Note: n}
}

func (p *Pipeline) create(ctx context.Context, up Upload) (Note, error) {
	data, err := readFile(up.File, p.maxSize)
	if err != nil {
		return Note{}, err
	}
	return p.store.Create(ctx, NewNote{
		Title:    up.Title,
		Subject:  up.Subject,
		FileName: up.File.Name(),
		FileData: EncodeDataURL(up.File.Name(), data),
	})
}

// readFile reads at most maxSize bytes; a file holding more than its declared size is still rejected.
func readFile(f File, maxSize int64) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", f.Name())
	}
	defer func() { _ = rc.Close() }()

	data, err := io.ReadAll(io.LimitReader(rc, maxSize+1))
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", f.Name())
	}
	if int64(len(data)) > maxSize {
		return nil, fileTooLarge(maxSize)
	}
	return data, nil
}
