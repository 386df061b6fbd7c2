package server

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Desarso/fleetassist/models"
	"github.com/Desarso/fleetassist/stores"
)

type fakeModel struct {
	mu     sync.Mutex
	chunks []string
	err    error
	calls  int
}

func (f *fakeModel) StreamChat(ctx context.Context, _ models.Turn) (<-chan string, <-chan error) {
	f.mu.Lock()
	f.calls++
	chunks, failWith := f.chunks, f.err
	f.mu.Unlock()

	out := make(chan string)
	errs := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errs)
		for _, c := range chunks {
			select {
			case out <- c:
			case <-ctx.Done():
				errs <- ctx.Err()
				return
			}
		}
		if failWith != nil {
			errs <- failWith
		}
	}()
	return out, errs
}

func (f *fakeModel) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeContext struct {
	mu    sync.Mutex
	text  string
	err   error
	calls int
}

func (f *fakeContext) RelevantContext(context.Context, string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.text, f.err
}

func (f *fakeContext) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeTurns struct {
	mu    sync.Mutex
	turns []stores.ChatTurn
}

func (f *fakeTurns) SaveTurn(_ context.Context, turn *stores.ChatTurn) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.turns = append(f.turns, *turn)
	return nil
}

func (f *fakeTurns) PurgeTurnsBefore(context.Context, time.Time) (int64, error) {
	return 0, nil
}

func (f *fakeTurns) Saved() []stores.ChatTurn {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]stores.ChatTurn(nil), f.turns...)
}

type fakePinger struct{ err error }

func (p fakePinger) Ping() error { return p.err }

var errStoreDown = errors.New("store down")
