package sessions

import (
	"context"
	"errors"
	"sync"

	"github.com/Desarso/fleetassist/models"
)

// fakeModel replays a fixed chunk sequence, optionally followed by an error.
type fakeModel struct {
	mu     sync.Mutex
	chunks []string
	err    error
	calls  int
	turn   models.Turn
}

func (f *fakeModel) StreamChat(ctx context.Context, turn models.Turn) (<-chan string, <-chan error) {
	f.mu.Lock()
	f.calls++
	f.turn = turn
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
	text    string
	err     error
	queries []string
}

func (f *fakeContext) RelevantContext(_ context.Context, query string) (string, error) {
	f.queries = append(f.queries, query)
	return f.text, f.err
}

// recordingWriter captures frames in memory.
type recordingWriter struct {
	frames  []string
	done    bool
	failOn  int
	written int
}

var errWriteFailed = errors.New("broken pipe")

func (w *recordingWriter) WriteFrame(content string) error {
	w.written++
	if w.failOn > 0 && w.written == w.failOn {
		return errWriteFailed
	}
	w.frames = append(w.frames, content)
	return nil
}

func (w *recordingWriter) WriteDone() error {
	w.written++
	w.done = true
	return nil
}

func (w *recordingWriter) Started() bool {
	return w.written > 0
}
