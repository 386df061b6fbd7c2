package sessions

import (
	"context"
	"time"

	"github.com/Desarso/fleetassist/models"
)

// Model is the upstream generative backend. StreamChat yields text chunks in
// generation order; both channels are closed when the stream ends. At most one
// error is sent.
type Model interface {
	StreamChat(ctx context.Context, turn models.Turn) (<-chan string, <-chan error)
}

// ContextProvider returns free-text operational data relevant to a query.
type ContextProvider interface {
	RelevantContext(ctx context.Context, query string) (string, error)
}

// SSEWriter writes relay frames to the caller.
type SSEWriter interface {
	WriteFrame(content string) error
	WriteDone() error
	// Started reports whether any bytes of the event stream were committed.
	Started() bool
}

// ContextPolicy decides what happens when the context stage fails.
type ContextPolicy string

const (
	// ContextDegrade continues the turn with no real-time context.
	ContextDegrade ContextPolicy = "degrade"
	// ContextFail aborts the turn with an upstream error.
	ContextFail ContextPolicy = "fail"
)

// Context lookup outcomes reported in Result.
const (
	ContextStatusOK       = "ok"
	ContextStatusFailed   = "failed"
	ContextStatusDisabled = "disabled"
)

// Result summarises one relayed turn.
type Result struct {
	Frames        int
	ReplyChars    int
	ContextStatus string
	Duration      time.Duration
}
