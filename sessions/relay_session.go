package sessions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Desarso/fleetassist/models"
	"github.com/rs/zerolog"
)

// RelaySession relays one chat turn from the caller to the model and back.
// A session is request scoped and must not be shared between requests.
type RelaySession struct {
	RequestID     string
	Model         Model
	Context       ContextProvider
	ContextPolicy ContextPolicy
	Logger        zerolog.Logger
}

// Prepare splits the request into prompt and history, runs the context stage
// and composes the system instruction.
func (s *RelaySession) Prepare(ctx context.Context, req models.ChatRequest) (models.Turn, string, error) {
	if err := req.Validate(); err != nil {
		return models.Turn{}, "", models.InvalidInput(err)
	}
	prompt, history, err := SplitTurn(req.Messages)
	if err != nil {
		return models.Turn{}, "", models.InvalidInput(err)
	}

	status := ContextStatusDisabled
	var realtime string
	if s.Context != nil {
		realtime, err = s.Context.RelevantContext(ctx, prompt)
		if err != nil {
			if s.ContextPolicy == ContextFail {
				return models.Turn{}, ContextStatusFailed, models.UpstreamError(fmt.Errorf("context lookup: %w", err))
			}
			s.Logger.Warn().Err(err).Msg("context lookup failed, continuing without real-time data")
			realtime = ""
			status = ContextStatusFailed
		} else {
			status = ContextStatusOK
		}
	}

	return models.Turn{
		Prompt:            prompt,
		History:           history,
		SystemInstruction: BuildSystemInstruction(req.Context, realtime),
	}, status, nil
}

// Stream opens the upstream stream for turn and writes one frame per
// non-empty chunk, followed by the done sentinel. Errors after the first frame
// are reported as transport errors.
func (s *RelaySession) Stream(ctx context.Context, turn models.Turn, w SSEWriter) (Result, error) {
	var res Result
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	chunks, errs := s.Model.StreamChat(ctx, turn)

	fail := func(err error) (Result, error) {
		if w.Started() {
			return res, models.TransportError(err)
		}
		return res, models.UpstreamError(err)
	}

	for chunks != nil || errs != nil {
		select {
		case chunk, ok := <-chunks:
			if !ok {
				chunks = nil
				continue
			}
			if chunk == "" {
				continue
			}
			if err := w.WriteFrame(chunk); err != nil {
				return res, models.TransportError(err)
			}
			res.Frames++
			res.ReplyChars += len([]rune(chunk))

		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			if err != nil {
				return fail(fmt.Errorf("model stream: %w", err))
			}

		case <-ctx.Done():
			return fail(ctx.Err())
		}
	}

	if err := ctx.Err(); err != nil {
		return fail(err)
	}
	if err := w.WriteDone(); err != nil {
		return res, models.TransportError(err)
	}
	return res, nil
}

// Run prepares and streams a turn.
func (s *RelaySession) Run(ctx context.Context, req models.ChatRequest, w SSEWriter) (Result, error) {
	start := time.Now()
	turn, status, err := s.Prepare(ctx, req)
	if err != nil {
		return Result{ContextStatus: status, Duration: time.Since(start)}, err
	}
	s.Logger.Debug().
		Int("history", len(turn.History)).
		Str("context_status", status).
		Msg("turn prepared")

	res, err := s.Stream(ctx, turn, w)
	res.ContextStatus = status
	res.Duration = time.Since(start)
	if err != nil {
		return res, err
	}
	s.Logger.Info().
		Int("frames", res.Frames).
		Int("reply_chars", res.ReplyChars).
		Dur("duration", res.Duration).
		Msg("turn relayed")
	return res, nil
}

// IsCanceled reports whether err wraps a context cancellation or deadline.
// On its own it does not tell a caller disconnect from an upstream timeout.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
