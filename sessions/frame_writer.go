package sessions

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Desarso/fleetassist/models"
)

// FrameWriter implements SSEWriter over an http.ResponseWriter. Headers are
// committed with the first frame, so a failure before that point can still be
// answered with a plain JSON error.
type FrameWriter struct {
	w       http.ResponseWriter
	started bool
	frames  int
}

// NewFrameWriter wraps w. Flushing is used when w supports it.
func NewFrameWriter(w http.ResponseWriter) *FrameWriter {
	return &FrameWriter{w: w}
}

// PrepareSSE sets the event stream headers on h.
func PrepareSSE(h http.Header) {
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
}

func (f *FrameWriter) WriteFrame(content string) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(models.Frame{Content: content}); err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}
	if err := f.writeEvent(bytes.TrimRight(buf.Bytes(), "\n")); err != nil {
		return err
	}
	f.frames++
	return nil
}

func (f *FrameWriter) WriteDone() error {
	return f.writeEvent([]byte(models.DoneSentinel))
}

func (f *FrameWriter) Started() bool {
	return f.started
}

// Frames returns the number of content frames written so far.
func (f *FrameWriter) Frames() int {
	return f.frames
}

func (f *FrameWriter) writeEvent(data []byte) error {
	if !f.started {
		PrepareSSE(f.w.Header())
		f.w.WriteHeader(http.StatusOK)
		f.started = true
	}
	if _, err := fmt.Fprintf(f.w, "data: %s\n\n", data); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	if fl, ok := f.w.(http.Flusher); ok {
		fl.Flush()
	}
	return nil
}

// Abort tears down an event stream whose headers are already committed. The
// connection is hijacked and closed so the client sees a truncated stream
// rather than a well-formed end. When hijacking is unavailable the handler is
// aborted with http.ErrAbortHandler, which net/http treats the same way.
func (f *FrameWriter) Abort() {
	if hj, ok := f.w.(http.Hijacker); ok {
		if conn, _, err := hj.Hijack(); err == nil {
			conn.Close()
			return
		}
	}
	panic(http.ErrAbortHandler)
}
