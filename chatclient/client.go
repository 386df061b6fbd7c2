package chatclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Desarso/fleetassist/models"
	"github.com/go-resty/resty/v2"
	"github.com/tmaxmax/go-sse"
)

// ErrIncompleteStream is returned when the event stream ends without the
// done sentinel.
var ErrIncompleteStream = errors.New("event stream ended before [DONE]")

// StatusError is returned for non-2xx relay responses. Message carries the
// relay's error text for logging; it is never shown to users.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("relay responded %d: %s", e.Code, e.Message)
}

// Transport sends a conversation to the relay and returns the full reply.
// onDelta, when non-nil, receives each content chunk as it arrives.
type Transport interface {
	Send(ctx context.Context, conversation []models.Message, onDelta func(string)) (string, error)
}

// Client is the HTTP Transport for POST /api/chat.
type Client struct {
	http     *resty.Client
	endpoint string
	context  string
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout bounds a whole turn, stream included.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.SetTimeout(d) }
}

// WithPageContext sets free text sent as the request's context field on
// every turn, e.g. what the dashboard page is currently showing.
func WithPageContext(text string) Option {
	return func(c *Client) { c.context = text }
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = resty.NewWithClient(hc).SetBaseURL(c.http.BaseURL).SetHeader("User-Agent", userAgent)
	}
}

const userAgent = "fleetassist-chatclient/1.0"

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		http: resty.New().
			SetBaseURL(strings.TrimRight(baseURL, "/")).
			SetHeader("User-Agent", userAgent).
			SetTimeout(2 * time.Minute),
		endpoint: "/api/chat",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Send(ctx context.Context, conversation []models.Message, onDelta func(string)) (string, error) {
	body, err := models.ChatRequestFromConversation(conversation, c.context)
	if err != nil {
		return "", fmt.Errorf("build chat request: %w", err)
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "text/event-stream").
		SetBody(body).
		SetDoNotParseResponse(true).
		Post(c.endpoint)
	if err != nil {
		return "", fmt.Errorf("chat request failed: %w", err)
	}
	raw := resp.RawBody()
	defer raw.Close()

	if resp.StatusCode() != http.StatusOK {
		return "", statusError(resp.StatusCode(), raw)
	}
	return ReadStream(raw, onDelta)
}

func statusError(code int, body io.Reader) error {
	var payload models.ErrorResponse
	data, _ := io.ReadAll(io.LimitReader(body, 4096))
	if err := json.Unmarshal(data, &payload); err != nil || payload.Error == "" {
		payload.Error = strings.TrimSpace(string(data))
	}
	return &StatusError{Code: code, Message: payload.Error}
}

// ReadStream concatenates the content of every frame in r until the done
// sentinel. A stream that ends without the sentinel yields the partial text
// and an error.
func ReadStream(r io.Reader, onDelta func(string)) (string, error) {
	var reply strings.Builder
	for ev, err := range sse.Read(r, nil) {
		if err != nil {
			return reply.String(), fmt.Errorf("read event stream: %w", err)
		}
		if ev.Data == models.DoneSentinel {
			return reply.String(), nil
		}
		var frame models.Frame
		if err := json.Unmarshal([]byte(ev.Data), &frame); err != nil {
			return reply.String(), fmt.Errorf("decode frame: %w", err)
		}
		reply.WriteString(frame.Content)
		if onDelta != nil {
			onDelta(frame.Content)
		}
	}
	return reply.String(), ErrIncompleteStream
}
