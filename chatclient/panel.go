package chatclient

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/Desarso/fleetassist/models"
	"github.com/rs/zerolog"
)

// Greeting opens every conversation.
const Greeting = "สวัสดีครับ ผมคือผู้ช่วย AI ด้านโลจิสติกส์ สอบถามเรื่องรถว่าง การจอง หรือการขนส่งได้เลยครับ"

// FallbackReply replaces the assistant reply whenever a turn fails for any
// reason. Relay error details are deliberately not shown.
const FallbackReply = "ขออภัยครับ ไม่สามารถเชื่อมต่อกับระบบได้ในขณะนี้ กรุณาลองใหม่อีกครั้ง"

// SuggestedPrompts are offered while the conversation holds only the greeting.
var SuggestedPrompts = []string{
	"ตอนนี้มีรถว่างให้เช่ากี่คัน",
	"แสดงการจองที่กำลังจะถึง",
	"รถกระบะเช่าต่อวันราคาเท่าไหร่",
	"ตรวจสอบสถานะรถทะเบียน กข-1234",
}

var (
	// ErrEmptyInput is returned by Submit when the input is blank.
	ErrEmptyInput = errors.New("input is empty")
	// ErrBusy is returned by Submit while a previous turn is in flight.
	ErrBusy = errors.New("a message is already being sent")
	// ErrEmptyReply is reported when the relay finished without any text.
	ErrEmptyReply = errors.New("relay returned an empty reply")
)

// SendState is the request lifecycle of the panel.
type SendState int

const (
	Idle SendState = iota
	Sending
)

func (s SendState) String() string {
	if s == Sending {
		return "sending"
	}
	return "idle"
}

// PanelState is the visibility of the chat panel.
type PanelState int

const (
	Closed PanelState = iota
	Open
)

func (s PanelState) String() string {
	if s == Open {
		return "open"
	}
	return "closed"
}

// EventType identifies what changed in the panel.
type EventType int

const (
	EventMessageAppended EventType = iota
	EventStateChanged
	EventScrollToBottom
	EventFocusInput
	EventDelta
)

// Event is delivered to listeners registered with OnEvent.
type Event struct {
	Type    EventType
	Message models.Message
	Delta   string
	State   SendState
}

// Panel holds the conversation and the UI state of the floating chatbot.
// It is the only writer to its conversation; at most one turn is in flight.
type Panel struct {
	mu           sync.Mutex
	transport    Transport
	conversation []models.Message
	input        string
	send         SendState
	visibility   PanelState
	cancel       context.CancelFunc
	listeners    []func(Event)
	log          zerolog.Logger
}

// NewPanel creates a closed, idle panel seeded with the greeting.
func NewPanel(transport Transport, log zerolog.Logger) *Panel {
	return &Panel{
		transport:    transport,
		conversation: []models.Message{models.NewMessage(models.RoleAssistant, Greeting)},
		log:          log.With().Str("component", "chatclient").Logger(),
	}
}

// OnEvent registers fn. Listeners are called synchronously, outside the
// panel lock, in registration order.
func (p *Panel) OnEvent(fn func(Event)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listeners = append(p.listeners, fn)
}

func (p *Panel) Conversation() []models.Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]models.Message, len(p.conversation))
	copy(out, p.conversation)
	return out
}

func (p *Panel) Input() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.input
}

func (p *Panel) SetInput(text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.input = text
}

func (p *Panel) SendState() SendState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.send
}

func (p *Panel) PanelState() PanelState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.visibility
}

// Open shows the panel. The input is focused on the Closed to Open transition.
func (p *Panel) Open() {
	p.mu.Lock()
	if p.visibility == Open {
		p.mu.Unlock()
		return
	}
	p.visibility = Open
	p.mu.Unlock()
	p.emit(Event{Type: EventFocusInput}, Event{Type: EventScrollToBottom})
}

// Close hides the panel and aborts the in-flight turn, if any.
func (p *Panel) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.visibility = Closed
	if p.cancel != nil {
		p.cancel()
	}
}

func (p *Panel) Toggle() {
	if p.PanelState() == Open {
		p.Close()
		return
	}
	p.Open()
}

// Suggestions returns the example prompts while only the greeting is present.
func (p *Panel) Suggestions() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.conversation) != 1 {
		return nil
	}
	return append([]string(nil), SuggestedPrompts...)
}

// UseSuggestion copies suggestion i into the input without submitting.
func (p *Panel) UseSuggestion(i int) error {
	s := p.Suggestions()
	if i < 0 || i >= len(s) {
		return fmt.Errorf("no suggestion %d", i)
	}
	p.SetInput(s[i])
	return nil
}

// Submit sends the current input as a user message and blocks until the
// assistant reply, or the fallback reply, has been appended. Blank input and
// submissions while Sending are rejected without side effects.
func (p *Panel) Submit(ctx context.Context) error {
	p.mu.Lock()
	text := strings.TrimSpace(p.input)
	if text == "" {
		p.mu.Unlock()
		return ErrEmptyInput
	}
	if p.send == Sending {
		p.mu.Unlock()
		return ErrBusy
	}
	userMsg := models.NewMessage(models.RoleUser, text)
	p.conversation = append(p.conversation, userMsg)
	p.input = ""
	p.send = Sending
	snapshot := append([]models.Message(nil), p.conversation...)
	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	open := p.visibility == Open
	p.mu.Unlock()
	defer cancel()

	p.emit(p.appendEvents(userMsg, open, Event{Type: EventStateChanged, State: Sending})...)

	reply, err := p.transport.Send(ctx, snapshot, func(delta string) {
		p.emit(Event{Type: EventDelta, Delta: delta})
	})
	if err == nil && strings.TrimSpace(reply) == "" {
		err = ErrEmptyReply
	}
	if err != nil {
		p.log.Warn().Err(err).Msg("chat turn failed, showing fallback reply")
		reply = FallbackReply
	}

	p.mu.Lock()
	botMsg := models.NewMessage(models.RoleAssistant, reply)
	p.conversation = append(p.conversation, botMsg)
	p.send = Idle
	p.cancel = nil
	open = p.visibility == Open
	p.mu.Unlock()

	p.emit(p.appendEvents(botMsg, open, Event{Type: EventStateChanged, State: Idle})...)
	return err
}

func (p *Panel) appendEvents(msg models.Message, open bool, state Event) []Event {
	events := []Event{{Type: EventMessageAppended, Message: msg}, state}
	if open {
		events = append(events, Event{Type: EventScrollToBottom})
	}
	return events
}

func (p *Panel) emit(events ...Event) {
	p.mu.Lock()
	listeners := slices.Clone(p.listeners)
	p.mu.Unlock()
	for _, e := range events {
		for _, fn := range listeners {
			fn(e)
		}
	}
}
