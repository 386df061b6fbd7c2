package models

import (
	"fmt"
	"time"
)

// Role is the speaker of a conversation message in the client's vocabulary.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// WireRole is the speaker vocabulary used on the wire to the relay and the model.
type WireRole string

const (
	WireRoleUser  WireRole = "user"
	WireRoleModel WireRole = "model"
)

// Message is one entry of a Conversation. Messages are never mutated after creation.
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// NewMessage stamps a message with the current time.
func NewMessage(role Role, content string) Message {
	return Message{Role: role, Content: content, Timestamp: time.Now()}
}

// Part is a single text part of a HistoryEntry.
type Part struct {
	Text string `json:"text"`
}

// HistoryEntry is the wire form of a message: {role, parts:[{text}]}.
type HistoryEntry struct {
	Role  WireRole `json:"role"`
	Parts []Part   `json:"parts"`
}

// Text concatenates the entry's parts.
func (h HistoryEntry) Text() string {
	var s string
	for _, p := range h.Parts {
		s += p.Text
	}
	return s
}

// ToWireRole maps assistant to model and user to user.
func ToWireRole(r Role) (WireRole, error) {
	switch r {
	case RoleUser:
		return WireRoleUser, nil
	case RoleAssistant:
		return WireRoleModel, nil
	default:
		return "", fmt.Errorf("unknown role %q", r)
	}
}

// FromWireRole is the inverse of ToWireRole.
func FromWireRole(r WireRole) (Role, error) {
	switch r {
	case WireRoleUser:
		return RoleUser, nil
	case WireRoleModel:
		return RoleAssistant, nil
	default:
		return "", fmt.Errorf("unknown wire role %q", r)
	}
}

// ToHistory converts a conversation to its wire history, preserving order.
func ToHistory(msgs []Message) ([]HistoryEntry, error) {
	out := make([]HistoryEntry, 0, len(msgs))
	for i, m := range msgs {
		role, err := ToWireRole(m.Role)
		if err != nil {
			return nil, fmt.Errorf("message %d: %w", i, err)
		}
		out = append(out, HistoryEntry{Role: role, Parts: []Part{{Text: m.Content}}})
	}
	return out, nil
}

// FromHistory converts wire history back into messages. Timestamps are not
// carried on the wire and are left zero.
func FromHistory(entries []HistoryEntry) ([]Message, error) {
	out := make([]Message, 0, len(entries))
	for i, e := range entries {
		role, err := FromWireRole(e.Role)
		if err != nil {
			return nil, fmt.Errorf("history entry %d: %w", i, err)
		}
		out = append(out, Message{Role: role, Content: e.Text()})
	}
	return out, nil
}
