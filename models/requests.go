package models

import (
	"fmt"
	"strings"
)

// ChatMessage is one element of ChatRequest.Messages. Role accepts the client
// vocabulary ("user", "assistant") as well as the wire vocabulary ("model").
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// WireRole resolves the message role to the wire vocabulary.
func (m ChatMessage) WireRole() (WireRole, error) {
	switch strings.ToLower(strings.TrimSpace(m.Role)) {
	case "user":
		return WireRoleUser, nil
	case "assistant", "model":
		return WireRoleModel, nil
	default:
		return "", fmt.Errorf("unsupported role %q", m.Role)
	}
}

// ChatRequest is the body accepted by POST /api/chat.
type ChatRequest struct {
	Messages []ChatMessage `json:"messages" binding:"required,min=1"`
	Context  string        `json:"context,omitempty"`
}

// Validate checks the request beyond what binding tags express.
func (r ChatRequest) Validate() error {
	if len(r.Messages) == 0 {
		return fmt.Errorf("messages must be a non-empty array")
	}
	for i, m := range r.Messages {
		if _, err := m.WireRole(); err != nil {
			return fmt.Errorf("messages[%d]: %w", i, err)
		}
	}
	if strings.TrimSpace(r.Messages[len(r.Messages)-1].Content) == "" {
		return fmt.Errorf("last message content is empty")
	}
	return nil
}

// ChatRequestFromConversation builds a relay request from a conversation.
func ChatRequestFromConversation(msgs []Message, context string) (ChatRequest, error) {
	req := ChatRequest{Messages: make([]ChatMessage, 0, len(msgs)), Context: context}
	for i, m := range msgs {
		role, err := ToWireRole(m.Role)
		if err != nil {
			return ChatRequest{}, fmt.Errorf("message %d: %w", i, err)
		}
		req.Messages = append(req.Messages, ChatMessage{Role: string(role), Content: m.Content})
	}
	return req, nil
}
