package models

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoleMappingRoundTrip(t *testing.T) {
	conv := []Message{
		NewMessage(RoleAssistant, "สวัสดีครับ"),
		NewMessage(RoleUser, "มีรถว่างไหม"),
		NewMessage(RoleAssistant, "มี 3 คันครับ"),
		NewMessage(RoleUser, "ขอรายละเอียด"),
	}

	history, err := ToHistory(conv)
	require.NoError(t, err)
	require.Len(t, history, len(conv))
	assert.Equal(t, WireRoleModel, history[0].Role)
	assert.Equal(t, WireRoleUser, history[1].Role)
	assert.Equal(t, WireRoleModel, history[2].Role)
	assert.Equal(t, WireRoleUser, history[3].Role)

	back, err := FromHistory(history)
	require.NoError(t, err)
	require.Len(t, back, len(conv))
	for i := range conv {
		assert.Equal(t, conv[i].Role, back[i].Role, "role %d", i)
		assert.Equal(t, conv[i].Content, back[i].Content, "content %d", i)
		assert.True(t, back[i].Timestamp.IsZero())
	}
}

func TestRoleMappingRejectsUnknownRoles(t *testing.T) {
	_, err := ToWireRole("system")
	assert.Error(t, err)
	_, err = FromWireRole("assistant")
	assert.Error(t, err)

	_, err = ToHistory([]Message{{Role: "robot", Content: "x"}})
	assert.ErrorContains(t, err, "message 0")
}

func TestHistoryEntryText(t *testing.T) {
	e := HistoryEntry{Role: WireRoleUser, Parts: []Part{{Text: "รถ"}, {Text: "ว่าง"}}}
	assert.Equal(t, "รถว่าง", e.Text())
}

func TestChatMessageWireRole(t *testing.T) {
	tests := []struct {
		role    string
		want    WireRole
		wantErr bool
	}{
		{"user", WireRoleUser, false},
		{"assistant", WireRoleModel, false},
		{"model", WireRoleModel, false},
		{" Assistant ", WireRoleModel, false},
		{"system", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			got, err := ChatMessage{Role: tt.role}.WireRole()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestChatRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     ChatRequest
		wantErr bool
	}{
		{"single user message", ChatRequest{Messages: []ChatMessage{{Role: "user", Content: "hi"}}}, false},
		{"empty", ChatRequest{}, true},
		{"unknown role", ChatRequest{Messages: []ChatMessage{{Role: "bot", Content: "a"}, {Role: "user", Content: "b"}}}, true},
		{"blank last message", ChatRequest{Messages: []ChatMessage{{Role: "user", Content: "  "}}}, true},
		{"blank history is fine", ChatRequest{Messages: []ChatMessage{{Role: "model", Content: ""}, {Role: "user", Content: "b"}}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestChatRequestFromConversation(t *testing.T) {
	req, err := ChatRequestFromConversation([]Message{
		NewMessage(RoleAssistant, "greeting"),
		NewMessage(RoleUser, "question"),
	}, "page: fleet")
	require.NoError(t, err)
	assert.Equal(t, "page: fleet", req.Context)
	assert.Equal(t, []ChatMessage{
		{Role: "model", Content: "greeting"},
		{Role: "user", Content: "question"},
	}, req.Messages)
	assert.NoError(t, req.Validate())
}

func TestErrorKinds(t *testing.T) {
	cause := errors.New("boom")

	tests := []struct {
		err    *Error
		kind   Kind
		status int
		msg    string
	}{
		{ConfigurationError(cause), KindConfiguration, http.StatusInternalServerError, MsgConfiguration},
		{InvalidInput(cause), KindInvalidInput, http.StatusBadRequest, MsgInvalidInput},
		{UpstreamError(cause), KindUpstream, http.StatusInternalServerError, MsgUpstream},
		{TransportError(cause), KindTransport, http.StatusInternalServerError, MsgTransport},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			assert.Equal(t, tt.kind, tt.err.Kind)
			assert.Equal(t, tt.status, tt.err.Status())
			assert.Equal(t, tt.msg, tt.err.Message)
			assert.ErrorIs(t, tt.err, cause)
			assert.Contains(t, tt.err.Error(), string(tt.kind))
		})
	}
}

func TestAsError(t *testing.T) {
	assert.Nil(t, AsError(nil))

	tagged := InvalidInput(errors.New("bad"))
	wrapped := errors.Join(errors.New("outer"), tagged)
	assert.Same(t, tagged, AsError(wrapped))

	plain := AsError(errors.New("unclassified"))
	assert.Equal(t, KindUpstream, plain.Kind)
}
