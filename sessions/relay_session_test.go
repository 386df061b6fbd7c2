package sessions

import (
	"context"
	"errors"
	"testing"

	"github.com/Desarso/fleetassist/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chatRequest(msgs ...string) models.ChatRequest {
	req := models.ChatRequest{}
	for i, m := range msgs {
		role := "user"
		if i%2 == 1 {
			role = "assistant"
		}
		req.Messages = append(req.Messages, models.ChatMessage{Role: role, Content: m})
	}
	return req
}

func newTestSession(model Model, ctxProvider ContextProvider, policy ContextPolicy) *RelaySession {
	return NewRelaySession("req-1", model, ctxProvider, policy, zerolog.Nop())
}

func TestRunRelaysNonEmptyChunks(t *testing.T) {
	model := &fakeModel{chunks: []string{"Hel", "lo", ""}}
	w := &recordingWriter{}

	res, err := newTestSession(model, nil, "").Run(context.Background(), chatRequest("hi"), w)

	require.NoError(t, err)
	assert.Equal(t, []string{"Hel", "lo"}, w.frames)
	assert.True(t, w.done)
	assert.Equal(t, 2, res.Frames)
	assert.Equal(t, 5, res.ReplyChars)
	assert.Equal(t, ContextStatusDisabled, res.ContextStatus)
}

func TestRunPassesPromptHistoryAndContext(t *testing.T) {
	model := &fakeModel{chunks: []string{"ok"}}
	ctxProvider := &fakeContext{text: "สรุปยานพาหนะ: ทั้งหมด 5 คัน"}
	req := chatRequest("มีรถว่างไหม", "มีครับ", "ขอรายละเอียด")
	req.Context = "หน้าแดชบอร์ด"

	res, err := newTestSession(model, ctxProvider, ContextDegrade).Run(context.Background(), req, &recordingWriter{})

	require.NoError(t, err)
	assert.Equal(t, ContextStatusOK, res.ContextStatus)
	assert.Equal(t, []string{"ขอรายละเอียด"}, ctxProvider.queries)
	assert.Equal(t, "ขอรายละเอียด", model.turn.Prompt)
	require.Len(t, model.turn.History, 2)
	assert.Equal(t, models.WireRoleModel, model.turn.History[1].Role)
	assert.Equal(t, BuildSystemInstruction("หน้าแดชบอร์ด", "สรุปยานพาหนะ: ทั้งหมด 5 คัน"), model.turn.SystemInstruction)
}

func TestRunRejectsInvalidInput(t *testing.T) {
	model := &fakeModel{}
	ctxProvider := &fakeContext{}
	w := &recordingWriter{}

	_, err := newTestSession(model, ctxProvider, "").Run(context.Background(), models.ChatRequest{}, w)

	var relayErr *models.Error
	require.ErrorAs(t, err, &relayErr)
	assert.Equal(t, models.KindInvalidInput, relayErr.Kind)
	assert.Zero(t, model.Calls())
	assert.Empty(t, ctxProvider.queries)
	assert.False(t, w.Started())
}

func TestContextFailurePolicy(t *testing.T) {
	lookupErr := errors.New("database is locked")

	t.Run("degrade continues without realtime data", func(t *testing.T) {
		model := &fakeModel{chunks: []string{"ok"}}
		res, err := newTestSession(model, &fakeContext{err: lookupErr}, ContextDegrade).
			Run(context.Background(), chatRequest("hi"), &recordingWriter{})

		require.NoError(t, err)
		assert.Equal(t, ContextStatusFailed, res.ContextStatus)
		assert.Equal(t, 1, model.Calls())
		assert.Equal(t, BuildSystemInstruction("", ""), model.turn.SystemInstruction)
	})

	t.Run("fail aborts before the model is called", func(t *testing.T) {
		model := &fakeModel{chunks: []string{"ok"}}
		w := &recordingWriter{}
		res, err := newTestSession(model, &fakeContext{err: lookupErr}, ContextFail).
			Run(context.Background(), chatRequest("hi"), w)

		var relayErr *models.Error
		require.ErrorAs(t, err, &relayErr)
		assert.Equal(t, models.KindUpstream, relayErr.Kind)
		assert.ErrorIs(t, err, lookupErr)
		assert.Equal(t, ContextStatusFailed, res.ContextStatus)
		assert.Zero(t, model.Calls())
		assert.False(t, w.Started())
	})
}

func TestStreamErrorBeforeFirstFrame(t *testing.T) {
	boom := errors.New("upstream unavailable")
	w := &recordingWriter{}

	_, err := newTestSession(&fakeModel{err: boom}, nil, "").Run(context.Background(), chatRequest("hi"), w)

	var relayErr *models.Error
	require.ErrorAs(t, err, &relayErr)
	assert.Equal(t, models.KindUpstream, relayErr.Kind)
	assert.ErrorIs(t, err, boom)
	assert.False(t, w.Started())
	assert.False(t, w.done)
}

func TestStreamErrorAfterFirstFrame(t *testing.T) {
	boom := errors.New("connection reset")
	w := &recordingWriter{}

	res, err := newTestSession(&fakeModel{chunks: []string{"Hel"}, err: boom}, nil, "").
		Run(context.Background(), chatRequest("hi"), w)

	var relayErr *models.Error
	require.ErrorAs(t, err, &relayErr)
	assert.Equal(t, models.KindTransport, relayErr.Kind)
	assert.Equal(t, []string{"Hel"}, w.frames)
	assert.False(t, w.done, "no done sentinel after a mid-stream failure")
	assert.Equal(t, 1, res.Frames)
}

func TestStreamWriteFailure(t *testing.T) {
	w := &recordingWriter{failOn: 2}

	_, err := newTestSession(&fakeModel{chunks: []string{"a", "b", "c"}}, nil, "").
		Run(context.Background(), chatRequest("hi"), w)

	var relayErr *models.Error
	require.ErrorAs(t, err, &relayErr)
	assert.Equal(t, models.KindTransport, relayErr.Kind)
	assert.ErrorIs(t, err, errWriteFailed)
	assert.Equal(t, []string{"a"}, w.frames)
}

func TestStreamCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestSession(&fakeModel{chunks: []string{"a"}}, nil, "").
		Run(ctx, chatRequest("hi"), &recordingWriter{})

	require.Error(t, err)
	assert.True(t, IsCanceled(err))
}

func TestNewRelaySessionDefaultsPolicy(t *testing.T) {
	s := NewRelaySession("id", nil, nil, "", zerolog.Nop())
	assert.Equal(t, ContextDegrade, s.ContextPolicy)
	assert.Equal(t, "id", s.RequestID)
}
