package server

import (
	"context"
	"errors"
	"time"
	"unicode/utf8"

	fleetassist "github.com/Desarso/fleetassist"
	"github.com/Desarso/fleetassist/models"
	"github.com/Desarso/fleetassist/sessions"
	"github.com/Desarso/fleetassist/stores"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Turn outcomes recorded in audit and metrics.
const (
	OutcomeOK        = "ok"
	OutcomeCanceled  = "canceled"
	outcomeUndefined = "unknown"
)

var errMissingCredential = errors.New("GEMINI_API_KEY is not configured")

// ChatHandler serves POST /api/chat.
type ChatHandler struct {
	cfg     *fleetassist.Config
	model   sessions.Model
	context sessions.ContextProvider
	turns   stores.TurnStore
	metrics *Metrics
	log     zerolog.Logger
}

func NewChatHandler(cfg *fleetassist.Config, deps Deps, metrics *Metrics, log zerolog.Logger) *ChatHandler {
	return &ChatHandler{
		cfg:     cfg,
		model:   deps.Model,
		context: deps.Context,
		turns:   deps.Turns,
		metrics: metrics,
		log:     log.With().Str("component", "chat").Logger(),
	}
}

// Chat relays one turn. The credential check runs before anything else.
func (h *ChatHandler) Chat(c *gin.Context) {
	requestID := uuid.NewString()
	c.Header("X-Request-ID", requestID)
	log := h.log.With().Str("request_id", requestID).Logger()

	record := &stores.ChatTurn{RequestID: requestID, Outcome: outcomeUndefined}
	start := time.Now()
	defer func() {
		record.DurationMS = time.Since(start).Milliseconds()
		h.finish(context.WithoutCancel(c.Request.Context()), record, log)
	}()

	if !h.cfg.HasCredential() || h.model == nil {
		e := models.ConfigurationError(errMissingCredential)
		log.Error().Err(e).Msg("chat relay is not configured")
		h.respondError(c, record, e)
		return
	}

	var req models.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Debug().Err(err).Msg("rejected chat request body")
		h.respondError(c, record, models.InvalidInput(err))
		return
	}
	if n := len(req.Messages); n > 0 {
		record.HistoryLen = n - 1
		record.PromptChars = utf8.RuneCountInString(req.Messages[n-1].Content)
	}

	session := sessions.NewRelaySession(requestID, h.model, h.context, h.cfg.ContextPolicy(), h.log)
	w := sessions.NewFrameWriter(c.Writer)
	res, err := session.Run(c.Request.Context(), req, w)
	record.Frames = res.Frames
	record.ReplyChars = res.ReplyChars
	record.ContextStatus = res.ContextStatus

	if err == nil {
		record.Outcome = OutcomeOK
		return
	}

	if c.Request.Context().Err() != nil && sessions.IsCanceled(err) {
		record.Outcome = OutcomeCanceled
		log.Info().Int("frames", res.Frames).Msg("client went away, turn cancelled")
		return
	}

	e := models.AsError(err)
	if e.Kind == models.KindInvalidInput {
		log.Debug().Err(e).Msg("rejected chat request")
		h.respondError(c, record, e)
		return
	}
	log.Error().Err(e).Str("kind", string(e.Kind)).Int("frames", res.Frames).Msg("chat turn failed")
	if w.Started() {
		record.Outcome = string(models.KindTransport)
		record.ErrorKind = string(models.KindTransport)
		w.Abort()
		return
	}
	h.respondError(c, record, e)
}

func (h *ChatHandler) respondError(c *gin.Context, record *stores.ChatTurn, e *models.Error) {
	record.Outcome = string(e.Kind)
	record.ErrorKind = string(e.Kind)
	c.AbortWithStatusJSON(e.Status(), models.ErrorResponse{Error: e.Message})
}

func (h *ChatHandler) finish(ctx context.Context, record *stores.ChatTurn, log zerolog.Logger) {
	if h.metrics != nil {
		h.metrics.ObserveTurn(record)
	}
	if h.turns == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := h.turns.SaveTurn(ctx, record); err != nil {
		log.Warn().Err(err).Msg("failed to record chat turn")
	}
}
