package sessions

import (
	"github.com/rs/zerolog"
)

// NewRelaySession creates a request scoped relay session.
func NewRelaySession(requestID string, model Model, ctxProvider ContextProvider, policy ContextPolicy, logger zerolog.Logger) *RelaySession {
	if policy == "" {
		policy = ContextDegrade
	}
	return &RelaySession{
		RequestID:     requestID,
		Model:         model,
		Context:       ctxProvider,
		ContextPolicy: policy,
		Logger:        logger.With().Str("request_id", requestID).Logger(),
	}
}
