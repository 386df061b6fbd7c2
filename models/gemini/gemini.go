package gemini

import (
	"context"
	"fmt"

	"github.com/Desarso/fleetassist/models"
	"github.com/rs/zerolog"
	"google.golang.org/genai"
)

// Model streams chat completions from the Gemini API.
type Model struct {
	Name            string
	Temperature     *float32
	MaxOutputTokens int32
	Logger          zerolog.Logger

	stream streamFunc
}

// New creates a Model backed by a genai client using the Gemini API backend.
func New(ctx context.Context, cfg Config, logger zerolog.Logger) (*Model, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini api key is empty")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	m := newModel(cfg, logger, client.Models.GenerateContentStream)
	return m, nil
}

func newModel(cfg Config, logger zerolog.Logger, stream streamFunc) *Model {
	m := &Model{
		Name:            cfg.Model,
		MaxOutputTokens: cfg.MaxOutputTokens,
		Logger:          logger.With().Str("component", "gemini").Logger(),
		stream:          stream,
	}
	if m.Name == "" {
		m.Name = DefaultModel
	}
	if cfg.Temperature > 0 {
		t := cfg.Temperature
		m.Temperature = &t
	}
	return m
}

// StreamChat implements sessions.Model. The returned channels are closed once
// the upstream stream is exhausted, fails, or ctx is cancelled.
func (m *Model) StreamChat(ctx context.Context, turn models.Turn) (<-chan string, <-chan error) {
	chunks := make(chan string)
	errs := make(chan error, 1)

	go func() {
		defer close(chunks)
		defer close(errs)

		contents, dropped := BuildContents(turn)
		if dropped > 0 {
			m.Logger.Debug().Int("dropped", dropped).Msg("sanitized history")
		}

		for resp, err := range m.stream(ctx, m.Name, contents, m.config(turn)) {
			if err != nil {
				errs <- fmt.Errorf("gemini stream: %w", err)
				return
			}
			select {
			case chunks <- resp.Text():
			case <-ctx.Done():
				errs <- ctx.Err()
				return
			}
		}
	}()

	return chunks, errs
}

func (m *Model) config(turn models.Turn) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		Temperature:     m.Temperature,
		MaxOutputTokens: m.MaxOutputTokens,
	}
	if turn.SystemInstruction != "" {
		cfg.SystemInstruction = genai.NewContentFromText(turn.SystemInstruction, genai.RoleUser)
	}
	return cfg
}

// BuildContents converts a turn into the genai dialogue: sanitized history
// followed by the active prompt as the final user content.
func BuildContents(turn models.Turn) ([]*genai.Content, int) {
	history, dropped := SanitizeHistory(turn.History)
	contents := make([]*genai.Content, 0, len(history)+1)
	for _, h := range history {
		var role genai.Role = genai.RoleUser
		if h.Role == models.WireRoleModel {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(h.Text(), role))
	}
	contents = append(contents, genai.NewContentFromText(turn.Prompt, genai.RoleUser))
	return contents, dropped
}
