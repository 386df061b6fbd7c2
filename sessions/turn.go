package sessions

import (
	"fmt"

	"github.com/Desarso/fleetassist/models"
)

// SplitTurn treats the last message as the active prompt and every earlier
// message, in order, as history.
func SplitTurn(msgs []models.ChatMessage) (prompt string, history []models.HistoryEntry, err error) {
	if len(msgs) == 0 {
		return "", nil, fmt.Errorf("no messages")
	}
	history = make([]models.HistoryEntry, 0, len(msgs)-1)
	for i, m := range msgs[:len(msgs)-1] {
		role, err := m.WireRole()
		if err != nil {
			return "", nil, fmt.Errorf("messages[%d]: %w", i, err)
		}
		history = append(history, models.HistoryEntry{
			Role:  role,
			Parts: []models.Part{{Text: m.Content}},
		})
	}
	return msgs[len(msgs)-1].Content, history, nil
}
