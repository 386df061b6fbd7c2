package gemini

import (
	"strings"

	"github.com/Desarso/fleetassist/models"
)

// SanitizeHistory prepares wire history for the Gemini API, which requires
// the dialogue to open with a user turn:
// - entries with no text are dropped
// - model entries before the first user entry (e.g. a UI greeting) are dropped
//
// Relative order of the remaining entries is preserved. The second return
// value is the number of entries removed.
func SanitizeHistory(history []models.HistoryEntry) ([]models.HistoryEntry, int) {
	out := make([]models.HistoryEntry, 0, len(history))
	seenUser := false
	for _, h := range history {
		if strings.TrimSpace(h.Text()) == "" {
			continue
		}
		if !seenUser {
			if h.Role != models.WireRoleUser {
				continue
			}
			seenUser = true
		}
		out = append(out, h)
	}
	return out, len(history) - len(out)
}
