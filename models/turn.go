package models

// Turn is one relay invocation after the request has been split and enriched.
// Prompt is the active prompt; History holds every earlier message in order and
// never contains the prompt itself.
type Turn struct {
	Prompt            string
	History           []HistoryEntry
	SystemInstruction string
}
