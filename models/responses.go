package models

// DoneSentinel is the payload of the terminal SSE frame.
const DoneSentinel = "[DONE]"

// Frame is the JSON payload of one content event: data: {"content": "..."}
type Frame struct {
	Content string `json:"content"`
}

// ErrorResponse is the JSON body returned when a turn fails before streaming.
type ErrorResponse struct {
	Error string `json:"error"`
}
