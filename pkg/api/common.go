package api

// Error represents an error response
type Error struct {
	MessageCode string `json:"message_code"`
	Message     string `json:"message"`
	Trace       string `json:"trace"`
}
