package model

// Response is the envelope shared by every API reply. The front end
// branches on Success, not on the HTTP status code.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}
