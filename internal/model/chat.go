package model

// ChatRequest is the wire-level request for POST /api/chat.
type ChatRequest struct {
	Prompt string `json:"prompt"`
}

// ChatResponse carries a successful completion.
type ChatResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is the normalized failure shape. Details is bounded and
// optional; upstream internals never leak past it.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
