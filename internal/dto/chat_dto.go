package dto

// ChatRequest is the body of POST /api/chat/v1.
type ChatRequest struct {
	Question string `json:"question" validate:"required,min=1"`
	Language string `json:"language" validate:"omitempty,len=2"`
}

// ChatResponse carries the answer plus the pipeline's reasoning trace.
type ChatResponse struct {
	SessionId       string   `json:"session_id"`
	Answer          string   `json:"answer"`
	ThinkingProcess []string `json:"thinking_process,omitempty"`
}
