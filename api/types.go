package api

import (
	"time"

	"github.com/papercomputeco/chatbot/pkg/chat"
)

// ChatRequest is the body of POST /chat/send.
type ChatRequest struct {
	UserMessage string `json:"userMessage"`
	SessionID   string `json:"sessionId"`
}

// ChatResponse is returned by POST /chat/send on success.
type ChatResponse struct {
	AIResponse     string      `json:"aiResponse"`
	SessionID      string      `json:"sessionId"`
	Timestamp      time.Time   `json:"timestamp"`
	ResponseTimeMs int64       `json:"responseTimeMs"`
	Status         chat.Status `json:"status"`
}

// ErrorResponse is the envelope for every JSON failure.
type ErrorResponse struct {
	Status    chat.Status `json:"status"`
	Message   string      `json:"message"`
	Timestamp time.Time   `json:"timestamp"`
}

func newErrorResponse(message string) ErrorResponse {
	return ErrorResponse{
		Status:    chat.StatusError,
		Message:   message,
		Timestamp: time.Now().UTC(),
	}
}

func newChatResponse(o chat.Outcome) ChatResponse {
	return ChatResponse{
		AIResponse:     o.AIResponse,
		SessionID:      o.SessionID,
		Timestamp:      o.Timestamp,
		ResponseTimeMs: o.ResponseTimeMs,
		Status:         o.Status,
	}
}
