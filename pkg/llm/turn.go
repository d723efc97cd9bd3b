package llm

import "time"

// ConversationTurn represents a complete user-message / AI-response pair for storage.
// The ID is assigned by the storage driver on append. ClientIP and ResponseTimeMs
// may be set after construction but before the turn is appended; once stored a
// turn is never mutated.
type ConversationTurn struct {
	ID             int64     `json:"id"`
	UserMessage    string    `json:"userMessage"`
	AIResponse     string    `json:"aiResponse"`
	Timestamp      time.Time `json:"timestamp"`
	SessionID      string    `json:"sessionId"`
	ClientIP       string    `json:"userIp,omitempty"`
	ResponseTimeMs int64     `json:"responseTimeMs"`
}

// NewConversationTurn creates a turn stamped with the current time.
func NewConversationTurn(userMessage, aiResponse, sessionID string) *ConversationTurn {
	return &ConversationTurn{
		UserMessage: userMessage,
		AIResponse:  aiResponse,
		SessionID:   sessionID,
		Timestamp:   time.Now().UTC(),
	}
}
