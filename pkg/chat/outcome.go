package chat

import "time"

// Status tags an Outcome as success or error.
type Status string

const (
	StatusSuccess Status = "SUCCESS"
	StatusError   Status = "ERROR"
)

// Outcome is the result of processing one chat request. Failures are carried
// as an Outcome with StatusError rather than a Go error, so callers branch on
// Status.
type Outcome struct {
	Status    Status
	Timestamp time.Time

	// Set on success.
	AIResponse     string
	SessionID      string
	ResponseTimeMs int64

	// Set on error.
	Message string
}

// Success reports whether the outcome carries a reply.
func (o Outcome) Success() bool {
	return o.Status == StatusSuccess
}

func successOutcome(aiResponse, sessionID string, responseTimeMs int64) Outcome {
	return Outcome{
		Status:         StatusSuccess,
		Timestamp:      time.Now().UTC(),
		AIResponse:     aiResponse,
		SessionID:      sessionID,
		ResponseTimeMs: responseTimeMs,
	}
}

func errorOutcome(message string) Outcome {
	return Outcome{
		Status:    StatusError,
		Timestamp: time.Now().UTC(),
		Message:   message,
	}
}
