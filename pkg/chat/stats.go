package chat

import (
	"time"

	"github.com/papercomputeco/chatbot/pkg/llm"
)

// SessionStats aggregates a session's turns. It is computed on demand and
// never stored.
type SessionStats struct {
	SessionID           string     `json:"sessionId"`
	MessageCount        int64      `json:"messageCount"`
	FirstMessage        *time.Time `json:"firstMessage"`
	LastMessage         *time.Time `json:"lastMessage"`
	TotalResponseTime   int64      `json:"totalResponseTime"`
	AverageResponseTime float64    `json:"averageResponseTime"`
}

// ComputeStats aggregates a session's turns, which must be ordered oldest first.
// No turns yields a zero record with nil timestamps.
func ComputeStats(sessionID string, turns []*llm.ConversationTurn) SessionStats {
	stats := SessionStats{SessionID: sessionID}
	if len(turns) == 0 {
		return stats
	}

	first := turns[0].Timestamp
	last := turns[len(turns)-1].Timestamp
	stats.FirstMessage = &first
	stats.LastMessage = &last
	stats.MessageCount = int64(len(turns))

	for _, t := range turns {
		stats.TotalResponseTime += t.ResponseTimeMs
	}
	stats.AverageResponseTime = float64(stats.TotalResponseTime) / float64(stats.MessageCount)

	return stats
}
