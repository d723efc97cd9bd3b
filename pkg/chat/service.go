// Package chat runs a single chat turn against a completer and records it in a
// storage.Driver.
package chat

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/papercomputeco/chatbot/pkg/llm"
	"github.com/papercomputeco/chatbot/pkg/storage"
)

// Service is the chat orchestrator. It holds no per-request state and does no
// locking of its own; concurrency is left to the storage driver.
type Service struct {
	completer    llm.Completer
	driver       storage.Driver
	logger       *zap.Logger
	newSessionID func() string
}

// Option configures a Service.
type Option func(*Service)

// WithSessionIDGenerator overrides the session id generator.
func WithSessionIDGenerator(fn func() string) Option {
	return func(s *Service) {
		s.newSessionID = fn
	}
}

// NewService creates a new Service.
func NewService(completer llm.Completer, driver storage.Driver, logger *zap.Logger, opts ...Option) *Service {
	s := &Service{
		completer:    completer,
		driver:       driver,
		logger:       logger,
		newSessionID: NewSessionID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ProcessChatRequest runs one chat turn. A blank sessionID gets a generated
// one; any other value is used verbatim. Completion and storage failures are
// reported as an error Outcome, never as a Go error.
func (s *Service) ProcessChatRequest(ctx context.Context, userMessage, sessionID, clientIP string) Outcome {
	sessionID = resolveSessionID(sessionID, s.newSessionID)

	s.logger.Debug("processing chat request",
		zap.String("session_id", sessionID),
		zap.String("client_ip", clientIP),
		zap.String("message_preview", truncate(userMessage, 50)),
	)

	startTime := time.Now()

	aiResponse, err := s.completer.Complete(ctx, userMessage)
	if err != nil {
		s.logger.Error("failed to get completion", zap.String("session_id", sessionID), zap.Error(err))
		return errorOutcome("Failed to process chat request: " + err.Error())
	}

	turn := llm.NewConversationTurn(userMessage, aiResponse, sessionID)
	turn.ClientIP = clientIP
	turn.ResponseTimeMs = time.Since(startTime).Milliseconds()

	stored, err := s.driver.Append(ctx, turn)
	if err != nil {
		s.logger.Error("failed to store turn", zap.String("session_id", sessionID), zap.Error(err))
		return errorOutcome("Failed to process chat request: " + err.Error())
	}

	elapsed := time.Since(startTime).Milliseconds()

	s.logger.Info("turn stored",
		zap.String("session_id", sessionID),
		zap.Int64("id", stored.ID),
		zap.Int64("response_time_ms", elapsed),
	)

	return successOutcome(aiResponse, sessionID, elapsed)
}

// GetChatHistory returns a session's turns, oldest first.
func (s *Service) GetChatHistory(ctx context.Context, sessionID string) ([]*llm.ConversationTurn, error) {
	return s.driver.ListBySession(ctx, sessionID)
}

// GetChatHistoryByTimeRange returns a session's turns with timestamps in [start, end].
func (s *Service) GetChatHistoryByTimeRange(ctx context.Context, sessionID string, start, end time.Time) ([]*llm.ConversationTurn, error) {
	return s.driver.ListBySessionInRange(ctx, sessionID, start, end)
}

// GetRecentMessages returns at most limit turns across all sessions, newest first.
func (s *Service) GetRecentMessages(ctx context.Context, limit int) ([]*llm.ConversationTurn, error) {
	return s.driver.ListRecent(ctx, limit)
}

// GetMessagesByClientIP returns the turns recorded from a client, newest first.
func (s *Service) GetMessagesByClientIP(ctx context.Context, clientIP string) ([]*llm.ConversationTurn, error) {
	return s.driver.ListByClientIP(ctx, clientIP)
}

// GetMessage returns a single turn by id.
func (s *Service) GetMessage(ctx context.Context, id int64) (*llm.ConversationTurn, error) {
	return s.driver.Get(ctx, id)
}

// DeleteSessionHistory removes every turn in a session.
func (s *Service) DeleteSessionHistory(ctx context.Context, sessionID string) error {
	return s.driver.DeleteBySession(ctx, sessionID)
}

// GetSessionStats reads the session once and aggregates it.
func (s *Service) GetSessionStats(ctx context.Context, sessionID string) (SessionStats, error) {
	turns, err := s.driver.ListBySession(ctx, sessionID)
	if err != nil {
		return SessionStats{}, err
	}
	return ComputeStats(sessionID, turns), nil
}

func truncate(s string, maxLen int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
