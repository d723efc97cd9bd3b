package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"go.uber.org/zap"

	"github.com/papercomputeco/chatbot/pkg/storage"
)

// validationStatus labels requests rejected before reaching the service.
const validationStatus = "INVALID"

// handleSend validates the body and runs one chat turn. An error outcome
// from the service is a 400.
func (s *Server) handleSend(c *fiber.Ctx) error {
	var req ChatRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		s.logger.Debug("failed to parse request", zap.Error(err))
		s.metrics.observeChat(validationStatus, 0, false)
		return c.Status(fiber.StatusBadRequest).JSON(newErrorResponse("Invalid request body"))
	}

	if msg := s.validator.Check(req); msg != "" {
		s.metrics.observeChat(validationStatus, 0, false)
		return c.Status(fiber.StatusBadRequest).JSON(newErrorResponse(msg))
	}

	ip := clientIP(c)
	s.logger.Debug("received chat request",
		zap.String("client_ip", ip),
		zap.Int("message_length", len(req.UserMessage)),
	)

	outcome := s.service.ProcessChatRequest(c.UserContext(), req.UserMessage, req.SessionID, ip)
	s.metrics.observeChat(string(outcome.Status), outcome.ResponseTimeMs, outcome.Success())

	if !outcome.Success() {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Status:    outcome.Status,
			Message:   outcome.Message,
			Timestamp: outcome.Timestamp,
		})
	}

	return c.JSON(newChatResponse(outcome))
}

// handleHistory returns a session's turns, oldest first. With start and end
// query parameters (RFC 3339) only turns inside the range are returned.
func (s *Server) handleHistory(c *fiber.Ctx) error {
	sessionID, err := pathParam(c, "sessionId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(newErrorResponse(err.Error()))
	}

	startParam, endParam := c.Query("start"), c.Query("end")

	if startParam == "" && endParam == "" {
		turns, err := s.service.GetChatHistory(c.UserContext(), sessionID)
		if err != nil {
			return err
		}
		return c.JSON(turns)
	}

	if startParam == "" || endParam == "" {
		return c.Status(fiber.StatusBadRequest).JSON(newErrorResponse("start and end must be provided together"))
	}

	start, err := time.Parse(time.RFC3339, startParam)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(newErrorResponse("invalid start time: " + utils.CopyString(startParam)))
	}
	end, err := time.Parse(time.RFC3339, endParam)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(newErrorResponse("invalid end time: " + utils.CopyString(endParam)))
	}

	turns, err := s.service.GetChatHistoryByTimeRange(c.UserContext(), sessionID, start, end)
	if err != nil {
		return err
	}
	return c.JSON(turns)
}

// handleRecent returns the newest turns across all sessions.
func (s *Server) handleRecent(c *fiber.Ctx) error {
	limit := s.config.DefaultRecentLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(newErrorResponse("limit must be a positive integer"))
		}
		limit = n
	}

	turns, err := s.service.GetRecentMessages(c.UserContext(), limit)
	if err != nil {
		return err
	}
	return c.JSON(turns)
}

// handleStats returns aggregate statistics for a session.
func (s *Server) handleStats(c *fiber.Ctx) error {
	sessionID, err := pathParam(c, "sessionId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(newErrorResponse(err.Error()))
	}

	stats, err := s.service.GetSessionStats(c.UserContext(), sessionID)
	if err != nil {
		return err
	}
	return c.JSON(stats)
}

// handleDeleteHistory removes a session's turns and answers in plain text.
func (s *Server) handleDeleteHistory(c *fiber.Ctx) error {
	sessionID, err := pathParam(c, "sessionId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).SendString(err.Error())
	}

	if err := s.service.DeleteSessionHistory(c.UserContext(), sessionID); err != nil {
		s.logger.Error("failed to delete session history", zap.String("session_id", sessionID), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).SendString("Failed to delete session history: " + err.Error())
	}

	s.logger.Info("session history deleted", zap.String("session_id", sessionID))
	return c.SendString("Session history deleted successfully")
}

// handleByClientIP returns the turns recorded from one client address, newest first.
func (s *Server) handleByClientIP(c *fiber.Ctx) error {
	ip, err := pathParam(c, "ip")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(newErrorResponse(err.Error()))
	}

	turns, err := s.service.GetMessagesByClientIP(c.UserContext(), ip)
	if err != nil {
		return err
	}
	return c.JSON(turns)
}

// handleGetMessage returns a single turn by id.
func (s *Server) handleGetMessage(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(newErrorResponse("id must be a positive integer"))
	}

	turn, err := s.service.GetMessage(c.UserContext(), id)
	if errors.As(err, new(storage.ErrNotFound)) {
		return c.Status(fiber.StatusNotFound).JSON(newErrorResponse(err.Error()))
	}
	if err != nil {
		return err
	}
	return c.JSON(turn)
}

// pathParam returns the URL-decoded value of a route parameter. Fiber hands
// back the raw segment, so a session id like "a b/c" arrives as "a%20b%2Fc".
func pathParam(c *fiber.Ctx, name string) (string, error) {
	raw := c.Params(name)
	v, err := url.PathUnescape(raw)
	if err != nil {
		return "", fmt.Errorf("invalid %s: %s", name, utils.CopyString(raw))
	}
	return utils.CopyString(v), nil
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.SendString("Chatbot service is running!")
}
