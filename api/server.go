// Package api provides the chatbot HTTP server in front of chat.Service.
package api

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/papercomputeco/chatbot/pkg/chat"
)

// Server is the chatbot HTTP server. Per-request state lives on the fiber
// context; the server itself only holds the configured collaborators.
type Server struct {
	config    Config
	service   *chat.Service
	logger    *zap.Logger
	validator *requestValidator
	metrics   *Metrics
	app       *fiber.App
}

// NewServer creates a new Server. Zero-valued limits in config take their defaults.
func NewServer(config Config, service *chat.Service, logger *zap.Logger) *Server {
	config = config.withDefaults()

	s := &Server{
		config:    config,
		service:   service,
		logger:    logger,
		validator: newRequestValidator(config.MaxMessageLength, config.MaxSessionIDLength),
		metrics:   newMetrics(),
	}

	s.app = fiber.New(fiber.Config{
		// Disable startup message for cleaner logs
		DisableStartupMessage: true,
		ErrorHandler:          s.handleError,
	})

	s.app.Use(s.logRequests)
	s.app.Use(recover.New())
	s.app.Use(cors.New(cors.Config{
		AllowOrigins:     config.AllowOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	s.registerRoutes()

	return s
}

func (s *Server) registerRoutes() {
	g := s.app.Group("/chat")

	g.Post("/send", s.handleSend)
	g.Get("/history/:sessionId", s.handleHistory)
	g.Delete("/history/:sessionId", s.handleDeleteHistory)
	g.Get("/recent", s.handleRecent)
	g.Get("/stats/:sessionId", s.handleStats)
	g.Get("/ip/:ip", s.handleByClientIP)
	g.Get("/message/:id", s.handleGetMessage)
	g.Get("/health", s.handleHealth)

	s.app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{})))
}

// Metrics returns the server's collectors.
func (s *Server) Metrics() *Metrics {
	return s.metrics
}

// Run starts the server on the configured listening address.
func (s *Server) Run() error {
	s.logger.Info("starting chatbot server", zap.String("listen", s.config.ListenAddr))
	return s.app.Listen(s.config.ListenAddr)
}

// RunWithListener serves on an existing listener.
func (s *Server) RunWithListener(ln net.Listener) error {
	s.logger.Info("starting chatbot server", zap.String("listen", ln.Addr().String()))
	return s.app.Listener(ln)
}

// Shutdown stops accepting connections and waits for in-flight requests
// until ctx is done.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

// handleError is the last stop for errors returned or panicked from handlers.
// Framework errors keep their status; anything else is a 500.
func (s *Server) handleError(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(newErrorResponse(fe.Message))
	}

	s.logger.Error("unhandled error",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Error(err),
	)
	return c.Status(fiber.StatusInternalServerError).JSON(newErrorResponse("Internal server error: " + err.Error()))
}

// logRequests logs and counts every request after the error handler has
// settled its final status.
func (s *Server) logRequests(c *fiber.Ctx) error {
	start := time.Now()

	if err := c.Next(); err != nil {
		if herr := s.handleError(c, err); herr != nil {
			_ = c.SendStatus(fiber.StatusInternalServerError)
		}
	}

	// labels are retained by the registry, so they must not alias the request buffer
	code := c.Response().StatusCode()
	method := utils.CopyString(c.Method())
	route := utils.CopyString(c.Route().Path)
	s.metrics.observeHTTP(method, route, code)

	s.logger.Debug("request served",
		zap.String("method", method),
		zap.String("route", route),
		zap.Int("status", code),
		zap.Duration("duration", time.Since(start)),
	)

	return nil
}
