// Package server exposes the processing pipeline over HTTP.
package server

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/docsift/docsift/internal/common"
	"github.com/docsift/docsift/internal/export"
	"github.com/docsift/docsift/internal/jobstore"
	"github.com/docsift/docsift/internal/pipeline"
	"github.com/docsift/docsift/internal/worker"
)

// Server handles the HTTP API.
type Server struct {
	app       *fiber.App
	cfg       common.ServerConfig
	processor *pipeline.Processor
	store     jobstore.Store
	exporter  *export.Service
	runner    *worker.BatchRunner
	logger    *slog.Logger
}

// New creates the API server around an already-built processor and store.
func New(cfg common.ServerConfig, processor *pipeline.Processor, store jobstore.Store, runner *worker.BatchRunner, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  120 * time.Second,
		ErrorHandler: jsonErrorHandler,
	})

	s := &Server{
		app:       app,
		cfg:       cfg,
		processor: processor,
		store:     store,
		exporter:  export.NewService(store, logger),
		runner:    runner,
		logger:    logger,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.app.Use(recover.New())
	s.app.Use(requestid.New())
	s.app.Use(s.requestLogger())
	s.app.Use(cors.New(cors.Config{
		AllowHeaders: "Origin, Content-Type, Accept",
		AllowMethods: "GET, POST, OPTIONS",
	}))

	s.app.Get("/healthz", s.handleHealth)

	api := s.app.Group("/api/v1")
	api.Post("/documents/process", s.handleProcessDocument)
	api.Post("/batch", s.handleSubmitBatch)
	api.Get("/batch/:id/status", s.handleBatchStatus)
	api.Get("/batch/:id/results", s.handleBatchResults)
	api.Get("/records/export", s.handleExportRecords)
}

// jsonErrorHandler renders handler errors as the same {"error": ...} JSON
// shape the handlers write directly.
func jsonErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := "internal server error"
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		msg = fe.Message
	}
	return c.Status(code).JSON(fiber.Map{"error": msg})
}

func (s *Server) requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		s.logger.Info("http.request",
			"request_id", c.Locals(requestid.ConfigDefault.ContextKey),
			"method", c.Method(),
			"path", c.Path(),
			"status", c.Response().StatusCode(),
			"latency_ms", time.Since(start).Milliseconds(),
		)
		return err
	}
}

// Start starts the server
func (s *Server) Start() error {
	s.logger.Info("server.listening", "addr", s.cfg.Addr)
	return s.app.Listen(s.cfg.Addr)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.app.ShutdownWithContext(ctx)
}
