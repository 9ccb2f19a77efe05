package api

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/novelforge/continuity/pkg/engine"
)

// Server is the API server exposing the continuity engine over HTTP
type Server struct {
	config Config
	engine *engine.Engine
	logger *zap.Logger
	app    *fiber.App
}

// NewServer creates a new API server.
// The engine is injected to allow sharing with other components.
func NewServer(config Config, eng *engine.Engine, logger *zap.Logger) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s := &Server{
		config: config,
		engine: eng,
		logger: logger,
		app:    app,
	}

	app.Get("/ping", s.handlePing)

	projects := app.Group("/api/projects/:project")
	projects.Post("/context", s.handleAssembleContext)
	projects.Post("/exchange", s.handleRecordExchange)
	projects.Post("/characters", s.handleAddCharacter)
	projects.Post("/locations", s.handleAddLocation)
	projects.Post("/items", s.handleAddItem)
	projects.Post("/rules", s.handleAddRule)
	projects.Post("/events", s.handleAddEvent)
	projects.Post("/relations", s.handleAddRelation)
	projects.Post("/chapter-summaries", s.handleAddChapterSummary)
	projects.Get("/search", s.handleSearchMemory)
	projects.Get("/recent", s.handleRecentContext)
	projects.Delete("/recent", s.handleClearRecentContext)
	projects.Get("/graph", s.handleGraphSnapshot)

	return s
}

// Run starts the API server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting API server",
		zap.String("listen", s.config.ListenAddr),
	)
	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
