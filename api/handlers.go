package api

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/novelforge/continuity/pkg/engine"
)

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}

// AssembleContextRequest selects what the assembled context includes.
type AssembleContextRequest struct {
	Query            string `json:"query"`
	IncludeShortTerm *bool  `json:"include_short_term,omitempty"`
	IncludeLongTerm  *bool  `json:"include_long_term,omitempty"`
	IncludeGraph     *bool  `json:"include_graph,omitempty"`
}

// RecordExchangeRequest carries one completed query/result pair.
type RecordExchangeRequest struct {
	Query  string `json:"query"`
	Result string `json:"result"`
}

// AddEntityRequest creates a named entity.
type AddEntityRequest struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Attributes  map[string]any `json:"attributes,omitempty"`
}

// AddEventRequest creates an event and its automatic relations.
type AddEventRequest struct {
	AddEntityRequest
	Participants []string `json:"participants,omitempty"`
	Location     string   `json:"location,omitempty"`
}

// AddRelationRequest creates a directed relation between two entities.
type AddRelationRequest struct {
	SourceID   string         `json:"source_id"`
	Type       string         `json:"type"`
	TargetID   string         `json:"target_id"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// AddChapterSummaryRequest stores a chapter summary.
type AddChapterSummaryRequest struct {
	Chapter int    `json:"chapter"`
	Title   string `json:"title,omitempty"`
	Summary string `json:"summary"`
}

// handlePing returns a simple health check response.
func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

func (s *Server) handleAssembleContext(c *fiber.Ctx) error {
	var req AssembleContextRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}
	if req.Query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "query is required"})
	}

	opts := engine.DefaultAssembleOptions()
	if req.IncludeShortTerm != nil {
		opts.IncludeShortTerm = *req.IncludeShortTerm
	}
	if req.IncludeLongTerm != nil {
		opts.IncludeLongTerm = *req.IncludeLongTerm
	}
	if req.IncludeGraph != nil {
		opts.IncludeGraph = *req.IncludeGraph
	}

	context, err := s.engine.AssembleContext(c.Context(), c.Params("project"), req.Query, opts)
	if err != nil {
		s.logger.Error("assembling context failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to assemble context"})
	}

	return c.JSON(map[string]any{"context": context})
}

func (s *Server) handleRecordExchange(c *fiber.Ctx) error {
	var req RecordExchangeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}
	if req.Query == "" || req.Result == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "query and result are required"})
	}

	if err := s.engine.RecordExchange(c.Context(), c.Params("project"), req.Query, req.Result); err != nil {
		s.logger.Error("recording exchange failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to record exchange"})
	}

	return c.SendStatus(fiber.StatusNoContent)
}

type entityAdder func(c *fiber.Ctx, req AddEntityRequest) (any, error)

func (s *Server) handleAddEntity(c *fiber.Ctx, add entityAdder) error {
	var req AddEntityRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}
	if req.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "name is required"})
	}

	entity, err := add(c, req)
	if err != nil {
		s.logger.Error("adding entity failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to add entity"})
	}

	return c.Status(fiber.StatusCreated).JSON(entity)
}

func (s *Server) handleAddCharacter(c *fiber.Ctx) error {
	return s.handleAddEntity(c, func(c *fiber.Ctx, req AddEntityRequest) (any, error) {
		return s.engine.AddCharacter(c.Context(), c.Params("project"), req.Name, req.Description, req.Attributes)
	})
}

func (s *Server) handleAddLocation(c *fiber.Ctx) error {
	return s.handleAddEntity(c, func(c *fiber.Ctx, req AddEntityRequest) (any, error) {
		return s.engine.AddLocation(c.Context(), c.Params("project"), req.Name, req.Description, req.Attributes)
	})
}

func (s *Server) handleAddItem(c *fiber.Ctx) error {
	return s.handleAddEntity(c, func(c *fiber.Ctx, req AddEntityRequest) (any, error) {
		return s.engine.AddItem(c.Context(), c.Params("project"), req.Name, req.Description, req.Attributes)
	})
}

func (s *Server) handleAddRule(c *fiber.Ctx) error {
	return s.handleAddEntity(c, func(c *fiber.Ctx, req AddEntityRequest) (any, error) {
		return s.engine.AddRule(c.Context(), c.Params("project"), req.Name, req.Description, req.Attributes)
	})
}

func (s *Server) handleAddEvent(c *fiber.Ctx) error {
	var req AddEventRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}
	if req.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "name is required"})
	}

	entity, err := s.engine.AddEvent(c.Context(), c.Params("project"),
		req.Name, req.Description, req.Attributes, req.Participants, req.Location)
	if err != nil {
		s.logger.Error("adding event failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to add event"})
	}

	return c.Status(fiber.StatusCreated).JSON(entity)
}

func (s *Server) handleAddRelation(c *fiber.Ctx) error {
	var req AddRelationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}
	if req.SourceID == "" || req.Type == "" || req.TargetID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "source_id, type, and target_id are required"})
	}

	ok, err := s.engine.AddRelation(c.Context(), c.Params("project"),
		req.SourceID, req.Type, req.TargetID, req.Attributes)
	if err != nil {
		s.logger.Error("adding relation failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to add relation"})
	}
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: "source or target entity not found"})
	}

	return c.SendStatus(fiber.StatusCreated)
}

func (s *Server) handleAddChapterSummary(c *fiber.Ctx) error {
	var req AddChapterSummaryRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}
	if req.Summary == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "summary is required"})
	}

	entry, err := s.engine.AddChapterSummary(c.Context(), c.Params("project"), req.Chapter, req.Title, req.Summary)
	if err != nil {
		s.logger.Error("adding chapter summary failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to add chapter summary"})
	}

	return c.Status(fiber.StatusCreated).JSON(entry)
}

func (s *Server) handleSearchMemory(c *fiber.Ctx) error {
	query := c.Query("q")
	if query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "q parameter required"})
	}
	limit := c.QueryInt("limit", 0)

	results, err := s.engine.SearchMemory(c.Context(), c.Params("project"), query, limit)
	if err != nil {
		s.logger.Error("memory search failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to search memory"})
	}

	return c.JSON(map[string]any{
		"count":   len(results),
		"results": results,
	})
}

func (s *Server) handleRecentContext(c *fiber.Ctx) error {
	entries := s.engine.RecentContext(c.Params("project"), c.QueryInt("limit", 0))
	return c.JSON(map[string]any{
		"count":   len(entries),
		"entries": entries,
	})
}

func (s *Server) handleClearRecentContext(c *fiber.Ctx) error {
	s.engine.ClearRecentContext(c.Params("project"))
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) handleGraphSnapshot(c *fiber.Ctx) error {
	snapshot, err := s.engine.GraphSnapshot(c.Context(), c.Params("project"))
	if err != nil {
		s.logger.Error("graph snapshot failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to export graph"})
	}
	return c.JSON(snapshot)
}
