package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/purnachandra9816-del/Smart-Helpdesk-with-Agentic-Triage/internal/agent"
	"github.com/purnachandra9816-del/Smart-Helpdesk-with-Agentic-Triage/internal/api/dto"
	"github.com/purnachandra9816-del/Smart-Helpdesk-with-Agentic-Triage/internal/auth"
	"github.com/purnachandra9816-del/Smart-Helpdesk-with-Agentic-Triage/internal/service"
	apperrors "github.com/purnachandra9816-del/Smart-Helpdesk-with-Agentic-Triage/pkg/util/errorutil"
)

// AgentHandler exposes triage suggestions to staff.
type AgentHandler struct {
	review *service.AgentReviewService
}

// NewAgentHandler constructs handler.
func NewAgentHandler(review *service.AgentReviewService) *AgentHandler {
	return &AgentHandler{review: review}
}

// TriggerTriage POST /api/agent/triage.
func (h *AgentHandler) TriggerTriage(c *fiber.Ctx) error {
	var req dto.TriggerTriageRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.TicketID == "" {
		return apperrors.NewValidationError("ticket_id required", nil)
	}

	result, err := h.review.TriggerTriage(c.Context(), req.TicketID)
	if err != nil {
		switch {
		case errors.Is(err, agent.ErrTicketNotFound):
			return apperrors.NewNotFound("ticket", nil)
		case errors.Is(err, agent.ErrTriageInProgress):
			return apperrors.NewConflict("triage already in progress", nil)
		}
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{
		"ticket_id":          result.TicketID,
		"trace_id":           result.TraceID,
		"suggestion_id":      result.SuggestionID,
		"predicted_category": result.Classification.PredictedCategory,
		"confidence":         result.Classification.Confidence,
		"auto_closed":        result.Decision.AutoClosed,
	}})
}

// GetSuggestion GET /api/agent/suggestion/:ticketId.
func (h *AgentHandler) GetSuggestion(c *fiber.Ctx) error {
	suggestion, err := h.review.LatestSuggestion(c.Context(), c.Params("ticketId"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewSuggestionResponse(suggestion)})
}

// ReviewSuggestion POST /api/agent/suggestion/:id/review.
func (h *AgentHandler) ReviewSuggestion(c *fiber.Ctx) error {
	user, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.ReviewSuggestionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	suggestion, err := h.review.Review(c.Context(), user, c.Params("id"), req.Approved, req.EditedDraft)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewSuggestionResponse(suggestion)})
}

// Stats GET /api/agent/stats.
func (h *AgentHandler) Stats(c *fiber.Ctx) error {
	since := time.Now().AddDate(0, 0, -parseIntQuery(c, "days", 30))
	stats, err := h.review.Stats(c.Context(), since)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewSuggestionStats(stats)})
}
