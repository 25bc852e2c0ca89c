package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/purnachandra9816-del/Smart-Helpdesk-with-Agentic-Triage/internal/api/dto"
	"github.com/purnachandra9816-del/Smart-Helpdesk-with-Agentic-Triage/internal/domain"
	"github.com/purnachandra9816-del/Smart-Helpdesk-with-Agentic-Triage/internal/kb"
	"github.com/purnachandra9816-del/Smart-Helpdesk-with-Agentic-Triage/internal/repository"
	"github.com/purnachandra9816-del/Smart-Helpdesk-with-Agentic-Triage/internal/service"
	apperrors "github.com/purnachandra9816-del/Smart-Helpdesk-with-Agentic-Triage/pkg/util/errorutil"
)

// KBHandler manages knowledge-base endpoints.
type KBHandler struct {
	admin     *service.KBAdminService
	knowledge *kb.Service
}

// NewKBHandler constructs handler.
func NewKBHandler(admin *service.KBAdminService, knowledge *kb.Service) *KBHandler {
	return &KBHandler{admin: admin, knowledge: knowledge}
}

// ListArticles GET /api/kb.
func (h *KBHandler) ListArticles(c *fiber.Ctx) error {
	filter := repository.ArticleFilter{
		Limit:  parseIntQuery(c, "limit", 20),
		Offset: parseIntQuery(c, "offset", 0),
	}
	if raw := c.Query("status"); raw != "" {
		status := domain.ArticleStatus(raw)
		filter.Status = &status
	}
	if raw := c.Query("category"); raw != "" {
		category := domain.TicketCategory(raw)
		filter.Category = &category
	}
	articles, err := h.admin.ListArticles(c.Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewArticleList(articles)})
}

// SearchArticles GET /api/kb/search.
func (h *KBHandler) SearchArticles(c *fiber.Ctx) error {
	query := c.Query("query")
	if query == "" {
		return apperrors.NewValidationError("query required", nil)
	}
	var category *domain.TicketCategory
	if raw := c.Query("category"); raw != "" {
		cat := domain.TicketCategory(raw)
		category = &cat
	}
	articles, err := h.knowledge.SearchArticles(c.Context(), query, category, parseIntQuery(c, "limit", 10))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewArticleList(articles)})
}

// GetArticle GET /api/kb/:id.
func (h *KBHandler) GetArticle(c *fiber.Ctx) error {
	article, err := h.admin.GetArticle(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewArticleResponse(article)})
}

// CreateArticle POST /api/kb.
func (h *KBHandler) CreateArticle(c *fiber.Ctx) error {
	var req dto.ArticleRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	article, err := h.admin.CreateArticle(c.Context(), service.ArticleInput{
		Title:    req.Title,
		Body:     req.Body,
		Tags:     req.Tags,
		Category: req.Category,
		Status:   req.Status,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewArticleResponse(article)})
}

// UpdateArticle PUT /api/kb/:id.
func (h *KBHandler) UpdateArticle(c *fiber.Ctx) error {
	var req dto.ArticleRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	article, err := h.admin.UpdateArticle(c.Context(), c.Params("id"), service.ArticleInput{
		Title:    req.Title,
		Body:     req.Body,
		Tags:     req.Tags,
		Category: req.Category,
		Status:   req.Status,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewArticleResponse(article)})
}

// DeleteArticle DELETE /api/kb/:id.
func (h *KBHandler) DeleteArticle(c *fiber.Ctx) error {
	if err := h.admin.DeleteArticle(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
