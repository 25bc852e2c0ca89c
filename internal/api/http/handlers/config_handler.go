package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/purnachandra9816-del/Smart-Helpdesk-with-Agentic-Triage/internal/api/dto"
	"github.com/purnachandra9816-del/Smart-Helpdesk-with-Agentic-Triage/internal/repository"
	apperrors "github.com/purnachandra9816-del/Smart-Helpdesk-with-Agentic-Triage/pkg/util/errorutil"
)

// ConfigHandler manages the triage settings endpoints.
type ConfigHandler struct {
	settings repository.SettingsRepository
}

// NewConfigHandler constructs handler.
func NewConfigHandler(settings repository.SettingsRepository) *ConfigHandler {
	return &ConfigHandler{settings: settings}
}

// GetSettings GET /api/config.
func (h *ConfigHandler) GetSettings(c *fiber.Ctx) error {
	settings, err := h.settings.GetOrDefault(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTriageSettingsResponse(settings)})
}

// UpdateSettings PUT /api/config.
func (h *ConfigHandler) UpdateSettings(c *fiber.Ctx) error {
	var req dto.TriageSettingsRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	settings, err := h.settings.GetOrDefault(c.Context())
	if err != nil {
		return err
	}
	if req.AutoCloseEnabled != nil {
		settings.AutoCloseEnabled = *req.AutoCloseEnabled
	}
	if req.ConfidenceThreshold != nil {
		if *req.ConfidenceThreshold < 0 || *req.ConfidenceThreshold > 1 {
			return apperrors.NewValidationError("confidence_threshold must be within [0,1]", nil)
		}
		settings.ConfidenceThreshold = *req.ConfidenceThreshold
	}
	if req.CategoryThresholds != nil {
		for category, threshold := range req.CategoryThresholds {
			if threshold < 0 || threshold > 1 {
				return apperrors.NewValidationError("category threshold must be within [0,1]", map[string]any{
					"category": category,
				})
			}
		}
		settings.CategoryThresholds = req.CategoryThresholds
	}
	if req.SLAHours != nil {
		if *req.SLAHours <= 0 {
			return apperrors.NewValidationError("sla_hours must be positive", nil)
		}
		settings.SLAHours = *req.SLAHours
	}

	updated, err := h.settings.Update(c.Context(), settings)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTriageSettingsResponse(updated)})
}
