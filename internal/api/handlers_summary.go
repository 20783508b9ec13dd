package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/platewise/internal/models"
)

func (handler *Handler) GetSummary(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	day, err := parseDayParam(c.Params("date"))
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid date")
	}

	summary, found, err := handler.summaries.Summary(c.UserContext(), userID, day)
	if err != nil {
		return handler.serviceError(c, err, "failed to fetch summary")
	}
	return c.JSON(newSummaryView(models.SummarySnapshot{Summary: summary, Exists: found}))
}
