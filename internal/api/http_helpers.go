package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/platewise/internal/models"
	"github.com/terraincognita07/platewise/internal/services"
)

func apiError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": message})
}

func parseDayParam(raw string) (models.DayKey, error) {
	return models.ParseDayKey(raw)
}

// serviceError maps service failures to a status and a reason the user can act on.
func (handler *Handler) serviceError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, services.ErrInvalidMealName):
		return apiError(c, fiber.StatusBadRequest, "meal name is required")
	case errors.Is(err, services.ErrMealNameTooLong):
		return apiError(c, fiber.StatusBadRequest, "meal name is too long")
	case errors.Is(err, services.ErrInvalidFoodName):
		return apiError(c, fiber.StatusBadRequest, "food name is required")
	case errors.Is(err, services.ErrInvalidFoodAmount):
		return apiError(c, fiber.StatusBadRequest, "food amounts must be non-negative numbers")
	case errors.Is(err, services.ErrInvalidTarget):
		return apiError(c, fiber.StatusBadRequest, "targets must be non-negative numbers")
	case errors.Is(err, services.ErrInvalidDay):
		return apiError(c, fiber.StatusBadRequest, "invalid date")
	case errors.Is(err, services.ErrValidation):
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	case errors.Is(err, services.ErrDuplicateMealName):
		return apiError(c, fiber.StatusConflict, "a meal with this name already exists")
	case errors.Is(err, services.ErrSystemMealLocked):
		return apiError(c, fiber.StatusForbidden, "system meals cannot be renamed or deleted")
	case errors.Is(err, services.ErrMealNotFound):
		return apiError(c, fiber.StatusNotFound, "meal not found")
	case errors.Is(err, services.ErrFoodNotFound):
		return apiError(c, fiber.StatusNotFound, "food not found")
	case errors.Is(err, services.ErrStoreUnavailable):
		handler.logger.Warn().Err(err).Str("path", c.Path()).Msg("store unavailable")
		return apiError(c, fiber.StatusServiceUnavailable, "storage unavailable")
	default:
		handler.logger.Error().Err(err).Str("path", c.Path()).Msg(fallback)
		return apiError(c, fiber.StatusInternalServerError, fallback)
	}
}
