package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/platewise/internal/models"
)

func (handler *Handler) GetTargets(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	target, found, err := handler.targets.Target(c.UserContext(), userID)
	if err != nil {
		return handler.serviceError(c, err, "failed to fetch targets")
	}
	return c.JSON(fiber.Map{"exists": found, "target": target})
}

func (handler *Handler) PutTargets(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	payload := models.NutritionTarget{}
	if err := c.BodyParser(&payload); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid payload")
	}

	target, err := handler.targets.SetTarget(c.UserContext(), userID, payload)
	if err != nil {
		return handler.serviceError(c, err, "failed to save targets")
	}
	return c.JSON(fiber.Map{"exists": true, "target": target})
}
