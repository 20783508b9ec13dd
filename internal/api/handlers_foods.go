package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/platewise/internal/services"
)

func (handler *Handler) AddFood(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	day, err := parseDayParam(c.Params("date"))
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid date")
	}

	payload := foodPayload{}
	if err := c.BodyParser(&payload); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid payload")
	}

	foodID, err := handler.foods.AddFood(c.UserContext(), userID, day, c.Params("mealID"), payload.input())
	if err != nil {
		return handler.serviceError(c, err, "failed to add food")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": foodID})
}

func (handler *Handler) UpdateFood(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	day, err := parseDayParam(c.Params("date"))
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid date")
	}

	payload := foodUpdatePayload{}
	if err := c.BodyParser(&payload); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid payload")
	}
	if payload.Amount == nil {
		return apiError(c, fiber.StatusBadRequest, "amount is required")
	}

	update := services.FoodUpdate{
		Amount:    *payload.Amount,
		Unit:      payload.Unit,
		Nutrition: payload.Nutrition,
	}
	if err := handler.foods.UpdateFood(c.UserContext(), userID, day, c.Params("mealID"), c.Params("foodID"), update); err != nil {
		return handler.serviceError(c, err, "failed to update food")
	}
	return c.JSON(fiber.Map{"ok": true})
}

func (handler *Handler) DeleteFood(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	day, err := parseDayParam(c.Params("date"))
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid date")
	}

	if err := handler.foods.DeleteFood(c.UserContext(), userID, day, c.Params("mealID"), c.Params("foodID")); err != nil {
		return handler.serviceError(c, err, "failed to delete food")
	}
	return c.SendStatus(fiber.StatusNoContent)
}
