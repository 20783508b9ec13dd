package api

import (
	"github.com/gofiber/fiber/v2"
)

// GetMeals bootstraps the system meals and returns the day's meal list.
func (handler *Handler) GetMeals(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	day, err := parseDayParam(c.Params("date"))
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid date")
	}

	if err := handler.meals.EnsureDefaultMeals(c.UserContext(), userID, day); err != nil {
		return handler.serviceError(c, err, "failed to prepare meals")
	}
	meals, err := handler.meals.ListMeals(c.UserContext(), userID, day)
	if err != nil {
		return handler.serviceError(c, err, "failed to fetch meals")
	}
	return c.JSON(newMealViews(meals))
}

func (handler *Handler) CreateMeal(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	day, err := parseDayParam(c.Params("date"))
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid date")
	}

	payload := mealPayload{}
	if err := c.BodyParser(&payload); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid payload")
	}

	mealID, err := handler.meals.CreateCustomMeal(c.UserContext(), userID, day, payload.Name)
	if err != nil {
		return handler.serviceError(c, err, "failed to create meal")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": mealID})
}

func (handler *Handler) RenameMeal(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	day, err := parseDayParam(c.Params("date"))
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid date")
	}

	payload := mealPayload{}
	if err := c.BodyParser(&payload); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid payload")
	}

	if err := handler.meals.RenameMeal(c.UserContext(), userID, day, c.Params("mealID"), payload.Name); err != nil {
		return handler.serviceError(c, err, "failed to rename meal")
	}
	return c.JSON(fiber.Map{"ok": true})
}

func (handler *Handler) DeleteMeal(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	day, err := parseDayParam(c.Params("date"))
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid date")
	}

	if err := handler.meals.DeleteMeal(c.UserContext(), userID, day, c.Params("mealID")); err != nil {
		return handler.serviceError(c, err, "failed to delete meal")
	}
	return c.SendStatus(fiber.StatusNoContent)
}
