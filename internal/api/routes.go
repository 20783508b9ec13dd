package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func RegisterRoutes(app *fiber.App, handler *Handler) {
	app.Get("/healthz", handler.Health)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(handler.gatherer, promhttp.HandlerOpts{})))
	registerAPIRoutes(app, handler)
}

func registerAPIRoutes(app *fiber.App, handler *Handler) {
	api := app.Group("/api", handler.AuthRequired)

	days := api.Group("/days/:date")
	days.Get("/meals", handler.GetMeals)
	days.Post("/meals", handler.CreateMeal)
	days.Patch("/meals/:mealID", handler.RenameMeal)
	days.Delete("/meals/:mealID", handler.DeleteMeal)
	days.Post("/meals/:mealID/foods", handler.AddFood)
	days.Patch("/meals/:mealID/foods/:foodID", handler.UpdateFood)
	days.Delete("/meals/:mealID/foods/:foodID", handler.DeleteFood)
	days.Get("/summary", handler.GetSummary)
	days.Get("/stream/meals", handler.StreamMeals)
	days.Get("/stream/summary", handler.StreamSummary)

	targets := api.Group("/targets")
	targets.Get("", handler.GetTargets)
	targets.Put("", handler.PutTargets)

	scores := api.Group("/scores")
	scores.Get("/days/:date", handler.GetDayScore)
	scores.Get("/weeks/:start", handler.GetWeekScore)
}

func (handler *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (handler *Handler) NotFound(c *fiber.Ctx) error {
	return apiError(c, fiber.StatusNotFound, "not found")
}
