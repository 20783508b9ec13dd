package api

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

func (handler *Handler) GetDayScore(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	day, err := parseDayParam(c.Params("date"))
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid date")
	}

	score, err := handler.scores.ScoreDay(c.UserContext(), userID, day)
	if err != nil {
		return handler.serviceError(c, err, "failed to score day")
	}
	return c.JSON(newDayScoreView(score))
}

// GetWeekScore scores the seven days from :start. The optional today query
// defaults to the current date in the configured time zone.
func (handler *Handler) GetWeekScore(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	start, err := parseDayParam(c.Params("start"))
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid week start")
	}

	today := handler.today()
	if raw := strings.TrimSpace(c.Query("today")); raw != "" {
		today, err = parseDayParam(raw)
		if err != nil {
			return apiError(c, fiber.StatusBadRequest, "invalid today date")
		}
	}

	score, err := handler.scores.ScoreWeek(c.UserContext(), userID, start, today)
	if err != nil {
		return handler.serviceError(c, err, "failed to score week")
	}
	return c.JSON(newWeekScoreView(score))
}
