package api

import (
	"bufio"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/platewise/internal/models"
	"github.com/terraincognita07/platewise/internal/services"
	"github.com/valyala/fasthttp"
)

const (
	mealsEvent   = "meals"
	summaryEvent = "summary"
)

// StreamMeals pushes the day's meal list as server-sent events.
func (handler *Handler) StreamMeals(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	day, err := parseDayParam(c.Params("date"))
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid date")
	}

	subscription, err := handler.live.WatchDayMeals(handler.lifecycle, userID, day)
	if err != nil {
		return handler.serviceError(c, err, "failed to watch meals")
	}
	return streamSubscription(handler, c, subscription, mealsEvent, func(meals []models.MealWithFoods) any {
		return newMealViews(meals)
	})
}

// StreamSummary pushes the day's summary as server-sent events.
func (handler *Handler) StreamSummary(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	day, err := parseDayParam(c.Params("date"))
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid date")
	}

	subscription, err := handler.live.WatchSummary(handler.lifecycle, userID, day)
	if err != nil {
		return handler.serviceError(c, err, "failed to watch summary")
	}
	return streamSubscription(handler, c, subscription, summaryEvent, func(snapshot models.SummarySnapshot) any {
		return newSummaryView(snapshot)
	})
}

// streamSubscription writes snapshots until the subscription closes, a write
// to the client fails or the handler lifecycle ends. Heartbeats surface
// disconnected clients between snapshots.
func streamSubscription[T any](handler *Handler, c *fiber.Ctx, subscription *services.Subscription[T], event string, view func(T) any) error {
	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	lifecycle := handler.lifecycle
	heartbeat := handler.streamHeartbeat
	logger := handler.logger

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer subscription.Cancel()

		ticker := time.NewTicker(heartbeat)
		defer ticker.Stop()

		for {
			select {
			case <-lifecycle.Done():
				return
			case value, ok := <-subscription.Updates():
				if !ok {
					return
				}
				if err := writeEvent(w, event, view(value)); err != nil {
					logger.Debug().Err(err).Str("event", event).Msg("event stream closed")
					return
				}
			case <-ticker.C:
				if _, err := w.WriteString(": keepalive\n\n"); err != nil {
					return
				}
				if err := w.Flush(); err != nil {
					return
				}
			}
		}
	}))
	return nil
}

func writeEvent(w *bufio.Writer, event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return err
	}
	return w.Flush()
}
