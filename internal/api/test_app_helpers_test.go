package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/terraincognita07/platewise/internal/auth"
	"github.com/terraincognita07/platewise/internal/metrics"
	"github.com/terraincognita07/platewise/internal/services"
	"github.com/terraincognita07/platewise/internal/store"
)

const (
	testSecret = "0123456789abcdef0123456789abcdef"
	testUserID = "user-1"
	testDate   = "2025-03-05"
)

type testApp struct {
	app       *fiber.App
	token     string
	meals     *services.MealService
	lifecycle context.CancelFunc
	closeDB   func()
}

func newTestApp(t *testing.T) testApp {
	t.Helper()

	database, err := store.OpenSQLite(filepath.Join(t.TempDir(), "platewise-api-test.db"), zerolog.Nop())
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := database.DB()
	if err != nil {
		t.Fatalf("open sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	logger := zerolog.Nop()
	documents := store.New(database)
	aggregation := services.NewAggregationService(documents, services.NewPendingDays(), logger)
	meals := services.NewMealService(documents, aggregation, logger)
	targets := services.NewTargetService(documents, logger)

	issuer, err := auth.NewIssuer(testSecret, time.Hour)
	if err != nil {
		t.Fatalf("init issuer: %v", err)
	}
	token, err := issuer.Issue(testUserID)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	registry := prometheus.NewRegistry()
	metrics.MustRegister(registry)

	lifecycle, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	handler, err := NewHandler(Dependencies{
		Meals:     meals,
		Foods:     services.NewFoodService(documents, aggregation, logger),
		Summaries: aggregation,
		Live:      services.NewLiveQueryService(documents, meals, aggregation, logger),
		Targets:   targets,
		Scores:    services.NewScoringService(targets, aggregation),
		Tokens:    issuer,
		Lifecycle: lifecycle,
		Gatherer:  registry,
		Logger:    logger,
		Location:  time.UTC,
		Now: func() time.Time {
			return time.Date(2025, time.March, 5, 12, 0, 0, 0, time.UTC)
		},
	})
	if err != nil {
		t.Fatalf("init handler: %v", err)
	}

	app := fiber.New()
	RegisterRoutes(app, handler)
	app.Use(handler.NotFound)

	return testApp{
		app:       app,
		token:     token,
		meals:     meals,
		lifecycle: cancel,
		closeDB:   func() { _ = sqlDB.Close() },
	}
}

func (fixture testApp) request(t *testing.T, method string, path string, body any) *http.Response {
	t.Helper()
	return fixture.requestWithToken(t, method, path, body, fixture.token)
}

func (fixture testApp) requestWithToken(t *testing.T, method string, path string, body any, token string) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("encode request body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	}

	request := httptest.NewRequest(method, path, reader)
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}

	response, err := fixture.app.Test(request, -1)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	return response
}

func decodeJSON[T any](t *testing.T, response *http.Response) T {
	t.Helper()
	defer response.Body.Close()

	var payload T
	if err := json.NewDecoder(response.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response body: %v", err)
	}
	return payload
}

func readAPIError(t *testing.T, response *http.Response) string {
	t.Helper()
	return decodeJSON[map[string]string](t, response)["error"]
}

func expectStatus(t *testing.T, response *http.Response, want int) {
	t.Helper()
	if response.StatusCode != want {
		body, _ := io.ReadAll(response.Body)
		t.Fatalf("expected status %d, got %d: %s", want, response.StatusCode, body)
	}
}
