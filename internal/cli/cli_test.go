package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/terraincognita07/platewise/internal/auth"
	"github.com/terraincognita07/platewise/internal/models"
	"github.com/terraincognita07/platewise/internal/services"
	"github.com/terraincognita07/platewise/internal/store"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestRunIssueTokenCommand(t *testing.T) {
	var output bytes.Buffer
	if err := RunIssueTokenCommand(testSecret, time.Hour, []string{"-user", "user-7"}, &output); err != nil {
		t.Fatalf("RunIssueTokenCommand() unexpected error: %v", err)
	}

	issuer, err := auth.NewIssuer(testSecret, time.Hour)
	if err != nil {
		t.Fatalf("NewIssuer() unexpected error: %v", err)
	}
	userID, err := issuer.Parse(output.String())
	if err != nil {
		t.Fatalf("expected printed token to parse, got %v", err)
	}
	if userID != "user-7" {
		t.Fatalf("expected subject user-7, got %q", userID)
	}

	if err := RunIssueTokenCommand(testSecret, time.Hour, nil, &output); err == nil {
		t.Fatal("expected missing -user to fail")
	}
	if err := RunIssueTokenCommand("short", time.Hour, []string{"-user", "user-7"}, &output); err == nil {
		t.Fatal("expected weak secret to fail")
	}
	if err := RunIssueTokenCommand(testSecret, time.Hour, []string{"-unknown"}, &output); err == nil {
		t.Fatal("expected unknown flag to fail")
	}
}

func TestRunGenerateSecretCommand(t *testing.T) {
	var output bytes.Buffer
	if err := RunGenerateSecretCommand(&output); err != nil {
		t.Fatalf("RunGenerateSecretCommand() unexpected error: %v", err)
	}
	if err := auth.ValidateSecret(strings.TrimSpace(output.String())); err != nil {
		t.Fatalf("expected generated secret to validate, got %v", err)
	}
}

func TestRunRecomputeCommandRebuildsSummaries(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "platewise-cli.db")

	database, err := store.OpenSQLite(dbPath, zerolog.Nop())
	if err != nil {
		t.Fatalf("OpenSQLite() unexpected error: %v", err)
	}
	documents := store.New(database)
	meals := services.NewMealService(documents, noopRefresher{}, zerolog.Nop())
	foods := services.NewFoodService(documents, noopRefresher{}, zerolog.Nop())

	days := []models.DayKey{"2025-03-01", "2025-03-02"}
	for index, day := range days {
		if err := meals.EnsureDefaultMeals(ctx, "user-7", day); err != nil {
			t.Fatalf("EnsureDefaultMeals() unexpected error: %v", err)
		}
		if _, err := foods.AddFood(ctx, "user-7", day, models.SystemMealDinner, services.FoodInput{
			Name:     "Stew",
			Calories: float64(400 + index*100),
			Amount:   1,
			Unit:     "bowl",
		}); err != nil {
			t.Fatalf("AddFood() unexpected error: %v", err)
		}
	}
	sqlDB, err := database.DB()
	if err != nil {
		t.Fatalf("database.DB() unexpected error: %v", err)
	}
	_ = sqlDB.Close()

	var output bytes.Buffer
	if err := RunRecomputeCommand(ctx, dbPath, "user-7", &output, zerolog.Nop()); err != nil {
		t.Fatalf("RunRecomputeCommand() unexpected error: %v", err)
	}
	text := output.String()
	for _, want := range []string{"2025-03-01\t400.0 kcal", "2025-03-02\t500.0 kcal", "recomputed 2 days (0 with malformed entries)"} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected output to contain %q, got %q", want, text)
		}
	}

	if err := RunRecomputeCommand(ctx, dbPath, " ", &output, zerolog.Nop()); err == nil {
		t.Fatal("expected empty user id to fail")
	}
}

type noopRefresher struct{}

func (noopRefresher) RefreshSummary(context.Context, string, models.DayKey) {}
