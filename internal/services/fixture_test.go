package services

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/terraincognita07/platewise/internal/models"
	"github.com/terraincognita07/platewise/internal/store"
)

const (
	testUserID = "user-1"
	testDay    = models.DayKey("2025-03-05")
)

type serviceFixture struct {
	documents   *flakyStore
	pending     *PendingDays
	aggregation *AggregationService
	meals       *MealService
	foods       *FoodService
	targets     *TargetService
	live        *LiveQueryService
	scoring     *ScoringService
	reconciler  *Reconciler
	closeDB     func()
}

func newServiceFixture(t *testing.T) serviceFixture {
	t.Helper()

	database, err := store.OpenSQLite(filepath.Join(t.TempDir(), "platewise-services.db"), zerolog.Nop())
	if err != nil {
		t.Fatalf("OpenSQLite() unexpected error: %v", err)
	}
	sqlDB, err := database.DB()
	if err != nil {
		t.Fatalf("database.DB() unexpected error: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })

	documents := &flakyStore{Store: store.New(database)}
	logger := zerolog.Nop()
	pending := NewPendingDays()
	aggregation := NewAggregationService(documents, pending, logger)
	meals := NewMealService(documents, aggregation, logger)
	targets := NewTargetService(documents, logger)

	return serviceFixture{
		documents:   documents,
		pending:     pending,
		aggregation: aggregation,
		meals:       meals,
		foods:       NewFoodService(documents, aggregation, logger),
		targets:     targets,
		live:        NewLiveQueryService(documents, meals, aggregation, logger),
		scoring:     NewScoringService(targets, aggregation),
		reconciler:  NewReconciler(aggregation, pending, logger),
		closeDB:     func() { _ = sqlDB.Close() },
	}
}

// flakyStore fails writes to the summary document while failSummaries is set.
type flakyStore struct {
	*store.Store

	mu            sync.Mutex
	failSummaries bool
}

func (documents *flakyStore) setFailSummaries(fail bool) {
	documents.mu.Lock()
	defer documents.mu.Unlock()
	documents.failSummaries = fail
}

func (documents *flakyStore) Set(ctx context.Context, path string, fields store.Fields, merge bool) error {
	documents.mu.Lock()
	fail := documents.failSummaries
	documents.mu.Unlock()

	if fail && strings.HasSuffix(path, "/summary/totals") {
		return fmt.Errorf("%w: connection reset", store.ErrUnavailable)
	}
	return documents.Store.Set(ctx, path, fields, merge)
}

func (fixture serviceFixture) addFood(t *testing.T, day models.DayKey, mealID string, name string, calories float64) string {
	t.Helper()

	foodID, err := fixture.foods.AddFood(context.Background(), testUserID, day, mealID, FoodInput{
		Name:     name,
		Calories: calories,
		Amount:   100,
		Unit:     "g",
		Protein:  calories / 20,
		Carbs:    calories / 10,
		Fat:      calories / 40,
	})
	if err != nil {
		t.Fatalf("AddFood(%q) unexpected error: %v", name, err)
	}
	return foodID
}

// deletingStore removes the target of every update write right before the
// write is applied, as a concurrent delete between check and write would.
type deletingStore struct {
	DocumentStore
	deleter *store.Store
}

func (documents deletingStore) Batch(ctx context.Context, writes []store.Write) error {
	for _, write := range writes {
		if write.Op == store.OpUpdate {
			if err := documents.deleter.Delete(ctx, write.Path); err != nil {
				return err
			}
		}
	}
	return documents.DocumentStore.Batch(ctx, writes)
}

func stringPtr(value string) *string {
	return &value
}

func waitForUpdate[T any](t *testing.T, subscription *Subscription[T], accept func(T) bool) T {
	t.Helper()

	timeout := time.After(5 * time.Second)
	for {
		select {
		case value, ok := <-subscription.Updates():
			if !ok {
				t.Fatal("subscription closed before expected update")
			}
			if accept(value) {
				return value
			}
		case <-timeout:
			t.Fatal("timed out waiting for subscription update")
		}
	}
}

func almostEqual(left float64, right float64) bool {
	return math.Abs(left-right) < 1e-9
}
