package api

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/terraincognita07/platewise/internal/models"
	"github.com/terraincognita07/platewise/internal/services"
)

const defaultStreamHeartbeat = 15 * time.Second

type MealManager interface {
	EnsureDefaultMeals(ctx context.Context, userID string, day models.DayKey) error
	CreateCustomMeal(ctx context.Context, userID string, day models.DayKey, name string) (string, error)
	RenameMeal(ctx context.Context, userID string, day models.DayKey, mealID string, newName string) error
	DeleteMeal(ctx context.Context, userID string, day models.DayKey, mealID string) error
	ListMeals(ctx context.Context, userID string, day models.DayKey) ([]models.MealWithFoods, error)
}

type FoodManager interface {
	AddFood(ctx context.Context, userID string, day models.DayKey, mealID string, input services.FoodInput) (string, error)
	UpdateFood(ctx context.Context, userID string, day models.DayKey, mealID string, foodID string, update services.FoodUpdate) error
	DeleteFood(ctx context.Context, userID string, day models.DayKey, mealID string, foodID string) error
}

type SummaryReader interface {
	Summary(ctx context.Context, userID string, day models.DayKey) (models.Summary, bool, error)
}

type LiveQueries interface {
	WatchDayMeals(ctx context.Context, userID string, day models.DayKey) (*services.Subscription[[]models.MealWithFoods], error)
	WatchSummary(ctx context.Context, userID string, day models.DayKey) (*services.Subscription[models.SummarySnapshot], error)
}

type TargetManager interface {
	Target(ctx context.Context, userID string) (models.NutritionTarget, bool, error)
	SetTarget(ctx context.Context, userID string, target models.NutritionTarget) (models.NutritionTarget, error)
}

type Scorer interface {
	ScoreDay(ctx context.Context, userID string, day models.DayKey) (services.DayScore, error)
	ScoreWeek(ctx context.Context, userID string, weekStart models.DayKey, today models.DayKey) (services.WeekScore, error)
}

type TokenParser interface {
	Parse(raw string) (string, error)
}

type Dependencies struct {
	Meals     MealManager
	Foods     FoodManager
	Summaries SummaryReader
	Live      LiveQueries
	Targets   TargetManager
	Scores    Scorer
	Tokens    TokenParser

	// Lifecycle ends open event streams when cancelled.
	Lifecycle context.Context
	Gatherer  prometheus.Gatherer
	Logger    zerolog.Logger
	Location  *time.Location
	Now       func() time.Time
}

type Handler struct {
	meals     MealManager
	foods     FoodManager
	summaries SummaryReader
	live      LiveQueries
	targets   TargetManager
	scores    Scorer
	tokens    TokenParser

	lifecycle       context.Context
	gatherer        prometheus.Gatherer
	logger          zerolog.Logger
	location        *time.Location
	now             func() time.Time
	streamHeartbeat time.Duration
}

func NewHandler(deps Dependencies) (*Handler, error) {
	if deps.Meals == nil || deps.Foods == nil || deps.Summaries == nil || deps.Live == nil ||
		deps.Targets == nil || deps.Scores == nil || deps.Tokens == nil {
		return nil, errors.New("api handler requires every service dependency")
	}

	handler := &Handler{
		meals:           deps.Meals,
		foods:           deps.Foods,
		summaries:       deps.Summaries,
		live:            deps.Live,
		targets:         deps.Targets,
		scores:          deps.Scores,
		tokens:          deps.Tokens,
		lifecycle:       deps.Lifecycle,
		gatherer:        deps.Gatherer,
		logger:          deps.Logger,
		location:        deps.Location,
		now:             deps.Now,
		streamHeartbeat: defaultStreamHeartbeat,
	}
	if handler.lifecycle == nil {
		handler.lifecycle = context.Background()
	}
	if handler.gatherer == nil {
		handler.gatherer = prometheus.DefaultGatherer
	}
	if handler.location == nil {
		handler.location = time.UTC
	}
	if handler.now == nil {
		handler.now = time.Now
	}
	return handler, nil
}

func (handler *Handler) today() models.DayKey {
	return services.DayKeyAt(handler.now(), handler.location)
}
