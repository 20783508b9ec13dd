package services

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/terraincognita07/platewise/internal/metrics"
	"github.com/terraincognita07/platewise/internal/models"
	"github.com/terraincognita07/platewise/internal/store"
)

const (
	viewDayMeals = "day_meals"
	viewSummary  = "summary"
)

type DayMealsReader interface {
	EnsureDefaultMeals(ctx context.Context, userID string, day models.DayKey) error
	ListMeals(ctx context.Context, userID string, day models.DayKey) ([]models.MealWithFoods, error)
}

type SummaryReader interface {
	Summary(ctx context.Context, userID string, day models.DayKey) (models.Summary, bool, error)
}

type LiveQueryService struct {
	changes   ChangeWatcher
	meals     DayMealsReader
	summaries SummaryReader
	logger    zerolog.Logger
}

func NewLiveQueryService(changes ChangeWatcher, meals DayMealsReader, summaries SummaryReader, logger zerolog.Logger) *LiveQueryService {
	return &LiveQueryService{
		changes:   changes,
		meals:     meals,
		summaries: summaries,
		logger:    logger,
	}
}

// WatchDayMeals emits the day's meals with their foods after every change to a
// meal or food of that day. Default meals are ensured before the first
// snapshot and again on each change.
func (service *LiveQueryService) WatchDayMeals(ctx context.Context, userID string, day models.DayKey) (*Subscription[[]models.MealWithFoods], error) {
	if err := validateDayScope(userID, day); err != nil {
		return nil, err
	}
	if err := service.meals.EnsureDefaultMeals(ctx, userID, day); err != nil {
		return nil, err
	}

	load := func(ctx context.Context) ([]models.MealWithFoods, error) {
		if err := service.meals.EnsureDefaultMeals(ctx, userID, day); err != nil {
			return nil, err
		}
		return service.meals.ListMeals(ctx, userID, day)
	}
	watcher := service.changes.Watch(store.MealsCollection(userID, day.String()))
	return startLiveQuery(ctx, service.logger, viewDayMeals, userID, day, watcher, load), nil
}

// WatchSummary emits the day's summary after every summary write. The first
// snapshot has Exists=false when no summary has been written yet.
func (service *LiveQueryService) WatchSummary(ctx context.Context, userID string, day models.DayKey) (*Subscription[models.SummarySnapshot], error) {
	if err := validateDayScope(userID, day); err != nil {
		return nil, err
	}

	load := func(ctx context.Context) (models.SummarySnapshot, error) {
		summary, found, err := service.summaries.Summary(ctx, userID, day)
		if err != nil {
			return models.SummarySnapshot{}, err
		}
		return models.SummarySnapshot{Summary: summary, Exists: found}, nil
	}
	watcher := service.changes.Watch(store.SummaryPath(userID, day.String()))
	return startLiveQuery(ctx, service.logger, viewSummary, userID, day, watcher, load), nil
}

// startLiveQuery subscribes before the first load so no change between the
// load and the first wait is missed.
func startLiveQuery[T any](
	parent context.Context,
	logger zerolog.Logger,
	view string,
	userID string,
	day models.DayKey,
	watcher *store.Watcher,
	load func(context.Context) (T, error),
) *Subscription[T] {
	ctx, cancel := context.WithCancel(parent)
	subscription := newSubscription[T](cancel)
	gauge := metrics.LiveSubscriptions.WithLabelValues(view)
	gauge.Inc()

	go func() {
		defer subscription.finish()
		defer gauge.Dec()
		defer watcher.Cancel()
		defer cancel()

		for {
			snapshot, err := load(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				logger.Warn().Err(err).Str("view", view).Str("user_id", userID).Str("day", day.String()).Msg("live query load failed")
			} else {
				subscription.publish(snapshot)
			}

			select {
			case <-ctx.Done():
				return
			case _, ok := <-watcher.Events():
				if !ok {
					return
				}
			}
		}
	}()
	return subscription
}
