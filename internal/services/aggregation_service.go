package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/terraincognita07/platewise/internal/metrics"
	"github.com/terraincognita07/platewise/internal/models"
	"github.com/terraincognita07/platewise/internal/store"
)

type AggregationService struct {
	documents DocumentStore
	pending   *PendingDays
	logger    zerolog.Logger
}

func NewAggregationService(documents DocumentStore, pending *PendingDays, logger zerolog.Logger) *AggregationService {
	return &AggregationService{
		documents: documents,
		pending:   pending,
		logger:    logger,
	}
}

// RecomputeSummary sums every food entry of the day and merge-writes the
// summary. Reads are not isolated from concurrent writers; a stale result is
// corrected by the next recompute. Malformed entries count as zero and are
// reported through *PartialAggregationError after the summary is written.
func (service *AggregationService) RecomputeSummary(ctx context.Context, userID string, day models.DayKey) (models.Summary, error) {
	if err := validateDayScope(userID, day); err != nil {
		return models.Summary{}, err
	}

	started := time.Now()
	defer func() {
		metrics.SummaryRecomputeSeconds.Observe(time.Since(started).Seconds())
	}()

	summary, partial, err := service.aggregate(ctx, userID, day)
	if err != nil {
		metrics.SummaryRecomputeTotal.WithLabelValues("unavailable").Inc()
		return models.Summary{}, err
	}

	if err := service.documents.Set(ctx, store.SummaryPath(userID, day.String()), summaryFields(summary), true); err != nil {
		metrics.SummaryRecomputeTotal.WithLabelValues("unavailable").Inc()
		return models.Summary{}, storeFailure(err)
	}

	if partial != nil {
		metrics.SummaryRecomputeTotal.WithLabelValues("partial").Inc()
		metrics.MalformedEntriesTotal.Add(float64(len(partial.Entries)))
		return summary, partial
	}
	metrics.SummaryRecomputeTotal.WithLabelValues("ok").Inc()
	return summary, nil
}

func (service *AggregationService) aggregate(ctx context.Context, userID string, day models.DayKey) (models.Summary, *PartialAggregationError, error) {
	meals, err := service.documents.List(ctx, store.MealsCollection(userID, day.String()))
	if err != nil {
		return models.Summary{}, nil, storeFailure(err)
	}

	summary := models.Summary{
		Day:          day,
		MealCalories: make(map[string]float64, len(meals)),
	}
	malformed := make([]MalformedEntry, 0)
	for _, meal := range meals {
		mealID := meal.ID()
		foods, err := service.documents.List(ctx, store.FoodsCollection(userID, day.String(), mealID))
		if err != nil {
			return models.Summary{}, nil, storeFailure(err)
		}

		subtotal := 0.0
		for _, food := range foods {
			entry, fields := decodeFood(mealID, food)
			if len(fields) > 0 {
				malformed = append(malformed, MalformedEntry{MealID: mealID, FoodID: entry.ID, Fields: fields})
			}
			subtotal += entry.Calories
			summary.TotalCalories += entry.Calories
			summary.TotalProtein += entry.Protein
			summary.TotalCarbs += entry.Carbs
			summary.TotalFat += entry.Fat
		}
		summary.MealCalories[mealID] = subtotal
	}

	if len(malformed) == 0 {
		return summary, nil, nil
	}
	return summary, &PartialAggregationError{UserID: userID, Day: day, Entries: malformed}, nil
}

// RefreshSummary is the best-effort recompute run after a successful write.
// Failures are logged and the day is queued for the reconciler.
func (service *AggregationService) RefreshSummary(ctx context.Context, userID string, day models.DayKey) {
	_, err := service.RecomputeSummary(context.WithoutCancel(ctx), userID, day)
	if err == nil {
		return
	}

	var partial *PartialAggregationError
	if errors.As(err, &partial) {
		service.logger.Warn().Err(err).Str("user_id", userID).Str("day", day.String()).Int("malformed", len(partial.Entries)).Msg("summary written with malformed entries")
		return
	}

	service.logger.Warn().Err(err).Str("user_id", userID).Str("day", day.String()).Msg("summary recompute failed; queued for retry")
	if service.pending != nil {
		service.pending.Mark(userID, day)
	}
}

// Summary reads the stored summary. found is false when none has been written.
func (service *AggregationService) Summary(ctx context.Context, userID string, day models.DayKey) (models.Summary, bool, error) {
	if err := validateDayScope(userID, day); err != nil {
		return models.Summary{}, false, err
	}

	document, err := service.documents.Get(ctx, store.SummaryPath(userID, day.String()))
	if err != nil {
		if isStoreNotFound(err) {
			return models.Summary{Day: day, MealCalories: map[string]float64{}}, false, nil
		}
		return models.Summary{}, false, storeFailure(err)
	}
	return decodeSummary(day, document), true, nil
}
