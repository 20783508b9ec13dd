package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
	"github.com/terraincognita07/platewise/internal/services"
	"github.com/terraincognita07/platewise/internal/store"
)

// RunRecomputeCommand rebuilds the summary of every day the user has logged.
func RunRecomputeCommand(ctx context.Context, dbPath string, userID string, stdout io.Writer, logger zerolog.Logger) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return errors.New("user id is required (-user)")
	}

	database, err := store.OpenSQLite(dbPath, logger)
	if err != nil {
		return fmt.Errorf("database init failed: %w", err)
	}
	sqlDB, err := database.DB()
	if err == nil {
		defer sqlDB.Close()
	}

	documents := store.New(database, store.WithLogger(logger))
	aggregation := services.NewAggregationService(documents, nil, logger)
	meals := services.NewMealService(documents, aggregation, logger)

	days, err := meals.ActiveDays(ctx, userID)
	if err != nil {
		return fmt.Errorf("list days: %w", err)
	}

	partial := 0
	for _, day := range days {
		summary, err := aggregation.RecomputeSummary(ctx, userID, day)
		var partialErr *services.PartialAggregationError
		switch {
		case errors.As(err, &partialErr):
			partial++
			logger.Warn().Err(err).Str("day", day.String()).Msg("summary rebuilt with malformed entries")
		case err != nil:
			return fmt.Errorf("recompute %s: %w", day, err)
		}
		if _, err := fmt.Fprintf(stdout, "%s\t%.1f kcal\n", day, summary.TotalCalories); err != nil {
			return err
		}
	}

	_, err = fmt.Fprintf(stdout, "recomputed %d days (%d with malformed entries)\n", len(days), partial)
	return err
}
