package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/terraincognita07/platewise/internal/models"
	"github.com/terraincognita07/platewise/internal/store"
)

var (
	ErrValidation       = errors.New("invalid input")
	ErrNotFound         = errors.New("not found")
	ErrStoreUnavailable = errors.New("store unavailable")
)

var (
	ErrInvalidMealName   = fmt.Errorf("%w: meal name must not be empty", ErrValidation)
	ErrMealNameTooLong   = fmt.Errorf("%w: meal name is too long", ErrValidation)
	ErrInvalidFoodName   = fmt.Errorf("%w: food name must not be empty", ErrValidation)
	ErrInvalidFoodAmount = fmt.Errorf("%w: food amounts must be non-negative numbers", ErrValidation)
	ErrInvalidTarget     = fmt.Errorf("%w: targets must be non-negative numbers", ErrValidation)
	ErrInvalidUserID     = fmt.Errorf("%w: user id is required", ErrValidation)
	ErrInvalidDay        = fmt.Errorf("%w: day must be a yyyy-MM-dd date", ErrValidation)

	ErrDuplicateMealName = errors.New("meal name already exists for this day")
	ErrSystemMealLocked  = errors.New("system meal cannot be renamed or deleted")

	ErrMealNotFound = fmt.Errorf("meal %w", ErrNotFound)
	ErrFoodNotFound = fmt.Errorf("food entry %w", ErrNotFound)
)

type MalformedEntry struct {
	MealID string
	FoodID string
	Fields []string
}

// PartialAggregationError reports entries whose numeric fields were missing or
// unreadable and counted as zero. The summary it accompanies was still written.
type PartialAggregationError struct {
	UserID  string
	Day     models.DayKey
	Entries []MalformedEntry
}

func (err *PartialAggregationError) Error() string {
	parts := make([]string, 0, len(err.Entries))
	for _, entry := range err.Entries {
		parts = append(parts, fmt.Sprintf("%s/%s[%s]", entry.MealID, entry.FoodID, strings.Join(entry.Fields, ",")))
	}
	return fmt.Sprintf("summary for %s defaulted %d malformed entries to zero: %s", err.Day, len(err.Entries), strings.Join(parts, " "))
}

func storeFailure(err error) error {
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}

func isStoreNotFound(err error) bool {
	return errors.Is(err, store.ErrNotFound)
}
