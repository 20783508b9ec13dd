package services

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/terraincognita07/platewise/internal/models"
	"github.com/terraincognita07/platewise/internal/store"
)

type TargetService struct {
	documents DocumentStore
	logger    zerolog.Logger
}

func NewTargetService(documents DocumentStore, logger zerolog.Logger) *TargetService {
	return &TargetService{
		documents: documents,
		logger:    logger,
	}
}

// Target reads the user's nutrition target. found is false when the document
// does not exist; absent or non-numeric fields read as undefined.
func (service *TargetService) Target(ctx context.Context, userID string) (models.NutritionTarget, bool, error) {
	if err := validateUserID(userID); err != nil {
		return models.NutritionTarget{}, false, err
	}

	document, err := service.documents.Get(ctx, store.TargetPath(userID))
	if err != nil {
		if isStoreNotFound(err) {
			return models.NutritionTarget{}, false, nil
		}
		return models.NutritionTarget{}, false, storeFailure(err)
	}
	return decodeTarget(document), true, nil
}

// SetTarget stores the target, deriving any macro left unset from the calories.
func (service *TargetService) SetTarget(ctx context.Context, userID string, target models.NutritionTarget) (models.NutritionTarget, error) {
	if err := validateUserID(userID); err != nil {
		return models.NutritionTarget{}, err
	}
	for _, value := range []float64{target.DailyCalorieTarget, target.ProteinTargetGrams, target.CarbsTargetGrams, target.FatTargetGrams} {
		if !isValidQuantity(value) {
			return models.NutritionTarget{}, ErrInvalidTarget
		}
	}

	if target.HasCalories() {
		derived := DeriveMacroTargets(target.DailyCalorieTarget)
		if target.ProteinTargetGrams <= 0 {
			target.ProteinTargetGrams = derived.ProteinTargetGrams
		}
		if target.CarbsTargetGrams <= 0 {
			target.CarbsTargetGrams = derived.CarbsTargetGrams
		}
		if target.FatTargetGrams <= 0 {
			target.FatTargetGrams = derived.FatTargetGrams
		}
	}

	if err := service.documents.Set(ctx, store.TargetPath(userID), targetFields(target), false); err != nil {
		return models.NutritionTarget{}, storeFailure(err)
	}
	service.logger.Debug().Str("user_id", userID).Float64("calories", target.DailyCalorieTarget).Msg("stored nutrition target")
	return target, nil
}

// DeriveMacroTargets splits calories 30/40/30 across protein, carbs and fat.
func DeriveMacroTargets(calories float64) models.NutritionTarget {
	if !(calories > 0) {
		return models.NutritionTarget{}
	}
	return models.NutritionTarget{
		DailyCalorieTarget: calories,
		ProteinTargetGrams: calories * models.ProteinCalorieShare / models.ProteinCaloriesPerGram,
		CarbsTargetGrams:   calories * models.CarbsCalorieShare / models.CarbsCaloriesPerGram,
		FatTargetGrams:     calories * models.FatCalorieShare / models.FatCaloriesPerGram,
	}
}
