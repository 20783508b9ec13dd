package services

import (
	"context"
	"math"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/terraincognita07/platewise/internal/metrics"
	"github.com/terraincognita07/platewise/internal/models"
	"github.com/terraincognita07/platewise/internal/store"
)

type FoodInput struct {
	Name     string
	Calories float64
	Amount   float64
	Unit     string
	Protein  float64
	Carbs    float64
	Fat      float64
}

// FoodUpdate changes the consumed amount of an entry in place. Unit and
// Nutrition are written only when set; Nutrition replaces the stored values
// as given, so callers recalculate them for the new amount.
type FoodUpdate struct {
	Amount    float64
	Unit      *string
	Nutrition *models.Nutrition
}

type FoodService struct {
	documents DocumentStore
	summaries SummaryRefresher
	logger    zerolog.Logger
}

func NewFoodService(documents DocumentStore, summaries SummaryRefresher, logger zerolog.Logger) *FoodService {
	return &FoodService{
		documents: documents,
		summaries: summaries,
		logger:    logger,
	}
}

func (service *FoodService) AddFood(ctx context.Context, userID string, day models.DayKey, mealID string, input FoodInput) (string, error) {
	if err := validateDayScope(userID, day); err != nil {
		return "", err
	}
	if !validIdentifier(mealID) {
		return "", ErrMealNotFound
	}
	input, err := NormalizeFoodInput(input)
	if err != nil {
		return "", err
	}
	if err := service.requireMeal(ctx, userID, day, mealID); err != nil {
		return "", err
	}

	foodID := uuid.NewString()
	if err := service.documents.Batch(ctx, []store.Write{
		store.SetWrite(store.FoodPath(userID, day.String(), mealID, foodID), store.Fields{
			fieldName:      input.Name,
			fieldCalories:  input.Calories,
			fieldAmount:    input.Amount,
			fieldUnit:      input.Unit,
			fieldProtein:   input.Protein,
			fieldCarbs:     input.Carbs,
			fieldFat:       input.Fat,
			fieldCreatedAt: store.ServerTimestamp,
		}),
		dayMarkerWrite(userID, day),
	}); err != nil {
		return "", storeFailure(err)
	}

	metrics.MealWritesTotal.WithLabelValues("add_food").Inc()
	service.summaries.RefreshSummary(ctx, userID, day)
	return foodID, nil
}

func (service *FoodService) UpdateFood(ctx context.Context, userID string, day models.DayKey, mealID string, foodID string, update FoodUpdate) error {
	if err := validateDayScope(userID, day); err != nil {
		return err
	}
	if !validIdentifier(mealID) || !validIdentifier(foodID) {
		return ErrFoodNotFound
	}
	if !isValidQuantity(update.Amount) {
		return ErrInvalidFoodAmount
	}
	fields := store.Fields{
		fieldAmount:    update.Amount,
		fieldUpdatedAt: store.ServerTimestamp,
	}
	if update.Unit != nil {
		fields[fieldUnit] = strings.TrimSpace(*update.Unit)
	}
	if update.Nutrition != nil {
		nutrition := *update.Nutrition
		if !isValidNutrition(nutrition) {
			return ErrInvalidFoodAmount
		}
		fields[fieldCalories] = nutrition.Calories
		fields[fieldProtein] = nutrition.Protein
		fields[fieldCarbs] = nutrition.Carbs
		fields[fieldFat] = nutrition.Fat
	}

	path := store.FoodPath(userID, day.String(), mealID, foodID)
	if err := service.documents.Batch(ctx, []store.Write{store.UpdateWrite(path, fields)}); err != nil {
		if isStoreNotFound(err) {
			return ErrFoodNotFound
		}
		return storeFailure(err)
	}

	metrics.MealWritesTotal.WithLabelValues("update_food").Inc()
	service.summaries.RefreshSummary(ctx, userID, day)
	return nil
}

func (service *FoodService) DeleteFood(ctx context.Context, userID string, day models.DayKey, mealID string, foodID string) error {
	if err := validateDayScope(userID, day); err != nil {
		return err
	}
	if !validIdentifier(mealID) || !validIdentifier(foodID) {
		return ErrFoodNotFound
	}

	path := store.FoodPath(userID, day.String(), mealID, foodID)
	if _, err := service.documents.Get(ctx, path); err != nil {
		if isStoreNotFound(err) {
			return ErrFoodNotFound
		}
		return storeFailure(err)
	}
	if err := service.documents.Batch(ctx, []store.Write{store.DeleteWrite(path)}); err != nil {
		return storeFailure(err)
	}

	metrics.MealWritesTotal.WithLabelValues("delete_food").Inc()
	service.summaries.RefreshSummary(ctx, userID, day)
	return nil
}

func (service *FoodService) ListFoods(ctx context.Context, userID string, day models.DayKey, mealID string) ([]models.FoodEntry, error) {
	if err := validateDayScope(userID, day); err != nil {
		return nil, err
	}
	if !validIdentifier(mealID) {
		return nil, ErrMealNotFound
	}
	if err := service.requireMeal(ctx, userID, day, mealID); err != nil {
		return nil, err
	}
	return loadFoods(ctx, service.documents, userID, day, mealID)
}

func (service *FoodService) requireMeal(ctx context.Context, userID string, day models.DayKey, mealID string) error {
	if _, err := service.documents.Get(ctx, store.MealPath(userID, day.String(), mealID)); err != nil {
		if isStoreNotFound(err) {
			return ErrMealNotFound
		}
		return storeFailure(err)
	}
	return nil
}

func NormalizeFoodInput(input FoodInput) (FoodInput, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Unit = strings.TrimSpace(input.Unit)
	if input.Name == "" {
		return FoodInput{}, ErrInvalidFoodName
	}
	for _, value := range []float64{input.Calories, input.Amount, input.Protein, input.Carbs, input.Fat} {
		if !isValidQuantity(value) {
			return FoodInput{}, ErrInvalidFoodAmount
		}
	}
	return input, nil
}

func isValidQuantity(value float64) bool {
	return !math.IsNaN(value) && !math.IsInf(value, 0) && value >= 0
}

func isValidNutrition(value models.Nutrition) bool {
	return isValidQuantity(value.Calories) &&
		isValidQuantity(value.Protein) &&
		isValidQuantity(value.Carbs) &&
		isValidQuantity(value.Fat)
}

func loadFoods(ctx context.Context, documents DocumentStore, userID string, day models.DayKey, mealID string) ([]models.FoodEntry, error) {
	items, err := documents.List(ctx, store.FoodsCollection(userID, day.String(), mealID))
	if err != nil {
		return nil, storeFailure(err)
	}
	foods := make([]models.FoodEntry, 0, len(items))
	for _, item := range items {
		entry, _ := decodeFood(mealID, item)
		foods = append(foods, entry)
	}
	sort.SliceStable(foods, func(i, j int) bool {
		return foods[i].CreatedAt.Before(foods[j].CreatedAt)
	})
	return foods, nil
}
