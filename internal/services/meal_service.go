package services

import (
	"context"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/terraincognita07/platewise/internal/metrics"
	"github.com/terraincognita07/platewise/internal/models"
	"github.com/terraincognita07/platewise/internal/store"
)

const maxMealNameLength = 80

type SummaryRefresher interface {
	RefreshSummary(ctx context.Context, userID string, day models.DayKey)
}

type MealService struct {
	documents DocumentStore
	summaries SummaryRefresher
	logger    zerolog.Logger
}

func NewMealService(documents DocumentStore, summaries SummaryRefresher, logger zerolog.Logger) *MealService {
	return &MealService{
		documents: documents,
		summaries: summaries,
		logger:    logger,
	}
}

// EnsureDefaultMeals creates missing system meals and repairs drifted ones.
// Creation goes through the store's insert-if-absent write keyed by the fixed
// system ids, so concurrent callers cannot produce duplicates.
func (service *MealService) EnsureDefaultMeals(ctx context.Context, userID string, day models.DayKey) error {
	if err := validateDayScope(userID, day); err != nil {
		return err
	}

	meals, err := service.listMeals(ctx, userID, day)
	if err != nil {
		return err
	}
	existing := make(map[string]models.Meal, len(meals))
	for _, meal := range meals {
		existing[meal.ID] = meal
	}

	for _, system := range models.DefaultSystemMeals() {
		path := store.MealPath(userID, day.String(), system.ID)
		meal, found := existing[system.ID]
		if !found {
			created, err := service.documents.Create(ctx, path, store.Fields{
				fieldName:      system.Name,
				fieldVariant:   string(models.MealVariantSystem),
				fieldCreatedAt: store.ServerTimestamp,
			})
			if err != nil {
				return storeFailure(err)
			}
			if created {
				service.logger.Debug().Str("user_id", userID).Str("day", day.String()).Str("meal_id", system.ID).Msg("created system meal")
			}
			continue
		}

		if meal.Name == system.Name && meal.Variant == models.MealVariantSystem {
			continue
		}
		if err := service.documents.Set(ctx, path, store.Fields{
			fieldName:      system.Name,
			fieldVariant:   string(models.MealVariantSystem),
			fieldUpdatedAt: store.ServerTimestamp,
		}, true); err != nil {
			return storeFailure(err)
		}
		service.logger.Info().Str("user_id", userID).Str("day", day.String()).Str("meal_id", system.ID).Msg("repaired system meal")
	}
	return nil
}

func (service *MealService) CreateCustomMeal(ctx context.Context, userID string, day models.DayKey, name string) (string, error) {
	if err := validateDayScope(userID, day); err != nil {
		return "", err
	}
	name, err := NormalizeMealName(name)
	if err != nil {
		return "", err
	}
	if IsReservedMealName(name) {
		return "", ErrDuplicateMealName
	}

	meals, err := service.listMeals(ctx, userID, day)
	if err != nil {
		return "", err
	}
	if HasDuplicateMealName(meals, name, "") {
		return "", ErrDuplicateMealName
	}

	mealID := uuid.NewString()
	if err := service.documents.Batch(ctx, []store.Write{
		store.SetWrite(store.MealPath(userID, day.String(), mealID), store.Fields{
			fieldName:      name,
			fieldVariant:   string(models.MealVariantCustom),
			fieldCreatedAt: store.ServerTimestamp,
		}),
		dayMarkerWrite(userID, day),
	}); err != nil {
		return "", storeFailure(err)
	}

	metrics.MealWritesTotal.WithLabelValues("create_meal").Inc()
	return mealID, nil
}

func (service *MealService) RenameMeal(ctx context.Context, userID string, day models.DayKey, mealID string, newName string) error {
	if err := validateDayScope(userID, day); err != nil {
		return err
	}
	if !validIdentifier(mealID) {
		return ErrMealNotFound
	}
	name, err := NormalizeMealName(newName)
	if err != nil {
		return err
	}

	meals, err := service.listMeals(ctx, userID, day)
	if err != nil {
		return err
	}
	target, found := findMeal(meals, mealID)
	if !found {
		return ErrMealNotFound
	}
	if isSystemMealID(target.ID) || target.IsSystem() {
		return ErrSystemMealLocked
	}
	if IsReservedMealName(name) || HasDuplicateMealName(meals, name, mealID) {
		return ErrDuplicateMealName
	}

	if err := service.documents.Batch(ctx, []store.Write{
		store.UpdateWrite(store.MealPath(userID, day.String(), mealID), store.Fields{
			fieldName:      name,
			fieldUpdatedAt: store.ServerTimestamp,
		}),
	}); err != nil {
		if isStoreNotFound(err) {
			return ErrMealNotFound
		}
		return storeFailure(err)
	}

	metrics.MealWritesTotal.WithLabelValues("rename_meal").Inc()
	return nil
}

// DeleteMeal removes the meal and every food under it in one batch, then
// refreshes the day's summary on a best-effort basis.
func (service *MealService) DeleteMeal(ctx context.Context, userID string, day models.DayKey, mealID string) error {
	if err := validateDayScope(userID, day); err != nil {
		return err
	}
	if !validIdentifier(mealID) {
		return ErrMealNotFound
	}

	mealPath := store.MealPath(userID, day.String(), mealID)
	document, err := service.documents.Get(ctx, mealPath)
	if err != nil {
		if isStoreNotFound(err) {
			return ErrMealNotFound
		}
		return storeFailure(err)
	}
	meal := decodeMeal(document)
	if isSystemMealID(meal.ID) || meal.IsSystem() {
		return ErrSystemMealLocked
	}

	foods, err := service.documents.List(ctx, store.FoodsCollection(userID, day.String(), mealID))
	if err != nil {
		return storeFailure(err)
	}
	writes := make([]store.Write, 0, len(foods)+1)
	for _, food := range foods {
		writes = append(writes, store.DeleteWrite(food.Path))
	}
	writes = append(writes, store.DeleteWrite(mealPath))
	if err := service.documents.Batch(ctx, writes); err != nil {
		return storeFailure(err)
	}

	metrics.MealWritesTotal.WithLabelValues("delete_meal").Inc()
	service.logger.Debug().Str("user_id", userID).Str("day", day.String()).Str("meal_id", mealID).Int("foods", len(foods)).Msg("deleted meal")
	service.summaries.RefreshSummary(ctx, userID, day)
	return nil
}

// ListMeals returns every meal of the day with its foods, in display order.
func (service *MealService) ListMeals(ctx context.Context, userID string, day models.DayKey) ([]models.MealWithFoods, error) {
	if err := validateDayScope(userID, day); err != nil {
		return nil, err
	}

	meals, err := service.listMeals(ctx, userID, day)
	if err != nil {
		return nil, err
	}

	result := make([]models.MealWithFoods, 0, len(meals))
	for _, meal := range meals {
		foods, err := loadFoods(ctx, service.documents, userID, day, meal.ID)
		if err != nil {
			return nil, err
		}
		result = append(result, models.MealWithFoods{Meal: meal, Foods: foods})
	}
	SortMealsForDisplay(result)
	return result, nil
}

// ActiveDays lists days that have received a meal or food write, oldest first.
func (service *MealService) ActiveDays(ctx context.Context, userID string) ([]models.DayKey, error) {
	if err := validateUserID(userID); err != nil {
		return nil, err
	}

	documents, err := service.documents.List(ctx, store.DaysCollection(userID))
	if err != nil {
		return nil, storeFailure(err)
	}
	days := make([]models.DayKey, 0, len(documents))
	for _, document := range documents {
		day, err := models.ParseDayKey(document.ID())
		if err != nil {
			continue
		}
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days, nil
}

func (service *MealService) listMeals(ctx context.Context, userID string, day models.DayKey) ([]models.Meal, error) {
	documents, err := service.documents.List(ctx, store.MealsCollection(userID, day.String()))
	if err != nil {
		return nil, storeFailure(err)
	}
	meals := make([]models.Meal, 0, len(documents))
	for _, document := range documents {
		meals = append(meals, decodeMeal(document))
	}
	return meals, nil
}

func NormalizeMealName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrInvalidMealName
	}
	if utf8.RuneCountInString(name) > maxMealNameLength {
		return "", ErrMealNameTooLong
	}
	return name, nil
}

func IsReservedMealName(name string) bool {
	key := nameKey(name)
	for _, system := range models.DefaultSystemMeals() {
		if nameKey(system.Name) == key {
			return true
		}
	}
	return false
}

// HasDuplicateMealName compares names case-insensitively, skipping excludeID.
func HasDuplicateMealName(meals []models.Meal, name string, excludeID string) bool {
	key := nameKey(name)
	for _, meal := range meals {
		if meal.ID == excludeID {
			continue
		}
		if nameKey(meal.Name) == key {
			return true
		}
	}
	return false
}

func SortMealsForDisplay(meals []models.MealWithFoods) {
	order := systemMealOrderMap()

	sort.SliceStable(meals, func(i, j int) bool {
		left := meals[i]
		right := meals[j]
		leftIndex, leftSystem := order[left.ID]
		rightIndex, rightSystem := order[right.ID]
		if leftSystem != rightSystem {
			return leftSystem
		}
		if leftSystem {
			return leftIndex < rightIndex
		}
		if !left.CreatedAt.Equal(right.CreatedAt) {
			return left.CreatedAt.Before(right.CreatedAt)
		}
		return left.ID < right.ID
	})
}

func systemMealOrderMap() map[string]int {
	order := make(map[string]int)
	for index, system := range models.DefaultSystemMeals() {
		order[system.ID] = index
	}
	return order
}

func isSystemMealID(mealID string) bool {
	_, ok := systemMealOrderMap()[mealID]
	return ok
}

func findMeal(meals []models.Meal, mealID string) (models.Meal, bool) {
	for _, meal := range meals {
		if meal.ID == mealID {
			return meal, true
		}
	}
	return models.Meal{}, false
}
