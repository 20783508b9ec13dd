package services

import (
	"time"

	"github.com/terraincognita07/platewise/internal/models"
	"github.com/terraincognita07/platewise/internal/store"
	"github.com/tidwall/gjson"
)

const (
	fieldName      = "name"
	fieldVariant   = "variant"
	fieldCreatedAt = "createdAt"
	fieldUpdatedAt = "updatedAt"
	fieldDate      = "date"

	fieldCalories = "calories"
	fieldAmount   = "amount"
	fieldUnit     = "unit"
	fieldProtein  = "protein"
	fieldCarbs    = "carbs"
	fieldFat      = "fat"

	fieldTotalCalories = "totalCalories"
	fieldTotalProtein  = "totalProtein"
	fieldTotalCarbs    = "totalCarbs"
	fieldTotalFat      = "totalFat"
	fieldMealCalories  = "mealCalories"

	fieldDailyCalorieTarget = "dailyCalorieTarget"
	fieldProteinTarget      = "proteinTargetGrams"
	fieldCarbsTarget        = "carbsTargetGrams"
	fieldFatTarget          = "fatTargetGrams"
)

var foodNumericFields = []string{fieldCalories, fieldAmount, fieldProtein, fieldCarbs, fieldFat}

func numberField(data []byte, key string) (float64, bool) {
	result := gjson.GetBytes(data, key)
	if result.Type != gjson.Number {
		return 0, false
	}
	return result.Float(), true
}

func timeField(data []byte, key string) (time.Time, bool) {
	result := gjson.GetBytes(data, key)
	if result.Type != gjson.String {
		return time.Time{}, false
	}
	parsed, err := time.Parse(time.RFC3339Nano, result.Str)
	if err != nil {
		return time.Time{}, false
	}
	return parsed, true
}

func decodeMeal(document store.Document) models.Meal {
	meal := models.Meal{
		ID:        document.ID(),
		Name:      gjson.GetBytes(document.Data, fieldName).String(),
		Variant:   models.MealVariant(gjson.GetBytes(document.Data, fieldVariant).String()),
		CreatedAt: document.CreatedAt,
	}
	if createdAt, ok := timeField(document.Data, fieldCreatedAt); ok {
		meal.CreatedAt = createdAt
	}
	if updatedAt, ok := timeField(document.Data, fieldUpdatedAt); ok {
		meal.UpdatedAt = &updatedAt
	}
	return meal
}

// decodeFood reads a food entry field by field. Numeric fields that are absent
// or not numbers count as zero and are returned as malformed.
func decodeFood(mealID string, document store.Document) (models.FoodEntry, []string) {
	values := make(map[string]float64, len(foodNumericFields))
	malformed := make([]string, 0)
	for _, key := range foodNumericFields {
		value, ok := numberField(document.Data, key)
		if !ok {
			malformed = append(malformed, key)
		}
		values[key] = value
	}

	entry := models.FoodEntry{
		ID:        document.ID(),
		MealID:    mealID,
		Name:      gjson.GetBytes(document.Data, fieldName).String(),
		Calories:  values[fieldCalories],
		Amount:    values[fieldAmount],
		Unit:      gjson.GetBytes(document.Data, fieldUnit).String(),
		Protein:   values[fieldProtein],
		Carbs:     values[fieldCarbs],
		Fat:       values[fieldFat],
		CreatedAt: document.CreatedAt,
	}
	if createdAt, ok := timeField(document.Data, fieldCreatedAt); ok {
		entry.CreatedAt = createdAt
	}
	return entry, malformed
}

func decodeSummary(day models.DayKey, document store.Document) models.Summary {
	summary := models.Summary{
		Day:          day,
		MealCalories: make(map[string]float64),
		UpdatedAt:    document.UpdatedAt,
	}
	summary.TotalCalories, _ = numberField(document.Data, fieldTotalCalories)
	summary.TotalProtein, _ = numberField(document.Data, fieldTotalProtein)
	summary.TotalCarbs, _ = numberField(document.Data, fieldTotalCarbs)
	summary.TotalFat, _ = numberField(document.Data, fieldTotalFat)

	gjson.GetBytes(document.Data, fieldMealCalories).ForEach(func(key gjson.Result, value gjson.Result) bool {
		if value.Type == gjson.Number {
			summary.MealCalories[key.String()] = value.Float()
		}
		return true
	})
	if updatedAt, ok := timeField(document.Data, fieldUpdatedAt); ok {
		summary.UpdatedAt = updatedAt
	}
	return summary
}

func decodeTarget(document store.Document) models.NutritionTarget {
	target := models.NutritionTarget{}
	target.DailyCalorieTarget, _ = numberField(document.Data, fieldDailyCalorieTarget)
	target.ProteinTargetGrams, _ = numberField(document.Data, fieldProteinTarget)
	target.CarbsTargetGrams, _ = numberField(document.Data, fieldCarbsTarget)
	target.FatTargetGrams, _ = numberField(document.Data, fieldFatTarget)
	return target
}

func summaryFields(summary models.Summary) store.Fields {
	mealCalories := make(map[string]any, len(summary.MealCalories))
	for mealID, calories := range summary.MealCalories {
		mealCalories[mealID] = calories
	}
	return store.Fields{
		fieldTotalCalories: summary.TotalCalories,
		fieldTotalProtein:  summary.TotalProtein,
		fieldTotalCarbs:    summary.TotalCarbs,
		fieldTotalFat:      summary.TotalFat,
		fieldMealCalories:  mealCalories,
		fieldUpdatedAt:     store.ServerTimestamp,
	}
}

func targetFields(target models.NutritionTarget) store.Fields {
	return store.Fields{
		fieldDailyCalorieTarget: target.DailyCalorieTarget,
		fieldProteinTarget:      target.ProteinTargetGrams,
		fieldCarbsTarget:        target.CarbsTargetGrams,
		fieldFatTarget:          target.FatTargetGrams,
		fieldUpdatedAt:          store.ServerTimestamp,
	}
}

func dayMarkerWrite(userID string, day models.DayKey) store.Write {
	return store.MergeWrite(store.DayPath(userID, day.String()), store.Fields{
		fieldDate:      day.String(),
		fieldUpdatedAt: store.ServerTimestamp,
	})
}
