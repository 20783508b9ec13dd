package models

const (
	ProteinCaloriesPerGram = 4.0
	CarbsCaloriesPerGram   = 4.0
	FatCaloriesPerGram     = 9.0

	ProteinCalorieShare = 0.30
	CarbsCalorieShare   = 0.40
	FatCalorieShare     = 0.30
)

// NutritionTarget holds daily targets. A value <= 0 means the target is not set.
type NutritionTarget struct {
	DailyCalorieTarget float64 `json:"daily_calorie_target"`
	ProteinTargetGrams float64 `json:"protein_target_grams"`
	CarbsTargetGrams   float64 `json:"carbs_target_grams"`
	FatTargetGrams     float64 `json:"fat_target_grams"`
}

func (target NutritionTarget) HasCalories() bool {
	return target.DailyCalorieTarget > 0
}

func (target NutritionTarget) HasAnyMacro() bool {
	return target.ProteinTargetGrams > 0 || target.CarbsTargetGrams > 0 || target.FatTargetGrams > 0
}
