package models

import "time"

type Summary struct {
	Day           DayKey
	TotalCalories float64
	TotalProtein  float64
	TotalCarbs    float64
	TotalFat      float64
	MealCalories  map[string]float64
	UpdatedAt     time.Time
}

func (summary Summary) Consumed() Nutrition {
	return Nutrition{
		Calories: summary.TotalCalories,
		Protein:  summary.TotalProtein,
		Carbs:    summary.TotalCarbs,
		Fat:      summary.TotalFat,
	}
}

// SummarySnapshot is one emission of a live summary view. Exists is false
// until a summary has been written for the day.
type SummarySnapshot struct {
	Summary Summary
	Exists  bool
}
