package services

import (
	"math"

	"github.com/terraincognita07/platewise/internal/models"
)

const (
	maxScore = 100.0

	calorieBandLower = 0.95
	calorieBandUpper = 1.05
	macroBandLower   = 0.90
	macroBandUpper   = 1.10

	// Excess above the band costs twice as much as a shortfall below it.
	excessPenalty = 200.0

	calorieWeight = 0.70
	macroWeight   = 0.30
)

type DayConsumption struct {
	Day      models.DayKey
	Consumed models.Nutrition
}

func (day DayConsumption) HasConsumption() bool {
	return !day.Consumed.IsZero()
}

// DailyScore rates one day's consumption against the targets on a 0-100 scale.
// Without macro targets the calorie sub-score is the final score; without a
// calorie target the macro sub-score is.
func DailyScore(consumed models.Nutrition, targets models.NutritionTarget) float64 {
	calorie, hasCalorie := calorieSubScore(consumed, targets)
	macro, hasMacro := macroSubScore(consumed, targets)

	switch {
	case hasCalorie && hasMacro:
		return clampScore(calorieWeight*calorie + macroWeight*macro)
	case hasCalorie:
		return clampScore(calorie)
	case hasMacro:
		return clampScore(macro)
	default:
		return 0
	}
}

// WeeklyScore averages the daily scores of days with logged consumption. When
// isCurrentWeek is set, days after today are left out. Returns 0 when no day
// qualifies.
func WeeklyScore(days []DayConsumption, targets models.NutritionTarget, today models.DayKey, isCurrentWeek bool) float64 {
	qualifying := QualifyingDays(days, today, isCurrentWeek)
	if len(qualifying) == 0 {
		return 0
	}

	total := 0.0
	for _, day := range qualifying {
		total += DailyScore(day.Consumed, targets)
	}
	return total / float64(len(qualifying))
}

func QualifyingDays(days []DayConsumption, today models.DayKey, isCurrentWeek bool) []DayConsumption {
	qualifying := make([]DayConsumption, 0, len(days))
	for _, day := range days {
		if isCurrentWeek && day.Day.After(today) {
			continue
		}
		if !day.HasConsumption() {
			continue
		}
		qualifying = append(qualifying, day)
	}
	return qualifying
}

func calorieSubScore(consumed models.Nutrition, targets models.NutritionTarget) (float64, bool) {
	if !targets.HasCalories() {
		return 0, false
	}
	return bandScore(consumed.Calories/targets.DailyCalorieTarget, calorieBandLower, calorieBandUpper), true
}

func macroSubScore(consumed models.Nutrition, targets models.NutritionTarget) (float64, bool) {
	pairs := [][2]float64{
		{consumed.Protein, targets.ProteinTargetGrams},
		{consumed.Carbs, targets.CarbsTargetGrams},
		{consumed.Fat, targets.FatTargetGrams},
	}

	total := 0.0
	count := 0
	for _, pair := range pairs {
		if !(pair[1] > 0) {
			continue
		}
		total += bandScore(pair[0]/pair[1], macroBandLower, macroBandUpper)
		count++
	}
	if count == 0 {
		return 0, false
	}
	return total / float64(count), true
}

func bandScore(ratio float64, lower float64, upper float64) float64 {
	switch {
	case math.IsNaN(ratio):
		return 0
	case ratio < lower:
		return clampScore(maxScore * ratio / lower)
	case ratio > upper:
		return clampScore(maxScore - (ratio-upper)*excessPenalty)
	default:
		return maxScore
	}
}

func clampScore(value float64) float64 {
	switch {
	case math.IsNaN(value), value < 0:
		return 0
	case value > maxScore:
		return maxScore
	default:
		return value
	}
}
