package api

import (
	"time"

	"github.com/terraincognita07/platewise/internal/models"
	"github.com/terraincognita07/platewise/internal/services"
)

type foodView struct {
	ID        string    `json:"id"`
	MealID    string    `json:"meal_id"`
	Name      string    `json:"name"`
	Calories  float64   `json:"calories"`
	Amount    float64   `json:"amount"`
	Unit      string    `json:"unit"`
	Protein   float64   `json:"protein"`
	Carbs     float64   `json:"carbs"`
	Fat       float64   `json:"fat"`
	CreatedAt time.Time `json:"created_at"`
}

type mealView struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Variant   string           `json:"variant"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt *time.Time       `json:"updated_at,omitempty"`
	Totals    models.Nutrition `json:"totals"`
	Foods     []foodView       `json:"foods"`
}

type summaryView struct {
	Date          string             `json:"date"`
	Exists        bool               `json:"exists"`
	TotalCalories float64            `json:"total_calories"`
	TotalProtein  float64            `json:"total_protein"`
	TotalCarbs    float64            `json:"total_carbs"`
	TotalFat      float64            `json:"total_fat"`
	MealCalories  map[string]float64 `json:"meal_calories"`
	UpdatedAt     *time.Time         `json:"updated_at,omitempty"`
}

type dayScoreView struct {
	Date           string           `json:"date"`
	Score          float64          `json:"score"`
	HasConsumption bool             `json:"has_consumption"`
	Consumed       models.Nutrition `json:"consumed"`
}

type weekScoreView struct {
	WeekStart      string         `json:"week_start"`
	Score          float64        `json:"score"`
	IsCurrentWeek  bool           `json:"is_current_week"`
	QualifyingDays int            `json:"qualifying_days"`
	Days           []dayScoreView `json:"days"`
}

func newFoodView(food models.FoodEntry) foodView {
	return foodView{
		ID:        food.ID,
		MealID:    food.MealID,
		Name:      food.Name,
		Calories:  food.Calories,
		Amount:    food.Amount,
		Unit:      food.Unit,
		Protein:   food.Protein,
		Carbs:     food.Carbs,
		Fat:       food.Fat,
		CreatedAt: food.CreatedAt,
	}
}

func newMealViews(meals []models.MealWithFoods) []mealView {
	views := make([]mealView, 0, len(meals))
	for _, meal := range meals {
		foods := make([]foodView, 0, len(meal.Foods))
		for _, food := range meal.Foods {
			foods = append(foods, newFoodView(food))
		}
		views = append(views, mealView{
			ID:        meal.ID,
			Name:      meal.Name,
			Variant:   string(meal.Variant),
			CreatedAt: meal.CreatedAt,
			UpdatedAt: meal.UpdatedAt,
			Totals:    meal.Totals(),
			Foods:     foods,
		})
	}
	return views
}

func newSummaryView(snapshot models.SummarySnapshot) summaryView {
	summary := snapshot.Summary
	mealCalories := summary.MealCalories
	if mealCalories == nil {
		mealCalories = map[string]float64{}
	}
	view := summaryView{
		Date:          summary.Day.String(),
		Exists:        snapshot.Exists,
		TotalCalories: summary.TotalCalories,
		TotalProtein:  summary.TotalProtein,
		TotalCarbs:    summary.TotalCarbs,
		TotalFat:      summary.TotalFat,
		MealCalories:  mealCalories,
	}
	if snapshot.Exists && !summary.UpdatedAt.IsZero() {
		updatedAt := summary.UpdatedAt
		view.UpdatedAt = &updatedAt
	}
	return view
}

func newDayScoreView(score services.DayScore) dayScoreView {
	return dayScoreView{
		Date:           score.Day.String(),
		Score:          score.Score,
		HasConsumption: score.HasConsumption,
		Consumed:       score.Consumed,
	}
}

func newWeekScoreView(score services.WeekScore) weekScoreView {
	days := make([]dayScoreView, 0, len(score.Days))
	for _, day := range score.Days {
		days = append(days, newDayScoreView(day))
	}
	return weekScoreView{
		WeekStart:      score.WeekStart.String(),
		Score:          score.Score,
		IsCurrentWeek:  score.IsCurrentWeek,
		QualifyingDays: score.QualifyingDays,
		Days:           days,
	}
}
