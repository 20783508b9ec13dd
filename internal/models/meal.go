package models

import "time"

type MealVariant string

const (
	MealVariantSystem MealVariant = "system"
	MealVariantCustom MealVariant = "custom"
)

const (
	SystemMealBreakfast = "breakfast"
	SystemMealLunch     = "lunch"
	SystemMealDinner    = "dinner"
)

type Meal struct {
	ID        string
	Name      string
	Variant   MealVariant
	CreatedAt time.Time
	UpdatedAt *time.Time
}

func (meal Meal) IsSystem() bool {
	return meal.Variant == MealVariantSystem
}

type MealWithFoods struct {
	Meal
	Foods []FoodEntry
}

func (meal MealWithFoods) Totals() Nutrition {
	total := Nutrition{}
	for _, food := range meal.Foods {
		total = total.Add(food.Nutrition())
	}
	return total
}

type SystemMeal struct {
	ID   string
	Name string
}

// DefaultSystemMeals lists the system meal categories in display order.
func DefaultSystemMeals() []SystemMeal {
	return []SystemMeal{
		{ID: SystemMealBreakfast, Name: "Breakfast"},
		{ID: SystemMealLunch, Name: "Lunch"},
		{ID: SystemMealDinner, Name: "Dinner"},
	}
}
