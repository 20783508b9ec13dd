package models

import "time"

type Nutrition struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

func (value Nutrition) Add(other Nutrition) Nutrition {
	return Nutrition{
		Calories: value.Calories + other.Calories,
		Protein:  value.Protein + other.Protein,
		Carbs:    value.Carbs + other.Carbs,
		Fat:      value.Fat + other.Fat,
	}
}

func (value Nutrition) IsZero() bool {
	return value.Calories == 0 && value.Protein == 0 && value.Carbs == 0 && value.Fat == 0
}

type FoodEntry struct {
	ID        string
	MealID    string
	Name      string
	Calories  float64
	Amount    float64
	Unit      string
	Protein   float64
	Carbs     float64
	Fat       float64
	CreatedAt time.Time
}

func (entry FoodEntry) Nutrition() Nutrition {
	return Nutrition{
		Calories: entry.Calories,
		Protein:  entry.Protein,
		Carbs:    entry.Carbs,
		Fat:      entry.Fat,
	}
}
