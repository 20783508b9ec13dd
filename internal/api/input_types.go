package api

import (
	"github.com/terraincognita07/platewise/internal/models"
	"github.com/terraincognita07/platewise/internal/services"
)

type mealPayload struct {
	Name string `json:"name"`
}

type foodPayload struct {
	Name     string  `json:"name"`
	Calories float64 `json:"calories"`
	Amount   float64 `json:"amount"`
	Unit     string  `json:"unit"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

type foodUpdatePayload struct {
	Amount    *float64          `json:"amount"`
	Unit      *string           `json:"unit"`
	Nutrition *models.Nutrition `json:"nutrition"`
}

func (payload foodPayload) input() services.FoodInput {
	return services.FoodInput{
		Name:     payload.Name,
		Calories: payload.Calories,
		Amount:   payload.Amount,
		Unit:     payload.Unit,
		Protein:  payload.Protein,
		Carbs:    payload.Carbs,
		Fat:      payload.Fat,
	}
}
