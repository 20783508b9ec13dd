package services

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/rs/zerolog"
	"github.com/terraincognita07/platewise/internal/models"
	"github.com/terraincognita07/platewise/internal/store"
)

func TestSummaryMatchesEntriesAfterMutations(t *testing.T) {
	fixture := newServiceFixture(t)
	ctx := context.Background()

	if err := fixture.meals.EnsureDefaultMeals(ctx, testUserID, testDay); err != nil {
		t.Fatalf("EnsureDefaultMeals() unexpected error: %v", err)
	}
	snacksID, err := fixture.meals.CreateCustomMeal(ctx, testUserID, testDay, "Snacks")
	if err != nil {
		t.Fatalf("CreateCustomMeal() unexpected error: %v", err)
	}

	oats := fixture.addFood(t, testDay, models.SystemMealBreakfast, "Oats", 389.5)
	fixture.addFood(t, testDay, models.SystemMealBreakfast, "Milk", 122.25)
	soup := fixture.addFood(t, testDay, models.SystemMealLunch, "Soup", 210.5)
	fixture.addFood(t, testDay, snacksID, "Apple", 95.75)

	if err := fixture.foods.UpdateFood(ctx, testUserID, testDay, models.SystemMealBreakfast, oats, FoodUpdate{
		Amount:    50,
		Unit:      stringPtr("g"),
		Nutrition: &models.Nutrition{Calories: 194.75, Protein: 8.5, Carbs: 33, Fat: 3.5},
	}); err != nil {
		t.Fatalf("UpdateFood() unexpected error: %v", err)
	}
	if err := fixture.foods.DeleteFood(ctx, testUserID, testDay, models.SystemMealLunch, soup); err != nil {
		t.Fatalf("DeleteFood() unexpected error: %v", err)
	}

	summary, err := fixture.aggregation.RecomputeSummary(ctx, testUserID, testDay)
	if err != nil {
		t.Fatalf("RecomputeSummary() unexpected error: %v", err)
	}
	stored, found, err := fixture.aggregation.Summary(ctx, testUserID, testDay)
	if err != nil || !found {
		t.Fatalf("Summary() = found %v, err %v", found, err)
	}

	meals, err := fixture.meals.ListMeals(ctx, testUserID, testDay)
	if err != nil {
		t.Fatalf("ListMeals() unexpected error: %v", err)
	}
	expected := 0.0
	for _, meal := range meals {
		subtotal := 0.0
		for _, food := range meal.Foods {
			expected += food.Calories
			subtotal += food.Calories
		}
		if stored.MealCalories[meal.ID] != subtotal {
			t.Fatalf("meal %s subtotal = %v, want %v", meal.ID, stored.MealCalories[meal.ID], subtotal)
		}
	}
	if summary.TotalCalories != expected || stored.TotalCalories != expected {
		t.Fatalf("totalCalories = %v (stored %v), want %v", summary.TotalCalories, stored.TotalCalories, expected)
	}
	if stored.TotalProtein != summary.TotalProtein || stored.TotalFat != summary.TotalFat {
		t.Fatalf("stored macros %#v differ from recompute %#v", stored.Consumed(), summary.Consumed())
	}
}

func TestAddFoodValidatesInput(t *testing.T) {
	fixture := newServiceFixture(t)
	ctx := context.Background()

	if err := fixture.meals.EnsureDefaultMeals(ctx, testUserID, testDay); err != nil {
		t.Fatalf("EnsureDefaultMeals() unexpected error: %v", err)
	}

	tests := []struct {
		name   string
		mealID string
		input  FoodInput
		want   error
	}{
		{name: "empty name", mealID: models.SystemMealLunch, input: FoodInput{Name: "  ", Calories: 10}, want: ErrInvalidFoodName},
		{name: "negative calories", mealID: models.SystemMealLunch, input: FoodInput{Name: "Soup", Calories: -1}, want: ErrInvalidFoodAmount},
		{name: "nan amount", mealID: models.SystemMealLunch, input: FoodInput{Name: "Soup", Amount: math.NaN()}, want: ErrInvalidFoodAmount},
		{name: "infinite fat", mealID: models.SystemMealLunch, input: FoodInput{Name: "Soup", Fat: math.Inf(1)}, want: ErrInvalidFoodAmount},
		{name: "missing meal", mealID: "missing", input: FoodInput{Name: "Soup", Calories: 10}, want: ErrMealNotFound},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			_, err := fixture.foods.AddFood(ctx, testUserID, testDay, testCase.mealID, testCase.input)
			if !errors.Is(err, testCase.want) {
				t.Fatalf("expected %v, got %v", testCase.want, err)
			}
		})
	}

	if _, found, err := fixture.aggregation.Summary(ctx, testUserID, testDay); err != nil || found {
		t.Fatalf("expected no summary after rejected writes, found %v err %v", found, err)
	}
}

func TestUpdateFoodKeepsIdentity(t *testing.T) {
	fixture := newServiceFixture(t)
	ctx := context.Background()

	if err := fixture.meals.EnsureDefaultMeals(ctx, testUserID, testDay); err != nil {
		t.Fatalf("EnsureDefaultMeals() unexpected error: %v", err)
	}
	foodID := fixture.addFood(t, testDay, models.SystemMealDinner, "Rice", 200)

	before, err := fixture.foods.ListFoods(ctx, testUserID, testDay, models.SystemMealDinner)
	if err != nil {
		t.Fatalf("ListFoods() unexpected error: %v", err)
	}

	if err := fixture.foods.UpdateFood(ctx, testUserID, testDay, models.SystemMealDinner, foodID, FoodUpdate{Amount: 150, Unit: stringPtr(" kg ")}); err != nil {
		t.Fatalf("UpdateFood() unexpected error: %v", err)
	}

	after, err := fixture.foods.ListFoods(ctx, testUserID, testDay, models.SystemMealDinner)
	if err != nil {
		t.Fatalf("ListFoods() unexpected error: %v", err)
	}
	if len(after) != 1 {
		t.Fatalf("expected one food, got %d", len(after))
	}
	updated := after[0]
	if updated.ID != foodID || !updated.CreatedAt.Equal(before[0].CreatedAt) {
		t.Fatalf("expected identity and createdAt to survive update, got %#v", updated)
	}
	if updated.Amount != 150 || updated.Unit != "kg" {
		t.Fatalf("expected amount 150 kg, got %v %q", updated.Amount, updated.Unit)
	}
	if updated.Calories != 200 {
		t.Fatalf("expected calories untouched without nutrition, got %v", updated.Calories)
	}

	if err := fixture.foods.UpdateFood(ctx, testUserID, testDay, models.SystemMealDinner, foodID, FoodUpdate{Amount: -5}); !errors.Is(err, ErrInvalidFoodAmount) {
		t.Fatalf("expected ErrInvalidFoodAmount, got %v", err)
	}
	if err := fixture.foods.UpdateFood(ctx, testUserID, testDay, models.SystemMealDinner, "missing", FoodUpdate{Amount: 5}); !errors.Is(err, ErrFoodNotFound) {
		t.Fatalf("expected ErrFoodNotFound, got %v", err)
	}
	if err := fixture.foods.DeleteFood(ctx, testUserID, testDay, models.SystemMealDinner, "missing"); !errors.Is(err, ErrFoodNotFound) {
		t.Fatalf("expected ErrFoodNotFound, got %v", err)
	}
	if _, err := fixture.foods.ListFoods(ctx, testUserID, testDay, "missing"); !errors.Is(err, ErrMealNotFound) {
		t.Fatalf("expected ErrMealNotFound, got %v", err)
	}
}

func TestUpdateFoodWithoutUnitKeepsStoredUnit(t *testing.T) {
	fixture := newServiceFixture(t)
	ctx := context.Background()

	if err := fixture.meals.EnsureDefaultMeals(ctx, testUserID, testDay); err != nil {
		t.Fatalf("EnsureDefaultMeals() unexpected error: %v", err)
	}
	foodID := fixture.addFood(t, testDay, models.SystemMealDinner, "Rice", 200)

	if err := fixture.foods.UpdateFood(ctx, testUserID, testDay, models.SystemMealDinner, foodID, FoodUpdate{Amount: 150}); err != nil {
		t.Fatalf("UpdateFood() unexpected error: %v", err)
	}

	foods, err := fixture.foods.ListFoods(ctx, testUserID, testDay, models.SystemMealDinner)
	if err != nil {
		t.Fatalf("ListFoods() unexpected error: %v", err)
	}
	if len(foods) != 1 {
		t.Fatalf("expected one food, got %d", len(foods))
	}
	if foods[0].Amount != 150 || foods[0].Unit != "g" {
		t.Fatalf("expected amount-only update to keep unit g, got %v %q", foods[0].Amount, foods[0].Unit)
	}
}

func TestUpdateFoodDoesNotRecreateDeletedEntry(t *testing.T) {
	fixture := newServiceFixture(t)
	ctx := context.Background()

	if err := fixture.meals.EnsureDefaultMeals(ctx, testUserID, testDay); err != nil {
		t.Fatalf("EnsureDefaultMeals() unexpected error: %v", err)
	}
	foodID := fixture.addFood(t, testDay, models.SystemMealDinner, "Rice", 200)

	racing := deletingStore{DocumentStore: fixture.documents, deleter: fixture.documents.Store}
	foods := NewFoodService(racing, fixture.aggregation, zerolog.Nop())
	err := foods.UpdateFood(ctx, testUserID, testDay, models.SystemMealDinner, foodID, FoodUpdate{Amount: 1, Unit: stringPtr("g")})
	if !errors.Is(err, ErrFoodNotFound) {
		t.Fatalf("expected ErrFoodNotFound when the entry vanishes before the write, got %v", err)
	}

	path := store.FoodPath(testUserID, testDay.String(), models.SystemMealDinner, foodID)
	if _, err := fixture.documents.Get(ctx, path); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected deleted food to stay deleted, got %v", err)
	}

	summary, err := fixture.aggregation.RecomputeSummary(ctx, testUserID, testDay)
	if err != nil {
		t.Fatalf("expected a clean recompute, got %v", err)
	}
	if summary.TotalCalories != 0 {
		t.Fatalf("expected total 0 after delete, got %v", summary.TotalCalories)
	}
}

func TestFailedRefreshIsQueuedAndReconciled(t *testing.T) {
	fixture := newServiceFixture(t)
	ctx := context.Background()

	if err := fixture.meals.EnsureDefaultMeals(ctx, testUserID, testDay); err != nil {
		t.Fatalf("EnsureDefaultMeals() unexpected error: %v", err)
	}

	fixture.documents.setFailSummaries(true)
	fixture.addFood(t, testDay, models.SystemMealLunch, "Soup", 250)
	if fixture.pending.Len() != 1 {
		t.Fatalf("expected the day to be queued for retry, got %d pending", fixture.pending.Len())
	}
	if _, found, _ := fixture.aggregation.Summary(ctx, testUserID, testDay); found {
		t.Fatal("expected no summary while summary writes fail")
	}

	if recovered := fixture.reconciler.RunOnce(ctx); recovered != 0 {
		t.Fatalf("expected no recovery while failing, got %d", recovered)
	}
	if fixture.pending.Len() != 1 {
		t.Fatalf("expected day to stay queued, got %d pending", fixture.pending.Len())
	}

	fixture.documents.setFailSummaries(false)
	if recovered := fixture.reconciler.RunOnce(ctx); recovered != 1 {
		t.Fatalf("expected one recovered day, got %d", recovered)
	}
	summary, found, err := fixture.aggregation.Summary(ctx, testUserID, testDay)
	if err != nil || !found {
		t.Fatalf("Summary() = found %v, err %v", found, err)
	}
	if summary.TotalCalories != 250 {
		t.Fatalf("expected reconciled total 250, got %v", summary.TotalCalories)
	}
	if fixture.pending.Len() != 0 {
		t.Fatalf("expected empty queue, got %d", fixture.pending.Len())
	}
}
