package store

import "strings"

const pathSeparator = "/"

const (
	usersCollection   = "users"
	targetsCollection = "targets"
	daysCollection    = "days"
	mealsCollection   = "meals"
	foodsCollection   = "foods"
	summaryCollection = "summary"

	nutritionTargetID = "nutrition"
	daySummaryID      = "totals"
)

func joinPath(segments ...string) string {
	return strings.Join(segments, pathSeparator)
}

func UserPath(userID string) string {
	return joinPath(usersCollection, userID)
}

func TargetPath(userID string) string {
	return joinPath(UserPath(userID), targetsCollection, nutritionTargetID)
}

func DaysCollection(userID string) string {
	return joinPath(UserPath(userID), daysCollection)
}

func DayPath(userID string, day string) string {
	return joinPath(DaysCollection(userID), day)
}

func MealsCollection(userID string, day string) string {
	return joinPath(DayPath(userID, day), mealsCollection)
}

func MealPath(userID string, day string, mealID string) string {
	return joinPath(MealsCollection(userID, day), mealID)
}

func FoodsCollection(userID string, day string, mealID string) string {
	return joinPath(MealPath(userID, day, mealID), foodsCollection)
}

func FoodPath(userID string, day string, mealID string, foodID string) string {
	return joinPath(FoodsCollection(userID, day, mealID), foodID)
}

func SummaryPath(userID string, day string) string {
	return joinPath(DayPath(userID, day), summaryCollection, daySummaryID)
}

// ValidateDocumentPath accepts collection/id pairs with no empty segment.
func ValidateDocumentPath(path string) error {
	segments := strings.Split(path, pathSeparator)
	if len(segments) < 2 || len(segments)%2 != 0 {
		return ErrInvalidPath
	}
	for _, segment := range segments {
		if strings.TrimSpace(segment) == "" || segment != strings.TrimSpace(segment) {
			return ErrInvalidPath
		}
	}
	return nil
}

func parentCollection(path string) string {
	index := strings.LastIndex(path, pathSeparator)
	if index < 0 {
		return ""
	}
	return path[:index]
}

func documentID(path string) string {
	index := strings.LastIndex(path, pathSeparator)
	if index < 0 {
		return path
	}
	return path[index+1:]
}

func pathWithin(path string, prefix string) bool {
	if prefix == "" {
		return true
	}
	return path == prefix || strings.HasPrefix(path, prefix+pathSeparator)
}
