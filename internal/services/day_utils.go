package services

import (
	"strings"
	"time"

	"github.com/terraincognita07/platewise/internal/models"
)

const DaysPerWeek = 7

func DateAtLocation(value time.Time, location *time.Location) time.Time {
	if location == nil {
		location = time.UTC
	}
	localized := value.In(location)
	year, month, day := localized.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, location)
}

// DayKeyAt resolves the caller's reference date; nothing in this package reads
// the wall clock on its own.
func DayKeyAt(value time.Time, location *time.Location) models.DayKey {
	return models.DayKeyFromTime(DateAtLocation(value, location), location)
}

// WeekStart returns the Monday of the week containing day.
func WeekStart(day models.DayKey) models.DayKey {
	weekday := int(day.Time().Weekday())
	if weekday == 0 {
		weekday = 7
	}
	return day.AddDays(1 - weekday)
}

func WeekDays(start models.DayKey) []models.DayKey {
	days := make([]models.DayKey, 0, DaysPerWeek)
	for offset := 0; offset < DaysPerWeek; offset++ {
		days = append(days, start.AddDays(offset))
	}
	return days
}

func IsCurrentWeek(start models.DayKey, today models.DayKey) bool {
	return !today.Before(start) && today.Before(start.AddDays(DaysPerWeek))
}

func nameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// validIdentifier rejects ids that would escape their collection in a path.
func validIdentifier(id string) bool {
	trimmed := strings.TrimSpace(id)
	return trimmed != "" && trimmed == id && !strings.Contains(id, "/")
}

func validateUserID(userID string) error {
	if !validIdentifier(userID) {
		return ErrInvalidUserID
	}
	return nil
}

// validateDay rejects keys that are not canonical yyyy-MM-dd dates, so a day
// can never reach into another collection of a path.
func validateDay(day models.DayKey) error {
	parsed, err := models.ParseDayKey(string(day))
	if err != nil || parsed != day {
		return ErrInvalidDay
	}
	return nil
}

func validateDayScope(userID string, day models.DayKey) error {
	if err := validateUserID(userID); err != nil {
		return err
	}
	return validateDay(day)
}
