package models

import (
	"errors"
	"strings"
	"time"
)

const DayLayout = "2006-01-02"

var ErrInvalidDay = errors.New("invalid day")

// DayKey is a calendar date in the user's local time, formatted yyyy-MM-dd.
type DayKey string

func ParseDayKey(raw string) (DayKey, error) {
	parsed, err := time.Parse(DayLayout, strings.TrimSpace(raw))
	if err != nil {
		return "", ErrInvalidDay
	}
	return DayKey(parsed.Format(DayLayout)), nil
}

func DayKeyFromTime(value time.Time, location *time.Location) DayKey {
	if location == nil {
		location = time.UTC
	}
	return DayKey(value.In(location).Format(DayLayout))
}

func (day DayKey) String() string {
	return string(day)
}

func (day DayKey) Time() time.Time {
	parsed, err := time.Parse(DayLayout, string(day))
	if err != nil {
		return time.Time{}
	}
	return parsed
}

func (day DayKey) AddDays(offset int) DayKey {
	return DayKey(day.Time().AddDate(0, 0, offset).Format(DayLayout))
}

func (day DayKey) Before(other DayKey) bool {
	return day.Time().Before(other.Time())
}

func (day DayKey) After(other DayKey) bool {
	return day.Time().After(other.Time())
}
