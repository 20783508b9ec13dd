package services

import (
	"context"

	"github.com/terraincognita07/platewise/internal/models"
)

type TargetReader interface {
	Target(ctx context.Context, userID string) (models.NutritionTarget, bool, error)
}

type DayScore struct {
	Day            models.DayKey
	Score          float64
	Consumed       models.Nutrition
	HasConsumption bool
}

type WeekScore struct {
	WeekStart      models.DayKey
	Score          float64
	IsCurrentWeek  bool
	QualifyingDays int
	Days           []DayScore
}

type ScoringService struct {
	targets   TargetReader
	summaries SummaryReader
}

func NewScoringService(targets TargetReader, summaries SummaryReader) *ScoringService {
	return &ScoringService{
		targets:   targets,
		summaries: summaries,
	}
}

func (service *ScoringService) ScoreDay(ctx context.Context, userID string, day models.DayKey) (DayScore, error) {
	targets, _, err := service.targets.Target(ctx, userID)
	if err != nil {
		return DayScore{}, err
	}
	consumption, err := service.consumption(ctx, userID, day)
	if err != nil {
		return DayScore{}, err
	}
	return DayScore{
		Day:            day,
		Score:          DailyScore(consumption.Consumed, targets),
		Consumed:       consumption.Consumed,
		HasConsumption: consumption.HasConsumption(),
	}, nil
}

// ScoreWeek scores the seven days starting at weekStart. today decides which
// days of the current week have happened yet.
func (service *ScoringService) ScoreWeek(ctx context.Context, userID string, weekStart models.DayKey, today models.DayKey) (WeekScore, error) {
	if err := validateDay(weekStart); err != nil {
		return WeekScore{}, err
	}
	if err := validateDay(today); err != nil {
		return WeekScore{}, err
	}
	targets, _, err := service.targets.Target(ctx, userID)
	if err != nil {
		return WeekScore{}, err
	}

	days := make([]DayConsumption, 0, DaysPerWeek)
	scores := make([]DayScore, 0, DaysPerWeek)
	for _, day := range WeekDays(weekStart) {
		consumption, err := service.consumption(ctx, userID, day)
		if err != nil {
			return WeekScore{}, err
		}
		days = append(days, consumption)
		scores = append(scores, DayScore{
			Day:            day,
			Score:          DailyScore(consumption.Consumed, targets),
			Consumed:       consumption.Consumed,
			HasConsumption: consumption.HasConsumption(),
		})
	}

	current := IsCurrentWeek(weekStart, today)
	return WeekScore{
		WeekStart:      weekStart,
		Score:          WeeklyScore(days, targets, today, current),
		IsCurrentWeek:  current,
		QualifyingDays: len(QualifyingDays(days, today, current)),
		Days:           scores,
	}, nil
}

func (service *ScoringService) consumption(ctx context.Context, userID string, day models.DayKey) (DayConsumption, error) {
	summary, _, err := service.summaries.Summary(ctx, userID, day)
	if err != nil {
		return DayConsumption{}, err
	}
	return DayConsumption{Day: day, Consumed: summary.Consumed()}, nil
}
