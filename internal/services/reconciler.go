package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/terraincognita07/platewise/internal/metrics"
	"github.com/terraincognita07/platewise/internal/models"
)

type DayRef struct {
	UserID string
	Day    models.DayKey
}

// PendingDays is the set of days whose summary could not be refreshed.
type PendingDays struct {
	mu   sync.Mutex
	days map[DayRef]struct{}
}

func NewPendingDays() *PendingDays {
	return &PendingDays{days: make(map[DayRef]struct{})}
}

func (pending *PendingDays) Mark(userID string, day models.DayKey) {
	pending.mu.Lock()
	defer pending.mu.Unlock()

	pending.days[DayRef{UserID: userID, Day: day}] = struct{}{}
	metrics.ReconcilePendingDays.Set(float64(len(pending.days)))
}

// Drain empties the set and returns its former contents in a stable order.
func (pending *PendingDays) Drain() []DayRef {
	pending.mu.Lock()
	defer pending.mu.Unlock()

	refs := make([]DayRef, 0, len(pending.days))
	for ref := range pending.days {
		refs = append(refs, ref)
	}
	pending.days = make(map[DayRef]struct{})
	metrics.ReconcilePendingDays.Set(0)

	sort.Slice(refs, func(i, j int) bool {
		if refs[i].UserID != refs[j].UserID {
			return refs[i].UserID < refs[j].UserID
		}
		return refs[i].Day.Before(refs[j].Day)
	})
	return refs
}

func (pending *PendingDays) Len() int {
	pending.mu.Lock()
	defer pending.mu.Unlock()
	return len(pending.days)
}

type SummaryRecomputer interface {
	RecomputeSummary(ctx context.Context, userID string, day models.DayKey) (models.Summary, error)
}

type Reconciler struct {
	summaries SummaryRecomputer
	pending   *PendingDays
	logger    zerolog.Logger

	mu        sync.Mutex
	scheduler *cron.Cron
}

func NewReconciler(summaries SummaryRecomputer, pending *PendingDays, logger zerolog.Logger) *Reconciler {
	return &Reconciler{
		summaries: summaries,
		pending:   pending,
		logger:    logger,
	}
}

// RunOnce recomputes every queued day. Days that fail again are re-queued.
func (reconciler *Reconciler) RunOnce(ctx context.Context) int {
	recovered := 0
	for _, ref := range reconciler.pending.Drain() {
		_, err := reconciler.summaries.RecomputeSummary(ctx, ref.UserID, ref.Day)
		var partial *PartialAggregationError
		if err != nil && !errors.As(err, &partial) {
			reconciler.pending.Mark(ref.UserID, ref.Day)
			reconciler.logger.Warn().Err(err).Str("user_id", ref.UserID).Str("day", ref.Day.String()).Msg("summary retry failed")
			continue
		}
		recovered++
	}
	if recovered > 0 {
		reconciler.logger.Info().Int("days", recovered).Msg("reconciled stale summaries")
	}
	return recovered
}

func (reconciler *Reconciler) Start(schedule string) error {
	reconciler.mu.Lock()
	defer reconciler.mu.Unlock()

	if reconciler.scheduler != nil {
		return errors.New("reconciler already started")
	}
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(schedule, func() {
		reconciler.RunOnce(context.Background())
	}); err != nil {
		return fmt.Errorf("schedule reconciler %q: %w", schedule, err)
	}
	scheduler.Start()
	reconciler.scheduler = scheduler
	return nil
}

// Stop halts the schedule and waits for a running pass to finish.
func (reconciler *Reconciler) Stop() {
	reconciler.mu.Lock()
	scheduler := reconciler.scheduler
	reconciler.scheduler = nil
	reconciler.mu.Unlock()

	if scheduler != nil {
		<-scheduler.Stop().Done()
	}
}
