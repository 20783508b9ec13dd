package services

import (
	"context"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/terraincognita07/platewise/internal/models"
)

type recomputerStub struct {
	mu    sync.Mutex
	calls []DayRef
	fail  map[DayRef]error
}

func (stub *recomputerStub) RecomputeSummary(_ context.Context, userID string, day models.DayKey) (models.Summary, error) {
	stub.mu.Lock()
	defer stub.mu.Unlock()

	ref := DayRef{UserID: userID, Day: day}
	stub.calls = append(stub.calls, ref)
	if err := stub.fail[ref]; err != nil {
		return models.Summary{}, err
	}
	return models.Summary{Day: day}, nil
}

func TestPendingDaysDeduplicatesAndDrainsInOrder(t *testing.T) {
	pending := NewPendingDays()
	pending.Mark("b", "2025-03-02")
	pending.Mark("a", "2025-03-04")
	pending.Mark("a", "2025-03-01")
	pending.Mark("a", "2025-03-04")

	if pending.Len() != 3 {
		t.Fatalf("expected 3 pending days, got %d", pending.Len())
	}

	refs := pending.Drain()
	want := []DayRef{
		{UserID: "a", Day: "2025-03-01"},
		{UserID: "a", Day: "2025-03-04"},
		{UserID: "b", Day: "2025-03-02"},
	}
	if len(refs) != len(want) {
		t.Fatalf("expected %d refs, got %v", len(want), refs)
	}
	for index := range want {
		if refs[index] != want[index] {
			t.Fatalf("position %d: expected %v, got %v", index, want[index], refs[index])
		}
	}
	if pending.Len() != 0 {
		t.Fatalf("expected drained set, got %d", pending.Len())
	}
}

func TestReconcilerRequeuesFailedDays(t *testing.T) {
	failing := DayRef{UserID: "a", Day: "2025-03-02"}
	stub := &recomputerStub{fail: map[DayRef]error{
		failing: ErrStoreUnavailable,
		{UserID: "a", Day: "2025-03-03"}: &PartialAggregationError{UserID: "a", Day: "2025-03-03"},
	}}
	pending := NewPendingDays()
	pending.Mark("a", "2025-03-01")
	pending.Mark("a", "2025-03-02")
	pending.Mark("a", "2025-03-03")

	reconciler := NewReconciler(stub, pending, zerolog.Nop())
	if recovered := reconciler.RunOnce(context.Background()); recovered != 2 {
		t.Fatalf("expected 2 recovered days, got %d", recovered)
	}
	if len(stub.calls) != 3 {
		t.Fatalf("expected 3 recompute calls, got %d", len(stub.calls))
	}

	refs := pending.Drain()
	if len(refs) != 1 || refs[0] != failing {
		t.Fatalf("expected only the failing day to stay queued, got %v", refs)
	}
}

func TestReconcilerStartValidatesSchedule(t *testing.T) {
	reconciler := NewReconciler(&recomputerStub{}, NewPendingDays(), zerolog.Nop())

	if err := reconciler.Start("not a schedule"); err == nil {
		t.Fatal("expected invalid schedule to fail")
	}

	if err := reconciler.Start("@every 1h"); err != nil {
		t.Fatalf("Start() unexpected error: %v", err)
	}
	if err := reconciler.Start("@every 1h"); err == nil {
		t.Fatalf("expected second Start() to fail, got %v", err)
	}
	reconciler.Stop()
	reconciler.Stop()
}
