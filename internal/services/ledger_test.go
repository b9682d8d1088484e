package services

import (
	"errors"
	"testing"

	"github.com/babaearn/Pnl-sharing-card-bot/internal/models"
)

func TestAdjustCumulative(t *testing.T) {
	db := testDB(t)
	participants := NewParticipantService(db)
	submissions := NewSubmissionService(db)
	ledger := NewLedgerService(db)

	p := mustResolve(t, participants, 100, "Alice")
	if _, err := submissions.Submit(p.ID, "photo-1", models.SourceTopic, nil); err != nil {
		t.Fatalf("submit: %v", err)
	}

	result, err := ledger.Adjust(p.Code, 2, 1, "bonus", nil)
	if err != nil {
		t.Fatalf("adjust: %v", err)
	}
	if result.OldPoints != 1 || result.NewPoints != 3 {
		t.Errorf("points %d -> %d, want 1 -> 3", result.OldPoints, result.NewPoints)
	}

	fresh, _ := participants.ByCode(p.Code)
	if fresh.Points != 3 {
		t.Errorf("stored points = %d, want 3", fresh.Points)
	}
}

func TestAdjustClampsAtZero(t *testing.T) {
	db := testDB(t)
	participants := NewParticipantService(db)
	submissions := NewSubmissionService(db)
	ledger := NewLedgerService(db)

	p := mustResolve(t, participants, 100, "Alice")
	if _, err := submissions.Submit(p.ID, "photo-1", models.SourceTopic, nil); err != nil {
		t.Fatalf("submit: %v", err)
	}

	result, err := ledger.Adjust(p.Code, -5, 1, "penalty", nil)
	if err != nil {
		t.Fatalf("adjust: %v", err)
	}
	if result.NewPoints != 0 {
		t.Errorf("points clamped to %d, want 0", result.NewPoints)
	}

	// The ledger keeps the full delta even when the total clamps.
	var adj models.Adjustment
	if err := db.First(&adj).Error; err != nil {
		t.Fatalf("load adjustment: %v", err)
	}
	if adj.Delta != -5 {
		t.Errorf("recorded delta = %d, want -5", adj.Delta)
	}
}

func TestAdjustWeekScopedLeavesCumulativeAlone(t *testing.T) {
	db := testDB(t)
	participants := NewParticipantService(db)
	submissions := NewSubmissionService(db)
	ledger := NewLedgerService(db)

	p := mustResolve(t, participants, 100, "Alice")
	if _, err := submissions.Submit(p.ID, "photo-1", models.SourceTopic, nil); err != nil {
		t.Fatalf("submit: %v", err)
	}

	week := 1
	if _, err := ledger.Adjust(p.Code, 3, 1, "weekly bonus", &week); err != nil {
		t.Fatalf("adjust: %v", err)
	}

	fresh, _ := participants.ByCode(p.Code)
	if fresh.Points != 1 {
		t.Errorf("cumulative points = %d, want 1 untouched", fresh.Points)
	}
}

func TestAdjustUnknownCode(t *testing.T) {
	db := testDB(t)
	ledger := NewLedgerService(db)

	if _, err := ledger.Adjust("#99", 1, 1, "", nil); !errors.Is(err, ErrParticipantNotFound) {
		t.Errorf("err = %v, want ErrParticipantNotFound", err)
	}
}

func TestAdjustBumpsCounter(t *testing.T) {
	db := testDB(t)
	participants := NewParticipantService(db)
	ledger := NewLedgerService(db)

	p := mustResolve(t, participants, 100, "Alice")
	if _, err := ledger.Adjust(p.Code, 1, 1, "", nil); err != nil {
		t.Fatalf("adjust: %v", err)
	}
	if got := counterValue(db, models.SettingManualAdjustments); got != 1 {
		t.Errorf("manual adjustment counter = %d, want 1", got)
	}
}

func TestRecalculateFixesDrift(t *testing.T) {
	db := testDB(t)
	participants := NewParticipantService(db)
	submissions := NewSubmissionService(db)
	ledger := NewLedgerService(db)

	p := mustResolve(t, participants, 100, "Alice")
	for _, photo := range []string{"a", "b", "c"} {
		if _, err := submissions.Submit(p.ID, photo, models.SourceTopic, nil); err != nil {
			t.Fatalf("submit: %v", err)
		}
	}

	// Corrupt the denormalized total behind the services' back.
	if err := db.Model(&models.Participant{}).Where("id = ?", p.ID).
		Update("points", 99).Error; err != nil {
		t.Fatalf("corrupt points: %v", err)
	}

	corrections, err := ledger.Recalculate()
	if err != nil {
		t.Fatalf("recalculate: %v", err)
	}
	if len(corrections) != 1 {
		t.Fatalf("corrections = %d, want 1", len(corrections))
	}
	if corrections[0].OldPoints != 99 || corrections[0].NewPoints != 3 {
		t.Errorf("correction %d -> %d, want 99 -> 3", corrections[0].OldPoints, corrections[0].NewPoints)
	}

	// A second run finds nothing to do.
	corrections, err = ledger.Recalculate()
	if err != nil {
		t.Fatalf("recalculate again: %v", err)
	}
	if len(corrections) != 0 {
		t.Errorf("second run produced %d corrections, want 0", len(corrections))
	}
}
