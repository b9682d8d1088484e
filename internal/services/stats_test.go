package services

import (
	"testing"

	"github.com/babaearn/Pnl-sharing-card-bot/internal/models"
)

func TestEngagementCounters(t *testing.T) {
	db := testDB(t)
	participants := NewParticipantService(db)
	submissions := NewSubmissionService(db)
	ledger := NewLedgerService(db)
	stats := NewStatsService(db)

	alice := mustResolve(t, participants, 100, "Alice")
	bob := mustResolve(t, participants, 200, "Bob")
	submitN(t, submissions, alice.ID, 3, "a")
	submitN(t, submissions, bob.ID, 1, "b")
	if _, err := submissions.Submit(alice.ID, "a-0", models.SourceForward, nil); err != nil {
		t.Fatalf("duplicate submit: %v", err)
	}
	if _, err := ledger.Adjust(bob.Code, 1, 1, "", nil); err != nil {
		t.Fatalf("adjust: %v", err)
	}

	s, err := stats.Engagement()
	if err != nil {
		t.Fatalf("engagement: %v", err)
	}
	if s.TotalParticipants != 2 {
		t.Errorf("participants = %d, want 2", s.TotalParticipants)
	}
	if s.TotalSubmissions != 4 {
		t.Errorf("submissions = %d, want 4", s.TotalSubmissions)
	}
	if s.Duplicates != 1 {
		t.Errorf("duplicates = %d, want 1", s.Duplicates)
	}
	if s.ManualAdjustments != 1 {
		t.Errorf("adjustments = %d, want 1", s.ManualAdjustments)
	}
	if s.MostActive != "Alice" || s.MaxPoints != 3 {
		t.Errorf("most active = %s/%d, want Alice/3", s.MostActive, s.MaxPoints)
	}
}

func TestResetAllStartsOver(t *testing.T) {
	db := testDB(t)
	participants := NewParticipantService(db)
	submissions := NewSubmissionService(db)
	stats := NewStatsService(db)

	alice := mustResolve(t, participants, 100, "Alice")
	submitN(t, submissions, alice.ID, 2, "a")

	if err := stats.ResetAll(); err != nil {
		t.Fatalf("reset: %v", err)
	}

	n, err := submissions.TotalCount()
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 0 {
		t.Errorf("submissions after reset = %d", n)
	}

	// Codes restart from #01 for the next participant.
	fresh := mustResolve(t, participants, 900, "Newcomer")
	if fresh.Code != "#01" {
		t.Errorf("post-reset code = %q, want #01", fresh.Code)
	}

	s, err := stats.Engagement()
	if err != nil {
		t.Fatalf("engagement: %v", err)
	}
	if s.TotalSubmissions != 0 || s.Duplicates != 0 || s.ManualAdjustments != 0 {
		t.Errorf("counters not rewound: %+v", s)
	}
}
