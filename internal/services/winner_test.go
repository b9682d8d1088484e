package services

import (
	"errors"
	"testing"
)

func TestSelectWinnersSnapshotsWeeklyBoard(t *testing.T) {
	db := testDB(t)
	participants := NewParticipantService(db)
	submissions := NewSubmissionService(db)
	board := NewLeaderboardService(db)
	winners := NewWinnerService(db, board)

	alice := mustResolve(t, participants, 100, "Alice")
	bob := mustResolve(t, participants, 200, "Bob")
	submitN(t, submissions, alice.ID, 3, "a")
	submitN(t, submissions, bob.ID, 1, "b")

	selected, err := winners.Select(1, 5)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(selected) != 2 {
		t.Fatalf("winners = %d, want 2", len(selected))
	}
	if selected[0].Code != alice.Code || selected[0].Rank != 1 || selected[0].PointsAtTime != 3 {
		t.Errorf("rank 1 = %+v", selected[0])
	}

	saved, err := winners.Winners(1)
	if err != nil {
		t.Fatalf("winners: %v", err)
	}
	if len(saved) != 2 || saved[0].Code != alice.Code {
		t.Errorf("saved winners = %+v", saved)
	}
}

func TestSelectWinnersReplacesPreviousSnapshot(t *testing.T) {
	db := testDB(t)
	participants := NewParticipantService(db)
	submissions := NewSubmissionService(db)
	board := NewLeaderboardService(db)
	winners := NewWinnerService(db, board)

	alice := mustResolve(t, participants, 100, "Alice")
	bob := mustResolve(t, participants, 200, "Bob")
	submitN(t, submissions, alice.ID, 2, "a")

	if _, err := winners.Select(1, 5); err != nil {
		t.Fatalf("select: %v", err)
	}

	// Bob overtakes, reselecting must replace rank 1 instead of colliding on
	// the (week, rank) unique index.
	submitN(t, submissions, bob.ID, 4, "b")
	selected, err := winners.Select(1, 5)
	if err != nil {
		t.Fatalf("reselect: %v", err)
	}
	if selected[0].Code != bob.Code {
		t.Errorf("rank 1 after reselect = %s, want %s", selected[0].Code, bob.Code)
	}
}

func TestSelectWinnersEmptyWeek(t *testing.T) {
	db := testDB(t)
	board := NewLeaderboardService(db)
	winners := NewWinnerService(db, board)

	if _, err := winners.Select(4, 5); !errors.Is(err, ErrNoSubmissionsForWeek) {
		t.Errorf("err = %v, want ErrNoSubmissionsForWeek", err)
	}
}

func TestWinnersSnapshotSurvivesWeekDelete(t *testing.T) {
	db := testDB(t)
	participants := NewParticipantService(db)
	submissions := NewSubmissionService(db)
	board := NewLeaderboardService(db)
	winners := NewWinnerService(db, board)
	weeks := NewWeekService(db)

	alice := mustResolve(t, participants, 100, "Alice")
	submitN(t, submissions, alice.ID, 2, "a")

	if _, err := winners.Select(1, 5); err != nil {
		t.Fatalf("select: %v", err)
	}
	if _, _, err := weeks.DeleteData(1, 42); err != nil {
		t.Fatalf("delete week: %v", err)
	}

	saved, err := winners.Winners(1)
	if err != nil {
		t.Fatalf("winners: %v", err)
	}
	if len(saved) != 1 || saved[0].PointsAtTime != 2 {
		t.Errorf("snapshot changed after week delete: %+v", saved)
	}
}
