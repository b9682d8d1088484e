package telegram

import (
	"strings"
	"testing"

	"github.com/babaearn/Pnl-sharing-card-bot/internal/config"
	"github.com/babaearn/Pnl-sharing-card-bot/internal/services"

	"gorm.io/gorm"
)

const (
	testChatID  = -1001234
	testTopicID = 77
	adminID     = 10
	memberID    = 20
)

func newTestHandler(t *testing.T, db *gorm.DB, sender MessageSender) *UpdateHandler {
	t.Helper()
	cfg := &config.Config{
		ChatID:   testChatID,
		TopicID:  testTopicID,
		AdminIDs: []int64{adminID},
	}

	participants := services.NewParticipantService(db)
	submissions := services.NewSubmissionService(db)
	leaderboard := services.NewLeaderboardService(db)
	fraud := services.NewFraudService(db, false)
	coordinator := NewForwardCoordinator(sender, participants, submissions, leaderboard, fraud)

	return NewUpdateHandler(
		cfg, sender, coordinator,
		participants, submissions,
		services.NewLedgerService(db), leaderboard,
		services.NewWeekService(db),
		services.NewWinnerService(db, leaderboard),
		services.NewStatsService(db),
		services.NewSettingService(db),
		fraud,
	)
}

func topicPhoto(fromID int64, name, photo string) Update {
	return Update{Message: &Message{
		MessageID:       1,
		From:            &User{ID: fromID, FirstName: name},
		Chat:            Chat{ID: testChatID, Type: "supergroup"},
		MessageThreadID: testTopicID,
		Photo:           []PhotoSize{{FileID: photo, FileUniqueID: "u-" + photo}},
	}}
}

func command(fromID int64, chatType, text string) Update {
	chatID := fromID
	if chatType != "private" {
		chatID = testChatID
	}
	return Update{Message: &Message{
		MessageID: 2,
		From:      &User{ID: fromID, FirstName: "Someone"},
		Chat:      Chat{ID: chatID, Type: chatType},
		Text:      text,
		Entities:  []MessageEntity{{Type: "bot_command", Offset: 0, Length: len(strings.Fields(text)[0])}},
	}}
}

func lastMessage(t *testing.T, sender *fakeSender) string {
	t.Helper()
	msgs := sender.messages()
	if len(msgs) == 0 {
		t.Fatalf("no reply sent")
	}
	return msgs[len(msgs)-1].Text
}

func TestTopicPhotoIsCredited(t *testing.T) {
	db := testDB(t)
	sender := &fakeSender{}
	h := newTestHandler(t, db, sender)

	h.Handle(topicPhoto(memberID, "Alice", "photo-1"))

	n, err := services.NewSubmissionService(db).TotalCount()
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Errorf("submissions = %d, want 1", n)
	}
	// The live path stays silent in the group.
	if len(sender.messages()) != 0 {
		t.Errorf("topic photo triggered a reply: %+v", sender.messages())
	}
}

func TestPhotoOutsideTopicIgnored(t *testing.T) {
	db := testDB(t)
	sender := &fakeSender{}
	h := newTestHandler(t, db, sender)

	upd := topicPhoto(memberID, "Alice", "photo-1")
	upd.Message.MessageThreadID = 99

	h.Handle(upd)

	n, _ := services.NewSubmissionService(db).TotalCount()
	if n != 0 {
		t.Errorf("photo outside the campaign topic was credited")
	}
}

func TestAdminCommandRejectedForMembers(t *testing.T) {
	db := testDB(t)
	sender := &fakeSender{}
	h := newTestHandler(t, db, sender)

	h.Handle(command(memberID, "private", "/adminboard"))

	if reply := lastMessage(t, sender); !strings.Contains(reply, "admin-only") {
		t.Errorf("member got past the admin gate: %q", reply)
	}
}

func TestAdminCommandRejectedInGroup(t *testing.T) {
	db := testDB(t)
	sender := &fakeSender{}
	h := newTestHandler(t, db, sender)

	h.Handle(command(adminID, "supergroup", "/adminboard"))

	if reply := lastMessage(t, sender); !strings.Contains(reply, "DMs") {
		t.Errorf("admin command ran in a group chat: %q", reply)
	}
}

func TestRankCommand(t *testing.T) {
	db := testDB(t)
	sender := &fakeSender{}
	h := newTestHandler(t, db, sender)

	h.Handle(topicPhoto(memberID, "Alice", "photo-1"))
	h.Handle(command(memberID, "supergroup", "/rank"))

	reply := lastMessage(t, sender)
	if !strings.Contains(reply, "🥇") || !strings.Contains(reply, "Alice") {
		t.Errorf("rank reply missing leader: %q", reply)
	}
}

func TestRankHidesPointsWhenToggledOff(t *testing.T) {
	db := testDB(t)
	sender := &fakeSender{}
	h := newTestHandler(t, db, sender)

	h.Handle(topicPhoto(memberID, "Alice", "photo-1"))
	h.Handle(command(adminID, "private", "/pointsoff"))
	h.Handle(command(memberID, "supergroup", "/rank"))

	reply := lastMessage(t, sender)
	if strings.Contains(reply, "points") {
		t.Errorf("points shown while display is off: %q", reply)
	}
	if !strings.Contains(reply, "Alice") {
		t.Errorf("names missing from hidden-points board: %q", reply)
	}
}

func TestAddPointsCommand(t *testing.T) {
	db := testDB(t)
	sender := &fakeSender{}
	h := newTestHandler(t, db, sender)

	h.Handle(topicPhoto(memberID, "Alice", "photo-1"))
	h.Handle(command(adminID, "private", "/addpoints #01 2 bonus"))

	reply := lastMessage(t, sender)
	if !strings.Contains(reply, "1 → 3") {
		t.Errorf("addpoints reply = %q", reply)
	}
}

func TestAddPointsUsage(t *testing.T) {
	db := testDB(t)
	sender := &fakeSender{}
	h := newTestHandler(t, db, sender)

	h.Handle(command(adminID, "private", "/addpoints #01"))

	if reply := lastMessage(t, sender); !strings.Contains(reply, "Usage") {
		t.Errorf("bad args did not produce usage text: %q", reply)
	}
	n, _ := services.NewSubmissionService(db).TotalCount()
	if n != 0 {
		t.Errorf("usage error mutated state")
	}
}

func TestRemoveDataRequiresConfirm(t *testing.T) {
	db := testDB(t)
	sender := &fakeSender{}
	h := newTestHandler(t, db, sender)

	h.Handle(topicPhoto(memberID, "Alice", "photo-1"))
	h.Handle(command(adminID, "private", "/removedata 1"))

	// Nothing deleted until /confirm.
	n, _ := services.NewSubmissionService(db).TotalCount()
	if n != 1 {
		t.Fatalf("removedata deleted before confirmation")
	}

	h.Handle(command(adminID, "private", "/confirm"))
	n, _ = services.NewSubmissionService(db).TotalCount()
	if n != 0 {
		t.Errorf("confirmed removedata left %d submissions", n)
	}
}

func TestCancelDropsPendingAction(t *testing.T) {
	db := testDB(t)
	sender := &fakeSender{}
	h := newTestHandler(t, db, sender)

	h.Handle(topicPhoto(memberID, "Alice", "photo-1"))
	h.Handle(command(adminID, "private", "/removedata 1"))
	h.Handle(command(adminID, "private", "/cancel"))
	h.Handle(command(adminID, "private", "/confirm"))

	n, _ := services.NewSubmissionService(db).TotalCount()
	if n != 1 {
		t.Errorf("cancelled action still ran")
	}
	if reply := lastMessage(t, sender); !strings.Contains(reply, "Nothing to confirm") {
		t.Errorf("confirm after cancel replied %q", reply)
	}
}

func TestForwardedPhotoFromNonAdminIgnored(t *testing.T) {
	db := testDB(t)
	sender := &fakeSender{}
	h := newTestHandler(t, db, sender)

	h.Handle(Update{Message: &Message{
		MessageID:     3,
		From:          &User{ID: memberID, FirstName: "Mallory"},
		Chat:          Chat{ID: memberID, Type: "private"},
		Photo:         []PhotoSize{{FileID: "photo-1", FileUniqueID: "u-1"}},
		ForwardOrigin: &MessageOrigin{Type: OriginUser, SenderUser: &User{ID: 900, FirstName: "Victim"}},
	}})

	n, _ := services.NewSubmissionService(db).TotalCount()
	if n != 0 {
		t.Errorf("non-admin forward was credited")
	}
}
