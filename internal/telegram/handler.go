package telegram

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/babaearn/Pnl-sharing-card-bot/internal/config"
	"github.com/babaearn/Pnl-sharing-card-bot/internal/models"
	"github.com/babaearn/Pnl-sharing-card-bot/internal/services"
)

type UpdateHandler struct {
	cfg         *config.Config
	sender      MessageSender
	coordinator *ForwardCoordinator
	confirm     *ConfirmManager

	participants *services.ParticipantService
	submissions  *services.SubmissionService
	ledger       *services.LedgerService
	leaderboard  *services.LeaderboardService
	weeks        *services.WeekService
	winners      *services.WinnerService
	stats        *services.StatsService
	settings     *services.SettingService
	fraud        *services.FraudService
}

func NewUpdateHandler(
	cfg *config.Config,
	sender MessageSender,
	coordinator *ForwardCoordinator,
	participants *services.ParticipantService,
	submissions *services.SubmissionService,
	ledger *services.LedgerService,
	leaderboard *services.LeaderboardService,
	weeks *services.WeekService,
	winners *services.WinnerService,
	stats *services.StatsService,
	settings *services.SettingService,
	fraud *services.FraudService,
) *UpdateHandler {
	return &UpdateHandler{
		cfg:          cfg,
		sender:       sender,
		coordinator:  coordinator,
		confirm:      NewConfirmManager(),
		participants: participants,
		submissions:  submissions,
		ledger:       ledger,
		leaderboard:  leaderboard,
		weeks:        weeks,
		winners:      winners,
		stats:        stats,
		settings:     settings,
		fraud:        fraud,
	}
}

func (h *UpdateHandler) Handle(upd Update) {
	msg := upd.Message
	if msg == nil {
		return
	}

	if len(msg.Photo) > 0 {
		if msg.ForwardOrigin != nil && msg.Chat.Type == "private" {
			h.handleForwardedPhoto(msg)
		} else {
			h.handleTopicPhoto(msg)
		}
		return
	}

	if cmd := commandName(msg); cmd != "" {
		h.handleCommand(cmd, msg)
	}
}

// handleTopicPhoto is the live path: a photo posted in the campaign topic.
// Errors are logged and the event dropped; nothing is replied in the group.
func (h *UpdateHandler) handleTopicPhoto(msg *Message) {
	if msg.Chat.ID != h.cfg.ChatID || msg.MessageThreadID != h.cfg.TopicID {
		return
	}
	if msg.From == nil {
		return
	}

	photo := msg.LargestPhoto()
	userID := msg.From.ID
	var username *string
	if msg.From.Username != "" {
		u := msg.From.Username
		username = &u
	}

	p, err := h.participants.Resolve(&userID, username, msg.From.FullName())
	if err != nil {
		log.Printf("[topic] resolve message %d: %v", msg.MessageID, err)
		return
	}

	msgID := msg.MessageID
	res, err := h.submissions.Submit(p.ID, photo.FileID, models.SourceTopic, &msgID)
	if err != nil {
		log.Printf("[topic] submit message %d: %v", msg.MessageID, err)
		return
	}
	if res.Added {
		log.Printf("[topic] new submission: %s week=%d msg=%d", p.Code, res.WeekNumber, msg.MessageID)
		h.fraud.Record(p.ID, services.PhotoHashStub(photo.FileUniqueID))
	} else {
		log.Printf("[topic] duplicate ignored: %s msg=%d", p.Code, msg.MessageID)
	}
}

// handleForwardedPhoto is the admin DM path: each forwarded card goes through
// the per-admin batch queue. Chat/channel origins are enqueued without an
// identity so the batch tallies them as failed instead of crediting the
// forwarding admin.
func (h *UpdateHandler) handleForwardedPhoto(msg *Message) {
	if msg.From == nil || !h.cfg.IsAdmin(msg.From.ID) {
		return
	}

	photo := msg.LargestPhoto()
	identity, ok := msg.ForwardOrigin.Identity()
	if !ok {
		log.Printf("[forward] uncreditable origin %q for message %d", msg.ForwardOrigin.Type, msg.MessageID)
	}

	h.coordinator.Enqueue(msg.From.ID, msg.Chat.ID, ForwardItem{
		Identity:      identity,
		PhotoFileID:   photo.FileID,
		PhotoUniqueID: photo.FileUniqueID,
		MessageID:     msg.MessageID,
	})
}

func (h *UpdateHandler) handleCommand(cmd string, msg *Message) {
	args := commandArgs(msg.Text)

	switch cmd {
	case "start", "help":
		h.cmdStart(msg)
	case "rank":
		h.cmdRank(msg, args)
	case "adminboard":
		h.adminOnly(msg, func() { h.cmdAdminBoard(msg, args) })
	case "stats", "eng":
		h.adminOnly(msg, func() { h.cmdStats(msg) })
	case "addpoints":
		h.adminOnly(msg, func() { h.cmdAddPoints(msg, args, nil) })
	case "weekpoints":
		h.adminOnly(msg, func() { h.cmdWeekPoints(msg, args) })
	case "newweek":
		h.adminOnly(msg, func() { h.cmdNewWeek(msg, args) })
	case "setweek":
		h.adminOnly(msg, func() { h.cmdSetWeek(msg, args) })
	case "removedata":
		h.adminOnly(msg, func() { h.cmdRemoveData(msg, args) })
	case "undodata":
		h.adminOnly(msg, func() { h.cmdUndoData(msg, args) })
	case "recalc":
		h.adminOnly(msg, func() { h.cmdRecalc(msg) })
	case "removeuser":
		h.adminOnly(msg, func() { h.cmdRemoveUser(msg, args) })
	case "selectwinners":
		h.adminOnly(msg, func() { h.cmdSelectWinners(msg, args) })
	case "winners":
		h.adminOnly(msg, func() { h.cmdWinners(msg, args) })
	case "pointson":
		h.adminOnly(msg, func() { h.cmdShowPoints(msg, true) })
	case "pointsoff":
		h.adminOnly(msg, func() { h.cmdShowPoints(msg, false) })
	case "reset":
		h.adminOnly(msg, func() { h.cmdReset(msg) })
	case "confirm":
		h.adminOnly(msg, func() { h.cmdConfirm(msg) })
	case "cancel":
		h.adminOnly(msg, func() { h.cmdCancel(msg) })
	}
}

// adminOnly gates sensitive commands to allowlisted admins in private chats.
func (h *UpdateHandler) adminOnly(msg *Message, fn func()) {
	if msg.From == nil || !h.cfg.IsAdmin(msg.From.ID) {
		h.reply(msg, "⛔ This command is admin-only")
		return
	}
	if msg.Chat.Type != "private" {
		h.reply(msg, "⛔ This command only works in DMs")
		return
	}
	fn()
}

func (h *UpdateHandler) reply(msg *Message, text string) {
	if _, err := h.sender.SendMessage(msg.Chat.ID, text, "", nil); err != nil {
		log.Printf("[bot] reply to %d: %v", msg.Chat.ID, err)
	}
}

func (h *UpdateHandler) cmdStart(msg *Message) {
	lines := []string{
		"👋 PnL Flex Challenge Leaderboard Bot",
		"",
		"/rank — top 5 leaderboard",
		"/rank <week> — weekly leaderboard",
	}
	if msg.From != nil && h.cfg.IsAdmin(msg.From.ID) {
		lines = append(lines,
			"",
			"Admin (DM only):",
			"/adminboard [week] — top 10 with codes and IDs",
			"/stats — engagement counters",
			"/addpoints <code> <±delta> [note] — cumulative adjustment",
			"/weekpoints <code> <±delta> <week> [note] — weekly adjustment",
			"/newweek [label] — advance the week marker",
			"/setweek <n> [label] — set the week marker",
			"/selectwinners <week> — snapshot weekly top 5",
			"/winners <week> — view saved winners",
			"/removedata <week> — purge a week (with backup)",
			"/undodata <week> — restore a purged week",
			"/recalc — reconcile cumulative totals",
			"/removeuser <code> — delete a participant",
			"/pointson | /pointsoff — toggle public points",
			"/reset — wipe everything",
			"",
			"Forward PnL cards here to credit them in bulk.",
		)
	}
	h.reply(msg, strings.Join(lines, "\n"))
}

func (h *UpdateHandler) cmdRank(msg *Message, args []string) {
	var week *int
	title := "🏆 PnL Flex Challenge - All Time"
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 {
			h.reply(msg, "❌ Week must be a positive number")
			return
		}
		week = &n
		title = fmt.Sprintf("🏆 PnL Flex Challenge - Week %d", n)
	}

	entries, err := h.leaderboard.Top(5, week)
	if err != nil {
		h.reply(msg, "❌ Could not load the leaderboard, try again later")
		return
	}
	h.reply(msg, formatLeaderboard(title, entries, h.settings.ShowPoints()))
}

func (h *UpdateHandler) cmdAdminBoard(msg *Message, args []string) {
	var week *int
	title := "🔐 Admin Dashboard - All Time"
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 {
			h.reply(msg, "❌ Week must be a positive number")
			return
		}
		week = &n
		title = fmt.Sprintf("🔐 Admin Dashboard - Week %d", n)
	}

	entries, err := h.leaderboard.Top(10, week)
	if err != nil {
		h.reply(msg, "❌ Could not load the leaderboard: "+err.Error())
		return
	}

	text := formatAdminBoard(title, entries)
	status := "ON ✅"
	if !h.settings.ShowPoints() {
		status = "OFF ❌"
	}
	h.reply(msg, text+"\n⚙️ Points Display: "+status)
}

func (h *UpdateHandler) cmdStats(msg *Message) {
	stats, err := h.stats.Engagement()
	if err != nil {
		h.reply(msg, "❌ Could not load stats: "+err.Error())
		return
	}
	h.reply(msg, formatStats(stats))
}

func (h *UpdateHandler) cmdAddPoints(msg *Message, args []string, week *int) {
	if len(args) < 2 {
		h.reply(msg, "Usage: /addpoints <code> <±delta> [note]\nExample: /addpoints #02 -3 double posting")
		return
	}
	delta, err := strconv.Atoi(args[1])
	if err != nil || delta == 0 {
		h.reply(msg, "❌ Delta must be a non-zero number")
		return
	}
	note := strings.Join(args[2:], " ")

	result, err := h.ledger.Adjust(args[0], delta, msg.From.ID, note, week)
	if err != nil {
		if errors.Is(err, services.ErrParticipantNotFound) {
			h.reply(msg, fmt.Sprintf("❌ Participant %s not found", services.NormalizeCode(args[0])))
			return
		}
		h.reply(msg, "❌ Adjustment failed: "+err.Error())
		return
	}

	if result.WeekNumber != nil {
		h.reply(msg, fmt.Sprintf("✅ %s %s: %+d points for week %d (cumulative total unchanged)",
			result.Code, result.DisplayName, delta, *result.WeekNumber))
		return
	}
	h.reply(msg, fmt.Sprintf("✅ %s %s: %d → %d points (cumulative)",
		result.Code, result.DisplayName, result.OldPoints, result.NewPoints))
}

func (h *UpdateHandler) cmdWeekPoints(msg *Message, args []string) {
	if len(args) < 3 {
		h.reply(msg, "Usage: /weekpoints <code> <±delta> <week> [note]")
		return
	}
	week, err := strconv.Atoi(args[2])
	if err != nil || week < 1 {
		h.reply(msg, "❌ Week must be a positive number")
		return
	}
	rest := append([]string{args[0], args[1]}, args[3:]...)
	h.cmdAddPoints(msg, rest, &week)
}

func (h *UpdateHandler) cmdNewWeek(msg *Message, args []string) {
	oldLabel, newLabel, oldWeek, newWeek, err := h.weeks.StartNew(strings.Join(args, " "))
	if err != nil {
		h.reply(msg, "❌ Could not start a new week: "+err.Error())
		return
	}
	h.reply(msg, fmt.Sprintf("📅 New week started: %s (week %d) → %s (week %d)\nAll history is preserved.",
		oldLabel, oldWeek, newLabel, newWeek))
}

func (h *UpdateHandler) cmdSetWeek(msg *Message, args []string) {
	if len(args) < 1 {
		h.reply(msg, "Usage: /setweek <n> [label]")
		return
	}
	week, err := strconv.Atoi(args[0])
	if err != nil {
		h.reply(msg, "❌ Week must be a number")
		return
	}
	label, err := h.weeks.Set(week, strings.Join(args[1:], " "))
	if err != nil {
		if errors.Is(err, services.ErrBadWeek) {
			h.reply(msg, "❌ Week number must be 1 or greater")
			return
		}
		h.reply(msg, "❌ Could not set the week: "+err.Error())
		return
	}
	h.reply(msg, fmt.Sprintf("⚙️ Current week set to %d (%s)", week, label))
}

func (h *UpdateHandler) cmdRemoveData(msg *Message, args []string) {
	week, ok := h.parseWeekArg(msg, args, "Usage: /removedata <week>")
	if !ok {
		return
	}
	h.confirm.Ask(msg.From.ID, PendingAction{Action: ActionRemoveData, Week: week})
	h.reply(msg, fmt.Sprintf(
		"⚠️ This deletes all submissions and adjustments for week %d (a backup is kept).\nSend /confirm within 1 minute to proceed, or /cancel.", week))
}

func (h *UpdateHandler) cmdUndoData(msg *Message, args []string) {
	week, ok := h.parseWeekArg(msg, args, "Usage: /undodata <week>")
	if !ok {
		return
	}
	subs, adjs, err := h.weeks.RestoreData(week)
	if err != nil {
		if errors.Is(err, services.ErrNoBackup) {
			h.reply(msg, fmt.Sprintf("❌ No backup data found for week %d", week))
			return
		}
		h.reply(msg, "❌ Restore failed: "+err.Error())
		return
	}
	h.reply(msg, fmt.Sprintf(
		"♻️ Week %d restored: %d submissions, %d adjustments.\nRun /recalc to reconcile cumulative totals.", week, subs, adjs))
}

func (h *UpdateHandler) cmdRecalc(msg *Message) {
	corrections, err := h.ledger.Recalculate()
	if err != nil {
		h.reply(msg, "❌ Recalculation failed: "+err.Error())
		return
	}
	h.reply(msg, formatCorrections(corrections))
}

func (h *UpdateHandler) cmdRemoveUser(msg *Message, args []string) {
	if len(args) < 1 {
		h.reply(msg, "Usage: /removeuser <code>")
		return
	}
	code := services.NormalizeCode(args[0])
	if _, err := h.participants.ByCode(code); err != nil {
		if errors.Is(err, services.ErrParticipantNotFound) {
			h.reply(msg, fmt.Sprintf("❌ Participant %s not found", code))
			return
		}
		h.reply(msg, "❌ Lookup failed: "+err.Error())
		return
	}
	h.confirm.Ask(msg.From.ID, PendingAction{Action: ActionRemoveUser, Code: code})
	h.reply(msg, fmt.Sprintf(
		"⚠️ This deletes %s and all their submissions and adjustments.\nSend /confirm within 1 minute to proceed, or /cancel.", code))
}

func (h *UpdateHandler) cmdSelectWinners(msg *Message, args []string) {
	week, ok := h.parseWeekArg(msg, args, "Usage: /selectwinners <week>\nExample: /selectwinners 1")
	if !ok {
		return
	}
	winners, err := h.winners.Select(week, 5)
	if err != nil {
		if errors.Is(err, services.ErrNoSubmissionsForWeek) {
			h.reply(msg, fmt.Sprintf("❌ No submissions for Week %d", week))
			return
		}
		h.reply(msg, "❌ Could not select winners: "+err.Error())
		return
	}

	lines := []string{fmt.Sprintf("✅ Winners Selected for Week %d", week), ""}
	for _, w := range winners {
		lines = append(lines, fmt.Sprintf("%s %s %s - %d points", rankEmoji(w.Rank), w.Code, w.DisplayName, w.PointsAtTime))
	}
	h.reply(msg, strings.Join(lines, "\n"))
}

func (h *UpdateHandler) cmdWinners(msg *Message, args []string) {
	week, ok := h.parseWeekArg(msg, args, "Usage: /winners <week>\nExample: /winners 1")
	if !ok {
		return
	}
	winners, err := h.winners.Winners(week)
	if err != nil {
		h.reply(msg, "❌ Could not load winners: "+err.Error())
		return
	}
	h.reply(msg, formatWinners(week, winners))
}

func (h *UpdateHandler) cmdShowPoints(msg *Message, show bool) {
	if err := h.settings.SetShowPoints(show); err != nil {
		h.reply(msg, "❌ Could not update the setting: "+err.Error())
		return
	}
	if show {
		h.reply(msg, "✅ Points display enabled for public leaderboard")
	} else {
		h.reply(msg, "✅ Points display disabled for public leaderboard")
	}
}

func (h *UpdateHandler) cmdReset(msg *Message) {
	h.confirm.Ask(msg.From.ID, PendingAction{Action: ActionReset})
	h.reply(msg, "⚠️ This wipes ALL participants, submissions, adjustments and winners.\nSend /confirm within 1 minute to proceed, or /cancel.")
}

func (h *UpdateHandler) cmdConfirm(msg *Message) {
	action, ok := h.confirm.Take(msg.From.ID)
	if !ok {
		h.reply(msg, "Nothing to confirm (or the request expired).")
		return
	}

	switch action.Action {
	case ActionReset:
		if err := h.stats.ResetAll(); err != nil {
			h.reply(msg, "❌ Reset failed: "+err.Error())
			return
		}
		h.reply(msg, "✅ All data reset. Starting fresh from #01.")
	case ActionRemoveData:
		subs, adjs, err := h.weeks.DeleteData(action.Week, msg.From.ID)
		if err != nil {
			h.reply(msg, "❌ Deletion failed: "+err.Error())
			return
		}
		h.reply(msg, fmt.Sprintf(
			"🗑️ Week %d data deleted:\n• %d submissions removed\n• %d adjustments removed\nParticipants remain intact.\nUse /undodata %d to restore.",
			action.Week, subs, adjs, action.Week))
	case ActionRemoveUser:
		p, err := h.participants.Remove(action.Code)
		if err != nil {
			h.reply(msg, "❌ Deletion failed: "+err.Error())
			return
		}
		h.reply(msg, fmt.Sprintf("🗑️ Deleted %s (%s) - %d points removed", p.Code, p.DisplayName, p.Points))
	}
}

func (h *UpdateHandler) cmdCancel(msg *Message) {
	h.confirm.Clear(msg.From.ID)
	h.reply(msg, "Cancelled.")
}

func (h *UpdateHandler) parseWeekArg(msg *Message, args []string, usage string) (int, bool) {
	if len(args) != 1 {
		h.reply(msg, usage)
		return 0, false
	}
	week, err := strconv.Atoi(args[0])
	if err != nil || week < 1 {
		h.reply(msg, "❌ Week must be a number, 1 or greater")
		return 0, false
	}
	return week, true
}

// commandName extracts a leading bot command from the message entities, with
// any @botname suffix stripped.
func commandName(msg *Message) string {
	for _, e := range msg.Entities {
		if e.Type == "bot_command" && e.Offset == 0 && e.Length <= len(msg.Text) {
			cmd := msg.Text[1:e.Length]
			return strings.ToLower(strings.Split(cmd, "@")[0])
		}
	}
	return ""
}

func commandArgs(text string) []string {
	fields := strings.Fields(text)
	if len(fields) < 2 {
		return nil
	}
	return fields[1:]
}
