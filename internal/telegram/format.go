package telegram

import (
	"fmt"
	"strings"

	"github.com/babaearn/Pnl-sharing-card-bot/internal/services"
)

var rankEmojis = map[int]string{1: "🥇", 2: "🥈", 3: "🥉", 4: "🏅", 5: "🏅"}

func rankEmoji(rank int) string {
	if emoji, ok := rankEmojis[rank]; ok {
		return emoji
	}
	return fmt.Sprintf("%d.", rank)
}

func displayFor(e services.LeaderboardEntry) string {
	if e.Username != nil && *e.Username != "" {
		return "@" + *e.Username
	}
	return e.DisplayName
}

func formatLeaderboard(title string, entries []services.LeaderboardEntry, showPoints bool) string {
	if len(entries) == 0 {
		return "📊 No submissions yet"
	}
	lines := []string{title, ""}
	for i, e := range entries {
		if showPoints {
			lines = append(lines, fmt.Sprintf("%s %s - %d points", rankEmoji(i+1), displayFor(e), e.Points))
		} else {
			lines = append(lines, fmt.Sprintf("%s %s", rankEmoji(i+1), displayFor(e)))
		}
	}
	return strings.Join(lines, "\n")
}

func formatAdminBoard(title string, entries []services.LeaderboardEntry) string {
	if len(entries) == 0 {
		return "📊 No submissions yet"
	}
	lines := []string{title, ""}
	for i, e := range entries {
		lines = append(lines, fmt.Sprintf("%s %s %s - %d points", rankEmoji(i+1), e.Code, displayFor(e), e.Points))
		if e.TgUserID != nil {
			lines = append(lines, fmt.Sprintf("   ID: %d", *e.TgUserID))
		}
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

func formatWinners(week int, winners []services.WinnerEntry) string {
	if len(winners) == 0 {
		return fmt.Sprintf("❌ No winners saved for Week %d yet.\nUse /selectwinners %d to select them.", week, week)
	}
	lines := []string{fmt.Sprintf("🏆 Week %d Winners", week), ""}
	for _, w := range winners {
		lines = append(lines, fmt.Sprintf("%s %s %s - %d points", rankEmoji(w.Rank), w.Code, w.DisplayName, w.PointsAtTime))
	}
	return strings.Join(lines, "\n")
}

func formatStats(stats *services.Stats) string {
	lines := []string{
		"📊 Engagement Stats",
		"",
		fmt.Sprintf("👥 Participants with points: %d", stats.TotalParticipants),
		fmt.Sprintf("📸 Submissions since reset: %d", stats.TotalSubmissions),
		fmt.Sprintf("⏭️ Duplicates since reset: %d", stats.Duplicates),
		fmt.Sprintf("✍️ Manual adjustments: %d", stats.ManualAdjustments),
	}
	if stats.MostActive != "" && stats.MostActive != "None" {
		lines = append(lines, fmt.Sprintf("🔥 Most active: %s (%d points)", stats.MostActive, stats.MaxPoints))
	}
	lines = append(lines, fmt.Sprintf("📈 Avg points: %.1f", stats.AvgPoints))
	if stats.ResetAt != "" {
		lines = append(lines, fmt.Sprintf("🔄 Counting since: %s", stats.ResetAt))
	}
	return strings.Join(lines, "\n")
}

func formatCorrections(corrections []services.Correction) string {
	if len(corrections) == 0 {
		return "✅ All cumulative points are correct! No updates needed."
	}
	lines := []string{fmt.Sprintf("♻️ Corrected %d participants:", len(corrections))}
	shown := corrections
	if len(shown) > 10 {
		shown = shown[:10]
	}
	for _, c := range shown {
		lines = append(lines, fmt.Sprintf("%s %s: %d → %d points", c.Code, c.DisplayName, c.OldPoints, c.NewPoints))
	}
	if len(corrections) > 10 {
		lines = append(lines, fmt.Sprintf("... and %d more", len(corrections)-10))
	}
	return strings.Join(lines, "\n")
}
