package telegram

import (
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/babaearn/Pnl-sharing-card-bot/internal/models"
	"github.com/babaearn/Pnl-sharing-card-bot/internal/services"
)

// ForwardItem is one forwarded photo. A nil Identity means the forward came
// from a chat or channel origin and can only be tallied as failed.
type ForwardItem struct {
	Identity      *SenderIdentity
	PhotoFileID   string
	PhotoUniqueID string
	MessageID     int64
}

type itemOutcome int

const (
	outcomeAdded itemOutcome = iota
	outcomeDuplicate
	outcomeFailed
)

type forwardWorker struct {
	queue  chan ForwardItem
	chatID int64
}

// ForwardCoordinator absorbs bursts of photos forwarded to admin DMs. Each
// admin gets at most one worker; the worker consumes in arrival order, edits
// a single status message instead of spamming new ones, and drains into a
// final summary when the queue stays empty past the idle timeout.
type ForwardCoordinator struct {
	sender       MessageSender
	participants *services.ParticipantService
	submissions  *services.SubmissionService
	leaderboard  *services.LeaderboardService
	fraud        *services.FraudService

	editBatch    int
	editInterval time.Duration
	idleTimeout  time.Duration
	queueSize    int

	mu      sync.Mutex
	workers map[int64]*forwardWorker
}

func NewForwardCoordinator(
	sender MessageSender,
	participants *services.ParticipantService,
	submissions *services.SubmissionService,
	leaderboard *services.LeaderboardService,
	fraud *services.FraudService,
) *ForwardCoordinator {
	return &ForwardCoordinator{
		sender:       sender,
		participants: participants,
		submissions:  submissions,
		leaderboard:  leaderboard,
		fraud:        fraud,
		editBatch:    10,
		editInterval: 3 * time.Second,
		idleTimeout:  12 * time.Second,
		queueSize:    512,
		workers:      make(map[int64]*forwardWorker),
	}
}

// Enqueue hands one forwarded photo to the admin's worker, spawning it on the
// first photo of a burst. Items from one admin are processed strictly in
// arrival order; different admins are fully independent.
func (c *ForwardCoordinator) Enqueue(adminID, chatID int64, item ForwardItem) {
	c.mu.Lock()
	defer c.mu.Unlock()

	w, ok := c.workers[adminID]
	if !ok {
		w = &forwardWorker{queue: make(chan ForwardItem, c.queueSize), chatID: chatID}
		c.workers[adminID] = w
		go c.run(adminID, w)
	}

	select {
	case w.queue <- item:
	default:
		log.Printf("[forward] queue full for admin %d, dropping message %d", adminID, item.MessageID)
	}
}

func (c *ForwardCoordinator) run(adminID int64, w *forwardWorker) {
	statusID, err := c.sender.SendMessage(w.chatID, "⏳ Processing forwarded photos...", "", nil)
	if err != nil {
		log.Printf("[forward] status message for admin %d: %v", adminID, err)
		statusID = 0
	}

	var received, added, duplicates, failed int
	sinceEdit := 0
	lastEdit := time.Now()

	idle := time.NewTimer(c.idleTimeout)
	defer idle.Stop()

	for {
		select {
		case item := <-w.queue:
			received++
			switch c.process(item) {
			case outcomeAdded:
				added++
			case outcomeDuplicate:
				duplicates++
			case outcomeFailed:
				failed++
			}

			sinceEdit++
			if statusID != 0 && (sinceEdit >= c.editBatch || time.Since(lastEdit) >= c.editInterval) {
				text := fmt.Sprintf("⏳ Processing... %d received | %d added | %d duplicates | %d failed",
					received, added, duplicates, failed)
				// Edit failures (deleted message, rate limit) must not
				// affect point accounting.
				if err := c.sender.EditMessageText(w.chatID, statusID, text, "", nil); err != nil {
					log.Printf("[forward] edit status for admin %d: %v", adminID, err)
				}
				sinceEdit = 0
				lastEdit = time.Now()
			}

			if !idle.Stop() {
				select {
				case <-idle.C:
				default:
				}
			}
			idle.Reset(c.idleTimeout)

		case <-idle.C:
			// Drain only if nothing slipped in between the timer firing and
			// the map cleanup; a late arrival wins and the burst continues.
			c.mu.Lock()
			if len(w.queue) > 0 {
				c.mu.Unlock()
				idle.Reset(c.idleTimeout)
				continue
			}
			delete(c.workers, adminID)
			c.mu.Unlock()

			c.sendSummary(w.chatID, received, added, duplicates, failed)
			return
		}
	}
}

// process runs one item through resolve and submit. Any error or panic is the
// item's problem alone; the worker keeps going.
func (c *ForwardCoordinator) process(item ForwardItem) (result itemOutcome) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[forward] panic processing message %d: %v", item.MessageID, r)
			result = outcomeFailed
		}
	}()

	if item.Identity == nil {
		return outcomeFailed
	}

	p, err := c.participants.Resolve(item.Identity.TgUserID, item.Identity.Username, item.Identity.FullName)
	if err != nil {
		log.Printf("[forward] resolve for message %d: %v", item.MessageID, err)
		return outcomeFailed
	}

	msgID := item.MessageID
	res, err := c.submissions.Submit(p.ID, item.PhotoFileID, models.SourceForward, &msgID)
	if err != nil {
		log.Printf("[forward] submit for message %d: %v", item.MessageID, err)
		return outcomeFailed
	}
	if !res.Added {
		return outcomeDuplicate
	}

	c.fraud.Record(p.ID, services.PhotoHashStub(item.PhotoUniqueID))
	return outcomeAdded
}

func (c *ForwardCoordinator) sendSummary(chatID int64, received, added, duplicates, failed int) {
	lines := []string{
		"✅ <b>Batch complete</b>",
		"",
		fmt.Sprintf("📸 Received: %d", received),
		fmt.Sprintf("🆕 Added: %d", added),
		fmt.Sprintf("⏭️ Duplicates: %d", duplicates),
		fmt.Sprintf("❌ Failed: %d", failed),
	}

	if entries, err := c.leaderboard.Top(5, nil); err == nil && len(entries) > 0 {
		lines = append(lines, "", "🏆 <b>Current Top 5:</b>")
		for i, e := range entries {
			lines = append(lines, fmt.Sprintf("%s %s — %d points", rankEmoji(i+1), e.DisplayName, e.Points))
		}
	}

	if _, err := c.sender.SendMessage(chatID, strings.Join(lines, "\n"), "HTML", nil); err != nil {
		log.Printf("[forward] summary to %d: %v", chatID, err)
	}
}
