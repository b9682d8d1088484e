package telegram

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Bot owns the webhook lifecycle for the single campaign bot: it registers
// the webhook on start, removes it on stop, and fans incoming updates out to
// the handler.
type Bot struct {
	token          string
	secret         string
	webhookBaseURL string
	webhookSecret  string
	client         *Client
	handler        *UpdateHandler
}

func NewBot(token, webhookBaseURL, webhookSecret string, client *Client, handler *UpdateHandler) *Bot {
	return &Bot{
		token:          token,
		secret:         tokenSecret(token),
		webhookBaseURL: webhookBaseURL,
		webhookSecret:  webhookSecret,
		client:         client,
		handler:        handler,
	}
}

// tokenSecret derives the webhook path segment from the bot token, so the
// token itself never appears in a URL.
func tokenSecret(token string) string {
	h := sha256.Sum256([]byte(token))
	return fmt.Sprintf("%x", h[:16])
}

func (b *Bot) WebhookPath() string {
	return "/webhook/bot/" + b.secret
}

func (b *Bot) Start() error {
	webhookURL := b.webhookBaseURL + b.WebhookPath()
	if err := b.client.SetWebhook(webhookURL, b.webhookSecret); err != nil {
		return fmt.Errorf("set webhook: %w", err)
	}
	log.Printf("[bot] webhook registered: %s", webhookURL)
	return nil
}

func (b *Bot) Stop() {
	if err := b.client.DeleteWebhook(); err != nil {
		log.Printf("[bot] delete webhook: %v", err)
	}
	log.Println("[bot] stopped")
}

func (b *Bot) HandleWebhook(c *gin.Context) {
	if c.Param("secret") != b.secret {
		c.Status(http.StatusNotFound)
		return
	}

	if b.webhookSecret != "" {
		headerSecret := c.GetHeader("X-Telegram-Bot-Api-Secret-Token")
		if headerSecret != b.webhookSecret {
			c.Status(http.StatusUnauthorized)
			return
		}
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	var upd Update
	if err := json.Unmarshal(body, &upd); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	go b.handler.Handle(upd)

	c.Status(http.StatusOK)
}
