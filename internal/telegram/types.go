package telegram

import (
	"encoding/json"
	"strings"
)

type Update struct {
	UpdateID int64    `json:"update_id"`
	Message  *Message `json:"message,omitempty"`
}

type Message struct {
	MessageID       int64           `json:"message_id"`
	From            *User           `json:"from,omitempty"`
	Chat            Chat            `json:"chat"`
	Text            string          `json:"text"`
	Entities        []MessageEntity `json:"entities,omitempty"`
	Photo           []PhotoSize     `json:"photo,omitempty"`
	MessageThreadID int64           `json:"message_thread_id,omitempty"`
	ForwardOrigin   *MessageOrigin  `json:"forward_origin,omitempty"`
	Date            int64           `json:"date"`
}

// LargestPhoto returns the biggest size variant, which carries the file id
// Telegram keys the upload by.
func (m *Message) LargestPhoto() *PhotoSize {
	if len(m.Photo) == 0 {
		return nil
	}
	return &m.Photo[len(m.Photo)-1]
}

type User struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name,omitempty"`
	Username  string `json:"username,omitempty"`
}

func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

type Chat struct {
	ID    int64  `json:"id"`
	Type  string `json:"type"`
	Title string `json:"title,omitempty"`
}

type PhotoSize struct {
	FileID       string `json:"file_id"`
	FileUniqueID string `json:"file_unique_id"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
}

type MessageEntity struct {
	Type   string `json:"type"`
	Offset int    `json:"offset"`
	Length int    `json:"length"`
}

// MessageOrigin is the forward-origin variant Telegram attaches to forwarded
// messages: a named user, a privacy-hidden user, a chat, or a channel.
type MessageOrigin struct {
	Type           string `json:"type"`
	SenderUser     *User  `json:"sender_user,omitempty"`
	SenderUserName string `json:"sender_user_name,omitempty"`
	SenderChat     *Chat  `json:"sender_chat,omitempty"`
	Chat           *Chat  `json:"chat,omitempty"`
}

const (
	OriginUser       = "user"
	OriginHiddenUser = "hidden_user"
	OriginChat       = "chat"
	OriginChannel    = "channel"
)

// SenderIdentity is one of the two creditable shapes the resolver accepts:
// a full user identity, or a display name alone.
type SenderIdentity struct {
	TgUserID *int64
	Username *string
	FullName string
}

// Identity normalizes the origin variant. Chat and channel origins return
// false: those forwards cannot be attributed to a person and must never be
// credited to the forwarding admin.
func (o *MessageOrigin) Identity() (*SenderIdentity, bool) {
	switch o.Type {
	case OriginUser:
		if o.SenderUser == nil {
			return nil, false
		}
		id := o.SenderUser.ID
		ident := &SenderIdentity{TgUserID: &id, FullName: o.SenderUser.FullName()}
		if o.SenderUser.Username != "" {
			username := o.SenderUser.Username
			ident.Username = &username
		}
		return ident, true
	case OriginHiddenUser:
		if strings.TrimSpace(o.SenderUserName) == "" {
			return nil, false
		}
		return &SenderIdentity{FullName: o.SenderUserName}, true
	default:
		return nil, false
	}
}

type SendMessageRequest struct {
	ChatID      int64           `json:"chat_id"`
	Text        string          `json:"text"`
	ParseMode   string          `json:"parse_mode,omitempty"`
	ReplyMarkup json.RawMessage `json:"reply_markup,omitempty"`
}

type EditMessageTextRequest struct {
	ChatID      int64           `json:"chat_id"`
	MessageID   int64           `json:"message_id"`
	Text        string          `json:"text"`
	ParseMode   string          `json:"parse_mode,omitempty"`
	ReplyMarkup json.RawMessage `json:"reply_markup,omitempty"`
}

type SetWebhookRequest struct {
	URL         string `json:"url"`
	SecretToken string `json:"secret_token,omitempty"`
}

type APIResponse struct {
	OK          bool            `json:"ok"`
	Description string          `json:"description,omitempty"`
	Result      json.RawMessage `json:"result,omitempty"`
}

type MessageResult struct {
	MessageID int64 `json:"message_id"`
}
