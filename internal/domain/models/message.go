package models

// Chat message event kinds delivered on the intake topic.
const (
	MessageEventNew    = "new"
	MessageEventEdit   = "edit"
	MessageEventDelete = "delete"
)

// ChatMessage is a raw chat-platform message as delivered by the intake
// topic. The bot gateway owns production of these; we only consume.
type ChatMessage struct {
	MessageID string `json:"message_id"`
	Channel   string `json:"channel"`
	Text      string `json:"text"`
	Event     string `json:"event"` // new, edit, delete
	Timestamp int64  `json:"ts"`
}
