package models

import "time"

type Conversation struct {
	ID          int64     `db:"id" json:"id"`
	UserEmail   string    `db:"user_email" json:"user_email"`
	Platform    string    `db:"platform" json:"platform"`
	ExternalID  string    `db:"external_id" json:"external_id"`
	ContactName string    `db:"contact_name" json:"contact_name"`
	LastMessage string    `db:"last_message" json:"last_message"`
	UnreadCount int       `db:"unread_count" json:"unread_count"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

type Message struct {
	ID             int64     `db:"id" json:"id"`
	ConversationID int64     `db:"conversation_id" json:"conversation_id"`
	Direction      string    `db:"direction" json:"direction"` // inbound, outbound
	Body           string    `db:"body" json:"body"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

const (
	MessageInbound  = "inbound"
	MessageOutbound = "outbound"
)
