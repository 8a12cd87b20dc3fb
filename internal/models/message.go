package models

import "time"

// Message is a direct message between two connected users. Messages are
// immutable once persisted; CreatedAt is assigned by the store.
type Message struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	SenderID   uint      `gorm:"not null;index:idx_messages_pair,priority:1" json:"sender_id"`
	ReceiverID uint      `gorm:"not null;index:idx_messages_pair,priority:2" json:"receiver_id"`
	Text       string    `gorm:"not null" json:"text"`
	ImageURL   string    `json:"image_url,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
