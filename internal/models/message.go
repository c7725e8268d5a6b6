package models

import "time"

// ChatMessage is one persisted chat line. Rows are immutable after insert;
// moderation hard-deletes them.
type ChatMessage struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	User      string    `gorm:"not null" json:"user"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	Color     string    `gorm:"size:16" json:"color"`
	Time      string    `gorm:"size:8" json:"time"` // HH:MM, stamped server-side at send
	Room      string    `gorm:"not null;index:idx_messages_room" json:"room"`
	Role      string    `gorm:"size:64" json:"role"` // free-text label, not a foreign key
	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (ChatMessage) TableName() string {
	return "messages"
}
