package models

import "time"

// Role is an admin-created display role. Insert-only; broadcast to every
// client on creation so role pickers can refresh.
type Role struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Color     string    `gorm:"size:16" json:"color"`
	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Role) TableName() string {
	return "roles"
}
