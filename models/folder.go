package models

import "time"

// Folder is a node in a user's directory tree. The per-user root folder is
// the single row with a NULL parent; every other folder points at a parent
// owned by the same user.
type Folder struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"type:varchar(255);not null;uniqueIndex:idx_user_parent_name" json:"name"`
	ParentID  *uint     `gorm:"index;uniqueIndex:idx_user_parent_name" json:"parent_id"`
	UserID    uint      `gorm:"not null;index;uniqueIndex:idx_user_parent_name" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `gorm:"index" json:"updated_at"`
}
