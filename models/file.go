package models

import "time"

// File is a user-visible file entry. The blob itself lives in the object
// store and is owned exclusively by this row; ObjectKey/ResourceType are the
// store-side locator needed to delete it again.
type File struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string    `gorm:"type:varchar(255);not null;uniqueIndex:idx_user_folder_name" json:"name"`
	OriginalName string    `gorm:"type:varchar(255);not null" json:"original_name"`
	FolderID     uint      `gorm:"not null;index;uniqueIndex:idx_user_folder_name" json:"folder_id"`
	UserID       uint      `gorm:"not null;index;uniqueIndex:idx_user_folder_name" json:"user_id"`
	Size         int64     `gorm:"not null" json:"size"`
	MimeType     string    `gorm:"type:varchar(100)" json:"mime_type"`
	ObjectKey    string    `gorm:"type:varchar(255);not null" json:"-"`
	ResourceType string    `gorm:"type:varchar(20);not null" json:"resource_type"`
	URL          string    `gorm:"type:varchar(1000)" json:"url"`
	CreatedAt    time.Time `gorm:"index" json:"created_at"`
	UpdatedAt    time.Time `gorm:"index" json:"updated_at"`
}
