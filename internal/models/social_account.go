package models

import "time"

// SocialAccount links a User to an external identity. One row per (user, provider).
type SocialAccount struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	UserID          uint      `gorm:"not null;uniqueIndex:idx_social_accounts_user_provider" json:"user_id"`
	Provider        string    `gorm:"size:20;not null;uniqueIndex:idx_social_accounts_user_provider" json:"provider"`
	ProviderID      string    `gorm:"size:100;not null" json:"provider_id"`
	ProfileImageURL *string   `gorm:"size:1024" json:"profile_image_url"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
