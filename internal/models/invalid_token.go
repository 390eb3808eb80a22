package models

import "time"

// InvalidToken is a revoked access token, keyed by its jti claim. A row stays
// authoritative until ExpiresAt has passed.
type InvalidToken struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	TokenID   string    `gorm:"size:64;not null;uniqueIndex" json:"-"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	ExpiresAt time.Time `gorm:"not null;index" json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}
