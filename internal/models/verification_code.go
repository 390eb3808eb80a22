package models

import "time"

type VerificationCode struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"size:255;not null;index:idx_verification_codes_email_code" json:"email"`
	Code      string    `gorm:"size:6;not null;index:idx_verification_codes_email_code" json:"-"`
	ExpiresAt time.Time `gorm:"not null;index" json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}
