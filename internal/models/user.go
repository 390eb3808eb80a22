package models

import (
	"time"
)

// User is a StudyMate account. Password accounts carry PasswordHash; accounts
// created through an OAuth provider carry SocialProvider/SocialID instead.
type User struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	Username       string     `gorm:"size:100;not null;uniqueIndex" json:"username"`
	PasswordHash   *string    `gorm:"size:255" json:"-"`
	Name           string     `gorm:"size:100" json:"name"`
	Email          string     `gorm:"size:255;index" json:"email"`
	PhoneNumber    string     `gorm:"size:30" json:"phone_number"`
	BirthDate      *time.Time `gorm:"type:date" json:"birth_date"`
	SocialProvider *string    `gorm:"size:20;uniqueIndex:idx_users_social" json:"-"`
	SocialID       *string    `gorm:"size:100;uniqueIndex:idx_users_social" json:"-"`
	RefreshToken   *string    `gorm:"size:255" json:"-"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`

	SocialAccounts []SocialAccount `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// HasPassword reports whether the account can sign in with a password.
func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}
