package services

import (
	"context"
	"time"

	"github.com/studymate/auth-backend/internal/models"
)

// The stores below are satisfied by the GORM repositories in
// internal/repository and must return repository.ErrNotFound for missing rows.

type UserStore interface {
	FindByID(ctx context.Context, id uint) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindBySocial(ctx context.Context, provider, socialID string) (*models.User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	Create(ctx context.Context, user *models.User) error
	SetRefreshToken(ctx context.Context, id uint, hash *string) error
	SetPassword(ctx context.Context, id uint, hash string) error
	SetEmail(ctx context.Context, id uint, email string) error
	Delete(ctx context.Context, id uint) error
}

type SocialAccountStore interface {
	Upsert(ctx context.Context, account *models.SocialAccount) error
}

type VerificationCodeStore interface {
	Create(ctx context.Context, code *models.VerificationCode) error
	FindValid(ctx context.Context, email, code string, now time.Time) (*models.VerificationCode, error)
	Delete(ctx context.Context, id uint) error
}

type InvalidTokenStore interface {
	Create(ctx context.Context, token *models.InvalidToken) error
	Exists(ctx context.Context, tokenID string) (bool, error)
}
