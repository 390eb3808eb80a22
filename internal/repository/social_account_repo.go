package repository

import (
	"context"

	"github.com/studymate/auth-backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SocialAccountRepository struct {
	db *gorm.DB
}

func NewSocialAccountRepository(db *gorm.DB) *SocialAccountRepository {
	return &SocialAccountRepository{db: db}
}

// Upsert inserts the link or, when (user_id, provider) exists, refreshes the
// provider id, profile image and updated_at.
func (r *SocialAccountRepository) Upsert(ctx context.Context, account *models.SocialAccount) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "provider"}},
		DoUpdates: clause.AssignmentColumns([]string{"provider_id", "profile_image_url", "updated_at"}),
	}).Create(account).Error
}
