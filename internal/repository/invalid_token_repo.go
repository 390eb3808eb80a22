package repository

import (
	"context"
	"time"

	"github.com/studymate/auth-backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type InvalidTokenRepository struct {
	db *gorm.DB
}

func NewInvalidTokenRepository(db *gorm.DB) *InvalidTokenRepository {
	return &InvalidTokenRepository{db: db}
}

// Create is idempotent: revoking the same token twice is not an error.
func (r *InvalidTokenRepository) Create(ctx context.Context, token *models.InvalidToken) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "token_id"}}, DoNothing: true}).
		Create(token).Error
}

// Exists ignores expires_at on purpose: expired rows are still treated as
// revoked until the cleanup job removes them.
func (r *InvalidTokenRepository) Exists(ctx context.Context, tokenID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.InvalidToken{}).
		Where("token_id = ?", tokenID).
		Limit(1).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *InvalidTokenRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("expires_at <= ?", before).Delete(&models.InvalidToken{})
	return res.RowsAffected, res.Error
}
