package repository

import (
	"context"
	"time"

	"github.com/studymate/auth-backend/internal/models"
	"gorm.io/gorm"
)

type VerificationCodeRepository struct {
	db *gorm.DB
}

func NewVerificationCodeRepository(db *gorm.DB) *VerificationCodeRepository {
	return &VerificationCodeRepository{db: db}
}

func (r *VerificationCodeRepository) Create(ctx context.Context, code *models.VerificationCode) error {
	return r.db.WithContext(ctx).Create(code).Error
}

// FindValid returns the most recent row matching (email, code) that has not
// expired at now.
func (r *VerificationCodeRepository) FindValid(ctx context.Context, email, code string, now time.Time) (*models.VerificationCode, error) {
	var vc models.VerificationCode
	err := r.db.WithContext(ctx).
		Where("email = ? AND code = ? AND expires_at > ?", email, code, now).
		Order("created_at DESC, id DESC").
		First(&vc).Error
	if err != nil {
		return nil, translate(err)
	}
	return &vc, nil
}

func (r *VerificationCodeRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.VerificationCode{}, id).Error
}

func (r *VerificationCodeRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("expires_at <= ?", before).Delete(&models.VerificationCode{})
	return res.RowsAffected, res.Error
}
