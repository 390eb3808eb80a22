package repository

import (
	"context"

	"github.com/studymate/auth-backend/internal/models"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) FindByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// FindByEmail returns the oldest account registered with email. Email is not
// unique across password and social accounts.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).Order("id").First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *UserRepository) FindBySocial(ctx context.Context, provider, socialID string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Where("social_provider = ? AND social_id = ?", provider, socialID).
		First(&user).Error
	if err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *UserRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	return translate(r.db.WithContext(ctx).Create(user).Error)
}

// SetRefreshToken replaces the stored refresh-token hash; nil clears it.
func (r *UserRepository) SetRefreshToken(ctx context.Context, id uint, hash *string) error {
	return r.update(ctx, id, map[string]interface{}{"refresh_token": hash})
}

// SetPassword stores a new password hash and drops the refresh-token hash so
// existing sessions cannot be refreshed.
func (r *UserRepository) SetPassword(ctx context.Context, id uint, hash string) error {
	return r.update(ctx, id, map[string]interface{}{
		"password_hash": hash,
		"refresh_token": nil,
	})
}

func (r *UserRepository) SetEmail(ctx context.Context, id uint, email string) error {
	return r.update(ctx, id, map[string]interface{}{"email": email})
}

// Delete removes the user and its social links in one transaction.
func (r *UserRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&models.SocialAccount{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.User{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (r *UserRepository) update(ctx context.Context, id uint, fields map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
