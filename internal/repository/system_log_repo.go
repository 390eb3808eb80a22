package repository

import (
	"context"
	"time"

	"github.com/studymate/auth-backend/internal/models"
	"gorm.io/gorm"
)

type SystemLogRepository struct {
	db *gorm.DB
}

func NewSystemLogRepository(db *gorm.DB) *SystemLogRepository {
	return &SystemLogRepository{db: db}
}

func (r *SystemLogRepository) CreateBatch(ctx context.Context, logs []models.SystemLog) error {
	if len(logs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(logs, 50).Error
}

func (r *SystemLogRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("timestamp < ?", before).Delete(&models.SystemLog{})
	return res.RowsAffected, res.Error
}
