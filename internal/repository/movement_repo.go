package repository

import (
	"context"

	"cadetbot/internal/model"

	"gorm.io/gorm"
)

type MovementRepository interface {
	Create(ctx context.Context, log *model.MovementLog) error
	ListRecent(ctx context.Context, limit int) ([]model.MovementLog, error)
}

type movementRepository struct {
	db *gorm.DB
}

func NewMovementRepository(db *gorm.DB) MovementRepository {
	return &movementRepository{db: db}
}

func (r *movementRepository) Create(ctx context.Context, log *model.MovementLog) error {
	return GetDB(ctx, r.db).Create(log).Error
}

func (r *movementRepository) ListRecent(ctx context.Context, limit int) ([]model.MovementLog, error) {
	var logs []model.MovementLog
	err := GetDB(ctx, r.db).
		Order("created_at DESC").
		Limit(limit).
		Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}
