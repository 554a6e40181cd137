package repository

import (
	"context"

	"cadetbot/internal/model"

	"gorm.io/gorm"
)

type DashboardAccountRepository interface {
	Create(ctx context.Context, account *model.DashboardAccount) error
	GetByUsername(ctx context.Context, username string) (*model.DashboardAccount, error)
}

type dashboardAccountRepository struct {
	db *gorm.DB
}

func NewDashboardAccountRepository(db *gorm.DB) DashboardAccountRepository {
	return &dashboardAccountRepository{db: db}
}

func (r *dashboardAccountRepository) Create(ctx context.Context, account *model.DashboardAccount) error {
	return GetDB(ctx, r.db).Create(account).Error
}

func (r *dashboardAccountRepository) GetByUsername(ctx context.Context, username string) (*model.DashboardAccount, error) {
	var account model.DashboardAccount
	if err := GetDB(ctx, r.db).First(&account, "username = ?", username).Error; err != nil {
		return nil, err
	}
	return &account, nil
}
